package postgresql

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isForeignKeyViolation(err error) bool { return pgErrorCode(err) == "23503" }

func isUniqueViolation(err error) bool { return pgErrorCode(err) == "23505" }

// exclusion_violation, raised by approved_leaves_no_overlap
func isExclusionViolation(err error) bool { return pgErrorCode(err) == "23P01" }
