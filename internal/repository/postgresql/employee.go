package postgresql

import (
	"context"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/database"
)

type employeeDirectoryImpl struct {
	db database.Conn
}

func NewEmployeeDirectory(db database.Conn) employee.Directory {
	return &employeeDirectoryImpl{db: db}
}

// Exists implements employee.Directory. Soft-deleted employees do not count.
func (e *employeeDirectoryImpl) Exists(ctx context.Context, id string) (bool, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM employees
			WHERE id = $1 AND deleted_at IS NULL
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
