package postgresql

import (
	"context"
	"errors"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const approvedLeaveColumns = `al.id, al.employee_id, al.start_date, al.end_date, al.days,
		   al.leave_type, al.source_request_id, al.created_at,
		   e.full_name`

type approvedLeaveRepositoryImpl struct {
	db database.Conn
}

func NewApprovedLeaveRepository(db database.Conn) leave.ApprovedLeaveRepository {
	return &approvedLeaveRepositoryImpl{db: db}
}

func scanApprovedLeave(row pgx.Row) (leave.ApprovedLeave, error) {
	var (
		al        leave.ApprovedLeave
		leaveType string
	)
	err := row.Scan(
		&al.ID, &al.EmployeeID, &al.StartDate, &al.EndDate, &al.Days,
		&leaveType, &al.SourceRequestID, &al.CreatedAt,
		&al.EmployeeName,
	)
	if err != nil {
		return leave.ApprovedLeave{}, err
	}
	al.LeaveType = leave.LeaveType(leaveType)
	return al, nil
}

func (r *approvedLeaveRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]leave.ApprovedLeave, error) {
	rows, err := GetQuerier(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leaves []leave.ApprovedLeave
	for rows.Next() {
		al, err := scanApprovedLeave(rows)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, al)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return leaves, nil
}

// Insert implements leave.ApprovedLeaveRepository.
func (r *approvedLeaveRepositoryImpl) Insert(ctx context.Context, al leave.ApprovedLeave) (leave.ApprovedLeave, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO approved_leaves (
			id, employee_id, start_date, end_date, days,
			leave_type, source_request_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := q.Exec(ctx, query,
		al.ID, al.EmployeeID, al.StartDate, al.EndDate, al.Days,
		string(al.LeaveType), al.SourceRequestID, al.CreatedAt,
	)
	if err != nil {
		switch {
		case isExclusionViolation(err):
			return leave.ApprovedLeave{}, leave.ErrOverlappingLeave
		case isUniqueViolation(err):
			return leave.ApprovedLeave{}, leave.ErrLeaveRequestAlreadyProcessed
		case isForeignKeyViolation(err):
			return leave.ApprovedLeave{}, leave.ErrEmployeeNotFound
		}
		return leave.ApprovedLeave{}, err
	}

	return al, nil
}

// FindByID implements leave.ApprovedLeaveRepository.
func (r *approvedLeaveRepositoryImpl) FindByID(ctx context.Context, id string) (leave.ApprovedLeave, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + approvedLeaveColumns + `
		FROM approved_leaves al
		LEFT JOIN employees e ON al.employee_id = e.id
		WHERE al.id = $1
	`

	al, err := scanApprovedLeave(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.ApprovedLeave{}, leave.ErrApprovedLeaveNotFound
		}
		return leave.ApprovedLeave{}, err
	}

	return al, nil
}

// FindByEmployee implements leave.ApprovedLeaveRepository.
func (r *approvedLeaveRepositoryImpl) FindByEmployee(ctx context.Context, employeeID string) ([]leave.ApprovedLeave, error) {
	return r.list(ctx, `
		SELECT `+approvedLeaveColumns+`
		FROM approved_leaves al
		LEFT JOIN employees e ON al.employee_id = e.id
		WHERE al.employee_id = $1
		ORDER BY al.start_date DESC, al.id DESC
	`, employeeID)
}

// FindAll implements leave.ApprovedLeaveRepository.
func (r *approvedLeaveRepositoryImpl) FindAll(ctx context.Context) ([]leave.ApprovedLeave, error) {
	return r.list(ctx, `
		SELECT `+approvedLeaveColumns+`
		FROM approved_leaves al
		LEFT JOIN employees e ON al.employee_id = e.id
		ORDER BY al.start_date DESC, al.id DESC
	`)
}

// Delete implements leave.ApprovedLeaveRepository.
func (r *approvedLeaveRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM approved_leaves WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return leave.ErrApprovedLeaveNotFound
	}
	return nil
}

// Count implements leave.ApprovedLeaveRepository.
func (r *approvedLeaveRepositoryImpl) Count(ctx context.Context, employeeID *string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT COUNT(*) FROM approved_leaves`
	args := []interface{}{}
	if employeeID != nil {
		query += " WHERE employee_id = $1"
		args = append(args, *employeeID)
	}

	var total int64
	if err := q.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
