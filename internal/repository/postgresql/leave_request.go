package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const leaveRequestColumns = `lr.id, lr.employee_id, lr.start_date, lr.end_date, lr.requested_days,
		   lr.leave_type, lr.status, lr.reason, lr.created_at, lr.updated_at,
		   e.full_name`

type leaveRequestRepositoryImpl struct {
	db database.Conn
}

func NewLeaveRequestRepository(db database.Conn) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var (
		req       leave.LeaveRequest
		leaveType string
		status    string
	)
	err := row.Scan(
		&req.ID, &req.EmployeeID, &req.StartDate, &req.EndDate, &req.RequestedDays,
		&leaveType, &status, &req.Reason, &req.CreatedAt, &req.UpdatedAt,
		&req.EmployeeName,
	)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	req.LeaveType = leave.LeaveType(leaveType)
	req.Status = leave.LeaveRequestStatus(status)
	return req, nil
}

func collectLeaveRequests(rows pgx.Rows) ([]leave.LeaveRequest, error) {
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		req, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}

// Insert implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Insert(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_requests (
			id, employee_id, start_date, end_date, requested_days,
			leave_type, status, reason, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := q.Exec(ctx, query,
		request.ID, request.EmployeeID, request.StartDate, request.EndDate, request.RequestedDays,
		string(request.LeaveType), string(request.Status), request.Reason, request.CreatedAt, request.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return leave.LeaveRequest{}, leave.ErrEmployeeNotFound
		}
		return leave.LeaveRequest{}, err
	}

	return request, nil
}

// FindByID implements leave.LeaveRequestRepository. Inside a transaction the
// row is locked so concurrent transitions of the same request serialize.
func (r *leaveRequestRepositoryImpl) FindByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveRequestColumns + `
		FROM leave_requests lr
		LEFT JOIN employees e ON lr.employee_id = e.id
		WHERE lr.id = $1
	`
	if _, ok := txFromContext(ctx); ok {
		query += " FOR UPDATE OF lr"
	}

	req, err := scanLeaveRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, err
	}

	return req, nil
}

// FindByEmployee implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) FindByEmployee(ctx context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveRequestColumns + `
		FROM leave_requests lr
		LEFT JOIN employees e ON lr.employee_id = e.id
		WHERE lr.employee_id = $1
		ORDER BY lr.created_at DESC, lr.id DESC
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	return collectLeaveRequests(rows)
}

// FindAll implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) FindAll(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	// Build WHERE clause
	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.EmployeeID != nil {
		whereClause += fmt.Sprintf(" AND lr.employee_id = $%d", argIndex)
		args = append(args, *filter.EmployeeID)
		argIndex++
	}

	if filter.Status != nil {
		whereClause += fmt.Sprintf(" AND lr.status = $%d", argIndex)
		args = append(args, string(*filter.Status))
		argIndex++
	}

	if filter.After != nil {
		whereClause += fmt.Sprintf(" AND (lr.created_at, lr.id) < ($%d, $%d)", argIndex, argIndex+1)
		args = append(args, filter.After.CreatedAt, filter.After.ID)
		argIndex += 2
	}

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = leave.DefaultPageSize
	}
	args = append(args, pageSize)

	query := fmt.Sprintf(`
		SELECT %s
		FROM leave_requests lr
		LEFT JOIN employees e ON lr.employee_id = e.id
		%s
		ORDER BY lr.created_at DESC, lr.id DESC
		LIMIT $%d
	`, leaveRequestColumns, whereClause, argIndex)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectLeaveRequests(rows)
}

// UpdateStatus implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) UpdateStatus(ctx context.Context, id string, status leave.LeaveRequestStatus) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH lr AS (
			UPDATE leave_requests
			SET status = $2, updated_at = NOW()
			WHERE id = $1
			RETURNING *
		)
		SELECT ` + leaveRequestColumns + `
		FROM lr
		LEFT JOIN employees e ON lr.employee_id = e.id
	`

	req, err := scanLeaveRequest(q.QueryRow(ctx, query, id, string(status)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, err
	}

	return req, nil
}

// Delete implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	query := `
		DELETE FROM leave_requests
		WHERE id = $1
	`
	commandTag, err := q.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return leave.ErrLeaveRequestNotFound
	}
	return nil
}

// CountByStatus implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) CountByStatus(ctx context.Context, employeeID *string, status leave.LeaveRequestStatus) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT COUNT(*) FROM leave_requests WHERE status = $1`
	args := []interface{}{string(status)}
	if employeeID != nil {
		query += " AND employee_id = $2"
		args = append(args, *employeeID)
	}

	var total int64
	if err := q.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
