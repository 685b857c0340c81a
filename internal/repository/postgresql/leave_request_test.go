package postgresql

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/leave"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var leaveRequestRowColumns = []string{
	"id", "employee_id", "start_date", "end_date", "requested_days",
	"leave_type", "status", "reason", "created_at", "updated_at", "full_name",
}

func strPtr(s string) *string { return &s }

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func TestLeaveRequestRepository_Insert(t *testing.T) {
	t.Parallel()
	mock := newMockPool(t)
	repo := NewLeaveRequestRepository(mock)

	now := time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)
	req := leave.LeaveRequest{
		ID:            "req-1",
		EmployeeID:    "emp-1",
		StartDate:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
		RequestedDays: 5,
		LeaveType:     leave.LeaveTypeAnnual,
		Status:        leave.LeaveRequestStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO leave_requests")).
		WithArgs(req.ID, req.EmployeeID, req.StartDate, req.EndDate, 5, "annual", "pending", req.Reason, now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	created, err := repo.Insert(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, req, created)
}

func TestLeaveRequestRepository_Insert_UnknownEmployee(t *testing.T) {
	t.Parallel()
	mock := newMockPool(t)
	repo := NewLeaveRequestRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO leave_requests")).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	_, err := repo.Insert(context.Background(), leave.LeaveRequest{ID: "req-1"})

	assert.ErrorIs(t, err, leave.ErrEmployeeNotFound)
}

func TestLeaveRequestRepository_FindByID(t *testing.T) {
	t.Parallel()
	mock := newMockPool(t)
	repo := NewLeaveRequestRepository(mock)

	now := time.Now().UTC()
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows(leaveRequestRowColumns).
		AddRow("req-1", "emp-1", start, start.AddDate(0, 0, 4), 5, "sick", "approved", strPtr("flu"), now, now, strPtr("Budi"))

	mock.ExpectQuery(regexp.QuoteMeta("WHERE lr.id = $1")).
		WithArgs("req-1").
		WillReturnRows(rows)

	got, err := repo.FindByID(context.Background(), "req-1")

	require.NoError(t, err)
	assert.Equal(t, leave.LeaveTypeSick, got.LeaveType)
	assert.Equal(t, leave.LeaveRequestStatusApproved, got.Status)
	assert.Equal(t, 5, got.RequestedDays)
	require.NotNil(t, got.EmployeeName)
	assert.Equal(t, "Budi", *got.EmployeeName)
}

func TestLeaveRequestRepository_FindByID_NotFound(t *testing.T) {
	t.Parallel()
	mock := newMockPool(t)
	repo := NewLeaveRequestRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE lr.id = $1")).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")

	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
}

func TestLeaveRequestRepository_FindByID_LocksInsideTransaction(t *testing.T) {
	t.Parallel()
	mock := newMockPool(t)
	repo := NewLeaveRequestRepository(mock)
	tx := NewTransactor(mock)

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE OF lr")).
		WithArgs("req-1").
		WillReturnRows(pgxmock.NewRows(leaveRequestRowColumns).
			AddRow("req-1", "emp-1", now, now, 1, "annual", "pending", (*string)(nil), now, now, (*string)(nil)))
	mock.ExpectCommit()

	err := tx.WithinTransaction(context.Background(), func(ctx context.Context) error {
		_, err := repo.FindByID(ctx, "req-1")
		return err
	})

	require.NoError(t, err)
}

func TestLeaveRequestRepository_FindAll_KeysetFilter(t *testing.T) {
	t.Parallel()
	mock := newMockPool(t)
	repo := NewLeaveRequestRepository(mock)

	employeeID := "emp-1"
	status := leave.LeaveRequestStatusPending
	cursor := leave.Cursor{CreatedAt: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), ID: "req-9"}
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("AND lr.employee_id = $1 AND lr.status = $2 AND (lr.created_at, lr.id) < ($3, $4)")).
		WithArgs(employeeID, "pending", cursor.CreatedAt, cursor.ID, 2).
		WillReturnRows(pgxmock.NewRows(leaveRequestRowColumns).
			AddRow("req-8", "emp-1", now, now, 1, "annual", "pending", (*string)(nil), now, now, (*string)(nil)).
			AddRow("req-7", "emp-1", now, now, 1, "annual", "pending", (*string)(nil), now, now, (*string)(nil)))

	got, err := repo.FindAll(context.Background(), leave.LeaveRequestFilter{
		EmployeeID: &employeeID,
		Status:     &status,
		After:      &cursor,
		PageSize:   2,
	})

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "req-8", got[0].ID)
	assert.Equal(t, "req-7", got[1].ID)
}

func TestLeaveRequestRepository_FindAll_DefaultPageSize(t *testing.T) {
	t.Parallel()
	mock := newMockPool(t)
	repo := NewLeaveRequestRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $1")).
		WithArgs(leave.DefaultPageSize).
		WillReturnRows(pgxmock.NewRows(leaveRequestRowColumns))

	got, err := repo.FindAll(context.Background(), leave.LeaveRequestFilter{})

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLeaveRequestRepository_UpdateStatus(t *testing.T) {
	t.Parallel()
	mock := newMockPool(t)
	repo := NewLeaveRequestRepository(mock)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE leave_requests")).
		WithArgs("req-1", "rejected").
		WillReturnRows(pgxmock.NewRows(leaveRequestRowColumns).
			AddRow("req-1", "emp-1", now, now, 1, "annual", "rejected", (*string)(nil), now, now, (*string)(nil)))

	got, err := repo.UpdateStatus(context.Background(), "req-1", leave.LeaveRequestStatusRejected)

	require.NoError(t, err)
	assert.Equal(t, leave.LeaveRequestStatusRejected, got.Status)
}

func TestLeaveRequestRepository_Delete(t *testing.T) {
	t.Parallel()
	mock := newMockPool(t)
	repo := NewLeaveRequestRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM leave_requests")).
		WithArgs("req-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM leave_requests")).
		WithArgs("req-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repo.Delete(context.Background(), "req-1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "req-1"), leave.ErrLeaveRequestNotFound)
}

func TestLeaveRequestRepository_CountByStatus(t *testing.T) {
	t.Parallel()
	mock := newMockPool(t)
	repo := NewLeaveRequestRepository(mock)

	employeeID := "emp-1"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM leave_requests WHERE status = $1 AND employee_id = $2")).
		WithArgs("pending", employeeID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))

	n, err := repo.CountByStatus(context.Background(), &employeeID, leave.LeaveRequestStatusPending)

	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	t.Parallel()
	mock := newMockPool(t)
	tx := NewTransactor(mock)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := tx.WithinTransaction(context.Background(), func(ctx context.Context) error {
		return tx.WithinTransaction(ctx, func(inner context.Context) error {
			_, ok := txFromContext(inner)
			assert.True(t, ok)
			return boom
		})
	})

	assert.ErrorIs(t, err, boom)
	assert.True(t, tx.Atomic())
}
