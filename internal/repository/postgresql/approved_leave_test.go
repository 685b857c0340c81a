package postgresql

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/leave"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var approvedLeaveRowColumns = []string{
	"id", "employee_id", "start_date", "end_date", "days",
	"leave_type", "source_request_id", "created_at", "full_name",
}

func anyArgs(n int) []interface{} {
	args := make([]interface{}, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func TestApprovedLeaveRepository_Insert_MapsConstraintViolations(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{"23P01", leave.ErrOverlappingLeave},
		{"23505", leave.ErrLeaveRequestAlreadyProcessed},
		{"23503", leave.ErrEmployeeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			t.Parallel()
			mock := newMockPool(t)
			repo := NewApprovedLeaveRepository(mock)

			mock.ExpectExec(regexp.QuoteMeta("INSERT INTO approved_leaves")).
				WithArgs(anyArgs(8)...).
				WillReturnError(&pgconn.PgError{Code: tt.code})

			_, err := repo.Insert(context.Background(), leave.ApprovedLeave{ID: "al-1"})

			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestApprovedLeaveRepository_FindByEmployee(t *testing.T) {
	t.Parallel()
	mock := newMockPool(t)
	repo := NewApprovedLeaveRepository(mock)

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE al.employee_id = $1")).
		WithArgs("emp-1").
		WillReturnRows(pgxmock.NewRows(approvedLeaveRowColumns).
			AddRow("al-1", "emp-1", start, start.AddDate(0, 0, 4), 5, "annual", strPtr("req-1"), now, strPtr("Budi")).
			AddRow("al-2", "emp-1", start.AddDate(0, -1, 0), start.AddDate(0, -1, 0), 1, "sick", (*string)(nil), now, strPtr("Budi")))

	got, err := repo.FindByEmployee(context.Background(), "emp-1")

	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].SourceRequestID)
	assert.Equal(t, "req-1", *got[0].SourceRequestID)
	assert.Nil(t, got[1].SourceRequestID)
	assert.Equal(t, leave.LeaveTypeSick, got[1].LeaveType)
}

func TestApprovedLeaveRepository_DeleteAndCount(t *testing.T) {
	t.Parallel()
	mock := newMockPool(t)
	repo := NewApprovedLeaveRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM approved_leaves")).
		WithArgs("al-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM approved_leaves")).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(4)))

	err := repo.Delete(context.Background(), "al-1")
	assert.ErrorIs(t, err, leave.ErrApprovedLeaveNotFound)

	n, err := repo.Count(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestLeaveEventRepository_AppendAndFind(t *testing.T) {
	t.Parallel()
	mock := newMockPool(t)
	repo := NewLeaveEventRepository(mock)

	at := time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)
	event := leave.LeaveEvent{
		ID:         "ev-1",
		Type:       leave.EventRequestCreated,
		RequestID:  strPtr("req-1"),
		EmployeeID: "emp-1",
		ActorID:    "user-1",
		ActorRole:  "employee",
		OccurredAt: at,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO leave_events")).
		WithArgs("ev-1", "request.created", event.RequestID, event.ApprovedLeaveID, "emp-1", "user-1", "employee", at).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM leave_events")).
		WithArgs("req-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "event_type", "request_id", "approved_leave_id", "employee_id", "actor_id", "actor_role", "occurred_at",
		}).AddRow("ev-1", "request.created", strPtr("req-1"), (*string)(nil), "emp-1", "user-1", "employee", at))

	_, err := repo.Append(context.Background(), event)
	require.NoError(t, err)

	events, err := repo.FindByRequest(context.Background(), "req-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, event, events[0])
}

func TestEmployeeDirectory_Exists(t *testing.T) {
	t.Parallel()
	mock := newMockPool(t)
	dir := NewEmployeeDirectory(mock)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("emp-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := dir.Exists(context.Background(), "emp-1")

	require.NoError(t, err)
	assert.True(t, ok)
}
