package postgresql

import (
	"context"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/database"
)

type leaveEventRepositoryImpl struct {
	db database.Conn
}

func NewLeaveEventRepository(db database.Conn) leave.EventRepository {
	return &leaveEventRepositoryImpl{db: db}
}

// Append implements leave.EventRepository. Rows are never updated or deleted.
func (r *leaveEventRepositoryImpl) Append(ctx context.Context, event leave.LeaveEvent) (leave.LeaveEvent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_events (
			id, event_type, request_id, approved_leave_id,
			employee_id, actor_id, actor_role, occurred_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := q.Exec(ctx, query,
		event.ID, string(event.Type), event.RequestID, event.ApprovedLeaveID,
		event.EmployeeID, event.ActorID, event.ActorRole, event.OccurredAt,
	)
	if err != nil {
		return leave.LeaveEvent{}, err
	}

	return event, nil
}

// FindByRequest implements leave.EventRepository.
func (r *leaveEventRepositoryImpl) FindByRequest(ctx context.Context, requestID string) ([]leave.LeaveEvent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, event_type, request_id, approved_leave_id,
			   employee_id, actor_id, actor_role, occurred_at
		FROM leave_events
		WHERE request_id = $1
		ORDER BY occurred_at ASC, id ASC
	`

	rows, err := q.Query(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []leave.LeaveEvent
	for rows.Next() {
		var (
			e         leave.LeaveEvent
			eventType string
		)
		err := rows.Scan(
			&e.ID, &eventType, &e.RequestID, &e.ApprovedLeaveID,
			&e.EmployeeID, &e.ActorID, &e.ActorRole, &e.OccurredAt,
		)
		if err != nil {
			return nil, err
		}
		e.Type = leave.EventType(eventType)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}
