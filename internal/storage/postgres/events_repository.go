package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/gatherly/server/internal/domain/events"
	"github.com/gatherly/server/internal/domain/users"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var _ events.Repository = (*EventRepository)(nil)

const eventColumns = `
e.id, e.name, e.location, e.start_time, e.end_time, e.max_capacity,
e.created_at, e.updated_at, u.id, u.name, u.email`

func (r *EventRepository) Create(ctx context.Context, params events.CreateParams) (*events.Event, error) {
	row := r.queryer().QueryRow(ctx, `
WITH inserted AS (
	INSERT INTO events (id, creator_id, name, location, start_time, end_time, max_capacity, created_at, updated_at)
	VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, now(), now())
	RETURNING *
)
SELECT `+eventColumns+`
  FROM inserted e
  JOIN users u ON u.id = e.creator_id
`,
		params.CreatorID,
		params.Name,
		params.Location,
		params.StartTime,
		params.EndTime,
		params.MaxCapacity,
	)

	event, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) List(ctx context.Context) ([]events.Event, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+eventColumns+`
  FROM events e
  JOIN users u ON u.id = e.creator_id
 ORDER BY e.created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	items := make([]events.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		items = append(items, *event)
	}
	return items, rows.Err()
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*events.Event, error) {
	return r.get(ctx, id, "")
}

// GetByIDForUpdate locks the event row for the remainder of the enclosing
// transaction, serializing concurrent registration attempts per event.
func (r *EventRepository) GetByIDForUpdate(ctx context.Context, id string) (*events.Event, error) {
	return r.get(ctx, id, " FOR UPDATE OF e")
}

func (r *EventRepository) get(ctx context.Context, id, lock string) (*events.Event, error) {
	// A malformed id cannot match any row; without this check it would fail
	// uuid encoding and surface as a server error instead of not-found.
	if _, err := uuid.Parse(id); err != nil {
		return nil, events.ErrNotFound
	}

	row := r.queryer().QueryRow(ctx, `
SELECT `+eventColumns+`
  FROM events e
  JOIN users u ON u.id = e.creator_id
 WHERE e.id = $1`+lock, id)

	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) HasAttendee(ctx context.Context, eventID, userID string) (bool, error) {
	var exists bool
	err := r.queryer().QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1 FROM attendees WHERE event_id = $1 AND user_id = $2
)`, eventID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check attendee: %w", err)
	}
	return exists, nil
}

func (r *EventRepository) CountAttendees(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.queryer().QueryRow(ctx,
		`SELECT count(*) FROM attendees WHERE event_id = $1`, eventID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count attendees: %w", err)
	}
	return count, nil
}

func (r *EventRepository) InsertAttendee(ctx context.Context, eventID, userID string) (*events.Attendee, error) {
	row := r.queryer().QueryRow(ctx, `
INSERT INTO attendees (id, event_id, user_id, created_at, updated_at)
VALUES (gen_random_uuid(), $1, $2, now(), now())
RETURNING id, event_id, user_id, created_at, updated_at
`, eventID, userID)

	var attendee events.Attendee
	if err := row.Scan(
		&attendee.ID,
		&attendee.EventID,
		&attendee.UserID,
		&attendee.CreatedAt,
		&attendee.UpdatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return nil, events.ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("insert attendee: %w", err)
	}
	return &attendee, nil
}

func (r *EventRepository) ListAttendeeUsers(ctx context.Context, eventID string) ([]users.Summary, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT u.id, u.name, u.email
  FROM attendees a
  JOIN users u ON u.id = a.user_id
 WHERE a.event_id = $1
 ORDER BY a.created_at ASC
`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list attendee users: %w", err)
	}
	defer rows.Close()

	summaries := make([]users.Summary, 0)
	for rows.Next() {
		var summary users.Summary
		if err := rows.Scan(&summary.ID, &summary.Name, &summary.Email); err != nil {
			return nil, fmt.Errorf("scan attendee user: %w", err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// WithTx runs fn against a transaction-bound repository. Calls nested
// inside an existing transaction reuse it.
func (r *EventRepository) WithTx(ctx context.Context, fn func(context.Context, events.Repository) error) error {
	if r.tx != nil {
		return fn(ctx, r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	wrapped := &EventRepository{pool: r.pool, tx: tx}
	if err := fn(ctx, wrapped); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func scanEvent(row pgx.Row) (*events.Event, error) {
	var event events.Event
	if err := row.Scan(
		&event.ID,
		&event.Name,
		&event.Location,
		&event.StartTime,
		&event.EndTime,
		&event.MaxCapacity,
		&event.CreatedAt,
		&event.UpdatedAt,
		&event.Creator.ID,
		&event.Creator.Name,
		&event.Creator.Email,
	); err != nil {
		return nil, err
	}
	return &event, nil
}
