package events

import (
	"context"
	"time"

	"github.com/gatherly/server/internal/domain/users"
)

// Event is a persisted event record. Creator is the immutable owner.
type Event struct {
	ID          string        `json:"id"`
	Creator     users.Summary `json:"creator"`
	Name        string        `json:"name"`
	Location    string        `json:"location"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	MaxCapacity int           `json:"max_capacity"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Attendee links one user to one event. The (event, user) pair is unique.
type Attendee struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event"`
	UserID    string    `json:"user"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateParams struct {
	CreatorID   string
	Name        string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
	MaxCapacity int
}

// Repository is the storage capability set for events and attendees.
// GetByIDForUpdate locks the event row and is only meaningful inside WithTx;
// the registration path relies on it to serialize capacity checks per event.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Event, error)
	List(ctx context.Context) ([]Event, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	GetByIDForUpdate(ctx context.Context, id string) (*Event, error)

	HasAttendee(ctx context.Context, eventID, userID string) (bool, error)
	CountAttendees(ctx context.Context, eventID string) (int, error)
	InsertAttendee(ctx context.Context, eventID, userID string) (*Attendee, error)
	ListAttendeeUsers(ctx context.Context, eventID string) ([]users.Summary, error)

	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
}
