package handlers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gatherly/server/internal/domain/events"
	"github.com/gatherly/server/internal/domain/tokens"
	"github.com/gatherly/server/internal/domain/users"
)

type memUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*users.User // by ID
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*users.User)}
}

func (r *memUserRepo) Create(_ context.Context, params users.CreateParams) (*users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == params.Email {
			return nil, users.ErrEmailTaken
		}
	}

	r.seq++
	user := &users.User{
		ID:           fmt.Sprintf("user-%d", r.seq),
		Email:        params.Email,
		Name:         params.Name,
		PasswordHash: params.PasswordHash,
		IsActive:     params.IsActive,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	r.users[user.ID] = user
	return user, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, users.ErrNotFound
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, users.ErrNotFound
}

type memEventsRepo struct {
	mu        sync.Mutex
	seq       int
	events    map[string]*events.Event
	attendees map[string][]events.Attendee // by event ID
	userRepo  *memUserRepo
}

func newMemEventsRepo(userRepo *memUserRepo) *memEventsRepo {
	return &memEventsRepo{
		events:    make(map[string]*events.Event),
		attendees: make(map[string][]events.Attendee),
		userRepo:  userRepo,
	}
}

func (r *memEventsRepo) Create(ctx context.Context, params events.CreateParams) (*events.Event, error) {
	creator, err := r.userRepo.GetByID(ctx, params.CreatorID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	event := &events.Event{
		ID:          fmt.Sprintf("event-%d", r.seq),
		Creator:     creator.Summary(),
		Name:        params.Name,
		Location:    params.Location,
		StartTime:   params.StartTime,
		EndTime:     params.EndTime,
		MaxCapacity: params.MaxCapacity,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	r.events[event.ID] = event
	return event, nil
}

func (r *memEventsRepo) List(_ context.Context) ([]events.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]events.Event, 0, len(r.events))
	// Newest first by insertion order.
	for i := r.seq; i >= 1; i-- {
		if e, ok := r.events[fmt.Sprintf("event-%d", i)]; ok {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *memEventsRepo) GetByID(_ context.Context, id string) (*events.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.events[id]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, events.ErrNotFound
}

func (r *memEventsRepo) GetByIDForUpdate(ctx context.Context, id string) (*events.Event, error) {
	return r.GetByID(ctx, id)
}

func (r *memEventsRepo) HasAttendee(_ context.Context, eventID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.attendees[eventID] {
		if a.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memEventsRepo) CountAttendees(_ context.Context, eventID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.attendees[eventID]), nil
}

func (r *memEventsRepo) InsertAttendee(_ context.Context, eventID, userID string) (*events.Attendee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.attendees[eventID] {
		if a.UserID == userID {
			return nil, events.ErrAlreadyRegistered
		}
	}

	attendee := events.Attendee{
		ID:        fmt.Sprintf("attendee-%d", len(r.attendees[eventID])+1),
		EventID:   eventID,
		UserID:    userID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	r.attendees[eventID] = append(r.attendees[eventID], attendee)
	return &attendee, nil
}

func (r *memEventsRepo) ListAttendeeUsers(ctx context.Context, eventID string) ([]users.Summary, error) {
	r.mu.Lock()
	list := append([]events.Attendee(nil), r.attendees[eventID]...)
	r.mu.Unlock()

	out := make([]users.Summary, 0, len(list))
	for _, a := range list {
		user, err := r.userRepo.GetByID(ctx, a.UserID)
		if err != nil {
			return nil, err
		}
		out = append(out, user.Summary())
	}
	return out, nil
}

func (r *memEventsRepo) WithTx(ctx context.Context, fn func(context.Context, events.Repository) error) error {
	return fn(ctx, r)
}

type memBlacklist struct {
	mu   sync.Mutex
	jtis map[string]struct{}
}

func newMemBlacklist() *memBlacklist {
	return &memBlacklist{jtis: make(map[string]struct{})}
}

func (b *memBlacklist) Insert(_ context.Context, params tokens.BlacklistParams) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.jtis[params.JTI]; ok {
		return tokens.ErrBlacklisted
	}
	b.jtis[params.JTI] = struct{}{}
	return nil
}

func (b *memBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, ok := b.jtis[jti]
	return ok, nil
}
