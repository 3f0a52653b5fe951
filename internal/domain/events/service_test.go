package events

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/gatherly/server/internal/domain/users"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEventsRepo is an in-memory Repository. WithTx just runs the callback
// against the same store; transactional serialization is covered by the
// postgres integration tests.
type stubEventsRepo struct {
	events    map[string]*Event
	attendees map[string][]Attendee
	users     map[string]users.Summary
	nextID    int
}

func newStubEventsRepo() *stubEventsRepo {
	return &stubEventsRepo{
		events:    make(map[string]*Event),
		attendees: make(map[string][]Attendee),
		users:     make(map[string]users.Summary),
	}
}

func (s *stubEventsRepo) Create(_ context.Context, params CreateParams) (*Event, error) {
	s.nextID++
	now := time.Now()
	event := &Event{
		ID:          fmt.Sprintf("event-%d", s.nextID),
		Creator:     s.users[params.CreatorID],
		Name:        params.Name,
		Location:    params.Location,
		StartTime:   params.StartTime,
		EndTime:     params.EndTime,
		MaxCapacity: params.MaxCapacity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.events[event.ID] = event
	return event, nil
}

func (s *stubEventsRepo) List(_ context.Context) ([]Event, error) {
	items := make([]Event, 0, len(s.events))
	for _, event := range s.events {
		items = append(items, *event)
	}
	return items, nil
}

func (s *stubEventsRepo) GetByID(_ context.Context, id string) (*Event, error) {
	event, ok := s.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return event, nil
}

func (s *stubEventsRepo) GetByIDForUpdate(ctx context.Context, id string) (*Event, error) {
	return s.GetByID(ctx, id)
}

func (s *stubEventsRepo) HasAttendee(_ context.Context, eventID, userID string) (bool, error) {
	for _, attendee := range s.attendees[eventID] {
		if attendee.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubEventsRepo) CountAttendees(_ context.Context, eventID string) (int, error) {
	return len(s.attendees[eventID]), nil
}

func (s *stubEventsRepo) InsertAttendee(_ context.Context, eventID, userID string) (*Attendee, error) {
	now := time.Now()
	attendee := Attendee{
		ID:        fmt.Sprintf("attendee-%d", len(s.attendees[eventID])+1),
		EventID:   eventID,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.attendees[eventID] = append(s.attendees[eventID], attendee)
	return &attendee, nil
}

func (s *stubEventsRepo) ListAttendeeUsers(_ context.Context, eventID string) ([]users.Summary, error) {
	summaries := make([]users.Summary, 0, len(s.attendees[eventID]))
	for _, attendee := range s.attendees[eventID] {
		summaries = append(summaries, s.users[attendee.UserID])
	}
	return summaries, nil
}

func (s *stubEventsRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, s)
}

func (s *stubEventsRepo) addUser(id, name, email string) {
	s.users[id] = users.Summary{ID: id, Name: name, Email: email}
}

func newTestService(repo Repository) *Service {
	return NewService(repo, zerolog.Nop())
}

func validInput() EventInput {
	return EventInput{
		Name:        "Conference 2026",
		Location:    "Berlin",
		StartTime:   "2099-01-01T10:00:00Z",
		EndTime:     "2099-01-01T12:00:00Z",
		MaxCapacity: 5,
	}
}

func TestCreateEvent(t *testing.T) {
	repo := newStubEventsRepo()
	repo.addUser("creator", "Grace Hopper", "grace@example.com")
	svc := newTestService(repo)

	event, err := svc.Create(context.Background(), "creator", validInput())
	require.NoError(t, err)
	assert.Equal(t, "Conference 2026", event.Name)
	assert.Equal(t, "creator", event.Creator.ID)
	assert.Equal(t, 5, event.MaxCapacity)
}

func TestCreateEventEndBeforeStart(t *testing.T) {
	svc := newTestService(newStubEventsRepo())

	input := validInput()
	input.StartTime = "2099-01-01T12:00:00Z"
	input.EndTime = "2099-01-01T10:00:00Z"

	_, err := svc.Create(context.Background(), "creator", input)
	require.Error(t, err)
	assert.Equal(t, "End time must be after start time.", err.Error())
}

func TestCreateEventEndEqualsStart(t *testing.T) {
	svc := newTestService(newStubEventsRepo())

	input := validInput()
	input.StartTime = "2099-01-01T10:00:00Z"
	input.EndTime = "2099-01-01T10:00:00Z"

	_, err := svc.Create(context.Background(), "creator", input)
	require.Error(t, err)
	assert.Equal(t, "End time must be after start time.", err.Error())
}

func TestCreateEventEndOneSecondAfterStart(t *testing.T) {
	repo := newStubEventsRepo()
	repo.addUser("creator", "Grace", "grace@example.com")
	svc := newTestService(repo)

	input := validInput()
	input.StartTime = "2099-01-01T10:00:00Z"
	input.EndTime = "2099-01-01T10:00:01Z"

	event, err := svc.Create(context.Background(), "creator", input)
	require.NoError(t, err)
	assert.Equal(t, time.Second, event.EndTime.Sub(event.StartTime))
}

func TestCreateEventZeroCapacity(t *testing.T) {
	svc := newTestService(newStubEventsRepo())

	input := validInput()
	input.MaxCapacity = 0

	_, err := svc.Create(context.Background(), "creator", input)
	require.Error(t, err)
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "max_capacity", verr.Field)
}

func TestCreateEventBadTimestamp(t *testing.T) {
	svc := newTestService(newStubEventsRepo())

	input := validInput()
	input.StartTime = "tomorrow at noon"

	_, err := svc.Create(context.Background(), "creator", input)
	require.Error(t, err)
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "start_time", verr.Field)
}

func registerFixture(t *testing.T, capacity int) (*Service, *stubEventsRepo, *Event) {
	t.Helper()
	repo := newStubEventsRepo()
	repo.addUser("creator", "Grace", "grace@example.com")
	repo.addUser("alice", "Alice", "alice@example.com")
	repo.addUser("bob", "Bob", "bob@example.com")
	svc := newTestService(repo)

	input := validInput()
	input.MaxCapacity = capacity
	event, err := svc.Create(context.Background(), "creator", input)
	require.NoError(t, err)
	return svc, repo, event
}

func TestRegisterAttendee(t *testing.T) {
	svc, _, event := registerFixture(t, 2)

	attendee, err := svc.RegisterAttendee(context.Background(), event.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, event.ID, attendee.EventID)
	assert.Equal(t, "alice", attendee.UserID)
}

func TestRegisterAttendeeCreatorRejected(t *testing.T) {
	svc, repo, event := registerFixture(t, 2)

	_, err := svc.RegisterAttendee(context.Background(), event.ID, "creator")
	require.ErrorIs(t, err, ErrCreatorRegistration)
	assert.Empty(t, repo.attendees[event.ID])
}

// The creator exclusion wins over every later check: even a full event
// reports the creator reason first.
func TestRegisterAttendeeCreatorRejectedWhenFull(t *testing.T) {
	svc, _, event := registerFixture(t, 1)

	_, err := svc.RegisterAttendee(context.Background(), event.ID, "alice")
	require.NoError(t, err)

	_, err = svc.RegisterAttendee(context.Background(), event.ID, "creator")
	require.ErrorIs(t, err, ErrCreatorRegistration)
}

func TestRegisterAttendeeDuplicateRejected(t *testing.T) {
	svc, repo, event := registerFixture(t, 2)

	_, err := svc.RegisterAttendee(context.Background(), event.ID, "alice")
	require.NoError(t, err)

	_, err = svc.RegisterAttendee(context.Background(), event.ID, "alice")
	require.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.Len(t, repo.attendees[event.ID], 1)
}

func TestRegisterAttendeeCapacityRejected(t *testing.T) {
	svc, repo, event := registerFixture(t, 1)

	_, err := svc.RegisterAttendee(context.Background(), event.ID, "alice")
	require.NoError(t, err)

	_, err = svc.RegisterAttendee(context.Background(), event.ID, "bob")
	require.ErrorIs(t, err, ErrCapacityReached)
	assert.Len(t, repo.attendees[event.ID], 1)
}

// A duplicate attempt on a full event reports the duplicate reason, not
// capacity: the checks run in a fixed order.
func TestRegisterAttendeeDuplicateBeatsCapacity(t *testing.T) {
	svc, _, event := registerFixture(t, 1)

	_, err := svc.RegisterAttendee(context.Background(), event.ID, "alice")
	require.NoError(t, err)

	_, err = svc.RegisterAttendee(context.Background(), event.ID, "alice")
	require.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegisterAttendeeUnknownEvent(t *testing.T) {
	svc := newTestService(newStubEventsRepo())

	_, err := svc.RegisterAttendee(context.Background(), "missing", "alice")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAttendees(t *testing.T) {
	svc, _, event := registerFixture(t, 3)

	_, err := svc.RegisterAttendee(context.Background(), event.ID, "alice")
	require.NoError(t, err)
	_, err = svc.RegisterAttendee(context.Background(), event.ID, "bob")
	require.NoError(t, err)

	got, attendees, err := svc.Attendees(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, event.ID, got.ID)
	require.Len(t, attendees, 2)
	assert.Equal(t, "alice@example.com", attendees[0].Email)
	assert.Equal(t, "bob@example.com", attendees[1].Email)
}

func TestIsRegistrationRejection(t *testing.T) {
	assert.True(t, IsRegistrationRejection(ErrCreatorRegistration))
	assert.True(t, IsRegistrationRejection(ErrAlreadyRegistered))
	assert.True(t, IsRegistrationRejection(ErrCapacityReached))
	assert.False(t, IsRegistrationRejection(ErrNotFound))
}
