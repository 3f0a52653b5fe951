package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gatherly/server/internal/domain/users"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type Service struct {
	repo      Repository
	logger    zerolog.Logger
	validator *validator.Validate
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		logger:    logger.With().Str("component", "events").Logger(),
		validator: validator.New(),
	}
}

// EventInput is the creation payload. Timestamps are RFC 3339.
type EventInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	Location    string `json:"location" validate:"required,max=255"`
	StartTime   string `json:"start_time" validate:"required"`
	EndTime     string `json:"end_time" validate:"required"`
	MaxCapacity int    `json:"max_capacity" validate:"required,gt=0"`
}

// Create validates the input and persists a new event owned by creatorID.
// The end time must be strictly after the start time; equal timestamps are
// rejected.
func (s *Service) Create(ctx context.Context, creatorID string, input EventInput) (*Event, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, validationErrorFrom(err)
	}

	start, err := parseTimestamp("start_time", input.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := parseTimestamp("end_time", input.EndTime)
	if err != nil {
		return nil, err
	}
	if !end.After(start) {
		return nil, ValidationError{Message: "End time must be after start time."}
	}

	event, err := s.repo.Create(ctx, CreateParams{
		CreatorID:   creatorID,
		Name:        input.Name,
		Location:    input.Location,
		StartTime:   start,
		EndTime:     end,
		MaxCapacity: input.MaxCapacity,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("event_id", event.ID).Str("creator_id", creatorID).Msg("event created")
	return event, nil
}

// List returns all events, newest first.
func (s *Service) List(ctx context.Context) ([]Event, error) {
	return s.repo.List(ctx)
}

// Get returns a single event by ID.
func (s *Service) Get(ctx context.Context, id string) (*Event, error) {
	return s.repo.GetByID(ctx, id)
}

// RegisterAttendee decides whether userID may be admitted to the event and,
// on admit, persists exactly one attendee record. Checks run in a fixed
// order so a given violation set always yields the same reason: creator
// exclusion, then duplicate, then capacity. The whole decision executes in
// one transaction holding a row lock on the event, so two concurrent
// attempts cannot both observe free capacity and overbook.
func (s *Service) RegisterAttendee(ctx context.Context, eventID, userID string) (*Attendee, error) {
	var attendee *Attendee
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		event, err := repo.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return err
		}

		if event.Creator.ID == userID {
			return ErrCreatorRegistration
		}

		registered, err := repo.HasAttendee(ctx, eventID, userID)
		if err != nil {
			return fmt.Errorf("check registration: %w", err)
		}
		if registered {
			return ErrAlreadyRegistered
		}

		count, err := repo.CountAttendees(ctx, eventID)
		if err != nil {
			return fmt.Errorf("count attendees: %w", err)
		}
		if count >= event.MaxCapacity {
			return ErrCapacityReached
		}

		attendee, err = repo.InsertAttendee(ctx, eventID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("event_id", eventID).Str("user_id", userID).Msg("attendee registered")
	return attendee, nil
}

// Attendees returns the event plus the flat list of registered users.
func (s *Service) Attendees(ctx context.Context, eventID string) (*Event, []users.Summary, error) {
	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	attendees, err := s.repo.ListAttendeeUsers(ctx, eventID)
	if err != nil {
		return nil, nil, fmt.Errorf("list attendees: %w", err)
	}
	return event, attendees, nil
}

func parseTimestamp(field, value string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, ValidationError{Field: field, Message: "must be an RFC 3339 timestamp"}
	}
	return parsed, nil
}

func validationErrorFrom(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return ValidationError{Message: err.Error()}
	}

	first := verrs[0]
	field := jsonFieldName(first.Field())
	switch first.Tag() {
	case "required":
		return ValidationError{Field: field, Message: "is required"}
	case "gt":
		return ValidationError{Field: field, Message: "must be a positive integer"}
	case "max":
		return ValidationError{Field: field, Message: fmt.Sprintf("must be at most %s characters", first.Param())}
	default:
		return ValidationError{Field: field, Message: "is invalid"}
	}
}

func jsonFieldName(structField string) string {
	switch structField {
	case "StartTime":
		return "start_time"
	case "EndTime":
		return "end_time"
	case "MaxCapacity":
		return "max_capacity"
	default:
		return strings.ToLower(structField)
	}
}
