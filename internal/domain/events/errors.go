package events

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("event not found")

	// Registration rejections, in the order the validator evaluates them.
	ErrCreatorRegistration = errors.New("Event creator cannot register as an attendee.")
	ErrAlreadyRegistered   = errors.New("This user is already registered for the event.")
	ErrCapacityReached     = errors.New("Event is full. Max capacity reached.")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsRegistrationRejection reports whether err is one of the business-rule
// rejections from the registration validator, as opposed to a storage error.
func IsRegistrationRejection(err error) bool {
	return errors.Is(err, ErrCreatorRegistration) ||
		errors.Is(err, ErrAlreadyRegistered) ||
		errors.Is(err, ErrCapacityReached)
}
