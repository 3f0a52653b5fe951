package users

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
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

// ValidationErrorFrom maps a validator.ValidationErrors value onto the first
// failing field so callers get a single deterministic reason.
func ValidationErrorFrom(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return ValidationError{Message: err.Error()}
	}

	first := verrs[0]
	field := strings.ToLower(first.Field())
	switch first.Tag() {
	case "required":
		return ValidationError{Field: field, Message: "is required"}
	case "email":
		return ValidationError{Field: field, Message: "must be a valid email address"}
	case "min":
		return ValidationError{Field: field, Message: fmt.Sprintf("must be at least %s characters", first.Param())}
	case "max":
		return ValidationError{Field: field, Message: fmt.Sprintf("must be at most %s characters", first.Param())}
	default:
		return ValidationError{Field: field, Message: "is invalid"}
	}
}
