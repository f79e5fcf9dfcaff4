package rewards

import (
	"errors"
	"fmt"
)

var (
	// ErrClassifierUnavailable indicates the category classifier failed.
	// Retryable by the caller; never silently replaced with a guessed category.
	ErrClassifierUnavailable = errors.New("category classifier unavailable")

	// ErrClassifierTimeout indicates classification exceeded the engine timeout.
	ErrClassifierTimeout = errors.New("category classification timed out")
)

// InvalidInputError reports a user-correctable problem with a request field.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
