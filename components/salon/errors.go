package salon

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateButtonText  = errors.New("salon: another button already uses this text")
	ErrNoActiveMove         = errors.New("salon: no button is being moved")
	ErrUnknownButton        = errors.New("salon: button not found")
	ErrNoSelection          = errors.New("salon: no button selected")
	ErrNoInitData           = errors.New("salon: telegram init data is required")
	ErrNotFound             = errors.New("salon: record not found")
	ErrUnsupportedOperation = errors.New("salon: operation not supported for this entity")
	ErrUnknownKind          = errors.New("salon: unknown entity kind")
	ErrGatewayRequired      = errors.New("salon: gateway not configured")
)

// ValidationError reports a form field that failed client-side checks.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "salon: " + e.Reason
	}
	return fmt.Sprintf("salon: %s %s", e.Field, e.Reason)
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
