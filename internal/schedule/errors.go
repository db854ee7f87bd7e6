package schedule

import (
	"fmt"

	"github.com/theirongolddev/paytrack/internal/model"
)

// ValidationError reports a malformed obligation field.
type ValidationError = model.ValidationError

// ClockError reports a missing or unparsable "today".
type ClockError struct {
	Input string
	Err   error
}

func (e *ClockError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid date %q: %v", e.Input, e.Err)
	}
	return fmt.Sprintf("invalid date %q", e.Input)
}

func (e *ClockError) Unwrap() error { return e.Err }
