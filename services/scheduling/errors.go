package scheduling

import (
	"errors"
	"fmt"
)

// Error codes for the scheduling engine.
const (
	CodeInvalidRequest     = "invalidRequest"
	CodeAdapterUnavailable = "adapterUnavailable"
	CodeNoSlotsAvailable   = "noSlotsAvailable"
	CodeSlotConflict       = "slotConflict"
)

// Error is a scheduling failure with a machine-readable code. SlotConflict
// and NoSlotsAvailable are routine outcomes the caller recovers from by
// re-planning; AdapterUnavailable means the retry budget is exhausted.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewInvalidRequestError(msg string) error {
	return &Error{Code: CodeInvalidRequest, Message: msg}
}

func NewNoSlotsAvailableError(msg string) error {
	return &Error{Code: CodeNoSlotsAvailable, Message: msg}
}

func NewSlotConflictError(msg string) error {
	return &Error{Code: CodeSlotConflict, Message: msg}
}

func NewAdapterUnavailableError(op string, err error) error {
	return &Error{
		Code:    CodeAdapterUnavailable,
		Message: fmt.Sprintf("%s unavailable after retries", op),
		Err:     err,
	}
}

func hasCode(err error, code string) bool {
	var se *Error
	return errors.As(err, &se) && se.Code == code
}

func IsInvalidRequest(err error) bool     { return hasCode(err, CodeInvalidRequest) }
func IsAdapterUnavailable(err error) bool { return hasCode(err, CodeAdapterUnavailable) }
func IsNoSlotsAvailable(err error) bool   { return hasCode(err, CodeNoSlotsAvailable) }
func IsSlotConflict(err error) bool       { return hasCode(err, CodeSlotConflict) }
