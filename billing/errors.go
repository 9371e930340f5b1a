package billing

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the engine matches exactly one of these with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrState      = errors.New("state error")
	ErrStorage    = errors.New("storage error")
)

// Error carries an error kind, a message that is safe to show to the caller and an optional cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause, so errors.Is(err, gorm.ErrRecordNotFound)
// keeps working next to errors.Is(err, ErrNotFound).
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Validation reports malformed, missing or out-of-range input.
func Validation(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func State(format string, args ...any) error {
	return &Error{Kind: ErrState, Message: fmt.Sprintf(format, args...)}
}

// Storage wraps an infrastructure failure. A nil cause yields nil so callers can wrap unconditionally.
func Storage(message string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: ErrStorage, Message: message, Err: err}
}

// Message returns the caller-facing text of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
