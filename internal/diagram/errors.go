package diagram

import (
	"errors"
	"fmt"
)

// Kind classifies model errors.
type Kind string

const (
	KindDuplicateEntity  Kind = "duplicate_entity"
	KindNotFound         Kind = "not_found"
	KindInvalidOperation Kind = "invalid_operation"
	KindInvalidState     Kind = "invalid_state"
)

// Error is the error type returned by every model and command operation.
// errors.Is matches it against the Err* sentinels by kind.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is the bare sentinel of e's kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Cause == nil && t.Kind == e.Kind
}

var (
	ErrDuplicateEntity  = &Error{Kind: KindDuplicateEntity}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrInvalidOperation = &Error{Kind: KindInvalidOperation}
	ErrInvalidState     = &Error{Kind: KindInvalidState}

	// ErrReentrantMutation is returned when a listener tries to change the
	// model while a change notification is being delivered.
	ErrReentrantMutation = &Error{Kind: KindInvalidState, Message: "model mutated during change notification"}
)

// Errorf builds an *Error of the given kind.
func Errorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
