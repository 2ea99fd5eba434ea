package feed

import (
	"errors"
	"fmt"
)

// Kind classifies a feed error for the API edge.
type Kind int

const (
	// KindNotFound means a referenced freet or user does not exist.
	KindNotFound Kind = iota + 1
	// KindInvalidArgument means the caller supplied a bad value (content,
	// tab, sort, category, vote kind).
	KindInvalidArgument
	// KindConflict means the operation is not valid in the current audit
	// state.
	KindConflict
)

// Error is a kinded feed error
type Error struct {
	Kind    Kind
	Message string
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// NotFoundf creates a NotFound error
func NotFoundf(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgumentf creates an InvalidArgument error
func InvalidArgumentf(format string, args ...interface{}) error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// Conflictf creates a Conflict error
func Conflictf(format string, args ...interface{}) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// ErrKind returns the Kind of err, or 0 if err is not a feed error.
func ErrKind(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}

// IsNotFound reports whether err is a NotFound feed error
func IsNotFound(err error) bool {
	return ErrKind(err) == KindNotFound
}

// IsInvalidArgument reports whether err is an InvalidArgument feed error
func IsInvalidArgument(err error) bool {
	return ErrKind(err) == KindInvalidArgument
}

// IsConflict reports whether err is a Conflict feed error
func IsConflict(err error) bool {
	return ErrKind(err) == KindConflict
}
