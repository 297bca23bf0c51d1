// Package fault holds the error classes shared by every domain service:
// denied authorization decisions, recoverable validation rejections and
// invariant violations that must abort the running operation.
package fault

import (
	"errors"
	"fmt"
)

// ErrAccessDenied is returned by an operation whose authorization check
// came back false. It never carries details about why.
var ErrAccessDenied = errors.New("access denied")

// ValidationError is a recoverable rejection of caller input. The message
// is safe to surface to the end client.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func Validationf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// InvariantError marks a state that should be structurally impossible,
// such as a missing numeric id after a successful insert. Operations that
// hit one abort entirely; it is a bug, not user error.
type InvariantError struct {
	msg string
	err error
}

func (e *InvariantError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *InvariantError) Unwrap() error {
	return e.err
}

func Invariantf(format string, args ...any) error {
	return &InvariantError{msg: fmt.Sprintf(format, args...)}
}

// InvariantWrap attaches an underlying cause to an invariant failure.
func InvariantWrap(err error, format string, args ...any) error {
	return &InvariantError{msg: fmt.Sprintf(format, args...), err: err}
}

func IsInvariant(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}
