package errors

import (
	goErrors "errors"
	"fmt"
)

// New returns an error with the given message.
func New(msg string) error {
	return goErrors.New(msg)
}

// Is and As are re-exported so that callers only need to import this package.
var (
	Is = goErrors.Is
	As = goErrors.As
)

// contextError annotates an error with a short description of what was
// being attempted when it happened.
type contextError struct {
	context string
	cause   error
}

// WithContext wraps `err` with `context`. It returns nil if `err` is nil so
// that it can be used directly in return statements.
func WithContext(err error, context string) error {
	if err == nil {
		return nil
	}
	return contextError{context: context, cause: err}
}

func (err contextError) Error() string {
	return fmt.Sprintf("%s: %s", err.context, err.cause)
}

func (err contextError) Unwrap() error {
	return err.cause
}

// RootCause returns the innermost error wrapped by WithContext.
func RootCause(err error) error {
	for {
		ctxErr, ok := err.(contextError)
		if !ok {
			return err
		}
		err = ctxErr.cause
	}
}

// FriendlyError is an error whose message is meant to be shown to the user
// as is, without the context chain.
type FriendlyError struct {
	msg string
}

// NewFriendlyError formats a FriendlyError.
func NewFriendlyError(format string, args ...interface{}) error {
	return FriendlyError{fmt.Sprintf(format, args...)}
}

func (err FriendlyError) Error() string {
	return err.msg
}

// FriendlyMessage returns the message that should be shown to the user.
func (err FriendlyError) FriendlyMessage() string {
	return err.msg
}

type friendlyMessager interface {
	FriendlyMessage() string
}

// GetPrintableMessage returns the message that should be shown to the user
// for `err`. If any error in the chain has a friendly message, that message
// is used. Otherwise, the full error string is returned.
func GetPrintableMessage(err error) string {
	var friendly friendlyMessager
	if As(err, &friendly) {
		return friendly.FriendlyMessage()
	}
	return err.Error()
}
