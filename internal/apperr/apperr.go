// Package apperr holds the error taxonomy shared by every write path:
// validation failures, authentication failures, remote failures, and
// fallback conditions that are logged but never returned.
package apperr

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ValidationError reports a missing or invalid required field. It is always
// returned before any local state changes.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Invalid is shorthand for a *ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// AuthError blocks a session transition: bad credentials, duplicate email,
// or an operation that needs a signed-in user.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// Unauthorized is shorthand for an *AuthError wrapping err.
func Unauthorized(reason string, err error) error {
	return &AuthError{Reason: reason, Err: err}
}

// RemoteError wraps a failed remote call. When it comes back from a write
// path the optimistic local change has already been applied and is kept.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Remote wraps err as a *RemoteError for op. A nil err stays nil and an
// existing *RemoteError is not wrapped twice.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return err
	}
	return &RemoteError{Op: op, Err: err}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}

// Fallback records a fallback condition: the remote store is absent,
// misconfigured or empty and the caller silently switches to local data.
func Fallback(logger *zap.SugaredLogger, reason string, err error) {
	if logger == nil {
		return
	}
	if err != nil {
		logger.Warnw("falling back to local data", "reason", reason, "error", err)
		return
	}
	logger.Warnw("falling back to local data", "reason", reason)
}
