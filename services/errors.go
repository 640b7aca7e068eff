package services

import (
	"context"
	"errors"
	"fmt"
)

// Common errors
var (
	ErrValidation             = errors.New("validation error")
	ErrNoteNotFound           = errors.New("note not found")
	ErrCalendarNotFound       = errors.New("calendar not found")
	ErrUserNotFound           = errors.New("user not found")
	ErrAccessDenied           = errors.New("access denied")
	ErrConcurrentModification = errors.New("note was modified concurrently")
	ErrStoreUnavailable       = errors.New("store unavailable")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidToken           = errors.New("invalid token")
	ErrResourceExists         = errors.New("resource already exists")
)

// wrapStoreErr converts deadline and cancellation failures from the
// persistence layer into the retryable ErrStoreUnavailable; everything else
// passes through untouched.
func wrapStoreErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return err
}
