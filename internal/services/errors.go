package services

import (
	"errors"
	"fmt"
	"strings"
)

// Every failure the moderation workflow can produce is recoverable at the
// caller: the bot layer translates each into a user-facing message, the HTTP
// layer into a status code. A failed transition leaves the row unchanged.
var (
	ErrNotFound           = errors.New("record not found")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrQuotaExceeded      = errors.New("daily submission limit reached")
	ErrDuplicatePending   = errors.New("a pending report from this user already exists")
	ErrValidation         = errors.New("validation failed")
	ErrSystemDisabled     = errors.New("submissions are currently disabled")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// wrapStorage tags a driver/connectivity failure so callers can match it
// with errors.Is and retry with backoff. Conditional-update semantics keep
// every operation safe to retry.
func wrapStorage(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}

// isUniqueViolation matches duplicate-key errors from both the Postgres
// driver and the SQLite driver used in tests.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
