package errs

import (
	"errors"
	"fmt"
)

// Business-rule errors are detected before any write and fail closed.
// ErrStoreUnavailable wraps backend failures so callers can surface a
// retryable, non-fatal message instead of a raw driver error.
var (
	ErrValidation        = errors.New("validation failed")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrNotCancellable    = errors.New("order not cancellable")
	ErrUnauthorized      = errors.New("not authorized")
	ErrNotFound          = errors.New("not found")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Store wraps a backend error as ErrStoreUnavailable. Nil stays nil so
// call sites can wrap unconditionally.
func Store(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
