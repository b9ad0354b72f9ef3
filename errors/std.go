package errors

import "errors"

// Is, As, Unwrap and Join forward to the standard library so callers that
// import this package keep the usual helpers at hand.

func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

func Unwrap(err error) error { return errors.Unwrap(err) }

func Join(errs ...error) error { return errors.Join(errs...) }
