package errors

import "github.com/cockroachdb/errors"

// Thin re-exports of the cockroachdb/errors helpers used throughout the
// CLI, so callers need a single errors import.

// New creates an error with the given message.
func New(msg string) error { return errors.New(msg) }

// Newf creates an error from a format string.
func Newf(format string, args ...any) error { return errors.Newf(format, args...) }

// Wrap annotates err with a message, returning nil if err is nil.
func Wrap(err error, msg string) error { return errors.Wrap(err, msg) }

// Wrapf annotates err with a formatted message, returning nil if err is nil.
func Wrapf(err error, format string, args ...any) error {
	return errors.Wrapf(err, format, args...)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return errors.As(err, target) }

// CombineErrors returns err, or otherErr if err is nil, or a combined error
// carrying both. Used to collect per-item failures from batch operations.
func CombineErrors(err, otherErr error) error { return errors.CombineErrors(err, otherErr) }
