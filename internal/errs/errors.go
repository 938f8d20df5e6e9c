// Package errs defines the sentinel errors shared across termground packages.
//
// Callers wrap these with fmt.Errorf("...: %w", ...) and test them with
// errors.Is or the helpers below.
package errs

import "errors"

var (
	// ErrMalformedTerm indicates a term record is missing a required field.
	ErrMalformedTerm = errors.New("malformed term record")

	// ErrInvalidConfig indicates a configuration value is out of range.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidModel indicates a disambiguation model artifact cannot be used.
	ErrInvalidModel = errors.New("invalid model")

	// ErrUnsupportedFormat indicates a resource or document format is unknown.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrNotFound indicates a requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates an invalid request.
	ErrValidation = errors.New("validation error")
)

// IsMalformedTerm reports whether any error in err's chain is ErrMalformedTerm.
func IsMalformedTerm(err error) bool {
	return errors.Is(err, ErrMalformedTerm)
}

// IsNotFound reports whether any error in err's chain is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether any error in err's chain is ErrValidation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
