package coingecko

import (
	"errors"
	"fmt"
)

// Validation errors fail before any I/O is performed.
var (
	ErrMissingCoinID = errors.New("coin id is required")
	ErrInvalidDays   = errors.New("days must be positive")
)

// FetchError reports a live request that came back non-2xx. It carries
// the HTTP status so callers can surface it.
type FetchError struct {
	StatusCode int
	URL        string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

// IsFetchError reports whether err is a failed upstream request.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// ParseError reports a 2xx response whose body did not decode. Callers
// treat it the same as a FetchError: the upstream is at fault either way.
type ParseError struct {
	Resource string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s response: %v", e.Resource, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsParseError reports whether err is a malformed upstream payload.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
