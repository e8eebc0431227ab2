package usecase

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

type FetchErrorKind string

const (
	FetchErrorNetwork   FetchErrorKind = "network"
	FetchErrorAuth      FetchErrorKind = "auth"
	FetchErrorRateLimit FetchErrorKind = "rate_limit"
	FetchErrorMalformed FetchErrorKind = "malformed"
	FetchErrorStatus    FetchErrorKind = "status"
)

// FetchError is a failed feed read. It unwraps to ErrDependencyUnavailable so
// callers never confuse it with an empty page.
type FetchError struct {
	Kind       FetchErrorKind
	StatusCode int
	Op         string
	Err        error
	// ResetAt is when the feed lifts a rate limit, zero when unknown.
	ResetAt time.Time
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("feed %s failed (%s, status=%d): %v", e.Op, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("feed %s failed (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDependencyUnavailable}
	}
	return []error{ErrDependencyUnavailable, e.Err}
}

// IsFeedRateLimited reports whether err carries a rate-limited feed read.
func IsFeedRateLimited(err error) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr) && fetchErr.Kind == FetchErrorRateLimit
}
