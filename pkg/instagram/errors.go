package instagram

import (
	"errors"
	"fmt"
)

// Kind classifies Instagram API failures. The client translates HTTP status
// codes and API error payloads into exactly one Kind, so callers never inspect
// response text themselves.
type Kind string

const (
	KindNetwork           Kind = "network"
	KindRateLimited       Kind = "rate_limited"
	KindLoginRequired     Kind = "login_required"
	KindChallengeRequired Kind = "challenge_required"
	KindUnauthorized      Kind = "unauthorized"
	KindNotFound          Kind = "not_found"
	KindParsing           Kind = "parsing"
	KindServer            Kind = "server_error"
	KindUnknown           Kind = "unknown"
)

// Error represents an Instagram API error with its classified kind.
type Error struct {
	Kind    Kind
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("instagram %s error (code %d): %s", e.Kind, e.Code, e.Message)
}

// KindOf returns the classified kind of err, or KindUnknown when err is not an
// API error produced by this package.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// IsSessionInvalid reports whether err means the session must be fully
// re-established before any further API calls.
func IsSessionInvalid(err error) bool {
	switch KindOf(err) {
	case KindLoginRequired, KindChallengeRequired:
		return true
	}
	return false
}

// IsRateLimited reports whether err is a platform rate-limit signal.
func IsRateLimited(err error) bool {
	return KindOf(err) == KindRateLimited
}

// IsUnauthorized reports whether err means the current account is not allowed
// to view or contact the target account.
func IsUnauthorized(err error) bool {
	return KindOf(err) == KindUnauthorized
}
