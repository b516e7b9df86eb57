package gtuber

import "fmt"

// Kind identifies a category of error gtuber can return. Compare with
// errors.Is against a *Error with only Kind set, e.g.:
//
//	if errors.Is(err, &gtuber.Error{Kind: gtuber.NoPlugin}) { ... }
type Kind int

const (
	// KindUnknown is the zero value and never returned by the library.
	KindUnknown Kind = iota

	// NoPlugin means no extractor advertised support for the requested URL.
	NoPlugin
	// BadURI means the URL failed to parse or mismatched the chosen extractor.
	BadURI
	// RequestCreateFailed means create_request returned Ok but attached no request.
	RequestCreateFailed
	// ParseFailed means the extractor could not extract required fields.
	ParseFailed
	// OtherWebsiteError is the catch-all for extractor-raised failures.
	OtherWebsiteError
	// MissingInfo means extraction reported success but produced no streams.
	MissingInfo
	// Cancelled means the cancellation handle fired during a suspension point.
	Cancelled
	// Network means the underlying HTTP/IO transport failed.
	Network
	// HeartbeatPingFailed means a heartbeat's ping hook returned Error.
	HeartbeatPingFailed
	// HeartbeatOther is a non-ping heartbeat failure (e.g. pong rejected).
	HeartbeatOther
	// ManifestNoData means the manifest generator produced nothing.
	ManifestNoData
)

func (k Kind) String() string {
	switch k {
	case NoPlugin:
		return "no_plugin"
	case BadURI:
		return "bad_uri"
	case RequestCreateFailed:
		return "request_create_failed"
	case ParseFailed:
		return "parse_failed"
	case OtherWebsiteError:
		return "other_website_error"
	case MissingInfo:
		return "missing_info"
	case Cancelled:
		return "cancelled"
	case Network:
		return "network"
	case HeartbeatPingFailed:
		return "heartbeat_ping_failed"
	case HeartbeatOther:
		return "heartbeat_other"
	case ManifestNoData:
		return "manifest_no_data"
	default:
		return "unknown"
	}
}

// Error is the error type returned by every exported gtuber operation. It
// carries a Kind, a short human message, and optionally the underlying
// error that triggered it.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("gtuber: %s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("gtuber: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is makes errors.Is(err, &Error{Kind: X}) match any *Error with Kind X,
// regardless of Message/Cause, so callers can test error category without
// string comparison.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewError builds an *Error with the given kind and message.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError builds an *Error with the given kind, message, and underlying cause.
func WrapError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}
