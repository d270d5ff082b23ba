package agenticflow

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for failure modes that carry no HTTP context.
var (
	// ErrValidation indicates a manifest, policy or request failed validation.
	ErrValidation = errors.New("validation error")

	// ErrStreamClosed indicates a stream session was closed before it drained.
	ErrStreamClosed = errors.New("stream closed")

	// ErrPolicyDenied indicates the local policy refused an operation.
	ErrPolicyDenied = errors.New("denied by policy")

	// ErrNotFound indicates a local lookup (operation, credential, cache) found nothing.
	ErrNotFound = errors.New("not found")
)

// ErrorKind discriminates the structured errors returned by the client.
type ErrorKind string

const (
	KindNetwork          ErrorKind = "network"
	KindTimeout          ErrorKind = "timeout"
	KindValidation       ErrorKind = "validation"
	KindAuthentication   ErrorKind = "authentication"
	KindAuthorization    ErrorKind = "authorization"
	KindNotFound         ErrorKind = "not_found"
	KindConflict         ErrorKind = "conflict"
	KindRateLimit        ErrorKind = "rate_limit"
	KindServer           ErrorKind = "server"
	KindAPI              ErrorKind = "api"
	KindMissingParameter ErrorKind = "missing_parameter"
	KindInvalidRequest   ErrorKind = "invalid_request"
)

// IsNetwork reports whether k is a connection-level failure. Timeouts are
// network failures triggered by the request deadline.
func (k ErrorKind) IsNetwork() bool {
	return k == KindNetwork || k == KindTimeout
}

// IsAPI reports whether k was produced from a non-2xx HTTP status.
func (k ErrorKind) IsAPI() bool {
	switch k {
	case KindValidation, KindAuthentication, KindAuthorization, KindNotFound,
		KindConflict, KindRateLimit, KindServer, KindAPI:
		return true
	}
	return false
}

// Error is the single error type crossing the SDK boundary. Fields other
// than Kind and Message are populated depending on the kind:
//   - API kinds: StatusCode, Payload, RequestID.
//   - KindMissingParameter: Params holds every required path parameter.
//   - Network kinds: Cause holds the transport error.
type Error struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	Payload    any
	RequestID  string
	Params     []string
	Cause      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches kind sentinels such as [ErrTimeout], so callers can write
// errors.Is(err, agenticflow.ErrTimeout). A timeout also matches [ErrNetwork].
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Message != "" || t.StatusCode != 0 {
		return false
	}
	if t.Kind == KindNetwork {
		return e.Kind.IsNetwork()
	}
	return t.Kind == e.Kind
}

// Kind sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrNetwork          = &Error{Kind: KindNetwork}
	ErrTimeout          = &Error{Kind: KindTimeout}
	ErrUnauthenticated  = &Error{Kind: KindAuthentication}
	ErrForbidden        = &Error{Kind: KindAuthorization}
	ErrResourceNotFound = &Error{Kind: KindNotFound}
	ErrRateLimited      = &Error{Kind: KindRateLimit}
	ErrMissingParameter = &Error{Kind: KindMissingParameter}
)

// KindOf returns the kind of the first *Error in err's chain, or "" when
// err is nil or carries no structured error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// NetworkError wraps a transport failure.
func NetworkError(cause error) *Error {
	return &Error{
		Kind:    KindNetwork,
		Message: fmt.Sprintf("Network request failed: %v", cause),
		Cause:   cause,
	}
}

// TimeoutError reports that the request deadline elapsed.
func TimeoutError(cause error) *Error {
	return &Error{
		Kind:    KindTimeout,
		Message: "Request timed out",
		Cause:   cause,
	}
}

// MissingParameterError lists every required path parameter, not only the
// ones that were missing.
func MissingParameterError(path string, required []string) *Error {
	return &Error{
		Kind:    KindMissingParameter,
		Message: fmt.Sprintf("Missing path parameters for %s: %s", path, strings.Join(required, ", ")),
		Params:  required,
	}
}
