package agenticflow

import (
	"context"
	"io"
	"time"
)

// Params holds query parameters. Values may be strings, numbers, bools,
// slices of those, or nil. Nil values are dropped when encoding.
type Params map[string]any

// RequestOptions carries everything a single call may override.
// JSON and Body are mutually exclusive.
type RequestOptions struct {
	PathParams map[string]string
	Query      Params
	Header     map[string]string
	JSON       any
	Body       []byte
	Timeout    time.Duration // 0 = client default
	APIKey     string        // overrides the client credential for this call
	Method     string        // only consulted by Call for bare paths
}

// Requester is the transport-agnostic surface the resource wrappers and
// the CLI build on.
type Requester interface {
	Request(ctx context.Context, method, path string, opts RequestOptions) (*Response, error)
	RequestStream(ctx context.Context, method, path string, opts RequestOptions) (*LiveResponse, error)
}

// LiveResponse is a successful response whose body has not been read.
// The caller owns Body and must close it.
type LiveResponse struct {
	StatusCode int
	Header     map[string]string
	URL        string
	Method     string
	RequestID  string
	Body       io.ReadCloser
}
