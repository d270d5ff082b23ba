package mock

import (
	"io"
	"strings"

	"github.com/agenticflow/agenticflow"
	"github.com/agenticflow/agenticflow/stream"
)

// Interface compliance check.
var _ io.ReadCloser = (*Body)(nil)

// Body is a test double for a response body.
// ReadFn panics when nil. CloseFn is nil-safe because callers always close.
type Body struct {
	ReadFn  func(p []byte) (int, error)
	CloseFn func() error
}

// Read delegates to ReadFn.
func (b *Body) Read(p []byte) (int, error) {
	return b.ReadFn(p)
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (b *Body) Close() error {
	if b.CloseFn == nil {
		return nil
	}
	return b.CloseFn()
}

// StreamBody returns a Body that yields parts encoded as protocol lines.
func StreamBody(parts ...agenticflow.Part) *Body {
	var sb strings.Builder
	for _, p := range parts {
		line, err := stream.Encode(p)
		if err != nil {
			panic(err)
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	r := strings.NewReader(sb.String())
	return &Body{ReadFn: r.Read}
}

// LiveResponse wraps body in a 200 streaming response.
func LiveResponse(body io.ReadCloser) *agenticflow.LiveResponse {
	return &agenticflow.LiveResponse{
		StatusCode: 200,
		Header:     map[string]string{"content-type": "text/plain"},
		Body:       body,
	}
}

// JSONResponse builds a successful response carrying body as the decoded value.
func JSONResponse(status int, body any) *agenticflow.Response {
	return &agenticflow.Response{
		StatusCode: status,
		Header:     map[string]string{"content-type": "application/json"},
		Body:       body,
		OK:         agenticflow.IsOK(status),
	}
}
