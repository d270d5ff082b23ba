package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/agenticflow/agenticflow"
)

// DefaultTimeout bounds a request when neither the client nor the call sets one.
const DefaultTimeout = 30 * time.Second

// errDeadline is the cancellation cause recorded when the request timer fires.
var errDeadline = errors.New("request deadline exceeded")

// Outbound describes one HTTP request. At most one of JSON and Body may be set;
// the Client validates this before calling Send.
type Outbound struct {
	Method  string
	URL     string
	Query   agenticflow.Params
	Header  map[string]string
	JSON    any
	Body    []byte
	Timeout time.Duration

	// Streaming keeps the deadline from applying to a 2xx body: the timer is
	// stopped once success headers arrive and the context is released on
	// Body.Close.
	Streaming bool
}

// Transport sends exactly one HTTP request per call. It never retries.
type Transport struct {
	httpClient *http.Client
	timeout    time.Duration
}

// NewTransport returns a Transport using hc (http.DefaultClient when nil)
// and timeout as the default deadline (DefaultTimeout when zero).
func NewTransport(hc *http.Client, timeout time.Duration) *Transport {
	if hc == nil {
		hc = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Transport{httpClient: hc, timeout: timeout}
}

// Send issues the request. Deadline expiry surfaces as a timeout error, every
// other transport failure as a network error. The caller owns the response body.
func (t *Transport) Send(ctx context.Context, out Outbound) (*http.Response, error) {
	target := out.URL
	if q := EncodeQuery(out.Query); q != "" {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + q
	}

	var body io.Reader
	var jsonBody bool
	switch {
	case out.JSON != nil:
		data, err := json.Marshal(out.JSON)
		if err != nil {
			return nil, &agenticflow.Error{
				Kind:    agenticflow.KindInvalidRequest,
				Message: fmt.Sprintf("Failed to encode JSON body: %v", err),
				Cause:   err,
			}
		}
		body = bytes.NewReader(data)
		jsonBody = true
	case out.Body != nil:
		body = bytes.NewReader(out.Body)
	}

	timeout := out.Timeout
	if timeout <= 0 {
		timeout = t.timeout
	}
	ctx, cancel := context.WithCancelCause(ctx)
	timer := time.AfterFunc(timeout, func() { cancel(errDeadline) })

	req, err := http.NewRequestWithContext(ctx, out.Method, target, body)
	if err != nil {
		timer.Stop()
		cancel(nil)
		return nil, agenticflow.NetworkError(err)
	}
	for _, k := range sortedHeaderKeys(out.Header) {
		req.Header.Set(k, out.Header[k])
	}
	if jsonBody && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		timer.Stop()
		timedOut := errors.Is(context.Cause(ctx), errDeadline)
		cancel(nil)
		if timedOut || isTimeout(err) {
			return nil, agenticflow.TimeoutError(err)
		}
		return nil, agenticflow.NetworkError(err)
	}

	// An error body is drained under the deadline like any other response.
	if out.Streaming && agenticflow.IsOK(resp.StatusCode) {
		timer.Stop()
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, ctx: ctx, release: func() {
		timer.Stop()
		cancel(nil)
	}}
	return resp, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// cancelOnClose releases the request context when the body is closed and
// reports reads cut short by the deadline as timeouts.
type cancelOnClose struct {
	io.ReadCloser
	ctx     context.Context
	release func()
}

func (c *cancelOnClose) Read(p []byte) (int, error) {
	n, err := c.ReadCloser.Read(p)
	if err != nil && err != io.EOF && errors.Is(context.Cause(c.ctx), errDeadline) {
		return n, agenticflow.TimeoutError(err)
	}
	return n, err
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.release()
	return err
}

// EncodeQuery renders params with keys in sorted order. Slices repeat the
// key, bools render as true/false and nil values are dropped.
func EncodeQuery(params agenticflow.Params) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	write := func(k, v string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(v))
	}
	for _, k := range keys {
		for _, v := range queryValues(params[k]) {
			write(k, v)
		}
	}
	return b.String()
}

func queryValues(v any) []string {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) && rv.IsNil() {
		return nil
	}
	switch x := v.(type) {
	case string:
		return []string{x}
	case []string:
		return x
	case bool:
		return []string{strconv.FormatBool(x)}
	case fmt.Stringer:
		return []string{x.String()}
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return queryValues(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		var out []string
		for i := 0; i < rv.Len(); i++ {
			out = append(out, queryValues(rv.Index(i).Interface())...)
		}
		return out
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return []string{strconv.FormatInt(rv.Int(), 10)}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return []string{strconv.FormatUint(rv.Uint(), 10)}
	case reflect.Float32, reflect.Float64:
		return []string{strconv.FormatFloat(rv.Float(), 'f', -1, 64)}
	case reflect.String:
		return []string{rv.String()}
	case reflect.Bool:
		return []string{strconv.FormatBool(rv.Bool())}
	}
	return []string{fmt.Sprint(v)}
}

// sortedHeaderKeys returns the non-empty header names ordered
// case-insensitively, ties broken by the raw name.
func sortedHeaderKeys(h map[string]string) []string {
	keys := make([]string, 0, len(h))
	for k, v := range h {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := strings.ToLower(keys[i]), strings.ToLower(keys[j])
		if a != b {
			return a < b
		}
		return keys[i] < keys[j]
	})
	return keys
}
