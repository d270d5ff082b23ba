// Package rest implements [agenticflow.Requester] over HTTP.
//
// A Client composes three pieces: the Transport sends one request with a
// deadline, Normalize turns the raw response into an [agenticflow.Response],
// and Classify maps non-2xx responses onto the error taxonomy. RequestStream
// skips normalization for successful responses so the body can be consumed
// incrementally by package stream.
package rest

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/agenticflow/agenticflow"
	"go.uber.org/zap"
)

// Interface compliance check.
var _ agenticflow.Requester = (*Client)(nil)

const (
	defaultUserAgent = "agenticflow-go/1.0"
	jsonAccept       = "application/json"
	streamAccept     = "text/plain"
)

// Client is the API client shared by the SDK wrappers and the CLI.
type Client struct {
	cfg       agenticflow.Config
	userAgent string
	transport *Transport
	logger    *zap.Logger

	// Construction-time only.
	apiKey     string
	baseURL    string
	workspace  string
	project    string
	lookup     agenticflow.LookupFunc
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures a [Client].
type Option func(*Client)

// WithAPIKey sets the credential. It takes precedence over the environment.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithWorkspaceID sets the default workspace.
func WithWorkspaceID(id string) Option {
	return func(c *Client) { c.workspace = id }
}

// WithProjectID sets the default project.
func WithProjectID(id string) Option {
	return func(c *Client) { c.project = id }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the default request deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLookupEnv sets the environment source read once by [New].
// Defaults to os.LookupEnv.
func WithLookupEnv(lookup agenticflow.LookupFunc) Option {
	return func(c *Client) { c.lookup = lookup }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a Client. Explicit options win over values read through the
// lookup function.
func New(opts ...Option) *Client {
	c := &Client{
		userAgent: defaultUserAgent,
		logger:    zap.NewNop(),
		lookup:    os.LookupEnv,
	}
	for _, o := range opts {
		o(c)
	}

	cfg := agenticflow.LoadConfig(c.lookup)
	if c.apiKey != "" {
		cfg.APIKey = c.apiKey
	}
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	if c.workspace != "" {
		cfg.WorkspaceID = c.workspace
	}
	if c.project != "" {
		cfg.ProjectID = c.project
	}
	c.cfg = cfg
	c.transport = NewTransport(c.httpClient, c.timeout)
	return c
}

// Config returns the resolved configuration.
func (c *Client) Config() agenticflow.Config {
	return c.cfg
}

// Request sends a request and returns the normalized response. Non-2xx
// responses are returned as *agenticflow.Error.
func (c *Client) Request(ctx context.Context, method, path string, opts agenticflow.RequestOptions) (*agenticflow.Response, error) {
	start := time.Now()
	httpResp, err := c.send(ctx, method, path, opts, false)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	resp, err := Normalize(httpResp, method)
	if err != nil {
		c.logFailure(method, path, err)
		return nil, err
	}
	c.logger.Debug("request completed",
		zap.String(agenticflow.LogKeyMethod, method),
		zap.String(agenticflow.LogKeyURL, resp.URL),
		zap.Int(agenticflow.LogKeyStatus, resp.StatusCode),
		zap.String(agenticflow.LogKeyRequestID, resp.RequestID),
		zap.Duration(agenticflow.LogKeyDuration, time.Since(start)),
	)
	if err := Classify(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// RequestStream sends a request and hands back the unread body on success.
// A non-2xx response is drained, normalized and classified instead.
func (c *Client) RequestStream(ctx context.Context, method, path string, opts agenticflow.RequestOptions) (*agenticflow.LiveResponse, error) {
	httpResp, err := c.send(ctx, method, path, opts, true)
	if err != nil {
		return nil, err
	}
	if agenticflow.IsOK(httpResp.StatusCode) {
		live := Live(httpResp, method)
		c.logger.Debug("stream opened",
			zap.String(agenticflow.LogKeyMethod, method),
			zap.String(agenticflow.LogKeyURL, live.URL),
			zap.Int(agenticflow.LogKeyStatus, live.StatusCode),
			zap.String(agenticflow.LogKeyRequestID, live.RequestID),
		)
		return live, nil
	}
	defer httpResp.Body.Close()
	resp, err := Normalize(httpResp, method)
	if err != nil {
		c.logFailure(method, path, err)
		return nil, err
	}
	return nil, Classify(resp)
}

// Get is shorthand for Request with GET.
func (c *Client) Get(ctx context.Context, path string, opts agenticflow.RequestOptions) (*agenticflow.Response, error) {
	return c.Request(ctx, http.MethodGet, path, opts)
}

// Post is shorthand for Request with POST.
func (c *Client) Post(ctx context.Context, path string, opts agenticflow.RequestOptions) (*agenticflow.Response, error) {
	return c.Request(ctx, http.MethodPost, path, opts)
}

// Put is shorthand for Request with PUT.
func (c *Client) Put(ctx context.Context, path string, opts agenticflow.RequestOptions) (*agenticflow.Response, error) {
	return c.Request(ctx, http.MethodPut, path, opts)
}

// Patch is shorthand for Request with PATCH.
func (c *Client) Patch(ctx context.Context, path string, opts agenticflow.RequestOptions) (*agenticflow.Response, error) {
	return c.Request(ctx, http.MethodPatch, path, opts)
}

// Delete is shorthand for Request with DELETE.
func (c *Client) Delete(ctx context.Context, path string, opts agenticflow.RequestOptions) (*agenticflow.Response, error) {
	return c.Request(ctx, http.MethodDelete, path, opts)
}

// Call invokes a registered operation by ID ("agents.get"), an explicit
// "METHOD /path" pair, or a bare path sent with opts.Method (GET by default).
func (c *Client) Call(ctx context.Context, target string, opts agenticflow.RequestOptions) (*agenticflow.Response, error) {
	op, err := ResolveCall(target, opts.Method)
	if err != nil {
		return nil, err
	}
	return c.Request(ctx, op.Method, op.Path, opts)
}

// ResolveCall turns a Call target into an operation.
func ResolveCall(target, method string) (agenticflow.Operation, error) {
	target = strings.TrimSpace(target)
	if op, ok := agenticflow.LookupOperation(target); ok {
		return op, nil
	}
	if m, p, ok := strings.Cut(target, " "); ok && isMethod(m) {
		return agenticflow.OperationFor(m, strings.TrimSpace(p)), nil
	}
	if strings.HasPrefix(target, "/") || isAbsolute(target) {
		if method == "" {
			method = http.MethodGet
		}
		if !isMethod(method) {
			return agenticflow.Operation{}, invalidRequest("unsupported HTTP method %q", method)
		}
		return agenticflow.OperationFor(method, target), nil
	}
	return agenticflow.Operation{}, invalidRequest("unknown operation %q", target)
}

func (c *Client) send(ctx context.Context, method, path string, opts agenticflow.RequestOptions, streaming bool) (*http.Response, error) {
	if opts.JSON != nil && opts.Body != nil {
		return nil, invalidRequest("cannot send both a JSON body and a raw body")
	}
	expanded, err := ExpandPath(path, opts.PathParams)
	if err != nil {
		return nil, err
	}

	header := make(map[string]string, len(opts.Header)+3)
	for k, v := range opts.Header {
		header[k] = v
	}
	key := opts.APIKey
	if key == "" {
		key = c.cfg.APIKey
	}
	if key != "" && !hasHeader(header, "Authorization") {
		header["Authorization"] = "Bearer " + key
	}
	if !hasHeader(header, "User-Agent") {
		header["User-Agent"] = c.userAgent
	}
	if !hasHeader(header, "Accept") {
		if streaming {
			header["Accept"] = streamAccept
		} else {
			header["Accept"] = jsonAccept
		}
	}

	resp, err := c.transport.Send(ctx, Outbound{
		Method:    strings.ToUpper(method),
		URL:       c.resolveURL(expanded),
		Query:     opts.Query,
		Header:    header,
		JSON:      opts.JSON,
		Body:      opts.Body,
		Timeout:   opts.Timeout,
		Streaming: streaming,
	})
	if err != nil {
		c.logFailure(method, expanded, err)
		return nil, err
	}
	return resp, nil
}

func (c *Client) resolveURL(path string) string {
	if isAbsolute(path) {
		return path
	}
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) logFailure(method, path string, err error) {
	c.logger.Debug("request failed",
		zap.String(agenticflow.LogKeyMethod, method),
		zap.String(agenticflow.LogKeyURL, path),
		zap.String("kind", string(agenticflow.KindOf(err))),
		zap.Error(err),
	)
}

func hasHeader(h map[string]string, name string) bool {
	for k := range h {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

func isAbsolute(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

func isMethod(m string) bool {
	switch strings.ToUpper(m) {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions:
		return true
	}
	return false
}

func invalidRequest(format string, args ...any) *agenticflow.Error {
	return &agenticflow.Error{
		Kind:    agenticflow.KindInvalidRequest,
		Message: fmt.Sprintf(format, args...),
	}
}
