// Package api wraps the AgenticFlow REST resources on top of an
// [agenticflow.Requester].
//
// Services fill in the default workspace and project from the [Client]
// options and route every call through the operation registry, so the
// policy guard and audit log see stable operation IDs.
package api

import (
	"context"

	"github.com/agenticflow/agenticflow"
	"github.com/agenticflow/agenticflow/stream"
)

// Client groups the resource services.
type Client struct {
	Agents      *Agents
	Workflows   *Workflows
	Connections *Connections
	NodeTypes   *NodeTypes
	Templates   *Templates

	r           agenticflow.Requester
	workspaceID string
	projectID   string
	streamOpts  []stream.Option
}

// Option configures a [Client].
type Option func(*Client)

// WithWorkspaceID sets the workspace used when a call does not name one.
func WithWorkspaceID(id string) Option {
	return func(c *Client) { c.workspaceID = id }
}

// WithProjectID sets the project used when a call does not name one.
func WithProjectID(id string) Option {
	return func(c *Client) { c.projectID = id }
}

// WithStreamOptions sets the options applied to every stream session.
func WithStreamOptions(opts ...stream.Option) Option {
	return func(c *Client) { c.streamOpts = opts }
}

// New returns a Client sending requests through r.
func New(r agenticflow.Requester, opts ...Option) *Client {
	c := &Client{r: r}
	for _, o := range opts {
		o(c)
	}
	c.Agents = &Agents{c: c}
	c.Workflows = &Workflows{c: c}
	c.Connections = &Connections{c: c}
	c.NodeTypes = &NodeTypes{c: c}
	c.Templates = &Templates{c: c}
	return c
}

// ListOptions pages and filters list calls. Zero values are omitted.
type ListOptions struct {
	Limit       int
	Offset      int
	Search      string
	WorkspaceID string
	ProjectID   string
}

func (o ListOptions) query() agenticflow.Params {
	q := agenticflow.Params{}
	if o.Limit > 0 {
		q["limit"] = o.Limit
	}
	if o.Offset > 0 {
		q["offset"] = o.Offset
	}
	if o.Search != "" {
		q["search"] = o.Search
	}
	return q
}

// call invokes the registered operation id and returns the decoded body.
func (c *Client) call(ctx context.Context, id string, opts agenticflow.RequestOptions) (any, error) {
	op, ok := agenticflow.LookupOperation(id)
	if !ok {
		panic("api: unregistered operation " + id)
	}
	resp, err := c.r.Request(ctx, op.Method, op.Path, opts)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) workspace(override string) string {
	if override != "" {
		return override
	}
	return c.workspaceID
}

func (c *Client) project(override string) string {
	if override != "" {
		return override
	}
	return c.projectID
}

// pathParams builds a path parameter map from key/value pairs, leaving out
// empty values so that path expansion reports them as missing.
func pathParams(kv ...string) map[string]string {
	m := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			m[kv[i]] = kv[i+1]
		}
	}
	return m
}

// withDefault returns a copy of payload with key set to value when the
// payload does not already carry a non-empty value for it.
func withDefault(payload map[string]any, key, value string) map[string]any {
	out := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		out[k] = v
	}
	if value == "" {
		return out
	}
	if cur, ok := out[key]; !ok || cur == nil || cur == "" {
		out[key] = value
	}
	return out
}
