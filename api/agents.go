package api

import (
	"context"

	"github.com/agenticflow/agenticflow"
	"github.com/agenticflow/agenticflow/stream"
)

// Agents manages agents.
type Agents struct {
	c *Client
}

// List returns the agents of the default or given project.
func (a *Agents) List(ctx context.Context, opts ListOptions) (any, error) {
	q := opts.query()
	if p := a.c.project(opts.ProjectID); p != "" {
		q["project_id"] = p
	}
	if w := a.c.workspace(opts.WorkspaceID); w != "" {
		q["workspace_id"] = w
	}
	return a.c.call(ctx, "agents.list", agenticflow.RequestOptions{Query: q})
}

// Get returns one agent.
func (a *Agents) Get(ctx context.Context, id string) (any, error) {
	return a.c.call(ctx, "agents.get", agenticflow.RequestOptions{
		PathParams: pathParams("agent_id", id),
	})
}

// Create creates an agent. The default project is filled in when the
// payload has none.
func (a *Agents) Create(ctx context.Context, payload map[string]any) (any, error) {
	return a.c.call(ctx, "agents.create", agenticflow.RequestOptions{
		JSON: withDefault(payload, "project_id", a.c.projectID),
	})
}

// Update replaces an agent.
func (a *Agents) Update(ctx context.Context, id string, payload map[string]any) (any, error) {
	return a.c.call(ctx, "agents.update", agenticflow.RequestOptions{
		PathParams: pathParams("agent_id", id),
		JSON:       withDefault(payload, "project_id", a.c.projectID),
	})
}

// Delete removes an agent.
func (a *Agents) Delete(ctx context.Context, id string) error {
	_, err := a.c.call(ctx, "agents.delete", agenticflow.RequestOptions{
		PathParams: pathParams("agent_id", id),
	})
	return err
}

// Message is one chat turn sent to an agent.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StreamRequest is the body of an agent stream call.
type StreamRequest struct {
	ID       string    `json:"id,omitempty"`
	Messages []Message `json:"messages"`
}

// Stream starts an agent run and returns the live session. The caller
// must drain or close the session.
func (a *Agents) Stream(ctx context.Context, id string, req StreamRequest) (*stream.Session, error) {
	op, _ := agenticflow.LookupOperation("agents.stream")
	if req.Messages == nil {
		req.Messages = []Message{}
	}
	live, err := a.c.r.RequestStream(ctx, op.Method, op.Path, agenticflow.RequestOptions{
		PathParams: pathParams("agent_id", id),
		JSON:       req,
	})
	if err != nil {
		return nil, err
	}
	return stream.New(live.Body, a.c.streamOpts...), nil
}
