package api

import (
	"context"

	"github.com/agenticflow/agenticflow"
)

// Connections lists app connections of a workspace.
type Connections struct {
	c *Client
}

// List returns the connections of a workspace.
func (s *Connections) List(ctx context.Context, opts ListOptions) (any, error) {
	q := opts.query()
	if p := s.c.project(opts.ProjectID); p != "" {
		q["project_id"] = p
	}
	return s.c.call(ctx, "connections.list", agenticflow.RequestOptions{
		PathParams: pathParams("workspace_id", s.c.workspace(opts.WorkspaceID)),
		Query:      q,
	})
}

// Categories returns the connection categories of a workspace.
func (s *Connections) Categories(ctx context.Context, opts ListOptions) (any, error) {
	return s.c.call(ctx, "connections.categories", agenticflow.RequestOptions{
		PathParams: pathParams("workspace_id", s.c.workspace(opts.WorkspaceID)),
		Query:      opts.query(),
	})
}

// NodeTypes reads the workflow node catalog.
type NodeTypes struct {
	c *Client
}

// List returns every node type.
func (s *NodeTypes) List(ctx context.Context, opts ListOptions) (any, error) {
	return s.c.call(ctx, "node_types.list", agenticflow.RequestOptions{Query: opts.query()})
}

// Get returns one node type by name.
func (s *NodeTypes) Get(ctx context.Context, name string) (any, error) {
	return s.c.call(ctx, "node_types.get", agenticflow.RequestOptions{
		PathParams: pathParams("name", name),
	})
}

// Templates reads the public template gallery.
type Templates struct {
	c *Client
}

// Workflows returns workflow templates.
func (s *Templates) Workflows(ctx context.Context, opts ListOptions) (any, error) {
	return s.c.call(ctx, "templates.workflows", agenticflow.RequestOptions{Query: opts.query()})
}

// Agents returns agent templates.
func (s *Templates) Agents(ctx context.Context, opts ListOptions) (any, error) {
	return s.c.call(ctx, "templates.agents", agenticflow.RequestOptions{Query: opts.query()})
}
