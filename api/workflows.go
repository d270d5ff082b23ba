package api

import (
	"context"

	"github.com/agenticflow/agenticflow"
)

// Workflows manages workflows and their runs.
type Workflows struct {
	c *Client
}

// List returns the workflows of a workspace.
func (w *Workflows) List(ctx context.Context, opts ListOptions) (any, error) {
	q := opts.query()
	if p := w.c.project(opts.ProjectID); p != "" {
		q["project_id"] = p
	}
	return w.c.call(ctx, "workflows.list", agenticflow.RequestOptions{
		PathParams: pathParams("workspace_id", w.c.workspace(opts.WorkspaceID)),
		Query:      q,
	})
}

// Get returns one workflow.
func (w *Workflows) Get(ctx context.Context, id string) (any, error) {
	return w.c.call(ctx, "workflows.get", agenticflow.RequestOptions{
		PathParams: pathParams("workflow_id", id),
	})
}

// Create creates a workflow in the default workspace.
func (w *Workflows) Create(ctx context.Context, payload map[string]any) (any, error) {
	return w.c.call(ctx, "workflows.create", agenticflow.RequestOptions{
		PathParams: pathParams("workspace_id", w.c.workspaceID),
		JSON:       withDefault(payload, "project_id", w.c.projectID),
	})
}

// Update replaces a workflow in the default workspace.
func (w *Workflows) Update(ctx context.Context, id string, payload map[string]any) (any, error) {
	return w.c.call(ctx, "workflows.update", agenticflow.RequestOptions{
		PathParams: pathParams("workspace_id", w.c.workspaceID, "workflow_id", id),
		JSON:       withDefault(payload, "project_id", w.c.projectID),
	})
}

// Delete removes a workflow from the default workspace.
func (w *Workflows) Delete(ctx context.Context, id string) error {
	_, err := w.c.call(ctx, "workflows.delete", agenticflow.RequestOptions{
		PathParams: pathParams("workspace_id", w.c.workspaceID, "workflow_id", id),
	})
	return err
}

// Validate asks the server to validate a workflow definition without saving it.
func (w *Workflows) Validate(ctx context.Context, payload map[string]any) (any, error) {
	return w.c.call(ctx, "workflows.validate", agenticflow.RequestOptions{
		JSON: withDefault(payload, "project_id", w.c.projectID),
	})
}

// Run starts a workflow run with the given input.
func (w *Workflows) Run(ctx context.Context, id string, input map[string]any) (any, error) {
	if input == nil {
		input = map[string]any{}
	}
	return w.c.call(ctx, "workflows.run", agenticflow.RequestOptions{
		JSON: map[string]any{"workflow_id": id, "input": input},
	})
}

// RunStatus returns the state of a workflow run.
func (w *Workflows) RunStatus(ctx context.Context, runID string) (any, error) {
	return w.c.call(ctx, "workflows.run_status", agenticflow.RequestOptions{
		PathParams: pathParams("workflow_run_id", runID),
	})
}
