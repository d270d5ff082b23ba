package agenticflow

import (
	"net/http"
	"sort"
	"strings"
)

// Operation names one endpoint of the public API.
type Operation struct {
	ID     string
	Method string
	Path   string
}

var operations = []Operation{
	{"agents.list", http.MethodGet, "/v1/agents/"},
	{"agents.get", http.MethodGet, "/v1/agents/{agent_id}"},
	{"agents.create", http.MethodPost, "/v1/agents/"},
	{"agents.update", http.MethodPut, "/v1/agents/{agent_id}"},
	{"agents.delete", http.MethodDelete, "/v1/agents/{agent_id}"},
	{"agents.stream", http.MethodPost, "/v1/agents/{agent_id}/stream"},
	{"workflows.list", http.MethodGet, "/v1/workspaces/{workspace_id}/workflows"},
	{"workflows.get", http.MethodGet, "/v1/workflows/{workflow_id}"},
	{"workflows.create", http.MethodPost, "/v1/workspaces/{workspace_id}/workflows"},
	{"workflows.update", http.MethodPut, "/v1/workspaces/{workspace_id}/workflows/{workflow_id}"},
	{"workflows.delete", http.MethodDelete, "/v1/workspaces/{workspace_id}/workflows/{workflow_id}"},
	{"workflows.validate", http.MethodPost, "/v1/workflows/utils/validate_create_workflow_model"},
	{"workflows.run", http.MethodPost, "/v1/workflow_runs/"},
	{"workflows.run_status", http.MethodGet, "/v1/workflow_runs/{workflow_run_id}"},
	{"connections.list", http.MethodGet, "/v1/workspaces/{workspace_id}/app_connections/"},
	{"connections.categories", http.MethodGet, "/v1/workspaces/{workspace_id}/app_connections/categories"},
	{"node_types.list", http.MethodGet, "/v1/node-types"},
	{"node_types.get", http.MethodGet, "/v1/node-types/name/{name}"},
	{"templates.workflows", http.MethodGet, "/v1/workflow_templates/"},
	{"templates.agents", http.MethodGet, "/v1/agent-templates/"},
}

var operationIndex = func() map[string]Operation {
	m := make(map[string]Operation, len(operations))
	for _, op := range operations {
		m[op.ID] = op
	}
	return m
}()

// LookupOperation returns the operation registered under id.
func LookupOperation(id string) (Operation, bool) {
	op, ok := operationIndex[id]
	return op, ok
}

// Operations returns every registered operation sorted by ID.
func Operations() []Operation {
	out := make([]Operation, len(operations))
	copy(out, operations)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// OperationFor finds the registered operation matching method and path
// template, or synthesizes one whose ID is "METHOD /path".
func OperationFor(method, path string) Operation {
	method = strings.ToUpper(method)
	for _, op := range operations {
		if op.Method == method && op.Path == path {
			return op
		}
	}
	return Operation{ID: method + " " + path, Method: method, Path: path}
}

// EstimateCost returns the local cost estimate for a call with the given
// HTTP method. Reads are free, deletes are cheap, everything else costs one
// unit. The estimate only feeds local policy gating.
func EstimateCost(method string) float64 {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodHead:
		return 0
	case http.MethodDelete:
		return 0.1
	default:
		return 1.0
	}
}
