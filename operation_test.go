package agenticflow_test

import (
	"net/http"
	"sort"
	"testing"

	"github.com/agenticflow/agenticflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupOperation(t *testing.T) {
	t.Parallel()

	op, ok := agenticflow.LookupOperation("agents.get")
	require.True(t, ok)
	assert.Equal(t, http.MethodGet, op.Method)
	assert.Equal(t, "/v1/agents/{agent_id}", op.Path)

	_, ok = agenticflow.LookupOperation("agents.fly")
	assert.False(t, ok)
}

func TestOperations_SortedAndUnique(t *testing.T) {
	t.Parallel()

	ops := agenticflow.Operations()
	require.NotEmpty(t, ops)
	ids := make([]string, len(ops))
	for i, op := range ops {
		ids[i] = op.ID
	}
	assert.True(t, sort.StringsAreSorted(ids))
	seen := make(map[string]bool)
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate operation %s", id)
		seen[id] = true
	}
}

func TestOperationFor(t *testing.T) {
	t.Parallel()

	t.Run("registered", func(t *testing.T) {
		t.Parallel()
		op := agenticflow.OperationFor("post", "/v1/agents/{agent_id}/stream")
		assert.Equal(t, "agents.stream", op.ID)
	})

	t.Run("unregistered", func(t *testing.T) {
		t.Parallel()
		op := agenticflow.OperationFor("get", "/v1/custom")
		assert.Equal(t, agenticflow.Operation{ID: "GET /v1/custom", Method: "GET", Path: "/v1/custom"}, op)
	})
}

func TestEstimateCost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		method string
		want   float64
	}{
		{http.MethodGet, 0},
		{http.MethodHead, 0},
		{"get", 0},
		{http.MethodDelete, 0.1},
		{http.MethodPost, 1.0},
		{http.MethodPut, 1.0},
		{http.MethodPatch, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, agenticflow.EstimateCost(tt.method), 1e-9)
		})
	}
}
