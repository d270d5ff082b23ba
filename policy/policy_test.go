package policy_test

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agenticflow/agenticflow"
	"github.com/agenticflow/agenticflow/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func op(id string) agenticflow.Operation {
	o, ok := agenticflow.LookupOperation(id)
	if !ok {
		panic("unknown operation " + id)
	}
	return o
}

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("full", func(t *testing.T) {
		t.Parallel()
		p, err := policy.Parse(strings.NewReader(`
read_only: true
max_cost: 2.5
allow: ["agents.*", "/v1/node-types/**"]
deny: ["agents.delete"]
`))
		require.NoError(t, err)
		assert.Equal(t, policy.Policy{
			ReadOnly: true,
			MaxCost:  2.5,
			Allow:    []string{"agents.*", "/v1/node-types/**"},
			Deny:     []string{"agents.delete"},
		}, p)
	})

	t.Run("empty allows everything", func(t *testing.T) {
		t.Parallel()
		p, err := policy.Parse(strings.NewReader(""))
		require.NoError(t, err)
		assert.NoError(t, p.Check(op("agents.delete"), 100))
	})

	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()
		_, err := policy.Parse(strings.NewReader("readonly: true\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "readonly")
	})

	t.Run("invalid pattern", func(t *testing.T) {
		t.Parallel()
		_, err := policy.Parse(strings.NewReader("deny: ['agents.[']\n"))
		assert.ErrorIs(t, err, agenticflow.ErrValidation)
	})

	t.Run("negative budget", func(t *testing.T) {
		t.Parallel()
		_, err := policy.Parse(strings.NewReader("max_cost: -1\n"))
		assert.ErrorIs(t, err, agenticflow.ErrValidation)
	})
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("read_only: true\n"), 0o600))
	p, err := policy.Load(path)
	require.NoError(t, err)
	assert.True(t, p.ReadOnly)

	_, err = policy.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPolicy_Check(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		policy policy.Policy
		op     agenticflow.Operation
		spent  float64
		allow  bool
	}{
		{"zero policy", policy.Policy{}, op("agents.create"), 0, true},
		{"read-only allows reads", policy.Policy{ReadOnly: true}, op("agents.list"), 0, true},
		{"read-only denies writes", policy.Policy{ReadOnly: true}, op("agents.create"), 0, false},
		{"read-only denies deletes", policy.Policy{ReadOnly: true}, op("agents.delete"), 0, false},
		{"deny by id", policy.Policy{Deny: []string{"workflows.*"}}, op("workflows.run"), 0, false},
		{"deny by path", policy.Policy{Deny: []string{"/v1/node-types/**"}}, op("node_types.get"), 0, false},
		{"deny wins over allow", policy.Policy{Allow: []string{"**"}, Deny: []string{"agents.get"}}, op("agents.get"), 0, false},
		{"allow list hit", policy.Policy{Allow: []string{"agents.*"}}, op("agents.stream"), 0, true},
		{"allow list miss", policy.Policy{Allow: []string{"agents.*"}}, op("workflows.get"), 0, false},
		{"ad hoc operation", policy.Policy{Allow: []string{"GET /v1/custom"}}, agenticflow.OperationFor(http.MethodGet, "/v1/custom"), 0, true},
		{"within budget", policy.Policy{MaxCost: 2}, op("agents.create"), 1, true},
		{"over budget", policy.Policy{MaxCost: 2}, op("agents.create"), 1.5, false},
		{"reads are free", policy.Policy{MaxCost: 1}, op("agents.list"), 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.policy.Check(tt.op, tt.spent)
			if tt.allow {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, agenticflow.ErrPolicyDenied)
			assert.Contains(t, err.Error(), tt.op.ID)
		})
	}
}
