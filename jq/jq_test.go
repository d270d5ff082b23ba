package jq_test

import (
	"context"
	"testing"

	"github.com/agenticflow/agenticflow"
	"github.com/agenticflow/agenticflow/jq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter(t *testing.T) {
	t.Parallel()

	agents := []any{
		map[string]any{"id": "a1", "name": "Support"},
		map[string]any{"id": "a2", "name": "Sales"},
	}

	tests := []struct {
		name string
		expr string
		data any
		want any
	}{
		{"empty expression", "", agents, agents},
		{"identity", ".", map[string]any{"k": "v"}, map[string]any{"k": "v"}},
		{"single result", ".[0].id", agents, "a1"},
		{"many results", ".[].name", agents, []any{"Support", "Sales"}},
		{"no results", ".[] | select(.id == \"zz\")", agents, nil},
		{"length", "length", agents, 2},
		{"struct input", ".Name", struct{ Name string }{"typed"}, "typed"},
		{"halt", "halt", agents, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := jq.Filter(context.Background(), tt.expr, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilter_Errors(t *testing.T) {
	t.Parallel()

	t.Run("parse", func(t *testing.T) {
		t.Parallel()
		_, err := jq.Filter(context.Background(), ".[", nil)
		assert.ErrorIs(t, err, agenticflow.ErrValidation)
	})

	t.Run("compile", func(t *testing.T) {
		t.Parallel()
		_, err := jq.Filter(context.Background(), "$undefined", nil)
		assert.ErrorIs(t, err, agenticflow.ErrValidation)
	})

	t.Run("runtime", func(t *testing.T) {
		t.Parallel()
		_, err := jq.Filter(context.Background(), ".foo", "text")
		require.Error(t, err)
		assert.NotErrorIs(t, err, agenticflow.ErrValidation)
	})

	t.Run("canceled", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := jq.Filter(ctx, "repeat(1)", nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
