package agenticflow_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/agenticflow/agenticflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkill_Workflow(t *testing.T) {
	t.Parallel()

	w := validSkill().Workflow()
	assert.Equal(t, "summarize-url", w.Name)
	require.Len(t, w.Nodes, 2)
	assert.Equal(t, agenticflow.WorkflowNode{
		Name:         "fetch",
		NodeTypeName: "web_scraping",
		InputConfig:  map[string]any{"url": "{{url}}"},
	}, w.Nodes[0])
	assert.Equal(t, "Summarize in {{words}} words: {{fetch.content}}", w.Nodes[1].InputConfig["prompt"])
	assert.Equal(t, map[string]string{"summary": "{{summary.content}}"}, w.OutputMapping)
	assert.Equal(t, map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url":   map[string]any{"type": "string"},
			"words": map[string]any{"type": "integer", "default": 100},
		},
		"required": []string{"url"},
	}, w.InputSchema)
}

func TestSkill_Workflow_NestedAndEmpty(t *testing.T) {
	t.Parallel()

	s := agenticflow.Skill{
		Name:   "nested",
		Inputs: []agenticflow.SkillInput{{Name: "q"}},
		Steps: []agenticflow.SkillStep{
			{Name: "a", Node: "n", Connection: "conn-1", Input: map[string]any{
				"list": []any{"{{inputs.q}}", 3},
				"obj":  map[string]any{"k": "{{unknown}}"},
			}},
			{Name: "b", Node: "n"},
		},
	}
	w := s.Workflow()
	assert.Equal(t, map[string]any{
		"list": []any{"{{q}}", 3},
		"obj":  map[string]any{"k": "{{unknown}}"},
	}, w.Nodes[0].InputConfig)
	assert.Equal(t, "conn-1", w.Nodes[0].Connection)
	assert.Equal(t, map[string]any{}, w.Nodes[1].InputConfig)
	assert.Equal(t, []string{}, w.InputSchema["required"])
	assert.Equal(t, map[string]any{"type": "string"}, w.InputSchema["properties"].(map[string]any)["q"])
}

func TestWorkflowPayload_Map(t *testing.T) {
	t.Parallel()

	m, err := validSkill().Workflow().Map()
	require.NoError(t, err)
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"node_type_name":"web_scraping"`)
	assert.Equal(t, "summarize-url", m["name"])
	assert.Len(t, m["nodes"], 2)
}

func TestWorkflowPayload_Map_UnencodableInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input map[string]any
	}{
		{name: "nan", input: map[string]any{"x": math.NaN()}},
		{name: "non-string keys", input: map[string]any{"x": map[any]any{1: "one"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := validSkill()
			s.Steps[0].Input = tt.input
			assert.NotPanics(t, func() {
				_, err := s.Workflow().Map()
				assert.Error(t, err)
			})
		})
	}
}

func TestPack_Skill(t *testing.T) {
	t.Parallel()

	p := agenticflow.Pack{Skills: []agenticflow.Skill{validSkill()}}
	s, ok := p.Skill("summarize-url")
	assert.True(t, ok)
	assert.Equal(t, "summarize-url", s.Name)
	_, ok = p.Skill("missing")
	assert.False(t, ok)
}
