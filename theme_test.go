package agenticflow_test

import (
	"testing"

	"github.com/agenticflow/agenticflow"
	"github.com/stretchr/testify/assert"
)

func TestDefaultTheme(t *testing.T) {
	t.Parallel()

	theme := agenticflow.DefaultTheme()

	assert.Equal(t, 8, theme.Reasoning)
	assert.Equal(t, 3, theme.ToolCall)
	assert.Equal(t, 6, theme.ToolResult)
	assert.Equal(t, 4, theme.Step)
	assert.Equal(t, 1, theme.Error)
	assert.Equal(t, 2, theme.Success)
	assert.Equal(t, 8, theme.Muted)
	assert.Equal(t, 5, theme.Accent)
}

func TestTheme_PartColor(t *testing.T) {
	t.Parallel()

	theme := agenticflow.DefaultTheme()
	want := map[agenticflow.PartType]int{
		agenticflow.PartTextDelta:      -1,
		agenticflow.PartReasoningDelta: 8,
		agenticflow.PartData:           8,
		agenticflow.PartToolCall:       3,
		agenticflow.PartToolResult:     6,
		agenticflow.PartStepStart:      4,
		agenticflow.PartStepFinish:     4,
		agenticflow.PartFinish:         2,
		agenticflow.PartError:          1,
	}
	for _, pt := range agenticflow.PartTypes() {
		assert.Equal(t, want[pt], theme.PartColor(pt), pt)
	}

	plain := agenticflow.PlainTheme()
	for _, pt := range agenticflow.PartTypes() {
		assert.Equal(t, -1, plain.PartColor(pt), pt)
	}
}
