package stream_test

import (
	"testing"

	"github.com/agenticflow/agenticflow"
	"github.com/agenticflow/agenticflow/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want agenticflow.Part
	}{
		{"text delta", `0:"Hello"`, agenticflow.Part{Type: agenticflow.PartTextDelta, Value: "Hello"}},
		{"text delta escapes", `0:"a\nb é"`, agenticflow.Part{Type: agenticflow.PartTextDelta, Value: "a\nb é"}},
		{"text delta invalid json", `0:Hello`, agenticflow.Part{Type: agenticflow.PartTextDelta, Value: "Hello"}},
		{"text delta non-string json", `0:42`, agenticflow.Part{Type: agenticflow.PartTextDelta, Value: "42"}},
		{"reasoning", `g:"thinking"`, agenticflow.Part{Type: agenticflow.PartReasoningDelta, Value: "thinking"}},
		{"data", `2:[{"k":1}]`, agenticflow.Part{Type: agenticflow.PartData, Value: []any{map[string]any{"k": float64(1)}}}},
		{"tool call", `9:{"toolCallId":"t1","toolName":"search","args":{"q":"go"}}`, agenticflow.Part{
			Type:  agenticflow.PartToolCall,
			Value: map[string]any{"toolCallId": "t1", "toolName": "search", "args": map[string]any{"q": "go"}},
		}},
		{"tool result", `a:{"toolCallId":"t1","result":"ok"}`, agenticflow.Part{
			Type:  agenticflow.PartToolResult,
			Value: map[string]any{"toolCallId": "t1", "result": "ok"},
		}},
		{"step start", `f:{"messageId":"m1"}`, agenticflow.Part{Type: agenticflow.PartStepStart, Value: map[string]any{"messageId": "m1"}}},
		{"step finish", `e:{"finishReason":"stop"}`, agenticflow.Part{Type: agenticflow.PartStepFinish, Value: map[string]any{"finishReason": "stop"}}},
		{"finish", `d:{"reason":"stop"}`, agenticflow.Part{Type: agenticflow.PartFinish, Value: map[string]any{"reason": "stop"}}},
		{"error string", `3:"boom"`, agenticflow.Part{Type: agenticflow.PartError, Value: "boom"}},
		{"invalid json kept raw", `2:{broken`, agenticflow.Part{Type: agenticflow.PartData, Value: "{broken"}},
		{"value with separators", `0:"a:b:c"`, agenticflow.Part{Type: agenticflow.PartTextDelta, Value: "a:b:c"}},
		{"empty value", `3:`, agenticflow.Part{Type: agenticflow.PartError, Value: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := stream.Decode(tt.line)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_Skipped(t *testing.T) {
	t.Parallel()

	for _, line := range []string{"", "   ", "\t", "no separator", "x:1", "00:\"a\"", ":\"a\"", " 0:\"a\""} {
		_, ok := stream.Decode(line)
		assert.False(t, ok, "line %q", line)
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	line, err := stream.Encode(agenticflow.Part{Type: agenticflow.PartFinish, Value: map[string]any{"reason": "stop"}})
	require.NoError(t, err)
	assert.Equal(t, `d:{"reason":"stop"}`, line)

	for _, typ := range agenticflow.PartTypes() {
		line, err := stream.Encode(agenticflow.Part{Type: typ, Value: "v"})
		require.NoError(t, err)
		got, ok := stream.Decode(line)
		require.True(t, ok)
		assert.Equal(t, typ, got.Type)
		assert.Equal(t, "v", got.Value)
	}

	_, err = stream.Encode(agenticflow.Part{Type: "bogus"})
	assert.Error(t, err)
}
