package agenticflow

// PartType tags a decoded unit of the agent streaming protocol.
// The set is closed; decoders drop anything else.
type PartType string

const (
	PartTextDelta      PartType = "textDelta"
	PartReasoningDelta PartType = "reasoningDelta"
	PartData           PartType = "data"
	PartToolCall       PartType = "toolCall"
	PartToolResult     PartType = "toolResult"
	PartStepStart      PartType = "stepStart"
	PartStepFinish     PartType = "stepFinish"
	PartFinish         PartType = "finish"
	PartError          PartType = "error"
)

// PartTypes returns every part type in protocol table order.
func PartTypes() []PartType {
	return []PartType{
		PartTextDelta,
		PartReasoningDelta,
		PartData,
		PartToolCall,
		PartToolResult,
		PartStepStart,
		PartStepFinish,
		PartFinish,
		PartError,
	}
}

// Part is one decoded protocol line. Value is a string for
// [PartTextDelta] and the decoded JSON value (map, slice, string, number,
// bool or nil) for every other type. Parts are treated as immutable once
// emitted.
type Part struct {
	Type  PartType
	Value any
}

// Text returns the string value of a text or reasoning delta, and "" for
// other parts.
func (p Part) Text() string {
	switch p.Type {
	case PartTextDelta, PartReasoningDelta:
		s, _ := p.Value.(string)
		return s
	}
	return ""
}

// Field returns a top-level field of an object-valued part.
func (p Part) Field(name string) (any, bool) {
	m, ok := p.Value.(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := m[name]
	return v, ok
}
