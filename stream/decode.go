// Package stream consumes the line-delimited agent streaming protocol.
//
// Each line has the form "{prefix}:{json}". [Decode] maps one line to an
// [agenticflow.Part]; a [Session] owns a live response body and turns its
// bytes into an ordered sequence of parts that can be consumed by callback,
// by iteration, or both at once.
package stream

import (
	"encoding/json"
	"strings"

	"github.com/agenticflow/agenticflow"
)

var prefixes = map[string]agenticflow.PartType{
	"0": agenticflow.PartTextDelta,
	"g": agenticflow.PartReasoningDelta,
	"2": agenticflow.PartData,
	"9": agenticflow.PartToolCall,
	"a": agenticflow.PartToolResult,
	"f": agenticflow.PartStepStart,
	"e": agenticflow.PartStepFinish,
	"d": agenticflow.PartFinish,
	"3": agenticflow.PartError,
}

// Prefix returns the wire prefix for t.
func Prefix(t agenticflow.PartType) (string, bool) {
	for p, pt := range prefixes {
		if pt == t {
			return p, true
		}
	}
	return "", false
}

// Decode parses one protocol line. It reports false for blank lines, lines
// without a separator and unknown prefixes. Values that are not valid JSON
// are kept verbatim as strings.
func Decode(line string) (agenticflow.Part, bool) {
	if strings.TrimSpace(line) == "" {
		return agenticflow.Part{}, false
	}
	prefix, raw, ok := strings.Cut(line, ":")
	if !ok {
		return agenticflow.Part{}, false
	}
	typ, ok := prefixes[prefix]
	if !ok {
		return agenticflow.Part{}, false
	}

	if typ == agenticflow.PartTextDelta {
		var s string
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return agenticflow.Part{Type: typ, Value: raw}, true
		}
		return agenticflow.Part{Type: typ, Value: s}, true
	}

	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return agenticflow.Part{Type: typ, Value: raw}, true
	}
	return agenticflow.Part{Type: typ, Value: v}, true
}

// Encode renders p as a protocol line without the trailing newline. It is
// the inverse of [Decode] for parts with JSON-encodable values.
func Encode(p agenticflow.Part) (string, error) {
	prefix, ok := Prefix(p.Type)
	if !ok {
		return "", &agenticflow.Error{
			Kind:    agenticflow.KindInvalidRequest,
			Message: "unknown part type " + string(p.Type),
		}
	}
	data, err := json.Marshal(p.Value)
	if err != nil {
		return "", err
	}
	return prefix + ":" + string(data), nil
}
