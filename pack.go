package agenticflow

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// DefaultSkillGlob locates skill manifests relative to a pack directory
// when the pack lists no include patterns.
const DefaultSkillGlob = "skills/**/*.yaml"

// Pack is a versioned bundle of skills installed together.
type Pack struct {
	Name        string   `yaml:"name" json:"name"`
	Version     string   `yaml:"version" json:"version"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Include     []string `yaml:"include,omitempty" json:"include,omitempty"`
	Skills      []Skill  `yaml:"skills,omitempty" json:"skills,omitempty"`
}

// Skill returns the skill with the given name.
func (p Pack) Skill(name string) (Skill, bool) {
	for _, s := range p.Skills {
		if s.Name == name {
			return s, true
		}
	}
	return Skill{}, false
}

// Skill is a parameterized sequence of workflow nodes.
//
// Step inputs and outputs may reference declared inputs as {{inputs.name}}
// and the fields of earlier steps as {{steps.step.field}}.
type Skill struct {
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Inputs      []SkillInput      `yaml:"inputs,omitempty" json:"inputs,omitempty"`
	Steps       []SkillStep       `yaml:"steps" json:"steps"`
	Outputs     map[string]string `yaml:"outputs,omitempty" json:"outputs,omitempty"`
}

// SkillInput declares one skill parameter.
type SkillInput struct {
	Name        string `yaml:"name" json:"name"`
	Type        string `yaml:"type,omitempty" json:"type,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Required    bool   `yaml:"required,omitempty" json:"required,omitempty"`
	Default     any    `yaml:"default,omitempty" json:"default,omitempty"`
}

// SkillStep runs one node type.
type SkillStep struct {
	Name       string         `yaml:"name" json:"name"`
	Node       string         `yaml:"node" json:"node"`
	Connection string         `yaml:"connection,omitempty" json:"connection,omitempty"`
	Input      map[string]any `yaml:"input,omitempty" json:"input,omitempty"`
}

// InputTypes lists the accepted [SkillInput] types. An empty type means string.
var InputTypes = []string{"string", "number", "integer", "boolean", "object", "array"}

// WorkflowPayload is the body sent to the workflow create endpoint.
type WorkflowPayload struct {
	Name          string            `json:"name"`
	Description   string            `json:"description,omitempty"`
	Nodes         []WorkflowNode    `json:"nodes"`
	InputSchema   map[string]any    `json:"input_schema"`
	OutputMapping map[string]string `json:"output_mapping"`
}

// WorkflowNode is one node of a [WorkflowPayload].
type WorkflowNode struct {
	Name         string         `json:"name"`
	NodeTypeName string         `json:"node_type_name"`
	InputConfig  map[string]any `json:"input_config"`
	Connection   string         `json:"connection,omitempty"`
}

// Map returns the payload as a generic JSON object. It fails when a node
// input holds a value JSON cannot represent, which Validate reports first.
func (w WorkflowPayload) Map() (map[string]any, error) {
	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("encode workflow %q: %w", w.Name, err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode workflow %q: %w", w.Name, err)
	}
	return m, nil
}

var reference = regexp.MustCompile(`\{\{\s*([^{}]*?)\s*\}\}`)

// Workflow synthesizes the workflow definition for s. Nodes follow step
// order and references are rewritten to the engine's {{name}} and
// {{step.field}} syntax. s should be valid.
func (s Skill) Workflow() WorkflowPayload {
	w := WorkflowPayload{
		Name:          s.Name,
		Description:   s.Description,
		Nodes:         make([]WorkflowNode, 0, len(s.Steps)),
		InputSchema:   s.inputSchema(),
		OutputMapping: make(map[string]string, len(s.Outputs)),
	}
	for _, step := range s.Steps {
		cfg, _ := rewriteValue(step.Input).(map[string]any)
		if cfg == nil {
			cfg = map[string]any{}
		}
		w.Nodes = append(w.Nodes, WorkflowNode{
			Name:         step.Name,
			NodeTypeName: step.Node,
			InputConfig:  cfg,
			Connection:   step.Connection,
		})
	}
	for k, v := range s.Outputs {
		w.OutputMapping[k] = rewrite(v)
	}
	return w
}

func (s Skill) inputSchema() map[string]any {
	props := make(map[string]any, len(s.Inputs))
	required := []string{}
	for _, in := range s.Inputs {
		typ := in.Type
		if typ == "" {
			typ = "string"
		}
		prop := map[string]any{"type": typ}
		if in.Description != "" {
			prop["description"] = in.Description
		}
		if in.Default != nil {
			prop["default"] = in.Default
		}
		props[in.Name] = prop
		if in.Required {
			required = append(required, in.Name)
		}
	}
	sort.Strings(required)
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func rewriteValue(v any) any {
	switch x := v.(type) {
	case string:
		return rewrite(x)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = rewriteValue(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = rewriteValue(e)
		}
		return out
	}
	return v
}

func rewrite(s string) string {
	return reference.ReplaceAllStringFunc(s, func(m string) string {
		ref := reference.FindStringSubmatch(m)[1]
		if name, ok := strings.CutPrefix(ref, "inputs."); ok {
			return "{{" + name + "}}"
		}
		if path, ok := strings.CutPrefix(ref, "steps."); ok {
			return "{{" + path + "}}"
		}
		return m
	})
}

// references returns every {{...}} expression found in v.
func references(v any) []string {
	var out []string
	var walk func(any)
	walk = func(v any) {
		switch x := v.(type) {
		case string:
			for _, m := range reference.FindAllStringSubmatch(x, -1) {
				out = append(out, m[1])
			}
		case map[string]any:
			keys := make([]string, 0, len(x))
			for k := range x {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				walk(x[k])
			}
		case []any:
			for _, e := range x {
				walk(e)
			}
		}
	}
	walk(v)
	return out
}
