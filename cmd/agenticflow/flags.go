package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/agenticflow/agenticflow"
)

// readData resolves a --data value: inline JSON, @file, or - for stdin.
// An empty value yields nil.
func (a *app) readData(value string) (any, error) {
	if value == "" {
		return nil, nil
	}
	var data []byte
	switch {
	case value == "-":
		b, err := io.ReadAll(a.stdin)
		if err != nil {
			return nil, fmt.Errorf("read data from stdin: %w", err)
		}
		data = b
	case strings.HasPrefix(value, "@"):
		b, err := os.ReadFile(value[1:])
		if err != nil {
			return nil, fmt.Errorf("read data: %w", err)
		}
		data = b
	default:
		data = []byte(value)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("data is not valid JSON: %v: %w", err, agenticflow.ErrValidation)
	}
	return v, nil
}

// readObject is readData for payloads that must be JSON objects.
func (a *app) readObject(value string) (map[string]any, error) {
	v, err := a.readData(value)
	if err != nil || v == nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("data must be a JSON object: %w", agenticflow.ErrValidation)
	}
	return obj, nil
}

// parsePairs splits key=value flags. Repeated keys keep the last value.
func parsePairs(flag string, pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("--%s %q: expected key=value: %w", flag, p, agenticflow.ErrValidation)
		}
		out[k] = v
	}
	return out, nil
}

// parseQuery is parsePairs for query parameters; repeated keys collect
// into a list.
func parseQuery(pairs []string) (agenticflow.Params, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := agenticflow.Params{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("--query %q: expected key=value: %w", p, agenticflow.ErrValidation)
		}
		switch prev := out[k].(type) {
		case nil:
			out[k] = v
		case string:
			out[k] = []string{prev, v}
		case []string:
			out[k] = append(prev, v)
		}
	}
	return out, nil
}
