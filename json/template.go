package json

import (
	"encoding/json"
	"fmt"
)

// Templates extracts templates of kind from a decoded list response. The
// body may be a bare array or an object wrapping one under "items",
// "data" or "results". Entries without an ID are skipped.
func Templates(kind string, body any) ([]Template, error) {
	items, ok := listItems(body)
	if !ok {
		return nil, fmt.Errorf("unexpected %s template list of type %T", kind, body)
	}
	out := make([]Template, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id := stringField(obj, "id")
		if id == "" {
			continue
		}
		data, err := json.Marshal(obj)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", id, err)
		}
		out = append(out, Template{
			Kind:        kind,
			ID:          id,
			Name:        stringField(obj, "name"),
			Description: stringField(obj, "description"),
			Data:        data,
		})
	}
	return out, nil
}

func listItems(body any) ([]any, bool) {
	switch x := body.(type) {
	case []any:
		return x, true
	case map[string]any:
		for _, k := range []string{"items", "data", "results"} {
			if items, ok := x[k].([]any); ok {
				return items, true
			}
		}
	case nil:
		return nil, true
	}
	return nil, false
}

func stringField(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprint(v)
	}
	return ""
}
