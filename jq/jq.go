// Package jq filters command output with jq expressions.
package jq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/agenticflow/agenticflow"
	"github.com/itchyny/gojq"
)

// Compile parses and compiles expr. Errors wrap [agenticflow.ErrValidation].
func Compile(expr string) (*gojq.Code, error) {
	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression: %w: %w", agenticflow.ErrValidation, err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("jq compilation failed: %w: %w", agenticflow.ErrValidation, err)
	}
	return code, nil
}

// Filter runs expr against data. Zero results yield nil, one result is
// returned as is and several are collected into a slice. An empty
// expression returns data unchanged.
func Filter(ctx context.Context, expr string, data any) (any, error) {
	if expr == "" {
		return data, nil
	}
	code, err := Compile(expr)
	if err != nil {
		return nil, err
	}
	input, err := normalize(data)
	if err != nil {
		return nil, err
	}

	var results []any
	iter := code.RunWithContext(ctx, input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			var halt *gojq.HaltError
			if errors.As(err, &halt) && halt.Value() == nil {
				break
			}
			return nil, fmt.Errorf("jq: %w", err)
		}
		results = append(results, v)
	}

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	}
	return results, nil
}

// normalize converts data into the generic JSON values gojq accepts.
func normalize(data any) (any, error) {
	switch data.(type) {
	case nil, bool, string, float64, int, map[string]any, []any:
		return data, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("jq input: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("jq input: %w", err)
	}
	return v, nil
}
