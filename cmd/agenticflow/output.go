package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/agenticflow/agenticflow/jq"
	"github.com/agenticflow/agenticflow/terminal"
	"github.com/mattn/go-runewidth"
)

// Columns shown first, in this order, when a list is printed as a table.
var preferredColumns = []string{"id", "name", "title", "status", "description", "updated_at"}

const (
	maxColumns    = 6
	maxCellWidth  = 48
	columnGap     = "  "
	emptyListText = "(no results)"
)

// emit prints an API result. --jq filters it first; --json prints it
// verbatim; lists of objects become a table; anything else is indented JSON.
func (a *app) emit(ctx context.Context, v any) error {
	v, err := generic(v)
	if err != nil {
		return err
	}
	if a.flags.jq != "" {
		out, err := jq.Filter(ctx, a.flags.jq, v)
		if err != nil {
			return err
		}
		if s, ok := out.(string); ok {
			_, err := fmt.Fprintln(a.stdout, s)
			return err
		}
		return writeJSON(a.stdout, out)
	}
	if a.flags.json {
		return writeJSON(a.stdout, v)
	}
	if rows, ok := objectList(v); ok {
		return writeTable(a.stdout, rows)
	}
	if s, ok := v.(string); ok {
		_, err := fmt.Fprintln(a.stdout, s)
		return err
	}
	return writeJSON(a.stdout, v)
}

// generic converts v to the map/slice form produced by encoding/json.
func generic(v any) (any, error) {
	switch v.(type) {
	case nil, string, bool, float64, map[string]any, []any:
		return v, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode output: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("encode output: %w", err)
	}
	return out, nil
}

func writeJSON(w io.Writer, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// objectList unwraps list responses, bare or under items/data/results, and
// reports whether every element is an object.
func objectList(v any) ([]map[string]any, bool) {
	var items []any
	switch x := v.(type) {
	case []any:
		items = x
	case map[string]any:
		for _, key := range []string{"items", "data", "results"} {
			if list, ok := x[key].([]any); ok {
				items = list
				break
			}
		}
		if items == nil {
			return nil, false
		}
	default:
		return nil, false
	}
	rows := make([]map[string]any, 0, len(items))
	for _, it := range items {
		obj, ok := it.(map[string]any)
		if !ok {
			return nil, false
		}
		rows = append(rows, obj)
	}
	return rows, true
}

// writeTable prints rows as aligned columns. Preferred keys come first; the
// remaining scalar keys follow alphabetically until maxColumns is reached.
func writeTable(w io.Writer, rows []map[string]any) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, emptyListText)
		return err
	}
	cols := tableColumns(rows)
	cells := make([][]string, len(rows))
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = runewidth.StringWidth(c)
	}
	for r, row := range rows {
		cells[r] = make([]string, len(cols))
		for i, c := range cols {
			s := runewidth.Truncate(cellText(row[c]), maxCellWidth, "…")
			cells[r][i] = s
			widths[i] = max(widths[i], runewidth.StringWidth(s))
		}
	}

	var b strings.Builder
	line := func(values []string) {
		for i, v := range values {
			if i == len(values)-1 {
				b.WriteString(v)
				break
			}
			b.WriteString(runewidth.FillRight(v, widths[i]))
			b.WriteString(columnGap)
		}
		b.WriteByte('\n')
	}
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = strings.ToUpper(c)
	}
	line(header)
	for _, row := range cells {
		line(row)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func tableColumns(rows []map[string]any) []string {
	present := map[string]bool{}
	for _, row := range rows {
		for k, v := range row {
			if isScalar(v) {
				present[k] = true
			}
		}
	}
	var cols []string
	for _, c := range preferredColumns {
		if present[c] {
			cols = append(cols, c)
			delete(present, c)
		}
	}
	rest := make([]string, 0, len(present))
	for k := range present {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	for _, k := range rest {
		if len(cols) >= maxColumns {
			break
		}
		cols = append(cols, k)
	}
	return cols
}

func isScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool, float64:
		return true
	}
	return false
}

func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return terminal.Line(x)
	case float64:
		return fmt.Sprint(x)
	}
	data, _ := json.Marshal(v)
	return string(data)
}
