// Package json persists the local template cache.
package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Version is the envelope version written by Save.
const Version = 1

// DefaultTTL is how long a synced cache is considered fresh.
const DefaultTTL = 24 * time.Hour

// Template kinds.
const (
	KindWorkflow = "workflow"
	KindAgent    = "agent"
)

// Template is one cached workflow or agent template.
type Template struct {
	Kind        string          `json:"kind"`
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
}

// Cache is the set of templates fetched at one point in time.
type Cache struct {
	FetchedAt time.Time
	Templates []Template
}

// envelope is the v1 wire format for a persisted cache.
type envelope struct {
	Version   int        `json:"version"`
	FetchedAt time.Time  `json:"fetched_at"`
	Templates []Template `json:"templates"`
}

// Stale reports whether the cache is empty or older than ttl at now.
func (c Cache) Stale(ttl time.Duration, now time.Time) bool {
	if c.FetchedAt.IsZero() {
		return true
	}
	return now.Sub(c.FetchedAt) > ttl
}

// Find returns templates of kind (every kind when empty) whose name,
// ID or description contains query, case-insensitively, sorted by name.
func (c Cache) Find(kind, query string) []Template {
	query = strings.ToLower(query)
	var out []Template
	for _, t := range c.Templates {
		if kind != "" && t.Kind != kind {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(t.Name), query) &&
			!strings.Contains(strings.ToLower(t.ID), query) &&
			!strings.Contains(strings.ToLower(t.Description), query) {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Marshal serializes c in v1 envelope format.
func Marshal(c Cache) ([]byte, error) {
	env := envelope{Version: Version, FetchedAt: c.FetchedAt.UTC(), Templates: c.Templates}
	if env.Templates == nil {
		env.Templates = []Template{}
	}
	return json.MarshalIndent(env, "", "  ")
}

// Unmarshal deserializes a cache in v1 envelope format.
func Unmarshal(data []byte) (Cache, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Cache{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != Version {
		return Cache{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	return Cache{FetchedAt: env.FetchedAt, Templates: env.Templates}, nil
}

// Save writes c to path, creating parent directories as needed. The file
// is replaced atomically.
func Save(path string, c Cache) error {
	data, err := Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads the cache at path. A missing file yields an empty, stale cache.
func Load(path string) (Cache, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Cache{}, nil
	}
	if err != nil {
		return Cache{}, fmt.Errorf("read file: %w", err)
	}
	return Unmarshal(data)
}
