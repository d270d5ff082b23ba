// Package yaml loads and writes pack and skill manifests.
//
// A pack directory holds a pack.yaml manifest and skill files found through
// the manifest's include patterns (doublestar globs relative to the pack
// directory). Unknown fields are rejected so typos surface as errors.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"sort"

	"github.com/agenticflow/agenticflow"
	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// ManifestName is the pack manifest file name.
const ManifestName = "pack.yaml"

// DecodePack reads a pack manifest.
func DecodePack(r io.Reader) (agenticflow.Pack, error) {
	var p agenticflow.Pack
	if err := decode(r, &p); err != nil {
		return agenticflow.Pack{}, err
	}
	return p, nil
}

// DecodeSkill reads one skill manifest.
func DecodeSkill(r io.Reader) (agenticflow.Skill, error) {
	var s agenticflow.Skill
	if err := decode(r, &s); err != nil {
		return agenticflow.Skill{}, err
	}
	return s, nil
}

func decode(r io.Reader, v any) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty document: %w", agenticflow.ErrValidation)
		}
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// LoadPack reads the pack in dir.
func LoadPack(dir string) (agenticflow.Pack, error) {
	return LoadPackFS(os.DirFS(dir))
}

// LoadPackFS reads pack.yaml from the root of fsys and appends every skill
// matched by its include patterns, in path order, after the inline skills.
func LoadPackFS(fsys iofs.FS) (agenticflow.Pack, error) {
	f, err := fsys.Open(ManifestName)
	if err != nil {
		return agenticflow.Pack{}, fmt.Errorf("open %s: %w", ManifestName, err)
	}
	pack, err := DecodePack(f)
	f.Close()
	if err != nil {
		return agenticflow.Pack{}, fmt.Errorf("%s: %w", ManifestName, err)
	}

	files, err := SkillFiles(fsys, pack.Include)
	if err != nil {
		return agenticflow.Pack{}, err
	}
	for _, name := range files {
		s, err := loadSkill(fsys, name)
		if err != nil {
			return agenticflow.Pack{}, err
		}
		pack.Skills = append(pack.Skills, s)
	}
	return pack, nil
}

// SkillFiles returns the sorted, deduplicated files matched by patterns,
// or by [agenticflow.DefaultSkillGlob] when patterns is empty.
func SkillFiles(fsys iofs.FS, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = []string{agenticflow.DefaultSkillGlob}
	}
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern %q: %w", pattern, agenticflow.ErrValidation)
		}
		err := doublestar.GlobWalk(fsys, pattern, func(path string, d iofs.DirEntry) error {
			if d.IsDir() || path == ManifestName || seen[path] {
				return nil
			}
			seen[path] = true
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("match %q: %w", pattern, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

func loadSkill(fsys iofs.FS, name string) (agenticflow.Skill, error) {
	data, err := iofs.ReadFile(fsys, name)
	if err != nil {
		return agenticflow.Skill{}, fmt.Errorf("read %s: %w", name, err)
	}
	s, err := DecodeSkill(bytes.NewReader(data))
	if err != nil {
		return agenticflow.Skill{}, fmt.Errorf("%s: %w", name, err)
	}
	return s, nil
}

// EncodePack writes p as a single self-contained manifest with every skill
// inlined and no include patterns.
func EncodePack(w io.Writer, p agenticflow.Pack) error {
	p.Include = nil
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}
