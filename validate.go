package agenticflow

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"
)

var (
	packName   = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
	identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	semver     = regexp.MustCompile(`^\d+\.\d+\.\d+(?:[-+][0-9A-Za-z.-]+)?$`)
)

// ValidationErrors collects every problem found in a manifest.
// It matches [ErrValidation] with errors.Is.
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	if len(v) == 1 {
		return "validation error: " + v[0]
	}
	return fmt.Sprintf("%d validation errors: %s", len(v), strings.Join(v, "; "))
}

func (v ValidationErrors) Unwrap() error {
	return ErrValidation
}

func (v *ValidationErrors) addf(format string, args ...any) {
	*v = append(*v, fmt.Sprintf(format, args...))
}

func (v ValidationErrors) err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// Validate checks the pack metadata and every skill.
func (p Pack) Validate() error {
	var errs ValidationErrors
	switch {
	case p.Name == "":
		errs.addf("pack name is required")
	case !packName.MatchString(p.Name):
		errs.addf("pack name %q must be lowercase letters, digits, '-' or '_'", p.Name)
	}
	switch {
	case p.Version == "":
		errs.addf("pack version is required")
	case !semver.MatchString(p.Version):
		errs.addf("pack version %q is not a semantic version", p.Version)
	}
	if len(p.Skills) == 0 {
		errs.addf("pack %q has no skills", p.Name)
	}
	seen := make(map[string]bool, len(p.Skills))
	for _, s := range p.Skills {
		if s.Name != "" && seen[s.Name] {
			errs.addf("duplicate skill %q", s.Name)
		}
		seen[s.Name] = true
		for _, e := range s.problems() {
			errs.addf("skill %q: %s", s.Name, e)
		}
	}
	return errs.err()
}

// Validate checks names, input types and that every reference points to a
// declared input or an earlier step.
func (s Skill) Validate() error {
	return s.problems().err()
}

func (s Skill) problems() ValidationErrors {
	var errs ValidationErrors
	switch {
	case s.Name == "":
		errs.addf("name is required")
	case !packName.MatchString(s.Name):
		errs.addf("name %q must be lowercase letters, digits, '-' or '_'", s.Name)
	}

	inputs := make(map[string]bool, len(s.Inputs))
	for i, in := range s.Inputs {
		switch {
		case in.Name == "":
			errs.addf("input %d: name is required", i)
		case !identifier.MatchString(in.Name):
			errs.addf("input %q: invalid identifier", in.Name)
		case inputs[in.Name]:
			errs.addf("duplicate input %q", in.Name)
		}
		inputs[in.Name] = true
		if in.Type != "" && !slices.Contains(InputTypes, in.Type) {
			errs.addf("input %q: unknown type %q", in.Name, in.Type)
		}
		if _, err := json.Marshal(in.Default); err != nil {
			errs.addf("input %q: default is not representable as JSON: %v", in.Name, err)
		}
	}

	if len(s.Steps) == 0 {
		errs.addf("at least one step is required")
	}
	steps := make(map[string]bool, len(s.Steps))
	for i, step := range s.Steps {
		switch {
		case step.Name == "":
			errs.addf("step %d: name is required", i)
		case !identifier.MatchString(step.Name):
			errs.addf("step %q: invalid identifier", step.Name)
		case steps[step.Name]:
			errs.addf("duplicate step %q", step.Name)
		}
		if step.Node == "" {
			errs.addf("step %q: node is required", step.Name)
		}
		// YAML admits .nan and non-string map keys; JSON does not.
		if _, err := json.Marshal(step.Input); err != nil {
			errs.addf("step %q: input is not representable as JSON: %v", step.Name, err)
		}
		for _, ref := range references(step.Input) {
			if msg := checkReference(ref, inputs, steps); msg != "" {
				errs.addf("step %q: %s", step.Name, msg)
			}
		}
		// Registered after its own references so a step cannot read itself.
		steps[step.Name] = true
	}

	keys := make([]string, 0, len(s.Outputs))
	for k := range s.Outputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, ref := range references(s.Outputs[k]) {
			if msg := checkReference(ref, inputs, steps); msg != "" {
				errs.addf("output %q: %s", k, msg)
			}
		}
	}
	return errs
}

func checkReference(ref string, inputs, steps map[string]bool) string {
	if name, ok := strings.CutPrefix(ref, "inputs."); ok {
		if !inputs[name] {
			return fmt.Sprintf("reference {{%s}} names undeclared input %q", ref, name)
		}
		return ""
	}
	if path, ok := strings.CutPrefix(ref, "steps."); ok {
		name, field, _ := strings.Cut(path, ".")
		if field == "" {
			return fmt.Sprintf("reference {{%s}} must name a step field", ref)
		}
		if !steps[name] {
			return fmt.Sprintf("reference {{%s}} names unknown or later step %q", ref, name)
		}
		return ""
	}
	return fmt.Sprintf("unsupported reference {{%s}}", ref)
}
