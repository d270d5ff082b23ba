// Package policy gates API calls against a local policy file and records
// every decision in an audit log.
package policy

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/agenticflow/agenticflow"
	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Policy restricts which operations a process may invoke.
//
// Allow and Deny hold doublestar patterns matched against the operation ID
// ("agents.delete") and its path template ("/v1/agents/{agent_id}").
// Deny wins over Allow; an empty Allow list allows everything not denied.
type Policy struct {
	ReadOnly bool     `yaml:"read_only"`
	MaxCost  float64  `yaml:"max_cost"` // total budget, 0 = unlimited
	Allow    []string `yaml:"allow"`
	Deny     []string `yaml:"deny"`
}

// Parse reads a YAML policy.
func Parse(r io.Reader) (Policy, error) {
	var p Policy
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Policy{}, fmt.Errorf("policy: decode: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Load reads a YAML policy file.
func Load(path string) (Policy, error) {
	f, err := os.Open(path)
	if err != nil {
		return Policy{}, fmt.Errorf("policy: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Validate checks the budget and every pattern.
func (p Policy) Validate() error {
	if p.MaxCost < 0 {
		return fmt.Errorf("policy: max_cost must be non-negative, got %g: %w", p.MaxCost, agenticflow.ErrValidation)
	}
	for _, list := range [][]string{p.Allow, p.Deny} {
		for _, pattern := range list {
			if !doublestar.ValidatePattern(pattern) {
				return fmt.Errorf("policy: invalid pattern %q: %w", pattern, agenticflow.ErrValidation)
			}
		}
	}
	return nil
}

// Check decides whether op may run after spent cost units were already used.
// A refusal wraps [agenticflow.ErrPolicyDenied].
func (p Policy) Check(op agenticflow.Operation, spent float64) error {
	cost := agenticflow.EstimateCost(op.Method)
	switch {
	case matchAny(p.Deny, op):
		return denied(op, "matched deny list")
	case len(p.Allow) > 0 && !matchAny(p.Allow, op):
		return denied(op, "not in allow list")
	case p.ReadOnly && cost > 0:
		return denied(op, "policy is read-only")
	case p.MaxCost > 0 && spent+cost > p.MaxCost:
		return denied(op, fmt.Sprintf("cost %.1f would exceed budget %.1f (spent %.1f)", cost, p.MaxCost, spent))
	}
	return nil
}

func matchAny(patterns []string, op agenticflow.Operation) bool {
	for _, pattern := range patterns {
		if match(pattern, op.ID) || match(pattern, op.Path) {
			return true
		}
	}
	return false
}

func match(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}

func denied(op agenticflow.Operation, reason string) error {
	return fmt.Errorf("policy: %s: %s: %w", op.ID, reason, agenticflow.ErrPolicyDenied)
}
