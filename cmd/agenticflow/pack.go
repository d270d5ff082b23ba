package main

import (
	"fmt"

	"github.com/agenticflow/agenticflow"
	"github.com/agenticflow/agenticflow/yaml"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) newPackCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Validate, build and install skill packs",
		Long: `A pack is a directory holding a pack.yaml manifest and skill manifests.
Each skill becomes one workflow.`,
	}

	validate := &cobra.Command{
		Use:   "validate <dir>",
		Short: "Check a pack and every skill in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadPack(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.stdout, "pack %s@%s is valid (%d skills)\n", p.Name, p.Version, len(p.Skills))
			return err
		},
	}

	var skill string
	build := &cobra.Command{
		Use:   "build <dir>",
		Short: "Print the workflow definitions a pack installs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadPack(args[0])
			if err != nil {
				return err
			}
			skills, err := selectSkills(p, skill)
			if err != nil {
				return err
			}
			out := make([]map[string]any, len(skills))
			for i, s := range skills {
				m, err := s.Workflow().Map()
				if err != nil {
					return err
				}
				out[i] = m
			}
			if skill != "" {
				return writeJSON(a.stdout, out[0])
			}
			return writeJSON(a.stdout, out)
		},
	}
	build.Flags().StringVar(&skill, "skill", "", "only build this skill")

	var dryRun, remoteValidate bool
	install := &cobra.Command{
		Use:   "install <dir>",
		Short: "Create one workflow per skill in the workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadPack(args[0])
			if err != nil {
				return err
			}
			if dryRun {
				for _, s := range p.Skills {
					fmt.Fprintf(a.stdout, "would install %s/%s (%d steps)\n", p.Name, s.Name, len(s.Steps))
				}
				return nil
			}
			c, err := a.api()
			if err != nil {
				return err
			}
			var results []any
			for _, s := range p.Skills {
				payload, err := s.Workflow().Map()
				if err != nil {
					return fmt.Errorf("install skill %q: %w", s.Name, err)
				}
				if remoteValidate {
					if _, err := c.Workflows.Validate(cmd.Context(), payload); err != nil {
						return fmt.Errorf("validate skill %q: %w", s.Name, err)
					}
				}
				v, err := c.Workflows.Create(cmd.Context(), payload)
				if err != nil {
					return fmt.Errorf("install skill %q: %w", s.Name, err)
				}
				a.logger.Info("skill installed", zap.String("pack", p.Name), zap.String("skill", s.Name))
				results = append(results, v)
				if !a.flags.json && a.flags.jq == "" {
					fmt.Fprintf(a.stdout, "installed %s/%s%s\n", p.Name, s.Name, idSuffix(v))
				}
			}
			if a.flags.json || a.flags.jq != "" {
				return a.emit(cmd.Context(), results)
			}
			return nil
		},
	}
	install.Flags().BoolVar(&dryRun, "dry-run", false, "print what would be installed")
	install.Flags().BoolVar(&remoteValidate, "validate", false, "validate each workflow with the API before creating it")

	cmd.AddCommand(validate, build, install)
	return cmd
}

func (a *app) loadPack(dir string) (agenticflow.Pack, error) {
	p, err := yaml.LoadPack(dir)
	if err != nil {
		return agenticflow.Pack{}, fmt.Errorf("load pack: %w", err)
	}
	if err := p.Validate(); err != nil {
		return agenticflow.Pack{}, err
	}
	return p, nil
}

func selectSkills(p agenticflow.Pack, name string) ([]agenticflow.Skill, error) {
	if name == "" {
		return p.Skills, nil
	}
	s, ok := p.Skill(name)
	if !ok {
		return nil, fmt.Errorf("pack %q has no skill %q: %w", p.Name, name, agenticflow.ErrNotFound)
	}
	return []agenticflow.Skill{s}, nil
}

func idSuffix(v any) string {
	if m, ok := v.(map[string]any); ok {
		if id, ok := m["id"]; ok && id != nil {
			return fmt.Sprintf(" (id %v)", id)
		}
	}
	return ""
}
