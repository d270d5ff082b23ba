package main

import (
	"fmt"

	"github.com/agenticflow/agenticflow"
	"github.com/agenticflow/agenticflow/rest"
	"github.com/spf13/cobra"
)

func (a *app) newPolicyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect the local call policy",
	}

	var method string
	var spent float64
	check := &cobra.Command{
		Use:   "check <operation | \"METHOD /path\" | /path>",
		Short: "Report whether the policy allows an operation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.flags.policy == "" {
				return fmt.Errorf("--policy is required: %w", agenticflow.ErrValidation)
			}
			p, err := a.loadPolicy()
			if err != nil {
				return err
			}
			op, err := rest.ResolveCall(args[0], method)
			if err != nil {
				return err
			}
			cost := agenticflow.EstimateCost(op.Method)
			if err := p.Check(op, spent); err != nil {
				return err
			}
			if a.flags.json {
				return a.emit(cmd.Context(), map[string]any{
					"operation": op.ID,
					"method":    op.Method,
					"path":      op.Path,
					"cost":      cost,
					"allowed":   true,
				})
			}
			_, err = fmt.Fprintf(a.stdout, "allowed %s (%s %s, cost %g)\n", op.ID, op.Method, op.Path, cost)
			return err
		},
	}
	check.Flags().StringVarP(&method, "method", "X", "", "HTTP method for a bare path (default GET)")
	check.Flags().Float64Var(&spent, "spent", 0, "budget already spent")

	cmd.AddCommand(check)
	return cmd
}
