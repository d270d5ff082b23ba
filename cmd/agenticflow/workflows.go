package main

import (
	"context"

	"github.com/agenticflow/agenticflow/api"
	"github.com/spf13/cobra"
)

func (a *app) newWorkflowsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflows",
		Short: "Manage and run workflows",
	}

	var list api.ListOptions
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List workflows in the workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			v, err := c.Workflows.List(cmd.Context(), list)
			if err != nil {
				return err
			}
			return a.emit(cmd.Context(), v)
		},
	}
	listFlags(listCmd, &list)

	var createData, updateData, validateData string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a workflow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := a.requiredObject(createData)
			if err != nil {
				return err
			}
			c, err := a.api()
			if err != nil {
				return err
			}
			v, err := c.Workflows.Create(cmd.Context(), payload)
			if err != nil {
				return err
			}
			return a.emit(cmd.Context(), v)
		},
	}
	createCmd.Flags().StringVarP(&createData, "data", "d", "", "workflow definition: JSON, @file or -")

	updateCmd := &cobra.Command{
		Use:   "update <workflow-id>",
		Short: "Replace a workflow definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := a.requiredObject(updateData)
			if err != nil {
				return err
			}
			c, err := a.api()
			if err != nil {
				return err
			}
			v, err := c.Workflows.Update(cmd.Context(), args[0], payload)
			if err != nil {
				return err
			}
			return a.emit(cmd.Context(), v)
		},
	}
	updateCmd.Flags().StringVarP(&updateData, "data", "d", "", "workflow definition: JSON, @file or -")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a workflow definition without creating it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := a.requiredObject(validateData)
			if err != nil {
				return err
			}
			c, err := a.api()
			if err != nil {
				return err
			}
			v, err := c.Workflows.Validate(cmd.Context(), payload)
			if err != nil {
				return err
			}
			return a.emit(cmd.Context(), v)
		},
	}
	validateCmd.Flags().StringVarP(&validateData, "data", "d", "", "workflow definition: JSON, @file or -")

	cmd.AddCommand(
		listCmd,
		a.getCommand("workflow", func(ctx context.Context, c *api.Client, id string) (any, error) {
			return c.Workflows.Get(ctx, id)
		}),
		createCmd,
		updateCmd,
		a.deleteCommand("workflow", func(ctx context.Context, c *api.Client, id string) error {
			return c.Workflows.Delete(ctx, id)
		}),
		validateCmd,
		a.newRunCommand(),
		a.newRunStatusCommand(),
	)
	return cmd
}

func (a *app) newRunCommand() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "run <workflow-id>",
		Short: "Start a workflow run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := a.readObject(input)
			if err != nil {
				return err
			}
			if in == nil {
				in = map[string]any{}
			}
			c, err := a.api()
			if err != nil {
				return err
			}
			v, err := c.Workflows.Run(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			return a.emit(cmd.Context(), v)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "run input object: JSON, @file or -")
	return cmd
}

func (a *app) newRunStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run-status <run-id>",
		Short: "Show the status of a workflow run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			v, err := c.Workflows.RunStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.emit(cmd.Context(), v)
		},
	}
}
