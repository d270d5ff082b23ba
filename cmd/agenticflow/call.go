package main

import (
	"fmt"
	"strings"

	"github.com/agenticflow/agenticflow"
	"github.com/agenticflow/agenticflow/rest"
	"github.com/spf13/cobra"
)

func (a *app) newCallCommand() *cobra.Command {
	var (
		method  string
		data    string
		query   []string
		params  []string
		headers []string
	)
	cmd := &cobra.Command{
		Use:   "call <operation | \"METHOD /path\" | /path>",
		Short: "Invoke any API operation",
		Long: `Invoke a registered operation by ID (see "agenticflow operations"),
an explicit "METHOD /path" pair, or a bare path sent with --method.

Path placeholders such as {agent_id} are filled from --param.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := rest.ResolveCall(args[0], method)
			if err != nil {
				return err
			}
			var opts agenticflow.RequestOptions
			if opts.PathParams, err = parsePairs("param", params); err != nil {
				return err
			}
			if opts.Query, err = parseQuery(query); err != nil {
				return err
			}
			if opts.Header, err = parsePairs("header", headers); err != nil {
				return err
			}
			if opts.JSON, err = a.readData(data); err != nil {
				return err
			}

			r, err := a.requesterStack()
			if err != nil {
				return err
			}
			resp, err := r.Request(cmd.Context(), op.Method, op.Path, opts)
			if err != nil {
				return err
			}
			if resp.Body == nil {
				if resp.Text != "" {
					_, err := fmt.Fprintln(a.stdout, resp.Text)
					return err
				}
				return nil
			}
			return a.emit(cmd.Context(), resp.Body)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&method, "method", "X", "", "HTTP method for a bare path (default GET)")
	f.StringVarP(&data, "data", "d", "", "JSON body, @file or - for stdin")
	f.StringArrayVarP(&query, "query", "q", nil, "query parameter key=value (repeatable)")
	f.StringArrayVarP(&params, "param", "p", nil, "path parameter key=value (repeatable)")
	f.StringArrayVarP(&headers, "header", "H", nil, "request header name=value (repeatable)")
	return cmd
}

func (a *app) newOperationsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "operations",
		Short: "List the registered API operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ops := agenticflow.Operations()
			rows := make([]map[string]any, len(ops))
			for i, op := range ops {
				rows[i] = map[string]any{
					"id":     op.ID,
					"method": op.Method,
					"path":   op.Path,
					"cost":   agenticflow.EstimateCost(op.Method),
				}
			}
			if a.flags.json || a.flags.jq != "" {
				return a.emit(cmd.Context(), rows)
			}
			var b strings.Builder
			for _, op := range ops {
				fmt.Fprintf(&b, "%-24s %-7s %s\n", op.ID, op.Method, op.Path)
			}
			_, err := fmt.Fprint(a.stdout, b.String())
			return err
		},
	}
}
