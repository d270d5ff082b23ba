package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/agenticflow/agenticflow"
	"github.com/agenticflow/agenticflow/api"
	"github.com/agenticflow/agenticflow/bubbletea"
	"github.com/agenticflow/agenticflow/goldmark"
	"github.com/agenticflow/agenticflow/stream"
	"github.com/agenticflow/agenticflow/terminal"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// listFlags registers the paging flags shared by list commands.
func listFlags(cmd *cobra.Command, opts *api.ListOptions) {
	f := cmd.Flags()
	f.IntVar(&opts.Limit, "limit", 0, "maximum number of results")
	f.IntVar(&opts.Offset, "offset", 0, "number of results to skip")
	f.StringVar(&opts.Search, "search", "", "filter by name")
}

func (a *app) newAgentsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "Manage and run agents",
	}

	var list api.ListOptions
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			v, err := c.Agents.List(cmd.Context(), list)
			if err != nil {
				return err
			}
			return a.emit(cmd.Context(), v)
		},
	}
	listFlags(listCmd, &list)

	var createData, updateData string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an agent",
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
			v, err := c.Agents.Create(cmd.Context(), payload)
			if err != nil {
				return err
			}
			return a.emit(cmd.Context(), v)
		},
	}
	createCmd.Flags().StringVarP(&createData, "data", "d", "", "agent definition: JSON, @file or -")

	updateCmd := &cobra.Command{
		Use:   "update <agent-id>",
		Short: "Replace an agent definition",
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
			v, err := c.Agents.Update(cmd.Context(), args[0], payload)
			if err != nil {
				return err
			}
			return a.emit(cmd.Context(), v)
		},
	}
	updateCmd.Flags().StringVarP(&updateData, "data", "d", "", "agent definition: JSON, @file or -")

	cmd.AddCommand(
		listCmd,
		a.getCommand("agent", func(ctx context.Context, c *api.Client, id string) (any, error) {
			return c.Agents.Get(ctx, id)
		}),
		createCmd,
		updateCmd,
		a.deleteCommand("agent", func(ctx context.Context, c *api.Client, id string) error {
			return c.Agents.Delete(ctx, id)
		}),
		a.newStreamCommand(),
	)
	return cmd
}

// getCommand builds "get <id>" for a resource.
func (a *app) getCommand(noun string, get func(context.Context, *api.Client, string) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "get <" + noun + "-id>",
		Short: "Show one " + noun,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			v, err := get(cmd.Context(), c, args[0])
			if err != nil {
				return err
			}
			return a.emit(cmd.Context(), v)
		},
	}
}

// deleteCommand builds "delete <id>" for a resource.
func (a *app) deleteCommand(noun string, del func(context.Context, *api.Client, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <" + noun + "-id>",
		Short: "Delete a " + noun,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			if err := del(cmd.Context(), c, args[0]); err != nil {
				return err
			}
			if a.flags.json {
				return a.emit(cmd.Context(), map[string]any{"id": args[0], "deleted": true})
			}
			_, err = fmt.Fprintf(a.stdout, "deleted %s %s\n", noun, args[0])
			return err
		},
	}
}

func (a *app) requiredObject(data string) (map[string]any, error) {
	if data == "" {
		return nil, fmt.Errorf("--data is required: %w", agenticflow.ErrValidation)
	}
	return a.readObject(data)
}

type streamFlags struct {
	messages []string
	system   string
	threadID string
	render   bool
	tui      bool
	width    int
}

func (a *app) newStreamCommand() *cobra.Command {
	var sf streamFlags
	cmd := &cobra.Command{
		Use:   "stream <agent-id>",
		Short: "Chat with an agent and print the streamed reply",
		Long: `Send messages to an agent and print its reply as it streams.

Messages come from --message (repeatable) or, when none are given, from
stdin. --render formats the reply as Markdown once it completes, --tui
opens an interactive viewer and --json prints every stream part as a
JSON line.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := a.streamRequest(sf)
			if err != nil {
				return err
			}
			c, err := a.api()
			if err != nil {
				return err
			}
			s, err := c.Agents.Stream(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			defer s.Close()

			switch {
			case sf.tui:
				m := bubbletea.New(s, a.theme(), bubbletea.WithTitle("agent "+args[0]))
				return bubbletea.Run(cmd.Context(), m, tea.WithInput(a.stdin), tea.WithOutput(a.stdout))
			case a.flags.json:
				return a.streamJSON(s)
			case sf.render:
				text, err := s.Text()
				if err != nil {
					return err
				}
				text = terminal.Sanitize(text)
				_, err = fmt.Fprint(a.stdout, goldmark.Render(text, a.width(sf.width), a.theme()))
				return err
			}
			return a.streamText(s)
		},
	}
	f := cmd.Flags()
	f.StringArrayVarP(&sf.messages, "message", "m", nil, "user message (repeatable)")
	f.StringVar(&sf.system, "system", "", "system message sent before the user messages")
	f.StringVar(&sf.threadID, "thread", "", "conversation ID")
	f.BoolVar(&sf.render, "render", false, "render the reply as Markdown")
	f.BoolVar(&sf.tui, "tui", false, "open the interactive stream viewer")
	f.IntVar(&sf.width, "width", 0, "render width (default $COLUMNS or 80)")
	cmd.MarkFlagsMutuallyExclusive("render", "tui")
	return cmd
}

func (a *app) streamRequest(sf streamFlags) (api.StreamRequest, error) {
	req := api.StreamRequest{ID: sf.threadID}
	if sf.system != "" {
		req.Messages = append(req.Messages, api.Message{Role: "system", Content: sf.system})
	}
	msgs := sf.messages
	if len(msgs) == 0 {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return api.StreamRequest{}, fmt.Errorf("read message from stdin: %w", err)
		}
		if text := strings.TrimSpace(string(data)); text != "" {
			msgs = []string{text}
		}
	}
	if len(msgs) == 0 {
		return api.StreamRequest{}, fmt.Errorf("no message: pass --message or pipe text on stdin: %w", agenticflow.ErrValidation)
	}
	for _, m := range msgs {
		req.Messages = append(req.Messages, api.Message{Role: "user", Content: m})
	}
	return req, nil
}

// streamText writes text deltas as they arrive and error parts to stderr.
func (a *app) streamText(s *stream.Session) error {
	var last string
	for p, err := range s.All() {
		if err != nil {
			return err
		}
		switch p.Type {
		case agenticflow.PartTextDelta:
			if t := terminal.Sanitize(p.Text()); t != "" {
				if _, err := io.WriteString(a.stdout, t); err != nil {
					return err
				}
				last = t
			}
		case agenticflow.PartError:
			fmt.Fprintf(a.stderr, "agenticflow: stream error: %s\n", partMessage(p))
		}
	}
	if last != "" && !strings.HasSuffix(last, "\n") {
		_, err := io.WriteString(a.stdout, "\n")
		return err
	}
	return nil
}

// streamPart is the JSON line written per part under --json.
type streamPart struct {
	Type  agenticflow.PartType `json:"type"`
	Value any                  `json:"value"`
}

func (a *app) streamJSON(s *stream.Session) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetEscapeHTML(false)
	for p, err := range s.All() {
		if err != nil {
			return err
		}
		if err := enc.Encode(streamPart{Type: p.Type, Value: p.Value}); err != nil {
			return err
		}
	}
	return nil
}

func partMessage(p agenticflow.Part) string {
	switch v := p.Value.(type) {
	case string:
		return terminal.Line(v)
	case map[string]any:
		if msg, ok := v["message"].(string); ok {
			return terminal.Line(msg)
		}
	}
	data, _ := json.Marshal(p.Value)
	return terminal.Line(string(data))
}

func (a *app) width(flag int) int {
	if flag > 0 {
		return flag
	}
	if v, ok := a.lookup("COLUMNS"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return goldmark.DefaultWidth
}
