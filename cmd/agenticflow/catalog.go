package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/agenticflow/agenticflow/api"
	afjson "github.com/agenticflow/agenticflow/json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// listCommand builds a paged list command over one API call.
func (a *app) listCommand(use, short string, list func(context.Context, *api.Client, api.ListOptions) (any, error)) *cobra.Command {
	var opts api.ListOptions
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			v, err := list(cmd.Context(), c, opts)
			if err != nil {
				return err
			}
			return a.emit(cmd.Context(), v)
		},
	}
	listFlags(cmd, &opts)
	return cmd
}

func (a *app) newConnectionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connections",
		Short: "Browse app connections in the workspace",
	}
	cmd.AddCommand(
		a.listCommand("list", "List app connections", func(ctx context.Context, c *api.Client, o api.ListOptions) (any, error) {
			return c.Connections.List(ctx, o)
		}),
		a.listCommand("categories", "List connection categories", func(ctx context.Context, c *api.Client, o api.ListOptions) (any, error) {
			return c.Connections.Categories(ctx, o)
		}),
	)
	return cmd
}

func (a *app) newNodeTypesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node-types",
		Short: "Browse the node types workflows are built from",
	}
	get := &cobra.Command{
		Use:   "get <name>",
		Short: "Show one node type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			v, err := c.NodeTypes.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.emit(cmd.Context(), v)
		},
	}
	cmd.AddCommand(
		a.listCommand("list", "List node types", func(ctx context.Context, c *api.Client, o api.ListOptions) (any, error) {
			return c.NodeTypes.List(ctx, o)
		}),
		get,
	)
	return cmd
}

type templateFlags struct {
	cache   string
	kind    string
	search  string
	refresh bool
	ttl     time.Duration
}

func (a *app) newTemplatesCommand() *cobra.Command {
	var tf templateFlags
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Browse workflow and agent templates",
		Long: `Browse workflow and agent templates.

Templates are cached locally. "templates list" refreshes the cache when it
is older than --ttl; "templates sync" always refreshes it.`,
	}
	cmd.PersistentFlags().StringVar(&tf.cache, "cache", "", "template cache file (default in the user cache directory)")

	sync := &cobra.Command{
		Use:   "sync",
		Short: "Download every template into the local cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.syncTemplates(cmd.Context(), tf.cachePath(a))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.stdout, "cached %d templates\n", len(c.Templates))
			return err
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List cached templates, refreshing a stale cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch tf.kind {
			case "", afjson.KindWorkflow, afjson.KindAgent:
			default:
				return fmt.Errorf("--kind must be %q or %q", afjson.KindWorkflow, afjson.KindAgent)
			}
			path := tf.cachePath(a)
			c, err := afjson.Load(path)
			if err != nil {
				return fmt.Errorf("load template cache: %w", err)
			}
			if tf.refresh || c.Stale(tf.ttl, a.now()) {
				if c, err = a.syncTemplates(cmd.Context(), path); err != nil {
					return err
				}
			}
			found := c.Find(tf.kind, tf.search)
			rows := make([]map[string]any, len(found))
			for i, t := range found {
				rows[i] = map[string]any{
					"id":          t.ID,
					"name":        t.Name,
					"kind":        t.Kind,
					"description": t.Description,
				}
			}
			return a.emit(cmd.Context(), rows)
		},
	}
	f := list.Flags()
	f.StringVar(&tf.kind, "kind", "", "only templates of this kind (workflow or agent)")
	f.StringVar(&tf.search, "search", "", "filter by name, ID or description")
	f.BoolVar(&tf.refresh, "refresh", false, "refresh the cache first")
	f.DurationVar(&tf.ttl, "ttl", afjson.DefaultTTL, "maximum cache age before refreshing")

	cmd.AddCommand(sync, list)
	return cmd
}

func (tf templateFlags) cachePath(a *app) string {
	if tf.cache != "" {
		return tf.cache
	}
	return filepath.Join(a.cacheDir(), "templates.json")
}

// syncTemplates fetches both template kinds and replaces the cache at path.
func (a *app) syncTemplates(ctx context.Context, path string) (afjson.Cache, error) {
	c, err := a.api()
	if err != nil {
		return afjson.Cache{}, err
	}
	cache := afjson.Cache{FetchedAt: a.now()}
	sources := []struct {
		kind  string
		fetch func(context.Context, api.ListOptions) (any, error)
	}{
		{afjson.KindWorkflow, c.Templates.Workflows},
		{afjson.KindAgent, c.Templates.Agents},
	}
	for _, src := range sources {
		body, err := src.fetch(ctx, api.ListOptions{})
		if err != nil {
			return afjson.Cache{}, fmt.Errorf("fetch %s templates: %w", src.kind, err)
		}
		ts, err := afjson.Templates(src.kind, body)
		if err != nil {
			return afjson.Cache{}, err
		}
		cache.Templates = append(cache.Templates, ts...)
	}
	if err := afjson.Save(path, cache); err != nil {
		return afjson.Cache{}, fmt.Errorf("save template cache: %w", err)
	}
	a.logger.Debug("template cache saved", zap.String("path", path), zap.Int("templates", len(cache.Templates)))
	return cache, nil
}
