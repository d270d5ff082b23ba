package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/agenticflow/agenticflow"
	"github.com/spf13/cobra"
)

func (a *app) newAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the stored API key",
	}

	login := &cobra.Command{
		Use:   "login",
		Short: "Save an API key in the system keychain",
		Long: `Save an API key in the system keychain under --profile.

The key is taken from --api-key or read from the first line of stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.store()
			if err != nil {
				return err
			}
			key := a.flags.apiKey
			if key == "" {
				line, err := bufio.NewReader(a.stdin).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("no API key: pass --api-key or pipe it on stdin: %w", agenticflow.ErrValidation)
				}
				key = strings.TrimSpace(line)
			}
			if err := store.Set(a.flags.profile, key); err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.stdout, "saved API key for profile %q\n", a.flags.profile)
			return err
		},
	}

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.store()
			if err != nil {
				return err
			}
			if err := store.Delete(a.flags.profile); err != nil && !errors.Is(err, agenticflow.ErrNotFound) {
				return err
			}
			_, err = fmt.Fprintf(a.stdout, "removed API key for profile %q\n", a.flags.profile)
			return err
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show which API key would be used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, source := a.credential()
			if key == "" {
				return fmt.Errorf("no API key configured; run \"agenticflow auth login\" or set %s: %w",
					agenticflow.EnvAPIKey, agenticflow.ErrUnauthenticated)
			}
			if a.flags.json {
				return a.emit(cmd.Context(), map[string]any{
					"profile": a.flags.profile,
					"source":  source,
					"key":     mask(key),
				})
			}
			_, err := fmt.Fprintf(a.stdout, "API key %s (from %s, profile %q)\n", mask(key), source, a.flags.profile)
			return err
		},
	}

	cmd.AddCommand(login, logout, status)
	return cmd
}

func (a *app) store() (agenticflow.CredentialStore, error) {
	if a.credentials == nil {
		return nil, errors.New("no credential store available")
	}
	return a.credentials, nil
}

// mask keeps the last four characters of key.
func mask(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", 4) + key[len(key)-4:]
}
