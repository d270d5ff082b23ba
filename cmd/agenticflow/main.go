// Command agenticflow is the command-line client for the AgenticFlow API.
//
// Usage:
//
//	agenticflow [global flags] <command> [args]
//
// The API key is taken from --api-key, then from the keychain profile saved
// by "agenticflow auth login", then from AGENTICFLOW_API_KEY. Workspace,
// project and base URL fall back to AGENTICFLOW_WORKSPACE_ID,
// AGENTICFLOW_PROJECT_ID and AGENTICFLOW_BASE_URL.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/agenticflow/agenticflow/keyring"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := newApp(os.Stdin, os.Stdout, os.Stderr, os.LookupEnv)
	a.credentials = keyring.NewStore()
	defer a.close()

	err := a.execute(ctx, os.Args[1:])
	if err != nil {
		a.reportError(err)
	}
	return err
}
