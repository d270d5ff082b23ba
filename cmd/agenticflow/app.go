package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agenticflow/agenticflow"
	"github.com/agenticflow/agenticflow/api"
	"github.com/agenticflow/agenticflow/policy"
	"github.com/agenticflow/agenticflow/rest"
	"github.com/agenticflow/agenticflow/stream"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	apiKey      string
	baseURL     string
	workspaceID string
	projectID   string
	profile     string
	timeout     time.Duration
	json        bool
	jq          string
	verbose     bool
	noColor     bool
	policy      string
	auditLog    string
}

// app holds the process environment and the lazily built API stack.
// Environment access goes through lookup so tests can inject values.
type app struct {
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
	lookup      agenticflow.LookupFunc
	credentials agenticflow.CredentialStore
	httpClient  *http.Client
	now         func() time.Time

	flags  globalFlags
	logger *zap.Logger

	client    *rest.Client
	requester agenticflow.Requester
	audit     *policy.Audit
}

func newApp(stdin io.Reader, stdout, stderr io.Writer, lookup agenticflow.LookupFunc) *app {
	return &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		lookup: lookup,
		now:    time.Now,
		logger: zap.NewNop(),
	}
}

func (a *app) execute(ctx context.Context, args []string) error {
	a.client, a.requester, a.audit = nil, nil, nil
	root := a.newRootCommand()
	root.SetArgs(args)
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	return root.ExecuteContext(ctx)
}

func (a *app) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "agenticflow",
		Short:         "Command-line client for the AgenticFlow API",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.logger = newLogger(a.stderr, a.flags.verbose)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.flags.apiKey, "api-key", "", "API key (overrides keychain and "+agenticflow.EnvAPIKey+")")
	f.StringVar(&a.flags.baseURL, "base-url", "", "API base URL")
	f.StringVar(&a.flags.workspaceID, "workspace-id", "", "workspace ID")
	f.StringVar(&a.flags.projectID, "project-id", "", "project ID")
	f.StringVar(&a.flags.profile, "profile", agenticflow.DefaultProfile, "keychain credential profile")
	f.DurationVar(&a.flags.timeout, "timeout", rest.DefaultTimeout, "request timeout")
	f.BoolVar(&a.flags.json, "json", false, "print raw JSON")
	f.StringVar(&a.flags.jq, "jq", "", "filter JSON output with a jq expression")
	f.BoolVarP(&a.flags.verbose, "verbose", "v", false, "log requests to stderr")
	f.BoolVar(&a.flags.noColor, "no-color", false, "disable colored output")
	f.StringVar(&a.flags.policy, "policy", "", "policy file gating every call")
	f.StringVar(&a.flags.auditLog, "audit-log", "", "append an audit entry per call to this file")

	root.AddCommand(
		a.newCallCommand(),
		a.newOperationsCommand(),
		a.newAgentsCommand(),
		a.newWorkflowsCommand(),
		a.newConnectionsCommand(),
		a.newNodeTypesCommand(),
		a.newTemplatesCommand(),
		a.newPackCommand(),
		a.newAuthCommand(),
		a.newPolicyCommand(),
	)
	return root
}

func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = zapcore.OmitKey
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(w), level)
	return zap.New(core)
}

// Credential sources reported by "auth status".
const (
	sourceFlag    = "flag"
	sourceKeyring = "keyring"
	sourceEnv     = "env"
)

// credential resolves the API key: flag, then keychain, then environment.
func (a *app) credential() (key, source string) {
	if a.flags.apiKey != "" {
		return a.flags.apiKey, sourceFlag
	}
	if a.credentials != nil {
		key, err := a.credentials.Get(a.flags.profile)
		switch {
		case err == nil && key != "":
			return key, sourceKeyring
		case err != nil && !errors.Is(err, agenticflow.ErrNotFound):
			a.logger.Debug("keychain lookup failed", zap.Error(err))
		}
	}
	if v, ok := a.lookup(agenticflow.EnvAPIKey); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), sourceEnv
	}
	return "", ""
}

// api returns the resource client, building the request stack on first use.
func (a *app) api() (*api.Client, error) {
	r, err := a.requesterStack()
	if err != nil {
		return nil, err
	}
	cfg := a.client.Config()
	return api.New(r,
		api.WithWorkspaceID(cfg.WorkspaceID),
		api.WithProjectID(cfg.ProjectID),
		api.WithStreamOptions(stream.WithLogger(a.logger)),
	), nil
}

// requesterStack returns the REST client, wrapped in a policy guard when
// --policy or --audit-log is set.
func (a *app) requesterStack() (agenticflow.Requester, error) {
	if a.requester != nil {
		return a.requester, nil
	}
	opts := []rest.Option{
		rest.WithLookupEnv(a.lookup),
		rest.WithLogger(a.logger),
		rest.WithUserAgent("agenticflow-cli/" + version),
		rest.WithTimeout(a.flags.timeout),
		rest.WithBaseURL(a.flags.baseURL),
		rest.WithWorkspaceID(a.flags.workspaceID),
		rest.WithProjectID(a.flags.projectID),
	}
	if key, _ := a.credential(); key != "" {
		opts = append(opts, rest.WithAPIKey(key))
	}
	if a.httpClient != nil {
		opts = append(opts, rest.WithHTTPClient(a.httpClient))
	}
	a.client = rest.New(opts...)
	a.requester = a.client

	if a.flags.policy == "" && a.flags.auditLog == "" {
		return a.requester, nil
	}
	p, err := a.loadPolicy()
	if err != nil {
		return nil, err
	}
	gopts := []policy.GuardOption{policy.WithLogger(a.logger)}
	if a.flags.auditLog != "" {
		audit, err := policy.OpenAudit(a.flags.auditLog)
		if err != nil {
			return nil, fmt.Errorf("open audit log: %w", err)
		}
		a.audit = audit
		gopts = append(gopts, policy.WithAudit(audit))
	}
	a.requester = policy.NewGuard(a.client, p, gopts...)
	return a.requester, nil
}

// loadPolicy reads --policy; no file means the permissive zero policy.
func (a *app) loadPolicy() (policy.Policy, error) {
	if a.flags.policy == "" {
		return policy.Policy{}, nil
	}
	p, err := policy.Load(a.flags.policy)
	if err != nil {
		return policy.Policy{}, fmt.Errorf("load policy: %w", err)
	}
	return p, nil
}

func (a *app) theme() agenticflow.Theme {
	if a.flags.noColor {
		return agenticflow.PlainTheme()
	}
	if _, ok := a.lookup("NO_COLOR"); ok {
		return agenticflow.PlainTheme()
	}
	return agenticflow.DefaultTheme()
}

// cacheDir is where local state such as the template cache lives.
func (a *app) cacheDir() string {
	if dir, ok := a.lookup("AGENTICFLOW_CACHE_DIR"); ok && dir != "" {
		return dir
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".agenticflow"
	}
	return filepath.Join(dir, "agenticflow")
}

func (a *app) close() {
	if a.audit != nil {
		if err := a.audit.Close(); err != nil {
			a.logger.Warn("closing audit log", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// reportError prints err to stderr, as a JSON object under --json.
func (a *app) reportError(err error) {
	if !a.flags.json {
		fmt.Fprintf(a.stderr, "agenticflow: %v\n", err)
		return
	}
	out := map[string]any{"error": err.Error()}
	var afErr *agenticflow.Error
	if errors.As(err, &afErr) {
		out["kind"] = afErr.Kind
		if afErr.StatusCode != 0 {
			out["status"] = afErr.StatusCode
		}
		if afErr.RequestID != "" {
			out["request_id"] = afErr.RequestID
		}
		if afErr.Payload != nil {
			out["payload"] = afErr.Payload
		}
		if len(afErr.Params) > 0 {
			out["params"] = afErr.Params
		}
	}
	enc := json.NewEncoder(a.stderr)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}
