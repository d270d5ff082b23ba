package agenticflow

import "strings"

// Environment variable names consulted by [LoadConfig].
const (
	EnvAPIKey      = "AGENTICFLOW_API_KEY"
	EnvWorkspaceID = "AGENTICFLOW_WORKSPACE_ID"
	EnvProjectID   = "AGENTICFLOW_PROJECT_ID"
	EnvBaseURL     = "AGENTICFLOW_BASE_URL"
)

// DefaultBaseURL is the public API endpoint.
const DefaultBaseURL = "https://api.agenticflow.ai/"

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Config is the environment-derived client configuration. It is read once
// when a client is constructed; later changes to the environment are not
// observed.
type Config struct {
	APIKey      string
	WorkspaceID string
	ProjectID   string
	BaseURL     string
}

// LoadConfig builds a Config from lookup. Blank values count as unset.
// A nil lookup yields the zero Config with the default base URL.
func LoadConfig(lookup LookupFunc) Config {
	get := func(key string) string {
		if lookup == nil {
			return ""
		}
		v, ok := lookup(key)
		if !ok {
			return ""
		}
		return strings.TrimSpace(v)
	}
	cfg := Config{
		APIKey:      get(EnvAPIKey),
		WorkspaceID: get(EnvWorkspaceID),
		ProjectID:   get(EnvProjectID),
		BaseURL:     get(EnvBaseURL),
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return cfg
}

// MapLookup adapts a map to a [LookupFunc]. Useful in tests.
func MapLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

// Log field keys shared by every package that logs.
const (
	LogKeyMethod    = "method"
	LogKeyURL       = "url"
	LogKeyStatus    = "status"
	LogKeyRequestID = "request_id"
	LogKeyDuration  = "duration"
	LogKeyOperation = "operation"
	LogKeyPartType  = "part_type"
)
