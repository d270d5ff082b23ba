package agenticflow

// Response is the canonical form of a completed HTTP exchange. It is built
// once from the raw response and never mutated.
type Response struct {
	StatusCode int
	Header     map[string]string // lower-cased names
	Text       string
	Body       any // decoded JSON, or nil when absent or malformed
	URL        string
	Method     string
	RequestID  string
	OK         bool
}

// IsOK reports whether status is in [200, 300).
func IsOK(status int) bool {
	return status >= 200 && status < 300
}
