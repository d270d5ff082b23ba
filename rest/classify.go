package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/agenticflow/agenticflow"
)

const unknownDetail = "Unknown API error"

// detailKeys are tried in order when extracting a message from an object body.
var detailKeys = []string{"detail", "message", "error", "errors", "description"}

// Classify returns nil for successful responses and a structured
// *agenticflow.Error for everything else.
func Classify(resp *agenticflow.Response) error {
	if resp.OK {
		return nil
	}
	return &agenticflow.Error{
		Kind:       KindForStatus(resp.StatusCode),
		Message:    fmt.Sprintf("Request failed with status %d: %s", resp.StatusCode, Detail(resp)),
		StatusCode: resp.StatusCode,
		Payload:    resp.Body,
		RequestID:  resp.RequestID,
	}
}

// KindForStatus maps a non-2xx status to its error kind.
func KindForStatus(status int) agenticflow.ErrorKind {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return agenticflow.KindValidation
	case status == http.StatusUnauthorized:
		return agenticflow.KindAuthentication
	case status == http.StatusForbidden:
		return agenticflow.KindAuthorization
	case status == http.StatusNotFound:
		return agenticflow.KindNotFound
	case status == http.StatusConflict:
		return agenticflow.KindConflict
	case status == http.StatusTooManyRequests:
		return agenticflow.KindRateLimit
	case status >= 500:
		return agenticflow.KindServer
	default:
		return agenticflow.KindAPI
	}
}

// Detail extracts a human-readable message from a failed response.
func Detail(resp *agenticflow.Response) string {
	switch body := resp.Body.(type) {
	case string:
		if s := strings.TrimSpace(body); s != "" {
			return s
		}
	case map[string]any:
		for _, key := range detailKeys {
			if s, ok := detailValue(body[key]); ok {
				return s
			}
		}
		if len(body) > 0 {
			if s, ok := marshalDetail(body); ok {
				return s
			}
		}
	case nil:
	default:
		if s, ok := marshalDetail(body); ok {
			return s
		}
	}
	if s := strings.TrimSpace(resp.Text); s != "" {
		return s
	}
	return unknownDetail
}

func detailValue(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		s := strings.TrimSpace(x)
		return s, s != ""
	case bool, float64, json.Number:
		// Bare scalars say nothing useful; try the next key.
		return "", false
	default:
		return marshalDetail(x)
	}
}

func marshalDetail(v any) (string, bool) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", false
	}
	return string(data), true
}
