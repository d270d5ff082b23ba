package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/agenticflow/agenticflow"
)

// Normalize reads the full body of resp and builds the canonical response.
// Malformed JSON never fails: the decoded body is simply nil. Only a read
// failure is returned as an error.
func Normalize(resp *http.Response, method string) (*agenticflow.Response, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		var afErr *agenticflow.Error
		if errors.As(err, &afErr) {
			return nil, afErr
		}
		return nil, agenticflow.NetworkError(err)
	}
	header := lowerHeader(resp.Header)
	text := string(data)
	return &agenticflow.Response{
		StatusCode: resp.StatusCode,
		Header:     header,
		Text:       text,
		Body:       decodeBody(text, header["content-type"]),
		URL:        requestURL(resp),
		Method:     method,
		RequestID:  header["x-request-id"],
		OK:         agenticflow.IsOK(resp.StatusCode),
	}, nil
}

// Live wraps a successful response without reading its body.
func Live(resp *http.Response, method string) *agenticflow.LiveResponse {
	header := lowerHeader(resp.Header)
	return &agenticflow.LiveResponse{
		StatusCode: resp.StatusCode,
		Header:     header,
		URL:        requestURL(resp),
		Method:     method,
		RequestID:  header["x-request-id"],
		Body:       resp.Body,
	}
}

// decodeBody applies the decoding policy: when a non-JSON content type is
// declared, only text that looks like an object or array is decoded.
func decodeBody(text, contentType string) any {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if contentType != "" && !strings.Contains(strings.ToLower(contentType), "application/json") {
		if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
			return nil
		}
	}
	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return nil
	}
	return v
}

func lowerHeader(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vs := range h {
		out[strings.ToLower(k)] = strings.Join(vs, ", ")
	}
	return out
}

func requestURL(resp *http.Response) string {
	if resp.Request == nil || resp.Request.URL == nil {
		return ""
	}
	return resp.Request.URL.String()
}
