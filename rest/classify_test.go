package rest_test

import (
	"net/http"
	"testing"

	"github.com/agenticflow/agenticflow"
	"github.com/agenticflow/agenticflow/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindForStatus(t *testing.T) {
	t.Parallel()

	tests := map[int]agenticflow.ErrorKind{
		400: agenticflow.KindValidation,
		422: agenticflow.KindValidation,
		401: agenticflow.KindAuthentication,
		403: agenticflow.KindAuthorization,
		404: agenticflow.KindNotFound,
		409: agenticflow.KindConflict,
		429: agenticflow.KindRateLimit,
		500: agenticflow.KindServer,
		503: agenticflow.KindServer,
		418: agenticflow.KindAPI,
		302: agenticflow.KindAPI,
	}
	for status, kind := range tests {
		assert.Equal(t, kind, rest.KindForStatus(status), "status %d", status)
	}
}

func classify(t *testing.T, status int, contentType, body string) *agenticflow.Error {
	t.Helper()
	resp, err := rest.Normalize(rawResponse(status, contentType, body, "X-Request-Id", "rid-1"), http.MethodGet)
	require.NoError(t, err)
	err = rest.Classify(resp)
	require.Error(t, err)
	var afErr *agenticflow.Error
	require.ErrorAs(t, err, &afErr)
	return afErr
}

func TestClassify(t *testing.T) {
	t.Parallel()

	t.Run("ok response", func(t *testing.T) {
		t.Parallel()
		resp, err := rest.Normalize(rawResponse(200, "application/json", `{}`), http.MethodGet)
		require.NoError(t, err)
		assert.NoError(t, rest.Classify(resp))
	})

	t.Run("not found with detail", func(t *testing.T) {
		t.Parallel()
		err := classify(t, 404, "application/json", `{"detail":"not found"}`)
		assert.Equal(t, agenticflow.KindNotFound, err.Kind)
		assert.Equal(t, "Request failed with status 404: not found", err.Message)
		assert.Equal(t, 404, err.StatusCode)
		assert.Equal(t, map[string]any{"detail": "not found"}, err.Payload)
		assert.Equal(t, "rid-1", err.RequestID)
	})

	t.Run("rate limit with empty body", func(t *testing.T) {
		t.Parallel()
		err := classify(t, 429, "", "")
		assert.Equal(t, agenticflow.KindRateLimit, err.Kind)
		assert.Equal(t, "Request failed with status 429: Unknown API error", err.Message)
		assert.Nil(t, err.Payload)
	})

	t.Run("key priority", func(t *testing.T) {
		t.Parallel()
		err := classify(t, 400, "application/json", `{"error":"third","message":"  second  "}`)
		assert.Equal(t, "Request failed with status 400: second", err.Message)
	})

	t.Run("non-scalar detail is stringified", func(t *testing.T) {
		t.Parallel()
		err := classify(t, 422, "application/json", `{"detail":[{"loc":["body","name"],"msg":"required"}]}`)
		assert.Equal(t, agenticflow.KindValidation, err.Kind)
		assert.Equal(t, `Request failed with status 422: [{"loc":["body","name"],"msg":"required"}]`, err.Message)
	})

	t.Run("blank string detail falls through", func(t *testing.T) {
		t.Parallel()
		err := classify(t, 409, "application/json", `{"detail":"  ","description":"dup"}`)
		assert.Equal(t, "Request failed with status 409: dup", err.Message)
	})

	t.Run("scalar detail falls through", func(t *testing.T) {
		t.Parallel()
		err := classify(t, 400, "application/json", `{"detail":5,"message":"m"}`)
		assert.Equal(t, "Request failed with status 400: m", err.Message)
	})

	t.Run("bool error with no other key stringifies body", func(t *testing.T) {
		t.Parallel()
		err := classify(t, 400, "application/json", `{"error":true}`)
		assert.Equal(t, `Request failed with status 400: {"error":true}`, err.Message)
	})

	t.Run("object without known keys is stringified", func(t *testing.T) {
		t.Parallel()
		err := classify(t, 500, "application/json", `{"code":7}`)
		assert.Equal(t, `Request failed with status 500: {"code":7}`, err.Message)
	})

	t.Run("empty object falls back to text", func(t *testing.T) {
		t.Parallel()
		err := classify(t, 500, "application/json", `{}`)
		assert.Equal(t, "Request failed with status 500: {}", err.Message)
	})

	t.Run("string body", func(t *testing.T) {
		t.Parallel()
		err := classify(t, 403, "application/json", `"  forbidden  "`)
		assert.Equal(t, agenticflow.KindAuthorization, err.Kind)
		assert.Equal(t, "Request failed with status 403: forbidden", err.Message)
	})

	t.Run("plain text body", func(t *testing.T) {
		t.Parallel()
		err := classify(t, 502, "text/html", "Bad Gateway\n")
		assert.Equal(t, agenticflow.KindServer, err.Kind)
		assert.Equal(t, "Request failed with status 502: Bad Gateway", err.Message)
	})
}
