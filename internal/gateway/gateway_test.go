package gateway_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fakubwoy/pricepulse/internal/apperr"
	"github.com/fakubwoy/pricepulse/internal/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGateway_Call_Success(t *testing.T) {
	t.Parallel()

	var gotRequest *http.Request
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequest = r.Clone(r.Context())
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 10, "name": "Widget"}`))
	}))
	defer server.Close()

	gw := gateway.NewGateway(newTestLogger(), server.URL, time.Second)
	gw.SetToken("t1")

	var out struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	err := gw.Call(t.Context(), http.MethodPost, "/products", map[string]string{"url": "https://x"}, &out)

	require.NoError(t, err)
	assert.Equal(t, int64(10), out.ID)
	assert.Equal(t, "Widget", out.Name)

	require.NotNil(t, gotRequest)
	assert.Equal(t, "Bearer t1", gotRequest.Header.Get("Authorization"))
	assert.Equal(t, "application/json", gotRequest.Header.Get("Content-Type"))
	assert.NotEmpty(t, gotRequest.Header.Get("X-Request-ID"))
	assert.JSONEq(t, `{"url": "https://x"}`, string(gotBody))
}

func TestGateway_Call_NoTokenNoAuthHeader(t *testing.T) {
	t.Parallel()

	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	gw := gateway.NewGateway(newTestLogger(), server.URL, time.Second)

	require.NoError(t, gw.Call(t.Context(), http.MethodGet, "/auth/login", nil, nil))
	assert.Empty(t, gotAuth)
}

func TestGateway_Call_ErrorBodyMessage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Invalid product URL"})
	}))
	defer server.Close()

	gw := gateway.NewGateway(newTestLogger(), server.URL, time.Second)

	err := gw.Call(t.Context(), http.MethodPost, "/products", map[string]string{"url": "nope"}, nil)

	var apiErr *apperr.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Invalid product URL", apiErr.Message)
}

func TestGateway_Call_GenericStatusMessage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	gw := gateway.NewGateway(newTestLogger(), server.URL, time.Second)

	err := gw.Call(t.Context(), http.MethodGet, "/products", nil, nil)

	var apiErr *apperr.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), apiErr.Message)
}

func TestGateway_Call_NetworkFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	server.Close() // nothing is listening anymore

	gw := gateway.NewGateway(newTestLogger(), server.URL, time.Second)

	err := gw.Call(t.Context(), http.MethodGet, "/products", nil, nil)

	require.Error(t, err)
	assert.True(t, apperr.IsNetwork(err))
}

func TestGateway_Call_AuthFailureHook(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Authentication required"})
	}))
	defer server.Close()

	gw := gateway.NewGateway(newTestLogger(), server.URL, time.Second)

	hookCalls := 0
	gw.OnAuthFailure(func(_ context.Context) { hookCalls++ })

	err := gw.Call(t.Context(), http.MethodGet, "/products", nil, nil)

	require.True(t, apperr.IsAuth(err))
	assert.Equal(t, 1, hookCalls)
}

func TestGateway_Call_UndecodableSuccessBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{broken"))
	}))
	defer server.Close()

	gw := gateway.NewGateway(newTestLogger(), server.URL, time.Second)

	var out map[string]any
	err := gw.Call(t.Context(), http.MethodGet, "/products", nil, &out)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
}
