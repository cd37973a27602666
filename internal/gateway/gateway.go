package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fakubwoy/pricepulse/internal/apperr"
	"github.com/google/uuid"
)

// Invoker is the request primitive every other component depends on.
// The concrete Gateway is the only component permitted to perform network
// I/O; injecting a fake Invoker is the single substitution point for tests.
type Invoker interface {
	// Call issues one JSON request. When body is non-nil it is sent as the
	// request body; when out is non-nil the success body is decoded into it.
	Call(ctx context.Context, method, path string, body, out any) error
}

// Gateway is the single point of outbound calls to the remote service.
// It attaches the bearer token, handles the JSON codec, and maps transport
// and status-code failures to apperr.APIError.
type Gateway struct {
	log     *slog.Logger
	client  *http.Client
	baseURL string

	mu            sync.RWMutex
	token         string
	onAuthFailure func(ctx context.Context)
}

// NewGateway creates a Gateway for the service at baseURL.
func NewGateway(log *slog.Logger, baseURL string, timeout time.Duration) *Gateway {
	return &Gateway{
		log:     log,
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// SetToken installs the bearer credential attached to every following call.
// Written only by the session store.
func (g *Gateway) SetToken(token string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.token = token
}

// ClearToken removes the bearer credential.
func (g *Gateway) ClearToken() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.token = ""
}

// OnAuthFailure registers the hook invoked whenever any call comes back
// with status 401, before the error is returned to the caller.
func (g *Gateway) OnAuthFailure(hook func(ctx context.Context)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onAuthFailure = hook
}

// Call implements Invoker.
func (g *Gateway) Call(ctx context.Context, method, path string, body, out any) error {
	const opn = "gateway.Call"

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request body: %w", opn, err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("%s: failed to create request %s %s: %w", opn, method, path, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	g.mu.RLock()
	token := g.token
	g.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	g.log.DebugContext(ctx, "Send request", "method", method, "path", path, "request_id", requestID)

	res, err := g.client.Do(req)
	if err != nil {
		netErr := apperr.NewNetworkError()
		g.log.WarnContext(ctx, "Request failed without a response",
			"method", method, "path", path, "request_id", requestID, "error", err)
		return netErr
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		g.log.WarnContext(ctx, "Failed to read response body",
			"method", method, "path", path, "request_id", requestID, "error", err)
		return apperr.NewNetworkError()
	}

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		apiErr := &apperr.APIError{Status: res.StatusCode, Message: errorMessage(res.StatusCode, payload)}
		g.log.WarnContext(ctx, "Request rejected by remote service",
			"method", method, "path", path, "request_id", requestID, "status", res.StatusCode)

		if res.StatusCode == http.StatusUnauthorized {
			g.mu.RLock()
			hook := g.onAuthFailure
			g.mu.RUnlock()
			if hook != nil {
				hook(ctx)
			}
		}

		return apiErr
	}

	if out != nil && len(payload) > 0 {
		if err = json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("%s: failed to decode response for %s %s: %w", opn, method, path, err)
		}
	}

	return nil
}

// errorMessage extracts the error field the remote service puts in failure
// bodies, falling back to a status-derived message.
func errorMessage(status int, payload []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(payload, &body); err == nil && body.Error != "" {
		return body.Error
	}

	return http.StatusText(status)
}
