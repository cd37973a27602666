package mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// GatewayCall records one request issued through the fake gateway.
type GatewayCall struct {
	Method string
	Path   string
	Body   any
}

// FakeGateway is a hand-written gateway.Invoker for component tests.
// Handler decides the response per call; it may block on a channel to
// simulate an in-flight request, or populate out via the Respond helper.
// A nil Handler makes every call succeed with an empty response.
type FakeGateway struct {
	mu    sync.Mutex
	calls []GatewayCall

	Handler func(ctx context.Context, method, path string, body, out any) error
}

// Call implements gateway.Invoker.
func (f *FakeGateway) Call(ctx context.Context, method, path string, body, out any) error {
	f.mu.Lock()
	f.calls = append(f.calls, GatewayCall{Method: method, Path: path, Body: body})
	handler := f.Handler
	f.mu.Unlock()

	if handler == nil {
		return nil
	}

	return handler(ctx, method, path, body, out)
}

// Calls returns a snapshot of every recorded request in issue order.
func (f *FakeGateway) Calls() []GatewayCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]GatewayCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns the number of requests issued so far.
func (f *FakeGateway) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// Respond copies value into the out target of a Call, going through the
// JSON codec the way the real gateway does.
func Respond(out, value any) error {
	if out == nil {
		return nil
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode fake response: %w", err)
	}

	if err = json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to decode fake response: %w", err)
	}

	return nil
}
