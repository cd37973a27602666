// Package tokenstore defines the durable slot the session token survives
// restarts in. The engine treats it as an opaque get/set/remove capability.
package tokenstore

import (
	"context"
	"errors"
)

// ErrTokenNotFound is returned when no token is stored in the slot.
var ErrTokenNotFound = errors.New("session token not found")

// Interface is the opaque token slot capability.
type Interface interface {
	// Get returns the stored token, or ErrTokenNotFound.
	Get(ctx context.Context) (string, error)
	// Set stores the token, replacing any previous value.
	Set(ctx context.Context, token string) error
	// Delete removes the stored token. Deleting an empty slot is not an error.
	Delete(ctx context.Context) error
}
