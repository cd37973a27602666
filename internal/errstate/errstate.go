// Package errstate holds the process-wide last-error slot surfaced to the
// presentation layer. Write-wins: only the most recent failure is kept.
package errstate

import "sync"

// Channel is a single mutable slot for the most recent failure message.
// It is written by every component on failure, cleared by the next
// successful operation or an explicit dismissal, and only ever read by
// the presentation layer.
type Channel struct {
	mu      sync.Mutex
	message string
	present bool
}

// NewChannel returns an empty error channel.
func NewChannel() *Channel {
	return &Channel{}
}

// Fail overwrites the slot with err's message.
func (c *Channel) Fail(err error) {
	if err == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.message = err.Error()
	c.present = true
}

// Clear empties the slot. Called after every successful operation.
func (c *Channel) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.message = ""
	c.present = false
}

// Dismiss empties the slot on explicit user request.
func (c *Channel) Dismiss() {
	c.Clear()
}

// Message returns the current failure message and whether one is present.
func (c *Channel) Message() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message, c.present
}
