// Package client wires the engine together: one gateway, one session, the
// product collection, the detail view, the alert manager and the shared
// error channel, with the session gating every other component and a 401
// on any call cascading into a full local reset.
package client

import (
	"context"
	"log/slog"
	"time"

	"github.com/fakubwoy/pricepulse/internal/alerts"
	"github.com/fakubwoy/pricepulse/internal/collection"
	"github.com/fakubwoy/pricepulse/internal/detail"
	"github.com/fakubwoy/pricepulse/internal/errstate"
	"github.com/fakubwoy/pricepulse/internal/gateway"
	"github.com/fakubwoy/pricepulse/internal/session"
	"github.com/fakubwoy/pricepulse/internal/tokenstore"
)

// Client is the assembled state-synchronization engine.
type Client struct {
	log *slog.Logger

	Errors   *errstate.Channel
	Session  *session.Store
	Products *collection.Collection
	Detail   *detail.View
	Alerts   *alerts.Manager

	gw *gateway.Gateway
}

// New assembles a client against the remote service at baseURL, persisting
// the session token in the given store.
func New(log *slog.Logger, baseURL string, timeout time.Duration, tokens tokenstore.Interface) *Client {
	errs := errstate.NewChannel()
	gw := gateway.NewGateway(log, baseURL, timeout)
	sess := session.NewStore(log, gw, gw, tokens, errs)
	view := detail.NewView(log, gw, sess, errs)
	products := collection.NewCollection(log, gw, sess, view, errs)
	manager := alerts.NewManager(log, gw, sess, view, errs)

	c := &Client{
		log:      log,
		Errors:   errs,
		Session:  sess,
		Products: products,
		Detail:   view,
		Alerts:   manager,
		gw:       gw,
	}

	// Any 401, no matter which component hit it, invalidates the whole
	// local view: session, collection, selection, history and alerts.
	gw.OnAuthFailure(c.reset)

	return c
}

// Restore picks up a persisted session token from a prior run.
func (c *Client) Restore(ctx context.Context) {
	c.Session.Restore(ctx)
}

// Logout clears the session and cascades into the dependent state: the
// collection, the detail view and the error channel. Local state is
// cleared even when the remote logout call fails.
func (c *Client) Logout(ctx context.Context) {
	c.Session.Logout(ctx)
	c.Products.Reset()
	c.Detail.Reset()
	c.Errors.Clear()
}

func (c *Client) reset(ctx context.Context) {
	c.log.InfoContext(ctx, "Auth failure, resetting local state", "op", "client.reset")
	c.Session.ForceLogout(ctx)
	c.Products.Reset()
	c.Detail.Reset()
}
