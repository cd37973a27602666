// Package session owns the authentication token and current-user identity.
// It is the only writer of the gateway's bearer credential; every other
// component gates its requests on Authenticated.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/fakubwoy/pricepulse/internal/errstate"
	"github.com/fakubwoy/pricepulse/internal/gateway"
	"github.com/fakubwoy/pricepulse/internal/models"
	"github.com/fakubwoy/pricepulse/internal/tokenstore"
)

// Status is the session lifecycle state.
type Status int

const (
	StatusAnonymous Status = iota
	StatusAuthenticating
	StatusAuthenticated
)

// CredentialSink receives the bearer token for outbound calls.
// The gateway implements it; the session store is its only writer.
type CredentialSink interface {
	SetToken(token string)
	ClearToken()
}

// Store is the session state machine:
// Anonymous -> Authenticating -> Authenticated -> Anonymous.
type Store struct {
	log    *slog.Logger
	gw     gateway.Invoker
	creds  CredentialSink
	tokens tokenstore.Interface
	errs   *errstate.Channel

	mu     sync.RWMutex
	status Status
	token  string
	user   *models.UserRef
}

// NewStore creates an anonymous session store.
func NewStore(
	log *slog.Logger,
	gw gateway.Invoker,
	creds CredentialSink,
	tokens tokenstore.Interface,
	errs *errstate.Channel,
) *Store {
	return &Store{log: log, gw: gw, creds: creds, tokens: tokens, errs: errs}
}

// Restore picks up a token persisted by a prior run and verifies it against
// the identity endpoint. Any failure, network or rejection, silently discards
// the stale credential and leaves the session anonymous; restore never
// surfaces an error to the user.
func (s *Store) Restore(ctx context.Context) {
	const opn = "session.Restore"

	token, err := s.tokens.Get(ctx)
	if err != nil {
		if !errors.Is(err, tokenstore.ErrTokenNotFound) {
			s.log.WarnContext(ctx, "Failed to read stored token", "op", opn, "error", err)
		}
		return
	}

	s.setAuthenticating(token)

	var user models.UserRef
	if err = s.gw.Call(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		s.log.InfoContext(ctx, "Stored token rejected, clearing stale credentials", "op", opn, "error", err)
		s.clearLocal(ctx)
		return
	}

	s.setAuthenticated(token, user)
	s.log.InfoContext(ctx, "Session restored", "op", opn, "user_id", user.ID)
}

// Login authenticates with email and password. On success the returned
// token and user are stored and the session becomes authenticated; on
// failure the session stays anonymous and the server's error message is
// surfaced through the error channel.
func (s *Store) Login(ctx context.Context, email, password string) error {
	return s.authenticate(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// Register creates an account and authenticates in one step.
func (s *Store) Register(ctx context.Context, email, password, name string) error {
	return s.authenticate(ctx, "/auth/register", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	})
}

func (s *Store) authenticate(ctx context.Context, path string, body map[string]string) error {
	const opn = "session.authenticate"

	s.setAuthenticating("")

	var creds models.Credentials
	if err := s.gw.Call(ctx, http.MethodPost, path, body, &creds); err != nil {
		s.clearLocal(ctx)
		s.errs.Fail(err)
		return fmt.Errorf("%s: %w", opn, err)
	}

	if err := s.tokens.Set(ctx, creds.Token); err != nil {
		// The session still works for this run; only restore suffers.
		s.log.WarnContext(ctx, "Failed to persist token", "op", opn, "error", err)
	}

	s.setAuthenticated(creds.Token, creds.User)
	s.errs.Clear()
	s.log.InfoContext(ctx, "Authenticated", "op", opn, "user_id", creds.User.ID)

	return nil
}

// Logout notifies the remote service best-effort and always clears the
// local session: the local credential must not persist past a
// user-initiated logout even when the network call fails.
func (s *Store) Logout(ctx context.Context) {
	const opn = "session.Logout"

	if s.Authenticated() {
		if err := s.gw.Call(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
			s.log.WarnContext(ctx, "Logout call failed, clearing local session anyway", "op", opn, "error", err)
		}
	}

	s.clearLocal(ctx)
	s.log.InfoContext(ctx, "Session cleared", "op", opn)
}

// ForceLogout resets the session without a network call. Used when any
// component's call is rejected with status 401.
func (s *Store) ForceLogout(ctx context.Context) {
	s.clearLocal(ctx)
	s.log.InfoContext(ctx, "Session reset after auth failure", "op", "session.ForceLogout")
}

// Authenticated reports whether the session holds both a user and a token.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status == StatusAuthenticated && s.user != nil && s.token != ""
}

// Status returns the current lifecycle state.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// User returns the current user identity when authenticated.
func (s *Store) User() (models.UserRef, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.UserRef{}, false
	}
	return *s.user, true
}

func (s *Store) setAuthenticating(token string) {
	s.mu.Lock()
	s.status = StatusAuthenticating
	s.token = token
	s.user = nil
	s.mu.Unlock()

	if token != "" {
		s.creds.SetToken(token)
	}
}

func (s *Store) setAuthenticated(token string, user models.UserRef) {
	s.mu.Lock()
	s.status = StatusAuthenticated
	s.token = token
	s.user = &user
	s.mu.Unlock()

	s.creds.SetToken(token)
}

func (s *Store) clearLocal(ctx context.Context) {
	s.mu.Lock()
	s.status = StatusAnonymous
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	s.creds.ClearToken()

	if err := s.tokens.Delete(ctx); err != nil {
		s.log.WarnContext(ctx, "Failed to delete stored token", "op", "session.clearLocal", "error", err)
	}
}
