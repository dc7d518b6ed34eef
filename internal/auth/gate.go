// Package auth holds the session state and gates protected backend actions
// behind it.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hyperengineering/portfolio/internal/rpc"
	"github.com/hyperengineering/portfolio/internal/types"
	"github.com/hyperengineering/portfolio/internal/validation"
)

// ErrAuthenticationRequired is returned for a protected action when no session token is held.
var ErrAuthenticationRequired = errors.New("Autenticação necessária. Faça login para continuar.")

// Compile-time interface check
var _ rpc.Caller = (*Gate)(nil)

// Gate owns the session and wraps a Caller so protected actions carry the token.
type Gate struct {
	mu       sync.RWMutex
	session  types.Session
	caller   rpc.Caller
	sessions SessionStore
	logger   *slog.Logger
}

// NewGate creates a gate, restoring any persisted session. An unreadable
// session file is logged and treated as logged out.
func NewGate(caller rpc.Caller, sessions SessionStore, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Gate{caller: caller, sessions: sessions, logger: logger}

	session, err := sessions.Load()
	if err != nil {
		logger.Warn("ignoring unreadable session", "error", err)
		return g
	}
	if session.Token != "" {
		g.session = session
	}
	return g
}

// IsAuthenticated reports whether a session token is held.
func (g *Gate) IsAuthenticated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session.Token != ""
}

// User returns the authenticated user, or nil.
func (g *Gate) User() *types.User {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.session.User == nil {
		return nil
	}
	u := *g.session.User
	return &u
}

// Login authenticates and persists the resulting session.
func (g *Gate) Login(ctx context.Context, email, password string) (types.AuthResult, error) {
	if err := validation.ValidateLogin(email, password); err != nil {
		return types.AuthResult{}, err
	}

	var result types.AuthResult
	err := g.caller.Call(ctx, rpc.ActionLogin, rpc.LoginPayload{Email: email, Password: password}, &result)
	if err != nil {
		return types.AuthResult{}, err
	}
	return result, g.establish(result)
}

// Register creates an account, authenticates and persists the resulting session.
func (g *Gate) Register(ctx context.Context, name, email, password string) (types.AuthResult, error) {
	if err := validation.ValidateRegistration(name, email, password); err != nil {
		return types.AuthResult{}, err
	}

	var result types.AuthResult
	err := g.caller.Call(ctx, rpc.ActionRegister, rpc.RegisterPayload{Name: name, Email: email, Password: password}, &result)
	if err != nil {
		return types.AuthResult{}, err
	}
	return result, g.establish(result)
}

func (g *Gate) establish(result types.AuthResult) error {
	if result.Token == "" {
		return fmt.Errorf("authenticate: backend returned no token")
	}

	user := result.User
	session := types.Session{User: &user, Token: result.Token}

	g.mu.Lock()
	g.session = session
	g.mu.Unlock()

	if err := g.sessions.Save(session); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	g.logger.Info("session established", "email", user.Email)
	return nil
}

// Logout clears the session locally. No backend call is made.
func (g *Gate) Logout() error {
	g.mu.Lock()
	g.session = types.Session{}
	g.mu.Unlock()

	if err := g.sessions.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Call implements rpc.Caller. Protected actions get the session token merged
// into their payload object, or fail with ErrAuthenticationRequired without
// reaching the transport.
func (g *Gate) Call(ctx context.Context, action rpc.Action, payload any, out any) error {
	if !action.Protected() {
		return g.caller.Call(ctx, action, payload, out)
	}

	g.mu.RLock()
	token := g.session.Token
	g.mu.RUnlock()

	if token == "" {
		return ErrAuthenticationRequired
	}

	withToken, err := injectToken(payload, token)
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	return g.caller.Call(ctx, action, withToken, out)
}

// injectToken merges sessionToken into the JSON object encoding of payload.
func injectToken(payload any, token string) (map[string]json.RawMessage, error) {
	fields := map[string]json.RawMessage{}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		if string(raw) != "null" {
			if err := json.Unmarshal(raw, &fields); err != nil {
				return nil, fmt.Errorf("payload must be a JSON object: %w", err)
			}
		}
	}

	encoded, err := json.Marshal(token)
	if err != nil {
		return nil, err
	}
	fields["sessionToken"] = encoded
	return fields, nil
}
