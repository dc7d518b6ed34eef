package auth

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hyperengineering/portfolio/internal/rpc"
	"github.com/hyperengineering/portfolio/internal/types"
	"github.com/hyperengineering/portfolio/internal/validation"
)

// recordingCaller implements rpc.Caller and records every call.
type recordingCaller struct {
	calls       []rpc.Action
	lastPayload map[string]any
	result      any
	err         error
}

func (r *recordingCaller) Call(ctx context.Context, action rpc.Action, payload any, out any) error {
	r.calls = append(r.calls, action)
	raw, _ := json.Marshal(payload)
	r.lastPayload = nil
	json.Unmarshal(raw, &r.lastPayload)
	if r.err != nil {
		return r.err
	}
	if out != nil && r.result != nil {
		data, _ := json.Marshal(r.result)
		return json.Unmarshal(data, out)
	}
	return nil
}

func authResult() types.AuthResult {
	return types.AuthResult{User: types.User{Name: "Ana", Email: "ana@example.com"}, Token: "tok-123"}
}

func TestGate_ProtectedWithoutTokenNeverCallsTransport(t *testing.T) {
	caller := &recordingCaller{}
	g := NewGate(caller, &MemorySessionStore{}, nil)

	for _, action := range rpc.Actions() {
		if !action.Protected() {
			continue
		}
		err := g.Call(context.Background(), action, rpc.DeletePayload{ID: 1}, nil)
		if !errors.Is(err, ErrAuthenticationRequired) {
			t.Errorf("%s: error = %v, want ErrAuthenticationRequired", action, err)
		}
	}
	if len(caller.calls) != 0 {
		t.Errorf("transport called %d times, want 0", len(caller.calls))
	}
}

func TestGate_LoginPersistsAndInjectsToken(t *testing.T) {
	// Given: A successful login
	caller := &recordingCaller{result: authResult()}
	sessions := &MemorySessionStore{}
	g := NewGate(caller, sessions, nil)

	res, err := g.Login(context.Background(), "ana@example.com", "senha")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token != "tok-123" || !g.IsAuthenticated() {
		t.Fatalf("not authenticated after login: %+v", res)
	}
	if g.User() == nil || g.User().Name != "Ana" {
		t.Errorf("User() = %+v", g.User())
	}
	if caller.lastPayload["sessionToken"] != nil {
		t.Error("login payload must not carry a session token")
	}

	saved, _ := sessions.Load()
	if saved.Token != "tok-123" {
		t.Errorf("persisted token = %q", saved.Token)
	}

	// When: A protected action is called
	if err := g.Call(context.Background(), rpc.ActionDeleteService, rpc.DeletePayload{ID: 7}, nil); err != nil {
		t.Fatalf("Call: %v", err)
	}

	// Then: The token is merged into the payload object
	if caller.lastPayload["sessionToken"] != "tok-123" {
		t.Errorf("sessionToken = %v", caller.lastPayload["sessionToken"])
	}
	if caller.lastPayload["id"] != float64(7) {
		t.Errorf("id = %v, payload fields must survive", caller.lastPayload["id"])
	}
}

func TestGate_InjectsIntoNilPayload(t *testing.T) {
	caller := &recordingCaller{}
	sessions := &MemorySessionStore{}
	sessions.Save(types.Session{User: &types.User{Email: "ana@example.com"}, Token: "tok"})
	g := NewGate(caller, sessions, nil)

	if err := g.Call(context.Background(), rpc.ActionGetServices, nil, nil); err != nil {
		t.Fatal(err)
	}
	if caller.lastPayload["sessionToken"] != "tok" {
		t.Errorf("payload = %v", caller.lastPayload)
	}
}

func TestGate_RejectsNonObjectPayload(t *testing.T) {
	caller := &recordingCaller{}
	sessions := &MemorySessionStore{}
	sessions.Save(types.Session{Token: "tok"})
	g := NewGate(caller, sessions, nil)

	if err := g.Call(context.Background(), rpc.ActionGetServices, []int{1, 2}, nil); err == nil {
		t.Error("array payload should be rejected")
	}
	if len(caller.calls) != 0 {
		t.Error("transport called for rejected payload")
	}
}

func TestGate_LoginValidatesLocally(t *testing.T) {
	caller := &recordingCaller{result: authResult()}
	g := NewGate(caller, &MemorySessionStore{}, nil)

	_, err := g.Login(context.Background(), "not-an-email", "")

	var vErr *validation.Error
	if !errors.As(err, &vErr) {
		t.Fatalf("error = %v, want *validation.Error", err)
	}
	if len(caller.calls) != 0 {
		t.Error("transport called despite validation failure")
	}
}

func TestGate_LoginFailureKeepsLoggedOut(t *testing.T) {
	caller := &recordingCaller{err: &rpc.ApplicationError{Action: rpc.ActionLogin, Message: "Usuário não encontrado."}}
	g := NewGate(caller, &MemorySessionStore{}, nil)

	_, err := g.Login(context.Background(), "x@example.com", "p")
	if err == nil || err.Error() != "Usuário não encontrado." {
		t.Errorf("error = %v, want backend message", err)
	}
	if g.IsAuthenticated() {
		t.Error("authenticated after failed login")
	}
}

func TestGate_RegisterEstablishesSession(t *testing.T) {
	caller := &recordingCaller{result: authResult()}
	g := NewGate(caller, &MemorySessionStore{}, nil)

	if _, err := g.Register(context.Background(), "Ana", "ana@example.com", "senha"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !g.IsAuthenticated() {
		t.Error("not authenticated after register")
	}
	if len(caller.calls) != 1 || caller.calls[0] != rpc.ActionRegister {
		t.Errorf("calls = %v", caller.calls)
	}
}

func TestGate_EmptyTokenFromBackend(t *testing.T) {
	caller := &recordingCaller{result: types.AuthResult{User: types.User{Email: "ana@example.com"}}}
	g := NewGate(caller, &MemorySessionStore{}, nil)

	if _, err := g.Login(context.Background(), "ana@example.com", "p"); err == nil {
		t.Error("login without token should fail")
	}
	if g.IsAuthenticated() {
		t.Error("authenticated with empty token")
	}
}

func TestGate_LogoutClearsWithoutNetwork(t *testing.T) {
	caller := &recordingCaller{result: authResult()}
	sessions := &MemorySessionStore{}
	g := NewGate(caller, sessions, nil)
	g.Login(context.Background(), "ana@example.com", "senha")
	callsBefore := len(caller.calls)

	if err := g.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if g.IsAuthenticated() || g.User() != nil {
		t.Error("still authenticated after logout")
	}
	if len(caller.calls) != callsBefore {
		t.Error("logout touched the transport")
	}
	if saved, _ := sessions.Load(); saved.Token != "" {
		t.Error("persisted session not cleared")
	}
}

func TestGate_RestoresPersistedSession(t *testing.T) {
	sessions := &MemorySessionStore{}
	sessions.Save(types.Session{User: &types.User{Name: "Ana", Email: "ana@example.com"}, Token: "tok"})

	g := NewGate(&recordingCaller{}, sessions, nil)
	if !g.IsAuthenticated() || g.User().Email != "ana@example.com" {
		t.Error("persisted session not restored")
	}
}

func TestGate_UnprotectedPassThrough(t *testing.T) {
	caller := &recordingCaller{}
	g := NewGate(caller, &MemorySessionStore{}, nil)

	if err := g.Call(context.Background(), rpc.ActionLogin, rpc.LoginPayload{Email: "a@b.c", Password: "p"}, nil); err != nil {
		t.Fatal(err)
	}
	if len(caller.calls) != 1 {
		t.Errorf("calls = %d, want 1", len(caller.calls))
	}
}
