package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/brizzai/realtor-cli/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	authenticated bool
	username      string
	signedIn      bool
	confirm       bool
	err           error
	signOuts      int
	lastPassword  string
	lastCode      string
}

func (f *fakeAuth) IsAuthenticated(context.Context) bool { return f.authenticated }

func (f *fakeAuth) Username(context.Context) (string, bool) {
	return f.username, f.username != ""
}

func (f *fakeAuth) SignInWithPassword(_ context.Context, _, password string) (bool, error) {
	f.lastPassword = password
	return f.signedIn, f.err
}

func (f *fakeAuth) StartPasswordless(context.Context, string) (bool, error) {
	return f.confirm, f.err
}

func (f *fakeAuth) CompletePasswordless(_ context.Context, code string) (bool, error) {
	f.lastCode = code
	return f.signedIn, f.err
}

func (f *fakeAuth) SignOut(context.Context) { f.signOuts++ }

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestHandler_Status(t *testing.T) {
	f := &fakeAuth{}
	routes := NewHandler(f).Routes()

	rec := serve(routes, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"isAuthenticated":false}`, rec.Body.String())

	f.authenticated, f.username = true, "jane"
	rec = serve(routes, http.MethodGet, "/status", "")
	assert.JSONEq(t, `{"isAuthenticated":true,"username":"jane"}`, rec.Body.String())
}

func TestHandler_Password(t *testing.T) {
	tests := []struct {
		name     string
		auth     *fakeAuth
		body     string
		wantCode int
		wantBody string
	}{
		{
			name:     "signed in",
			auth:     &fakeAuth{signedIn: true},
			body:     `{"username":"jane","password":"secret"}`,
			wantCode: http.StatusOK,
			wantBody: `{"isSignedIn":true}`,
		},
		{
			name:     "provider error",
			auth:     &fakeAuth{err: errors.New("Incorrect username or password.")},
			body:     `{"username":"jane","password":"wrong"}`,
			wantCode: http.StatusUnauthorized,
			wantBody: `{"error":"Incorrect username or password."}`,
		},
		{
			name:     "missing password",
			auth:     &fakeAuth{},
			body:     `{"username":"jane"}`,
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":"username and password are required"}`,
		},
		{
			name:     "invalid body",
			auth:     &fakeAuth{},
			body:     `not json`,
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":"Invalid request body"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(NewHandler(tt.auth).Routes(), http.MethodPost, "/password", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestHandler_Passwordless(t *testing.T) {
	f := &fakeAuth{confirm: true}
	routes := NewHandler(f).Routes()

	rec := serve(routes, http.MethodPost, "/passwordless/start", `{"email":"jane@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"confirmationRequired":true}`, rec.Body.String())

	f.signedIn = true
	rec = serve(routes, http.MethodPost, "/passwordless/complete", `{"code":" 123456 "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"isSignedIn":true}`, rec.Body.String())
	assert.Equal(t, "123456", f.lastCode)
}

func TestHandler_PasswordlessCompleteWithoutStart(t *testing.T) {
	f := &fakeAuth{err: auth.ErrNoPendingChallenge}
	rec := serve(NewHandler(f).Routes(), http.MethodPost, "/passwordless/complete", `{"code":"1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandler_Logout(t *testing.T) {
	f := &fakeAuth{authenticated: true}
	rec := serve(NewHandler(f).Routes(), http.MethodPost, "/logout", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, f.signOuts)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	rec := serve(NewHandler(&fakeAuth{}).Routes(), http.MethodGet, "/logout", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
