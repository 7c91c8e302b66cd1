package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brizzai/realtor-cli/internal/auth"
	"github.com/brizzai/realtor-cli/internal/config"
	"github.com/brizzai/realtor-cli/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGate struct {
	authenticated bool
	token         string
}

func (f *fakeGate) IsAuthenticated(context.Context) bool { return f.authenticated }

func (f *fakeGate) Username(context.Context) (string, bool) { return "jane", f.authenticated }

func (f *fakeGate) SignInWithPassword(context.Context, string, string) (bool, error) {
	f.authenticated = true
	return true, nil
}

func (f *fakeGate) StartPasswordless(context.Context, string) (bool, error) { return true, nil }

func (f *fakeGate) CompletePasswordless(context.Context, string) (bool, error) { return true, nil }

func (f *fakeGate) SignOut(context.Context) { f.authenticated = false }

func (f *fakeGate) Token(context.Context) (string, error) {
	if !f.authenticated {
		return "", auth.ErrNotAuthenticated
	}
	return f.token, nil
}

func staticDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>console</html>"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "_app"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_app", "app.js"), []byte("console.log(1)"), 0o600))
	return dir
}

func testConfig(t *testing.T, backendURL string) *config.Config {
	return &config.Config{
		EndpointConfig: config.EndpointConfig{BaseURL: backendURL},
		Server: config.ServerConfig{
			Host:      "127.0.0.1",
			Port:      0,
			App:       config.AppAdmin,
			StaticDir: staticDir(t),
		},
		Guard: config.GuardConfig{
			LoginPath:      "/admin/login",
			HomePath:       "/admin/",
			PublicPrefixes: []string{"/_app/"},
		},
	}
}

// noRedirect keeps 302 responses visible to the test
func noRedirect(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

func newTestConsole(t *testing.T, gate *fakeGate, backend http.Handler) (*httptest.Server, *metrics.Collector) {
	t.Helper()
	upstream := httptest.NewServer(backend)
	t.Cleanup(upstream.Close)

	collector := metrics.NewCollector()
	c, err := newConsole(testConfig(t, upstream.URL), gate, collector)
	require.NoError(t, err)

	ts := httptest.NewServer(c.Handler())
	t.Cleanup(ts.Close)
	ts.Client().CheckRedirect = noRedirect
	return ts, collector
}

func TestConsole_PageGuard(t *testing.T) {
	tests := []struct {
		name          string
		authenticated bool
		path          string
		wantStatus    int
		wantLocation  string
	}{
		{name: "protected page, signed out", path: "/admin/questions", wantStatus: http.StatusFound, wantLocation: "/admin/login"},
		{name: "protected page, signed in", authenticated: true, path: "/admin/questions", wantStatus: http.StatusOK},
		{name: "login page, signed out", path: "/admin/login", wantStatus: http.StatusOK},
		{name: "login page, signed in", authenticated: true, path: "/admin/login", wantStatus: http.StatusFound, wantLocation: "/admin/"},
		{name: "public asset, signed out", path: "/_app/app.js", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, _ := newTestConsole(t, &fakeGate{authenticated: tt.authenticated, token: "id-token"}, http.NotFoundHandler())

			resp, err := ts.Client().Get(ts.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantLocation, resp.Header.Get("Location"))
		})
	}
}

func TestConsole_AdminProxy(t *testing.T) {
	var gotAuth, gotPath, gotQuery string
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth, gotPath, gotQuery = r.Header.Get("Authorization"), r.URL.Path, r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	gate := &fakeGate{token: "id-token"}
	ts, collector := newTestConsole(t, gate, backend)

	resp, err := ts.Client().Get(ts.URL + "/adminapi/questions?unansweredOnly=true")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, gotPath, "backend must not be called without a session")

	gate.authenticated = true
	resp, err = ts.Client().Get(ts.URL + "/adminapi/questions?unansweredOnly=true")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Bearer id-token", gotAuth)
	assert.Equal(t, "/adminapi/questions", gotPath)
	assert.Equal(t, "unansweredOnly=true", gotQuery)

	metricsResp, err := ts.Client().Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	assert.Equal(t, http.StatusOK, metricsResp.StatusCode)
	n, err := testutil.GatherAndCount(collector.Registry(), "realtor_client_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestConsole_APIProxyPassesCookies(t *testing.T) {
	var gotAuth, gotCookie string
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if c, err := r.Cookie("session_id"); err == nil {
			gotCookie = c.Value
		}
		http.SetCookie(w, &http.Cookie{Name: "session_id", Value: "rotated", Path: "/"})
		w.WriteHeader(http.StatusNoContent)
	})
	ts, _ := newTestConsole(t, &fakeGate{}, backend)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/chat", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "abc"})

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, gotAuth)
	assert.Equal(t, "abc", gotCookie)
	require.Len(t, resp.Cookies(), 1)
	assert.Equal(t, "rotated", resp.Cookies()[0].Value)
}

func TestConsole_BackendDown(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	upstream.Close()

	c, err := newConsole(testConfig(t, upstream.URL), &fakeGate{}, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/suggestions", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to reach backend"}`, rec.Body.String())
}

func TestConsole_AuthRoutes(t *testing.T) {
	gate := &fakeGate{}
	ts, _ := newTestConsole(t, gate, http.NotFoundHandler())

	resp, err := ts.Client().Get(ts.URL + "/auth/status")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "auth routes bypass the page guard")

	resp, err = ts.Client().Post(ts.URL+"/auth/logout", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestNewConsole_InvalidBaseURL(t *testing.T) {
	_, err := newConsole(&config.Config{EndpointConfig: config.EndpointConfig{BaseURL: "not a url"}}, &fakeGate{}, nil)
	assert.Error(t, err)
}

func TestConsole_ShutsDownOnCancel(t *testing.T) {
	c, err := newConsole(testConfig(t, "http://127.0.0.1:1"), &fakeGate{}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan net.Addr, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- c.Serve(ctx, func(addr net.Addr) { ready <- addr })
	}()

	select {
	case addr := <-ready:
		resp, err := http.Get("http://" + addr.String() + "/auth/status")
		require.NoError(t, err)
		resp.Body.Close()
	case err := <-errCh:
		t.Fatalf("console failed to start: %v", err)
	}

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err, "Server should shut down gracefully")
	case <-time.After(5 * time.Second):
		t.Fatal("Server did not shut down within timeout")
	}
}

func TestConsole_RejectsCrossOrigin(t *testing.T) {
	called := false
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		_, _ = w.Write([]byte(`[]`))
	})
	ts, _ := newTestConsole(t, &fakeGate{authenticated: true, token: "id-token"}, backend)

	for _, method := range []string{http.MethodGet, http.MethodDelete, http.MethodOptions} {
		req, err := http.NewRequest(method, ts.URL+"/adminapi/questions", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "https://evil.example")

		resp, err := ts.Client().Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusForbidden, resp.StatusCode, method)
		assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"), method)
	}
	assert.False(t, called, "cross-origin calls never reach the backend")

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/adminapi/questions", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", ts.URL)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
	assert.True(t, called)
}
