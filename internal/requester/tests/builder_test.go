package tests

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/brizzai/realtor-cli/internal/requester"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAuthManager struct {
	applyAuthFunc func(*http.Request) error
}

func (m *mockAuthManager) ApplyAuth(_ context.Context, req *http.Request) error {
	return m.applyAuthFunc(req)
}

func TestHTTPRequestBuilder_BuildRequest(t *testing.T) {
	answer := (*string)(nil)

	tests := []struct {
		name         string
		route        requester.Route
		params       requester.Params
		headers      map[string]string
		authManager  requester.AuthManager
		wantErr      bool
		checkRequest func(t *testing.T, req *requester.Request)
	}{
		{
			name:   "GET Request With Query",
			route:  requester.Route{Method: http.MethodGet, Path: "/adminapi/questions"},
			params: requester.Params{Query: url.Values{"unansweredOnly": {"true"}}},
			authManager: &mockAuthManager{
				applyAuthFunc: func(req *http.Request) error {
					req.Header.Set("Authorization", "Bearer test-token")
					return nil
				},
			},
			checkRequest: func(t *testing.T, req *requester.Request) {
				assert.Equal(t, "http://api.example.com/adminapi/questions?unansweredOnly=true", req.HttpRequest.URL.String())
				assert.Equal(t, http.MethodGet, req.HttpRequest.Method)
				assert.Equal(t, "application/json", req.HttpRequest.Header.Get("Content-Type"))
				assert.Equal(t, "Bearer test-token", req.HttpRequest.Header.Get("Authorization"))
			},
		},
		{
			name:  "POST Request With Null Field",
			route: requester.Route{Method: http.MethodPost, Path: "/adminapi/questions"},
			params: requester.Params{Body: struct {
				Question string  `json:"question"`
				Answer   *string `json:"answer"`
			}{Question: "Is parking included?", Answer: answer}},
			checkRequest: func(t *testing.T, req *requester.Request) {
				body, err := io.ReadAll(req.HttpRequest.Body)
				require.NoError(t, err)
				assert.JSONEq(t, `{"question":"Is parking included?","answer":null}`, string(body))
				assert.Equal(t, "application/json", req.HttpRequest.Header.Get("Content-Type"))
			},
		},
		{
			name:   "Path Parameters Are Escaped",
			route:  requester.Route{Method: http.MethodDelete, Path: "/api/saved-properties/{id}"},
			params: requester.Params{Path: map[string]string{"id": "123 Main St/4"}},
			checkRequest: func(t *testing.T, req *requester.Request) {
				assert.Equal(t, "/api/saved-properties/123%20Main%20St%2F4", req.HttpRequest.URL.EscapedPath())
			},
		},
		{
			name:  "Plain GET Has No Content Type",
			route: requester.Route{Method: http.MethodGet, Path: "/api/chat", Plain: true},
			checkRequest: func(t *testing.T, req *requester.Request) {
				assert.Empty(t, req.HttpRequest.Header.Get("Content-Type"))
			},
		},
		{
			name:    "Static And Route Headers",
			route:   requester.Route{Method: http.MethodGet, Path: "/api/suggestions", Headers: map[string]string{"Accept": "application/json"}},
			headers: map[string]string{"X-Client": "realtor-cli"},
			checkRequest: func(t *testing.T, req *requester.Request) {
				assert.Equal(t, "realtor-cli", req.HttpRequest.Header.Get("X-Client"))
				assert.Equal(t, "application/json", req.HttpRequest.Header.Get("Accept"))
			},
		},
		{
			name:    "Unresolved Path Parameter",
			route:   requester.Route{Method: http.MethodGet, Path: "/adminapi/questions/{id}"},
			wantErr: true,
		},
		{
			name:    "Invalid Route",
			route:   requester.Route{},
			wantErr: true,
		},
		{
			name:  "Auth Failure",
			route: requester.Route{Method: http.MethodGet, Path: "/adminapi/visitors"},
			authManager: &mockAuthManager{
				applyAuthFunc: func(req *http.Request) error { return errors.New("not authenticated") },
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			builder := requester.NewHTTPRequestBuilder("http://api.example.com/", tt.headers, tt.authManager)

			req, err := builder.BuildRequest(context.Background(), tt.route, tt.params)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			tt.checkRequest(t, req)
		})
	}
}
