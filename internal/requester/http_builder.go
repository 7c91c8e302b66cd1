package requester

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// HTTPRequestBuilder turns a Route and its Params into an *http.Request
type HTTPRequestBuilder struct {
	baseURL string
	headers map[string]string
	authMgr AuthManager
}

// NewHTTPRequestBuilder creates a new HTTPRequestBuilder
func NewHTTPRequestBuilder(baseURL string, headers map[string]string, authMgr AuthManager) *HTTPRequestBuilder {
	if authMgr == nil {
		authMgr = NoAuth{}
	}
	return &HTTPRequestBuilder{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		headers: headers,
		authMgr: authMgr,
	}
}

// BuildRequest builds a request for route with params
func (b *HTTPRequestBuilder) BuildRequest(ctx context.Context, route Route, params Params) (*Request, error) {
	if route.Method == "" || route.Path == "" {
		return nil, fmt.Errorf("route needs a method and a path")
	}

	reqURL, err := b.buildURL(route.Path, params)
	if err != nil {
		return nil, err
	}

	body, err := encodeBody(params.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request body: %w", err)
	}

	// Merge headers
	headers := make(map[string]string, len(b.headers)+len(route.Headers)+1)
	for k, v := range b.headers {
		headers[k] = v
	}
	for k, v := range route.Headers {
		headers[k] = v
	}
	if body != nil || !route.Plain {
		headers["Content-Type"] = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, route.Method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	for key, value := range headers {
		httpReq.Header.Set(key, value)
	}

	if err := b.authMgr.ApplyAuth(ctx, httpReq); err != nil {
		return nil, fmt.Errorf("failed to apply authentication: %w", err)
	}

	return &Request{
		URL:         reqURL,
		Method:      route.Method,
		Headers:     headers,
		Route:       route,
		HttpRequest: httpReq,
	}, nil
}

func (b *HTTPRequestBuilder) buildURL(path string, params Params) (string, error) {
	for key, value := range params.Path {
		path = strings.ReplaceAll(path, "{"+key+"}", url.PathEscape(value))
	}
	if strings.Contains(path, "{") {
		return "", fmt.Errorf("unresolved path parameter in %s", path)
	}

	u, err := url.Parse(b.baseURL + path)
	if err != nil {
		return "", fmt.Errorf("invalid request URL: %w", err)
	}
	if len(params.Query) > 0 {
		u.RawQuery = params.Query.Encode()
	}
	return u.String(), nil
}

func encodeBody(body any) (io.Reader, error) {
	if body == nil {
		return nil, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return bytes.NewReader(data), nil
}
