package requester

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/brizzai/realtor-cli/internal/config"
	"github.com/brizzai/realtor-cli/internal/logger"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// HTTPRequester builds and executes requests against one backend
type HTTPRequester struct {
	client    *http.Client
	builder   *HTTPRequestBuilder
	observers []Observer
}

// HTTPRequesterParams holds the parameters for creating an HTTPRequester
type HTTPRequesterParams struct {
	Endpoint    *config.EndpointConfig
	AuthManager AuthManager
	// Client is optional; a client with the endpoint timeout is created when nil
	Client    *http.Client
	Observers []Observer
}

// NewHTTPRequester creates a new HTTPRequester
func NewHTTPRequester(params HTTPRequesterParams) *HTTPRequester {
	client := params.Client
	if client == nil {
		client = &http.Client{}
	}
	timeout := params.Endpoint.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client.Timeout = timeout

	return &HTTPRequester{
		client:    client,
		builder:   NewHTTPRequestBuilder(params.Endpoint.BaseURL, params.Endpoint.Headers, params.AuthManager),
		observers: params.Observers,
	}
}

// SetTimeout sets the timeout for the HTTP client
func (r *HTTPRequester) SetTimeout(timeout time.Duration) {
	r.client.Timeout = timeout
}

// Client returns the underlying HTTP client
func (r *HTTPRequester) Client() *http.Client {
	return r.client
}

// Execute runs the route and returns the response whatever its status
func (r *HTTPRequester) Execute(ctx context.Context, route Route, params Params) (*Response, error) {
	req, err := r.builder.BuildRequest(ctx, route, params)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := r.client.Do(req.HttpRequest)
	if err != nil {
		r.observe(req, nil, time.Since(start))
		logger.Error("failed to execute request",
			zap.String("method", req.Method),
			zap.String("url", req.URL),
			zap.Error(err),
		)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	result := &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       bodyBytes,
		Headers:    resp.Header,
	}
	duration := time.Since(start)
	r.observe(req, result, duration)
	logger.Debug("request completed",
		zap.String("method", req.Method),
		zap.String("url", req.URL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration),
	)
	return result, nil
}

// DoJSON runs the route and decodes a 2xx body into out. Non-2xx responses
// become an *APIError. A nil out or an empty body skips decoding.
func (r *HTTPRequester) DoJSON(ctx context.Context, route Route, params Params, out any) error {
	resp, err := r.Execute(ctx, route, params)
	if err != nil {
		return err
	}
	if !resp.OK() {
		apiErr := NewAPIError(resp)
		logger.Error("request returned an error status",
			zap.String("method", route.Method),
			zap.String("path", route.Path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Stream runs the route and returns the open response for incremental
// reading. The caller closes the body. Non-2xx responses become an *APIError.
func (r *HTTPRequester) Stream(ctx context.Context, route Route, params Params) (*http.Response, error) {
	req, err := r.builder.BuildRequest(ctx, route, params)
	if err != nil {
		return nil, err
	}

	// streamed replies can outlive the client timeout
	client := *r.client
	client.Timeout = 0

	start := time.Now()
	resp, err := client.Do(req.HttpRequest)
	if err != nil {
		r.observe(req, nil, time.Since(start))
		logger.Error("failed to open stream", zap.String("url", req.URL), zap.Error(err))
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		result := &Response{StatusCode: resp.StatusCode, Status: resp.Status, Body: body, Headers: resp.Header}
		r.observe(req, result, time.Since(start))
		return nil, NewAPIError(result)
	}

	r.observe(req, &Response{StatusCode: resp.StatusCode, Status: resp.Status, Headers: resp.Header}, time.Since(start))
	logger.Debug("stream opened", zap.String("url", req.URL), zap.Int("status", resp.StatusCode))
	return resp, nil
}

func (r *HTTPRequester) observe(req *Request, resp *Response, d time.Duration) {
	for _, o := range r.observers {
		o.Observe(req, resp, d)
	}
}
