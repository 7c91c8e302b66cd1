package requester

import (
	"net/http"
	"net/url"
)

// Route describes one backend endpoint
type Route struct {
	Method  string            `json:"method"`
	Path    string            `json:"path"`
	Headers map[string]string `json:"headers,omitempty"`
	// Plain routes only send a Content-Type header along with a body
	Plain bool `json:"plain,omitempty"`
}

// Params holds the per-call values of a route
type Params struct {
	// Path values replace {name} placeholders in Route.Path
	Path  map[string]string
	Query url.Values
	// Body is JSON-encoded when non-nil
	Body any
}

// Request represents a fully built HTTP request
type Request struct {
	URL         string
	Method      string
	Headers     map[string]string
	Route       Route
	HttpRequest *http.Request // The actual HTTP request
}

// Response represents an HTTP response
type Response struct {
	StatusCode int
	Status     string
	Body       []byte
	Headers    http.Header
}

// OK reports whether the status is 2xx
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
