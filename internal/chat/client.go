// Package chat is the client for the visitor chat API. The conversation is
// keyed by a session cookie rather than a bearer token.
package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"

	"github.com/brizzai/realtor-cli/internal/auth/constants"
	"github.com/brizzai/realtor-cli/internal/auth/session"
	"github.com/brizzai/realtor-cli/internal/logger"
	"github.com/brizzai/realtor-cli/internal/requester"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

var (
	routeSend        = requester.Route{Method: http.MethodPost, Path: "/api/chat"}
	routeHistory     = requester.Route{Method: http.MethodGet, Path: "/api/chat", Plain: true}
	routeClear       = requester.Route{Method: http.MethodDelete, Path: "/api/chat", Plain: true}
	routeSuggestions = requester.Route{Method: http.MethodGet, Path: "/api/suggestions"}
)

// Client talks to the chat API and keeps the session cookie in sync with the
// session store
type Client struct {
	requester *requester.HTTPRequester
	jar       http.CookieJar
	baseURL   *url.URL
	sessions  session.ChatSessions

	mu sync.Mutex
}

// NewClient creates a Client for baseURL. The cookie jar is seeded with the
// stored chat session id.
func NewClient(f *requester.Factory, sessions session.ChatSessions) (*Client, error) {
	baseURL, err := url.Parse(f.Endpoint().BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	id, err := sessions.ChatSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to load chat session: %w", err)
	}
	jar.SetCookies(baseURL, []*http.Cookie{{Name: constants.ChatSessionCookie, Value: id, Path: "/"}})

	r, err := f.New(
		requester.WithAuthManager(requester.NoAuth{}),
		requester.WithHTTPClient(&http.Client{Jar: jar}),
	)
	if err != nil {
		return nil, err
	}

	return &Client{
		requester: r,
		jar:       jar,
		baseURL:   baseURL,
		sessions:  sessions,
	}, nil
}

// SessionID returns the current chat session id
func (c *Client) SessionID() string {
	for _, cookie := range c.jar.Cookies(c.baseURL) {
		if cookie.Name == constants.ChatSessionCookie {
			return cookie.Value
		}
	}
	return ""
}

// persistSession stores the session id the backend last set
func (c *Client) persistSession() {
	id := c.SessionID()
	if id == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.sessions.SetChatSessionID(id); err != nil {
		logger.Warn("Failed to persist chat session", zap.Error(err))
	}
}

// SendMessage sends prompt and streams the reply. onChunk, when set, is called
// for every chunk as it arrives. The full reply is returned, including the
// text received before a stream error.
func (c *Client) SendMessage(ctx context.Context, prompt string, onChunk func(string)) (string, error) {
	resp, err := c.requester.Stream(ctx, routeSend, requester.Params{Body: sendMessageRequest{Prompt: prompt}})
	if err != nil {
		return "", failed("send message", err)
	}
	defer resp.Body.Close()
	c.persistSession()

	var reply strings.Builder
	err = readEvents(resp.Body, func(ev event) error {
		if ev.name == "error" {
			return streamError(ev.data)
		}
		chunk := chunkText(ev.data)
		if chunk == "" {
			return nil
		}
		reply.WriteString(chunk)
		if onChunk != nil {
			onChunk(chunk)
		}
		return nil
	})
	if err != nil {
		logger.Error("Chat stream failed", zap.Error(err))
		return reply.String(), err
	}
	return reply.String(), nil
}

// GetChatHistory returns the conversation of the current session
func (c *Client) GetChatHistory(ctx context.Context) (*ChatResponse, error) {
	var history ChatResponse
	if err := c.requester.DoJSON(ctx, routeHistory, requester.Params{}, &history); err != nil {
		return nil, failed("load chat history", err)
	}
	c.persistSession()
	return &history, nil
}

// ClearChat clears the conversation. The backend starts a new session.
func (c *Client) ClearChat(ctx context.Context) error {
	if err := c.requester.DoJSON(ctx, routeClear, requester.Params{}, nil); err != nil {
		return failed("clear chat", err)
	}
	c.persistSession()
	return nil
}

// GetSuggestions returns suggested prompts
func (c *Client) GetSuggestions(ctx context.Context) ([]string, error) {
	var resp suggestionsResponse
	if err := c.requester.DoJSON(ctx, routeSuggestions, requester.Params{}, &resp); err != nil {
		return nil, failed("load suggestions", err)
	}
	return resp.Suggestions, nil
}

// failed prefixes an API error with the action, keeping the status text and
// any message the backend sent
func failed(action string, err error) error {
	var apiErr *requester.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("Failed to %s: %w", action, err)
	}
	statusText := strings.TrimSpace(strings.TrimPrefix(apiErr.Status, fmt.Sprint(apiErr.StatusCode)))
	if statusText == "" {
		statusText = http.StatusText(apiErr.StatusCode)
	}
	msg := fmt.Sprintf("Failed to %s: %s", action, statusText)
	if apiErr.Message != "" && apiErr.Message != statusText {
		msg += " (" + apiErr.Message + ")"
	}
	return &requester.APIError{
		StatusCode: apiErr.StatusCode,
		Status:     apiErr.Status,
		Message:    msg,
		Body:       apiErr.Body,
	}
}

// Module provides the chat client
var Module = fx.Module("chat",
	fx.Provide(NewClient),
)
