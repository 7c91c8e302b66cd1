// Package preferences is the client for the property preferences API.
package preferences

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/brizzai/realtor-cli/internal/requester"
	"go.uber.org/fx"
)

// DefaultSuggestionLimit is used when no positive limit is given
const DefaultSuggestionLimit = 5

var (
	routeGetPreferences  = requester.Route{Method: http.MethodGet, Path: "/api/user/preferences"}
	routeSavePreferences = requester.Route{Method: http.MethodPut, Path: "/api/user/preferences"}
	routeSuggestions     = requester.Route{Method: http.MethodGet, Path: "/api/property-suggestions"}
)

// Client calls the preferences API. The identity token is attached when the
// user is signed in.
type Client struct {
	requester *requester.HTTPRequester
}

// NewClient creates a Client on top of r
func NewClient(r *requester.HTTPRequester) *Client {
	return &Client{requester: r}
}

// GetUserPreferences returns the saved preferences, or nil when none exist
func (c *Client) GetUserPreferences(ctx context.Context) (*UserPreferences, error) {
	var prefs UserPreferences
	err := c.requester.DoJSON(ctx, routeGetPreferences, requester.Params{}, &prefs)
	if requester.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

// SaveUserPreferences replaces the saved preferences
func (c *Client) SaveUserPreferences(ctx context.Context, prefs UserPreferences) (*PreferencesResponse, error) {
	var resp PreferencesResponse
	if err := c.requester.DoJSON(ctx, routeSavePreferences, requester.Params{Body: prefs}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetPropertySuggestions returns up to limit listings matching the preferences
func (c *Client) GetPropertySuggestions(ctx context.Context, limit int) (*PropertySuggestionsResponse, error) {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	params := requester.Params{Query: url.Values{"limit": {strconv.Itoa(limit)}}}
	var resp PropertySuggestionsResponse
	if err := c.requester.DoJSON(ctx, routeSuggestions, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func newClient(f *requester.Factory) (*Client, error) {
	r, err := f.New()
	if err != nil {
		return nil, err
	}
	return NewClient(r), nil
}

// Module provides the preferences client
var Module = fx.Module("preferences",
	fx.Provide(newClient),
)
