// Package favorites is the client for saved properties.
package favorites

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/brizzai/realtor-cli/internal/requester"
	"go.uber.org/fx"
)

var (
	routeList   = requester.Route{Method: http.MethodGet, Path: "/api/saved-properties"}
	routeCount  = requester.Route{Method: http.MethodGet, Path: "/api/saved-properties/count"}
	routeSave   = requester.Route{Method: http.MethodPost, Path: "/api/saved-properties"}
	routeDelete = requester.Route{Method: http.MethodDelete, Path: "/api/saved-properties/{id}"}
	routeVisit  = requester.Route{Method: http.MethodPatch, Path: "/api/saved-properties/{id}/visit"}
	routeMerge  = requester.Route{Method: http.MethodPost, Path: "/api/merge-session"}
)

// Client calls the saved properties API with the auth of the requester it
// was built on
type Client struct {
	requester *requester.HTTPRequester
}

// NewClient creates a Client on top of r
func NewClient(r *requester.HTTPRequester) *Client {
	return &Client{requester: r}
}

// GetSavedProperties lists saved properties, or only visit candidates
func (c *Client) GetSavedProperties(ctx context.Context, visitOnly bool) ([]SavedProperty, error) {
	params := requester.Params{Query: url.Values{"visit_only": {strconv.FormatBool(visitOnly)}}}
	var saved []SavedProperty
	if err := c.requester.DoJSON(ctx, routeList, params, &saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// GetSavedCount counts saved properties
func (c *Client) GetSavedCount(ctx context.Context) (*FavoritesCountResponse, error) {
	var count FavoritesCountResponse
	if err := c.requester.DoJSON(ctx, routeCount, requester.Params{}, &count); err != nil {
		return nil, err
	}
	return &count, nil
}

// SaveProperty saves a property, optionally as a visit candidate
func (c *Client) SaveProperty(ctx context.Context, propertyID string, data PropertyData, isVisit bool) (*SavedProperty, error) {
	body := savePropertyRequest{PropertyID: propertyID, PropertyData: data, IsVisit: isVisit}
	var saved SavedProperty
	if err := c.requester.DoJSON(ctx, routeSave, requester.Params{Body: body}, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// DeleteProperty removes a saved property
func (c *Client) DeleteProperty(ctx context.Context, propertyID string) error {
	return c.requester.DoJSON(ctx, routeDelete, requester.Params{Path: map[string]string{"id": propertyID}}, nil)
}

// ToggleVisitFlag marks or unmarks a saved property as a visit candidate
func (c *Client) ToggleVisitFlag(ctx context.Context, propertyID string, isVisit bool) (*SavedProperty, error) {
	params := requester.Params{
		Path: map[string]string{"id": propertyID},
		Body: visitRequest{IsVisit: isVisit},
	}
	var saved SavedProperty
	if err := c.requester.DoJSON(ctx, routeVisit, params, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// MergeSession moves the properties saved in an anonymous chat session to
// the signed-in user and returns how many were merged
func (c *Client) MergeSession(ctx context.Context, sessionID string) (int, error) {
	var resp mergeSessionResponse
	if err := c.requester.DoJSON(ctx, routeMerge, requester.Params{Body: mergeSessionRequest{SessionID: sessionID}}, &resp); err != nil {
		return 0, err
	}
	return resp.MergedCount, nil
}

func newClient(f *requester.Factory) (*Client, error) {
	r, err := f.New(requester.WithTokenRequired())
	if err != nil {
		return nil, err
	}
	return NewClient(r), nil
}

// Module provides the saved properties client
var Module = fx.Module("favorites",
	fx.Provide(newClient),
)
