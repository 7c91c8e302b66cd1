package requester

import (
	"context"
	"fmt"
	"net/http"

	"github.com/brizzai/realtor-cli/internal/config"
)

// AuthManager handles request authentication
type AuthManager interface {
	ApplyAuth(ctx context.Context, req *http.Request) error
}

// TokenSource supplies the current identity token
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// NoAuth sends requests without credentials
type NoAuth struct{}

func (NoAuth) ApplyAuth(context.Context, *http.Request) error {
	return nil
}

// StaticBearer attaches a fixed bearer token
type StaticBearer struct {
	Token string
}

func (a StaticBearer) ApplyAuth(_ context.Context, req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+a.Token)
	return nil
}

// TokenAuth attaches the signed-in user's identity token. When Required is
// false a missing token sends the request anonymously.
type TokenAuth struct {
	Source   TokenSource
	Required bool
}

func (a TokenAuth) ApplyAuth(ctx context.Context, req *http.Request) error {
	if a.Source == nil {
		if a.Required {
			return fmt.Errorf("no token source configured")
		}
		return nil
	}
	token, err := a.Source.Token(ctx)
	if err != nil {
		if a.Required {
			return err
		}
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// NewHTTPAuthManager picks the AuthManager for the configured auth type
func NewHTTPAuthManager(endpoint *config.EndpointConfig, source TokenSource, required bool) (AuthManager, error) {
	switch endpoint.AuthType {
	case config.AuthTypeNone:
		return NoAuth{}, nil
	case config.AuthTypeBearer:
		token := endpoint.AuthConfig["token"]
		if token == "" {
			return nil, fmt.Errorf("bearer auth requires auth_config.token")
		}
		return StaticBearer{Token: token}, nil
	case config.AuthTypeSession, "":
		return TokenAuth{Source: source, Required: required}, nil
	default:
		return nil, fmt.Errorf("unsupported auth type: %s", endpoint.AuthType)
	}
}
