package providers

import (
	"context"

	"github.com/brizzai/realtor-cli/internal/auth/models"
	"go.uber.org/fx"
)

// Provider defines the identity provider operations the auth gate relies on
type Provider interface {
	// PasswordSignIn signs in with a username and password
	PasswordSignIn(ctx context.Context, creds models.Credentials) (*models.SignInResult, error)

	// StartUserAuth begins a passwordless sign-in. A non-nil challenge means
	// the caller must confirm with RespondToChallenge.
	StartUserAuth(ctx context.Context, username string) (*models.SignInResult, *models.Challenge, error)

	// RespondToChallenge answers a pending challenge with the emailed code
	RespondToChallenge(ctx context.Context, challenge *models.Challenge, code string) (*models.SignInResult, error)

	// Refresh exchanges the refresh token for fresh identity and access tokens
	Refresh(ctx context.Context, session *models.Session) (*models.Session, error)

	// SignOut revokes the session at the provider
	SignOut(ctx context.Context, session *models.Session) error
}

// Module provides the Cognito provider as the Provider
var Module = fx.Module("providers",
	fx.Provide(
		NewCognitoProvider,
		func(p *CognitoProvider) Provider { return p },
	),
)
