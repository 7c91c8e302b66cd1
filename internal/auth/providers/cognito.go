package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/brizzai/realtor-cli/internal/auth/constants"
	"github.com/brizzai/realtor-cli/internal/auth/models"
	"github.com/brizzai/realtor-cli/internal/config"
	"github.com/brizzai/realtor-cli/internal/logger"
	"go.uber.org/zap"
)

// ErrUnsupportedChallenge is returned for challenges the client cannot answer
var ErrUnsupportedChallenge = errors.New("unsupported sign-in challenge")

// ErrNoRefreshToken is returned when a session cannot be refreshed
var ErrNoRefreshToken = errors.New("session has no refresh token")

// cognitoAPI is the subset of the Cognito user pool API the provider calls
type cognitoAPI interface {
	InitiateAuth(ctx context.Context, params *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	RespondToAuthChallenge(ctx context.Context, params *cip.RespondToAuthChallengeInput, optFns ...func(*cip.Options)) (*cip.RespondToAuthChallengeOutput, error)
	RevokeToken(ctx context.Context, params *cip.RevokeTokenInput, optFns ...func(*cip.Options)) (*cip.RevokeTokenOutput, error)
	GlobalSignOut(ctx context.Context, params *cip.GlobalSignOutInput, optFns ...func(*cip.Options)) (*cip.GlobalSignOutOutput, error)
}

// CognitoProvider signs users in against a Cognito user pool app client.
// User pool auth calls are unsigned, so no AWS credentials are needed.
type CognitoProvider struct {
	api      cognitoAPI
	clientID string
	now      func() time.Time
}

// NewCognitoProvider creates a provider for the configured user pool
func NewCognitoProvider(cfg *config.Config) (*CognitoProvider, error) {
	cognito := cfg.Cognito
	if err := cognito.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("Configuring Cognito provider",
		zap.String("user_pool_id", cognito.UserPoolID),
		zap.String("region", cognito.Region),
	)

	client := cip.New(cip.Options{
		Region:      cognito.Region,
		Credentials: aws.AnonymousCredentials{},
	})
	return newCognitoProvider(client, cognito.ClientID), nil
}

func newCognitoProvider(api cognitoAPI, clientID string) *CognitoProvider {
	return &CognitoProvider{
		api:      api,
		clientID: clientID,
		now:      time.Now,
	}
}

func (p *CognitoProvider) PasswordSignIn(ctx context.Context, creds models.Credentials) (*models.SignInResult, error) {
	out, err := p.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: types.AuthFlowType(constants.AuthFlowUserPassword),
		ClientId: aws.String(p.clientID),
		AuthParameters: map[string]string{
			"USERNAME": creds.Username,
			"PASSWORD": creds.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("password sign-in failed: %w", err)
	}
	if out.AuthenticationResult != nil {
		return p.signedIn(out.AuthenticationResult, ""), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedChallenge, out.ChallengeName)
}

func (p *CognitoProvider) StartUserAuth(ctx context.Context, username string) (*models.SignInResult, *models.Challenge, error) {
	out, err := p.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: types.AuthFlowType(constants.AuthFlowUserAuth),
		ClientId: aws.String(p.clientID),
		AuthParameters: map[string]string{
			"USERNAME":            username,
			"PREFERRED_CHALLENGE": constants.PreferredChallengeEmailOTP,
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start sign-in: %w", err)
	}
	if out.AuthenticationResult != nil {
		return p.signedIn(out.AuthenticationResult, ""), nil, nil
	}

	challenge := &models.Challenge{
		Name:     string(out.ChallengeName),
		Session:  aws.ToString(out.Session),
		Username: username,
	}

	// the pool did not honour the preferred challenge, pick email OTP explicitly
	if challenge.Name == constants.ChallengeSelectChallenge {
		resp, err := p.api.RespondToAuthChallenge(ctx, &cip.RespondToAuthChallengeInput{
			ChallengeName: types.ChallengeNameType(constants.ChallengeSelectChallenge),
			ClientId:      aws.String(p.clientID),
			Session:       aws.String(challenge.Session),
			ChallengeResponses: map[string]string{
				"USERNAME": username,
				"ANSWER":   constants.ChallengeEmailOTP,
			},
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to select email code challenge: %w", err)
		}
		challenge.Name = string(resp.ChallengeName)
		challenge.Session = aws.ToString(resp.Session)
	}

	switch challenge.Name {
	case constants.ChallengeEmailOTP:
		return &models.SignInResult{NextStep: models.SignInStepConfirmWithEmailCode}, challenge, nil
	case constants.ChallengePasswordRequired:
		return &models.SignInResult{NextStep: models.SignInStepConfirmWithPassword}, challenge, nil
	default:
		return &models.SignInResult{NextStep: models.SignInStepUnsupportedChallengeType}, nil,
			fmt.Errorf("%w: %s", ErrUnsupportedChallenge, challenge.Name)
	}
}

func (p *CognitoProvider) RespondToChallenge(ctx context.Context, challenge *models.Challenge, code string) (*models.SignInResult, error) {
	if challenge == nil {
		return nil, errors.New("no challenge to respond to")
	}

	responses := map[string]string{"USERNAME": challenge.Username}
	switch challenge.Name {
	case constants.ChallengeEmailOTP:
		responses["EMAIL_OTP_CODE"] = code
	case constants.ChallengePasswordRequired:
		responses["PASSWORD"] = code
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedChallenge, challenge.Name)
	}

	out, err := p.api.RespondToAuthChallenge(ctx, &cip.RespondToAuthChallengeInput{
		ChallengeName:      types.ChallengeNameType(challenge.Name),
		ClientId:           aws.String(p.clientID),
		Session:            aws.String(challenge.Session),
		ChallengeResponses: responses,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to confirm sign-in: %w", err)
	}
	if out.AuthenticationResult == nil {
		// another round is required; keep the new session on the challenge
		challenge.Name = string(out.ChallengeName)
		challenge.Session = aws.ToString(out.Session)
		return &models.SignInResult{NextStep: models.SignInStepConfirmWithEmailCode}, nil
	}
	return p.signedIn(out.AuthenticationResult, ""), nil
}

func (p *CognitoProvider) Refresh(ctx context.Context, session *models.Session) (*models.Session, error) {
	if session == nil || session.RefreshToken == "" {
		return nil, ErrNoRefreshToken
	}
	out, err := p.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: types.AuthFlowType(constants.AuthFlowRefreshToken),
		ClientId: aws.String(p.clientID),
		AuthParameters: map[string]string{
			"REFRESH_TOKEN": session.RefreshToken,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}
	if out.AuthenticationResult == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedChallenge, out.ChallengeName)
	}
	// Cognito does not rotate the refresh token on this flow
	return p.signedIn(out.AuthenticationResult, session.RefreshToken).Session, nil
}

func (p *CognitoProvider) SignOut(ctx context.Context, session *models.Session) error {
	if session == nil {
		return nil
	}
	if session.RefreshToken != "" {
		_, err := p.api.RevokeToken(ctx, &cip.RevokeTokenInput{
			ClientId: aws.String(p.clientID),
			Token:    aws.String(session.RefreshToken),
		})
		if err != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}
		return nil
	}
	if session.AccessToken != "" {
		_, err := p.api.GlobalSignOut(ctx, &cip.GlobalSignOutInput{
			AccessToken: aws.String(session.AccessToken),
		})
		if err != nil {
			return fmt.Errorf("failed to sign out: %w", err)
		}
	}
	return nil
}

func (p *CognitoProvider) signedIn(result *types.AuthenticationResultType, refreshToken string) *models.SignInResult {
	if rt := aws.ToString(result.RefreshToken); rt != "" {
		refreshToken = rt
	}
	return &models.SignInResult{
		IsSignedIn: true,
		NextStep:   models.SignInStepDone,
		Session: &models.Session{
			IDToken:      aws.ToString(result.IdToken),
			AccessToken:  aws.ToString(result.AccessToken),
			RefreshToken: refreshToken,
			ExpiresAt:    p.now().Add(time.Duration(result.ExpiresIn) * time.Second),
		},
	}
}
