package constants

import "time"

const (
	// AuthHeaderName is the name of the Authorization header
	AuthHeaderName = "Authorization"

	// AuthHeaderPrefix is the prefix for the Authorization header value
	AuthHeaderPrefix = "Bearer "

	// ContentTypeJSON is sent with every JSON request
	ContentTypeJSON = "application/json"

	// ChatSessionCookie carries the anonymous visitor chat session
	ChatSessionCookie = "session_id"

	// TokenExpirySkew treats tokens this close to expiry as already expired
	TokenExpirySkew = 30 * time.Second
)

// Cognito flow and challenge names
const (
	AuthFlowUserPassword = "USER_PASSWORD_AUTH"
	AuthFlowUserAuth     = "USER_AUTH"
	AuthFlowRefreshToken = "REFRESH_TOKEN_AUTH"

	ChallengeEmailOTP          = "EMAIL_OTP"
	ChallengeSelectChallenge   = "SELECT_CHALLENGE"
	ChallengePasswordRequired  = "PASSWORD"
	PreferredChallengeEmailOTP = "EMAIL_OTP"
)
