package models

import "time"

// UserInfo represents the signed-in user as read from the identity token
type UserInfo struct {
	ID       string `json:"id" yaml:"id"`
	Email    string `json:"email,omitempty" yaml:"email,omitempty"`
	Username string `json:"username" yaml:"username"`
}

// Session holds the tokens issued by the identity provider
type Session struct {
	IDToken      string    `yaml:"id_token"`
	AccessToken  string    `yaml:"access_token"`
	RefreshToken string    `yaml:"refresh_token,omitempty"`
	Username     string    `yaml:"username,omitempty"`
	ExpiresAt    time.Time `yaml:"expires_at"`
}

// Credentials for the password flow
type Credentials struct {
	Username string
	Password string
}

// SignInStep names what the caller must do next to finish signing in
type SignInStep string

const (
	SignInStepDone                     SignInStep = "DONE"
	SignInStepConfirmWithEmailCode     SignInStep = "CONFIRM_SIGN_IN_WITH_EMAIL_CODE"
	SignInStepConfirmWithPassword      SignInStep = "CONFIRM_SIGN_IN_WITH_PASSWORD"
	SignInStepUnsupportedChallengeType SignInStep = "UNSUPPORTED_CHALLENGE"
)

// SignInResult is the outcome of one sign-in round trip
type SignInResult struct {
	IsSignedIn bool
	NextStep   SignInStep
	Session    *Session
}

// Challenge is the provider state carried between the two passwordless steps
type Challenge struct {
	Name     string
	Session  string
	Username string
}
