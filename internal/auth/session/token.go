package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/brizzai/realtor-cli/internal/auth/constants"
	"github.com/brizzai/realtor-cli/internal/auth/models"
	"github.com/golang-jwt/jwt/v5"
)

// ErrNoExpiry is returned for identity tokens without an exp claim
var ErrNoExpiry = errors.New("token has no expiry")

// Claims are the identity token claims the client reads. Signatures are
// verified by the backend, not here.
type Claims struct {
	jwt.RegisteredClaims
	Email    string `json:"email,omitempty"`
	Username string `json:"cognito:username,omitempty"`
}

// ParseClaims decodes an identity token without verifying its signature
func ParseClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse identity token: %w", err)
	}
	return claims, nil
}

// ExpiresAt returns the exp claim of an identity token
func ExpiresAt(token string) (time.Time, error) {
	claims, err := ParseClaims(token)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}

// UserFromToken extracts the user carried in an identity token
func UserFromToken(token string) (*models.UserInfo, error) {
	claims, err := ParseClaims(token)
	if err != nil {
		return nil, err
	}
	username := claims.Username
	if username == "" {
		username = claims.Email
	}
	return &models.UserInfo{
		ID:       claims.Subject,
		Email:    claims.Email,
		Username: username,
	}, nil
}

// Valid reports whether the session holds an identity token that is not
// expired at now, allowing for clock skew.
func Valid(s *models.Session, now time.Time) bool {
	if s == nil || s.IDToken == "" {
		return false
	}
	expiry := s.ExpiresAt
	if expiry.IsZero() {
		exp, err := ExpiresAt(s.IDToken)
		if err != nil {
			return false
		}
		expiry = exp
	}
	return now.Add(constants.TokenExpirySkew).Before(expiry)
}
