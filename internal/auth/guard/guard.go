// Package guard decides whether a navigation may proceed or must be
// redirected, based on the authentication status.
package guard

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/brizzai/realtor-cli/internal/config"
	"github.com/brizzai/realtor-cli/internal/logger"
	"go.uber.org/zap"
)

// ErrLoginRequired is returned by RequireCLI when no valid session exists
var ErrLoginRequired = errors.New("not signed in: please run `realtor login`")

// Checker reports the authentication status
type Checker interface {
	IsAuthenticated(ctx context.Context) bool
}

// Routes describes the login page, the landing page and the paths that never
// need a session
type Routes struct {
	Login  string
	Home   string
	Public []string
}

// FromConfig builds Routes from the guard config section
func FromConfig(cfg config.GuardConfig) Routes {
	return Routes{
		Login:  cfg.LoginPath,
		Home:   cfg.HomePath,
		Public: cfg.PublicPrefixes,
	}
}

func (r Routes) isLogin(path string) bool {
	return strings.TrimSuffix(path, "/") == strings.TrimSuffix(r.Login, "/")
}

func (r Routes) isPublic(path string) bool {
	for _, prefix := range r.Public {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Decide returns where to redirect a navigation to path. ok is true when the
// navigation proceeds unchanged.
func Decide(routes Routes, path string, authenticated bool) (redirect string, ok bool) {
	if routes.isPublic(path) {
		return "", true
	}
	onLogin := routes.isLogin(path)
	switch {
	case !authenticated && !onLogin:
		return routes.Login, false
	case authenticated && onLogin:
		return routes.Home, false
	default:
		return "", true
	}
}

// Middleware applies Decide to every request and answers with 302 Found when a
// redirect is needed
func Middleware(routes Routes, checker Checker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if routes.isPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			authenticated := checker.IsAuthenticated(r.Context())
			if redirect, ok := Decide(routes, r.URL.Path, authenticated); !ok {
				logger.Debug("Redirecting navigation",
					zap.String("path", r.URL.Path),
					zap.Bool("authenticated", authenticated),
					zap.String("location", redirect),
				)
				http.Redirect(w, r, redirect, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCLI is the command line form of the guard
func RequireCLI(ctx context.Context, checker Checker) error {
	if !checker.IsAuthenticated(ctx) {
		return ErrLoginRequired
	}
	return nil
}
