package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/brizzai/realtor-cli/internal/logger"
	"github.com/brizzai/realtor-cli/internal/utils"
	"go.uber.org/zap"
)

// Checker reports whether a valid session exists
type Checker interface {
	IsAuthenticated(ctx context.Context) bool
}

// RequireSession rejects API calls with 401 when nobody is signed in.
// Page navigations go through the guard instead, which redirects.
func RequireSession(checker Checker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !checker.IsAuthenticated(r.Context()) {
				logger.Debug("Rejected unauthenticated request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeUnauthorized(w, "Authentication required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORS answers preflight requests and allows any origin
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, OPTIONS, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, MCP-Session-ID")
		w.Header().Set("Access-Control-Expose-Headers", "MCP-Session-ID, WWW-Authenticate")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// SameOrigin rejects browser requests sent from another origin. Requests
// without an Origin header (curl, same-origin navigations) pass.
func SameOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}
		if u, err := url.Parse(origin); err != nil || u.Host != r.Host {
			logger.Warn("Rejected cross-origin request",
				zap.String("origin", origin),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			)
			utils.WriteError(w, "Cross-origin requests are not allowed", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Bearer realm="Virtual Realtor", error="unauthorized", error_description=%q`, message))
	utils.WriteError(w, message, http.StatusUnauthorized)
}
