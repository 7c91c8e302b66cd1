// Package handlers serves the console's sign-in API on top of the auth gate.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/brizzai/realtor-cli/internal/auth"
	"github.com/brizzai/realtor-cli/internal/logger"
	"github.com/brizzai/realtor-cli/internal/utils"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Authenticator is the part of the auth gate the sign-in API drives
type Authenticator interface {
	IsAuthenticated(ctx context.Context) bool
	Username(ctx context.Context) (string, bool)
	SignInWithPassword(ctx context.Context, username, password string) (bool, error)
	StartPasswordless(ctx context.Context, email string) (bool, error)
	CompletePasswordless(ctx context.Context, code string) (bool, error)
	SignOut(ctx context.Context)
}

// Handler handles the /auth endpoints
type Handler struct {
	auth Authenticator
}

// NewHandler creates a new Handler instance
func NewHandler(auth Authenticator) *Handler {
	return &Handler{auth: auth}
}

// Routes mounts the sign-in endpoints on a new router
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/status", h.HandleStatus)
	r.Post("/password", h.HandlePassword)
	r.Post("/passwordless/start", h.HandlePasswordlessStart)
	r.Post("/passwordless/complete", h.HandlePasswordlessComplete)
	r.Post("/logout", h.HandleLogout)
	return r
}

type statusResponse struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	Username        string `json:"username,omitempty"`
}

type signedInResponse struct {
	IsSignedIn bool `json:"isSignedIn"`
}

type confirmationResponse struct {
	ConfirmationRequired bool `json:"confirmationRequired"`
}

// HandleStatus handles GET /auth/status
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{IsAuthenticated: h.auth.IsAuthenticated(r.Context())}
	if resp.IsAuthenticated {
		resp.Username, _ = h.auth.Username(r.Context())
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

// HandlePassword handles POST /auth/password
func (h *Handler) HandlePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		utils.WriteError(w, "username and password are required", http.StatusBadRequest)
		return
	}

	ok, err := h.auth.SignInWithPassword(r.Context(), req.Username, req.Password)
	if err != nil {
		utils.WriteError(w, err.Error(), http.StatusUnauthorized)
		return
	}
	utils.WriteJSON(w, http.StatusOK, signedInResponse{IsSignedIn: ok})
}

// HandlePasswordlessStart handles POST /auth/passwordless/start
func (h *Handler) HandlePasswordlessStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		utils.WriteError(w, "email is required", http.StatusBadRequest)
		return
	}

	confirm, err := h.auth.StartPasswordless(r.Context(), req.Email)
	if err != nil {
		utils.WriteError(w, err.Error(), http.StatusUnauthorized)
		return
	}
	utils.WriteJSON(w, http.StatusOK, confirmationResponse{ConfirmationRequired: confirm})
}

// HandlePasswordlessComplete handles POST /auth/passwordless/complete
func (h *Handler) HandlePasswordlessComplete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		utils.WriteError(w, "code is required", http.StatusBadRequest)
		return
	}

	ok, err := h.auth.CompletePasswordless(r.Context(), strings.TrimSpace(req.Code))
	if err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, auth.ErrNoPendingChallenge) {
			status = http.StatusConflict
		}
		utils.WriteError(w, err.Error(), status)
		return
	}
	utils.WriteJSON(w, http.StatusOK, signedInResponse{IsSignedIn: ok})
}

// HandleLogout handles POST /auth/logout
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.auth.SignOut(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		logger.Debug("Invalid request body", zap.String("path", r.URL.Path), zap.Error(err))
		utils.WriteError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}
