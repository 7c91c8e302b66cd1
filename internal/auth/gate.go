package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/brizzai/realtor-cli/internal/auth/constants"
	"github.com/brizzai/realtor-cli/internal/auth/models"
	"github.com/brizzai/realtor-cli/internal/auth/providers"
	"github.com/brizzai/realtor-cli/internal/auth/session"
	"github.com/brizzai/realtor-cli/internal/logger"
	"github.com/brizzai/realtor-cli/internal/metrics"
	"github.com/brizzai/realtor-cli/internal/state"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	// ErrNotAuthenticated is returned when no valid identity token is cached
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNoPendingChallenge is returned when completing a sign-in that was never started
	ErrNoPendingChallenge = errors.New("no passwordless sign-in in progress")
)

// GateParams holds the dependencies of a Gate
type GateParams struct {
	fx.In

	Provider providers.Provider
	Store    session.Store
	State    *state.AppState
	Metrics  metrics.Recorder `optional:"true"`
}

// Gate is the single auth client shared by every API client and front end.
// It owns the cached session and the pending passwordless challenge, and
// mirrors the authentication status into the view-model.
type Gate struct {
	provider providers.Provider
	store    session.Store
	state    *state.AppState
	metrics  metrics.Recorder
	now      func() time.Time

	mu      sync.Mutex
	pending *models.Challenge
}

// NewGate creates a Gate
func NewGate(params GateParams) *Gate {
	rec := params.Metrics
	if rec == nil {
		rec = metrics.Nop{}
	}
	appState := params.State
	if appState == nil {
		appState = state.NewAppState()
	}
	return &Gate{
		provider: params.Provider,
		store:    params.Store,
		state:    appState,
		metrics:  rec,
		now:      time.Now,
	}
}

// State returns the view-model the gate reports to
func (g *Gate) State() *state.AppState {
	return g.state
}

// current returns a valid session, refreshing an expired one when possible.
// Callers must hold g.mu.
func (g *Gate) current(ctx context.Context) (*models.Session, error) {
	s, err := g.store.Load()
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrNotAuthenticated
	}
	if session.Valid(s, g.now()) {
		return s, nil
	}
	if s.RefreshToken == "" {
		return nil, ErrNotAuthenticated
	}

	refreshed, err := g.provider.Refresh(ctx, s)
	if err != nil {
		g.metrics.RecordAuthEvent(metrics.AuthEventFailure)
		return nil, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}
	refreshed.Username = s.Username
	if err := g.store.Save(refreshed); err != nil {
		return nil, err
	}
	g.metrics.RecordAuthEvent(metrics.AuthEventRefresh)
	logger.Debug("Refreshed identity token", zap.String("username", s.Username))
	return refreshed, nil
}

// IsAuthenticated reports whether a valid identity token is cached. It never
// fails: any provider or store error counts as unauthenticated.
func (g *Gate) IsAuthenticated(ctx context.Context) bool {
	g.mu.Lock()
	s, err := g.current(ctx)
	g.mu.Unlock()

	if err != nil {
		if !errors.Is(err, ErrNotAuthenticated) {
			logger.Debug("Session check failed", zap.Error(err))
		}
		g.state.SetAuthenticated(false)
		g.state.SetUser(nil)
		return false
	}
	g.state.SetUser(userFor(s))
	g.state.SetAuthenticated(true)
	return true
}

// Token returns the current identity token
func (g *Gate) Token(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, err := g.current(ctx)
	if err != nil {
		return "", err
	}
	return s.IDToken, nil
}

// Headers returns the JSON content type and bearer authorization headers
func (g *Gate) Headers(ctx context.Context) (http.Header, error) {
	token, err := g.Token(ctx)
	if err != nil {
		return nil, err
	}
	h := make(http.Header)
	h.Set("Content-Type", constants.ContentTypeJSON)
	h.Set(constants.AuthHeaderName, constants.AuthHeaderPrefix+token)
	return h, nil
}

// Username returns the signed-in username
func (g *Gate) Username(ctx context.Context) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, err := g.current(ctx)
	if err != nil {
		return "", false
	}
	return s.Username, s.Username != ""
}

// SignInWithPassword runs the password flow and reports whether the user is signed in
func (g *Gate) SignInWithPassword(ctx context.Context, username, password string) (bool, error) {
	result, err := g.provider.PasswordSignIn(ctx, models.Credentials{Username: username, Password: password})
	if err != nil {
		g.metrics.RecordAuthEvent(metrics.AuthEventFailure)
		logger.Error("Error signing in", zap.String("username", username), zap.Error(err))
		return false, err
	}
	if !result.IsSignedIn {
		return false, nil
	}
	if err := g.establish(result.Session); err != nil {
		return false, err
	}
	return true, nil
}

// StartPasswordless begins the email code flow. It reports whether the caller
// must confirm with CompletePasswordless.
func (g *Gate) StartPasswordless(ctx context.Context, email string) (bool, error) {
	result, challenge, err := g.provider.StartUserAuth(ctx, email)
	if err != nil {
		g.metrics.RecordAuthEvent(metrics.AuthEventFailure)
		logger.Error("Error starting sign in", zap.String("username", email), zap.Error(err))
		return false, err
	}
	logger.Debug("Sign in started", zap.String("next_step", string(result.NextStep)))

	if result.IsSignedIn {
		if err := g.establish(result.Session); err != nil {
			return false, err
		}
		return false, nil
	}

	// only an emailed code can be confirmed here
	if result.NextStep != models.SignInStepConfirmWithEmailCode || challenge == nil {
		g.mu.Lock()
		g.pending = nil
		g.mu.Unlock()
		g.metrics.RecordAuthEvent(metrics.AuthEventFailure)
		return false, fmt.Errorf("%w: %s", providers.ErrUnsupportedChallenge, result.NextStep)
	}

	g.mu.Lock()
	g.pending = challenge
	g.mu.Unlock()
	g.metrics.RecordAuthEvent(metrics.AuthEventChallenge)

	return true, nil
}

// CompletePasswordless confirms the emailed code and reports whether the user is signed in
func (g *Gate) CompletePasswordless(ctx context.Context, code string) (bool, error) {
	g.mu.Lock()
	challenge := g.pending
	g.mu.Unlock()
	if challenge == nil {
		return false, ErrNoPendingChallenge
	}

	result, err := g.provider.RespondToChallenge(ctx, challenge, code)
	if err != nil {
		g.metrics.RecordAuthEvent(metrics.AuthEventFailure)
		logger.Error("Error confirming sign in", zap.Error(err))
		return false, err
	}
	if !result.IsSignedIn {
		return false, nil
	}

	g.mu.Lock()
	g.pending = nil
	g.mu.Unlock()

	if err := g.establish(result.Session); err != nil {
		return false, err
	}
	return true, nil
}

// SignOut signs out at the provider on a best-effort basis. Local state is
// always cleared, whatever the provider answers.
func (g *Gate) SignOut(ctx context.Context) {
	g.mu.Lock()
	defer func() {
		g.pending = nil
		g.mu.Unlock()
		g.state.SetAuthenticated(false)
		g.state.SetUser(nil)
		g.metrics.RecordAuthEvent(metrics.AuthEventSignOut)
	}()

	s, err := g.store.Load()
	if err != nil {
		logger.Warn("Error reading session during sign out", zap.Error(err))
	}
	if s != nil {
		if err := g.provider.SignOut(ctx, s); err != nil {
			logger.Warn("Error signing out", zap.Error(err))
		}
	}
	if err := g.store.Clear(); err != nil {
		logger.Warn("Error clearing session", zap.Error(err))
	}
}

func (g *Gate) establish(s *models.Session) error {
	if s == nil {
		return errors.New("provider returned no session")
	}
	user := userFor(s)
	s.Username = user.Username

	g.mu.Lock()
	err := g.store.Save(s)
	g.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	g.metrics.RecordAuthEvent(metrics.AuthEventSignIn)
	logger.Info("Signed in", zap.String("username", user.Username))
	g.state.SetUser(user)
	g.state.SetAuthenticated(true)
	return nil
}

func userFor(s *models.Session) *models.UserInfo {
	user, err := session.UserFromToken(s.IDToken)
	if err != nil {
		return &models.UserInfo{Username: s.Username}
	}
	if user.Username == "" {
		user.Username = s.Username
	}
	return user
}
