// Package app assembles the dependency graph shared by the realtor commands.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/brizzai/realtor-cli/internal/admin"
	"github.com/brizzai/realtor-cli/internal/auth"
	"github.com/brizzai/realtor-cli/internal/auth/session"
	"github.com/brizzai/realtor-cli/internal/chat"
	"github.com/brizzai/realtor-cli/internal/config"
	"github.com/brizzai/realtor-cli/internal/contract"
	"github.com/brizzai/realtor-cli/internal/favorites"
	"github.com/brizzai/realtor-cli/internal/logger"
	"github.com/brizzai/realtor-cli/internal/metrics"
	"github.com/brizzai/realtor-cli/internal/preferences"
	"github.com/brizzai/realtor-cli/internal/requester"
	"github.com/brizzai/realtor-cli/internal/server"
	"github.com/brizzai/realtor-cli/internal/state"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const lifecycleTimeout = 10 * time.Second

// Module wires every client behind the shared auth gate
var Module = fx.Options(
	state.Module,
	metrics.Module,
	contract.Module,
	auth.Module,
	requester.Module,
	admin.Module,
	preferences.Module,
	favorites.Module,
	chat.Module,
	server.Module,
	fx.Provide(
		// every authenticated client takes its token from the gate
		func(g *auth.Gate) requester.TokenSource { return g },
		func(v *contract.Validator) requester.ContractChecker { return v },
	),
)

// Deps is the full set of shared services
type Deps struct {
	fx.In

	Config      *config.Config
	Gate        *auth.Gate
	State       *state.AppState
	Store       session.Store
	Admin       admin.API
	Preferences *preferences.Client
	Favorites   *favorites.Client
	Chat        *chat.Client
	Collector   *metrics.Collector
	Validator   *contract.Validator
}

// New builds every service for cfg. opts are appended to the graph, which
// lets tests replace a provider with fx.Decorate.
func New(cfg *config.Config, opts ...fx.Option) (*Deps, func(), error) {
	var deps Deps
	opts = append(opts, fx.Invoke(func(d Deps) { deps = d }))
	stop, err := start(cfg, opts...)
	if err != nil {
		return nil, nil, err
	}
	return &deps, stop, nil
}

// Populate builds only what targets need and fills them. targets must be
// pointers to provided types.
func Populate(cfg *config.Config, targets ...any) (func(), error) {
	return start(cfg, fx.Populate(targets...))
}

func start(cfg *config.Config, opts ...fx.Option) (func(), error) {
	app := fx.New(
		fx.Supply(cfg),
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx").WithOptions(zap.IncreaseLevel(zap.WarnLevel))}
		}),
		Module,
		fx.Options(opts...),
	)
	if err := app.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), lifecycleTimeout)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start: %w", err)
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), lifecycleTimeout)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			logger.Warn("Failed to stop cleanly", zap.Error(err))
		}
	}, nil
}
