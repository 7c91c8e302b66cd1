package auth

import (
	"github.com/brizzai/realtor-cli/internal/auth/providers"
	"github.com/brizzai/realtor-cli/internal/auth/session"
	"go.uber.org/fx"
)

// Module wires the identity provider, the session store and the gate
var Module = fx.Module("auth",
	providers.Module,
	session.Module,
	fx.Provide(NewGate),
)
