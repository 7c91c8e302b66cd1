package requester

import (
	"net/http"

	"github.com/brizzai/realtor-cli/internal/config"
	"github.com/brizzai/realtor-cli/internal/metrics"
	"go.uber.org/fx"
)

// Factory creates requesters that share the endpoint config, the token
// source and the observers
type Factory struct {
	endpoint  *config.EndpointConfig
	source    TokenSource
	observers []Observer
}

// FactoryParams holds the dependencies of a Factory
type FactoryParams struct {
	fx.In

	Config   *config.Config
	Source   TokenSource      `optional:"true"`
	Recorder metrics.Recorder `optional:"true"`
	Checker  ContractChecker  `optional:"true"`
}

// NewFactory creates a Factory
func NewFactory(params FactoryParams) *Factory {
	var observers []Observer
	if params.Recorder != nil {
		observers = append(observers, MetricsObserver{Recorder: params.Recorder})
	}
	if params.Checker != nil && params.Config.EndpointConfig.ValidateContract {
		observers = append(observers, ContractObserver{Checker: params.Checker})
	}
	endpoint := params.Config.EndpointConfig
	return &Factory{
		endpoint:  &endpoint,
		source:    params.Source,
		observers: observers,
	}
}

type options struct {
	required bool
	client   *http.Client
	authMgr  AuthManager
}

// Option customizes a requester created by a Factory
type Option func(*options)

// WithTokenRequired makes a missing token fail the request
func WithTokenRequired() Option {
	return func(o *options) { o.required = true }
}

// WithHTTPClient uses client instead of a fresh one
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.client = client }
}

// WithAuthManager bypasses the configured auth type
func WithAuthManager(authMgr AuthManager) Option {
	return func(o *options) { o.authMgr = authMgr }
}

// New creates a requester
func (f *Factory) New(opts ...Option) (*HTTPRequester, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	authMgr := o.authMgr
	if authMgr == nil {
		var err error
		if authMgr, err = NewHTTPAuthManager(f.endpoint, f.source, o.required); err != nil {
			return nil, err
		}
	}
	return NewHTTPRequester(HTTPRequesterParams{
		Endpoint:    f.endpoint,
		AuthManager: authMgr,
		Client:      o.client,
		Observers:   f.observers,
	}), nil
}

// Endpoint returns the endpoint config shared by the requesters
func (f *Factory) Endpoint() *config.EndpointConfig {
	return f.endpoint
}

// Module provides the requester factory
var Module = fx.Module("requester",
	fx.Provide(NewFactory),
)
