package server

import (
	"context"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/brizzai/realtor-cli/internal/auth"
	"github.com/brizzai/realtor-cli/internal/auth/constants"
	"github.com/brizzai/realtor-cli/internal/auth/guard"
	"github.com/brizzai/realtor-cli/internal/auth/handlers"
	"github.com/brizzai/realtor-cli/internal/auth/middleware"
	"github.com/brizzai/realtor-cli/internal/config"
	"github.com/brizzai/realtor-cli/internal/logger"
	"github.com/brizzai/realtor-cli/internal/metrics"
	"github.com/brizzai/realtor-cli/internal/utils"
	"github.com/go-chi/chi/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Authenticator is what the console needs from the auth gate
type Authenticator interface {
	handlers.Authenticator
	Token(ctx context.Context) (string, error)
}

// ConsoleParams holds the dependencies of the console server
type ConsoleParams struct {
	fx.In

	Config    *config.Config
	Gate      *auth.Gate
	Collector *metrics.Collector `optional:"true"`
}

// Console serves a front end build behind the page guard and proxies its API
// calls to the backend with the signed-in user's token.
type Console struct {
	config    *config.Config
	auth      Authenticator
	collector *metrics.Collector
	recorder  metrics.Recorder
	backend   *url.URL
}

// NewConsole creates the console server
func NewConsole(params ConsoleParams) (*Console, error) {
	return newConsole(params.Config, params.Gate, params.Collector)
}

func newConsole(cfg *config.Config, authenticator Authenticator, collector *metrics.Collector) (*Console, error) {
	backend, err := url.Parse(cfg.EndpointConfig.BaseURL)
	if err != nil || backend.Scheme == "" || backend.Host == "" {
		return nil, fmt.Errorf("invalid endpoint base url %q", cfg.EndpointConfig.BaseURL)
	}
	c := &Console{
		config:    cfg,
		auth:      authenticator,
		collector: collector,
		recorder:  metrics.Nop{},
		backend:   backend,
	}
	if collector != nil {
		c.recorder = collector
	}
	return c, nil
}

// Handler builds the console router
func (c *Console) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(LoggingMiddleware)
	r.Use(middleware.SameOrigin)

	r.Mount("/auth", handlers.NewHandler(c.auth).Routes())

	if c.collector != nil {
		r.Handle("/metrics", c.collector.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(c.auth))
		r.Use(c.record)
		proxy := c.proxy()
		r.Handle("/adminapi", proxy)
		r.Handle("/adminapi/*", proxy)
	})

	r.Group(func(r chi.Router) {
		r.Use(c.record)
		r.Handle("/api/*", c.proxy())
	})

	r.With(guard.Middleware(guard.FromConfig(c.config.Guard), c.auth)).Handle("/*", c.static())

	return r
}

// proxy forwards to the backend. Cookies pass through untouched; the gate's
// identity token replaces the Authorization header when a session exists.
func (c *Console) proxy() http.Handler {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(c.backend)
			pr.SetXForwarded()
			token, err := c.auth.Token(pr.In.Context())
			if err != nil {
				logger.Debug("Proxying without a session", zap.String("path", pr.In.URL.Path))
				return
			}
			pr.Out.Header.Set(constants.AuthHeaderName, constants.AuthHeaderPrefix+token)
		},
		// stream chat replies as they arrive
		FlushInterval: -1,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error("Backend request failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
			utils.WriteError(w, "Failed to reach backend", http.StatusBadGateway)
		},
	}
}

// record reports proxied calls by route pattern
func (c *Console) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		c.recorder.RecordRequest(route, r.Method, rw.statusCode, time.Since(start))
	})
}

// static serves the front end build. Unknown paths get index.html so the
// client-side router can take over.
func (c *Console) static() http.Handler {
	dir := c.config.Server.StaticDir
	if dir == "" {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			utils.WriteError(w, "No front end configured, set server.static_dir", http.StatusNotFound)
		})
	}

	fsys := os.DirFS(dir)
	files := http.FileServerFS(fsys)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if name != "" {
			if info, err := fs.Stat(fsys, name); err == nil && !info.IsDir() {
				files.ServeHTTP(w, r)
				return
			}
		}
		http.ServeFileFS(w, r, fsys, "index.html")
	})
}

func (c *Console) addr() string {
	return fmt.Sprintf("%s:%d", c.config.Server.Host, c.config.Server.Port)
}

// Start serves the console until ctx is cancelled
func (c *Console) Start(ctx context.Context) error {
	return c.Serve(ctx, nil)
}

// Serve is Start with a callback receiving the bound address
func (c *Console) Serve(ctx context.Context, ready func(net.Addr)) error {
	logger.Info("Starting console",
		zap.String("app", string(c.config.Server.App)),
		zap.String("backend", c.backend.String()),
		zap.String("static_dir", c.config.Server.StaticDir),
	)
	return serveHTTP(ctx, c.addr(), c.Handler(), "console", ready)
}
