// Package app wires configuration, logging, the store and the remote
// services into one App. It is the only place a Store is constructed for the
// CLI.
package app

import (
	"fmt"
	"io"
	"log/slog"

	store "github.com/goliatone/go-store"
	"github.com/goliatone/go-store/internal/config"
	"github.com/goliatone/go-store/internal/logging"
	"github.com/goliatone/go-store/pkg/activity"
	"github.com/goliatone/go-store/pkg/features/address"
	"github.com/goliatone/go-store/pkg/features/product"
	"github.com/goliatone/go-store/pkg/fetchsync"
	addresssvc "github.com/goliatone/go-store/pkg/services/address"
	productsvc "github.com/goliatone/go-store/pkg/services/product"
	"github.com/goliatone/go-store/pkg/transport"
)

// App holds the long-lived collaborators.
type App struct {
	Config    config.Config
	Logger    *slog.Logger
	Store     *store.Store
	Client    *transport.Client
	Products  *productsvc.Service
	Provinces *addresssvc.Service
}

// Option customises New.
type Option func(*settings)

type settings struct {
	output io.Writer
	hooks  activity.Hooks
}

// WithLogOutput redirects log output, e.g. to a buffer in tests.
func WithLogOutput(w io.Writer) Option {
	return func(s *settings) {
		s.output = w
	}
}

// WithActivityHooks forwards store and fetch activity to hooks.
func WithActivityHooks(hooks activity.Hooks) Option {
	return func(s *settings) {
		s.hooks = append(s.hooks, hooks...)
	}
}

// Root returns the root reducer with every namespace of the application.
func Root() *store.RootReducer {
	return store.MustCombine(product.Reducer(), address.Reducer())
}

// New builds the App described by cfg.
func New(cfg config.Config, opts ...Option) (*App, error) {
	var s settings
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}

	logger := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: logging.ParseFormat(cfg.Log.Format),
		Output: s.output,
	})

	evaluator, err := store.NewEvaluator(cfg.Selector.Engine, store.NewProgramCache(), store.Builtins())
	if err != nil {
		return nil, fmt.Errorf("app: selector engine: %w", err)
	}

	productsUnwrap, err := transport.JSONPath(cfg.Products.Unwrap)
	if err != nil {
		return nil, fmt.Errorf("app: products: %w", err)
	}
	provincesUnwrap, err := transport.JSONPath(cfg.Provinces.Unwrap)
	if err != nil {
		return nil, fmt.Errorf("app: provinces: %w", err)
	}

	st := store.New(Root(),
		store.WithLogger(logging.Component(logger, "store")),
		store.WithEvaluator(evaluator),
		store.WithActivityHooks(s.hooks),
		store.WithActivityConfig(activity.Config{Enabled: true, Channel: "storectl", ActorID: cfg.Actor}),
	)
	client := transport.NewClient(cfg.BaseURL, cfg.Timeout, logging.Component(logger, "transport"))

	a := &App{
		Config:    cfg,
		Logger:    logger,
		Store:     st,
		Client:    client,
		Products:  productsvc.NewService(client, cfg.Products.Path, productsUnwrap),
		Provinces: addresssvc.NewService(client, cfg.Provinces.Path, provincesUnwrap),
	}
	if cfg.Debug {
		if !debugEnabled() {
			logger.Warn("app: debug handle requested but binary was built without -tags debug")
		}
		publishDebug(a)
	}
	return a, nil
}

// FetchOptions returns the fetch-sync options implied by the configuration.
func (a *App) FetchOptions() []fetchsync.Option {
	opts := []fetchsync.Option{fetchsync.WithLogger(logging.Component(a.Logger, "fetchsync"))}
	if a.Config.SuppressStale {
		opts = append(opts, fetchsync.WithStaleSuppression())
	}
	return opts
}
