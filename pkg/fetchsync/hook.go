// Package fetchsync couples a remote fetch to a store namespace: each
// activation performs one fetch, dispatches the payload as an action and
// exposes {loading, data} where data is read live from the store.
package fetchsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	store "github.com/goliatone/go-store"
	"github.com/goliatone/go-store/pkg/activity"
)

var (
	// ErrFetchFailed wraps every error returned by a fetch.
	ErrFetchFailed = errors.New("fetchsync: fetch failed")
	// ErrStale marks an activation whose result was dropped because it was
	// closed or superseded. Only reported with WithStaleSuppression.
	ErrStale = errors.New("fetchsync: stale activation")
)

// FetchFunc performs the remote call.
type FetchFunc[P any] func(ctx context.Context) (P, error)

// ActionFunc turns a fetched payload into the action to dispatch.
type ActionFunc[P any] func(payload P) store.Action

// Option configures a Hook.
type Option func(*options)

type options struct {
	suppressStale bool
	timeout       time.Duration
	logger        *slog.Logger
	resource      string
}

// WithStaleSuppression scopes the fetch to the activation context and drops
// the dispatch when the activation was closed or a newer activation of the
// same hook started. Without it a closed activation still dispatches.
func WithStaleSuppression() Option {
	return func(o *options) {
		o.suppressStale = true
	}
}

// WithTimeout bounds a single fetch.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithLogger overrides the store's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithResource names the fetched resource in logs and activity events.
func WithResource(name string) Option {
	return func(o *options) {
		o.resource = name
	}
}

// Hook binds a fetch to the namespace read by projection.
type Hook[P, T any] struct {
	store      *store.Store
	fetch      FetchFunc[P]
	toAction   ActionFunc[P]
	projection store.Projection[T]
	opts       options
	logger     *slog.Logger

	generation atomic.Uint64
}

// New builds a Hook. fetch supplies the payload, toAction wraps it for
// dispatch and projection reads the resulting data back from the tree.
func New[P, T any](s *store.Store, fetch FetchFunc[P], toAction ActionFunc[P], projection store.Projection[T], opts ...Option) *Hook[P, T] {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	logger := o.logger
	if logger == nil {
		logger = s.Logger()
	}
	if o.resource != "" {
		logger = logger.With(slog.String("resource", o.resource))
	}
	return &Hook[P, T]{
		store:      s,
		fetch:      fetch,
		toAction:   toAction,
		projection: projection,
		opts:       o,
		logger:     logger,
	}
}

// Activate starts one activation: it subscribes the data selector, moves to
// Fetching and performs the fetch on its own goroutine. The activation is
// released when ctx ends or Close is called.
func (h *Hook[P, T]) Activate(ctx context.Context) *Activation[T] {
	ctx, cancel := context.WithCancel(ctx)
	a := newActivation[T](uuid.NewString(), cancel)
	a.selection = store.Select(ctx, h.store, h.projection)

	generation := h.generation.Add(1)
	a.transition(Fetching, nil)
	h.logger.Debug("fetchsync: activation started", slog.String("activation", a.id))

	go h.run(ctx, a, generation)
	return a
}

func (h *Hook[P, T]) run(ctx context.Context, a *Activation[T], generation uint64) {
	start := time.Now()
	payload, err := h.safeFetch(h.fetchContext(ctx))
	if err != nil {
		if h.opts.suppressStale && ctx.Err() != nil {
			h.finish(ctx, a, Cancelled, fmt.Errorf("%w: %w", ErrStale, ctx.Err()), "", start)
			return
		}
		h.finish(ctx, a, Failed, fmt.Errorf("%w: %w", ErrFetchFailed, err), "", start)
		return
	}

	if h.opts.suppressStale {
		if ctx.Err() != nil {
			h.finish(ctx, a, Cancelled, fmt.Errorf("%w: %w", ErrStale, ctx.Err()), "", start)
			return
		}
		if current := h.generation.Load(); current != generation {
			h.finish(ctx, a, Cancelled, fmt.Errorf("%w: superseded by activation %d", ErrStale, current), "", start)
			return
		}
	}

	action := h.toAction(payload)
	h.store.Dispatch(action)
	kind := ""
	if action != nil {
		kind = action.Kind()
	}
	h.finish(ctx, a, Settled, nil, kind, start)
}

// fetchContext detaches the fetch from ctx unless stale results are
// suppressed.
func (h *Hook[P, T]) fetchContext(ctx context.Context) context.Context {
	if !h.opts.suppressStale {
		ctx = context.WithoutCancel(ctx)
	}
	return ctx
}

func (h *Hook[P, T]) safeFetch(ctx context.Context) (payload P, err error) {
	if h.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opts.timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fetch panicked: %v", r)
		}
	}()
	return h.fetch(ctx)
}

func (h *Hook[P, T]) finish(ctx context.Context, a *Activation[T], status Status, err error, kind string, start time.Time) {
	duration := time.Since(start)
	a.transition(status, err)

	attrs := []any{
		slog.String("activation", a.id),
		slog.String("status", status.String()),
		slog.Duration("duration", duration),
	}
	switch status {
	case Failed:
		h.logger.Warn("fetchsync: fetch failed", append(attrs, slog.Any("error", err))...)
	case Cancelled:
		h.logger.Debug("fetchsync: stale result dropped", append(attrs, slog.Any("error", err))...)
	default:
		h.logger.Debug("fetchsync: settled", append(attrs, slog.String("kind", kind))...)
	}

	if status != Cancelled {
		event := activity.BuildActivationEvent(activity.ActivationInput{
			ActivationID: a.id,
			Resource:     h.opts.resource,
			Kind:         kind,
			Duration:     duration,
			Err:          err,
		})
		if emitErr := h.store.Activity().Emit(context.WithoutCancel(ctx), event); emitErr != nil {
			h.logger.Warn("fetchsync: activity hook failed", slog.Any("error", emitErr))
		}
	}
	a.markDone()
}
