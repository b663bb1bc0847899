package store

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-store/pkg/activity"
	"github.com/google/uuid"
)

// WithActivityHooks attaches activity hooks notified after every dispatch.
// Hooks are cloned and nil entries dropped. Emission is enabled unless
// WithActivityConfig says otherwise.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := hooks.Clone()
	return func(cfg *storeConfig) {
		cfg.activityHooks = normalized
	}
}

// WithActivityConfig overrides the emitter configuration.
func WithActivityConfig(config activity.Config) Option {
	return func(cfg *storeConfig) {
		c := config
		cfg.activityConfig = &c
	}
}

func newActivityEmitter(cfg storeConfig) *activity.Emitter {
	config := activity.Config{Enabled: true}
	if cfg.activityConfig != nil {
		config = *cfg.activityConfig
	}
	return activity.NewEmitter(cfg.activityHooks, config)
}

// Activity returns the store's emitter so collaborators such as fetch-sync
// hooks publish to the same hooks.
func (s *Store) Activity() *activity.Emitter {
	return s.emitter
}

func (s *Store) recordDispatch(action Action, next *Tree) {
	if !s.emitter.Enabled() {
		return
	}
	kind := action.Kind()
	event := activity.BuildActionDispatchedEvent(activity.DispatchInput{
		ActionID:  uuid.NewString(),
		Kind:      kind,
		Namespace: NamespaceOf(kind),
		Version:   next.Version(),
	})
	if err := s.emitter.Emit(context.Background(), event); err != nil {
		s.logger.Warn("store: activity hook failed",
			slog.String("kind", kind),
			slog.Any("error", err),
		)
	}
}
