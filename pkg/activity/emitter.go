package activity

import (
	"context"
	"strings"
	"sync/atomic"
)

// DefaultChannel is applied to events emitted without a channel.
const DefaultChannel = "store"

// Config controls emission. Channel and ActorID fill events that leave them
// empty.
type Config struct {
	Enabled bool
	Channel string
	ActorID string
}

// Stats counts emissions since the emitter was built.
type Stats struct {
	Emitted uint64 `json:"emitted"`
	Failed  uint64 `json:"failed"`
}

// Emitter stamps defaults onto events and hands them to its hooks. It is
// shared by the store and the fetch-sync hooks bound to it.
type Emitter struct {
	hooks  Hooks
	config Config

	emitted atomic.Uint64
	failed  atomic.Uint64
}

// NewEmitter builds an emitter. It is disabled when cfg says so or when no
// hooks remain after dropping nil entries.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	cfg.Channel = strings.TrimSpace(cfg.Channel)
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	hooks = hooks.Clone()
	cfg.Enabled = cfg.Enabled && len(hooks) > 0
	return &Emitter{hooks: hooks, config: cfg}
}

// Enabled reports whether Emit delivers anything.
func (e *Emitter) Enabled() bool {
	return e != nil && e.config.Enabled
}

// Emit delivers event to every hook.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.config.Channel
	}
	if strings.TrimSpace(event.ActorID) == "" {
		event.ActorID = e.config.ActorID
	}
	if err := e.hooks.Notify(ctx, event); err != nil {
		e.failed.Add(1)
		return err
	}
	e.emitted.Add(1)
	return nil
}

// Stats returns the emission counters.
func (e *Emitter) Stats() Stats {
	if e == nil {
		return Stats{}
	}
	return Stats{Emitted: e.emitted.Load(), Failed: e.failed.Load()}
}
