package activity

import (
	"context"
	"errors"
	"slices"
)

// ActivityHook receives normalized activity events.
type ActivityHook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc allows plain functions to satisfy ActivityHook.
type HookFunc func(ctx context.Context, event Event) error

// Notify calls fn.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks fans an event out to every member.
type Hooks []ActivityHook

// Notify normalizes event and delivers it to each hook in order. Every hook
// runs even when an earlier one fails; failures are joined.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 || !event.Complete() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	event = event.Normalize()
	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Clone returns h without nil entries, or nil when nothing is left.
func (h Hooks) Clone() Hooks {
	out := slices.DeleteFunc(slices.Clone(h), func(hook ActivityHook) bool { return hook == nil })
	if len(out) == 0 {
		return nil
	}
	return out
}
