package activity

import (
	"context"
	"sync"
)

// CaptureHook records events for assertions in tests. Err, when set, is
// returned from every Notify.
type CaptureHook struct {
	Err error

	mu     sync.Mutex
	events []Event
}

func (h *CaptureHook) Notify(_ context.Context, event Event) error {
	h.mu.Lock()
	h.events = append(h.events, event.Normalize())
	h.mu.Unlock()
	return h.Err
}

// Events returns the recorded events in arrival order.
func (h *CaptureHook) Events() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Event(nil), h.events...)
}

// Verbs returns the verb of each recorded event.
func (h *CaptureHook) Verbs() []string {
	events := h.Events()
	verbs := make([]string, 0, len(events))
	for _, event := range events {
		verbs = append(verbs, event.Verb)
	}
	return verbs
}

// ByVerb returns the recorded events carrying verb.
func (h *CaptureHook) ByVerb(verb string) []Event {
	var out []Event
	for _, event := range h.Events() {
		if event.Verb == verb {
			out = append(out, event)
		}
	}
	return out
}
