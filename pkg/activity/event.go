// Package activity fans store activity (dispatched actions, settled fetches)
// out to hooks such as audit sinks or test captures.
package activity

import (
	"maps"
	"strings"
	"time"
)

// Event describes one store occurrence. IDs are strings so call sites are
// not coupled to a specific UUID type.
type Event struct {
	Verb       string
	ActorID    string
	TenantID   string
	ObjectType string
	ObjectID   string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// Normalize returns a copy with trimmed identifiers, its own metadata map
// and a timestamp.
func (e Event) Normalize() Event {
	for _, field := range []*string{&e.Verb, &e.ActorID, &e.TenantID, &e.ObjectType, &e.ObjectID, &e.Channel} {
		*field = strings.TrimSpace(*field)
	}
	if len(e.Metadata) == 0 {
		e.Metadata = nil
	} else {
		e.Metadata = maps.Clone(e.Metadata)
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}
	return e
}

// Complete reports whether the event names a verb and an object. Hooks drop
// incomplete events.
func (e Event) Complete() bool {
	return strings.TrimSpace(e.Verb) != "" &&
		strings.TrimSpace(e.ObjectType) != "" &&
		strings.TrimSpace(e.ObjectID) != ""
}
