package activity

import (
	"maps"
	"strings"
	"time"
)

// Verbs emitted by the store and the fetch-sync hooks.
const (
	VerbActionDispatched  = "store.action.dispatched"
	VerbActivationSettled = "store.activation.settled"
	VerbActivationFailed  = "store.activation.failed"
)

// Object types paired with the verbs above.
const (
	ObjectTypeAction     = "store.action"
	ObjectTypeActivation = "store.activation"
)

// DispatchInput describes one applied action.
type DispatchInput struct {
	ActionID   string
	Kind       string
	Namespace  string
	Version    uint64
	ActorID    string
	TenantID   string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivationInput describes the outcome of one fetch-sync activation.
type ActivationInput struct {
	ActivationID string
	Resource     string
	Kind         string
	Duration     time.Duration
	Err          error
	Channel      string
	Metadata     map[string]any
	OccurredAt   time.Time
}

// BuildActionDispatchedEvent constructs the event recorded after a dispatch.
func BuildActionDispatchedEvent(input DispatchInput) Event {
	metadata := metadataFrom(input.Metadata)
	metadata["kind"] = input.Kind
	metadata["version"] = input.Version
	if input.Namespace != "" {
		metadata["namespace"] = input.Namespace
	}

	objectID := strings.TrimSpace(input.ActionID)
	if objectID == "" {
		objectID = strings.TrimSpace(input.Kind)
	}

	return Event{
		Verb:       VerbActionDispatched,
		ActorID:    strings.TrimSpace(input.ActorID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: ObjectTypeAction,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

// BuildActivationEvent constructs the settled or failed event for an
// activation depending on input.Err.
func BuildActivationEvent(input ActivationInput) Event {
	verb := VerbActivationSettled
	metadata := metadataFrom(input.Metadata)
	if input.Resource != "" {
		metadata["resource"] = input.Resource
	}
	if input.Kind != "" {
		metadata["kind"] = input.Kind
	}
	if input.Duration > 0 {
		metadata["duration_ms"] = input.Duration.Milliseconds()
	}
	if input.Err != nil {
		verb = VerbActivationFailed
		metadata["error"] = input.Err.Error()
	}

	objectID := strings.TrimSpace(input.ActivationID)
	if objectID == "" {
		objectID = ObjectTypeActivation
	}

	return Event{
		Verb:       verb,
		ObjectType: ObjectTypeActivation,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

// metadataFrom copies base so builders never write into caller maps.
func metadataFrom(base map[string]any) map[string]any {
	out := make(map[string]any, len(base)+4)
	maps.Copy(out, base)
	return out
}
