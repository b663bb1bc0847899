package activity

import (
	"context"
	"errors"
	"testing"
	"time"
)

func dispatched(id string) Event {
	return Event{Verb: VerbActionDispatched, ObjectType: ObjectTypeAction, ObjectID: id}
}

func TestEventNormalize(t *testing.T) {
	meta := map[string]any{"k": "v"}
	evt := Event{
		Verb:       " store.action.dispatched ",
		ActorID:    " actor ",
		ObjectType: " store.action ",
		ObjectID:   " 42 ",
		Channel:    " store ",
		Metadata:   meta,
	}

	got := evt.Normalize()

	if got.Verb != VerbActionDispatched || got.ObjectType != ObjectTypeAction || got.ObjectID != "42" {
		t.Fatalf("unexpected normalized fields: %+v", got)
	}
	if got.ActorID != "actor" || got.Channel != "store" {
		t.Fatalf("unexpected trimming: %+v", got)
	}
	if got.OccurredAt.IsZero() {
		t.Fatalf("expected OccurredAt to be set")
	}
	got.Metadata["k"] = "changed"
	if meta["k"] != "v" {
		t.Fatalf("caller metadata was shared: %+v", meta)
	}
	if (Event{Metadata: map[string]any{}}).Normalize().Metadata != nil {
		t.Fatalf("empty metadata should normalize to nil")
	}
}

func TestEventComplete(t *testing.T) {
	if !dispatched("1").Complete() {
		t.Fatalf("expected complete event")
	}
	if (Event{Verb: "x", ObjectType: "y", ObjectID: "  "}).Complete() {
		t.Fatalf("blank object id must be incomplete")
	}
}

func TestHooksDropIncompleteEvents(t *testing.T) {
	capture := &CaptureHook{}
	if err := (Hooks{capture}).Notify(context.Background(), Event{Verb: "x"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(capture.Events()) != 0 {
		t.Fatalf("expected nothing captured, got %d", len(capture.Events()))
	}
}

func TestHooksNotifyRunsAllAndJoinsErrors(t *testing.T) {
	capture := &CaptureHook{}
	boom1 := errors.New("boom1")
	boom2 := errors.New("boom2")
	var ctxSeen bool
	hooks := Hooks{
		HookFunc(func(ctx context.Context, _ Event) error {
			ctxSeen = ctx != nil
			return nil
		}),
		HookFunc(func(context.Context, Event) error { return boom1 }),
		nil,
		capture,
		HookFunc(func(context.Context, Event) error { return boom2 }),
	}

	//nolint:staticcheck // nil context exercises the fallback.
	err := hooks.Notify(nil, dispatched("1"))
	if !errors.Is(err, boom1) || !errors.Is(err, boom2) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if !ctxSeen {
		t.Fatalf("expected a non-nil context")
	}
	if len(capture.Events()) != 1 {
		t.Fatalf("hooks after a failure must still run, captured %d", len(capture.Events()))
	}
}

func TestHooksCloneDropsNil(t *testing.T) {
	if got := (Hooks{nil, nil}).Clone(); got != nil {
		t.Fatalf("expected nil clone, got %v", got)
	}
	original := Hooks{nil, &CaptureHook{}}
	if got := original.Clone(); len(got) != 1 {
		t.Fatalf("expected one hook, got %d", len(got))
	}
	if original[0] != nil {
		t.Fatalf("clone must not reorder the original")
	}
}

func TestEmitterDisabled(t *testing.T) {
	capture := &CaptureHook{}
	for name, emitter := range map[string]*Emitter{
		"config":   NewEmitter(Hooks{capture}, Config{Enabled: false}),
		"no hooks": NewEmitter(Hooks{nil}, Config{Enabled: true}),
		"nil":      nil,
	} {
		if emitter.Enabled() {
			t.Fatalf("%s: expected disabled emitter", name)
		}
		if err := emitter.Emit(context.Background(), dispatched("1")); err != nil {
			t.Fatalf("%s: emit: %v", name, err)
		}
		if emitter.Stats() != (Stats{}) {
			t.Fatalf("%s: disabled emitter counted %+v", name, emitter.Stats())
		}
	}
	if len(capture.Events()) != 0 {
		t.Fatalf("expected no events captured when disabled")
	}
}

func TestEmitterStampsDefaults(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true, ActorID: "cli"})

	if err := emitter.Emit(context.Background(), dispatched("1")); err != nil {
		t.Fatalf("emit: %v", err)
	}
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	explicit := dispatched("2")
	explicit.Channel, explicit.ActorID, explicit.OccurredAt = "custom", "someone", at
	if err := emitter.Emit(context.Background(), explicit); err != nil {
		t.Fatalf("emit: %v", err)
	}

	events := capture.Events()
	if events[0].Channel != DefaultChannel || events[0].ActorID != "cli" {
		t.Fatalf("defaults not applied: %+v", events[0])
	}
	if events[1].Channel != "custom" || events[1].ActorID != "someone" || !events[1].OccurredAt.Equal(at) {
		t.Fatalf("explicit fields overwritten: %+v", events[1])
	}
}

func TestEmitterStats(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true})
	_ = emitter.Emit(context.Background(), dispatched("1"))
	capture.Err = errors.New("sink down")
	if err := emitter.Emit(context.Background(), dispatched("2")); err == nil {
		t.Fatalf("expected hook error")
	}
	if got := emitter.Stats(); got != (Stats{Emitted: 1, Failed: 1}) {
		t.Fatalf("stats = %+v", got)
	}
	if len(capture.ByVerb(VerbActionDispatched)) != 2 {
		t.Fatalf("expected both events captured")
	}
}
