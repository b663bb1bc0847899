package usersink_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-store/pkg/activity"
	"github.com/goliatone/go-store/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsDispatchEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()
	tenantID := uuid.New()
	actionID := uuid.NewString()

	event := activity.BuildActionDispatchedEvent(activity.DispatchInput{
		ActionID:   actionID,
		Kind:       "product/setItems",
		Namespace:  "product",
		Version:    1,
		ActorID:    actorID.String(),
		TenantID:   tenantID.String(),
		Channel:    "store",
		OccurredAt: now,
	})

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actorID || record.UserID != actorID {
		t.Fatalf("expected actor %s got actor=%s user=%s", actorID, record.ActorID, record.UserID)
	}
	if record.TenantID != tenantID {
		t.Fatalf("expected tenant %s got %s", tenantID, record.TenantID)
	}
	if record.Verb != activity.VerbActionDispatched || record.ObjectType != activity.ObjectTypeAction || record.ObjectID != actionID {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "store" {
		t.Fatalf("expected channel store got %q", record.Channel)
	}
	if !record.OccurredAt.Equal(now) {
		t.Fatalf("expected occurred_at %v got %v", now, record.OccurredAt)
	}
	if record.Data["kind"] != "product/setItems" {
		t.Fatalf("expected kind metadata got %v", record.Data["kind"])
	}
}

func TestHookNotifyInvalidIDsBecomeNil(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	err := hook.Notify(context.Background(), activity.Event{
		Verb:       activity.VerbActionDispatched,
		ActorID:    "not-a-uuid",
		ObjectType: activity.ObjectTypeAction,
		ObjectID:   "1",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if sink.records[0].ActorID != uuid.Nil {
		t.Fatalf("expected nil actor, got %s", sink.records[0].ActorID)
	}
}

func TestHookTenantFallback(t *testing.T) {
	sink := &recordingSink{}
	tenant := uuid.New()
	hook := usersink.Hook{Sink: sink, Tenant: tenant}

	if err := hook.Notify(context.Background(), activity.BuildActivationEvent(activity.ActivationInput{ActivationID: "a"})); err != nil {
		t.Fatalf("notify: %v", err)
	}
	own := uuid.New()
	event := activity.BuildActionDispatchedEvent(activity.DispatchInput{ActionID: "b", TenantID: own.String()})
	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if sink.records[0].TenantID != tenant || sink.records[1].TenantID != own {
		t.Fatalf("unexpected tenants %s, %s", sink.records[0].TenantID, sink.records[1].TenantID)
	}
}

func TestRecordRejectsIncompleteEvents(t *testing.T) {
	if _, ok := usersink.Record(activity.Event{Verb: activity.VerbActionDispatched}); ok {
		t.Fatalf("expected incomplete event to be rejected")
	}
	record, ok := usersink.Record(activity.Event{Verb: "v", ObjectType: "t", ObjectID: " id "})
	if !ok || record.ObjectID != "id" || record.OccurredAt.IsZero() {
		t.Fatalf("unexpected record %+v (ok=%v)", record, ok)
	}
}

func TestHookNotifySkipsMissingVerb(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	_ = hook.Notify(context.Background(), activity.Event{})

	if len(sink.records) != 0 {
		t.Fatalf("expected no records for empty event, got %d", len(sink.records))
	}
}

func TestHookNotifyPropagatesSinkError(t *testing.T) {
	boom := errors.New("sink down")
	hook := usersink.Hook{Sink: &recordingSink{err: boom}}

	err := hook.Notify(context.Background(), activity.BuildActivationEvent(activity.ActivationInput{ActivationID: "a"}))
	if !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
}

func TestHookNilSinkIsNoop(t *testing.T) {
	if err := (usersink.Hook{}).Notify(context.Background(), activity.Event{Verb: "x", ObjectType: "y", ObjectID: "z"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
