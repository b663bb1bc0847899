// Package usersink forwards store activity to a go-users ActivitySink so
// dispatches and fetch outcomes land in the same audit log as user activity.
package usersink

import (
	"context"

	"github.com/goliatone/go-store/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook is an activity.ActivityHook writing to Sink. Tenant is used for events
// that carry no tenant of their own.
type Hook struct {
	Sink   usertypes.ActivitySink
	Tenant uuid.UUID
}

func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	record, ok := Record(event)
	if !ok {
		return nil
	}
	if record.TenantID == uuid.Nil {
		record.TenantID = h.Tenant
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return h.Sink.Log(ctx, record)
}

// Record converts event into an ActivityRecord. The actor doubles as the
// user, and IDs that are not UUIDs become uuid.Nil. It reports false for
// incomplete events.
func Record(event activity.Event) (usertypes.ActivityRecord, bool) {
	if !event.Complete() {
		return usertypes.ActivityRecord{}, false
	}
	event = event.Normalize()
	actor := uuidOrNil(event.ActorID)
	return usertypes.ActivityRecord{
		ActorID:    actor,
		UserID:     actor,
		TenantID:   uuidOrNil(event.TenantID),
		Verb:       event.Verb,
		ObjectType: event.ObjectType,
		ObjectID:   event.ObjectID,
		Channel:    event.Channel,
		Data:       event.Metadata,
		OccurredAt: event.OccurredAt,
	}, true
}

func uuidOrNil(s string) uuid.UUID {
	if id, err := uuid.Parse(s); err == nil {
		return id
	}
	return uuid.Nil
}
