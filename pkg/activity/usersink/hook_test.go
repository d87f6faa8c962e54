package usersink_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-mapprefs/pkg/activity"
	"github.com/goliatone/go-mapprefs/pkg/activity/usersink"
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

func TestHookNotifyMapsPreferenceEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	actor := uuid.New()
	event := activity.BuildPreferenceEvent(activity.VerbGlobalSaved, activity.PreferenceEventInput{
		Zone:       "emberwastes",
		SnapshotID: "snap-1",
		OccurredAt: now,
	})
	event.ActorID = actor.String()
	event.Channel = "map-preferences"

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actor || record.UserID != actor {
		t.Fatalf("expected actor and user %s, got %s/%s", actor, record.ActorID, record.UserID)
	}
	if record.Verb != activity.VerbGlobalSaved || record.ObjectType != "zone" || record.ObjectID != "emberwastes" {
		t.Fatalf("unexpected record identity: %+v", record)
	}
	if record.Channel != "map-preferences" {
		t.Fatalf("expected channel, got %q", record.Channel)
	}
	if !record.OccurredAt.Equal(now) {
		t.Fatalf("expected occurred_at %v, got %v", now, record.OccurredAt)
	}
	if record.Data["zone"] != "emberwastes" || record.Data["snapshot_id"] != "snap-1" {
		t.Fatalf("unexpected data: %+v", record.Data)
	}
}

func TestHookNotifyInvalidActorFallsBackToNil(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	event := activity.Event{Verb: activity.VerbMarkerMoved, ObjectType: "marker", ObjectID: "harvest-3", ActorID: "not-a-uuid"}
	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if got := sink.records[0].ActorID; got != uuid.Nil {
		t.Fatalf("expected nil uuid, got %s", got)
	}
	if sink.records[0].OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be stamped")
	}
}

func TestHookNotifySkipsIncompleteEventsAndNilSink(t *testing.T) {
	sink := &recordingSink{}
	if err := (usersink.Hook{Sink: sink}).Notify(context.Background(), activity.Event{Verb: "x"}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 0 {
		t.Fatalf("expected no records, got %d", len(sink.records))
	}
	if err := (usersink.Hook{}).Notify(context.Background(), activity.Event{Verb: "x", ObjectType: "zone", ObjectID: "a"}); err != nil {
		t.Fatalf("nil sink should be a no-op, got %v", err)
	}
}

func TestHookNotifyReturnsSinkError(t *testing.T) {
	boom := errors.New("sink down")
	hook := usersink.Hook{Sink: &recordingSink{err: boom}}
	err := hook.Notify(context.Background(), activity.Event{Verb: "x", ObjectType: "zone", ObjectID: "a"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
}

func TestJournalRoundTripsThroughHook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "activity.jsonl")
	journal := usersink.NewJournal(path)
	hook := usersink.Hook{Sink: journal}
	actor := uuid.New()
	at := time.Date(2026, 4, 2, 18, 0, 0, 0, time.UTC)

	for _, zone := range []string{"ironwood", "frostmarch"} {
		event := activity.BuildPreferenceEvent(activity.VerbZoneDefaultsSaved, activity.PreferenceEventInput{
			Zone:       zone,
			OccurredAt: at,
		})
		event.ActorID = actor.String()
		if err := hook.Notify(context.Background(), event); err != nil {
			t.Fatalf("notify %s: %v", zone, err)
		}
	}

	records, err := usersink.ReadJournal(journal.Path())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ObjectID != "ironwood" || records[1].ObjectID != "frostmarch" {
		t.Fatalf("records out of order: %+v", records)
	}
	if records[1].UserID != actor || !records[1].OccurredAt.Equal(at) {
		t.Fatalf("record metadata lost: %+v", records[1])
	}
	if records[1].Data["zone"] != "frostmarch" {
		t.Fatalf("expected zone in data, got %v", records[1].Data)
	}
}

func TestReadJournalMissingAndCorrupt(t *testing.T) {
	dir := t.TempDir()
	records, err := usersink.ReadJournal(filepath.Join(dir, "absent.jsonl"))
	if err != nil || len(records) != 0 {
		t.Fatalf("missing journal should read empty, got %v, %v", records, err)
	}

	path := filepath.Join(dir, "bad.jsonl")
	if err := os.WriteFile(path, []byte("{\"verb\":\"markers.moved\"}\nnot json\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	records, err = usersink.ReadJournal(path)
	if err == nil {
		t.Fatalf("expected error for corrupt line")
	}
	if len(records) != 1 || records[0].Verb != activity.VerbMarkerMoved {
		t.Fatalf("lines before the corrupt one should survive, got %+v", records)
	}
}
