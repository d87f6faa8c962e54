package activity

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNormalizeEventTrimsAndClones(t *testing.T) {
	meta := map[string]any{"k": "v"}
	evt := Event{
		Verb:       " preferences.global.saved ",
		ActorID:    " actor ",
		ObjectType: " zone ",
		ObjectID:   " ironwood ",
		Zone:       " ironwood ",
		Channel:    " map-preferences ",
		Metadata:   meta,
	}

	got := NormalizeEvent(evt)

	if got.Verb != VerbGlobalSaved || got.ObjectType != ObjectZone || got.ObjectID != "ironwood" || got.Zone != "ironwood" {
		t.Fatalf("unexpected normalized fields: %+v", got)
	}
	if got.ActorID != "actor" || got.Channel != DefaultChannel {
		t.Fatalf("unexpected trimming: %+v", got)
	}
	if got.OccurredAt.IsZero() {
		t.Fatalf("expected OccurredAt to be set")
	}
	got.Metadata["k"] = "changed"
	if meta["k"] != "v" {
		t.Fatalf("expected original metadata untouched: %+v", meta)
	}
}

func TestHooksNotifyDropsIncompleteEvents(t *testing.T) {
	capture := &CaptureHook{}
	if err := (Hooks{capture}).Notify(context.Background(), Event{Verb: VerbMigrated}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if n := len(capture.Events()); n != 0 {
		t.Fatalf("expected no events captured, got %d", n)
	}
}

func TestHooksNotifyFanOutAndJoinErrors(t *testing.T) {
	capture := &CaptureHook{}
	boom1 := errors.New("boom1")
	boom2 := errors.New("boom2")
	var ctxSeen bool
	hooks := Hooks{
		HookFunc(func(ctx context.Context, _ Event) error {
			ctxSeen = ctx != nil
			return nil
		}),
		capture,
		HookFunc(func(context.Context, Event) error { return boom1 }),
		nil,
		HookFunc(func(context.Context, Event) error { return boom2 }),
	}

	err := hooks.Notify(nil, Event{Verb: VerbZoneDefaultsSaved, ObjectType: ObjectZone, ObjectID: "ironwood"})
	if !errors.Is(err, boom1) || !errors.Is(err, boom2) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if !ctxSeen {
		t.Fatalf("expected background context to be supplied")
	}
	if verbs := capture.Verbs(); len(verbs) != 1 || verbs[0] != VerbZoneDefaultsSaved {
		t.Fatalf("unexpected captured verbs: %v", verbs)
	}
}

func TestEmitterAppliesChannelAndActor(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture, nil}, Config{Enabled: true}).WithActor("player-1")

	event := BuildPreferenceEvent(VerbAppliedToAll, PreferenceEventInput{Zone: "voidreach", Zones: []string{"ironwood", "voidreach"}})
	if err := emitter.Emit(context.Background(), event); err != nil {
		t.Fatalf("emit: %v", err)
	}
	events := capture.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Channel != DefaultChannel || events[0].ActorID != "player-1" {
		t.Fatalf("expected defaults applied, got %+v", events[0])
	}
	zones, _ := events[0].Metadata["zones"].([]string)
	if len(zones) != 2 {
		t.Fatalf("expected zones metadata, got %+v", events[0].Metadata)
	}
}

func TestEmitterDisabled(t *testing.T) {
	capture := &CaptureHook{}
	cases := map[string]*Emitter{
		"nil":      nil,
		"disabled": NewEmitter(Hooks{capture}, Config{}),
		"no hooks": NewEmitter(nil, Config{Enabled: true}),
		"only nil": NewEmitter(Hooks{nil}, Config{Enabled: true}),
	}
	for name, emitter := range cases {
		t.Run(name, func(t *testing.T) {
			if emitter.Enabled() {
				t.Fatalf("expected emitter disabled")
			}
			if err := emitter.Emit(context.Background(), Event{Verb: "x", ObjectType: "zone", ObjectID: "a"}); err != nil {
				t.Fatalf("emit: %v", err)
			}
		})
	}
	if n := len(capture.Events()); n != 0 {
		t.Fatalf("expected no events, got %d", n)
	}
}

func TestBuildMarkerMovedEvent(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	event := BuildMarkerMovedEvent(MarkerMovedInput{
		Zone:       "ironwood",
		MarkerID:   "raid-1",
		From:       [2]float64{10, 20},
		To:         [2]float64{100, 0},
		OccurredAt: at,
	})
	if event.ObjectType != ObjectMarker || event.ObjectID != "raid-1" || event.Zone != "ironwood" {
		t.Fatalf("unexpected identity: %+v", event)
	}
	if event.Metadata["to_x"] != 100.0 || event.Metadata["from_y"] != 20.0 {
		t.Fatalf("unexpected metadata: %+v", event.Metadata)
	}
	if !event.OccurredAt.Equal(at) {
		t.Fatalf("expected timestamp preserved")
	}
}
