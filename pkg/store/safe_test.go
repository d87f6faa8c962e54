package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	mapprefs "github.com/goliatone/go-mapprefs"
)

func TestRefKeys(t *testing.T) {
	cases := []struct {
		ref  Ref
		want string
	}{
		{ZoneDefaults("ironwood"), "ember.map/zone-defaults/ironwood"},
		{GlobalDefaults(), "ember.map/global-defaults"},
		{ZoneSettings("voidreach"), "ember.map/zone-settings/voidreach"},
		{GlobalSettings(), "ember.map/global-settings"},
		{MarkerPositions("ironwood"), "ember.map/marker-positions/ironwood"},
	}
	keys := Keyspace{Namespace: DefaultNamespace}
	for _, tc := range cases {
		got, err := keys.Key(tc.ref)
		if err != nil {
			t.Fatalf("key %v: %v", tc.ref, err)
		}
		if got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
	if _, err := keys.Key(ZoneSettings(" ")); err == nil {
		t.Fatalf("expected zone to be required")
	}
	if _, err := keys.Key(Ref{Kind: "bogus"}); err == nil {
		t.Fatalf("expected unsupported kind")
	}
}

func TestSafeRoundTripsEnvelopes(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	at := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	safe := NewSafe(mem,
		WithNamespace("test.map"),
		WithClock(func() time.Time { return at }),
		WithIDGenerator(func() string { return "snap-1" }),
	)

	patch := mapprefs.ShippedDefaults().Patch()
	saved, err := safe.SavePatch(ctx, ZoneDefaults("ironwood"), patch)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.ID != "snap-1" || saved.Key != "test.map/zone-defaults/ironwood" {
		t.Fatalf("unexpected snapshot %+v", saved)
	}

	loaded := safe.LoadPatch(ctx, ZoneDefaults("ironwood"))
	if loaded == nil {
		t.Fatalf("expected stored patch")
	}
	if diff := cmp.Diff(patch, loaded.Patch); diff != "" {
		t.Fatalf("patch mismatch (-want +got):\n%s", diff)
	}
	raw, _ := safe.Raw(ctx, ZoneDefaults("ironwood"))
	env, err := DecodeEnvelope("k", raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.ID != "snap-1" || !env.SavedAt.Equal(at) {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

func TestSafeSwallowsAndLogsFailures(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.DebugLevel)
	mem := NewMemoryStore()
	safe := NewSafe(mem, WithLogger(zap.New(core)))

	mem.Set(ctx, "ember.map/global-settings", "{broken")
	if got := safe.LoadPatch(ctx, GlobalSettings()); got != nil {
		t.Fatalf("corrupt value must load as absent, got %+v", got)
	}
	if !errors.Is(safe.LastError(), ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt recorded, got %v", safe.LastError())
	}

	mem.SetDisabled(true)
	if got := safe.LoadPatch(ctx, GlobalDefaults()); got != nil {
		t.Fatalf("unavailable storage must load as absent")
	}
	if _, err := safe.SavePatch(ctx, GlobalDefaults(), mapprefs.Patch{}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	var positions map[string]any
	if safe.LoadJSON(ctx, MarkerPositions("ironwood"), &positions) {
		t.Fatalf("expected LoadJSON to report absence")
	}

	entries := logs.FilterMessage("preference storage failure swallowed").All()
	if len(entries) != 4 {
		t.Fatalf("expected 4 logged failures, got %d", len(entries))
	}
	if entries[0].ContextMap()["op"] != "decode" || entries[0].ContextMap()["key"] != "ember.map/global-settings" {
		t.Fatalf("unexpected log fields %v", entries[0].ContextMap())
	}
}

func TestSafeNilBackend(t *testing.T) {
	safe := NewSafe(nil)
	if safe.LoadPatch(context.Background(), GlobalDefaults()) != nil {
		t.Fatalf("expected absent")
	}
	if err := safe.SaveJSON(context.Background(), MarkerPositions("a"), map[string]int{}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestSafeCopyPatch(t *testing.T) {
	ctx := context.Background()
	safe := NewSafe(NewMemoryStore())
	if _, err := safe.CopyPatch(ctx, nil, GlobalDefaults()); err == nil {
		t.Fatalf("expected error copying nothing")
	}
	opacity := 0.5
	src, _ := safe.SavePatch(ctx, ZoneSettings("ironwood"), mapprefs.Patch{MapOpacity: &opacity})
	copied, err := safe.CopyPatch(ctx, &src, GlobalDefaults())
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if copied.Key != "ember.map/global-defaults" || copied.ID == src.ID {
		t.Fatalf("expected a fresh snapshot at the target, got %+v", copied)
	}
}
