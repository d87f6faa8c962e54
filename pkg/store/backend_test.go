package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	dir := t.TempDir()
	sqlite, err := OpenSQLite(filepath.Join(dir, "prefs.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })
	return map[string]Backend{
		"memory": NewMemoryStore(),
		"file":   NewFileStore(filepath.Join(dir, "nested", "prefs.json")),
		"sqlite": sqlite,
	}
}

func TestBackendContract(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, ok, err := backend.Get(ctx, "missing"); ok || err != nil {
				t.Fatalf("expected absent key, got ok=%v err=%v", ok, err)
			}
			if err := backend.Set(ctx, "ember.map/global-settings", `{"a":1}`); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := backend.Set(ctx, "ember.map/global-settings", `{"a":2}`); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			value, ok, err := backend.Get(ctx, "ember.map/global-settings")
			if err != nil || !ok || value != `{"a":2}` {
				t.Fatalf("expected last write to win, got %q ok=%v err=%v", value, ok, err)
			}
			if err := backend.Remove(ctx, "ember.map/global-settings"); err != nil {
				t.Fatalf("remove: %v", err)
			}
			if err := backend.Remove(ctx, "ember.map/global-settings"); err != nil {
				t.Fatalf("remove of absent key should succeed: %v", err)
			}
			if _, ok, _ := backend.Get(ctx, "ember.map/global-settings"); ok {
				t.Fatalf("expected key removed")
			}
		})
	}
}

func TestMemoryStoreQuotaAndDisabled(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(WithQuota(10))
	if err := s.Set(ctx, "k", "123456789"); err != nil {
		t.Fatalf("set within quota: %v", err)
	}
	if err := s.Set(ctx, "k", "1234567890"); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if v, _, _ := s.Get(ctx, "k"); v != "123456789" {
		t.Fatalf("rejected write must keep previous value, got %q", v)
	}

	s.SetDisabled(true)
	if _, _, err := s.Get(ctx, "k"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if err := s.Set(ctx, "k", "x"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	s.SetDisabled(false)
	if keys := s.Keys(""); len(keys) != 1 || keys[0] != "k" {
		t.Fatalf("unexpected keys %v", keys)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := NewFileStore(path)
	if _, _, err := s.Get(context.Background(), "k"); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestFileStoreWatchSeesOtherWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	watched := NewFileStore(path)
	writer := NewFileStore(path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changed := make(chan struct{}, 8)
	if err := watched.Watch(ctx, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}); err != nil {
		t.Fatalf("watch: %v", err)
	}

	if err := writer.Set(context.Background(), "ember.map/global-settings", "{}"); err != nil {
		t.Fatalf("set: %v", err)
	}
	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatalf("expected a change notification")
	}
	if _, ok, _ := watched.Get(context.Background(), "ember.map/global-settings"); !ok {
		t.Fatalf("expected watched store to read the new key")
	}
}

func TestFileStoreWatchStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	fs := NewFileStore(filepath.Join(t.TempDir(), "prefs.json"))
	if err := fs.Watch(ctx, func() {}); err != nil {
		t.Fatalf("watch: %v", err)
	}
	cancel()
}

func TestSQLiteStorePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "prefs.db")
	first, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := first.Set(context.Background(), "k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	first.Close()

	second, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	if v, ok, err := second.Get(context.Background(), "k"); err != nil || !ok || v != "v" {
		t.Fatalf("expected persisted value, got %q ok=%v err=%v", v, ok, err)
	}
}

func TestSQLiteStoreClosedIsUnavailable(t *testing.T) {
	s, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s.Close()
	if _, _, err := s.Get(context.Background(), "k"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
