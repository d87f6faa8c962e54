package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	mapprefs "github.com/goliatone/go-mapprefs"
)

// Safe wraps a Backend so that no storage failure escapes as a hard error to
// the preference UI. Reads that fail look like absent keys; writes that fail
// are logged and reported to the caller, who may ignore them.
type Safe struct {
	backend Backend
	keys    Keyspace
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string

	mu      sync.Mutex
	lastErr error
}

// SafeOption configures a Safe.
type SafeOption func(*Safe)

// WithNamespace overrides DefaultNamespace.
func WithNamespace(namespace string) SafeOption {
	return func(s *Safe) {
		s.keys = Keyspace{Namespace: namespace}
	}
}

// WithLogger sets the logger used for swallowed failures.
func WithLogger(logger *zap.Logger) SafeOption {
	return func(s *Safe) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides time.Now for envelope timestamps.
func WithClock(now func() time.Time) SafeOption {
	return func(s *Safe) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides the snapshot id generator.
func WithIDGenerator(gen func() string) SafeOption {
	return func(s *Safe) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewSafe wraps backend. Keys default to the "ember.map" namespace.
func NewSafe(backend Backend, opts ...SafeOption) *Safe {
	s := &Safe{
		backend: backend,
		keys:    Keyspace{Namespace: DefaultNamespace},
		logger:  zap.NewNop(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Key returns the backend key for ref, or "" if ref is invalid.
func (s *Safe) Key(ref Ref) string {
	key, err := s.keys.Key(ref)
	if err != nil {
		return ""
	}
	return key
}

// LastError returns the most recent swallowed failure, for debug display.
func (s *Safe) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Raw returns the stored string for ref.
func (s *Safe) Raw(ctx context.Context, ref Ref) (string, bool) {
	key, err := s.keys.Key(ref)
	if err != nil {
		s.fail("get", string(ref.Kind), err)
		return "", false
	}
	if s.backend == nil {
		s.fail("get", key, ErrUnavailable)
		return "", false
	}
	value, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.fail("get", key, err)
		return "", false
	}
	return value, ok
}

// LoadPatch reads the bundle stored at ref. It returns nil when the key is
// absent, unreadable, or corrupt.
func (s *Safe) LoadPatch(ctx context.Context, ref Ref) *mapprefs.Snapshot {
	raw, ok := s.Raw(ctx, ref)
	if !ok {
		return nil
	}
	key := s.Key(ref)
	env, err := DecodeEnvelope(key, raw)
	if err != nil {
		s.fail("decode", key, err)
		return nil
	}
	return &mapprefs.Snapshot{Patch: env.Bundle, ID: env.ID, Key: key}
}

// SavePatch writes patch to ref inside a fresh envelope.
func (s *Safe) SavePatch(ctx context.Context, ref Ref, patch mapprefs.Patch) (mapprefs.Snapshot, error) {
	key, err := s.keys.Key(ref)
	if err != nil {
		return mapprefs.Snapshot{}, s.fail("set", string(ref.Kind), err)
	}
	env := Envelope{ID: s.newID(), SavedAt: s.now().UTC(), Bundle: patch}
	raw, err := EncodeEnvelope(env)
	if err != nil {
		return mapprefs.Snapshot{}, s.fail("encode", key, err)
	}
	if err := s.set(ctx, key, raw); err != nil {
		return mapprefs.Snapshot{}, err
	}
	return mapprefs.Snapshot{Patch: patch, ID: env.ID, Key: key}, nil
}

// CopyPatch writes an existing snapshot's patch to another ref.
func (s *Safe) CopyPatch(ctx context.Context, from *mapprefs.Snapshot, to Ref) (*mapprefs.Snapshot, error) {
	if from == nil {
		return nil, fmt.Errorf("store: nothing to copy to %q", to.Kind)
	}
	saved, err := s.SavePatch(ctx, to, from.Patch)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// LoadJSON decodes the value at ref into out, reporting whether it did.
func (s *Safe) LoadJSON(ctx context.Context, ref Ref, out any) bool {
	raw, ok := s.Raw(ctx, ref)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.fail("decode", s.Key(ref), fmt.Errorf("%w: %v", ErrCorrupt, err))
		return false
	}
	return true
}

// SaveJSON encodes v and writes it to ref.
func (s *Safe) SaveJSON(ctx context.Context, ref Ref, v any) error {
	key, err := s.keys.Key(ref)
	if err != nil {
		return s.fail("set", string(ref.Kind), err)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return s.fail("encode", key, err)
	}
	return s.set(ctx, key, string(raw))
}

func (s *Safe) set(ctx context.Context, key, value string) error {
	if s.backend == nil {
		return s.fail("set", key, ErrUnavailable)
	}
	if err := s.backend.Set(ctx, key, value); err != nil {
		return s.fail("set", key, err)
	}
	return nil
}

func (s *Safe) fail(op, key string, err error) error {
	s.mu.Lock()
	s.lastErr = fmt.Errorf("store: %s %q: %w", op, key, err)
	wrapped := s.lastErr
	s.mu.Unlock()
	s.logger.Debug("preference storage failure swallowed",
		zap.String("op", op),
		zap.String("key", key),
		zap.Error(err),
	)
	return wrapped
}
