package store

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-memory Backend for tests, examples and the CLI's
// "memory" driver. It can emulate a capacity limit and disabled storage.
type MemoryStore struct {
	mu       sync.RWMutex
	records  map[string]string
	quota    int
	disabled bool
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithQuota limits the total bytes of keys plus values. Zero means unlimited.
func WithQuota(bytes int) MemoryOption {
	return func(s *MemoryStore) {
		s.quota = bytes
	}
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{records: map[string]string{}}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// SetDisabled makes every subsequent call fail with ErrUnavailable.
func (s *MemoryStore) SetDisabled(disabled bool) {
	s.mu.Lock()
	s.disabled = disabled
	s.mu.Unlock()
}

// Get reads key.
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.disabled {
		return "", false, ErrUnavailable
	}
	value, ok := s.records[key]
	return value, ok, nil
}

// Set writes key, failing with ErrQuotaExceeded when the write would exceed
// the quota.
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disabled {
		return ErrUnavailable
	}
	if s.quota > 0 {
		used := s.usageLocked() - s.entrySizeLocked(key) + len(key) + len(value)
		if used > s.quota {
			return ErrQuotaExceeded
		}
	}
	s.records[key] = value
	return nil
}

// Remove deletes key.
func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disabled {
		return ErrUnavailable
	}
	delete(s.records, key)
	return nil
}

// Keys returns the stored keys with the given prefix, sorted.
func (s *MemoryStore) Keys(prefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.records))
	for key := range s.records {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

func (s *MemoryStore) usageLocked() int {
	total := 0
	for key, value := range s.records {
		total += len(key) + len(value)
	}
	return total
}

func (s *MemoryStore) entrySizeLocked(key string) int {
	value, ok := s.records[key]
	if !ok {
		return 0
	}
	return len(key) + len(value)
}
