package usersink

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Journal is an ActivitySink that appends records to a JSON lines file.
type Journal struct {
	path string
	mu   sync.Mutex
}

var _ usertypes.ActivitySink = (*Journal)(nil)

// NewJournal returns a sink writing to path. The file and its directory are
// created on the first Log.
func NewJournal(path string) *Journal {
	return &Journal{path: path}
}

// Path returns the journal file.
func (j *Journal) Path() string {
	return j.path
}

type journalEntry struct {
	ActorID    uuid.UUID      `json:"actor_id"`
	UserID     uuid.UUID      `json:"user_id"`
	Verb       string         `json:"verb"`
	ObjectType string         `json:"object_type"`
	ObjectID   string         `json:"object_id"`
	Channel    string         `json:"channel,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Log appends one record.
func (j *Journal) Log(_ context.Context, record usertypes.ActivityRecord) error {
	line, err := json.Marshal(journalEntry{
		ActorID:    record.ActorID,
		UserID:     record.UserID,
		Verb:       record.Verb,
		ObjectType: record.ObjectType,
		ObjectID:   record.ObjectID,
		Channel:    record.Channel,
		Data:       record.Data,
		OccurredAt: record.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("usersink: encode record: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if dir := filepath.Dir(j.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("usersink: journal dir: %w", err)
		}
	}
	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("usersink: open journal: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("usersink: append journal: %w", err)
	}
	return nil
}

// ReadJournal returns the records in path, oldest first. A missing file reads
// as empty.
func ReadJournal(path string) ([]usertypes.ActivityRecord, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("usersink: open journal: %w", err)
	}
	defer f.Close()

	var records []usertypes.ActivityRecord
	scanner := bufio.NewScanner(f)
	for n := 1; scanner.Scan(); n++ {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var entry journalEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			return records, fmt.Errorf("usersink: journal line %d: %w", n, err)
		}
		records = append(records, usertypes.ActivityRecord{
			ActorID:    entry.ActorID,
			UserID:     entry.UserID,
			Verb:       entry.Verb,
			ObjectType: entry.ObjectType,
			ObjectID:   entry.ObjectID,
			Channel:    entry.Channel,
			Data:       entry.Data,
			OccurredAt: entry.OccurredAt,
		})
	}
	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("usersink: read journal: %w", err)
	}
	return records, nil
}
