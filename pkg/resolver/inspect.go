package resolver

import (
	"context"

	"github.com/goliatone/go-mapprefs/pkg/store"
)

// KeyState is one row of the debug panel.
type KeyState struct {
	Kind    store.Kind `json:"kind"`
	Key     string     `json:"key"`
	Present bool       `json:"present"`
	Raw     string     `json:"raw,omitempty"`
}

// Inspection is the debug panel contents for a session.
type Inspection struct {
	Zone      string     `json:"zone"`
	SeedZone  string     `json:"seedZone"`
	Status    string     `json:"status,omitempty"`
	Keys      []KeyState `json:"keys"`
	LastError string     `json:"lastError,omitempty"`
}

// Inspect reports the presence and raw contents of every key the session
// reads or writes.
func (s *Session) Inspect(ctx context.Context) Inspection {
	refs := []store.Ref{
		store.ZoneDefaults(s.zone),
		store.GlobalDefaults(),
		store.ZoneSettings(s.zone),
		store.GlobalSettings(),
		store.MarkerPositions(s.zone),
	}
	out := Inspection{Zone: s.zone, SeedZone: s.seed, Status: s.Status()}
	for _, ref := range refs {
		raw, ok := s.safe.Raw(ctx, ref)
		out.Keys = append(out.Keys, KeyState{
			Kind:    ref.Kind,
			Key:     s.safe.Key(ref),
			Present: ok,
			Raw:     raw,
		})
	}
	if err := s.safe.LastError(); err != nil {
		out.LastError = err.Error()
	}
	return out
}
