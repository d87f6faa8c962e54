package mapprefs

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Trace captures which tiers supplied a value for one bundle path.
type Trace struct {
	Path   string       `json:"path"`
	Layers []Provenance `json:"layers"`
}

// Provenance details how a single tier contributed to a traced path.
type Provenance struct {
	Tier       Tier   `json:"tier"`
	Key        string `json:"key,omitempty"`
	SnapshotID string `json:"snapshot_id,omitempty"`
	Value      any    `json:"value,omitempty"`
	Found      bool   `json:"found"`
}

// Winner returns the strongest tier that set the path.
func (t Trace) Winner() (Provenance, bool) {
	for _, layer := range t.Layers {
		if layer.Found {
			return layer, true
		}
	}
	return Provenance{}, false
}

// ToJSON serialises the trace for the debug panel.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// ResolveWithTrace returns the effective value at path along with each
// tier's contribution, strongest first. The effective value is post-clamp and
// may therefore differ from the winning tier's stored value.
func (v *View) ResolveWithTrace(path string) (any, Trace, error) {
	if v == nil {
		return nil, Trace{}, fmt.Errorf("mapprefs: view is nil")
	}
	segments := splitPath(path)
	if len(segments) == 0 {
		return nil, Trace{}, fmt.Errorf("%w: %q", ErrUnknownPath, path)
	}
	value, ok := lookupPath(toMap(v.Bundle), segments)
	if !ok {
		return nil, Trace{}, fmt.Errorf("%w: %q", ErrUnknownPath, path)
	}

	trace := Trace{Path: strings.Join(segments, "."), Layers: make([]Provenance, 0, len(v.layers))}
	for _, layer := range v.layers {
		stored, found := lookupPath(toMap(layer.Patch), segments)
		trace.Layers = append(trace.Layers, Provenance{
			Tier:       layer.Tier,
			Key:        layer.Key,
			SnapshotID: layer.SnapshotID,
			Value:      stored,
			Found:      found,
		})
	}
	return value, trace, nil
}
