package activity

import (
	"strings"
	"time"
)

// Verbs emitted by the preference resolver and marker editor.
const (
	VerbZoneDefaultsSaved = "preferences.zone_defaults.saved"
	VerbZoneDefaultsReset = "preferences.zone_defaults.reset"
	VerbGlobalSaved       = "preferences.global.saved"
	VerbGlobalApplied     = "preferences.global.applied"
	VerbAppliedToAll      = "preferences.applied_to_all"
	VerbMigrated          = "preferences.migrated"
	VerbMarkerMoved       = "markers.moved"
)

// Object types carried on events.
const (
	ObjectZone   = "zone"
	ObjectMarker = "marker"
)

// PreferenceEventInput describes a preference change.
type PreferenceEventInput struct {
	Zone       string
	SnapshotID string
	Keys       []string
	Zones      []string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildPreferenceEvent builds a zone-scoped event for verb.
func BuildPreferenceEvent(verb string, input PreferenceEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if input.SnapshotID != "" {
		metadata = ensureMetadata(metadata)
		metadata["snapshot_id"] = input.SnapshotID
	}
	if len(input.Keys) > 0 {
		metadata = ensureMetadata(metadata)
		metadata["keys"] = append([]string(nil), input.Keys...)
	}
	if len(input.Zones) > 0 {
		metadata = ensureMetadata(metadata)
		metadata["zones"] = append([]string(nil), input.Zones...)
	}
	zone := strings.TrimSpace(input.Zone)
	return Event{
		Verb:       verb,
		ObjectType: ObjectZone,
		ObjectID:   zone,
		Zone:       zone,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

// MarkerMovedInput describes a persisted marker drag.
type MarkerMovedInput struct {
	Zone       string
	MarkerID   string
	From       [2]float64
	To         [2]float64
	OccurredAt time.Time
}

// BuildMarkerMovedEvent builds the event recorded when a drag ends.
func BuildMarkerMovedEvent(input MarkerMovedInput) Event {
	return Event{
		Verb:       VerbMarkerMoved,
		ObjectType: ObjectMarker,
		ObjectID:   strings.TrimSpace(input.MarkerID),
		Zone:       strings.TrimSpace(input.Zone),
		Metadata: map[string]any{
			"from_x": input.From[0],
			"from_y": input.From[1],
			"to_x":   input.To[0],
			"to_y":   input.To[1],
		},
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
