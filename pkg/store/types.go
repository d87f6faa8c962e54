package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnavailable reports that storage is disabled or unreachable.
	ErrUnavailable = errors.New("store: unavailable")
	// ErrQuotaExceeded reports a write rejected for lack of capacity.
	ErrQuotaExceeded = errors.New("store: quota exceeded")
	// ErrCorrupt reports a stored value that could not be decoded.
	ErrCorrupt = errors.New("store: corrupt value")
)

// Backend is the host-provided key-value store.
type Backend interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Kind names one family of preference keys.
type Kind string

const (
	KindZoneDefaults    Kind = "zone-defaults"
	KindGlobalDefaults  Kind = "global-defaults"
	KindZoneSettings    Kind = "zone-settings"
	KindGlobalSettings  Kind = "global-settings"
	KindMarkerPositions Kind = "marker-positions"
)

// Zoned reports whether keys of this kind are namespaced by zone.
func (k Kind) Zoned() bool {
	switch k {
	case KindZoneDefaults, KindZoneSettings, KindMarkerPositions:
		return true
	default:
		return false
	}
}

// Ref identifies one stored entry.
type Ref struct {
	Kind Kind
	Zone string
}

// ZoneDefaults refers to the saved defaults of zone.
func ZoneDefaults(zone string) Ref { return Ref{Kind: KindZoneDefaults, Zone: zone} }

// GlobalDefaults refers to the defaults shared by every zone.
func GlobalDefaults() Ref { return Ref{Kind: KindGlobalDefaults} }

// ZoneSettings refers to the live edits of zone.
func ZoneSettings(zone string) Ref { return Ref{Kind: KindZoneSettings, Zone: zone} }

// GlobalSettings refers to the live edits shared by every zone.
func GlobalSettings() Ref { return Ref{Kind: KindGlobalSettings} }

// MarkerPositions refers to the marker overrides of zone.
func MarkerPositions(zone string) Ref { return Ref{Kind: KindMarkerPositions, Zone: zone} }

// Identifier returns the namespace-free key for the ref.
func (r Ref) Identifier() (string, error) {
	switch r.Kind {
	case KindGlobalDefaults, KindGlobalSettings:
		return string(r.Kind), nil
	case KindZoneDefaults, KindZoneSettings, KindMarkerPositions:
		zone := strings.TrimSpace(r.Zone)
		if zone == "" {
			return "", fmt.Errorf("store: zone is required for %q", r.Kind)
		}
		return fmt.Sprintf("%s/%s", r.Kind, zone), nil
	default:
		return "", fmt.Errorf("store: unsupported kind %q", r.Kind)
	}
}

// DefaultNamespace prefixes every key written by this module.
const DefaultNamespace = "ember.map"

// Keyspace maps refs onto backend keys.
type Keyspace struct {
	Namespace string
}

// Key returns the full backend key for ref.
func (k Keyspace) Key(ref Ref) (string, error) {
	id, err := ref.Identifier()
	if err != nil {
		return "", err
	}
	ns := strings.Trim(k.Namespace, "/")
	if ns == "" {
		return id, nil
	}
	return ns + "/" + id, nil
}
