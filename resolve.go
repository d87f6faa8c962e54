package mapprefs

// Snapshot is one stored patch as read from a preference key.
type Snapshot struct {
	Patch Patch
	ID    string
	Key   string
}

// Inputs carries the four stored tiers for one zone. A nil field means the
// key was absent (or unreadable).
type Inputs struct {
	Zone           string
	ZoneDefaults   *Snapshot
	GlobalDefaults *Snapshot
	ZoneSettings   *Snapshot
	GlobalSettings *Snapshot
}

// Resolve computes the working bundle for a zone without touching storage.
//
// Precedence, weakest to strongest: shipped defaults, then the zone's
// defaults (or the global defaults when the zone has none), then the zone's
// settings if no global settings exist, then the global settings.
func Resolve(in Inputs, opts ...Option) (*View, error) {
	layers := []Layer{NewLayer(TierShipped, ShippedDefaults().Patch())}

	defaults := in.ZoneDefaults
	if defaults == nil {
		defaults = in.GlobalDefaults
	}
	if defaults != nil {
		layers = append(layers, snapshotLayer(TierDefaults, defaults))
	}
	if in.GlobalSettings == nil && in.ZoneSettings != nil {
		layers = append(layers, snapshotLayer(TierZoneSettings, in.ZoneSettings))
	}
	if in.GlobalSettings != nil {
		layers = append(layers, snapshotLayer(TierGlobalSettings, in.GlobalSettings))
	}

	stack, err := NewStack(layers...)
	if err != nil {
		return nil, err
	}
	return stack.Merge(append([]Option{WithZone(in.Zone)}, opts...)...), nil
}

func snapshotLayer(tier Tier, s *Snapshot) Layer {
	return NewLayer(tier, s.Patch, WithKey(s.Key), WithSnapshotID(s.ID))
}
