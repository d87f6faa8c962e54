// Package resolver computes and maintains the working preference bundle of
// a zone map.
//
// Opening a session runs Migrate once, which seeds missing global keys from
// the seed zone and lets a zone adopt the global defaults. It then reads the
// four stored tiers and resolves them with mapprefs.Resolve. After that the
// session's working bundle is the source of truth. Every edit writes the
// full bundle to the zone's settings key, and only explicit actions write the
// defaults and global keys.
package resolver

import (
	"context"

	mapprefs "github.com/goliatone/go-mapprefs"
	"github.com/goliatone/go-mapprefs/pkg/store"
)

// MigrationReport lists the writes Migrate performed.
type MigrationReport struct {
	Zone     string
	SeedZone string
	// GlobalDefaultsFrom is the key globalDefaults was seeded from.
	GlobalDefaultsFrom string
	// AdoptedGlobalDefaults is set when the zone copied globalDefaults into
	// its own defaults.
	AdoptedGlobalDefaults bool
	// GlobalSettingsFrom is the key globalSettings was seeded from.
	GlobalSettingsFrom string
	// PromotedZoneSettings is set when the zone's settings became its
	// defaults because no defaults existed anywhere.
	PromotedZoneSettings bool
}

// Changed reports whether any key was written.
func (r MigrationReport) Changed() bool {
	return r.GlobalDefaultsFrom != "" || r.AdoptedGlobalDefaults ||
		r.GlobalSettingsFrom != "" || r.PromotedZoneSettings
}

// Migrate seeds and adopts stored bundles for zone. Each write is one-shot:
// it only targets keys that are absent, so running Migrate again is a no-op
// unless keys were removed in between. Failed writes leave the target absent.
func Migrate(ctx context.Context, safe *store.Safe, zone, seedZone string) MigrationReport {
	report := MigrationReport{Zone: zone, SeedZone: seedZone}

	zoneDefaults := safe.LoadPatch(ctx, store.ZoneDefaults(zone))
	globalDefaults := safe.LoadPatch(ctx, store.GlobalDefaults())

	if globalDefaults == nil {
		for _, ref := range []store.Ref{store.ZoneSettings(seedZone), store.ZoneDefaults(seedZone)} {
			src := safe.LoadPatch(ctx, ref)
			if src == nil {
				continue
			}
			if saved, err := safe.CopyPatch(ctx, src, store.GlobalDefaults()); err == nil {
				globalDefaults = saved
				report.GlobalDefaultsFrom = src.Key
			}
			break
		}
	}

	if zoneDefaults == nil && globalDefaults != nil {
		if _, err := safe.CopyPatch(ctx, globalDefaults, store.ZoneDefaults(zone)); err == nil {
			report.AdoptedGlobalDefaults = true
		}
	}

	if safe.LoadPatch(ctx, store.GlobalSettings()) == nil {
		sources := []store.Ref{
			store.ZoneSettings(seedZone),
			store.ZoneDefaults(seedZone),
			store.ZoneSettings(zone),
			store.ZoneDefaults(zone),
		}
		for _, ref := range sources {
			src := safe.LoadPatch(ctx, ref)
			if src == nil {
				continue
			}
			if _, err := safe.CopyPatch(ctx, src, store.GlobalSettings()); err == nil {
				report.GlobalSettingsFrom = src.Key
			}
			break
		}
	}

	if zoneDefaults == nil && globalDefaults == nil {
		if settings := safe.LoadPatch(ctx, store.ZoneSettings(zone)); settings != nil {
			if _, err := safe.CopyPatch(ctx, settings, store.ZoneDefaults(zone)); err == nil {
				report.PromotedZoneSettings = true
			}
		}
	}

	return report
}

// ReadInputs loads the four tiers for zone. Absent and unreadable keys are
// nil.
func ReadInputs(ctx context.Context, safe *store.Safe, zone string) mapprefs.Inputs {
	return mapprefs.Inputs{
		Zone:           zone,
		ZoneDefaults:   safe.LoadPatch(ctx, store.ZoneDefaults(zone)),
		GlobalDefaults: safe.LoadPatch(ctx, store.GlobalDefaults()),
		ZoneSettings:   safe.LoadPatch(ctx, store.ZoneSettings(zone)),
		GlobalSettings: safe.LoadPatch(ctx, store.GlobalSettings()),
	}
}
