package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	mapprefs "github.com/goliatone/go-mapprefs"
	"github.com/goliatone/go-mapprefs/pkg/activity"
	"github.com/goliatone/go-mapprefs/pkg/markers"
	"github.com/goliatone/go-mapprefs/pkg/store"
	"github.com/goliatone/go-mapprefs/pkg/zones"
)

// ErrZoneRequired reports an empty zone id.
var ErrZoneRequired = errors.New("resolver: zone id is required")

// Session holds the working bundle of one zone map.
type Session struct {
	safe     *store.Safe
	zone     string
	seed     string
	known    bool
	catalog  *zones.Catalog
	emitter  *activity.Emitter
	logger   *zap.Logger
	viewOpts []mapprefs.Option

	mu        sync.Mutex
	resolved  *mapprefs.View
	working   mapprefs.Bundle
	status    string
	migration MigrationReport
}

// Option configures a Session.
type Option func(*Session)

// WithCatalog replaces the embedded zone catalog.
func WithCatalog(c *zones.Catalog) Option {
	return func(s *Session) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithSeedZone overrides the catalog's seed zone.
func WithSeedZone(zone string) Option {
	return func(s *Session) {
		s.seed = zone
	}
}

// WithEmitter records explicit saves as activity.
func WithEmitter(e *activity.Emitter) Option {
	return func(s *Session) {
		s.emitter = e
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithViewOptions passes options to every resolved view, for example a
// query evaluator.
func WithViewOptions(opts ...mapprefs.Option) Option {
	return func(s *Session) {
		s.viewOpts = append(s.viewOpts, opts...)
	}
}

// Open migrates and resolves zone. Any non-empty zone id resolves; a zone the
// catalog does not list simply has no markers. Storage failures never fail
// Open; the session falls back to shipped defaults.
func Open(ctx context.Context, safe *store.Safe, zone string, opts ...Option) (*Session, error) {
	zone = strings.TrimSpace(zone)
	if zone == "" {
		return nil, ErrZoneRequired
	}
	s := &Session{
		safe:    safe,
		zone:    zone,
		catalog: zones.Default(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.known = s.catalog.Has(zone)
	if !s.known {
		s.logger.Warn("zone not in catalog, map has no markers",
			zap.String("zone", zone),
			zap.Strings("did_you_mean", s.catalog.Suggest(zone)),
		)
	}
	if s.seed == "" {
		s.seed = s.catalog.Seed()
	}

	s.migration = Migrate(ctx, safe, zone, s.seed)
	if s.migration.Changed() {
		s.logger.Info("preferences migrated",
			zap.String("zone", zone),
			zap.String("seed_zone", s.seed),
			zap.String("global_defaults_from", s.migration.GlobalDefaultsFrom),
			zap.Bool("adopted_global_defaults", s.migration.AdoptedGlobalDefaults),
			zap.String("global_settings_from", s.migration.GlobalSettingsFrom),
			zap.Bool("promoted_zone_settings", s.migration.PromotedZoneSettings),
		)
		s.emit(ctx, activity.VerbMigrated, activity.PreferenceEventInput{Zone: zone})
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the stored tiers and replaces the working bundle. It is
// used when another writer changed the store.
func (s *Session) Reload(ctx context.Context) error {
	view, err := mapprefs.Resolve(ReadInputs(ctx, s.safe, s.zone), s.viewOpts...)
	if err != nil {
		return fmt.Errorf("resolver: resolve %q: %w", s.zone, err)
	}
	s.mu.Lock()
	s.resolved = view
	s.working = view.Bundle
	s.mu.Unlock()
	return nil
}

// Zone returns the session's zone.
func (s *Session) Zone() string {
	return s.zone
}

// Known reports whether the catalog lists the session's zone.
func (s *Session) Known() bool {
	return s.known
}

// SeedZone returns the zone used to seed global keys.
func (s *Session) SeedZone() string {
	return s.seed
}

// Migration returns what Open's migration wrote.
func (s *Session) Migration() MigrationReport {
	return s.migration
}

// Bundle returns the working bundle.
func (s *Session) Bundle() mapprefs.Bundle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.working
}

// Resolved returns the view produced by the last resolution, with the
// provenance of every field. Edits made since are not reflected.
func (s *Session) Resolved() *mapprefs.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolved
}

// View wraps the working bundle for queries.
func (s *Session) View() *mapprefs.View {
	opts := append([]mapprefs.Option{mapprefs.WithZone(s.zone)}, s.viewOpts...)
	return mapprefs.NewView(s.Bundle(), opts...)
}

// Status returns the message left by the last successful explicit action.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Update edits a copy of the working bundle and persists the result to the
// zone's settings. edit runs without the session lock held, so it may call
// back into the session; concurrent updates are last-writer-wins.
func (s *Session) Update(ctx context.Context, edit func(*mapprefs.Bundle)) mapprefs.Bundle {
	next := s.Bundle()
	if edit != nil {
		edit(&next)
	}
	next = next.Clamp()
	s.mu.Lock()
	s.working = next
	s.mu.Unlock()

	s.persistSettings(ctx, next)
	return next
}

// Set applies one dotted-path edit, e.g. "tuning.harvest.hue" = "200".
func (s *Session) Set(ctx context.Context, path, value string) (mapprefs.Bundle, error) {
	s.mu.Lock()
	next, err := s.working.Set(path, value)
	if err != nil {
		s.mu.Unlock()
		return s.Bundle(), err
	}
	next = next.Clamp()
	s.working = next
	s.mu.Unlock()

	s.persistSettings(ctx, next)
	return next, nil
}

func (s *Session) persistSettings(ctx context.Context, b mapprefs.Bundle) {
	if _, err := s.safe.SavePatch(ctx, store.ZoneSettings(s.zone), b.Patch()); err != nil {
		s.logger.Debug("working bundle not persisted", zap.String("zone", s.zone), zap.Error(err))
	}
}

// SaveZoneDefaults writes the working bundle to the zone's defaults and
// settings. It reports whether both writes succeeded.
func (s *Session) SaveZoneDefaults(ctx context.Context) bool {
	snap, ok := s.write(ctx, s.Bundle(), store.ZoneDefaults(s.zone), store.ZoneSettings(s.zone))
	if !ok {
		return false
	}
	s.succeed(ctx, fmt.Sprintf("Saved defaults for %s", s.zone), activity.VerbZoneDefaultsSaved, activity.PreferenceEventInput{
		Zone:       s.zone,
		SnapshotID: snap.ID,
		Keys:       []string{s.safe.Key(store.ZoneDefaults(s.zone)), s.safe.Key(store.ZoneSettings(s.zone))},
	})
	return true
}

// ResetZoneDefaults re-applies the zone's saved defaults to the working
// bundle without persisting. It reports false when none are stored.
func (s *Session) ResetZoneDefaults(ctx context.Context) bool {
	snap := s.safe.LoadPatch(ctx, store.ZoneDefaults(s.zone))
	if snap == nil {
		return false
	}
	s.apply(snap.Patch)
	s.succeed(ctx, fmt.Sprintf("Restored defaults for %s", s.zone), activity.VerbZoneDefaultsReset, activity.PreferenceEventInput{
		Zone:       s.zone,
		SnapshotID: snap.ID,
	})
	return true
}

// SaveGlobalDefaults writes the working bundle to the global defaults and
// global settings.
func (s *Session) SaveGlobalDefaults(ctx context.Context) bool {
	snap, ok := s.write(ctx, s.Bundle(), store.GlobalDefaults(), store.GlobalSettings())
	if !ok {
		return false
	}
	s.succeed(ctx, fmt.Sprintf("Saved global defaults from %s", s.zone), activity.VerbGlobalSaved, activity.PreferenceEventInput{
		Zone:       s.zone,
		SnapshotID: snap.ID,
		Keys:       []string{s.safe.Key(store.GlobalDefaults()), s.safe.Key(store.GlobalSettings())},
	})
	return true
}

// ApplyGlobalDefaults re-applies the stored global defaults to the working
// bundle without persisting.
func (s *Session) ApplyGlobalDefaults(ctx context.Context) bool {
	snap := s.safe.LoadPatch(ctx, store.GlobalDefaults())
	if snap == nil {
		return false
	}
	s.apply(snap.Patch)
	s.succeed(ctx, fmt.Sprintf("Applied global defaults to %s", s.zone), activity.VerbGlobalApplied, activity.PreferenceEventInput{
		Zone:       s.zone,
		SnapshotID: snap.ID,
	})
	return true
}

// ApplyToAllZones writes the working bundle to the global keys and to the
// defaults and settings of every catalog zone. Writes continue past
// failures; the status is only set when all of them succeeded.
func (s *Session) ApplyToAllZones(ctx context.Context) bool {
	refs := []store.Ref{store.GlobalDefaults(), store.GlobalSettings()}
	ids := s.catalog.IDs()
	if !s.known {
		ids = append(ids, s.zone)
	}
	for _, id := range ids {
		refs = append(refs, store.ZoneDefaults(id), store.ZoneSettings(id))
	}
	snap, ok := s.write(ctx, s.Bundle(), refs...)
	if !ok {
		return false
	}
	s.succeed(ctx, fmt.Sprintf("Applied %s settings to all %d zones", s.zone, len(ids)), activity.VerbAppliedToAll, activity.PreferenceEventInput{
		Zone:       s.zone,
		SnapshotID: snap.ID,
		Zones:      ids,
	})
	return true
}

// MarkerEditor opens the marker override editor for the session's zone.
// Zones missing from the catalog get an editor without markers.
func (s *Session) MarkerEditor(ctx context.Context) *markers.Editor {
	var list []markers.Marker
	if zone, err := s.catalog.Zone(s.zone); err == nil {
		list = zone.Markers
	}
	return markers.NewEditor(ctx, s.safe, s.zone, list,
		markers.WithEmitter(s.emitter),
		markers.WithLogger(s.logger),
	)
}

func (s *Session) apply(p mapprefs.Patch) {
	s.mu.Lock()
	s.working = s.working.Apply(p).Clamp()
	s.mu.Unlock()
}

// write saves b to every ref. It returns the last snapshot written and
// whether all writes succeeded.
func (s *Session) write(ctx context.Context, b mapprefs.Bundle, refs ...store.Ref) (mapprefs.Snapshot, bool) {
	patch := b.Patch()
	var last mapprefs.Snapshot
	ok := true
	for _, ref := range refs {
		snap, err := s.safe.SavePatch(ctx, ref, patch)
		if err != nil {
			ok = false
			continue
		}
		last = snap
	}
	if !ok {
		s.logger.Info("explicit save incomplete", zap.String("zone", s.zone), zap.Error(s.safe.LastError()))
	}
	return last, ok
}

func (s *Session) succeed(ctx context.Context, status, verb string, input activity.PreferenceEventInput) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
	s.logger.Info(status, zap.String("zone", s.zone), zap.String("verb", verb))
	s.emit(ctx, verb, input)
}

func (s *Session) emit(ctx context.Context, verb string, input activity.PreferenceEventInput) {
	if err := s.emitter.Emit(ctx, activity.BuildPreferenceEvent(verb, input)); err != nil {
		s.logger.Warn("activity hook failed", zap.String("verb", verb), zap.Error(err))
	}
}
