package markers

import (
	"context"
	"fmt"
	"sync"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/goliatone/go-mapprefs/layering"
	"github.com/goliatone/go-mapprefs/pkg/activity"
	"github.com/goliatone/go-mapprefs/pkg/store"
)

// Editor owns the override mapping of one zone and persists it when a drag
// ends.
type Editor struct {
	safe    *store.Safe
	zone    string
	markers map[string]Marker
	order   []string
	emitter *activity.Emitter
	logger  *zap.Logger

	mu        sync.Mutex
	overrides Overrides
	drag      *Drag
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithEmitter records marker moves as activity.
func WithEmitter(e *activity.Emitter) EditorOption {
	return func(ed *Editor) {
		ed.emitter = e
	}
}

// WithLogger sets the editor logger.
func WithLogger(logger *zap.Logger) EditorOption {
	return func(ed *Editor) {
		if logger != nil {
			ed.logger = logger
		}
	}
}

// NewEditor loads the stored overrides for zone. Unreadable or corrupt
// storage yields an empty mapping. Overrides for ids not in list are kept so
// that a later catalog revision can pick them up again.
func NewEditor(ctx context.Context, safe *store.Safe, zone string, list []Marker, opts ...EditorOption) *Editor {
	ed := &Editor{
		safe:      safe,
		zone:      zone,
		markers:   make(map[string]Marker, len(list)),
		logger:    zap.NewNop(),
		overrides: Overrides{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(ed)
		}
	}
	for _, m := range list {
		if _, dup := ed.markers[m.ID]; !dup {
			ed.order = append(ed.order, m.ID)
		}
		ed.markers[m.ID] = m
	}
	var stored Overrides
	if safe != nil && safe.LoadJSON(ctx, store.MarkerPositions(zone), &stored) && stored != nil {
		ed.overrides = stored
	}
	return ed
}

// Zone returns the zone being edited.
func (ed *Editor) Zone() string {
	return ed.zone
}

// Markers returns the zone's markers in catalog order.
func (ed *Editor) Markers() []Marker {
	out := make([]Marker, 0, len(ed.order))
	for _, id := range ed.order {
		out = append(out, ed.markers[id])
	}
	return out
}

// Overrides returns a copy of the current mapping.
func (ed *Editor) Overrides() Overrides {
	ed.mu.Lock()
	defer ed.mu.Unlock()
	return ed.overrides.Clone()
}

// Position returns where marker id renders, including an in-progress drag.
func (ed *Editor) Position(id string) (orb.Point, error) {
	m, ok := ed.markers[id]
	if !ok {
		return orb.Point{}, fmt.Errorf("%w %q", ErrUnknownMarker, id)
	}
	ed.mu.Lock()
	defer ed.mu.Unlock()
	if ed.drag != nil && ed.drag.marker.ID == id {
		return ed.drag.Position(), nil
	}
	return ed.overrides.Position(m), nil
}

// Begin starts dragging marker id. A drag already in progress is dropped.
func (ed *Editor) Begin(id string, container Container) error {
	m, ok := ed.markers[id]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownMarker, id)
	}
	ed.mu.Lock()
	defer ed.mu.Unlock()
	drag, err := Begin(m, ed.overrides, container)
	if err != nil {
		return fmt.Errorf("markers: begin %q: %w", id, err)
	}
	ed.drag = drag
	return nil
}

// Dragging reports whether a drag is in progress.
func (ed *Editor) Dragging() bool {
	ed.mu.Lock()
	defer ed.mu.Unlock()
	return ed.drag != nil
}

// Move updates the active drag. Nothing is persisted until End.
func (ed *Editor) Move(dxPx, dyPx, scale float64) (orb.Point, error) {
	ed.mu.Lock()
	defer ed.mu.Unlock()
	if ed.drag == nil {
		return orb.Point{}, ErrNoDrag
	}
	return ed.drag.Move(dxPx, dyPx, scale), nil
}

// Cancel abandons the active drag.
func (ed *Editor) Cancel() {
	ed.mu.Lock()
	ed.drag = nil
	ed.mu.Unlock()
}

// End commits the active drag and writes the zone's full override mapping.
// A failed write keeps the in-memory position.
func (ed *Editor) End(ctx context.Context) (orb.Point, error) {
	ed.mu.Lock()
	drag := ed.drag
	if drag == nil {
		ed.mu.Unlock()
		return orb.Point{}, ErrNoDrag
	}
	ed.drag = nil
	final := drag.Position()
	ed.overrides = layering.MergeLayers(Overrides{drag.marker.ID: final}, ed.overrides)
	snapshot := ed.overrides.Clone()
	ed.mu.Unlock()

	if ed.safe != nil {
		if err := ed.safe.SaveJSON(ctx, store.MarkerPositions(ed.zone), snapshot); err != nil {
			ed.logger.Debug("marker positions not persisted",
				zap.String("zone", ed.zone),
				zap.String("marker", drag.marker.ID),
				zap.Error(err),
			)
			return final, nil
		}
	}
	event := activity.BuildMarkerMovedEvent(activity.MarkerMovedInput{
		Zone:     ed.zone,
		MarkerID: drag.marker.ID,
		From:     [2]float64(drag.start),
		To:       [2]float64(final),
	})
	if err := ed.emitter.Emit(ctx, event); err != nil {
		ed.logger.Warn("marker activity hook failed", zap.Error(err))
	}
	return final, nil
}
