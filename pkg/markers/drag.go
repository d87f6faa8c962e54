package markers

import (
	"github.com/paulmach/orb"
)

// Drag is one in-progress marker move.
type Drag struct {
	marker    Marker
	container Container
	start     orb.Point
	current   orb.Point
}

// Begin captures the marker's rendered position as the drag origin.
func Begin(m Marker, overrides Overrides, container Container) (*Drag, error) {
	if !m.Kind.Draggable() {
		return nil, ErrNotDraggable
	}
	if !container.valid() {
		return nil, ErrInvalidContainer
	}
	start := ClampPoint(overrides.Position(m))
	return &Drag{marker: m, container: container, start: start, current: start}, nil
}

// Move applies a pointer delta in client pixels measured from the drag start.
// The map content is scaled, so the delta is divided by scale before being
// converted to container percent.
func (d *Drag) Move(dxPx, dyPx, scale float64) orb.Point {
	if scale <= 0 {
		scale = 1
	}
	dx := dxPx / d.container.Width * 100 / scale
	dy := dyPx / d.container.Height * 100 / scale
	d.current = ClampPoint(orb.Point{d.start[0] + dx, d.start[1] + dy})
	return d.current
}

// Marker returns the marker being dragged.
func (d *Drag) Marker() Marker {
	return d.marker
}

// Start returns the drag origin.
func (d *Drag) Start() orb.Point {
	return d.start
}

// Position returns the current drag position.
func (d *Drag) Position() orb.Point {
	return d.current
}
