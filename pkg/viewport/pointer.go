package viewport

import (
	"errors"

	"github.com/paulmach/orb"
)

// Gesture is what a pointer session is doing.
type Gesture int

const (
	GestureNone Gesture = iota
	GesturePan
	GestureMarker
)

func (g Gesture) String() string {
	switch g {
	case GesturePan:
		return "pan"
	case GestureMarker:
		return "marker"
	default:
		return "none"
	}
}

// ErrGestureActive reports a pointer down while a session is already open.
var ErrGestureActive = errors.New("viewport: pointer session already active")

// Pointer arbitrates one pointer session between panning the map and
// dragging a marker. A session commits to one gesture on pointer down.
type Pointer struct {
	view     *Viewport
	editMode bool
	gesture  Gesture
	last     orb.Point
}

// NewPointer binds a pointer arbiter to a viewport.
func NewPointer(view *Viewport) *Pointer {
	return &Pointer{view: view}
}

// SetEditMode toggles marker editing. Sessions already open keep their
// gesture.
func (p *Pointer) SetEditMode(on bool) {
	p.editMode = on
}

// EditMode reports whether marker editing is on.
func (p *Pointer) EditMode() bool {
	return p.editMode
}

// Gesture returns the active gesture.
func (p *Pointer) Gesture() Gesture {
	return p.gesture
}

// Down opens a session at client position at. onMarker reports whether the
// pointer landed on a draggable marker. Marker sessions require edit mode;
// otherwise the session pans when the map can pan.
func (p *Pointer) Down(at orb.Point, onMarker bool) (Gesture, error) {
	if p.gesture != GestureNone {
		return p.gesture, ErrGestureActive
	}
	switch {
	case onMarker && p.editMode:
		p.gesture = GestureMarker
	case p.view.CanPan():
		p.gesture = GesturePan
	default:
		p.gesture = GestureNone
	}
	p.last = at
	return p.gesture, nil
}

// Move feeds a pointer position. During a pan session the map pans by the
// delta since the previous position; marker sessions never pan.
func (p *Pointer) Move(at orb.Point) orb.Point {
	delta := orb.Point{at[0] - p.last[0], at[1] - p.last[1]}
	p.last = at
	if p.gesture == GesturePan {
		p.view.PanBy(delta[0], delta[1])
	}
	return delta
}

// Up closes the session and returns the gesture it carried.
func (p *Pointer) Up() Gesture {
	g := p.gesture
	p.gesture = GestureNone
	return g
}
