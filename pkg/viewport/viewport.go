// Package viewport holds the zoom and pan state of a map view.
//
// Zoom is a scale factor in [MinZoom, MaxZoom]. Pan is an offset in pixels
// applied after scaling, and is bounded so the scaled map always covers the
// container.
package viewport

import (
	"math"

	"github.com/paulmach/orb"

	mapprefs "github.com/goliatone/go-mapprefs"
)

const (
	// ZoomStep is the change applied by the zoom buttons.
	ZoomStep = 0.1
	// WheelFactor converts wheel delta units into zoom change. Scrolling down
	// (positive delta) zooms out.
	WheelFactor = 0.001
)

var (
	MinZoom = mapprefs.MapScaleRange.Min
	MaxZoom = mapprefs.MapScaleRange.Max
)

// Size is a container size in pixels.
type Size struct {
	Width  float64
	Height float64
}

// ClampZoom pins z into the zoom range.
func ClampZoom(z float64) float64 {
	return mapprefs.MapScaleRange.Clamp(z)
}

// PanBounds returns the allowed pan offsets for a container at zoom z. The
// bound on each axis is size*(z-1)/2; at zoom 1 the bound collapses to the
// origin.
func PanBounds(container Size, z float64) orb.Bound {
	z = ClampZoom(z)
	hx := math.Max(0, container.Width) * (z - 1) / 2
	hy := math.Max(0, container.Height) * (z - 1) / 2
	return orb.Bound{Min: orb.Point{-hx, -hy}, Max: orb.Point{hx, hy}}
}

// ClampPan pins pan into PanBounds.
func ClampPan(pan orb.Point, container Size, z float64) orb.Point {
	b := PanBounds(container, z)
	return orb.Point{
		clamp(pan[0], b.Min[0], b.Max[0]),
		clamp(pan[1], b.Min[1], b.Max[1]),
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(lo, math.Min(hi, v))
}

// Viewport is the live zoom and pan of one map.
type Viewport struct {
	container Size
	zoom      float64
	pan       orb.Point
}

// New returns a viewport at zoom, clamped.
func New(container Size, zoom float64) *Viewport {
	v := &Viewport{container: container}
	v.SetZoom(zoom)
	return v
}

// Zoom returns the current zoom.
func (v *Viewport) Zoom() float64 {
	return v.zoom
}

// Pan returns the current pan offset.
func (v *Viewport) Pan() orb.Point {
	return v.pan
}

// Container returns the container size.
func (v *Viewport) Container() Size {
	return v.container
}

// CanPan reports whether the map is zoomed in far enough to pan.
func (v *Viewport) CanPan() bool {
	return v.zoom > MinZoom
}

// SetZoom applies a slider value. Pan is re-clamped to the new bounds and
// reset once the map is back at fit.
func (v *Viewport) SetZoom(z float64) float64 {
	v.zoom = ClampZoom(z)
	if v.zoom <= MinZoom {
		v.pan = orb.Point{}
	} else {
		v.pan = ClampPan(v.pan, v.container, v.zoom)
	}
	return v.zoom
}

// Step applies n button presses; negative n zooms out.
func (v *Viewport) Step(n int) float64 {
	// Round to the step grid so repeated presses do not drift.
	next := math.Round((v.zoom+float64(n)*ZoomStep)*1e6) / 1e6
	return v.SetZoom(next)
}

// Wheel applies a mouse wheel delta.
func (v *Viewport) Wheel(deltaY float64) float64 {
	return v.SetZoom(v.zoom - deltaY*WheelFactor)
}

// PanBy moves the map by a pointer delta in pixels. It is a no-op at fit.
func (v *Viewport) PanBy(dx, dy float64) orb.Point {
	if !v.CanPan() {
		v.pan = orb.Point{}
		return v.pan
	}
	v.pan = ClampPan(orb.Point{v.pan[0] + dx, v.pan[1] + dy}, v.container, v.zoom)
	return v.pan
}

// Resize updates the container and re-clamps pan.
func (v *Viewport) Resize(container Size) {
	v.container = container
	v.SetZoom(v.zoom)
}

// Reset returns to fit.
func (v *Viewport) Reset() {
	v.SetZoom(MinZoom)
}
