// Package markers tracks user-moved marker positions on a zone map.
//
// Positions are percentages of the map container, (0,0) top-left to
// (100,100) bottom-right. An override replaces a marker's authored default
// position; markers without one render at their default.
package markers

import (
	"errors"
	"math"

	"github.com/paulmach/orb"

	mapprefs "github.com/goliatone/go-mapprefs"
)

var (
	// ErrNotDraggable reports a drag attempt on a fixed marker.
	ErrNotDraggable = errors.New("markers: marker is not draggable")
	// ErrUnknownMarker reports a marker id missing from the zone.
	ErrUnknownMarker = errors.New("markers: unknown marker")
	// ErrNoDrag reports a move or end without an active drag.
	ErrNoDrag = errors.New("markers: no drag in progress")
	// ErrInvalidContainer reports a container without a usable size.
	ErrInvalidContainer = errors.New("markers: container must have a positive size")
)

// Bounds is the valid coordinate space for marker positions.
var Bounds = orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{100, 100}}

// Kind is the marker category.
type Kind string

const (
	KindHarvest    Kind = "harvest"
	KindEvent      Kind = "event"
	KindRaidBoss   Kind = "raid-boss"
	KindPlayerBase Kind = "player-base"
)

// ParseKind maps a catalog kind onto a Kind.
func ParseKind(s string) (Kind, bool) {
	switch k := Kind(s); k {
	case KindHarvest, KindEvent, KindRaidBoss, KindPlayerBase:
		return k, true
	default:
		return "", false
	}
}

// Draggable reports whether users may move markers of this kind. Base
// footprints are fixed.
func (k Kind) Draggable() bool {
	switch k {
	case KindHarvest, KindEvent, KindRaidBoss:
		return true
	default:
		return false
	}
}

// Category returns the tuning category that styles this kind.
func (k Kind) Category() mapprefs.Category {
	switch k {
	case KindEvent:
		return mapprefs.CategoryEvent
	case KindRaidBoss:
		return mapprefs.CategoryRaidBoss
	case KindPlayerBase:
		return mapprefs.CategoryPlayerBase
	default:
		return mapprefs.CategoryHarvest
	}
}

// Marker is an authored map marker.
type Marker struct {
	ID      string
	Kind    Kind
	Default orb.Point
}

// Container is the on-screen size of the map in pixels.
type Container struct {
	Width  float64
	Height float64
}

func (c Container) valid() bool {
	return c.Width > 0 && c.Height > 0
}

// ClampPoint pins p inside Bounds. NaN coordinates collapse to 0.
func ClampPoint(p orb.Point) orb.Point {
	return orb.Point{clampAxis(p[0]), clampAxis(p[1])}
}

func clampAxis(v float64) float64 {
	if math.IsNaN(v) {
		return Bounds.Min[0]
	}
	return math.Max(Bounds.Min[0], math.Min(Bounds.Max[0], v))
}
