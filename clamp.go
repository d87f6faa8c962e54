package mapprefs

import (
	"math"
	"sort"
)

// Range is an inclusive numeric interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Clamp pins v into the range. NaN collapses to Min.
func (r Range) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return r.Min
	}
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Contains reports whether v already lies within the range.
func (r Range) Contains(v float64) bool {
	return !math.IsNaN(v) && v >= r.Min && v <= r.Max
}

var (
	HueRange         = Range{Min: 0, Max: 360}
	MultiplierRange  = Range{Min: 0.6, Max: 2.4}
	AreaRadiusRange  = Range{Min: 0.05, Max: 2.0}
	AreaOpacityRange = Range{Min: 0, Max: 0.8}
	MapOpacityRange  = Range{Min: 0.4, Max: 1.0}
	MapScaleRange    = Range{Min: 1.0, Max: 2.0}
)

var numericRanges = map[string]Range{
	"tuning.harvest.hue":              HueRange,
	"tuning.harvest.nodeSize":         MultiplierRange,
	"tuning.harvest.nodeRadius":       MultiplierRange,
	"tuning.event.hue":                HueRange,
	"tuning.event.nodeSize":           MultiplierRange,
	"tuning.event.nodeRadius":         MultiplierRange,
	"tuning.event.areaRadius":         AreaRadiusRange,
	"tuning.event.areaOpacity":        AreaOpacityRange,
	"tuning.raidBoss.hue":             HueRange,
	"tuning.raidBoss.nodeSize":        MultiplierRange,
	"tuning.raidBoss.nodeRadius":      MultiplierRange,
	"tuning.raidBoss.areaRadius":      AreaRadiusRange,
	"tuning.raidBoss.areaOpacity":     AreaOpacityRange,
	"tuning.playerBase.hue":           HueRange,
	"tuning.playerBase.footprintSize": MultiplierRange,
	"tuning.playerBase.cornerRadius":  MultiplierRange,
	"mapOpacity":                      MapOpacityRange,
	"mapScale":                        MapScaleRange,
}

// NumericPaths returns every clamped field path in sorted order.
func NumericPaths() []string {
	paths := make([]string, 0, len(numericRanges))
	for path := range numericRanges {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// RangeFor returns the documented range of a numeric field path.
func RangeFor(path string) (Range, bool) {
	r, ok := numericRanges[path]
	return r, ok
}

// Clamp returns b with every numeric field pinned into its documented range.
// Stored values may predate a schema change, so this runs on every load.
func (b Bundle) Clamp() Bundle {
	out := b
	h := &out.Tuning.Harvest
	h.Hue = HueRange.Clamp(h.Hue)
	h.NodeSize = MultiplierRange.Clamp(h.NodeSize)
	h.NodeRadius = MultiplierRange.Clamp(h.NodeRadius)

	clampArea(&out.Tuning.Event)
	clampArea(&out.Tuning.RaidBoss)

	pb := &out.Tuning.PlayerBase
	pb.Hue = HueRange.Clamp(pb.Hue)
	pb.FootprintSize = MultiplierRange.Clamp(pb.FootprintSize)
	pb.CornerRadius = MultiplierRange.Clamp(pb.CornerRadius)

	out.MapOpacity = MapOpacityRange.Clamp(out.MapOpacity)
	out.MapScale = MapScaleRange.Clamp(out.MapScale)
	return out
}

func clampArea(t *AreaTuning) {
	t.Hue = HueRange.Clamp(t.Hue)
	t.NodeSize = MultiplierRange.Clamp(t.NodeSize)
	t.NodeRadius = MultiplierRange.Clamp(t.NodeRadius)
	t.AreaRadius = AreaRadiusRange.Clamp(t.AreaRadius)
	t.AreaOpacity = AreaOpacityRange.Clamp(t.AreaOpacity)
}
