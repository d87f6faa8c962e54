package markers

import (
	"encoding/json"
	"sort"

	"github.com/paulmach/orb"

	"github.com/goliatone/go-mapprefs/layering"
)

// Overrides maps marker ids to user positions for one zone.
type Overrides map[string]orb.Point

// Position returns the override for m, or its authored default.
func (o Overrides) Position(m Marker) orb.Point {
	if p, ok := o[m.ID]; ok {
		return p
	}
	return m.Default
}

// Clone copies the mapping. A nil mapping clones to an empty one.
func (o Overrides) Clone() Overrides {
	if o == nil {
		return Overrides{}
	}
	return layering.Clone(o)
}

// IDs returns the overridden marker ids, sorted.
func (o Overrides) IDs() []string {
	ids := make([]string, 0, len(o))
	for id := range o {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type storedPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MarshalJSON writes overrides as {"id":{"x":..,"y":..}}.
func (o Overrides) MarshalJSON() ([]byte, error) {
	out := make(map[string]storedPoint, len(o))
	for id, p := range o {
		out[id] = storedPoint{X: p[0], Y: p[1]}
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the stored form, clamping every point.
func (o *Overrides) UnmarshalJSON(data []byte) error {
	var raw map[string]storedPoint
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Overrides, len(raw))
	for id, p := range raw {
		out[id] = ClampPoint(orb.Point{p.X, p.Y})
	}
	*o = out
	return nil
}
