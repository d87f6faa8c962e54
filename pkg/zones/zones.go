// Package zones holds the catalog of map zones and their authored markers.
package zones

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-mapprefs/pkg/markers"
)

//go:embed catalog.yaml
var catalogYAML []byte

// ErrUnknownZone reports a zone id missing from the catalog.
var ErrUnknownZone = errors.New("zones: unknown zone")

// Zone is one map region.
type Zone struct {
	ID      string
	Name    string
	Image   string
	Markers []markers.Marker
}

// Catalog is an immutable, ordered set of zones.
type Catalog struct {
	seed  string
	order []string
	zones map[string]Zone
}

type catalogFile struct {
	Seed  string     `yaml:"seed"`
	Zones []zoneFile `yaml:"zones"`
}

type zoneFile struct {
	ID      string       `yaml:"id"`
	Name    string       `yaml:"name"`
	Image   string       `yaml:"image"`
	Markers []markerFile `yaml:"markers"`
}

type markerFile struct {
	ID   string  `yaml:"id"`
	Kind string  `yaml:"kind"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
}

// Default returns the catalog shipped with the module.
func Default() *Catalog {
	c, err := Parse(catalogYAML)
	if err != nil {
		panic(fmt.Sprintf("zones: embedded catalog: %v", err))
	}
	return c
}

// Parse decodes a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("zones: parse catalog: %w", err)
	}
	c := &Catalog{
		seed:  strings.TrimSpace(file.Seed),
		zones: make(map[string]Zone, len(file.Zones)),
	}
	for _, zf := range file.Zones {
		id := strings.TrimSpace(zf.ID)
		if id == "" {
			return nil, errors.New("zones: zone id is required")
		}
		if _, dup := c.zones[id]; dup {
			return nil, fmt.Errorf("zones: duplicate zone %q", id)
		}
		zone := Zone{ID: id, Name: zf.Name, Image: zf.Image}
		for _, mf := range zf.Markers {
			kind, ok := markers.ParseKind(mf.Kind)
			if !ok {
				return nil, fmt.Errorf("zones: zone %q marker %q: unknown kind %q", id, mf.ID, mf.Kind)
			}
			zone.Markers = append(zone.Markers, markers.Marker{
				ID:      mf.ID,
				Kind:    kind,
				Default: markers.ClampPoint(orb.Point{mf.X, mf.Y}),
			})
		}
		c.zones[id] = zone
		c.order = append(c.order, id)
	}
	if c.seed == "" && len(c.order) > 0 {
		c.seed = c.order[0]
	}
	if _, ok := c.zones[c.seed]; !ok && c.seed != "" {
		return nil, fmt.Errorf("zones: seed zone %q is not in the catalog", c.seed)
	}
	return c, nil
}

// Seed returns the canonical zone used to bootstrap global preferences.
func (c *Catalog) Seed() string {
	return c.seed
}

// IDs returns every zone id in catalog order.
func (c *Catalog) IDs() []string {
	return append([]string(nil), c.order...)
}

// Has reports whether id is a known zone.
func (c *Catalog) Has(id string) bool {
	_, ok := c.zones[id]
	return ok
}

// Zone looks up a zone by id.
func (c *Catalog) Zone(id string) (Zone, error) {
	zone, ok := c.zones[id]
	if !ok {
		if hint := c.Suggest(id); len(hint) > 0 {
			return Zone{}, fmt.Errorf("%w %q (did you mean %s?)", ErrUnknownZone, id, strings.Join(hint, " or "))
		}
		return Zone{}, fmt.Errorf("%w %q", ErrUnknownZone, id)
	}
	return zone, nil
}

// Suggest returns the closest zone ids to a mistyped one, best first.
func (c *Catalog) Suggest(id string) []string {
	token := strings.ToLower(strings.TrimSpace(id))
	if token == "" {
		return nil
	}
	type scored struct {
		id   string
		dist int
	}
	var results []scored
	for _, candidate := range c.order {
		dist := levenshtein.ComputeDistance(token, candidate)
		if dist > suggestLimit(len(candidate)) {
			continue
		}
		results = append(results, scored{id: candidate, dist: dist})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].dist < results[j].dist
	})
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.id)
	}
	return out
}

func suggestLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
