package mapprefs

import "fmt"

// Category is one of the fixed marker categories a map can render. Each
// category owns both a visibility layer and a tuning record.
type Category int

const (
	CategoryHarvest Category = iota
	CategoryEvent
	CategoryRaidBoss
	CategoryPlayerBase
)

// Categories lists every category in render order.
var Categories = []Category{
	CategoryHarvest,
	CategoryEvent,
	CategoryRaidBoss,
	CategoryPlayerBase,
}

// String returns the tuning key used for the category.
func (c Category) String() string {
	switch c {
	case CategoryHarvest:
		return "harvest"
	case CategoryEvent:
		return "event"
	case CategoryRaidBoss:
		return "raidBoss"
	case CategoryPlayerBase:
		return "playerBase"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// LayerID returns the layer identifier used in the visibility map.
func (c Category) LayerID() string {
	switch c {
	case CategoryHarvest:
		return "harvest-node"
	case CategoryEvent:
		return "event-spawn"
	case CategoryRaidBoss:
		return "raid-boss"
	case CategoryPlayerBase:
		return "player-base"
	default:
		return ""
	}
}

// ParseLayerID converts a layer identifier back into its category.
func ParseLayerID(value string) (Category, bool) {
	for _, c := range Categories {
		if c.LayerID() == value {
			return c, true
		}
	}
	return 0, false
}

// Layers holds the visibility flag for every category.
type Layers struct {
	HarvestNode bool `json:"harvest-node"`
	EventSpawn  bool `json:"event-spawn"`
	RaidBoss    bool `json:"raid-boss"`
	PlayerBase  bool `json:"player-base"`
}

// Visible reports whether the layer for c is shown.
func (l Layers) Visible(c Category) bool {
	switch c {
	case CategoryHarvest:
		return l.HarvestNode
	case CategoryEvent:
		return l.EventSpawn
	case CategoryRaidBoss:
		return l.RaidBoss
	case CategoryPlayerBase:
		return l.PlayerBase
	default:
		return false
	}
}

// SetVisible toggles the layer for c.
func (l *Layers) SetVisible(c Category, visible bool) {
	switch c {
	case CategoryHarvest:
		l.HarvestNode = visible
	case CategoryEvent:
		l.EventSpawn = visible
	case CategoryRaidBoss:
		l.RaidBoss = visible
	case CategoryPlayerBase:
		l.PlayerBase = visible
	}
}

// NodeTuning is the visual tuning shared by point-like markers.
type NodeTuning struct {
	Hue                float64 `json:"hue"`
	NodeSize           float64 `json:"nodeSize"`
	NodeRadius         float64 `json:"nodeRadius"`
	OuterEffectEnabled bool    `json:"outerEffectEnabled"`
}

// AreaTuning extends node tuning with an area-of-effect ring.
type AreaTuning struct {
	Hue                float64 `json:"hue"`
	NodeSize           float64 `json:"nodeSize"`
	NodeRadius         float64 `json:"nodeRadius"`
	OuterEffectEnabled bool    `json:"outerEffectEnabled"`
	AreaRadius         float64 `json:"areaRadius"`
	AreaOpacity        float64 `json:"areaOpacity"`
}

// BaseTuning styles player-base footprints.
type BaseTuning struct {
	Hue           float64 `json:"hue"`
	FootprintSize float64 `json:"footprintSize"`
	CornerRadius  float64 `json:"cornerRadius"`
}

// Tuning groups the per-category tuning records.
type Tuning struct {
	Harvest    NodeTuning `json:"harvest"`
	Event      AreaTuning `json:"event"`
	RaidBoss   AreaTuning `json:"raidBoss"`
	PlayerBase BaseTuning `json:"playerBase"`
}

// Bundle is a fully resolved set of map preferences. Every field is present;
// partial, stored data is represented by Patch instead.
type Bundle struct {
	Layers     Layers  `json:"layers"`
	Tuning     Tuning  `json:"tuning"`
	MapOpacity float64 `json:"mapOpacity"`
	MapScale   float64 `json:"mapScale"`
	PanelOpen  bool    `json:"panelOpen"`
}

// ShippedDefaults returns the compiled-in look used when nothing is stored.
func ShippedDefaults() Bundle {
	return Bundle{
		Layers: Layers{
			HarvestNode: true,
			EventSpawn:  true,
			RaidBoss:    true,
			PlayerBase:  false,
		},
		Tuning: Tuning{
			Harvest: NodeTuning{
				Hue:                145,
				NodeSize:           1,
				NodeRadius:         1,
				OuterEffectEnabled: true,
			},
			Event: AreaTuning{
				Hue:                45,
				NodeSize:           1,
				NodeRadius:         1,
				OuterEffectEnabled: true,
				AreaRadius:         0.6,
				AreaOpacity:        0.25,
			},
			RaidBoss: AreaTuning{
				Hue:                0,
				NodeSize:           1.2,
				NodeRadius:         1,
				OuterEffectEnabled: true,
				AreaRadius:         0.9,
				AreaOpacity:        0.3,
			},
			PlayerBase: BaseTuning{
				Hue:           210,
				FootprintSize: 1,
				CornerRadius:  1,
			},
		},
		MapOpacity: 0.92,
		MapScale:   1,
		PanelOpen:  false,
	}
}
