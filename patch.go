package mapprefs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrUnknownPath reports a dotted path that does not name a bundle field.
var ErrUnknownPath = errors.New("mapprefs: unknown path")

// LayersPatch is the optional form of Layers.
type LayersPatch struct {
	HarvestNode *bool `json:"harvest-node,omitempty"`
	EventSpawn  *bool `json:"event-spawn,omitempty"`
	RaidBoss    *bool `json:"raid-boss,omitempty"`
	PlayerBase  *bool `json:"player-base,omitempty"`
}

// NodeTuningPatch is the optional form of NodeTuning.
type NodeTuningPatch struct {
	Hue                *float64 `json:"hue,omitempty"`
	NodeSize           *float64 `json:"nodeSize,omitempty"`
	NodeRadius         *float64 `json:"nodeRadius,omitempty"`
	OuterEffectEnabled *bool    `json:"outerEffectEnabled,omitempty"`
}

// AreaTuningPatch is the optional form of AreaTuning.
type AreaTuningPatch struct {
	Hue                *float64 `json:"hue,omitempty"`
	NodeSize           *float64 `json:"nodeSize,omitempty"`
	NodeRadius         *float64 `json:"nodeRadius,omitempty"`
	OuterEffectEnabled *bool    `json:"outerEffectEnabled,omitempty"`
	AreaRadius         *float64 `json:"areaRadius,omitempty"`
	AreaOpacity        *float64 `json:"areaOpacity,omitempty"`
}

// BaseTuningPatch is the optional form of BaseTuning.
type BaseTuningPatch struct {
	Hue           *float64 `json:"hue,omitempty"`
	FootprintSize *float64 `json:"footprintSize,omitempty"`
	CornerRadius  *float64 `json:"cornerRadius,omitempty"`
}

// TuningPatch is the optional form of Tuning.
type TuningPatch struct {
	Harvest    *NodeTuningPatch `json:"harvest,omitempty"`
	Event      *AreaTuningPatch `json:"event,omitempty"`
	RaidBoss   *AreaTuningPatch `json:"raidBoss,omitempty"`
	PlayerBase *BaseTuningPatch `json:"playerBase,omitempty"`
}

// Patch is a partial bundle as found in storage. Nil fields leave the
// receiving bundle untouched when applied.
type Patch struct {
	Layers     *LayersPatch `json:"layers,omitempty"`
	Tuning     *TuningPatch `json:"tuning,omitempty"`
	MapOpacity *float64     `json:"mapOpacity,omitempty"`
	MapScale   *float64     `json:"mapScale,omitempty"`
	PanelOpen  *bool        `json:"panelOpen,omitempty"`
}

// IsEmpty reports whether the patch carries no fields at all.
func (p Patch) IsEmpty() bool {
	return p.Layers == nil && p.Tuning == nil && p.MapOpacity == nil && p.MapScale == nil && p.PanelOpen == nil
}

// Patch returns a patch with every field of b set.
func (b Bundle) Patch() Patch {
	return Patch{
		Layers: &LayersPatch{
			HarvestNode: ptr(b.Layers.HarvestNode),
			EventSpawn:  ptr(b.Layers.EventSpawn),
			RaidBoss:    ptr(b.Layers.RaidBoss),
			PlayerBase:  ptr(b.Layers.PlayerBase),
		},
		Tuning: &TuningPatch{
			Harvest: &NodeTuningPatch{
				Hue:                ptr(b.Tuning.Harvest.Hue),
				NodeSize:           ptr(b.Tuning.Harvest.NodeSize),
				NodeRadius:         ptr(b.Tuning.Harvest.NodeRadius),
				OuterEffectEnabled: ptr(b.Tuning.Harvest.OuterEffectEnabled),
			},
			Event:    areaPatch(b.Tuning.Event),
			RaidBoss: areaPatch(b.Tuning.RaidBoss),
			PlayerBase: &BaseTuningPatch{
				Hue:           ptr(b.Tuning.PlayerBase.Hue),
				FootprintSize: ptr(b.Tuning.PlayerBase.FootprintSize),
				CornerRadius:  ptr(b.Tuning.PlayerBase.CornerRadius),
			},
		},
		MapOpacity: ptr(b.MapOpacity),
		MapScale:   ptr(b.MapScale),
		PanelOpen:  ptr(b.PanelOpen),
	}
}

func areaPatch(t AreaTuning) *AreaTuningPatch {
	return &AreaTuningPatch{
		Hue:                ptr(t.Hue),
		NodeSize:           ptr(t.NodeSize),
		NodeRadius:         ptr(t.NodeRadius),
		OuterEffectEnabled: ptr(t.OuterEffectEnabled),
		AreaRadius:         ptr(t.AreaRadius),
		AreaOpacity:        ptr(t.AreaOpacity),
	}
}

// Apply returns a copy of b with every field present in p overriding the
// corresponding value. The result is not clamped.
func (b Bundle) Apply(p Patch) Bundle {
	out := b
	if l := p.Layers; l != nil {
		set(&out.Layers.HarvestNode, l.HarvestNode)
		set(&out.Layers.EventSpawn, l.EventSpawn)
		set(&out.Layers.RaidBoss, l.RaidBoss)
		set(&out.Layers.PlayerBase, l.PlayerBase)
	}
	if t := p.Tuning; t != nil {
		if h := t.Harvest; h != nil {
			set(&out.Tuning.Harvest.Hue, h.Hue)
			set(&out.Tuning.Harvest.NodeSize, h.NodeSize)
			set(&out.Tuning.Harvest.NodeRadius, h.NodeRadius)
			set(&out.Tuning.Harvest.OuterEffectEnabled, h.OuterEffectEnabled)
		}
		applyArea(&out.Tuning.Event, t.Event)
		applyArea(&out.Tuning.RaidBoss, t.RaidBoss)
		if pb := t.PlayerBase; pb != nil {
			set(&out.Tuning.PlayerBase.Hue, pb.Hue)
			set(&out.Tuning.PlayerBase.FootprintSize, pb.FootprintSize)
			set(&out.Tuning.PlayerBase.CornerRadius, pb.CornerRadius)
		}
	}
	set(&out.MapOpacity, p.MapOpacity)
	set(&out.MapScale, p.MapScale)
	set(&out.PanelOpen, p.PanelOpen)
	return out
}

func applyArea(dst *AreaTuning, src *AreaTuningPatch) {
	if src == nil {
		return
	}
	set(&dst.Hue, src.Hue)
	set(&dst.NodeSize, src.NodeSize)
	set(&dst.NodeRadius, src.NodeRadius)
	set(&dst.OuterEffectEnabled, src.OuterEffectEnabled)
	set(&dst.AreaRadius, src.AreaRadius)
	set(&dst.AreaOpacity, src.AreaOpacity)
}

// Set applies a single dotted-path edit such as "tuning.harvest.hue" = "200"
// or "layers.raid-boss" = "false". The value is parsed as a bool or a number.
func (b Bundle) Set(path, raw string) (Bundle, error) {
	patch, err := PatchForPath(path, raw)
	if err != nil {
		return b, err
	}
	return b.Apply(patch), nil
}

// PatchForPath builds a patch that sets exactly one field. The value is parsed
// by the field's type: numbers for tuning and map fields, the literals true
// and false for toggles.
func PatchForPath(path, raw string) (Patch, error) {
	segments := splitPath(path)
	if len(segments) == 0 {
		return Patch{}, fmt.Errorf("%w: %q", ErrUnknownPath, path)
	}
	current, ok := lookupPath(toMap(ShippedDefaults()), segments)
	if !ok {
		return Patch{}, fmt.Errorf("%w: %q", ErrUnknownPath, path)
	}
	value, err := parseFieldValue(current, raw)
	if err != nil {
		return Patch{}, fmt.Errorf("mapprefs: value for %q: %w", path, err)
	}

	var node any = value
	for i := len(segments) - 1; i >= 0; i-- {
		node = map[string]any{segments[i]: node}
	}
	payload, err := json.Marshal(node)
	if err != nil {
		return Patch{}, err
	}

	var patch Patch
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		return Patch{}, fmt.Errorf("%w: %q: %v", ErrUnknownPath, path, err)
	}
	if patch.IsEmpty() {
		return Patch{}, fmt.Errorf("%w: %q", ErrUnknownPath, path)
	}
	return patch, nil
}

// parseFieldValue parses raw as the same kind of value as current.
func parseFieldValue(current any, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch current.(type) {
	case bool:
		switch strings.ToLower(raw) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, fmt.Errorf("expected true or false, got %q", raw)
	case float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("expected a number, got %q", raw)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("%w: not a leaf field", ErrUnknownPath)
	}
}

func splitPath(path string) []string {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	parts := strings.Split(path, ".")
	for _, part := range parts {
		if part == "" {
			return nil
		}
	}
	return parts
}

// toMap renders v through its JSON shape so that paths line up with the
// stored representation.
func toMap(v any) map[string]any {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil
	}
	return out
}

func lookupPath(root map[string]any, segments []string) (any, bool) {
	var current any = root
	for _, segment := range segments {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func ptr[T any](v T) *T {
	return &v
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
