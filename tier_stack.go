package mapprefs

import (
	"errors"
	"fmt"
	"sort"

	"github.com/goliatone/go-mapprefs/layering"
)

// Tier names one precedence bucket of stored preferences. Higher priority
// values win.
type Tier struct {
	Name     string `json:"name"`
	Label    string `json:"label,omitempty"`
	Priority int    `json:"priority"`
}

var (
	// TierShipped carries the compiled-in defaults and is always weakest.
	TierShipped = Tier{Name: "shipped", Label: "Shipped defaults", Priority: 0}
	// TierDefaults carries the zone's saved defaults, or the global defaults
	// a zone adopted when it had none of its own.
	TierDefaults = Tier{Name: "defaults", Label: "Saved defaults", Priority: 100}
	// TierZoneSettings carries the zone's live bundle. It only participates
	// while no global style has been established.
	TierZoneSettings = Tier{Name: "zone-settings", Label: "Zone settings", Priority: 200}
	// TierGlobalSettings carries the canonical cross-zone look.
	TierGlobalSettings = Tier{Name: "global-settings", Label: "Global settings", Priority: 300}
)

// Layer pairs a tier with the patch loaded for it.
type Layer struct {
	Tier       Tier
	Patch      Patch
	Key        string
	SnapshotID string
}

// LayerOption configures optional metadata for a layer.
type LayerOption func(*Layer)

// WithSnapshotID records the stored snapshot id for provenance.
func WithSnapshotID(id string) LayerOption {
	return func(layer *Layer) {
		layer.SnapshotID = id
	}
}

// WithKey records the storage key the patch was read from.
func WithKey(key string) LayerOption {
	return func(layer *Layer) {
		layer.Key = key
	}
}

// NewLayer builds a layer holding a private copy of patch.
func NewLayer(tier Tier, patch Patch, opts ...LayerOption) Layer {
	layer := Layer{
		Tier:  tier,
		Patch: layering.Clone(patch),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&layer)
		}
	}
	return layer
}

var (
	// ErrTierNameRequired indicates a layer without a tier name.
	ErrTierNameRequired = errors.New("tier: name must be provided")
	// ErrDuplicateTier indicates two layers for the same tier.
	ErrDuplicateTier = errors.New("tier: names must be unique")
	// ErrPriorityOrder indicates two layers sharing a priority.
	ErrPriorityOrder = errors.New("tier: priorities must be strictly ordered")
)

// Stack is an immutable set of layers ordered strongest first.
type Stack struct {
	layers []Layer
}

// NewStack validates and sorts layers so that the strongest tier comes first.
func NewStack(layers ...Layer) (*Stack, error) {
	seen := make(map[string]struct{}, len(layers))
	copied := make([]Layer, len(layers))
	for i, layer := range layers {
		if layer.Tier.Name == "" {
			return nil, ErrTierNameRequired
		}
		if _, ok := seen[layer.Tier.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTier, layer.Tier.Name)
		}
		seen[layer.Tier.Name] = struct{}{}
		copied[i] = cloneLayer(layer)
	}

	sort.Slice(copied, func(i, j int) bool {
		return copied[i].Tier.Priority > copied[j].Tier.Priority
	})
	for i := 1; i < len(copied); i++ {
		if copied[i-1].Tier.Priority == copied[i].Tier.Priority {
			return nil, fmt.Errorf("%w: %d", ErrPriorityOrder, copied[i].Tier.Priority)
		}
	}
	return &Stack{layers: copied}, nil
}

// Layers returns a copy of the layers, strongest first.
func (s *Stack) Layers() []Layer {
	if s == nil || len(s.layers) == 0 {
		return nil
	}
	out := make([]Layer, len(s.layers))
	for i := range s.layers {
		out[i] = cloneLayer(s.layers[i])
	}
	return out
}

// Len returns the number of layers in the stack.
func (s *Stack) Len() int {
	if s == nil {
		return 0
	}
	return len(s.layers)
}

// Merge folds every layer over the shipped defaults and clamps the result.
// The returned view keeps the layers for provenance queries.
func (s *Stack) Merge(opts ...Option) *View {
	patches := make([]Patch, 0, s.Len())
	for _, layer := range s.Layers() {
		patches = append(patches, layer.Patch)
	}
	merged := layering.MergeLayers(patches...)
	bundle := ShippedDefaults().Apply(merged).Clamp()

	view := newView(bundle, opts...)
	view.layers = s.Layers()
	return view
}

func cloneLayer(layer Layer) Layer {
	return Layer{
		Tier:       layer.Tier,
		Patch:      layering.Clone(layer.Patch),
		Key:        layer.Key,
		SnapshotID: layer.SnapshotID,
	}
}
