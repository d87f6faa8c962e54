package mapprefs

// View holds a resolved bundle together with the tier layers that produced
// it and the evaluator configuration used for queries.
type View struct {
	Bundle Bundle

	cfg    viewConfig
	layers []Layer
}

// Option configures a View.
type Option func(*viewConfig)

type viewConfig struct {
	zone         string
	evaluator    Evaluator
	programCache ProgramCache
	functions    *FunctionRegistry
	logger       EvaluatorLogger
}

func applyOptions(opts []Option) viewConfig {
	cfg := viewConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithZone tags the view with the zone it was resolved for.
func WithZone(zone string) Option {
	return func(cfg *viewConfig) {
		cfg.zone = zone
	}
}

// WithEvaluator configures the query evaluator. The expr evaluator is used
// when none is configured.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *viewConfig) {
		cfg.evaluator = e
	}
}

// NewView wraps an already resolved bundle. The bundle is clamped.
func NewView(bundle Bundle, opts ...Option) *View {
	return newView(bundle.Clamp(), opts...)
}

func newView(bundle Bundle, opts ...Option) *View {
	return &View{
		Bundle: bundle,
		cfg:    applyOptions(opts),
	}
}

// Zone returns the zone the view was resolved for.
func (v *View) Zone() string {
	if v == nil {
		return ""
	}
	return v.cfg.zone
}

// Layers returns the contributing layers, strongest first.
func (v *View) Layers() []Layer {
	if v == nil || len(v.layers) == 0 {
		return nil
	}
	out := make([]Layer, len(v.layers))
	for i := range v.layers {
		out[i] = cloneLayer(v.layers[i])
	}
	return out
}

// Tiers returns the names of the contributing tiers, strongest first.
func (v *View) Tiers() []string {
	if v == nil {
		return nil
	}
	names := make([]string, 0, len(v.layers))
	for _, layer := range v.layers {
		names = append(names, layer.Tier.Name)
	}
	return names
}

// Snapshot renders the bundle in its stored JSON shape.
func (v *View) Snapshot() map[string]any {
	if v == nil {
		return nil
	}
	return toMap(v.Bundle)
}

func (v *View) evaluatorLogger() EvaluatorLogger {
	if v.cfg.logger != nil {
		return v.cfg.logger
	}
	return noopEvaluatorLogger{}
}
