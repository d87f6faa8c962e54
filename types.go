package mapprefs

// RuleContext carries the inputs of one query evaluation.
type RuleContext struct {
	Snapshot map[string]any
	Args     map[string]any
	Zone     string
	Tiers    []string
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.Snapshot == nil {
		ctx.Snapshot = map[string]any{}
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) zoneLabel() string {
	if ctx.Zone != "" {
		return ctx.Zone
	}
	return "unknown"
}

// environment flattens the context into the variable set shared by all
// evaluators: the bundle's top-level keys plus zone, tiers and args.
func (ctx RuleContext) environment() map[string]any {
	env := make(map[string]any, len(ctx.Snapshot)+3)
	for key, value := range ctx.Snapshot {
		env[key] = value
	}
	env["zone"] = ctx.Zone
	tiers := make([]any, 0, len(ctx.Tiers))
	for _, tier := range ctx.Tiers {
		tiers = append(tiers, tier)
	}
	env["tiers"] = tiers
	env["args"] = ctx.Args
	return env
}

// Evaluator executes query expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule is a reusable query program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}
