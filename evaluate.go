package mapprefs

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoEvaluator reports a query engine that is not compiled in.
var ErrNoEvaluator = errors.New("mapprefs: evaluator not configured")

// Evaluate runs expr against the resolved bundle, e.g.
// `tuning.harvest.hue > 180 && layers["raid-boss"]`.
func (v *View) Evaluate(expr string) (any, error) {
	return v.EvaluateWith(RuleContext{}, expr)
}

// EvaluateWith runs expr using ctx, filling the snapshot, zone and tiers from
// the view when ctx leaves them empty.
func (v *View) EvaluateWith(ctx RuleContext, expr string) (any, error) {
	if v == nil {
		return nil, fmt.Errorf("mapprefs: view is nil")
	}
	if expr == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	evaluator, err := v.resolveEvaluator()
	if err != nil {
		return nil, err
	}
	if ctx.Snapshot == nil {
		ctx.Snapshot = v.Snapshot()
	}
	if ctx.Zone == "" {
		ctx.Zone = v.Zone()
	}
	if ctx.Tiers == nil {
		ctx.Tiers = v.Tiers()
	}
	ctx = ctx.withDefaultMaps()

	engine := evaluatorEngineName(evaluator)
	start := time.Now()
	value, evalErr := evaluator.Evaluate(ctx, expr)
	evalErr = wrapEvaluationError(engine, expr, ctx, evalErr)
	v.evaluatorLogger().LogEvaluation(EvaluatorLogEvent{
		Engine:   engine,
		Expr:     expr,
		Zone:     ctx.zoneLabel(),
		Duration: time.Since(start),
		Err:      evalErr,
	})
	if evalErr != nil {
		return nil, evalErr
	}
	return value, nil
}

func (v *View) resolveEvaluator() (Evaluator, error) {
	if v.cfg.evaluator != nil {
		return v.cfg.evaluator, nil
	}
	functions := v.cfg.functions
	if functions == nil {
		functions = DefaultFunctions()
	}
	exprOpts := []ExprEvaluatorOption{ExprWithFunctionRegistry(functions)}
	if v.cfg.programCache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(v.cfg.programCache))
	}
	evaluator := NewExprEvaluator(exprOpts...)
	if evaluator == nil {
		return nil, ErrNoEvaluator
	}
	v.cfg.evaluator = evaluator
	return evaluator, nil
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*mapprefs.exprEvaluator":
		return "expr"
	case "*mapprefs.celEvaluator":
		return "cel"
	case "*mapprefs.jsEvaluator":
		return "js"
	default:
		return "custom"
	}
}
