package mapprefs

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func ironwoodView(t *testing.T, opts ...Option) *View {
	t.Helper()
	view, err := Resolve(Inputs{
		Zone:         "ironwood",
		ZoneSettings: snap(Patch{Tuning: &TuningPatch{Harvest: &NodeTuningPatch{Hue: ptr(200.0)}}, MapScale: ptr(1.5)}, "zs"),
	}, opts...)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return view
}

func TestViewEvaluateWithExpr(t *testing.T) {
	view := ironwoodView(t)
	cases := map[string]any{
		`tuning.harvest.hue > 180`:                  true,
		`layers["raid-boss"] && zone == "ironwood"`: true,
		`layers["player-base"]`:                     false,
		`mapScale * 2`:                              3.0,
		`tiers[0]`:                                  "zone-settings",
		`len(tiers)`:                                2,
	}
	for expr, want := range cases {
		got, err := view.Evaluate(expr)
		if err != nil {
			t.Fatalf("%s: %v", expr, err)
		}
		if got != want {
			t.Fatalf("%s = %v (%T), want %v (%T)", expr, got, got, want, want)
		}
	}
}

func TestViewEvaluateWithArgs(t *testing.T) {
	view := ironwoodView(t)
	got, err := view.EvaluateWith(RuleContext{Args: map[string]any{"limit": 1.2}}, `mapScale > args.limit`)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got != true {
		t.Fatalf("expected true, got %v", got)
	}
}

func TestBuiltInQueryFunctions(t *testing.T) {
	view := ironwoodView(t)
	got, err := view.Evaluate(`rangeOf("mapOpacity")[0]`)
	if err != nil {
		t.Fatalf("rangeOf: %v", err)
	}
	if got != 0.4 {
		t.Fatalf("expected 0.4, got %v", got)
	}
	got, err = view.Evaluate(`inRange("tuning.harvest.hue", tuning.harvest.hue)`)
	if err != nil {
		t.Fatalf("inRange: %v", err)
	}
	if got != true {
		t.Fatalf("expected true, got %v", got)
	}
	if _, err := view.Evaluate(`rangeOf("zoom")`); err == nil || !strings.Contains(err.Error(), "unknown path") {
		t.Fatalf("expected unknown path error, got %v", err)
	}
}

func TestWithFunctionAddsCustomHelper(t *testing.T) {
	view := ironwoodView(t, WithFunction("shift", func(args ...any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("shift: expected 2 arguments")
		}
		return args[0].(float64) + args[1].(float64), nil
	}))
	got, err := view.Evaluate(`shift(tuning.harvest.hue, 15.0)`)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got != 215.0 {
		t.Fatalf("expected 215, got %v", got)
	}
	if _, err := view.Evaluate(`inRange("mapScale", 1.0)`); err != nil {
		t.Fatalf("built-ins should remain available: %v", err)
	}
}

func TestFunctionRegistry(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("noop", nil); err == nil {
		t.Fatalf("expected nil function error")
	}
	noop := func(args ...any) (any, error) { return len(args), nil }
	if err := registry.Register("noop", noop); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register("noop", noop); err == nil {
		t.Fatalf("expected duplicate error")
	}
	clone := registry.Clone()
	_ = clone.Register("other", noop)
	if len(registry.Names()) != 1 || len(clone.Names()) != 2 {
		t.Fatalf("clone should be independent: %v vs %v", registry.Names(), clone.Names())
	}
	got, err := clone.Call("noop", 1, 2)
	if err != nil || got != 2 {
		t.Fatalf("call: %v %v", got, err)
	}
	if _, err := clone.Call("missing"); err == nil {
		t.Fatalf("expected missing function error")
	}
}

func TestCompiledRuleReusesProgramCache(t *testing.T) {
	cache := NewProgramCache()
	evaluator := NewExprEvaluator(ExprWithProgramCache(cache))
	rule, err := evaluator.Compile(`mapScale > 1`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, ok := cache.Get(`mapScale > 1`); !ok {
		t.Fatalf("compiled program should be cached")
	}
	for scale, want := range map[float64]bool{1: false, 1.5: true} {
		got, err := rule.Evaluate(RuleContext{Snapshot: map[string]any{"mapScale": scale}})
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if got != want {
			t.Fatalf("scale %v: got %v want %v", scale, got, want)
		}
	}
}

func TestCELEvaluator(t *testing.T) {
	view := ironwoodView(t, WithEvaluator(NewCELEvaluator(CELWithProgramCache(NewProgramCache()))))
	got, err := view.Evaluate(`tuning.harvest.hue > 180.0 && layers["raid-boss"] && zone == "ironwood"`)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got != true {
		t.Fatalf("expected true, got %v", got)
	}

	_, err = view.Evaluate(`tuning.harvest.hue >`)
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T: %v", err, err)
	}
	if evalErr.Engine != "cel" || evalErr.Zone != "ironwood" {
		t.Fatalf("unexpected metadata %+v", evalErr)
	}
}

func TestJSEvaluator(t *testing.T) {
	if !jsEvaluatorAvailable() {
		if NewJSEvaluator() != nil {
			t.Fatalf("stub should return nil")
		}
		t.Skip("built without js_eval")
	}
	view := ironwoodView(t, WithEvaluator(NewJSEvaluator()))
	got, err := view.Evaluate(`layers["raid-boss"] === true && zone === "ironwood"`)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got != true {
		t.Fatalf("expected true, got %v", got)
	}

	looping := ironwoodView(t, WithEvaluator(NewJSEvaluator(JSWithTimeout(20*time.Millisecond))))
	if _, err := looping.Evaluate(`(function(){ for(;;){} })()`); err == nil {
		t.Fatalf("expected runaway script to be interrupted")
	}
}

func TestEvaluateErrors(t *testing.T) {
	view := ironwoodView(t)
	if _, err := view.Evaluate(""); err == nil {
		t.Fatalf("expected error for empty expression")
	}

	_, err := view.Evaluate(`tuning.harvest.hue >`)
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	if evalErr.Engine != "expr" || evalErr.Zone != "ironwood" || evalErr.Expr != `tuning.harvest.hue >` {
		t.Fatalf("unexpected metadata %+v", evalErr)
	}
	if !strings.Contains(err.Error(), "zone=ironwood") {
		t.Fatalf("error should name the zone: %v", err)
	}
	if len(evalErr.Tiers) != 2 || evalErr.Tiers[0] != "zone-settings" {
		t.Fatalf("compile failures should report the view tiers, got %v", evalErr.Tiers)
	}
	if !strings.Contains(err.Error(), "tiers=zone-settings>shipped") {
		t.Fatalf("error should name the tiers: %v", err)
	}

	var nilView *View
	if _, err := nilView.Evaluate("true"); err == nil {
		t.Fatalf("expected error for nil view")
	}
}

func TestEvaluatorEngineName(t *testing.T) {
	cases := map[string]Evaluator{
		"expr":    NewExprEvaluator(),
		"cel":     NewCELEvaluator(),
		"unknown": nil,
		"custom":  stubEvaluator{},
	}
	for want, evaluator := range cases {
		if got := evaluatorEngineName(evaluator); got != want {
			t.Fatalf("engine name = %q, want %q", got, want)
		}
	}
}

func TestZapEvaluatorLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	view := ironwoodView(t, WithEvaluatorLogger(ZapEvaluatorLogger(zap.New(core))))

	if _, err := view.Evaluate(`mapScale`); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	_, _ = view.Evaluate(`mapScale >`)

	entries := logs.AllUntimed()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.DebugLevel || entries[0].Message != "query evaluated" {
		t.Fatalf("unexpected success entry %+v", entries[0])
	}
	if entries[1].Level != zapcore.WarnLevel || entries[1].ContextMap()["zone"] != "ironwood" {
		t.Fatalf("unexpected failure entry %+v", entries[1])
	}
	if _, ok := entries[1].ContextMap()["error"]; !ok {
		t.Fatalf("failure entry should carry the error")
	}
}

type stubEvaluator struct{}

func (stubEvaluator) Evaluate(RuleContext, string) (any, error) { return nil, nil }

func (stubEvaluator) Compile(string) (CompiledRule, error) { return nil, nil }
