package mapprefs

import (
	"errors"
	"fmt"
	"strings"
)

// EvaluationError reports a failed query together with the zone it ran in and
// the tiers that were present in the resolved bundle, strongest first.
type EvaluationError struct {
	Engine string
	Expr   string
	Zone   string
	Tiers  []string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	zone := e.Zone
	if zone == "" {
		zone = "unknown"
	}
	return fmt.Sprintf("mapprefs: %s evaluator %s zone=%s %s: %v",
		e.Engine, describeExpression(e.Expr), zone, describeTiers(e.Tiers), e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func describeTiers(tiers []string) string {
	if len(tiers) == 0 {
		return "tiers=<none>"
	}
	return "tiers=" + strings.Join(tiers, ">")
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}
	if strings.HasPrefix(err.Error(), "mapprefs:") {
		return err
	}
	return fmt.Errorf("mapprefs: %s evaluator: %w", engine, err)
}

// wrapEvaluationError fills in whatever metadata an inner EvaluationError is
// missing, or wraps a plain error. Compile failures pass an empty scope.
func wrapEvaluationError(engine, expr string, scope RuleContext, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Zone == "" {
			evalErr.Zone = scope.Zone
		}
		if len(evalErr.Tiers) == 0 {
			evalErr.Tiers = append([]string(nil), scope.Tiers...)
		}
		return evalErr
	}
	return &EvaluationError{
		Engine: engine,
		Expr:   expr,
		Zone:   scope.Zone,
		Tiers:  append([]string(nil), scope.Tiers...),
		Err:    err,
	}
}
