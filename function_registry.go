package mapprefs

import (
	"fmt"
	"sort"
	"sync"
)

// Function is a helper callable from query expressions.
type Function func(args ...any) (any, error)

// FunctionRegistry stores query helpers keyed by name.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]Function),
	}
}

// DefaultFunctions returns a registry holding the built-in helpers:
//
//	rangeOf("mapOpacity")        -> [0.4, 1]
//	inRange("mapScale", 1.5)     -> true
func DefaultFunctions() *FunctionRegistry {
	registry := NewFunctionRegistry()
	_ = registry.Register("rangeOf", rangeOfFunction)
	_ = registry.Register("inRange", inRangeFunction)
	return registry
}

// Register stores fn under name guarding against duplicates.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if fn == nil {
		return fmt.Errorf("mapprefs: function %q is nil", name)
	}
	if name == "" {
		return fmt.Errorf("mapprefs: function name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]Function)
	}
	if _, exists := r.functions[name]; exists {
		return fmt.Errorf("mapprefs: function %q already registered", name)
	}
	r.functions[name] = fn
	return nil
}

// Clone returns a shallow copy of the registry.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{
		functions: make(map[string]Function, len(r.functions)),
	}
	for name, fn := range r.functions {
		clone.functions[name] = fn
	}
	return clone
}

// Call executes the function registered for name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("mapprefs: function registry is nil")
	}
	r.mu.RLock()
	fn := r.functions[name]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("mapprefs: function %q not registered", name)
	}
	return fn(args...)
}

// Names returns registered function names sorted alphabetically.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithFunction adds a query helper to the view on top of the built-ins.
func WithFunction(name string, fn Function) Option {
	return func(cfg *viewConfig) {
		if cfg.functions == nil {
			cfg.functions = DefaultFunctions()
		}
		_ = cfg.functions.Register(name, fn)
	}
}

func rangeOfFunction(args ...any) (any, error) {
	r, err := rangeArgument("rangeOf", 1, args)
	if err != nil {
		return nil, err
	}
	return []any{r.Min, r.Max}, nil
}

func inRangeFunction(args ...any) (any, error) {
	r, err := rangeArgument("inRange", 2, args)
	if err != nil {
		return nil, err
	}
	value, ok := toFloat(args[1])
	if !ok {
		return nil, fmt.Errorf("inRange: expected a number, got %T", args[1])
	}
	return r.Contains(value), nil
}

func rangeArgument(name string, arity int, args []any) (Range, error) {
	if len(args) != arity {
		return Range{}, fmt.Errorf("%s: expected %d arguments, got %d", name, arity, len(args))
	}
	path, ok := args[0].(string)
	if !ok {
		return Range{}, fmt.Errorf("%s: path must be a string, got %T", name, args[0])
	}
	r, ok := RangeFor(path)
	if !ok {
		return Range{}, fmt.Errorf("%w: %q", ErrUnknownPath, path)
	}
	return r, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
