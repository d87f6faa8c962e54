//go:build !js_eval

package mapprefs

// NewJSEvaluator returns nil unless the binary is built with the js_eval tag.
// Callers should report ErrNoEvaluator in that case.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	_ = newJSOptions(opts)
	return nil
}

func jsEvaluatorAvailable() bool { return false }
