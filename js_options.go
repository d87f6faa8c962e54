package mapprefs

import "time"

// DefaultJSTimeout bounds a single JS query run.
const DefaultJSTimeout = 250 * time.Millisecond

type jsOptions struct {
	cache   ProgramCache
	timeout time.Duration
}

// JSEvaluatorOption configures the JS evaluator.
type JSEvaluatorOption func(*jsOptions)

// JSWithProgramCache shares compiled scripts across evaluations.
func JSWithProgramCache(cache ProgramCache) JSEvaluatorOption {
	return func(o *jsOptions) {
		o.cache = cache
	}
}

// JSWithTimeout interrupts scripts that run longer than d. Zero disables the
// limit.
func JSWithTimeout(d time.Duration) JSEvaluatorOption {
	return func(o *jsOptions) {
		o.timeout = d
	}
}

func newJSOptions(opts []JSEvaluatorOption) jsOptions {
	o := jsOptions{timeout: DefaultJSTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.timeout < 0 {
		o.timeout = 0
	}
	return o
}
