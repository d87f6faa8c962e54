package mapprefs

import (
	"time"

	"go.uber.org/zap"
)

// EvaluatorLogEvent describes a query evaluation for logging.
type EvaluatorLogEvent struct {
	Engine   string
	Expr     string
	Zone     string
	Duration time.Duration
	Err      error
}

// EvaluatorLogger records evaluator events.
type EvaluatorLogger interface {
	LogEvaluation(EvaluatorLogEvent)
}

// EvaluatorLoggerFunc adapts a function to EvaluatorLogger.
type EvaluatorLoggerFunc func(EvaluatorLogEvent)

// LogEvaluation implements EvaluatorLogger.
func (f EvaluatorLoggerFunc) LogEvaluation(event EvaluatorLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopEvaluatorLogger struct{}

func (noopEvaluatorLogger) LogEvaluation(EvaluatorLogEvent) {}

// ZapEvaluatorLogger forwards evaluation events to a zap logger. Failures are
// logged at warn level, successes at debug.
func ZapEvaluatorLogger(logger *zap.Logger) EvaluatorLogger {
	if logger == nil {
		return noopEvaluatorLogger{}
	}
	return EvaluatorLoggerFunc(func(event EvaluatorLogEvent) {
		fields := []zap.Field{
			zap.String("engine", event.Engine),
			zap.String("expr", event.Expr),
			zap.String("zone", event.Zone),
			zap.Duration("duration", event.Duration),
		}
		if event.Err != nil {
			logger.Warn("query evaluation failed", append(fields, zap.Error(event.Err))...)
			return
		}
		logger.Debug("query evaluated", fields...)
	})
}

// WithEvaluatorLogger attaches an evaluator logger to the view.
func WithEvaluatorLogger(logger EvaluatorLogger) Option {
	return func(cfg *viewConfig) {
		if logger == nil {
			cfg.logger = noopEvaluatorLogger{}
			return
		}
		cfg.logger = logger
	}
}
