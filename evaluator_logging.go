package store

import (
	"context"
	"log/slog"
	"time"
)

// EvaluatorLogEvent is one selector evaluation, successful or not.
type EvaluatorLogEvent struct {
	Engine   string
	Expr     string
	Version  string
	Duration time.Duration
	Err      error
}

// EvaluatorLogger observes selector evaluations.
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

// WithEvaluatorLogger attaches an evaluator logger. By default evaluations
// are logged through the store's slog logger.
func WithEvaluatorLogger(logger EvaluatorLogger) Option {
	return func(cfg *storeConfig) {
		if logger == nil {
			cfg.evaluatorLogger = noopEvaluatorLogger{}
			return
		}
		cfg.evaluatorLogger = logger
	}
}

// SlogEvaluatorLogger logs successful evaluations at debug and failures at
// warn.
func SlogEvaluatorLogger(logger *slog.Logger) EvaluatorLogger {
	if logger == nil {
		return noopEvaluatorLogger{}
	}
	return EvaluatorLoggerFunc(func(event EvaluatorLogEvent) {
		level, msg := slog.LevelDebug, "store: selector evaluated"
		attrs := []slog.Attr{
			slog.String("engine", event.Engine),
			slog.String("expr", event.Expr),
			slog.String("version", event.Version),
			slog.Duration("duration", event.Duration),
		}
		if event.Err != nil {
			level, msg = slog.LevelWarn, "store: selector evaluation failed"
			attrs = append(attrs, slog.Any("error", event.Err))
		}
		logger.LogAttrs(context.Background(), level, msg, attrs...)
	})
}
