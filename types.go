package store

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/goliatone/go-store/pkg/activity"
)

// Option configures a Store.
type Option func(*storeConfig)

type storeConfig struct {
	logger          *slog.Logger
	activityHooks   activity.Hooks
	activityConfig  *activity.Config
	evaluator       Evaluator
	programCache    ProgramCache
	functions       *FunctionRegistry
	evaluatorLogger EvaluatorLogger
}

func applyOptions(opts []Option) storeConfig {
	cfg := storeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithLogger sets the structured logger used for dispatch and evaluator
// diagnostics. A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *storeConfig) {
		cfg.logger = logger
	}
}

// WithEvaluator configures the engine used by expression selectors. The
// default is the expr-lang evaluator.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *storeConfig) {
		cfg.evaluator = e
	}
}

// EvalContext carries the inputs of one expression projection.
type EvalContext struct {
	Tree     *Tree
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
}

func (ctx EvalContext) withDefaultNow() EvalContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx EvalContext) withDefaultMaps() EvalContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx EvalContext) withDefaults() EvalContext {
	return ctx.withDefaultNow().withDefaultMaps()
}

func (ctx EvalContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx EvalContext) versionLabel() string {
	if ctx.Tree == nil {
		return "none"
	}
	return fmt.Sprintf("v%d", ctx.Tree.Version())
}

// snapshot returns the JSON-normalised tree that expressions see as their
// top-level variables, one per namespace.
func (ctx EvalContext) snapshot() (map[string]any, error) {
	return ctx.Tree.Plain()
}

// Evaluator executes expressions against a state tree.
type Evaluator interface {
	Evaluate(ctx EvalContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx EvalContext) (any, error)
}
