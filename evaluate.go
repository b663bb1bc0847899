package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrNoEvaluator indicates the requested engine is not compiled in.
	ErrNoEvaluator = errors.New("store: evaluator not configured")
	// ErrUnknownEngine indicates an unsupported engine name.
	ErrUnknownEngine = errors.New("store: unknown evaluator engine")
)

// Engine names accepted by NewEvaluator.
const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

// NewEvaluator builds the evaluator registered under engine. The JS engine
// requires the js_eval build tag.
func NewEvaluator(engine string, cache ProgramCache, registry *FunctionRegistry) (Evaluator, error) {
	switch engine {
	case "", EngineExpr:
		return NewExprEvaluator(UseProgramCache(cache), UseFunctions(registry)), nil
	case EngineCEL:
		return NewCELEvaluator(UseProgramCache(cache), UseFunctions(registry)), nil
	case EngineJS:
		if !jsEvaluatorAvailable() {
			return nil, fmt.Errorf("%w: %s (build with -tags js_eval)", ErrNoEvaluator, engine)
		}
		return NewJSEvaluator(UseProgramCache(cache), UseFunctions(registry)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
}

func resolveEvaluator(cfg storeConfig) Evaluator {
	if cfg.evaluator != nil {
		return cfg.evaluator
	}
	return NewExprEvaluator(UseProgramCache(cfg.programCache), UseFunctions(cfg.functions))
}

func evaluatorEngineName(e Evaluator) string {
	if named, ok := e.(interface{ engineName() string }); ok {
		return named.engineName()
	}
	return "custom"
}

// Evaluate runs expr once against the current tree.
func (s *Store) Evaluate(expr string) (any, error) {
	return s.EvaluateWith(EvalContext{Tree: s.GetState()}, expr)
}

// EvaluateWith runs expr against ctx, defaulting ctx.Tree to the current tree.
func (s *Store) EvaluateWith(ctx EvalContext, expr string) (any, error) {
	if expr == "" {
		return nil, ErrEmptyExpression
	}
	if s.evaluator == nil {
		return nil, ErrNoEvaluator
	}
	if ctx.Tree == nil {
		ctx.Tree = s.GetState()
	}
	ctx = ctx.withDefaults()
	engine := evaluatorEngineName(s.evaluator)
	start := time.Now()
	value, err := s.evaluator.Evaluate(ctx, expr)
	err = evalFailure(engine, PhaseEval, expr, ctx.versionLabel(), err)
	s.evalLog.LogEvaluation(EvaluatorLogEvent{
		Engine:   engine,
		Expr:     expr,
		Version:  ctx.versionLabel(),
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// ExprSelector is a compiled expression usable as a Projection. Evaluation
// failures yield a nil value and are kept for Err.
type ExprSelector struct {
	engine string
	expr   string
	rule   CompiledRule
	log    EvaluatorLogger
	args   map[string]any

	mu      sync.Mutex
	lastErr error
}

// CompileSelector compiles expr with the store's evaluator.
func (s *Store) CompileSelector(expr string, args map[string]any) (*ExprSelector, error) {
	if s.evaluator == nil {
		return nil, ErrNoEvaluator
	}
	engine := evaluatorEngineName(s.evaluator)
	rule, err := s.evaluator.Compile(expr)
	if err != nil {
		return nil, evalFailure(engine, PhaseCompile, expr, "", err)
	}
	return &ExprSelector{engine: engine, expr: expr, rule: rule, log: s.evalLog, args: args}, nil
}

// Project implements Projection[any].
func (e *ExprSelector) Project(tree *Tree) any {
	ctx := EvalContext{Tree: tree, Args: e.args}.withDefaults()
	start := time.Now()
	value, err := e.rule.Evaluate(ctx)
	err = evalFailure(e.engine, PhaseEval, e.expr, ctx.versionLabel(), err)
	e.log.LogEvaluation(EvaluatorLogEvent{
		Engine:   e.engine,
		Expr:     e.expr,
		Version:  ctx.versionLabel(),
		Duration: time.Since(start),
		Err:      err,
	})
	e.mu.Lock()
	e.lastErr = err
	e.mu.Unlock()
	if err != nil {
		return nil
	}
	return value
}

// Err returns the error of the most recent Project call.
func (e *ExprSelector) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Expression returns the source expression.
func (e *ExprSelector) Expression() string {
	return e.expr
}

// SelectExpr compiles expr and selects it for the lifetime of ctx. Compile
// and first-evaluation errors are returned; later failures surface through
// ExprSelector.Err.
func SelectExpr(ctx context.Context, s *Store, expr string, opts ...SelectorOption[any]) (*Selection[any], *ExprSelector, error) {
	selector, err := s.CompileSelector(expr, nil)
	if err != nil {
		return nil, nil, err
	}
	selection := Select(ctx, s, selector.Project, opts...)
	if err := selector.Err(); err != nil {
		selection.Close()
		return nil, nil, err
	}
	return selection, selector, nil
}
