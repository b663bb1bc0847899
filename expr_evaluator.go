package store

import (
	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// exprEvaluator runs expr-lang selectors such as `len(product.items)`.
// Namespaces are top-level variables and registered helpers are functions.
type exprEvaluator struct {
	engine
}

// NewExprEvaluator returns the default Evaluator, backed by expr-lang/expr.
func NewExprEvaluator(opts ...EngineOption) Evaluator {
	return &exprEvaluator{engine: newEngine(EngineExpr, opts)}
}

func (e *exprEvaluator) Evaluate(ctx EvalContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

func (e *exprEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, ErrEmptyExpression
	}
	if cached, ok := e.lookup(expression); ok {
		if program, ok := cached.(*exprvm.Program); ok {
			return &exprRule{evaluator: e, program: program, source: expression}, nil
		}
	}
	options := []exprlang.Option{
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	}
	if e.functions != nil {
		options = append(options, exprlang.Function("call", func(args ...any) (any, error) {
			if len(args) == 0 {
				return nil, ErrUnknownFunction
			}
			name, _ := args[0].(string)
			return e.call(name, args[1:]...)
		}))
		for name, fn := range e.helpers() {
			options = append(options, exprlang.Function(name, fn))
		}
	}
	program, err := exprlang.Compile(expression, options...)
	if err != nil {
		return nil, e.compileErr(expression, err)
	}
	e.remember(expression, program)
	return &exprRule{evaluator: e, program: program, source: expression}, nil
}

type exprRule struct {
	evaluator *exprEvaluator
	program   *exprvm.Program
	source    string
}

func (r *exprRule) Evaluate(ctx EvalContext) (any, error) {
	ctx = ctx.withDefaults()
	vars, err := r.evaluator.bindings(ctx)
	if err != nil {
		return nil, r.evaluator.evalErr(ctx, r.source, err)
	}
	out, err := exprlang.Run(r.program, vars)
	if err != nil {
		return nil, r.evaluator.evalErr(ctx, r.source, err)
	}
	return out, nil
}
