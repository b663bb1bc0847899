//go:build js_eval

package store

import (
	"github.com/dop251/goja"
)

// jsEvaluator runs JavaScript selectors such as `product.items.length` on a
// fresh goja runtime per evaluation.
type jsEvaluator struct {
	engine
}

// NewJSEvaluator returns an Evaluator backed by goja.
func NewJSEvaluator(opts ...EngineOption) Evaluator {
	return &jsEvaluator{engine: newEngine(EngineJS, opts)}
}

func jsEvaluatorAvailable() bool { return true }

func (e *jsEvaluator) Evaluate(ctx EvalContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

func (e *jsEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, ErrEmptyExpression
	}
	if cached, ok := e.lookup(expression); ok {
		if program, ok := cached.(*goja.Program); ok {
			return &jsRule{evaluator: e, program: program, source: expression}, nil
		}
	}
	program, err := goja.Compile("selector.js", "(function(){ return ("+expression+"); })()", true)
	if err != nil {
		return nil, e.compileErr(expression, err)
	}
	e.remember(expression, program)
	return &jsRule{evaluator: e, program: program, source: expression}, nil
}

type jsRule struct {
	evaluator *jsEvaluator
	program   *goja.Program
	source    string
}

func (r *jsRule) Evaluate(ctx EvalContext) (any, error) {
	ctx = ctx.withDefaults()
	vars, err := r.evaluator.bindings(ctx)
	if err != nil {
		return nil, r.evaluator.evalErr(ctx, r.source, err)
	}
	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))
	for name, value := range vars {
		if err := vm.Set(name, value); err != nil {
			return nil, r.evaluator.evalErr(ctx, r.source, err)
		}
	}
	if r.evaluator.functions != nil {
		_ = vm.Set("call", func(name string, args ...any) (any, error) {
			return r.evaluator.call(name, args...)
		})
		for name, fn := range r.evaluator.helpers() {
			_ = vm.Set(name, fn)
		}
	}
	value, err := vm.RunProgram(r.program)
	if err != nil {
		return nil, r.evaluator.evalErr(ctx, r.source, err)
	}
	return value.Export(), nil
}
