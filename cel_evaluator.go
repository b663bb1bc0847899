package store

import (
	"maps"
	"reflect"
	"slices"
	"strings"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// celEvaluator runs CEL selectors such as `size(address.provinces)`. CEL
// declares variables up front, so programs are compiled per namespace set.
type celEvaluator struct {
	engine
}

// NewCELEvaluator returns an Evaluator backed by cel-go. Helpers are invoked
// as call("name", [args...]) because CEL has no variadic functions.
func NewCELEvaluator(opts ...EngineOption) Evaluator {
	return &celEvaluator{engine: newEngine(EngineCEL, opts)}
}

func (e *celEvaluator) Evaluate(ctx EvalContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

// Compile defers type checking to the first evaluation, when the namespaces
// of the tree are known.
func (e *celEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, ErrEmptyExpression
	}
	return &celRule{evaluator: e, expression: expression}, nil
}

func (e *celEvaluator) program(expression string, vars map[string]any) (celgo.Program, error) {
	names := slices.Sorted(maps.Keys(vars))
	key := strings.Join(names, ",") + ":" + expression
	if cached, ok := e.lookup(key); ok {
		if prg, ok := cached.(celgo.Program); ok {
			return prg, nil
		}
	}

	opts := make([]celgo.EnvOption, 0, len(names)+1)
	for _, name := range names {
		opts = append(opts, celgo.Variable(name, celType(name)))
	}
	if e.functions != nil {
		opts = append(opts, celgo.Function("call",
			celgo.Overload("call_string",
				[]*celgo.Type{celgo.StringType},
				celgo.DynType,
				celgo.UnaryBinding(func(name ref.Val) ref.Val {
					return e.invoke(name, nil)
				}),
			),
			celgo.Overload("call_string_list",
				[]*celgo.Type{celgo.StringType, celgo.ListType(celgo.DynType)},
				celgo.DynType,
				celgo.BinaryBinding(e.invoke),
			),
		))
	}
	env, err := celgo.NewEnv(opts...)
	if err != nil {
		return nil, err
	}
	checked, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	prg, err := env.Program(checked)
	if err != nil {
		return nil, err
	}
	e.remember(key, prg)
	return prg, nil
}

func celType(name string) *celgo.Type {
	switch name {
	case "now":
		return celgo.TimestampType
	case "version":
		return celgo.UintType
	default:
		return celgo.DynType
	}
}

func (e *celEvaluator) invoke(nameVal, argsVal ref.Val) ref.Val {
	name, ok := nameVal.Value().(string)
	if !ok {
		return types.NewErr("call: name must be a string")
	}
	var args []any
	if argsVal != nil {
		native, err := argsVal.ConvertToNative(reflect.TypeOf([]any{}))
		if err != nil {
			return types.NewErr("call %s: %v", name, err)
		}
		args, _ = native.([]any)
	}
	result, err := e.call(name, args...)
	if err != nil {
		return types.NewErr("%s", err.Error())
	}
	if result == nil {
		return types.NullValue
	}
	return types.DefaultTypeAdapter.NativeToValue(result)
}

type celRule struct {
	evaluator  *celEvaluator
	expression string
}

func (r *celRule) Evaluate(ctx EvalContext) (any, error) {
	ctx = ctx.withDefaults()
	vars, err := r.evaluator.bindings(ctx)
	if err != nil {
		return nil, r.evaluator.evalErr(ctx, r.expression, err)
	}
	prg, err := r.evaluator.program(r.expression, vars)
	if err != nil {
		return nil, r.evaluator.compileErr(r.expression, err)
	}
	out, _, err := prg.Eval(vars)
	if err != nil {
		return nil, r.evaluator.evalErr(ctx, r.expression, err)
	}
	return out.Value(), nil
}
