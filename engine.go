package store

import "strconv"

// EngineOption configures an expression engine built by NewExprEvaluator,
// NewCELEvaluator or NewJSEvaluator.
type EngineOption func(*engine)

// UseProgramCache shares compiled programs across evaluations. Programs that
// call helpers are keyed by the engine's registry, so evaluators with
// different helpers can share one cache.
func UseProgramCache(cache ProgramCache) EngineOption {
	return func(e *engine) {
		e.cache = cache
	}
}

// UseFunctions exposes a copy of registry to expressions.
func UseFunctions(registry *FunctionRegistry) EngineOption {
	return func(e *engine) {
		if registry != nil {
			e.functions = registry.Clone()
		}
	}
}

// engine holds what every evaluator shares: its name, an optional program
// cache and helper functions.
type engine struct {
	name      string
	cache     ProgramCache
	functions *FunctionRegistry
}

func newEngine(name string, opts []EngineOption) engine {
	e := engine{name: name}
	for _, opt := range opts {
		if opt != nil {
			opt(&e)
		}
	}
	return e
}

func (e engine) cacheKey(key string) string {
	if e.functions == nil {
		return e.name + ":" + key
	}
	return e.name + "#" + strconv.FormatUint(e.functions.id, 10) + ":" + key
}

func (e engine) lookup(key string) (any, bool) {
	if e.cache == nil {
		return nil, false
	}
	return e.cache.Get(e.cacheKey(key))
}

func (e engine) remember(key string, program any) {
	if e.cache != nil {
		e.cache.Set(e.cacheKey(key), program)
	}
}

func (e engine) compileErr(expr string, err error) error {
	return evalFailure(e.name, PhaseCompile, expr, "", err)
}

func (e engine) evalErr(ctx EvalContext, expr string, err error) error {
	return evalFailure(e.name, PhaseEval, expr, ctx.versionLabel(), err)
}

// bindings returns the top-level variables of an evaluation: one per
// namespace plus now, args, metadata and version.
func (e engine) bindings(ctx EvalContext) (map[string]any, error) {
	plain, err := ctx.Tree.Plain()
	if err != nil {
		return nil, err
	}
	vars := make(map[string]any, len(plain)+4)
	for namespace, slice := range plain {
		vars[namespace] = slice
	}
	vars["now"] = ctx.timestamp()
	vars["args"] = ctx.Args
	vars["metadata"] = ctx.Metadata
	vars["version"] = ctx.Tree.Version()
	return vars, nil
}

// helpers returns the registered functions as variadic Go funcs, keyed by
// name, plus the generic call(name, args...) entry point.
func (e engine) helpers() map[string]func(...any) (any, error) {
	if e.functions == nil {
		return nil
	}
	out := map[string]func(...any) (any, error){}
	for _, name := range e.functions.Names() {
		out[name] = e.functions.Bind(name)
	}
	return out
}

func (e engine) call(name string, args ...any) (any, error) {
	return e.functions.Call(name, args...)
}

func (e engine) engineName() string { return e.name }
