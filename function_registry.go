package store

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
)

var (
	// ErrUnknownFunction is returned when an expression calls an unregistered helper.
	ErrUnknownFunction = errors.New("store: unknown function")
	// ErrDuplicateFunction is returned when a helper name is registered twice.
	ErrDuplicateFunction = errors.New("store: function already registered")
)

// Function is a helper callable from selector expressions, such as
// `sum(product.items, "price")`.
type Function func(args ...any) (any, error)

// FunctionRegistry maps case-insensitive names to helpers. Register replaces
// the map instead of mutating it, so a map returned by current is read-only.
type FunctionRegistry struct {
	// id tells registries apart in program cache keys, since compiled
	// programs call back into the registry they were compiled with.
	id        uint64
	mu        sync.Mutex
	functions map[string]Function
}

var registryIDs atomic.Uint64

// NewFunctionRegistry returns an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{id: registryIDs.Add(1), functions: map[string]Function{}}
}

// Register adds fn under name.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	name = strings.ToLower(strings.TrimSpace(name))
	switch {
	case name == "":
		return fmt.Errorf("store: function name must not be empty")
	case fn == nil:
		return fmt.Errorf("store: function %q is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.functions[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateFunction, name)
	}
	next := maps.Clone(r.functions)
	if next == nil {
		next = map[string]Function{}
	}
	next[name] = fn
	r.functions = next
	return nil
}

func (r *FunctionRegistry) current() map[string]Function {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.functions
}

// Clone returns an independent registry with the same helpers.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	functions := maps.Clone(r.current())
	if functions == nil {
		functions = map[string]Function{}
	}
	return &FunctionRegistry{id: registryIDs.Add(1), functions: functions}
}

// Call runs the helper registered under name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	fn, ok := r.current()[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}
	return fn(args...)
}

// Bind returns a func that calls the helper registered under name.
func (r *FunctionRegistry) Bind(name string) func(...any) (any, error) {
	return func(args ...any) (any, error) {
		return r.Call(name, args...)
	}
}

// Names lists registered helpers in sorted order.
func (r *FunctionRegistry) Names() []string {
	return slices.Sorted(maps.Keys(r.current()))
}

// WithFunctionRegistry exposes registry to the default evaluator.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *storeConfig) {
		if registry != nil {
			cfg.functions = registry.Clone()
		}
	}
}

// WithCustomFunction registers a single helper for the default evaluator.
// A duplicate name keeps the first registration.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *storeConfig) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}

// Builtins returns a registry holding list helpers for JSON-shaped slices:
//
//	sum(list, field)          total of a numeric field
//	pluck(list, field)        the field of every element
//	find(list, field, value)  first element whose field equals value, or nil
func Builtins() *FunctionRegistry {
	r := NewFunctionRegistry()
	_ = r.Register("sum", sumField)
	_ = r.Register("pluck", pluckField)
	_ = r.Register("find", findByField)
	return r
}

func listAndField(fn string, args []any, want int) ([]any, string, error) {
	if len(args) != want {
		return nil, "", fmt.Errorf("%s: expected %d arguments, got %d", fn, want, len(args))
	}
	field, ok := args[1].(string)
	if !ok {
		return nil, "", fmt.Errorf("%s: field must be a string, got %T", fn, args[1])
	}
	switch list := args[0].(type) {
	case nil:
		return nil, field, nil
	case []any:
		return list, field, nil
	default:
		return nil, "", fmt.Errorf("%s: expected a list, got %T", fn, args[0])
	}
}

func fieldOf(element any, field string) any {
	if m, ok := element.(map[string]any); ok {
		return m[field]
	}
	return nil
}

func sumField(args ...any) (any, error) {
	list, field, err := listAndField("sum", args, 2)
	if err != nil {
		return nil, err
	}
	total := 0.0
	for i, element := range list {
		n, ok := toFloat(fieldOf(element, field))
		if !ok {
			return nil, fmt.Errorf("sum: element %d has non-numeric %q", i, field)
		}
		total += n
	}
	return total, nil
}

func pluckField(args ...any) (any, error) {
	list, field, err := listAndField("pluck", args, 2)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(list))
	for _, element := range list {
		out = append(out, fieldOf(element, field))
	}
	return out, nil
}

func findByField(args ...any) (any, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("find: expected 3 arguments, got %d", len(args))
	}
	list, field, err := listAndField("find", args[:2], 2)
	if err != nil {
		return nil, err
	}
	for _, element := range list {
		if looselyEqual(fieldOf(element, field), args[2]) {
			return element, nil
		}
	}
	return nil, nil
}

// looselyEqual treats numbers of any Go type as equal when their values
// match, since tree numbers are float64 and literals often are not.
func looselyEqual(a, b any) bool {
	if x, ok := toFloat(a); ok {
		y, ok := toFloat(b)
		return ok && x == y
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
