package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// InitKind is dispatched once by Combine to materialise every namespace's
// initial slice. No namespace reducer recognises it.
const InitKind = "@@store/init"

// Reducer reduces the slice owned by one namespace. Implementations must be
// pure: unknown kinds return the input slice unchanged, and a nil slice is
// replaced by the namespace's initial slice.
type Reducer interface {
	Namespace() string
	Reduce(slice any, action Action) any
}

// SliceReducer is the typed form of a namespace reducer.
type SliceReducer[S any] func(slice S, action Action) S

// NewSlice adapts a typed reducer into a Reducer. A missing or mistyped slice
// reaches reduce as the zero value of S, which reduce must treat as "use the
// initial slice".
func NewSlice[S any](namespace string, reduce SliceReducer[S]) Reducer {
	return &sliceReducer[S]{namespace: namespace, reduce: reduce}
}

type sliceReducer[S any] struct {
	namespace string
	reduce    SliceReducer[S]
}

func (r *sliceReducer[S]) Namespace() string {
	return r.namespace
}

func (r *sliceReducer[S]) Reduce(slice any, action Action) any {
	typed, _ := slice.(S)
	return r.reduce(typed, action)
}

var (
	// ErrReducerRequired indicates Combine received a nil reducer.
	ErrReducerRequired = errors.New("store: reducer must be provided")
	// ErrNamespaceRequired indicates a reducer reported an empty namespace.
	ErrNamespaceRequired = errors.New("store: namespace must be provided")
	// ErrInvalidNamespace indicates a namespace containing the kind separator.
	ErrInvalidNamespace = errors.New("store: namespace must not contain " + KindSeparator)
	// ErrDuplicateNamespace indicates two reducers claimed the same namespace.
	ErrDuplicateNamespace = errors.New("store: namespaces must be unique")
)

// RootReducer routes every action to every namespace reducer and assembles
// the results into a new Tree. The namespace mapping is fixed at Combine.
type RootReducer struct {
	reducers []Reducer
}

// Combine validates reducers and returns the frozen root reducer. Reducers
// are kept in namespace order so reduction is deterministic.
func Combine(reducers ...Reducer) (*RootReducer, error) {
	seen := make(map[string]struct{}, len(reducers))
	copied := make([]Reducer, 0, len(reducers))
	for _, reducer := range reducers {
		if reducer == nil {
			return nil, ErrReducerRequired
		}
		namespace := reducer.Namespace()
		if namespace == "" {
			return nil, ErrNamespaceRequired
		}
		if strings.Contains(namespace, KindSeparator) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidNamespace, namespace)
		}
		if _, ok := seen[namespace]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateNamespace, namespace)
		}
		seen[namespace] = struct{}{}
		copied = append(copied, reducer)
	}

	sort.Slice(copied, func(i, j int) bool {
		return copied[i].Namespace() < copied[j].Namespace()
	})
	return &RootReducer{reducers: copied}, nil
}

// MustCombine is Combine for static wiring; it panics on invalid input.
func MustCombine(reducers ...Reducer) *RootReducer {
	root, err := Combine(reducers...)
	if err != nil {
		panic(err)
	}
	return root
}

// Namespaces returns the registered namespaces in sorted order.
func (r *RootReducer) Namespaces() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.reducers))
	for i, reducer := range r.reducers {
		out[i] = reducer.Namespace()
	}
	return out
}

// Initial builds the version zero tree from each namespace's initial slice.
func (r *RootReducer) Initial() *Tree {
	return r.Reduce(nil, Raw{Type: InitKind})
}

// Reduce produces the next tree. The result is always a new Tree; slices of
// namespaces that ignored the action are carried over by reference.
func (r *RootReducer) Reduce(tree *Tree, action Action) *Tree {
	if r == nil {
		return tree
	}
	slices := make(map[string]any, len(r.reducers))
	var version uint64
	for _, reducer := range r.reducers {
		namespace := reducer.Namespace()
		var current any
		if tree != nil {
			current = tree.slices[namespace]
		}
		slices[namespace] = reducer.Reduce(current, action)
	}
	if tree != nil {
		version = tree.version + 1
	}
	return newTree(slices, version)
}

// Fold applies actions in order starting from tree.
func (r *RootReducer) Fold(tree *Tree, actions ...Action) *Tree {
	for _, action := range actions {
		tree = r.Reduce(tree, action)
	}
	return tree
}
