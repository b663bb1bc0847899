package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-store/layering"
)

// Tree is one immutable version of the application state: a mapping from
// namespace to the slice owned by that namespace's reducer. Callers must not
// mutate slices obtained from a Tree.
type Tree struct {
	slices  map[string]any
	version uint64

	plainOnce sync.Once
	plain     map[string]any
	plainErr  error
}

func newTree(slices map[string]any, version uint64) *Tree {
	return &Tree{slices: slices, version: version}
}

// Version is 0 for the initial tree and increases by one per dispatch.
func (t *Tree) Version() uint64 {
	if t == nil {
		return 0
	}
	return t.version
}

// Slice returns the slice stored under namespace.
func (t *Tree) Slice(namespace string) (any, bool) {
	if t == nil {
		return nil, false
	}
	slice, ok := t.slices[namespace]
	return slice, ok
}

// SliceOf returns the slice stored under namespace asserted to S.
func SliceOf[S any](t *Tree, namespace string) (S, bool) {
	var zero S
	slice, ok := t.Slice(namespace)
	if !ok {
		return zero, false
	}
	typed, ok := slice.(S)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Namespaces returns the namespaces present in the tree, sorted.
func (t *Tree) Namespaces() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.slices))
	for name := range t.slices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of namespaces.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.slices)
}

// Plain returns the tree normalised through JSON: every slice becomes a
// map[string]any keyed by its json tags. The result is computed once per tree
// and shared, so callers must treat it as read-only.
func (t *Tree) Plain() (map[string]any, error) {
	if t == nil {
		return map[string]any{}, nil
	}
	t.plainOnce.Do(func() {
		buffer, err := json.Marshal(t.slices)
		if err != nil {
			t.plainErr = fmt.Errorf("store: marshal tree v%d: %w", t.version, err)
			return
		}
		var out map[string]any
		if err := json.Unmarshal(buffer, &out); err != nil {
			t.plainErr = fmt.Errorf("store: unmarshal tree v%d: %w", t.version, err)
			return
		}
		t.plain = out
	})
	return t.plain, t.plainErr
}

// Snapshot returns a deep copy of the slices that the caller may freely
// modify without affecting the store.
func (t *Tree) Snapshot() map[string]any {
	if t == nil {
		return map[string]any{}
	}
	return layering.Clone(t.slices)
}

// MarshalJSON encodes the tree as {"namespace": slice, ...}.
func (t *Tree) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(t.slices)
}
