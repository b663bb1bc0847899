package store

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"
)

// Projection derives a view from a tree. It must be a pure function of the
// tree.
type Projection[T any] func(*Tree) T

// EqualFunc reports whether two projection results are the same for refresh
// purposes.
type EqualFunc[T any] func(a, b T) bool

// SelectorOption configures a Selection.
type SelectorOption[T any] func(*selectorConfig[T])

type selectorConfig[T any] struct {
	equal    EqualFunc[T]
	onChange func(T)
}

// WithEqual sets the comparison policy. The default is EqualReference.
func WithEqual[T any](equal EqualFunc[T]) SelectorOption[T] {
	return func(cfg *selectorConfig[T]) {
		if equal != nil {
			cfg.equal = equal
		}
	}
}

// WithOnChange registers a callback run on the dispatching goroutine each
// time the projected value changes.
func WithOnChange[T any](fn func(T)) SelectorOption[T] {
	return func(cfg *selectorConfig[T]) {
		cfg.onChange = fn
	}
}

// EqualReference compares by identity: pointers, maps, slices, channels and
// functions are equal when they share the same underlying reference (slices
// also need equal length); other comparable values use ==. Values that are
// not comparable, such as structs holding slices, always compare unequal.
func EqualReference[T any](a, b T) bool {
	return sameReference(reflect.ValueOf(&a).Elem(), reflect.ValueOf(&b).Elem())
}

// EqualDeep compares with reflect.DeepEqual.
func EqualDeep[T any](a, b T) bool {
	return reflect.DeepEqual(a, b)
}

func sameReference(a, b reflect.Value) bool {
	if a.Kind() == reflect.Interface {
		if a.IsNil() || b.IsNil() {
			return a.IsNil() && b.IsNil()
		}
		a, b = a.Elem(), b.Elem()
		if a.Type() != b.Type() {
			return false
		}
	}
	switch a.Kind() {
	case reflect.Slice:
		return a.Len() == b.Len() && a.Pointer() == b.Pointer()
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()
	default:
		if a.Comparable() {
			return a.Equal(b)
		}
		return false
	}
}

// Selection is a live projection of the store. It recomputes on every
// dispatch and signals Changes when the comparison policy reports a new
// value. It is released when its context ends or Close is called.
type Selection[T any] struct {
	store      *Store
	projection Projection[T]
	cfg        selectorConfig[T]

	mu      sync.RWMutex
	value   T
	version uint64

	recomputations atomic.Int64
	refreshes      atomic.Int64

	changes     chan struct{}
	done        chan struct{}
	closeOnce   sync.Once
	unsubscribe Unsubscribe
}

// Select evaluates projection against the current tree and keeps it up to
// date until ctx is done or the returned Selection is closed.
func Select[T any](ctx context.Context, s *Store, projection Projection[T], opts ...SelectorOption[T]) *Selection[T] {
	cfg := selectorConfig[T]{equal: EqualReference[T]}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	sel := &Selection[T]{
		store:      s,
		projection: projection,
		cfg:        cfg,
		changes:    make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
	tree := s.GetState()
	sel.value = projection(tree)
	sel.version = tree.Version()
	sel.recomputations.Add(1)
	sel.unsubscribe = s.Subscribe(sel.recompute)
	if s.GetState().Version() != sel.version {
		sel.recompute()
	}

	if ctx != nil && ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				sel.Close()
			case <-sel.done:
			}
		}()
	}
	return sel
}

// recompute may run on several dispatching goroutines at once. A result is
// kept only when its tree is newer than the one behind the current value.
func (s *Selection[T]) recompute() {
	tree := s.store.GetState()
	next := s.projection(tree)
	s.recomputations.Add(1)

	s.mu.Lock()
	if tree.Version() <= s.version {
		s.mu.Unlock()
		return
	}
	s.version = tree.Version()
	changed := !s.cfg.equal(s.value, next)
	if changed {
		s.value = next
	}
	s.mu.Unlock()

	if !changed {
		return
	}
	s.refreshes.Add(1)
	select {
	case s.changes <- struct{}{}:
	default:
	}
	if s.cfg.onChange != nil {
		s.cfg.onChange(next)
	}
}

// Value returns the most recent projection result.
func (s *Selection[T]) Value() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Version is the version of the tree behind Value.
func (s *Selection[T]) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Changes delivers a coalesced signal whenever Value changed. Readers call
// Value after receiving.
func (s *Selection[T]) Changes() <-chan struct{} {
	return s.changes
}

// Done is closed once the selection has been released.
func (s *Selection[T]) Done() <-chan struct{} {
	return s.done
}

// Recomputations counts projection evaluations, including the initial one.
func (s *Selection[T]) Recomputations() int64 {
	return s.recomputations.Load()
}

// Refreshes counts recomputations whose result differed from the previous
// value.
func (s *Selection[T]) Refreshes() int64 {
	return s.refreshes.Load()
}

// Close releases the subscription. It is safe to call more than once and
// from any goroutine.
func (s *Selection[T]) Close() {
	s.closeOnce.Do(func() {
		s.unsubscribe()
		close(s.done)
	})
}
