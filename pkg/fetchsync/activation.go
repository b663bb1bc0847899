package fetchsync

import (
	"context"
	"sync"
	"sync/atomic"

	store "github.com/goliatone/go-store"
)

// Result is the view-facing pair. Loading is true until the activation's
// action has been dispatched.
type Result[T any] struct {
	Loading bool
	Data    T
}

// Activation is one mounted use of a Hook.
type Activation[T any] struct {
	id        string
	cancel    context.CancelFunc
	selection *store.Selection[T]

	status atomic.Int32

	mu      sync.Mutex
	err     error
	history []Status

	done      chan struct{}
	doneOnce  sync.Once
	closeOnce sync.Once
}

func newActivation[T any](id string, cancel context.CancelFunc) *Activation[T] {
	a := &Activation[T]{
		id:      id,
		cancel:  cancel,
		done:    make(chan struct{}),
		history: []Status{Idle},
	}
	a.status.Store(int32(Idle))
	return a
}

func (a *Activation[T]) transition(status Status, err error) {
	a.mu.Lock()
	a.err = err
	a.history = append(a.history, status)
	a.mu.Unlock()
	a.status.Store(int32(status))
}

func (a *Activation[T]) markDone() {
	a.doneOnce.Do(func() { close(a.done) })
}

// ID is a unique identifier used in logs and activity events.
func (a *Activation[T]) ID() string {
	return a.id
}

func (a *Activation[T]) Status() Status {
	return Status(a.status.Load())
}

// History lists every status the activation went through, starting at Idle.
func (a *Activation[T]) History() []Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Status(nil), a.history...)
}

// Loading is true until the fetched payload has been dispatched. A failed or
// dropped fetch never clears it.
func (a *Activation[T]) Loading() bool {
	return a.Status() != Settled
}

// Data is the live projection of the hook's namespace. Before the first
// dispatch it is whatever the tree already holds.
func (a *Activation[T]) Data() T {
	return a.selection.Value()
}

// Result returns Loading and Data together.
func (a *Activation[T]) Result() Result[T] {
	return Result[T]{Loading: a.Loading(), Data: a.Data()}
}

// Changes signals whenever Data changed.
func (a *Activation[T]) Changes() <-chan struct{} {
	return a.selection.Changes()
}

// Err returns the failure cause once the activation failed or was dropped.
func (a *Activation[T]) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Done is closed when the activation reaches a terminal status.
func (a *Activation[T]) Done() <-chan struct{} {
	return a.done
}

// Wait blocks until the activation is terminal or ctx ends, and returns Err
// or ctx.Err respectively.
func (a *Activation[T]) Wait(ctx context.Context) error {
	select {
	case <-a.done:
		return a.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close unsubscribes the data selector and cancels the activation context.
// An in-flight fetch is only abandoned under WithStaleSuppression.
func (a *Activation[T]) Close() {
	a.closeOnce.Do(func() {
		a.cancel()
		a.selection.Close()
	})
}
