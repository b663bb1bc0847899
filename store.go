package store

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/goliatone/go-store/pkg/activity"
)

// Listener is invoked after every dispatch. It receives no arguments and
// reads the latest tree through Store.GetState.
type Listener func()

// Unsubscribe removes a listener. Calling it more than once is a no-op.
type Unsubscribe func()

// Store owns the current Tree. It is constructed once by the application's
// composition root and passed by reference to every consumer.
type Store struct {
	root *RootReducer

	// dispatchMu serialises reductions so tree versions form a total order.
	dispatchMu sync.Mutex
	current    atomic.Pointer[Tree]

	listenersMu sync.Mutex
	listeners   []*subscription

	logger    *slog.Logger
	emitter   *activity.Emitter
	evaluator Evaluator
	evalLog   EvaluatorLogger
}

type subscription struct {
	listener Listener
	active   atomic.Bool
}

// New builds a Store whose initial tree is root.Initial().
func New(root *RootReducer, opts ...Option) *Store {
	cfg := applyOptions(opts)
	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Store{
		root:      root,
		logger:    logger,
		emitter:   newActivityEmitter(cfg),
		evaluator: resolveEvaluator(cfg),
		evalLog:   cfg.evaluatorLogger,
	}
	if s.evalLog == nil {
		s.evalLog = SlogEvaluatorLogger(logger)
	}
	s.current.Store(root.Initial())
	return s
}

// GetState returns the current tree. The tree is shared and must be treated
// as read-only.
func (s *Store) GetState() *Tree {
	return s.current.Load()
}

// Namespaces lists the namespaces registered on the root reducer.
func (s *Store) Namespaces() []string {
	return s.root.Namespaces()
}

// Dispatch reduces action into a new tree, publishes it, and then notifies
// the listeners registered at that moment, in subscription order, on the
// calling goroutine. A nil action is ignored.
//
// Listeners run outside the reduction lock, so a listener may dispatch; it
// then observes the newer tree through GetState.
func (s *Store) Dispatch(action Action) *Tree {
	if action == nil {
		s.logger.Warn("store: nil action ignored")
		return s.GetState()
	}

	s.dispatchMu.Lock()
	next := s.root.Reduce(s.current.Load(), action)
	s.current.Store(next)
	s.dispatchMu.Unlock()

	s.logger.Debug("store: dispatched",
		slog.String("kind", action.Kind()),
		slog.Uint64("version", next.Version()),
	)

	for _, sub := range s.snapshotListeners() {
		if sub.active.Load() {
			sub.listener()
		}
	}

	s.recordDispatch(action, next)
	return next
}

// Subscribe registers listener for every subsequent dispatch.
func (s *Store) Subscribe(listener Listener) Unsubscribe {
	if listener == nil {
		return func() {}
	}
	sub := &subscription{listener: listener}
	sub.active.Store(true)

	s.listenersMu.Lock()
	s.listeners = append(s.listeners, sub)
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.active.Store(false)
			s.removeListener(sub)
		})
	}
}

// ListenerCount reports the number of active subscriptions.
func (s *Store) ListenerCount() int {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	return len(s.listeners)
}

func (s *Store) snapshotListeners() []*subscription {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	if len(s.listeners) == 0 {
		return nil
	}
	return append([]*subscription(nil), s.listeners...)
}

func (s *Store) removeListener(target *subscription) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	for i, sub := range s.listeners {
		if sub == target {
			s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
			return
		}
	}
}

// Logger returns the store's logger so collaborators log through the same
// handler.
func (s *Store) Logger() *slog.Logger {
	return s.logger
}
