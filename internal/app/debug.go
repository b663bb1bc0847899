//go:build debug

package app

import (
	"expvar"
	"sync"
	"sync/atomic"

	store "github.com/goliatone/go-store"
)

// DebugStore is the most recently published store. It only exists in builds
// tagged debug.
var DebugStore atomic.Pointer[store.Store]

var publishOnce sync.Once

func publishDebug(a *App) {
	DebugStore.Store(a.Store)
	publishOnce.Do(func() {
		expvar.Publish("store", expvar.Func(func() any {
			s := DebugStore.Load()
			if s == nil {
				return nil
			}
			tree := s.GetState()
			return map[string]any{
				"version":  tree.Version(),
				"state":    tree.Snapshot(),
				"activity": s.Activity().Stats(),
			}
		}))
	})
}

func debugEnabled() bool { return true }

func debugPublished() bool { return DebugStore.Load() != nil }
