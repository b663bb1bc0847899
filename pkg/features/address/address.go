// Package address owns the "address" namespace: administrative provinces.
package address

import (
	"context"
	"slices"

	store "github.com/goliatone/go-store"
)

// Namespace is the tree key owned by this package.
const Namespace = "address"

// KindSetProvinces replaces the province list.
const KindSetProvinces = Namespace + store.KindSeparator + "setProvinces"

// Province is one entry served by the provinces endpoint.
type Province struct {
	ProvinceID int    `json:"province_id"`
	Name       string `json:"name"`
}

// State is the address slice.
type State struct {
	Provinces []Province `json:"provinces"`
}

// Action is the closed set of address actions.
type Action interface {
	store.Action
	addressAction()
}

// SetProvinces replaces State.Provinces.
type SetProvinces struct {
	Provinces []Province
}

func (SetProvinces) Kind() string  { return KindSetProvinces }
func (SetProvinces) addressAction() {}

// NewSetProvinces is the action creator used by the fetch-sync hook.
func NewSetProvinces(provinces []Province) store.Action {
	return SetProvinces{Provinces: provinces}
}

func Initial() *State {
	return &State{Provinces: []Province{}}
}

func Reduce(state *State, action store.Action) *State {
	if state == nil {
		state = Initial()
	}
	switch a := action.(type) {
	case SetProvinces:
		provinces := slices.Clone(a.Provinces)
		if provinces == nil {
			provinces = []Province{}
		}
		return &State{Provinces: provinces}
	default:
		return state
	}
}

func Reducer() store.Reducer {
	return store.NewSlice(Namespace, Reduce)
}

// Provinces returns the current province list. Callers must not modify it.
func Provinces(tree *store.Tree) []Province {
	state, ok := store.SliceOf[*State](tree, Namespace)
	if !ok || state == nil {
		return Initial().Provinces
	}
	return state.Provinces
}

// UseProvinces keeps the province list live for the lifetime of ctx.
func UseProvinces(ctx context.Context, s *store.Store, opts ...store.SelectorOption[[]Province]) *store.Selection[[]Province] {
	return store.Select(ctx, s, Provinces, opts...)
}
