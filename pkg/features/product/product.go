// Package product owns the "product" namespace: the catalogue list fetched
// from the remote API.
package product

import (
	"context"
	"slices"

	store "github.com/goliatone/go-store"
)

// Namespace is the tree key owned by this package.
const Namespace = "product"

// KindSetItems replaces the item list.
const KindSetItems = Namespace + store.KindSeparator + "setItems"

// Product is one catalogue entry as served by GET /products.
type Product struct {
	ID    int     `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
}

// State is the product slice.
type State struct {
	Items []Product `json:"items"`
}

// Action is the closed set of product actions.
type Action interface {
	store.Action
	productAction()
}

// SetItems replaces State.Items with Items.
type SetItems struct {
	Items []Product
}

func (SetItems) Kind() string  { return KindSetItems }
func (SetItems) productAction() {}

// NewSetItems is the action creator used by the fetch-sync hook.
func NewSetItems(items []Product) store.Action {
	return SetItems{Items: items}
}

// Initial returns the empty slice.
func Initial() *State {
	return &State{Items: []Product{}}
}

// Reduce applies product actions. Actions of other namespaces return state
// unchanged.
func Reduce(state *State, action store.Action) *State {
	if state == nil {
		state = Initial()
	}
	typed, ok := action.(Action)
	if !ok {
		return state
	}
	switch a := typed.(type) {
	case SetItems:
		items := slices.Clone(a.Items)
		if items == nil {
			items = []Product{}
		}
		return &State{Items: items}
	}
	return state
}

// Reducer registers Reduce under Namespace.
func Reducer() store.Reducer {
	return store.NewSlice(Namespace, Reduce)
}

// Select returns the product slice of tree.
func Select(tree *store.Tree) *State {
	state, ok := store.SliceOf[*State](tree, Namespace)
	if !ok || state == nil {
		return Initial()
	}
	return state
}

// Items returns the current item list. Callers must not modify it.
func Items(tree *store.Tree) []Product {
	return Select(tree).Items
}

// UseProducts keeps the item list live for the lifetime of ctx.
func UseProducts(ctx context.Context, s *store.Store, opts ...store.SelectorOption[[]Product]) *store.Selection[[]Product] {
	return store.Select(ctx, s, Items, opts...)
}
