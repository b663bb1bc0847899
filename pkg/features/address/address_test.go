package address

import (
	"testing"

	store "github.com/goliatone/go-store"
)

func TestKind(t *testing.T) {
	if KindSetProvinces != "address/setProvinces" {
		t.Fatalf("unexpected kind %q", KindSetProvinces)
	}
}

func TestReduce(t *testing.T) {
	state := Reduce(nil, store.Raw{Type: store.InitKind})
	if state.Provinces == nil || len(state.Provinces) != 0 {
		t.Fatalf("expected empty initial provinces, got %#v", state)
	}

	next := Reduce(state, SetProvinces{Provinces: []Province{{ProvinceID: 1, Name: "Hanoi"}}})
	if next == state || len(next.Provinces) != 1 || next.Provinces[0].Name != "Hanoi" {
		t.Fatalf("unexpected state %#v", next)
	}

	if Reduce(next, store.Raw{Type: "address/unknown"}) != next {
		t.Fatalf("unknown action should return the same slice")
	}
}

func TestProvincesSelector(t *testing.T) {
	s := store.New(store.MustCombine(Reducer()))
	s.Dispatch(NewSetProvinces([]Province{{ProvinceID: 1, Name: "Hanoi"}, {ProvinceID: 2, Name: "Hue"}}))

	provinces := Provinces(s.GetState())
	if len(provinces) != 2 || provinces[1].Name != "Hue" {
		t.Fatalf("unexpected provinces %#v", provinces)
	}

	count, err := s.Evaluate("len(address.provinces)")
	if err != nil || count != 2 {
		t.Fatalf("unexpected count %#v (%v)", count, err)
	}
	name, err := s.Evaluate("address.provinces[0].name")
	if err != nil || name != "Hanoi" {
		t.Fatalf("unexpected name %#v (%v)", name, err)
	}
}
