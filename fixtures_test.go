package store

type counterState struct {
	N int `json:"n"`
}

type increment struct{ By int }

func (increment) Kind() string { return "counter/increment" }

type listState struct {
	Items []string `json:"items"`
}

type setItems struct{ Items []string }

func (setItems) Kind() string { return "list/setItems" }

func counterReducer() Reducer {
	return NewSlice("counter", func(state *counterState, action Action) *counterState {
		if state == nil {
			state = &counterState{}
		}
		switch a := action.(type) {
		case increment:
			return &counterState{N: state.N + a.By}
		default:
			return state
		}
	})
}

func listReducer() Reducer {
	return NewSlice("list", func(state *listState, action Action) *listState {
		if state == nil {
			state = &listState{Items: []string{}}
		}
		switch a := action.(type) {
		case setItems:
			return &listState{Items: a.Items}
		default:
			return state
		}
	})
}

func newTestStore(opts ...Option) *Store {
	return New(MustCombine(counterReducer(), listReducer()), opts...)
}
