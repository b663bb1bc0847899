package hydrate

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

type item struct {
	ID    int     `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
}

var listCtx = Context{Source: "GET /products", Path: "$.data.items"}

func TestDecodeList(t *testing.T) {
	payload := []any{
		map[string]any{"id": int64(1), "title": "Pen", "price": int64(10)},
		map[string]any{"id": 2.0, "title": "Ink", "price": 2.5},
	}

	got, err := NewDecoder[[]item]().Decode(listCtx, payload)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	want := []item{{ID: 1, Title: "Pen", Price: 10}, {ID: 2, Title: "Ink", Price: 2.5}}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("decoded mismatch:\nwant: %#v\n got: %#v", want, got)
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name    string
		payload any
		opts    []DecoderOption[[]item]
		stage   string
		message string
	}{
		{
			name:    "nil payload",
			payload: nil,
			stage:   StageCopy,
			message: `hydrate: copy "GET /products $.data.items": hydrate: payload is nil`,
		},
		{
			name:    "shape mismatch",
			payload: map[string]any{"id": 1},
			stage:   StageDecode,
		},
		{
			name:    "unknown field",
			payload: []any{map[string]any{"id": 1, "sku": "x"}},
			opts:    []DecoderOption[[]item]{WithStrict[[]item]()},
			stage:   StageDecode,
		},
		{
			name:    "unmarshalable payload",
			payload: []any{func() {}},
			stage:   StageCopy,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewDecoder(tc.opts...).Decode(listCtx, tc.payload)
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("expected DecodeError, got %v", err)
			}
			if decodeErr.Stage != tc.stage || decodeErr.Context != listCtx {
				t.Fatalf("unexpected error %+v", decodeErr)
			}
			if tc.message != "" && err.Error() != tc.message {
				t.Fatalf("message = %q, want %q", err.Error(), tc.message)
			}
		})
	}
	_, err := NewDecoder[[]item]().Decode(listCtx, nil)
	if !errors.Is(err, ErrNilPayload) {
		t.Fatalf("expected ErrNilPayload, got %v", err)
	}
}

func TestStrictNamesUnknownField(t *testing.T) {
	_, err := NewDecoder(WithStrict[[]item]()).Decode(listCtx, []any{map[string]any{"sku": "x"}})
	if err == nil || !strings.Contains(err.Error(), `unknown field "sku"`) {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestPreHookReshapesPayload(t *testing.T) {
	dropNulls := func(_ Context, payload any) (any, error) {
		list, _ := payload.([]any)
		out := make([]any, 0, len(list))
		for _, entry := range list {
			if entry != nil {
				out = append(out, entry)
			}
		}
		return out, nil
	}
	decoder := NewDecoder(WithPreHook[[]item](dropNulls))

	got, err := decoder.Decode(listCtx, []any{nil, map[string]any{"id": 3}})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("unexpected result %#v", got)
	}
}

func TestPreHookSeesCopy(t *testing.T) {
	original := map[string]any{"id": 1}
	mutate := func(_ Context, payload any) (any, error) {
		payload.(map[string]any)["id"] = 99
		return nil, nil
	}
	got, err := NewDecoder(WithPreHook[item](mutate)).Decode(listCtx, original)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != 99 {
		t.Fatalf("expected hook mutation to apply to the copy, got %d", got.ID)
	}
	if original["id"] != 1 {
		t.Fatalf("caller payload was mutated: %v", original)
	}
}

func TestPostHookFailure(t *testing.T) {
	errEmpty := errors.New("empty list")
	requireItems := func(_ Context, items *[]item) error {
		if len(*items) == 0 {
			return errEmpty
		}
		return nil
	}
	_, err := NewDecoder(WithPostHook(requireItems)).Decode(listCtx, []any{})
	if !errors.Is(err, errEmpty) {
		t.Fatalf("expected post-hook error, got %v", err)
	}
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) || decodeErr.Stage != StagePost {
		t.Fatalf("expected post-hook stage, got %v", err)
	}
}

func TestCustomDecoder(t *testing.T) {
	count := func(_ Context, payload any) (int, error) {
		list, ok := payload.([]any)
		if !ok {
			return 0, errors.New("not a list")
		}
		return len(list), nil
	}
	decoder := NewDecoder(WithCustomDecoder(count))

	got, err := decoder.Decode(listCtx, []any{1, 2, 3})
	if err != nil || got != 3 {
		t.Fatalf("unexpected result %d (%v)", got, err)
	}
	_, err = decoder.Decode(listCtx, "x")
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) || decodeErr.Stage != StageDecode {
		t.Fatalf("expected decode stage error, got %v", err)
	}
}

func TestUseNumber(t *testing.T) {
	got, err := NewDecoder(WithUseNumber[map[string]any]()).Decode(Context{Source: "GET /raw"}, map[string]any{"n": 12})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := got["n"].(json.Number); !ok {
		t.Fatalf("expected json.Number, got %T", got["n"])
	}
}
