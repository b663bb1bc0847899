// Package hydrate turns unwrapped, untyped response payloads into typed
// values.
package hydrate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNilPayload is returned when there is nothing to decode.
var ErrNilPayload = errors.New("hydrate: payload is nil")

// Stages reported by DecodeError.
const (
	StageCopy   = "copy"
	StagePre    = "pre-hook"
	StageDecode = "decode"
	StagePost   = "post-hook"
)

// Context identifies where a payload came from.
type Context struct {
	// Source names the request, e.g. "GET /products".
	Source string
	// Path is the selector the payload was unwrapped with, e.g. "$.data.items".
	Path string
}

func (c Context) String() string {
	if c.Path == "" {
		return c.Source
	}
	return c.Source + " " + c.Path
}

// DecodeError reports which stage rejected a payload.
type DecodeError struct {
	Stage   string
	Context Context
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("hydrate: %s %q: %v", e.Stage, e.Context.String(), e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// PreHook reshapes the payload before decoding. Returning nil keeps the
// payload it was given.
type PreHook func(Context, any) (any, error)

// PostHook adjusts or validates the decoded value in place.
type PostHook[T any] func(Context, *T) error

// CustomDecoder replaces JSON decoding.
type CustomDecoder[T any] func(Context, any) (T, error)

// DecoderOption configures a Decoder.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts payloads into T through pre-hooks, decoding and
// post-hooks. A Decoder is immutable once built and safe for concurrent use.
type Decoder[T any] struct {
	pre       []PreHook
	post      []PostHook[T]
	custom    CustomDecoder[T]
	useNumber bool
	strict    bool
}

func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.pre = append(d.pre, hook)
		}
	}
}

func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.post = append(d.post, hook)
		}
	}
}

// WithUseNumber keeps numbers as json.Number where T holds them as any.
func WithUseNumber[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) { d.useNumber = true }
}

// WithStrict rejects payload fields T does not declare.
func WithStrict[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) { d.strict = true }
}

func WithCustomDecoder[T any](decoder CustomDecoder[T]) DecoderOption[T] {
	return func(d *Decoder[T]) { d.custom = decoder }
}

// NewDecoder builds a Decoder.
func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode converts payload into T. Hooks work on a private copy, so the
// caller's payload is never modified.
func (d *Decoder[T]) Decode(ctx Context, payload any) (T, error) {
	var out T
	if payload == nil {
		return out, &DecodeError{Stage: StageCopy, Context: ctx, Err: ErrNilPayload}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return out, &DecodeError{Stage: StageCopy, Context: ctx, Err: err}
	}

	if len(d.pre) > 0 || d.custom != nil {
		var current any
		if err := json.Unmarshal(raw, &current); err != nil {
			return out, &DecodeError{Stage: StageCopy, Context: ctx, Err: err}
		}
		for _, hook := range d.pre {
			next, err := hook(ctx, current)
			if err != nil {
				return out, &DecodeError{Stage: StagePre, Context: ctx, Err: err}
			}
			if next != nil {
				current = next
			}
		}
		if d.custom != nil {
			if out, err = d.custom(ctx, current); err != nil {
				var zero T
				return zero, &DecodeError{Stage: StageDecode, Context: ctx, Err: err}
			}
			return d.validate(ctx, out)
		}
		if raw, err = json.Marshal(current); err != nil {
			return out, &DecodeError{Stage: StagePre, Context: ctx, Err: err}
		}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if d.useNumber {
		dec.UseNumber()
	}
	if d.strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(&out); err != nil {
		var zero T
		return zero, &DecodeError{Stage: StageDecode, Context: ctx, Err: err}
	}
	return d.validate(ctx, out)
}

func (d *Decoder[T]) validate(ctx Context, out T) (T, error) {
	for _, hook := range d.post {
		if err := hook(ctx, &out); err != nil {
			var zero T
			return zero, &DecodeError{Stage: StagePost, Context: ctx, Err: err}
		}
	}
	return out, nil
}
