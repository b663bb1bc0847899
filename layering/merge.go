package layering

import "reflect"

// MergeLayers composes layers ordered from strongest to weakest. Each layer
// is laid over a copy of the weaker ones:
//   - structs merge field by field
//   - maps merge key by key
//   - non-nil pointers, slices and interfaces replace what is below them
//   - other values replace what is below them unless they are zero
//
// A pointer to false therefore overrides true, while a plain false does not.
func MergeLayers[T any](layers ...T) T {
	var out T
	if len(layers) == 0 {
		return out
	}
	dst := reflect.ValueOf(&out).Elem()
	for i := len(layers) - 1; i >= 0; i-- {
		overlay(dst, reflect.ValueOf(&layers[i]).Elem())
	}
	return out
}

// overlay writes the non-empty parts of src into the settable dst.
func overlay(dst, src reflect.Value) {
	switch src.Kind() {
	case reflect.Struct:
		for i := range src.NumField() {
			if field := dst.Field(i); field.CanSet() {
				overlay(field, src.Field(i))
			}
		}
	case reflect.Map:
		if src.IsNil() {
			return
		}
		if dst.IsNil() {
			dst.Set(reflect.MakeMapWithSize(src.Type(), src.Len()))
		}
		for iter := src.MapRange(); iter.Next(); {
			slot := reflect.New(src.Type().Elem()).Elem()
			if existing := dst.MapIndex(iter.Key()); existing.IsValid() {
				slot.Set(existing)
			}
			overlay(slot, iter.Value())
			dst.SetMapIndex(iter.Key(), slot)
		}
	case reflect.Pointer, reflect.Slice, reflect.Interface:
		if !src.IsNil() {
			dst.Set(deepCopy(src))
		}
	default:
		if !src.IsZero() {
			dst.Set(src)
		}
	}
}
