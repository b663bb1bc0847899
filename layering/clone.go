// Package layering deep-copies and overlays plain Go values. Configuration is
// assembled from environment, file and default layers with MergeLayers, and
// store trees are detached for inspection with Clone.
package layering

import "reflect"

// Clone returns a deep copy of value. Pointers shared inside value stay
// shared in the copy, and unexported struct fields are left zero.
func Clone[T any](value T) T {
	var out T
	reflect.ValueOf(&out).Elem().Set(deepCopy(reflect.ValueOf(&value).Elem()))
	return out
}

func deepCopy(v reflect.Value) reflect.Value {
	return copier{seen: map[uintptr]reflect.Value{}}.copy(v)
}

// copier remembers copied pointers so aliasing and cycles survive a copy.
type copier struct {
	seen map[uintptr]reflect.Value
}

func (c copier) copy(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		if done, ok := c.seen[v.Pointer()]; ok && done.Type() == v.Type() {
			return done
		}
		out := reflect.New(v.Type().Elem())
		c.seen[v.Pointer()] = out
		out.Elem().Set(c.copy(v.Elem()))
		return out
	case reflect.Interface:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(c.copy(v.Elem()))
		return out
	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		for i := range v.NumField() {
			if field := out.Field(i); field.CanSet() {
				field.Set(c.copy(v.Field(i)))
			}
		}
		return out
	case reflect.Map:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		for iter := v.MapRange(); iter.Next(); {
			out.SetMapIndex(iter.Key(), c.copy(iter.Value()))
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := range v.Len() {
			out.Index(i).Set(c.copy(v.Index(i)))
		}
		return out
	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := range v.Len() {
			out.Index(i).Set(c.copy(v.Index(i)))
		}
		return out
	default:
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		return out
	}
}
