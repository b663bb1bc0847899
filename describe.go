package store

import (
	"fmt"
	"sort"
	"strings"
)

// FieldDescriptor names a leaf path in the plain tree and its inferred type.
type FieldDescriptor struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

// Describe flattens the tree's plain form into sorted field descriptors,
// for example {Path: "product.items", Type: "[]map[string]interface {}"}.
// Arrays are described by their first element only.
func (t *Tree) Describe() ([]FieldDescriptor, error) {
	plain, err := t.Plain()
	if err != nil {
		return nil, err
	}
	fields := describeValue(plain, "")
	if fields == nil {
		fields = []FieldDescriptor{}
	}
	return fields, nil
}

func describeValue(value any, prefix string) []FieldDescriptor {
	if value == nil {
		if prefix == "" {
			return nil
		}
		return []FieldDescriptor{{Path: prefix, Type: "nil"}}
	}

	switch typed := value.(type) {
	case map[string]any:
		if len(typed) == 0 {
			if prefix == "" {
				return nil
			}
			return []FieldDescriptor{{Path: prefix, Type: "map[string]any"}}
		}
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		var fields []FieldDescriptor
		for _, key := range keys {
			fields = append(fields, describeValue(typed[key], joinPath(prefix, key))...)
		}
		return fields
	case []any:
		element := "any"
		if len(typed) > 0 {
			element = typeName(typed[0])
		}
		return []FieldDescriptor{{Path: prefix, Type: "[]" + element}}
	default:
		if prefix == "" {
			return nil
		}
		return []FieldDescriptor{{Path: prefix, Type: typeName(typed)}}
	}
}

func typeName(value any) string {
	if value == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", value)
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return strings.Join([]string{prefix, segment}, ".")
}
