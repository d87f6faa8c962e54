package mapprefs

import (
	"fmt"
	"sort"
	"strings"
)

// FieldDescriptor describes one editable bundle path.
type FieldDescriptor struct {
	Path  string `json:"path"`
	Type  string `json:"type"`
	Range *Range `json:"range,omitempty"`
}

// DescribeFields lists every leaf path of a bundle in sorted order, with the
// clamp range for numeric fields.
func DescribeFields() []FieldDescriptor {
	fields := deriveFieldDescriptors(toMap(ShippedDefaults()), "")
	for i := range fields {
		if r, ok := RangeFor(fields[i].Path); ok {
			r := r
			fields[i].Range = &r
		}
	}
	return fields
}

func deriveFieldDescriptors(value any, prefix string) []FieldDescriptor {
	if value == nil {
		return nil
	}

	switch typed := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		var fields []FieldDescriptor
		for _, key := range keys {
			fields = append(fields, deriveFieldDescriptors(typed[key], joinPath(prefix, key))...)
		}
		return fields
	default:
		if prefix == "" {
			return nil
		}
		return []FieldDescriptor{{
			Path: prefix,
			Type: typeName(typed),
		}}
	}
}

func typeName(value any) string {
	switch value.(type) {
	case bool:
		return "bool"
	case float64:
		return "number"
	default:
		return fmt.Sprintf("%T", value)
	}
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return strings.Join([]string{prefix, segment}, ".")
}
