// Package feed holds raw product feed records and the attribute lookup rules
// shared by every transformation step.
package feed

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Value is a feed attribute value. Scalar attributes decode to a single
// element; repeated attributes (additional_image_link, size, ...) keep every
// occurrence in feed order.
type Value []string

// String returns the first element, or "" for an empty value.
func (v Value) String() string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

// IsEmpty reports whether the value carries no non-blank element.
func (v Value) IsEmpty() bool {
	for _, s := range v {
		if s != "" {
			return false
		}
	}
	return true
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case nil:
		*v = nil
	case []interface{}:
		out := make(Value, 0, len(x))
		for _, item := range x {
			s, err := scalarString(item)
			if err != nil {
				return err
			}
			out = append(out, s)
		}
		*v = out
	default:
		s, err := scalarString(x)
		if err != nil {
			return err
		}
		*v = Value{s}
	}
	return nil
}

func scalarString(x interface{}) (string, error) {
	switch s := x.(type) {
	case string:
		return s, nil
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(s), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("unsupported feed value %T", x)
	}
}

// Record is one product (or variation) row of the feed. Keys are vendor
// defined; missing keys read as empty.
type Record map[string]Value

// NewRecord builds a record from plain single-valued attributes.
func NewRecord(attrs map[string]string) Record {
	r := make(Record, len(attrs))
	for k, v := range attrs {
		r[k] = Value{v}
	}
	return r
}
