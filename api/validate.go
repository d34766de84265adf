package api

import (
	"fmt"
	"reflect"

	"github.com/c2fo/pilot"
)

// StringList checks that value is a list whose elements are all strings and returns it as
// a []string. Empty lists pass. Anything else, nil included, fails with a
// *pilot.PayloadTypeError naming field.
func StringList(field string, value any) ([]string, error) {
	if v, ok := value.([]string); ok {
		return v, nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, &pilot.PayloadTypeError{Field: field, Received: typeName(value)}
	}

	out := make([]string, 0, rv.Len())
	for i := range rv.Len() {
		elem := rv.Index(i).Interface()
		s, ok := elem.(string)
		if !ok {
			return nil, &pilot.PayloadTypeError{Field: field, Received: typeName(elem), Element: true}
		}
		out = append(out, s)
	}
	return out, nil
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}

// stringListFields validates the named entries of raw and returns them keyed by field.
// Missing entries become empty lists; an entry present as null is rejected.
func stringListFields(raw map[string]any, fields ...string) (map[string][]string, error) {
	out := make(map[string][]string, len(fields))
	for _, f := range fields {
		v, ok := raw[f]
		if !ok {
			out[f] = []string{}
			continue
		}
		list, err := StringList(f, v)
		if err != nil {
			return nil, err
		}
		out[f] = list
	}
	return out, nil
}

// stringField returns raw[key] when it is a string, or "" when missing.
func stringField(raw map[string]any, key string) (string, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &pilot.PayloadTypeError{Field: key, Expected: "string", Received: typeName(v)}
	}
	return s, nil
}
