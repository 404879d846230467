package printer

import (
	"fmt"
	"reflect"
	"strings"
)

// InfoLine writes one "label = value" line, optionally indented. A nil
// value prints as "n/a"; slices and arrays are joined with ", ".
func InfoLine(w Writer, indent, label string, value any) {
	if indent != "" {
		w.Print(indent)
	}
	if label != "" {
		w.Print(label)
		w.Print(" = ")
	}
	w.Print(valueString(value))
	w.Println()
}

func valueString(v any) string {
	if v == nil {
		return "n/a"
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return string(rv.Bytes())
		}
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = fmt.Sprint(rv.Index(i).Interface())
		}
		return strings.Join(parts, ", ")
	case reflect.Pointer:
		if rv.IsNil() {
			return "n/a"
		}
	}
	return fmt.Sprint(v)
}
