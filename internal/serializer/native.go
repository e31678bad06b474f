package serializer

import (
	"math"
	"reflect"

	"github.com/mcncl/mirrorjson/internal/config"
)

// IsNative reports whether v can be handed to a JSON encoder as is: nil,
// booleans, finite numbers, strings, byte slices, and slices, arrays or
// string-keyed maps made only of such values.
func IsNative(v any) bool {
	return isNative(reflect.ValueOf(v), config.DefaultMaxDepth)
}

// isNative gives up on objects and arrays nested more than budget levels
// below v, which also keeps self-referencing maps and slices from looping.
// The converter reports those properly.
func isNative(v reflect.Value, budget int) bool {
	if !v.IsValid() {
		return true
	}
	if declaresShape(v) {
		return false
	}

	switch v.Kind() {
	case reflect.String:
		return v.Type() != numberType || validNumber(v.String())
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	case reflect.Interface:
		if v.IsNil() {
			return true
		}
		return isNative(v.Elem(), budget)
	case reflect.Slice:
		if v.IsNil() || v.Type().Elem().Kind() == reflect.Uint8 {
			return true
		}
		return elementsNative(v, budget)
	case reflect.Array:
		return elementsNative(v, budget)
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return false
		}
		if v.IsNil() {
			return true
		}
		if budget < 0 {
			return false
		}
		iter := v.MapRange()
		for iter.Next() {
			if !isNative(iter.Value(), budget-1) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func elementsNative(v reflect.Value, budget int) bool {
	if budget < 0 {
		return false
	}
	for i := 0; i < v.Len(); i++ {
		if !isNative(v.Index(i), budget-1) {
			return false
		}
	}
	return true
}
