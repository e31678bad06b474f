package serializer

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/mcncl/mirrorjson/internal/config"
	"github.com/mcncl/mirrorjson/internal/errors"
	"github.com/mcncl/mirrorjson/internal/models"
)

type fieldTag struct {
	name      string
	skip      bool
	omitEmpty bool
}

func parseTag(tag string) fieldTag {
	if tag == "-" {
		return fieldTag{skip: true}
	}
	name, opts, _ := strings.Cut(tag, ",")
	ft := fieldTag{name: name}
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		if opt == "omitempty" {
			ft.omitEmpty = true
		}
	}
	return ft
}

// collectFields adds the fields of struct v to obj. Embedded structs without
// a json name act as base types: the outer struct's own fields are visited
// first, then each embedded struct in declaration order, and a key that is
// already present is never overwritten. Embedded fields share the depth of
// the object they are merged into.
func (c *converter) collectFields(v reflect.Value, obj models.JSONObject, path string, depth int) error {
	t := v.Type()
	var bases []reflect.Value
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := parseTag(sf.Tag.Get("json"))
		if tag.skip {
			continue
		}
		fv := v.Field(i)

		if sf.Anonymous && tag.name == "" {
			base := fv
			if base.Kind() == reflect.Pointer {
				if base.IsNil() {
					continue
				}
				leave, err := c.enterRef(base, path)
				if err != nil {
					return err
				}
				defer leave()
				base = base.Elem()
			}
			if base.Kind() == reflect.Struct {
				bases = append(bases, base)
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}

		name := tag.name
		if name == "" {
			name = config.ApplyKeyStyle(c.opts.KeyStyle, sf.Name)
		}
		if tag.omitEmpty && isEmptyValue(fv) {
			continue
		}
		if _, exists := obj[name]; exists {
			continue
		}

		val, err := c.convert(fv, childPath(path, name), depth+1)
		if err != nil {
			return err
		}
		obj[name] = val
	}

	for _, base := range bases {
		if r, ok := asInterface(base, recordType); ok {
			if err := c.mergeFields(r.(models.Record).JSONFields(), obj, path, depth); err != nil {
				return err
			}
			continue
		}
		if err := c.collectFields(base, obj, path, depth); err != nil {
			return err
		}
	}
	return nil
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	}
	return false
}

// mapKey turns a map key into an object key. Interface keys, as produced by
// YAML decoding, are resolved to their dynamic value first.
func mapKey(k reflect.Value, path string) (string, error) {
	if k.Kind() == reflect.Interface {
		if k.IsNil() {
			return "", errors.NewSerializeError(
				fmt.Sprintf("map at %s has a nil key", path), errors.ErrUnsupportedShape)
		}
		k = k.Elem()
	}

	if k.Kind() == reflect.String {
		return k.String(), nil
	}
	if tm, ok := asInterface(k, textMarshalerType); ok {
		text, err := tm.(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return "", errors.NewSerializeError(fmt.Sprintf("MarshalText failed for a map key at %s", path), err)
		}
		return string(text), nil
	}

	switch k.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10), nil
	case reflect.Bool:
		return strconv.FormatBool(k.Bool()), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(k.Float(), 'g', -1, k.Type().Bits()), nil
	}
	return "", errors.NewSerializeError(
		fmt.Sprintf("map at %s has a key of type %s that cannot become an object key", path, k.Type()),
		errors.ErrUnsupportedShape)
}
