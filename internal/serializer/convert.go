package serializer

import (
	"encoding"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"

	gojson "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/mcncl/mirrorjson/internal/errors"
	"github.com/mcncl/mirrorjson/internal/models"
)

const rootPath = "$"

var (
	jsonMarshalerType = reflect.TypeFor[json.Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
	recordType        = reflect.TypeFor[models.Record]()
	collectionType    = reflect.TypeFor[models.Collection]()
	numberType        = reflect.TypeFor[json.Number]()
)

// visit identifies a reference-like value on the current descent path.
type visit struct {
	ptr uintptr
	typ reflect.Type
	len int
}

// converter is created per call; active only holds the ancestors of the
// node being converted, so shared references that are not cycles pass.
type converter struct {
	opts   Options
	log    *zap.Logger
	active map[visit]struct{}
}

func newConverter(opts Options) *converter {
	return &converter{
		opts:   opts,
		log:    opts.Logger,
		active: make(map[visit]struct{}),
	}
}

// convert turns v into a JSON value tree. depth is the nesting level v
// occupies if it becomes an object or an array: the root is at 0 and only
// record and collection levels increase it.
func (c *converter) convert(v reflect.Value, path string, depth int) (models.JSONValue, error) {
	if !v.IsValid() {
		return nil, nil
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		if v.IsNil() {
			return nil, nil
		}
	}
	if v.Kind() == reflect.Interface {
		return c.convert(v.Elem(), path, depth)
	}

	leave, err := c.enterRef(v, path)
	if err != nil {
		return nil, err
	}
	defer leave()

	if m, ok := asInterface(v, jsonMarshalerType); ok {
		// The encoder calls MarshalJSON itself.
		return m, nil
	}
	if m, ok := asInterface(v, textMarshalerType); ok {
		text, err := m.(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return nil, errors.NewSerializeError(fmt.Sprintf("MarshalText failed for value at %s", path), err)
		}
		return string(text), nil
	}
	if r, ok := asInterface(v, recordType); ok {
		c.log.Debug("declared record", zap.String("path", path), zap.Stringer("type", v.Type()))
		return c.record(r.(models.Record).JSONFields(), path, depth)
	}
	if col, ok := asInterface(v, collectionType); ok {
		c.log.Debug("declared collection", zap.String("path", path), zap.Stringer("type", v.Type()))
		return c.collection(col.(models.Collection).JSONElements(), path, depth)
	}

	switch v.Kind() {
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint(), nil
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, errors.NewSerializeError(
				fmt.Sprintf("value at %s is %v, which JSON cannot represent", path, f),
				errors.ErrUnsupportedShape)
		}
		if v.Kind() == reflect.Float32 {
			return float32(f), nil
		}
		return f, nil
	case reflect.String:
		if v.Type() == numberType {
			if !validNumber(v.String()) {
				return nil, errors.NewSerializeError(
					fmt.Sprintf("value at %s is not a valid JSON number: %q", path, v.String()),
					errors.ErrUnsupportedShape)
			}
			return json.Number(v.String()), nil
		}
		return v.String(), nil
	case reflect.Pointer:
		return c.convert(v.Elem(), path, depth)
	case reflect.Struct:
		c.log.Debug("struct record", zap.String("path", path), zap.Stringer("type", v.Type()))
		if err := c.checkDepth(path, depth); err != nil {
			return nil, err
		}
		obj := make(models.JSONObject, v.NumField())
		if err := c.collectFields(v, obj, path, depth); err != nil {
			return nil, err
		}
		return obj, nil
	case reflect.Map:
		c.log.Debug("map record", zap.String("path", path), zap.Stringer("type", v.Type()))
		return c.mapRecord(v, path, depth)
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			// Encoded as base64 like encoding/json does.
			return v.Bytes(), nil
		}
		return c.sequence(v, path, depth)
	case reflect.Array:
		return c.sequence(v, path, depth)
	default:
		return nil, c.shapeError(v, path)
	}
}

// shapeError reports a value with no JSON shape. Pointer and interface
// indirections keep the root path, so they are still reported as the root.
func (c *converter) shapeError(v reflect.Value, path string) error {
	c.log.Debug("no JSON shape", zap.String("path", path), zap.Stringer("type", v.Type()))
	if path == rootPath {
		return errors.NewSerializeError(
			fmt.Sprintf("cannot determine the shape of root value of type %s", v.Type()),
			errors.ErrUnclassifiableRoot)
	}
	return errors.NewSerializeError(
		fmt.Sprintf("value at %s of type %s is neither record-like nor collection-like", path, v.Type()),
		errors.ErrUnsupportedShape)
}

// record converts a declared field list. The first occurrence of a name wins.
func (c *converter) record(fields []models.Field, path string, depth int) (models.JSONValue, error) {
	if err := c.checkDepth(path, depth); err != nil {
		return nil, err
	}
	obj := make(models.JSONObject, len(fields))
	if err := c.mergeFields(fields, obj, path, depth); err != nil {
		return nil, err
	}
	return obj, nil
}

func (c *converter) mergeFields(fields []models.Field, obj models.JSONObject, path string, depth int) error {
	for _, f := range fields {
		if _, exists := obj[f.Name]; exists {
			continue
		}
		val, err := c.convert(reflect.ValueOf(f.Value), childPath(path, f.Name), depth+1)
		if err != nil {
			return err
		}
		obj[f.Name] = val
	}
	return nil
}

func (c *converter) collection(elems []any, path string, depth int) (models.JSONValue, error) {
	if err := c.checkDepth(path, depth); err != nil {
		return nil, err
	}
	arr := make(models.JSONArray, len(elems))
	for i, e := range elems {
		val, err := c.convert(reflect.ValueOf(e), indexPath(path, i), depth+1)
		if err != nil {
			return nil, err
		}
		arr[i] = val
	}
	return arr, nil
}

func (c *converter) sequence(v reflect.Value, path string, depth int) (models.JSONValue, error) {
	c.log.Debug("sequence", zap.String("path", path), zap.Stringer("type", v.Type()), zap.Int("len", v.Len()))
	if err := c.checkDepth(path, depth); err != nil {
		return nil, err
	}
	arr := make(models.JSONArray, v.Len())
	for i := range arr {
		val, err := c.convert(v.Index(i), indexPath(path, i), depth+1)
		if err != nil {
			return nil, err
		}
		arr[i] = val
	}
	return arr, nil
}

// mapRecord visits entries in key order so errors are reported
// deterministically. Keys that collide after conversion keep the value whose
// key type name sorts last.
func (c *converter) mapRecord(v reflect.Value, path string, depth int) (models.JSONValue, error) {
	type entry struct {
		key string
		typ string
		val reflect.Value
	}

	if err := c.checkDepth(path, depth); err != nil {
		return nil, err
	}
	entries := make([]entry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		k := iter.Key()
		key, err := mapKey(k, path)
		if err != nil {
			return nil, err
		}
		if k.Kind() == reflect.Interface {
			k = k.Elem()
		}
		entries = append(entries, entry{key: key, typ: k.Type().String(), val: iter.Value()})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].key != entries[j].key {
			return entries[i].key < entries[j].key
		}
		return entries[i].typ < entries[j].typ
	})

	obj := make(models.JSONObject, len(entries))
	for _, e := range entries {
		val, err := c.convert(e.val, childPath(path, e.key), depth+1)
		if err != nil {
			return nil, err
		}
		obj[e.key] = val
	}
	return obj, nil
}

// checkDepth fails when an object or array would open below MaxDepth.
func (c *converter) checkDepth(path string, depth int) error {
	if depth > c.opts.MaxDepth {
		return errors.NewSerializeError(
			fmt.Sprintf("value at %s is nested deeper than %d levels", path, c.opts.MaxDepth),
			errors.ErrMaxDepthExceeded)
	}
	return nil
}

// enterRef marks a pointer, map or slice as an ancestor of the nodes below
// it. The returned func unmarks it.
func (c *converter) enterRef(v reflect.Value, path string) (func(), error) {
	key, ok := visitKey(v)
	if !ok {
		return func() {}, nil
	}
	if _, seen := c.active[key]; seen {
		return nil, errors.NewSerializeError(
			fmt.Sprintf("value at %s of type %s refers back to one of its ancestors", path, v.Type()),
			errors.ErrCyclicStructure)
	}
	c.active[key] = struct{}{}
	return func() { delete(c.active, key) }, nil
}

// validNumber reports whether s is JSON number text. An empty json.Number
// is written as 0 by both engines.
func validNumber(s string) bool {
	if s == "" {
		return true
	}
	first, last := s[0], s[len(s)-1]
	if first != '-' && (first < '0' || first > '9') {
		return false
	}
	if last < '0' || last > '9' {
		return false
	}
	return gojson.Valid([]byte(s))
}

// visitKey returns the identity of pointers, maps and non-empty slices.
func visitKey(v reflect.Value) (visit, bool) {
	switch v.Kind() {
	case reflect.Pointer:
		if v.Type().Elem().Size() == 0 {
			return visit{}, false
		}
		return visit{ptr: v.Pointer(), typ: v.Type()}, true
	case reflect.Map:
		return visit{ptr: v.Pointer(), typ: v.Type()}, true
	case reflect.Slice:
		if v.Len() == 0 {
			return visit{}, false
		}
		return visit{ptr: v.Pointer(), typ: v.Type(), len: v.Len()}, true
	}
	return visit{}, false
}

// asInterface returns v, or its address when only the pointer type
// implements iface, as an iface value.
func asInterface(v reflect.Value, iface reflect.Type) (any, bool) {
	if !v.CanInterface() {
		return nil, false
	}
	if v.Type().Implements(iface) {
		if v.Kind() == reflect.Pointer && v.IsNil() {
			return nil, false
		}
		return v.Interface(), true
	}
	if v.Kind() != reflect.Pointer && v.CanAddr() && reflect.PointerTo(v.Type()).Implements(iface) {
		return v.Addr().Interface(), true
	}
	return nil, false
}

func declaresShape(v reflect.Value) bool {
	if _, ok := asInterface(v, recordType); ok {
		return true
	}
	_, ok := asInterface(v, collectionType)
	return ok
}

func childPath(path, name string) string {
	return path + "." + name
}

func indexPath(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}
