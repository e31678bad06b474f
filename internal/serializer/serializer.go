// Package serializer converts arbitrary Go values into JSON.
//
// A value that is already JSON-native goes straight to the encoder. Anything
// else is first converted by a recursive descent that classifies every node
// as record-like (named fields) or collection-like (unnamed children). Types
// can declare their shape explicitly by implementing models.Record or
// models.Collection; otherwise structs, maps, slices and arrays are discovered
// through reflection. A node that fits neither shape fails the whole call.
package serializer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"reflect"

	"go.uber.org/zap"

	"github.com/mcncl/mirrorjson/internal/config"
	"github.com/mcncl/mirrorjson/internal/encoder"
	"github.com/mcncl/mirrorjson/internal/errors"
	"github.com/mcncl/mirrorjson/internal/models"
)

// Options controls a Serializer.
type Options struct {
	Write                encoder.Options
	Engine               encoder.Engine
	KeyStyle             string
	MaxDepth             int
	RequireContainerRoot bool
	Logger               *zap.Logger
}

// Option mutates Options.
type Option func(*Options)

// WithIndent makes the encoder indent its output.
func WithIndent(prefix, indent string) Option {
	return func(o *Options) {
		o.Write.Prefix = prefix
		o.Write.Indent = indent
	}
}

// WithEscapeHTML escapes <, > and & inside strings.
func WithEscapeHTML(escape bool) Option {
	return func(o *Options) { o.Write.EscapeHTML = escape }
}

// WithEngine selects the encoder backend.
func WithEngine(e encoder.Engine) Option {
	return func(o *Options) { o.Engine = e }
}

// WithKeyStyle renames struct fields that carry no json tag. See
// config.ApplyKeyStyle for the accepted styles.
func WithKeyStyle(style string) Option {
	return func(o *Options) { o.KeyStyle = style }
}

// WithMaxDepth bounds the nesting depth of the converted tree. The root
// object or array is at depth 0; pointer and interface indirections do not
// count.
func WithMaxDepth(depth int) Option {
	return func(o *Options) { o.MaxDepth = depth }
}

// WithRequireContainerRoot rejects roots that do not convert to an object or
// an array. A json.Marshaler root is judged by the output of MarshalJSON.
func WithRequireContainerRoot(require bool) Option {
	return func(o *Options) { o.RequireContainerRoot = require }
}

// WithLogger traces classification decisions at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithConfig applies every serializer related setting of cfg. An unknown
// engine name falls back to the default engine; config.Validate reports it.
func WithConfig(cfg *config.Config) Option {
	return func(o *Options) {
		o.Write = encoder.Options{
			Prefix:     cfg.Output.Prefix,
			Indent:     cfg.Output.Indent,
			EscapeHTML: cfg.Output.EscapeHTML,
		}
		if e, err := encoder.Lookup(cfg.Encoder.Engine); err == nil {
			o.Engine = e
		}
		o.KeyStyle = cfg.Serializer.KeyStyle
		o.MaxDepth = cfg.Serializer.MaxDepth
		o.RequireContainerRoot = cfg.Serializer.RequireContainerRoot
	}
}

// Serializer converts and encodes values. It keeps no state between calls
// and is safe for concurrent use.
type Serializer struct {
	opts Options
}

// New creates a Serializer. Without options it writes compact JSON with
// go-json.
func New(opts ...Option) *Serializer {
	o := Options{
		Engine:   encoder.Default(),
		MaxDepth: config.DefaultMaxDepth,
		Logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Engine == nil {
		o.Engine = encoder.Default()
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = config.DefaultMaxDepth
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return &Serializer{opts: o}
}

// Serialize is a shorthand for New(opts...).Serialize(v).
func Serialize(v any, opts ...Option) ([]byte, error) {
	return New(opts...).Serialize(v)
}

// Serialize returns the JSON encoding of v.
func (s *Serializer) Serialize(v any) ([]byte, error) {
	tree, err := s.tree(v)
	if err != nil {
		return nil, err
	}

	data, err := s.opts.Engine.Marshal(tree, s.opts.Write)
	if err != nil {
		// Conversion should have ruled this out.
		s.opts.Logger.Error("encoder rejected converted tree",
			zap.String("engine", s.opts.Engine.Name()),
			zap.String("type", fmt.Sprintf("%T", v)),
			zap.Error(err))
		return nil, errors.NewEncodingError(
			fmt.Sprintf("%s could not encode value of type %T", s.opts.Engine.Name(), v), err)
	}
	return data, nil
}

// WriteTo writes the JSON encoding of v to w and returns the number of bytes
// written. Nothing is written when conversion or encoding fails.
func (s *Serializer) WriteTo(w io.Writer, v any) (int, error) {
	data, err := s.Serialize(v)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	if err != nil {
		return n, errors.NewOutputError("failed to write JSON", err)
	}
	return n, nil
}

// Convert returns the JSON value tree for v without encoding it. Native
// values come back unchanged.
func (s *Serializer) Convert(v any) (models.JSONValue, error) {
	return s.tree(v)
}

func (s *Serializer) tree(v any) (models.JSONValue, error) {
	if isNative(reflect.ValueOf(v), s.opts.MaxDepth) {
		s.opts.Logger.Debug("native root, skipping conversion", zap.String("type", fmt.Sprintf("%T", v)))
		if err := s.checkRoot(v); err != nil {
			return nil, err
		}
		return v, nil
	}

	c := newConverter(s.opts)
	tree, err := c.convert(reflect.ValueOf(v), rootPath, 0)
	if err != nil {
		return nil, err
	}
	if err := s.checkRoot(tree); err != nil {
		return nil, err
	}
	return tree, nil
}

func (s *Serializer) checkRoot(tree models.JSONValue) error {
	if !s.opts.RequireContainerRoot {
		return nil
	}
	if marshalsContainer(tree) {
		return nil
	}
	rv := reflect.ValueOf(tree)
	for rv.IsValid() && (rv.Kind() == reflect.Interface || rv.Kind() == reflect.Pointer) && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.IsValid() {
		switch rv.Kind() {
		case reflect.Map:
			if !rv.IsNil() {
				return nil
			}
		case reflect.Slice:
			if !rv.IsNil() && rv.Type().Elem().Kind() != reflect.Uint8 {
				return nil
			}
		case reflect.Array:
			return nil
		}
	}
	return errors.NewSerializeError(
		fmt.Sprintf("root value of type %T is not an object or an array", tree),
		errors.ErrUnclassifiableRoot)
}

func marshalsContainer(tree models.JSONValue) bool {
	m, ok := tree.(json.Marshaler)
	if !ok {
		return false
	}
	if rv := reflect.ValueOf(m); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return false
	}
	data, err := m.MarshalJSON()
	if err != nil {
		// The encoder reports the failure.
		return true
	}
	data = bytes.TrimLeft(data, " \t\r\n")
	return len(data) > 0 && (data[0] == '{' || data[0] == '[')
}
