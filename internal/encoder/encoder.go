// Package encoder turns a converted JSON value tree into bytes. Writing
// options are handed to the selected engine as given.
package encoder

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	gojson "github.com/goccy/go-json"
	jsoniter "github.com/json-iterator/go"
)

// Engine names
const (
	GoJSONName   = "go-json"
	JSONIterName = "jsoniter"
)

var (
	ErrUnknownEngine     = errors.New("unknown encoder engine")
	ErrUnsupportedOption = errors.New("writing option not supported by encoder engine")
)

// Options are the writing options of a single encode call.
type Options struct {
	Prefix     string
	Indent     string
	EscapeHTML bool
}

// Pretty reports whether the options ask for indented output.
func (o Options) Pretty() bool {
	return o.Prefix != "" || o.Indent != ""
}

// Engine encodes a value tree. Map keys are always emitted in sorted order so
// equal trees produce equal bytes.
type Engine interface {
	Name() string
	Marshal(v any, opts Options) ([]byte, error)
}

var engines = map[string]Engine{
	GoJSONName:   GoJSON{},
	JSONIterName: &JSONIter{},
}

// Lookup returns the engine registered under name. An empty name selects
// go-json.
func Lookup(name string) (Engine, error) {
	if name == "" {
		name = GoJSONName
	}
	e, ok := engines[name]
	if !ok {
		return nil, fmt.Errorf("%w '%s' (available: %s)", ErrUnknownEngine, name, strings.Join(Names(), ", "))
	}
	return e, nil
}

// Names lists the registered engine names in sorted order.
func Names() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default returns the go-json engine.
func Default() Engine { return GoJSON{} }

// GoJSON encodes with github.com/goccy/go-json.
type GoJSON struct{}

func (GoJSON) Name() string { return GoJSONName }

func (GoJSON) Marshal(v any, opts Options) ([]byte, error) {
	var optFuncs []gojson.EncodeOptionFunc
	if !opts.EscapeHTML {
		optFuncs = append(optFuncs, gojson.DisableHTMLEscape())
	}
	if opts.Pretty() {
		return gojson.MarshalIndentWithOption(v, opts.Prefix, opts.Indent, optFuncs...)
	}
	return gojson.MarshalWithOption(v, optFuncs...)
}

// JSONIter encodes with github.com/json-iterator/go. It supports space
// indentation only and no prefix.
type JSONIter struct {
	mu     sync.Mutex
	frozen map[jsoniterKey]jsoniter.API
}

type jsoniterKey struct {
	escapeHTML bool
	step       int
}

func (*JSONIter) Name() string { return JSONIterName }

func (j *JSONIter) Marshal(v any, opts Options) ([]byte, error) {
	if opts.Prefix != "" {
		return nil, fmt.Errorf("%w: %s cannot write an indent prefix", ErrUnsupportedOption, JSONIterName)
	}
	if strings.Trim(opts.Indent, " ") != "" {
		return nil, fmt.Errorf("%w: %s indents with spaces only", ErrUnsupportedOption, JSONIterName)
	}
	return j.api(opts).Marshal(v)
}

func (j *JSONIter) api(opts Options) jsoniter.API {
	key := jsoniterKey{escapeHTML: opts.EscapeHTML, step: len(opts.Indent)}

	j.mu.Lock()
	defer j.mu.Unlock()
	if api, ok := j.frozen[key]; ok {
		return api
	}
	if j.frozen == nil {
		j.frozen = make(map[jsoniterKey]jsoniter.API)
	}
	api := jsoniter.Config{
		EscapeHTML:             key.escapeHTML,
		SortMapKeys:            true,
		ValidateJsonRawMessage: true,
		IndentionStep:          key.step,
	}.Froze()
	j.frozen[key] = api
	return api
}
