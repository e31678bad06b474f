package encoder

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() map[string]any {
	return map[string]any{
		"zeta":  []any{"x", "y", int64(-23)},
		"alpha": "a<b>&c",
		"mid":   map[string]any{"flag": true, "none": nil},
	}
}

func TestLookup(t *testing.T) {
	e, err := Lookup("")
	require.NoError(t, err)
	assert.Equal(t, GoJSONName, e.Name())

	e, err = Lookup(JSONIterName)
	require.NoError(t, err)
	assert.Equal(t, JSONIterName, e.Name())

	_, err = Lookup("sonic")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownEngine)
	assert.Contains(t, err.Error(), "go-json, jsoniter")
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{GoJSONName, JSONIterName}, Names())
}

func TestEngines_CompactOutputMatches(t *testing.T) {
	expected := `{"alpha":"a<b>&c","mid":{"flag":true,"none":null},"zeta":["x","y",-23]}`

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			e, err := Lookup(name)
			require.NoError(t, err)

			out, err := e.Marshal(sampleTree(), Options{})
			require.NoError(t, err)
			assert.Equal(t, expected, string(out))
		})
	}
}

func TestEngines_EscapeHTML(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			e, err := Lookup(name)
			require.NoError(t, err)

			out, err := e.Marshal(map[string]any{"s": "<tag>"}, Options{EscapeHTML: true})
			require.NoError(t, err)
			assert.Equal(t, `{"s":"\u003ctag\u003e"}`, string(out))
		})
	}
}

func TestEngines_IndentRoundTrips(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			e, err := Lookup(name)
			require.NoError(t, err)

			out, err := e.Marshal(sampleTree(), Options{Indent: "  "})
			require.NoError(t, err)
			assert.Contains(t, string(out), "\n  \"alpha\"")

			var decoded map[string]any
			require.NoError(t, json.Unmarshal(out, &decoded))
			assert.Equal(t, "a<b>&c", decoded["alpha"])
			assert.Len(t, decoded["zeta"], 3)
		})
	}
}

func TestGoJSON_Prefix(t *testing.T) {
	out, err := GoJSON{}.Marshal(map[string]any{"a": 1}, Options{Prefix: "//", Indent: "\t"})
	require.NoError(t, err)
	assert.Contains(t, string(out), "\n//\t\"a\": 1")
}

func TestJSONIter_RejectsUnsupportedOptions(t *testing.T) {
	e := &JSONIter{}

	_, err := e.Marshal(map[string]any{"a": 1}, Options{Prefix: "//"})
	assert.ErrorIs(t, err, ErrUnsupportedOption)

	_, err = e.Marshal(map[string]any{"a": 1}, Options{Indent: "\t"})
	assert.ErrorIs(t, err, ErrUnsupportedOption)
}

func TestEngines_Deterministic(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			e, err := Lookup(name)
			require.NoError(t, err)

			first, err := e.Marshal(sampleTree(), Options{Indent: "  "})
			require.NoError(t, err)
			for i := 0; i < 5; i++ {
				again, err := e.Marshal(sampleTree(), Options{Indent: "  "})
				require.NoError(t, err)
				assert.Equal(t, first, again)
			}
		})
	}
}
