package formatter

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/mirrorjson/internal/encoder"
	"github.com/mcncl/mirrorjson/internal/errors"
)

func TestFormatJSON_SortsKeysAndIndents(t *testing.T) {
	input := `{"zeta": 1, "alpha": {"url": "http://example.com/a/b", "tag": "<b>"}, "list": [1, 2.5, null]}`

	formatter := NewFormatter()
	formatted, err := formatter.FormatJSON(input)
	require.NoError(t, err)

	expected := `{
  "alpha": {
    "tag": "<b>",
    "url": "http://example.com/a/b"
  },
  "list": [
    1,
    2.5,
    null
  ],
  "zeta": 1
}`
	assert.Equal(t, expected, formatted)
}

func TestFormatJSON_KeepsNumberText(t *testing.T) {
	formatter := NewFormatter()
	formatted, err := formatter.FormatJSON(`[12345678901234567890, 1.0e3]`)
	require.NoError(t, err)
	assert.Equal(t, "[\n  12345678901234567890,\n  1.0e3\n]", formatted)
}

func TestFormatJSON_Errors(t *testing.T) {
	formatter := NewFormatter()

	tests := []struct {
		name  string
		input string
		want  error
	}{
		{name: "empty", input: "  ", want: errors.ErrEmptyInput},
		{name: "syntax", input: `{"a": }`, want: errors.ErrInvalidJSON},
		{name: "two values", input: `{"a": 1} [2]`, want: errors.ErrMultipleRoots},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := formatter.FormatJSON(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFormatJSON_WithEngine(t *testing.T) {
	formatter := NewFormatterWith(&encoder.JSONIter{}, "    ")
	formatted, err := formatter.FormatJSON(`{"b": true, "a": "x"}`)
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"a\": \"x\",\n    \"b\": true\n}", formatted)
}

func TestFormatXML_Indents(t *testing.T) {
	input := `<root><a>1</a><b id="7"><c/></b></root>`

	formatter := NewFormatter()
	formatted, err := formatter.FormatXML(input)
	require.NoError(t, err)

	expected := `<?xml version="1.0" encoding="UTF-8"?>
<root>
  <a>1</a>
  <b id="7">
    <c></c>
  </b>
</root>`
	assert.Equal(t, expected, formatted)
}

func TestFormatXML_DeclarationAndWhitespace(t *testing.T) {
	input := "<?xml version=\"1.0\"?>\n<note>\n   <to>Tove</to>\n\n   <from>Jani</from>\n</note>\n"

	formatter := NewFormatter()
	formatted, err := formatter.FormatXML(input)
	require.NoError(t, err)

	expected := `<?xml version="1.0"?>
<note>
  <to>Tove</to>
  <from>Jani</from>
</note>`
	assert.Equal(t, expected, formatted)
}

func TestFormatXML_KeepsPrefixes(t *testing.T) {
	input := `<x:doc xmlns:x="urn:x"><x:item>v</x:item></x:doc>`

	formatter := NewFormatter()
	formatted, err := formatter.FormatXML(input)
	require.NoError(t, err)
	assert.Equal(t, xml.Header+"<x:doc xmlns:x=\"urn:x\">\n  <x:item>v</x:item>\n</x:doc>", formatted)
}

func TestFormatXML_Errors(t *testing.T) {
	formatter := NewFormatter()

	tests := []struct {
		name    string
		input   string
		message string
	}{
		{name: "mismatched close", input: `<a><b></a>`, message: "unexpected closing tag </a>"},
		{name: "unclosed", input: `<a><b></b>`, message: "element <a> is never closed"},
		{name: "two roots", input: `<a/><b/>`, message: "more than one root element"},
		{name: "bare text", input: `hello world`, message: "text outside the root element"},
		{name: "empty", input: ``, message: "no root element"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := formatter.FormatXML(tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestPrettyPrint(t *testing.T) {
	formatter := NewFormatter()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json",
			input:    `{"b":[true],"a":"a/b"}`,
			expected: "{\n  \"a\": \"a/b\",\n  \"b\": [\n    true\n  ]\n}",
		},
		{
			name:     "xml",
			input:    `<list><item>one</item></list>`,
			expected: xml.Header + "<list>\n  <item>one</item>\n</list>",
		},
		{
			name:     "plain text",
			input:    "just some words",
			expected: "just some words",
		},
		{
			name:     "malformed xml",
			input:    "<a><b></a>",
			expected: "<a><b></a>",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatter.PrettyPrint(tt.input))
		})
	}
}
