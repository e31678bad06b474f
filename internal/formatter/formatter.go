package formatter

import (
	"bytes"
	"encoding/xml"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	gojson "github.com/goccy/go-json"

	"github.com/mcncl/mirrorjson/internal/encoder"
	"github.com/mcncl/mirrorjson/internal/errors"
)

// Formatter re-renders JSON and XML text with indentation
type Formatter struct {
	engine encoder.Engine
	indent string
}

// NewFormatter creates a Formatter that indents with two spaces and writes
// JSON with go-json
func NewFormatter() *Formatter {
	return &Formatter{
		engine: encoder.Default(),
		indent: "  ",
	}
}

// NewFormatterWith creates a Formatter with a specific engine and indent
func NewFormatterWith(engine encoder.Engine, indent string) *Formatter {
	if engine == nil {
		engine = encoder.Default()
	}
	return &Formatter{engine: engine, indent: indent}
}

// PrettyPrint returns text formatted as JSON if it is JSON, as XML if it is
// XML, and unchanged otherwise
func (f *Formatter) PrettyPrint(text string) string {
	if out, err := f.FormatJSON(text); err == nil {
		return out
	}
	if out, err := f.FormatXML(text); err == nil {
		return out
	}
	return text
}

// FormatJSON indents a single JSON document and sorts its object keys.
// Slashes and HTML characters are left unescaped.
func (f *Formatter) FormatJSON(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.NewFormatError("input is empty", errors.ErrEmptyInput)
	}

	decoder := gojson.NewDecoder(strings.NewReader(text))
	decoder.UseNumber()

	var value interface{}
	if err := decoder.Decode(&value); err != nil {
		return "", errors.NewFormatError("input is not JSON", fmt.Errorf("%w: %v", errors.ErrInvalidJSON, err))
	}
	var trailing interface{}
	if err := decoder.Decode(&trailing); !stderrors.Is(err, io.EOF) {
		return "", errors.NewFormatError("input holds more than one JSON value", errors.ErrMultipleRoots)
	}

	out, err := f.engine.Marshal(value, encoder.Options{Indent: f.indent})
	if err != nil {
		return "", errors.NewFormatError("failed to re-encode JSON", err)
	}
	return string(out), nil
}

// FormatXML indents an XML document. Whitespace-only text between elements
// is dropped; everything else is kept in order. Output always starts with an
// XML declaration, the input's own one if present.
func (f *Formatter) FormatXML(text string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(text))
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	enc.Indent("", f.indent)

	var stack []xml.Name
	sawRoot, sawDecl := false, false
	for {
		tok, err := decoder.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errors.NewFormatError("input is not XML", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 && sawRoot {
				return "", errors.NewFormatError("input has more than one root element", nil)
			}
			sawRoot = true
			stack = append(stack, t.Name)
			tok = flattenStart(t)
		case xml.EndElement:
			if len(stack) == 0 || stack[len(stack)-1] != t.Name {
				return "", errors.NewFormatError(fmt.Sprintf("unexpected closing tag </%s>", qualified(t.Name)), nil)
			}
			stack = stack[:len(stack)-1]
			tok = xml.EndElement{Name: xml.Name{Local: qualified(t.Name)}}
		case xml.CharData:
			if len(bytes.TrimSpace(t)) == 0 {
				continue
			}
			if len(stack) == 0 {
				return "", errors.NewFormatError("text outside the root element", nil)
			}
		}

		if err := enc.EncodeToken(xml.CopyToken(tok)); err != nil {
			return "", errors.NewFormatError("failed to re-encode XML", err)
		}
		if pi, ok := tok.(xml.ProcInst); ok && pi.Target == "xml" {
			sawDecl = true
			// The encoder puts no line break after the declaration
			if err := enc.Flush(); err != nil {
				return "", errors.NewFormatError("failed to flush XML", err)
			}
			buf.WriteByte('\n')
		}
	}

	if !sawRoot {
		return "", errors.NewFormatError("input has no root element", nil)
	}
	if len(stack) > 0 {
		return "", errors.NewFormatError(fmt.Sprintf("element <%s> is never closed", qualified(stack[len(stack)-1])), nil)
	}
	if err := enc.Flush(); err != nil {
		return "", errors.NewFormatError("failed to flush XML", err)
	}
	if !sawDecl {
		return xml.Header + buf.String(), nil
	}
	return buf.String(), nil
}

// flattenStart keeps namespace prefixes as written. RawToken reports them in
// Name.Space, which the encoder would otherwise treat as a namespace URL.
func flattenStart(t xml.StartElement) xml.StartElement {
	out := xml.StartElement{Name: xml.Name{Local: qualified(t.Name)}}
	for _, a := range t.Attr {
		out.Attr = append(out.Attr, xml.Attr{Name: xml.Name{Local: qualified(a.Name)}, Value: a.Value})
	}
	return out
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
