package parser

import (
	stderrors "errors" // Standard errors package
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/mirrorjson/internal/errors" // Custom errors package
	"github.com/mcncl/mirrorjson/internal/models"
)

// Input formats
const (
	FormatAuto = ""
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// NormalizeFormat maps user supplied format names onto the Format constants
func NormalizeFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "auto":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", errors.NewInputError(fmt.Sprintf("unknown input format '%s'", format), errors.ErrUnknownFormat)
	}
}

// FormatFromPath picks the format from a file extension, defaulting to JSON
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// DetectFormat treats anything that is valid JSON as JSON and everything else as YAML
func DetectFormat(data []byte) string {
	if gojson.Valid(data) {
		return FormatJSON
	}
	return FormatYAML
}

// Parse decodes a single document from reader
func Parse(reader io.Reader, format string) (models.Document, error) {
	format, err := NormalizeFormat(format)
	if err != nil {
		return models.Document{}, err
	}

	if format == FormatAuto {
		data, err := io.ReadAll(reader)
		if err != nil {
			return models.Document{}, errors.NewInputError("failed to read input", err)
		}
		if strings.TrimSpace(string(data)) == "" {
			return models.Document{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		format = DetectFormat(data)
		reader = strings.NewReader(string(data))
	}

	var root models.JSONValue
	switch format {
	case FormatYAML:
		root, err = parseYAML(reader)
	default:
		root, err = parseJSON(reader)
	}
	if err != nil {
		return models.Document{}, err
	}

	return models.Document{
		Root:   normalizeValue(root),
		Format: format,
	}, nil
}

func parseJSON(reader io.Reader) (models.JSONValue, error) {
	decoder := gojson.NewDecoder(reader)
	decoder.UseNumber() // Ensure numbers are read as json.Number

	var rootValue models.JSONValue
	if err := decoder.Decode(&rootValue); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		var syntaxError *gojson.SyntaxError
		if stderrors.As(err, &syntaxError) {
			return nil, errors.NewParsingError(
				fmt.Sprintf("JSON syntax error at offset %d", syntaxError.Offset),
				errors.ErrInvalidJSON,
			)
		}
		return nil, errors.NewParsingError("failed to decode JSON", fmt.Errorf("%w: %v", errors.ErrInvalidJSON, err))
	}

	// Only whitespace may follow the first value
	if decoder.More() {
		var trailingValue interface{}
		if err := decoder.Decode(&trailingValue); err != nil {
			if !stderrors.Is(err, io.EOF) {
				return nil, errors.NewParsingError("invalid trailing data after first JSON value", fmt.Errorf("%w: %v", errors.ErrInvalidJSON, err))
			}
		} else {
			return nil, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleRoots)
		}
	}

	return rootValue, nil
}

func parseYAML(reader io.Reader) (models.JSONValue, error) {
	decoder := yaml.NewDecoder(reader)

	var rootValue models.JSONValue
	if err := decoder.Decode(&rootValue); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		return nil, errors.NewParsingError("invalid YAML document", fmt.Errorf("%w: %v", errors.ErrInvalidYAML, err))
	}

	var next interface{}
	if err := decoder.Decode(&next); err == nil {
		return nil, errors.NewParsingError("multiple YAML documents found", errors.ErrMultipleRoots)
	} else if !stderrors.Is(err, io.EOF) {
		return nil, errors.NewParsingError("invalid trailing YAML document", fmt.Errorf("%w: %v", errors.ErrInvalidYAML, err))
	}

	return rootValue, nil
}

// normalizeValue converts decoded string-keyed maps and slices into our model
// types. Maps with other key types are left for the serializer.
func normalizeValue(val models.JSONValue) models.JSONValue {
	switch v := val.(type) {
	case map[string]interface{}:
		obj := make(models.JSONObject, len(v))
		for key, value := range v {
			obj[key] = normalizeValue(value)
		}
		return obj
	case map[interface{}]interface{}:
		for key, value := range v {
			v[key] = normalizeValue(value)
		}
		return v
	case []interface{}:
		arr := make(models.JSONArray, len(v))
		for i, value := range v {
			arr[i] = normalizeValue(value)
		}
		return arr
	default:
		return v // Primitives are returned as is
	}
}

// ParseString parses a document from a string
func ParseString(input string, format string) (models.Document, error) {
	if strings.TrimSpace(input) == "" {
		return models.Document{}, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return Parse(strings.NewReader(input), format)
}

// ParseFile parses a document from a file path. An empty format is taken
// from the file extension.
func ParseFile(filePath string, format string) (models.Document, error) {
	if strings.TrimSpace(filePath) == "" {
		return models.Document{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	data, err := ReadFile(filePath)
	if err != nil {
		return models.Document{}, err
	}
	if format == FormatAuto {
		format = FormatFromPath(filePath)
	}
	return Parse(strings.NewReader(string(data)), format)
}

// ReadFile reads a non-empty input file
func ReadFile(filePath string) ([]byte, error) {
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return nil, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.NewInputError(fmt.Sprintf("failed to read file '%s'", filePath), err)
	}
	return data, nil
}
