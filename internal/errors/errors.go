package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrEmptyInput      = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON     = errors.New("invalid JSON format")
	ErrInvalidYAML     = errors.New("invalid YAML format")
	ErrMultipleRoots   = errors.New("multiple documents found at the root, only one is allowed")
	ErrFileNotFound    = errors.New("file not found")
	ErrFileEmpty       = errors.New("file is empty")
	ErrNoInput         = errors.New("no input provided: please specify a file with -i or pipe data to stdin")
	ErrInvalidFilePath = errors.New("invalid file path")
	ErrUnknownFormat   = errors.New("unknown input format")
)

// Serializer errors
var (
	ErrUnclassifiableRoot = errors.New("root value has no discoverable JSON shape")
	ErrUnsupportedShape   = errors.New("value is neither record-like nor collection-like")
	ErrCyclicStructure    = errors.New("value graph contains a cycle")
	ErrMaxDepthExceeded   = errors.New("value graph exceeds the maximum nesting depth")
	ErrEncodingFailure    = errors.New("encoder rejected the converted value tree")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput     ErrorType = "input"
	ErrorTypeParsing   ErrorType = "parsing"
	ErrorTypeSerialize ErrorType = "serialize"
	ErrorTypeEncoding  ErrorType = "encoding"
	ErrorTypeFormat    ErrorType = "format"
	ErrorTypeConfig    ErrorType = "config"
	ErrorTypeOutput    ErrorType = "output"
	ErrorTypeUnknown   ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInput,
		Message: message,
		Err:     err,
	}
}

// NewParsingError creates a new error related to decoding an input document
func NewParsingError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeParsing,
		Message: message,
		Err:     err,
	}
}

// NewSerializeError creates a new error raised while converting a value tree
func NewSerializeError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeSerialize,
		Message: message,
		Err:     err,
	}
}

// NewEncodingError creates a new error raised by the JSON encoder. The
// returned error always matches ErrEncodingFailure.
func NewEncodingError(message string, err error) *AppError {
	wrapped := ErrEncodingFailure
	if err != nil && !errors.Is(err, ErrEncodingFailure) {
		wrapped = fmt.Errorf("%w: %w", ErrEncodingFailure, err)
	}
	return &AppError{
		Type:    ErrorTypeEncoding,
		Message: message,
		Err:     wrapped,
	}
}

// NewFormatError creates a new error related to pretty-printing
func NewFormatError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeFormat,
		Message: message,
		Err:     err,
	}
}

// NewConfigError creates a new error related to configuration
func NewConfigError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeConfig,
		Message: message,
		Err:     err,
	}
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeOutput,
		Message: message,
		Err:     err,
	}
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeParsing:
			return fmt.Sprintf("Parsing error: %s", appErr.Message)
		case ErrorTypeSerialize:
			return fmt.Sprintf("Serialization error: %s", appErr.Message)
		case ErrorTypeEncoding:
			return fmt.Sprintf("JSON encoding error: %s", appErr.Message)
		case ErrorTypeFormat:
			return fmt.Sprintf("Pretty-print error: %s", appErr.Message)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	// Handle standard errors
	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide a JSON or YAML document."
	}
	if errors.Is(err, ErrInvalidJSON) {
		return "Error: The input contains invalid JSON. Please check your JSON syntax."
	}
	if errors.Is(err, ErrInvalidYAML) {
		return "Error: The input contains invalid YAML. Please check your YAML syntax."
	}
	if errors.Is(err, ErrMultipleRoots) {
		return "Error: Multiple documents found. Please provide a single document."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrFileEmpty) {
		return "Error: The specified file is empty."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Please specify a file with -i or pipe data to stdin."
	}
	if errors.Is(err, ErrInvalidFilePath) {
		return "Error: Invalid file path. Please provide a valid file path."
	}
	if errors.Is(err, ErrUnclassifiableRoot) {
		return "Error: The value cannot be serialized because its shape could not be determined."
	}
	if errors.Is(err, ErrUnsupportedShape) {
		return "Error: The value contains a member that cannot be represented as JSON."
	}
	if errors.Is(err, ErrCyclicStructure) {
		return "Error: The value refers back to itself and cannot be serialized."
	}

	// Generic error message for unknown errors
	return fmt.Sprintf("Error: %v", err)
}
