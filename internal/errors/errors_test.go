package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name: "error with wrapped error",
			appError: &AppError{
				Type:    ErrorTypeInput,
				Message: "failed to read input",
				Err:     errors.New("file not found"),
			},
			expected: "input: failed to read input: file not found",
		},
		{
			name: "error without wrapped error",
			appError: &AppError{
				Type:    ErrorTypeSerialize,
				Message: "value at $.handler has no JSON shape",
				Err:     nil,
			},
			expected: "serialize: value at $.handler has no JSON shape",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.appError.Error()
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	wrappedErr := errors.New("wrapped error")
	appErr := &AppError{
		Type:    ErrorTypeInput,
		Message: "test message",
		Err:     wrappedErr,
	}

	result := appErr.Unwrap()
	assert.Equal(t, wrappedErr, result)
}

func TestAppError_Is(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		target   error
		expected bool
	}{
		{
			name:     "same type",
			appError: &AppError{Type: ErrorTypeSerialize, Message: "test message"},
			target:   &AppError{Type: ErrorTypeSerialize, Message: "different message", Err: errors.New("some error")},
			expected: true,
		},
		{
			name:     "different type",
			appError: &AppError{Type: ErrorTypeInput, Message: "test message"},
			target:   &AppError{Type: ErrorTypeParsing, Message: "test message"},
			expected: false,
		},
		{
			name:     "not an AppError",
			appError: &AppError{Type: ErrorTypeInput, Message: "test message"},
			target:   errors.New("standard error"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.appError.Is(tt.target)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	err := NewSerializeError("value at $.fn has no JSON shape", ErrUnsupportedShape)
	assert.ErrorIs(t, err, ErrUnsupportedShape)
	assert.NotErrorIs(t, err, ErrUnclassifiableRoot)

	cause := errors.New("json: unsupported value: NaN")
	encErr := NewEncodingError("encoder rejected tree", cause)
	assert.ErrorIs(t, encErr, ErrEncodingFailure)
	assert.ErrorIs(t, encErr, cause)

	bare := NewEncodingError("encoder rejected tree", nil)
	assert.ErrorIs(t, bare, ErrEncodingFailure)
}

func TestUserFriendlyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "input error",
			err:      NewInputError("failed to read file", nil),
			expected: "Input error: failed to read file",
		},
		{
			name:     "parsing error",
			err:      NewParsingError("invalid JSON syntax", nil),
			expected: "Parsing error: invalid JSON syntax",
		},
		{
			name:     "serialize error",
			err:      NewSerializeError("cycle at $.next", ErrCyclicStructure),
			expected: "Serialization error: cycle at $.next",
		},
		{
			name:     "encoding error",
			err:      NewEncodingError("encoder rejected tree", nil),
			expected: "JSON encoding error: encoder rejected tree",
		},
		{
			name:     "format error",
			err:      NewFormatError("not JSON or XML", nil),
			expected: "Pretty-print error: not JSON or XML",
		},
		{
			name:     "config error",
			err:      NewConfigError("unknown engine", nil),
			expected: "Configuration error: unknown engine",
		},
		{
			name:     "output error",
			err:      NewOutputError("failed to write output", nil),
			expected: "Output error: failed to write output",
		},
		{
			name:     "standard error - empty input",
			err:      ErrEmptyInput,
			expected: "Error: The input is empty. Please provide a JSON or YAML document.",
		},
		{
			name:     "standard error - unclassifiable root",
			err:      ErrUnclassifiableRoot,
			expected: "Error: The value cannot be serialized because its shape could not be determined.",
		},
		{
			name:     "unknown error",
			err:      errors.New("some unknown error"),
			expected: "Error: some unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := UserFriendlyError(tt.err)
			assert.Equal(t, tt.expected, result)
		})
	}
}
