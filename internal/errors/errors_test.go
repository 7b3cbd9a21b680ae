package errors

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	// Verify all expected error codes exist
	codes := []string{
		ErrConfig,
		ErrTransport,
		ErrNormalize,
		ErrExhausted,
		ErrExec,
	}

	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
	}

	// Verify codes are unique
	seen := make(map[string]bool)
	for _, code := range codes {
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		message    string
		suggestion string
	}{
		{
			name:       "config error",
			code:       ErrConfig,
			message:    "Invalid configuration in .lavamon.yaml",
			suggestion: "Check your configuration file syntax",
		},
		{
			name:       "transport error",
			code:       ErrTransport,
			message:    "Cannot connect to the server",
			suggestion: "Check the server address and password",
		},
		{
			name:       "normalize error",
			code:       ErrNormalize,
			message:    "Server sent a malformed stats payload",
			suggestion: "Check the server version",
		},
		{
			name:       "exhausted error",
			code:       ErrExhausted,
			message:    "Gave up after 10 reconnect attempts",
			suggestion: "Press 'r' to retry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.suggestion)

			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.suggestion, err.Suggestion)
			assert.Nil(t, err.Cause)
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name          string
		err           *Error
		expectedParts []string
		notExpected   []string
	}{
		{
			name: "basic error formatting",
			err:  New(ErrConfig, "Invalid configuration", "Check .lavamon.yaml syntax"),
			expectedParts: []string{
				"Invalid configuration",
				"Check .lavamon.yaml syntax",
			},
		},
		{
			name: "error with failure symbol",
			err:  New(ErrTransport, "Connection failed", "Try again"),
			expectedParts: []string{
				"✗",
				"Connection failed",
			},
		},
		{
			name: "error without suggestion",
			err:  New(ErrExec, "Command failed", ""),
			expectedParts: []string{
				"Command failed",
			},
			notExpected: []string{
				"suggestion",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := tt.err.Error()

			for _, part := range tt.expectedParts {
				assert.Contains(t, output, part, "output should contain %q", part)
			}

			for _, part := range tt.notExpected {
				assert.NotContains(t, output, part, "output should not contain %q", part)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying network error")
	wrapped := Wrap(cause, "WebSocket connect failed", "Check the node is up")

	require.NotNil(t, wrapped)
	assert.Equal(t, ErrTransport, wrapped.Code, "Wrap should default to ErrTransport code")
	assert.Equal(t, "WebSocket connect failed", wrapped.Message)
	assert.Equal(t, "Check the node is up", wrapped.Suggestion)
	assert.Equal(t, cause, wrapped.Cause)
}

func TestWrapEmptySuggestion(t *testing.T) {
	cause := errors.New("connection refused")
	wrapped := Wrap(cause, "Request failed", "")

	require.NotNil(t, wrapped)
	assert.Empty(t, wrapped.Suggestion)
	assert.NotContains(t, wrapped.Error(), "\n  \n")
}

func TestWrapWithCode(t *testing.T) {
	cause := errors.New("file not found")
	wrapped := WrapWithCode(cause, ErrConfig, "Failed to load config", "Create .lavamon.yaml file")

	require.NotNil(t, wrapped)
	assert.Equal(t, ErrConfig, wrapped.Code)
	assert.Equal(t, "Failed to load config", wrapped.Message)
	assert.Equal(t, "Create .lavamon.yaml file", wrapped.Suggestion)
	assert.Equal(t, cause, wrapped.Cause)
}

func TestErrorWrappingPreservesCause(t *testing.T) {
	original := errors.New("original error")
	wrapped := WrapWithCode(original, ErrTransport, "Poll failed", "")

	assert.Equal(t, original, wrapped.Cause)

	errStr := wrapped.Error()
	assert.Contains(t, errStr, "original error")
}

func TestErrorsIs(t *testing.T) {
	cause := errors.New("specific error")
	wrapped := WrapWithCode(cause, ErrTransport, "Transport error", "")

	assert.True(t, errors.Is(wrapped, cause))
}

func TestErrorsAs(t *testing.T) {
	wrapped := New(ErrConfig, "Config error", "Fix config")

	var lvErr *Error
	ok := errors.As(wrapped, &lvErr)

	assert.True(t, ok)
	assert.Equal(t, ErrConfig, lvErr.Code)
}

func TestIsCode(t *testing.T) {
	err := New(ErrConfig, "Config error", "")

	assert.True(t, IsCode(err, ErrConfig))
	assert.False(t, IsCode(err, ErrTransport))
	assert.False(t, IsCode(errors.New("standard error"), ErrConfig))
	assert.False(t, IsCode(nil, ErrConfig))
}

func TestErrorMessageStructure(t *testing.T) {
	err := WrapWithCode(
		errors.New("connection timed out after 8s"),
		ErrTransport,
		"Cannot connect to the server",
		"Check that the server is running",
	)

	output := err.Error()
	lines := strings.Split(output, "\n")

	// First line should have failure symbol and main message
	assert.True(t, strings.HasPrefix(strings.TrimSpace(lines[0]), "✗"), "First line should start with failure symbol")
	assert.Contains(t, lines[0], "Cannot connect to the server")
}

func TestNewExhausted(t *testing.T) {
	err := NewExhausted(10)

	require.NotNil(t, err)
	assert.Equal(t, ErrExhausted, err.Code)
	assert.Contains(t, err.Message, "10")
	assert.NotEmpty(t, err.Suggestion)
}
