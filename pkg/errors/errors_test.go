package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("graph contains a cycle")
	err := Wrap(ErrCodeStructural, cause, "not a tree")

	if err.Code != ErrCodeStructural {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeStructural)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	expected := "STRUCTURAL: not a tree: graph contains a cycle"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodePrecondition, "test"),
			code:     ErrCodePrecondition,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodePrecondition, "test"),
			code:     ErrCodeStructural,
			expected: false,
		},
		{
			name:     "outer code wins",
			err:      Wrap(ErrCodeStructural, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeStructural,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      wrapf(New(ErrCodeInputFormat, "bad header")),
			code:     ErrCodeInputFormat,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func wrapf(err error) error {
	return errors.Join(errors.New("context"), err)
}

func TestClassHelpers(t *testing.T) {
	if !IsStructural(New(ErrCodeStructural, "x")) {
		t.Error("IsStructural should match STRUCTURAL")
	}
	if IsStructural(New(ErrCodePrecondition, "x")) {
		t.Error("IsStructural should not match PRECONDITION")
	}
	if !IsPrecondition(New(ErrCodePrecondition, "x")) {
		t.Error("IsPrecondition should match PRECONDITION")
	}
	if !IsInputFormat(Wrap(ErrCodeInputFormat, &LineError{Line: 3, Text: "**x"}, "malformed header")) {
		t.Error("IsInputFormat should match INVALID_INPUT_FORMAT")
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidEncoding, "test"),
			expected: ErrCodeInvalidEncoding,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestLineError(t *testing.T) {
	err := &LineError{Line: 12, Text: "**bold**"}
	expected := `line 12: "**bold**"`
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
	if err.Code() != ErrCodeInputFormat {
		t.Errorf("Code() = %v, want %v", err.Code(), ErrCodeInputFormat)
	}

	var le *LineError
	wrapped := Wrap(ErrCodeInputFormat, err, "malformed header")
	if !errors.As(wrapped, &le) || le.Line != 12 {
		t.Error("errors.As should find the LineError through Wrap")
	}
}
