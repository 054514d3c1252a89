package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	wrapped := errors.New("exit status 1")

	tests := []struct {
		name string
		err  *DomainError
		want string
	}{
		{
			name: "with wrapped error",
			err:  ConversionError("conversion failed", wrapped),
			want: "[conversion] conversion failed: exit status 1",
		},
		{
			name: "without wrapped error",
			err:  ValidationError("file is empty", nil),
			want: "[validation] file is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	inner := errors.New("no such file")
	err := IOError("cannot read input", inner)

	if !errors.Is(err, inner) {
		t.Errorf("errors.Is should find the wrapped error")
	}
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"validation", ValidationError("too large", nil), ErrorTypeValidation},
		{"unsupported", UnsupportedError("no converter", nil), ErrorTypeUnsupported},
		{"dependency", DependencyError("soffice not found", nil), ErrorTypeDependency},
		{"wrapped domain error", fmt.Errorf("convert: %w", ConversionError("bad output", nil)), ErrorTypeConversion},
		{"plain error", errors.New("boom"), ErrorTypeInternal},
		{"nil-ish", fmt.Errorf("outer"), ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TypeOf(tt.err); got != tt.want {
				t.Errorf("TypeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHintsOf(t *testing.T) {
	err := DependencyError("LibreOffice not found", nil,
		"install LibreOffice and ensure soffice is on PATH")

	hints := HintsOf(fmt.Errorf("docx: %w", err))
	if len(hints) != 1 {
		t.Fatalf("expected 1 hint, got %d", len(hints))
	}

	if hints := HintsOf(errors.New("plain")); hints != nil {
		t.Errorf("expected no hints for plain error, got %v", hints)
	}
}
