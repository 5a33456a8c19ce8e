// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestClassifyError(t *testing.T) {
	_, statErr := os.Stat("/definitely/not/here")

	cases := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"missing file", statErr, ErrorTypeResourceNotFound},
		{"wrapped missing file", fmt.Errorf("open input: %w", statErr), ErrorTypeResourceNotFound},
		{"canceled", context.Canceled, ErrorTypeCanceled},
		{"yaml parse", errors.New("yaml: line 3: did not find expected key"), ErrorTypeInvalidConfig},
		{"invalid flag", errors.New("invalid exposure level"), ErrorTypeInvalidInput},
		{"other", errors.New("something odd"), ErrorTypeUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifyError(tc.err)
			if got == nil {
				t.Fatalf("expected classification, got nil")
			}
			if got.Type != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got.Type)
			}
			if !errors.Is(got, tc.err) {
				t.Errorf("classified error should unwrap to the original")
			}
		})
	}
}

func TestClassifyErrorKeepsExistingClassification(t *testing.T) {
	orig := NewExtractionError("pdf unreadable", errors.New("xref broken"))
	wrapped := fmt.Errorf("scan report.pdf: %w", orig)

	got := ClassifyError(wrapped)
	if got != orig {
		t.Fatalf("expected the wrapped classified error to be returned")
	}
	if TypeOf(wrapped) != ErrorTypeExtraction {
		t.Errorf("expected extraction type, got %v", TypeOf(wrapped))
	}
}

func TestClassifyNil(t *testing.T) {
	if ClassifyError(nil) != nil {
		t.Errorf("expected nil for nil error")
	}
	if TypeOf(nil) != ErrorTypeUnknown {
		t.Errorf("expected unknown for nil error")
	}
}

func TestNewPanicError(t *testing.T) {
	err := NewPanicError("batch item 3", "index out of range")
	if err.Type != ErrorTypeInternal {
		t.Fatalf("expected internal type, got %v", err.Type)
	}
	if err.Error() != "panic in batch item 3: index out of range" {
		t.Errorf("unexpected message %q", err.Error())
	}

	cause := errors.New("nil map")
	if !errors.Is(NewPanicError("x", cause), cause) {
		t.Errorf("error panics should unwrap to the panic value")
	}
}

func TestCompileErrorMessage(t *testing.T) {
	err := NewCompileError("SSN", errors.New("missing closing )"))
	if err.Type.String() != "pattern_compile" {
		t.Errorf("unexpected type name %q", err.Type.String())
	}
	if err.Error() != `pattern "SSN" failed to compile: missing closing )` {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestConstructorMessagesIncludeCause(t *testing.T) {
	err := NewConfigError("error parsing config file", errors.New("yaml: line 2: mapping values are not allowed"))
	if err.Error() != "error parsing config file: yaml: line 2: mapping values are not allowed" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if NewInputError("no input given", nil).Error() != "no input given" {
		t.Errorf("a nil cause should leave the message alone")
	}
}
