package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:     PhaseAccess,
				Kind:      KindTypeMismatch,
				Field:     "score",
				Declared:  "float32",
				Requested: "int64",
				Detail:    "wrong accessor",
			},
			contains: []string{"[access]", "type_mismatch", "at score", "declared float32", "requested int64", "wrong accessor"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseSchema,
				Kind:  KindEmptySchema,
			},
			contains: []string{"[schema]", "empty_schema"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseAlloc,
				Kind:   KindAllocation,
				Detail: "arena full",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[alloc]", "allocation", "arena full", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := AllocationFailed(16, 8, cause)

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not reach cause")
	}
}

func TestError_Is(t *testing.T) {
	err := TypeMismatch(PhaseAccess, "id", "int64", "int32")

	if !err.Is(&Error{Phase: PhaseAccess, Kind: KindTypeMismatch}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseEval, Kind: KindTypeMismatch}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseAccess, Kind: KindUnknownField}) {
		t.Error("Is should not match different kind")
	}
	if !errors.Is(err, ErrTypeMismatch) {
		t.Error("sentinel without phase should match any phase")
	}
	if errors.Is(err, ErrUnknownField) {
		t.Error("sentinel of other kind should not match")
	}
	if err.Is(errors.New("plain")) {
		t.Error("plain errors never match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseAccess, KindTypeMismatch).
		Field("flag").
		Declared("bool").
		Requested("int8").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "bool", "int8").
		Build()

	if err.Phase != PhaseAccess {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseAccess)
	}
	if err.Kind != KindTypeMismatch {
		t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
	}
	if err.Field != "flag" {
		t.Errorf("Field = %v, want flag", err.Field)
	}
	if err.Declared != "bool" || err.Requested != "int8" {
		t.Errorf("Declared=%v Requested=%v", err.Declared, err.Requested)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected bool, got int8" {
		t.Errorf("Detail = %v", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		err   *Error
		name  string
		kind  Kind
		phase Phase
	}{
		{DuplicateField("x"), "DuplicateField", KindDuplicateField, PhaseSchema},
		{EmptySchema(), "EmptySchema", KindEmptySchema, PhaseSchema},
		{UnknownField(PhaseAccess, "nope"), "UnknownField", KindUnknownField, PhaseAccess},
		{UnknownIndex(PhaseAccess, 9, 3), "UnknownIndex", KindUnknownField, PhaseAccess},
		{DoubleFree("block"), "DoubleFree", KindDoubleFree, PhaseAlloc},
		{UseAfterFree("id"), "UseAfterFree", KindUseAfterFree, PhaseAccess},
		{AllocationFailed(1024, 8, nil), "AllocationFailed", KindAllocation, PhaseAlloc},
		{Overflow(PhaseEval, "small", 300, "int8"), "Overflow", KindOverflow, PhaseEval},
		{Unsupported(PhaseInterop, "u32 fields"), "Unsupported", KindUnsupported, PhaseInterop},
		{InvalidInput(PhaseSchema, "empty name"), "InvalidInput", KindInvalidInput, PhaseSchema},
		{NilPointer(PhaseAlloc, "schema"), "NilPointer", KindNilPointer, PhaseAlloc},
		{Closed(PhasePool, "pool"), "Closed", KindClosed, PhasePool},
		{Leak(2), "Leak", KindLeak, PhaseAlloc},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Kind != tc.kind {
				t.Errorf("Kind = %v, want %v", tc.err.Kind, tc.kind)
			}
			if tc.err.Phase != tc.phase {
				t.Errorf("Phase = %v, want %v", tc.err.Phase, tc.phase)
			}
		})
	}

	if !strings.Contains(AllocationFailed(1024, 8, nil).Detail, "1024") {
		t.Error("allocation detail should contain the size")
	}
	if UnknownIndex(PhaseAccess, 9, 3).Value != 9 {
		t.Error("UnknownIndex should carry the index as value")
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("mmap failed")
	err := Wrap(PhaseAlloc, KindAllocation, cause, "map chunk")

	if !errors.Is(err, ErrAllocation) {
		t.Error("wrapped error should match its kind")
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped error should unwrap to its cause")
	}
	var target *Error
	if !errors.As(err, &target) || target.Detail != "map chunk" {
		t.Errorf("errors.As = %v", target)
	}
}
