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
				Op:     OpMapUpdate,
				Kind:   KindMapOperation,
				Name:   "test_map",
				Detail: "flags create_only",
			},
			contains: []string{"[map.update]", "map_operation", `"test_map"`, "flags create_only"},
		},
		{
			name: "minimal error",
			err: &Error{
				Kind: KindInvalidState,
			},
			contains: []string{"invalid_state"},
		},
		{
			name: "error with cause",
			err: &Error{
				Op:     OpMemory,
				Kind:   KindAllocation,
				Detail: "memory full",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[memory]", "allocation", "memory full", "caused by", "underlying error"},
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
	err := &Error{
		Op:    OpFieldGet,
		Kind:  KindFieldAccess,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not walk to cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Op:   OpMapLookup,
		Kind: KindMapOperation,
	}

	if !errors.Is(err, ErrMapOperation) {
		t.Error("Is should match the kind sentinel")
	}
	if !err.Is(&Error{Op: OpMapLookup, Kind: KindMapOperation}) {
		t.Error("Is should match same op and kind")
	}
	if err.Is(&Error{Op: OpMapDelete, Kind: KindMapOperation}) {
		t.Error("Is should not match a different op")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("Is should not match a different kind")
	}
	if err.Is(errors.New("map_operation")) {
		t.Error("Is should not match foreign errors")
	}
}

func TestError_IsThroughCause(t *testing.T) {
	err := MapOperation(OpMapLookup, "test_map", NotFound(OpMapLookup, "key"))

	if !Is(err, ErrMapOperation) {
		t.Error("lookup failure must be a map operation error")
	}
	if !Is(err, ErrNotFound) {
		t.Error("lookup failure must also match not found through its cause")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(OpMapUpdate, KindMapOperation).
		Name("map_test").
		Value(42).
		Cause(cause).
		Detail("key %d", 42).
		Build()

	if err.Op != OpMapUpdate {
		t.Errorf("Op = %v, want %v", err.Op, OpMapUpdate)
	}
	if err.Kind != KindMapOperation {
		t.Errorf("Kind = %v, want %v", err.Kind, KindMapOperation)
	}
	if err.Name != "map_test" {
		t.Errorf("Name = %q", err.Name)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v", err.Value)
	}
	if err.Cause != cause {
		t.Error("Cause not set")
	}
	if err.Detail != "key 42" {
		t.Errorf("Detail = %q", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		kind Kind
		want *Error
	}{
		{"not found", NotFound(OpMapGet, "test_map"), KindNotFound, ErrNotFound},
		{"creation", Creation(OpMapNew, "map_test", "host rejected spec"), KindCreation, ErrCreation},
		{"field access", FieldAccess(OpFieldGet, "host rejected"), KindFieldAccess, ErrFieldAccess},
		{"map operation", MapOperation(OpMapDelete, "m", nil), KindMapOperation, ErrMapOperation},
		{"buffer access", BufferAccess(OpFieldGetBuffer, "host rejected"), KindBufferAccess, ErrBufferAccess},
		{"type mismatch", TypeMismatch(OpFieldSet, "int32", "uint8"), KindTypeMismatch, ErrTypeMismatch},
		{"unsupported", UnsupportedKind(OpFieldGet, 99, "unknown"), KindUnsupportedKind, ErrUnsupportedKind},
		{"invalid state", InvalidState(OpReaderRead, "active"), KindInvalidState, ErrInvalidState},
		{"allocation", AllocationFailed(16, 8, nil), KindAllocation, ErrAllocation},
		{"wrap", Wrap(OpParamValue, KindNotFound, errors.New("x"), "missing"), KindNotFound, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if !errors.Is(tt.err, tt.want) {
				t.Errorf("errors.Is(%v, sentinel) = false", tt.err)
			}
		})
	}

	if got := TypeMismatch(OpFieldSet, "int32", "uint8").Error(); !strings.Contains(got, "expected int32, got uint8") {
		t.Errorf("unexpected message %q", got)
	}
}
