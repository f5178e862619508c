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
				Phase:  PhaseValidate,
				Kind:   KindTypeMismatch,
				Offset: 42,
				Detail: "expected i32, got i64",
			},
			contains: []string{"[validate]", "type_mismatch", "offset 42", "expected i32, got i64"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase:  PhaseDecode,
				Kind:   KindMalformedOperator,
				Offset: 0,
			},
			contains: []string{"[decode]", "malformed_operator", "offset 0"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseDecode,
				Kind:   KindMalformedOperator,
				Offset: 7,
				Cause:  errors.New("unexpected opcode 0xff"),
			},
			contains: []string{"[decode]", "offset 7", "caused by", "unexpected opcode 0xff"},
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
	err := &Error{Phase: PhaseDecode, Kind: KindMalformedOperator, Cause: cause}
	if errors.Unwrap(err) != cause {
		t.Error("Unwrap should return the cause")
	}
}

func TestError_Is(t *testing.T) {
	a := &Error{Phase: PhaseValidate, Kind: KindStackUnderflow, Offset: 3}
	b := &Error{Phase: PhaseValidate, Kind: KindStackUnderflow, Offset: 99}
	c := &Error{Phase: PhaseValidate, Kind: KindTypeMismatch}

	if !errors.Is(a, b) {
		t.Error("errors with same phase and kind should match regardless of offset")
	}
	if errors.Is(a, c) {
		t.Error("errors with different kind should not match")
	}
}

func TestBuilder(t *testing.T) {
	err := New(PhaseValidate, KindUnknownIndex).
		Offset(12).
		Detail("function index %d not found", 9).
		Build()

	if err.Phase != PhaseValidate || err.Kind != KindUnknownIndex {
		t.Fatalf("unexpected phase/kind: %+v", err)
	}
	if !strings.Contains(err.Detail, "function index 9") {
		t.Errorf("unexpected detail: %q", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		kind Kind
	}{
		{"eof", UnexpectedEof(1), KindUnexpectedEof},
		{"underflow", StackUnderflow(1, 1, 0), KindStackUnderflow},
		{"mismatch", TypeMismatch(1, "i32", "i64"), KindTypeMismatch},
		{"label", UnknownLabel(1, 3), KindUnknownLabel},
		{"index", UnknownIndex(1, "global", 5), KindUnknownIndex},
		{"align", InvalidAlignment(1, 40), KindInvalidAlignment},
		{"reserved", MalformedReservedByte(1), KindMalformedReservedByte},
		{"else", StrayElse(1), KindStrayElse},
		{"fence", UnsupportedAtomicFence(1, 2), KindUnsupportedAtomicFence},
		{"operator", MalformedOperator(1, errors.New("bad")), KindMalformedOperator},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("got kind %s, want %s", tt.err.Kind, tt.kind)
			}
		})
	}
}
