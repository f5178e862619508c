// Package errors is the structured error type shared by the decoder and
// validator: every rejected function body surfaces one of these, tagged
// with the phase it failed in, a stable machine-checkable Kind, and the
// byte offset of the offending operator.
package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which stage of function-body processing produced the
// error.
type Phase string

const (
	PhaseDecode   Phase = "decode"   // operator source / byte-level decode
	PhaseValidate Phase = "validate" // stack and control-flow validation
)

// Kind categorizes the error. These map directly onto the error kinds a
// conforming validator must distinguish.
type Kind string

const (
	KindUnexpectedEof         Kind = "unexpected_eof"
	KindStackUnderflow        Kind = "stack_underflow"
	KindTypeMismatch          Kind = "type_mismatch"
	KindUnknownLabel          Kind = "unknown_label"
	KindUnknownIndex          Kind = "unknown_index"
	KindInvalidAlignment      Kind = "invalid_alignment"
	KindMalformedReservedByte Kind = "malformed_reserved_byte"
	KindStrayElse             Kind = "stray_else"
	KindUnsupportedAtomicFence Kind = "unsupported_atomic_fence"
	KindMalformedOperator     Kind = "malformed_operator"
)

// Error is the structured error type returned by the decoder and
// validator.
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	// Offset is the byte offset of the operator that triggered the error,
	// as reported by the operator source (wasm.OperatorSource reports
	// offsets from the start of the module binary).
	Offset uint32
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))
	fmt.Fprintf(&b, " at offset %d", e.Offset)
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target matches this error's Phase and Kind, ignoring
// offset and detail so callers can test `errors.Is(err, errors.New(...).Build())`-
// style sentinels.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides fluent construction of Error values.
type Builder struct {
	err Error
}

// New starts building an error for the given phase and kind.
func New(phase Phase, kind Kind) *Builder {
	return &Builder{err: Error{Phase: phase, Kind: kind}}
}

func (b *Builder) Offset(off uint32) *Builder {
	b.err.Offset = off
	return b
}

func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors, one per error kind named in the design.

func UnexpectedEof(off uint32) *Error {
	return New(PhaseDecode, KindUnexpectedEof).Offset(off).
		Detail("function body ended without a terminating end").Build()
}

func StackUnderflow(off uint32, want int, have int) *Error {
	return New(PhaseValidate, KindStackUnderflow).Offset(off).
		Detail("popped below frame height (wanted %d operand(s), have %d)", want, have).Build()
}

func TypeMismatch(off uint32, want, got string) *Error {
	return New(PhaseValidate, KindTypeMismatch).Offset(off).
		Detail("expected %s, got %s", want, got).Build()
}

func UnknownLabel(off uint32, depth uint32) *Error {
	return New(PhaseValidate, KindUnknownLabel).Offset(off).
		Detail("branch depth %d exceeds control stack", depth).Build()
}

func UnknownIndex(off uint32, space string, idx uint32) *Error {
	return New(PhaseValidate, KindUnknownIndex).Offset(off).
		Detail("%s index %d not found", space, idx).Build()
}

func InvalidAlignment(off uint32, flags uint32) *Error {
	return New(PhaseValidate, KindInvalidAlignment).Offset(off).
		Detail("alignment flags %d out of range", flags).Build()
}

func MalformedReservedByte(off uint32) *Error {
	return New(PhaseValidate, KindMalformedReservedByte).Offset(off).
		Detail("reserved byte must be zero").Build()
}

func StrayElse(off uint32) *Error {
	return New(PhaseValidate, KindStrayElse).Offset(off).
		Detail("else without a matching if, or a duplicate else").Build()
}

func UnsupportedAtomicFence(off uint32, flags byte) *Error {
	return New(PhaseValidate, KindUnsupportedAtomicFence).Offset(off).
		Detail("atomic.fence with nonzero flags (%d) not supported", flags).Build()
}

func MalformedOperator(off uint32, cause error) *Error {
	return New(PhaseDecode, KindMalformedOperator).Offset(off).Cause(cause).Build()
}
