// Package validate is the fused function-body decoder and type-checking
// validator: a single pass over a byte-encoded Wasm operator stream that
// maintains the Wasm stack-discipline type checker and builds a nested
// instruction-sequence IR at the same time.
package validate

import (
	"github.com/wasmkit/wazir/errors"
	"github.com/wasmkit/wazir/ir"
)

// FrameKind identifies what kind of structured control frame a Frame
// represents.
type FrameKind byte

const (
	FunctionEntry FrameKind = iota
	BlockFrame
	LoopFrame
	IfFrame
	ElseFrame
)

// Frame is one active entry on the control stack.
type Frame struct {
	Kind        FrameKind
	Start       []ir.ValType
	End         []ir.ValType
	Height      int
	Unreachable bool
	Seq         ir.SeqID
}

// LabelTypes returns the types a branch targeting this frame must supply:
// a loop's own parameters (since branching to a loop re-enters it), or
// every other kind's results.
func (f *Frame) LabelTypes() []ir.ValType {
	if f.Kind == LoopFrame {
		return f.Start
	}
	return f.End
}

// ifElseEntry tracks one currently-open if/else pair so that End can
// synthesize a single IfElse IR node even when the source had no else
// clause.
type ifElseEntry struct {
	consequent   ir.SeqID
	alternate    ir.SeqID
	hasAlternate bool
}

// Context is the combined operand stack, control stack, if/else side
// stack and IR arena that the validation driver mutates while processing
// one function body. It is not safe for concurrent use; a Context is
// scoped to a single function.
type Context struct {
	operands []ir.Operand
	controls []Frame
	ifElse   []ifElseEntry
	arena    *ir.Arena

	// offset is the byte offset of the operator currently being
	// processed; every error the Context produces is tagged with it.
	offset uint32
}

// NewContext creates an empty context backed by a fresh arena.
func NewContext() *Context {
	return &Context{arena: ir.NewArena()}
}

// Arena returns the IR arena being populated.
func (c *Context) Arena() *ir.Arena { return c.arena }

// SetOffset records the byte offset of the operator about to be
// processed, so subsequently raised errors carry it.
func (c *Context) SetOffset(off uint32) { c.offset = off }

// Offset returns the byte offset most recently recorded by SetOffset.
func (c *Context) Offset() uint32 { return c.offset }

// Push pushes a concrete or polymorphic operand.
func (c *Context) Push(op ir.Operand) { c.operands = append(c.operands, op) }

// PushType pushes a single concrete value type.
func (c *Context) PushType(t ir.ValType) { c.Push(ir.Known(t)) }

// PushMany pushes a vector of concrete value types, left to right.
func (c *Context) PushMany(ts []ir.ValType) {
	for _, t := range ts {
		c.PushType(t)
	}
}

// Pop removes and returns the top operand. It fails with StackUnderflow
// if doing so would drop the stack below the current frame's height and
// the frame is reachable; inside an unreachable frame at height, it
// fabricates the polymorphic sentinel without shrinking the stack.
func (c *Context) Pop() (ir.Operand, error) {
	top := c.top()
	if len(c.operands) == top.Height {
		if top.Unreachable {
			return ir.Unknown, nil
		}
		return ir.Operand{}, errors.StackUnderflow(c.offset, 1, 0)
	}
	v := c.operands[len(c.operands)-1]
	c.operands = c.operands[:len(c.operands)-1]
	return v, nil
}

// PopExpected pops one operand and unifies it with want.
func (c *Context) PopExpected(want ir.ValType) error {
	got, err := c.Pop()
	if err != nil {
		return err
	}
	if _, ok := ir.Unify(got, ir.Known(want)); !ok {
		return errors.TypeMismatch(c.offset, want.String(), got.Type.String())
	}
	return nil
}

// PopMany pops len(wants) operands in reverse order (the last expected
// type is popped first, matching how they were pushed) and unifies each.
func (c *Context) PopMany(wants []ir.ValType) error {
	for i := len(wants) - 1; i >= 0; i-- {
		if err := c.PopExpected(wants[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Context) top() *Frame {
	return &c.controls[len(c.controls)-1]
}

// Depth reports the number of active control frames.
func (c *Context) Depth() int { return len(c.controls) }

// FrameAt returns the frame fromTop entries below the top (0 is the
// current frame).
func (c *Context) FrameAt(fromTop int) *Frame {
	return &c.controls[len(c.controls)-1-fromTop]
}

// PushFunctionEntry allocates the bottom control frame for a function
// body: no parameters (the caller already bound them as locals), and
// result is the function's declared result types.
func (c *Context) PushFunctionEntry(results []ir.ValType) ir.SeqID {
	seq := c.arena.Alloc()
	c.controls = append(c.controls, Frame{Kind: FunctionEntry, End: results, Height: 0, Seq: seq})
	return seq
}

// PushControl pops start from the operand stack (the surrounding context
// supplies block parameters before entry), allocates a new sequence, and
// pushes a frame whose height is the post-pop stack depth; start is then
// pushed back so the block's own body sees its parameters.
func (c *Context) PushControl(kind FrameKind, start, end []ir.ValType) (ir.SeqID, error) {
	if err := c.PopMany(start); err != nil {
		return 0, err
	}
	seq := c.arena.Alloc()
	c.controls = append(c.controls, Frame{Kind: kind, Start: start, End: end, Height: len(c.operands), Seq: seq})
	c.PushMany(start)
	return seq, nil
}

// PopControl checks that the operand stack holds exactly the current
// frame's end types above its height, truncates the stack to height, and
// removes the frame. The caller is responsible for pushing End back
// afterward (every End-processing caller needs to append IR first).
func (c *Context) PopControl() (Frame, error) {
	top := *c.top()
	if err := c.PopMany(top.End); err != nil {
		return Frame{}, err
	}
	if len(c.operands) != top.Height {
		return Frame{}, errors.TypeMismatch(c.offset, "exactly the block's declared result arity", "extra operand(s) on the stack")
	}
	c.controls = c.controls[:len(c.controls)-1]
	return top, nil
}

// MarkUnreachable marks the current frame unreachable and truncates the
// operand stack to its height; subsequent pops fabricate whatever type
// the surrounding code demands.
func (c *Context) MarkUnreachable() {
	top := c.top()
	top.Unreachable = true
	c.operands = c.operands[:top.Height]
}

// PushElseFrame opens the alternate branch of an if/else: a fresh
// sequence with the same parameter/result shape as the consequent it
// follows, starting at the same operand-stack height (the condition and
// consequent are already gone by the time Else is processed).
func (c *Context) PushElseFrame(start, end []ir.ValType) ir.SeqID {
	seq := c.arena.Alloc()
	c.controls = append(c.controls, Frame{Kind: ElseFrame, Start: start, End: end, Height: len(c.operands), Seq: seq})
	c.PushMany(start)
	return seq
}

// PushIfElse records a newly opened if as a pending if/else entry.
func (c *Context) PushIfElse(consequent ir.SeqID) {
	c.ifElse = append(c.ifElse, ifElseEntry{consequent: consequent})
}

// SetAlternate records the alternate sequence for the innermost open
// if/else entry. It fails with StrayElse if there is no pending entry or
// it already has an alternate.
func (c *Context) SetAlternate(alt ir.SeqID) error {
	if len(c.ifElse) == 0 {
		return errors.StrayElse(c.offset)
	}
	top := &c.ifElse[len(c.ifElse)-1]
	if top.hasAlternate {
		return errors.StrayElse(c.offset)
	}
	top.alternate = alt
	top.hasAlternate = true
	return nil
}

// PopIfElse removes and returns the innermost if/else entry, allocating
// no alternate of its own: the caller synthesizes one first via
// SetAlternate when the source had no else clause.
func (c *Context) PopIfElse() ifElseEntry {
	top := c.ifElse[len(c.ifElse)-1]
	c.ifElse = c.ifElse[:len(c.ifElse)-1]
	return top
}

// Append appends instr to the sequence belonging to the frame fromTop
// entries below the current top (0 = current frame's own sequence).
func (c *Context) Append(fromTop int, instr ir.Instr, pos uint32) {
	c.arena.Append(c.FrameAt(fromTop).Seq, instr, pos)
}

// AppendTo appends instr directly to a known sequence id.
func (c *Context) AppendTo(seq ir.SeqID, instr ir.Instr, pos uint32) {
	c.arena.Append(seq, instr, pos)
}
