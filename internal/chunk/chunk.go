// Package chunk implements the compilation artifact emitted by
// internal/compiler and consumed by internal/vm: a flat instruction
// sequence, its parallel line map, a constant pool, and the string
// interner the whole program shares. Code and Lines are kept in lockstep —
// every instruction has exactly one source line attached, for diagnostics.
package chunk

import (
	"fmt"
	"io"

	"github.com/veera-sivarajan/bessy/internal/interner"
	"github.com/veera-sivarajan/bessy/internal/value"
)

// Op is the opcode of a single instruction.
type Op byte

const (
	OpConstant Op = iota
	OpNil
	OpTrue
	OpFalse
	OpPop
	OpGetLocal
	OpSetLocal
	OpGetGlobal
	OpSetGlobal
	OpDefineGlobal
	OpEqual
	OpGreater
	OpLess
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpNot
	OpNegate
	OpPrint
	OpJump
	OpJumpIfFalse
	OpLoop
	OpReturn
)

func (op Op) String() string {
	switch op {
	case OpConstant:
		return "OP_CONSTANT"
	case OpNil:
		return "OP_NIL"
	case OpTrue:
		return "OP_TRUE"
	case OpFalse:
		return "OP_FALSE"
	case OpPop:
		return "OP_POP"
	case OpGetLocal:
		return "OP_GET_LOCAL"
	case OpSetLocal:
		return "OP_SET_LOCAL"
	case OpGetGlobal:
		return "OP_GET_GLOBAL"
	case OpSetGlobal:
		return "OP_SET_GLOBAL"
	case OpDefineGlobal:
		return "OP_DEFINE_GLOBAL"
	case OpEqual:
		return "OP_EQUAL"
	case OpGreater:
		return "OP_GREATER"
	case OpLess:
		return "OP_LESS"
	case OpAdd:
		return "OP_ADD"
	case OpSubtract:
		return "OP_SUBTRACT"
	case OpMultiply:
		return "OP_MULTIPLY"
	case OpDivide:
		return "OP_DIVIDE"
	case OpNot:
		return "OP_NOT"
	case OpNegate:
		return "OP_NEGATE"
	case OpPrint:
		return "OP_PRINT"
	case OpJump:
		return "OP_JUMP"
	case OpJumpIfFalse:
		return "OP_JUMP_IF_FALSE"
	case OpLoop:
		return "OP_LOOP"
	case OpReturn:
		return "OP_RETURN"
	default:
		return fmt.Sprintf("OP_%d", byte(op))
	}
}

// hasOperand reports whether op carries a meaningful Operand (a constant/
// global index, a local slot, or a jump/loop offset) for disassembly.
func (op Op) hasOperand() bool {
	switch op {
	case OpConstant, OpGetLocal, OpSetLocal, OpGetGlobal, OpSetGlobal,
		OpDefineGlobal, OpJump, OpJumpIfFalse, OpLoop:
		return true
	default:
		return false
	}
}

// Instruction is one emitted opcode plus its operand, when it has one:
// a constant/global pool index, a local stack slot, or a jump/loop offset
// in instruction units (not bytes).
type Instruction struct {
	Op      Op
	Operand int
}

// Chunk is the compiled form of a program: an ordered instruction stream,
// a parallel line-number map used only for diagnostics, a constant pool,
// and the string interner shared by the whole program.
type Chunk struct {
	Code      []Instruction
	Lines     []int
	Constants []value.Value
	Strings   *interner.Interner
}

// New returns an empty Chunk with a fresh interner.
func New() *Chunk {
	return &Chunk{Strings: interner.New()}
}

// AddConstant appends v to the constant pool and returns its index. No
// deduplication is performed — the compiler may emit duplicates.
func (c *Chunk) AddConstant(v value.Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// Emit appends op (with no meaningful operand) tagged with line, and
// returns the index it was written at — used by the compiler for jump
// patching.
func (c *Chunk) Emit(op Op, line int) int {
	return c.EmitOperand(op, 0, line)
}

// EmitOperand appends op with the given operand tagged with line, and
// returns the index it was written at.
func (c *Chunk) EmitOperand(op Op, operand int, line int) int {
	c.Code = append(c.Code, Instruction{Op: op, Operand: operand})
	c.Lines = append(c.Lines, line)
	return len(c.Code) - 1
}

// PatchOperand overwrites the operand of the instruction at ix — used to
// back-patch a forward jump once its target offset is known.
func (c *Chunk) PatchOperand(ix int, operand int) {
	c.Code[ix].Operand = operand
}

// Stringify renders v's textual form, resolving String values through this
// Chunk's interner so the interned bytes come back verbatim with no
// surrounding quotes.
func (c *Chunk) Stringify(v value.Value) string {
	if v.Type == value.String {
		return c.Strings.Lookup(v.StringID)
	}
	return v.String()
}

// Disassemble prints one line per instruction to w: its offset, opcode
// name, and (for constant/global-pool instructions) the resolved constant.
// It is a read-only debugging aid; it never runs the chunk.
func (c *Chunk) Disassemble(w io.Writer, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset, instr := range c.Code {
		line := "   |"
		if offset == 0 || c.Lines[offset] != c.Lines[offset-1] {
			line = fmt.Sprintf("%4d", c.Lines[offset])
		}
		if !instr.Op.hasOperand() {
			fmt.Fprintf(w, "%04d %s %-18s\n", offset, line, instr.Op)
			continue
		}
		switch instr.Op {
		case OpConstant, OpGetGlobal, OpSetGlobal, OpDefineGlobal:
			val := "?"
			if instr.Operand < len(c.Constants) {
				val = c.Stringify(c.Constants[instr.Operand])
			}
			fmt.Fprintf(w, "%04d %s %-18s %4d '%s'\n", offset, line, instr.Op, instr.Operand, val)
		case OpJump, OpJumpIfFalse:
			fmt.Fprintf(w, "%04d %s %-18s %4d -> %d\n", offset, line, instr.Op, instr.Operand, offset+1+instr.Operand)
		case OpLoop:
			fmt.Fprintf(w, "%04d %s %-18s %4d -> %d\n", offset, line, instr.Op, instr.Operand, offset+1-instr.Operand)
		default:
			fmt.Fprintf(w, "%04d %s %-18s %4d\n", offset, line, instr.Op, instr.Operand)
		}
	}
}
