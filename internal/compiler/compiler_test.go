package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veera-sivarajan/bessy/internal/chunk"
	"github.com/veera-sivarajan/bessy/internal/value"
)

func opcodes(ch *chunk.Chunk) []chunk.Op {
	ops := make([]chunk.Op, len(ch.Code))
	for i, instr := range ch.Code {
		ops[i] = instr.Op
	}
	return ops
}

func TestCompileArithmeticPrecedence(t *testing.T) {
	ch, err := Compile("1 + 2 * 3;")
	assert.NoError(t, err)
	assert.Equal(t, []chunk.Op{
		chunk.OpConstant, chunk.OpConstant, chunk.OpConstant,
		chunk.OpMultiply, chunk.OpAdd, chunk.OpPop, chunk.OpReturn,
	}, opcodes(ch))
}

func TestCompileComparisonDesugaring(t *testing.T) {
	ch, err := Compile("1 <= 2;")
	assert.NoError(t, err)
	assert.Equal(t, []chunk.Op{
		chunk.OpConstant, chunk.OpConstant, chunk.OpGreater, chunk.OpNot,
		chunk.OpPop, chunk.OpReturn,
	}, opcodes(ch))
}

func TestCompileGlobalDeclarationAndUse(t *testing.T) {
	ch, err := Compile(`var x = 1; print x;`)
	assert.NoError(t, err)
	assert.Equal(t, []chunk.Op{
		chunk.OpConstant, chunk.OpDefineGlobal,
		chunk.OpGetGlobal, chunk.OpPrint, chunk.OpReturn,
	}, opcodes(ch))
}

func TestCompileLocalUsesStackSlotNotGlobalOps(t *testing.T) {
	ch, err := Compile(`{ var x = 1; print x; }`)
	assert.NoError(t, err)
	assert.Equal(t, []chunk.Op{
		chunk.OpConstant, chunk.OpGetLocal, chunk.OpPrint, chunk.OpPop, chunk.OpReturn,
	}, opcodes(ch))
}

func TestCompileIfElseEmitsJumpsAroundBranches(t *testing.T) {
	ch, err := Compile(`if (true) { print 1; } else { print 2; }`)
	assert.NoError(t, err)
	ops := opcodes(ch)
	assert.Contains(t, ops, chunk.OpJumpIfFalse)
	assert.Contains(t, ops, chunk.OpJump)

	var jumpIfFalse, jump chunk.Instruction
	for _, instr := range ch.Code {
		if instr.Op == chunk.OpJumpIfFalse {
			jumpIfFalse = instr
		}
		if instr.Op == chunk.OpJump {
			jump = instr
		}
	}
	assert.Positive(t, jumpIfFalse.Operand)
	assert.Positive(t, jump.Operand)
}

func TestCompileWhileEmitsBackwardLoop(t *testing.T) {
	ch, err := Compile(`while (false) { print 1; }`)
	assert.NoError(t, err)
	ops := opcodes(ch)
	assert.Contains(t, ops, chunk.OpLoop)
}

func TestCompileStringConstantIsInterned(t *testing.T) {
	ch, err := Compile(`"hi";`)
	assert.NoError(t, err)
	assert.Len(t, ch.Constants, 1)
	assert.Equal(t, value.String, ch.Constants[0].Type)
	assert.Equal(t, "hi", ch.Strings.Lookup(ch.Constants[0].StringID))
}

func TestCompileInvalidAssignmentTargetIsParseError(t *testing.T) {
	_, err := Compile(`1 + 2 = 3;`)
	assert.Error(t, err)
	var ce *CompileError
	assert.ErrorAs(t, err, &ce)
	assert.Equal(t, "Invalid assignment target.", ce.Msg)
}

func TestCompileSelfReferencingLocalInitializerIsParseError(t *testing.T) {
	_, err := Compile(`{ var a = a; }`)
	assert.Error(t, err)
	var ce *CompileError
	assert.ErrorAs(t, err, &ce)
	assert.Equal(t, "Can't read local variable in its own initializer.", ce.Msg)
}

func TestCompileDuplicateLocalInSameScopeIsParseError(t *testing.T) {
	_, err := Compile(`{ var a = 1; var a = 2; }`)
	assert.Error(t, err)
	var ce *CompileError
	assert.ErrorAs(t, err, &ce)
	assert.Equal(t, "Already a variable with this name in this scope.", ce.Msg)
}

func TestCompileMissingSemicolonIsParseError(t *testing.T) {
	_, err := Compile(`print 1`)
	assert.Error(t, err)
	var ce *CompileError
	assert.ErrorAs(t, err, &ce)
	assert.Equal(t, 1, ce.Line)
}

func TestCompilePropagatesLexErrorVerbatim(t *testing.T) {
	_, err := Compile(`"unterminated`)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Lex error")
}

func TestCompileForDesugarsToConditionAndIncrementLoop(t *testing.T) {
	ch, err := Compile(`for (var i = 0; i < 3; i = i + 1) { print i; }`)
	assert.NoError(t, err)
	ops := opcodes(ch)
	assert.Contains(t, ops, chunk.OpLoop)
	assert.Contains(t, ops, chunk.OpJumpIfFalse)
}

func TestCompileAndOrShortCircuitViaJumps(t *testing.T) {
	ch, err := Compile(`true and false;`)
	assert.NoError(t, err)
	assert.Contains(t, opcodes(ch), chunk.OpJumpIfFalse)

	ch2, err := Compile(`true or false;`)
	assert.NoError(t, err)
	ops2 := opcodes(ch2)
	assert.Contains(t, ops2, chunk.OpJumpIfFalse)
	assert.Contains(t, ops2, chunk.OpJump)
}
