// Package compiler is a single-pass Pratt parser: it walks the token stream
// produced by internal/lexer and emits internal/chunk instructions directly,
// with no intermediate AST. It handles the full statement grammar
// (var/print/block/if-else/while/for/expression statements) plus locals
// with scope depths and jump patching for control flow.
package compiler

import (
	"fmt"

	"github.com/veera-sivarajan/bessy/internal/chunk"
	"github.com/veera-sivarajan/bessy/internal/lexer"
	"github.com/veera-sivarajan/bessy/internal/token"
	"github.com/veera-sivarajan/bessy/internal/value"
)

// CompileError reports a syntactic fault: an unexpected token, an unclosed
// construct, an invalid assignment target, or a scoping violation.
type CompileError struct {
	Line int
	Msg  string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("[line %d] Parse error: %s", e.Line, e.Msg)
}

// maxLocals bounds how many locals a single compiling body may hold at once,
// since a local's stack slot is addressed by a single byte-range Operand.
const maxLocals = 256

// maxJumpOffset is the largest forward or backward jump distance, in
// instruction units, a Jump/JumpIfFalse/Loop operand can encode.
const maxJumpOffset = 0xFFFF

// Precedence orders binding strength from loosest to tightest, following
// Pratt-parsing convention: a binary operator recurses into parsePrecedence
// at one level tighter than its own, making it left-associative.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

func (p Precedence) next() Precedence {
	if p == PrecPrimary {
		return PrecPrimary
	}
	return p + 1
}

// Local tracks one in-scope local variable slot. Depth is -1 between the
// point a local is declared and the point its initializer finishes
// compiling, so a self-referencing initializer can be rejected.
type Local struct {
	Name  string
	Depth int
}

const uninitializedDepth = -1

type parseFn func(c *Compiler, canAssign bool) error

type rule struct {
	prefix parseFn
	infix  parseFn
	prec   Precedence
}

var rules map[token.Type]rule

func init() {
	rules = map[token.Type]rule{
		token.LeftParen:    {grouping, nil, PrecNone},
		token.Minus:        {unary, binary, PrecTerm},
		token.Plus:         {nil, binary, PrecTerm},
		token.Slash:        {nil, binary, PrecFactor},
		token.Star:         {nil, binary, PrecFactor},
		token.Bang:         {unary, nil, PrecNone},
		token.BangEqual:    {nil, binary, PrecEquality},
		token.EqualEqual:   {nil, binary, PrecEquality},
		token.Greater:      {nil, binary, PrecComparison},
		token.GreaterEqual: {nil, binary, PrecComparison},
		token.Less:         {nil, binary, PrecComparison},
		token.LessEqual:    {nil, binary, PrecComparison},
		token.Number:       {number, nil, PrecNone},
		token.StrLit:       {stringLit, nil, PrecNone},
		token.True:         {literal, nil, PrecNone},
		token.False:        {literal, nil, PrecNone},
		token.Nil:          {literal, nil, PrecNone},
		token.Identifier:   {variable, nil, PrecNone},
		token.And:          {nil, and_, PrecAnd},
		token.Or:           {nil, or_, PrecOr},
	}
}

func getRule(t token.Type) rule {
	if r, ok := rules[t]; ok {
		return r
	}
	return rule{nil, nil, PrecNone}
}

// Compiler holds the one-token lookahead and the in-progress Chunk for a
// single compilation. It never backtracks: parsePrecedence consumes tokens
// exactly once each.
type Compiler struct {
	lexer      *lexer.Lexer
	previous   token.Token
	current    token.Token
	chunk      *chunk.Chunk
	locals     []Local
	scopeDepth int
}

// Compile compiles source into a Chunk in one pass. It returns the first
// error encountered — a *lexer.Error or a *CompileError — and stops; no
// error recovery or resynchronization is attempted.
func Compile(source string) (*chunk.Chunk, error) {
	c := &Compiler{lexer: lexer.New(source), chunk: chunk.New()}
	if err := c.advance(); err != nil {
		return nil, err
	}
	for !c.check(token.Eof) {
		if err := c.declaration(); err != nil {
			return nil, err
		}
	}
	c.emit(chunk.OpReturn)
	return c.chunk, nil
}

func (c *Compiler) advance() error {
	c.previous = c.current
	tok, err := c.lexer.NextToken()
	if err != nil {
		return err
	}
	c.current = tok
	return nil
}

func (c *Compiler) check(t token.Type) bool {
	return c.current.Type == t
}

func (c *Compiler) match(t token.Type) (bool, error) {
	if !c.check(t) {
		return false, nil
	}
	if err := c.advance(); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Compiler) consume(t token.Type, msg string) error {
	if c.current.Type == t {
		return c.advance()
	}
	return c.errorAtCurrent(msg)
}

func (c *Compiler) errorAtCurrent(msg string) error {
	return &CompileError{Line: c.current.Line, Msg: msg}
}

func (c *Compiler) errorAtPrevious(msg string) error {
	return &CompileError{Line: c.previous.Line, Msg: msg}
}

func (c *Compiler) emit(op chunk.Op) int {
	return c.chunk.Emit(op, c.previous.Line)
}

func (c *Compiler) emitOperand(op chunk.Op, operand int) int {
	return c.chunk.EmitOperand(op, operand, c.previous.Line)
}

func (c *Compiler) emitJump(op chunk.Op) int {
	return c.emitOperand(op, 0)
}

func (c *Compiler) patchJump(ix int) error {
	offset := len(c.chunk.Code) - ix - 1
	if offset > maxJumpOffset {
		return c.errorAtPrevious("Too much code to skip over.")
	}
	c.chunk.PatchOperand(ix, offset)
	return nil
}

func (c *Compiler) emitLoop(start int) error {
	offset := len(c.chunk.Code) - start + 1
	if offset > maxJumpOffset {
		return c.errorAtPrevious("Loop body too large.")
	}
	c.emitOperand(chunk.OpLoop, offset)
	return nil
}

func (c *Compiler) identifierConstant(name string) int {
	id := c.chunk.Strings.Intern(name)
	return c.chunk.AddConstant(value.NewString(id))
}

// --- declarations and statements ---

func (c *Compiler) declaration() error {
	if ok, err := c.match(token.Var); err != nil {
		return err
	} else if ok {
		return c.varDeclaration()
	}
	return c.statement()
}

func (c *Compiler) varDeclaration() error {
	if err := c.consume(token.Identifier, "Expect variable name."); err != nil {
		return err
	}
	name := c.previous
	isLocal := c.scopeDepth > 0
	if isLocal {
		if err := c.declareLocal(name); err != nil {
			return err
		}
	}

	if ok, err := c.match(token.Equal); err != nil {
		return err
	} else if ok {
		if err := c.expression(); err != nil {
			return err
		}
	} else {
		c.emit(chunk.OpNil)
	}

	if err := c.consume(token.Semicolon, "Expect ';' after variable declaration."); err != nil {
		return err
	}

	if isLocal {
		c.markInitialized()
		return nil
	}
	nameConst := c.identifierConstant(name.Lexeme)
	c.emitOperand(chunk.OpDefineGlobal, nameConst)
	return nil
}

func (c *Compiler) declareLocal(name token.Token) error {
	for i := len(c.locals) - 1; i >= 0; i-- {
		local := c.locals[i]
		if local.Depth != uninitializedDepth && local.Depth < c.scopeDepth {
			break
		}
		if local.Name == name.Lexeme {
			return &CompileError{Line: name.Line, Msg: "Already a variable with this name in this scope."}
		}
	}
	return c.addLocal(name)
}

func (c *Compiler) addLocal(name token.Token) error {
	if len(c.locals) >= maxLocals {
		return &CompileError{Line: name.Line, Msg: "Too many local variables in function."}
	}
	c.locals = append(c.locals, Local{Name: name.Lexeme, Depth: uninitializedDepth})
	return nil
}

func (c *Compiler) markInitialized() {
	c.locals[len(c.locals)-1].Depth = c.scopeDepth
}

func (c *Compiler) statement() error {
	if ok, err := c.match(token.Print); err != nil {
		return err
	} else if ok {
		return c.printStatement()
	}
	if ok, err := c.match(token.LeftBrace); err != nil {
		return err
	} else if ok {
		c.beginScope()
		if err := c.block(); err != nil {
			return err
		}
		return c.endScope()
	}
	if ok, err := c.match(token.If); err != nil {
		return err
	} else if ok {
		return c.ifStatement()
	}
	if ok, err := c.match(token.While); err != nil {
		return err
	} else if ok {
		return c.whileStatement()
	}
	if ok, err := c.match(token.For); err != nil {
		return err
	} else if ok {
		return c.forStatement()
	}
	return c.expressionStatement()
}

func (c *Compiler) printStatement() error {
	if err := c.expression(); err != nil {
		return err
	}
	if err := c.consume(token.Semicolon, "Expect ';' after value."); err != nil {
		return err
	}
	c.emit(chunk.OpPrint)
	return nil
}

func (c *Compiler) expressionStatement() error {
	if err := c.expression(); err != nil {
		return err
	}
	if err := c.consume(token.Semicolon, "Expect ';' after expression."); err != nil {
		return err
	}
	c.emit(chunk.OpPop)
	return nil
}

func (c *Compiler) block() error {
	for !c.check(token.RightBrace) && !c.check(token.Eof) {
		if err := c.declaration(); err != nil {
			return err
		}
	}
	return c.consume(token.RightBrace, "Expect '}' after block.")
}

func (c *Compiler) beginScope() {
	c.scopeDepth++
}

func (c *Compiler) endScope() error {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].Depth > c.scopeDepth {
		c.emit(chunk.OpPop)
		c.locals = c.locals[:len(c.locals)-1]
	}
	return nil
}

func (c *Compiler) ifStatement() error {
	if err := c.consume(token.LeftParen, "Expect '(' after 'if'."); err != nil {
		return err
	}
	if err := c.expression(); err != nil {
		return err
	}
	if err := c.consume(token.RightParen, "Expect ')' after condition."); err != nil {
		return err
	}

	thenJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emit(chunk.OpPop)
	if err := c.statement(); err != nil {
		return err
	}

	elseJump := c.emitJump(chunk.OpJump)
	if err := c.patchJump(thenJump); err != nil {
		return err
	}
	c.emit(chunk.OpPop)

	if ok, err := c.match(token.Else); err != nil {
		return err
	} else if ok {
		if err := c.statement(); err != nil {
			return err
		}
	}
	return c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() error {
	loopStart := len(c.chunk.Code)
	if err := c.consume(token.LeftParen, "Expect '(' after 'while'."); err != nil {
		return err
	}
	if err := c.expression(); err != nil {
		return err
	}
	if err := c.consume(token.RightParen, "Expect ')' after condition."); err != nil {
		return err
	}

	exitJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emit(chunk.OpPop)
	if err := c.statement(); err != nil {
		return err
	}
	if err := c.emitLoop(loopStart); err != nil {
		return err
	}

	if err := c.patchJump(exitJump); err != nil {
		return err
	}
	c.emit(chunk.OpPop)
	return nil
}

func (c *Compiler) forStatement() error {
	c.beginScope()
	if err := c.consume(token.LeftParen, "Expect '(' after 'for'."); err != nil {
		return err
	}

	if ok, err := c.match(token.Semicolon); err != nil {
		return err
	} else if !ok {
		if ok2, err2 := c.match(token.Var); err2 != nil {
			return err2
		} else if ok2 {
			if err := c.varDeclaration(); err != nil {
				return err
			}
		} else {
			if err := c.expressionStatement(); err != nil {
				return err
			}
		}
	}

	loopStart := len(c.chunk.Code)

	exitJump := -1
	if !c.check(token.Semicolon) {
		if err := c.expression(); err != nil {
			return err
		}
		exitJump = c.emitJump(chunk.OpJumpIfFalse)
		c.emit(chunk.OpPop)
	}
	if err := c.consume(token.Semicolon, "Expect ';' after loop condition."); err != nil {
		return err
	}

	if !c.check(token.RightParen) {
		bodyJump := c.emitJump(chunk.OpJump)
		incrementStart := len(c.chunk.Code)
		if err := c.expression(); err != nil {
			return err
		}
		c.emit(chunk.OpPop)
		if err := c.consume(token.RightParen, "Expect ')' after for clauses."); err != nil {
			return err
		}
		if err := c.emitLoop(loopStart); err != nil {
			return err
		}
		loopStart = incrementStart
		if err := c.patchJump(bodyJump); err != nil {
			return err
		}
	} else {
		if err := c.consume(token.RightParen, "Expect ')' after for clauses."); err != nil {
			return err
		}
	}

	if err := c.statement(); err != nil {
		return err
	}
	if err := c.emitLoop(loopStart); err != nil {
		return err
	}

	if exitJump != -1 {
		if err := c.patchJump(exitJump); err != nil {
			return err
		}
		c.emit(chunk.OpPop)
	}

	return c.endScope()
}

// --- expressions ---

func (c *Compiler) expression() error {
	return c.parsePrecedence(PrecAssignment)
}

func (c *Compiler) parsePrecedence(min Precedence) error {
	if err := c.advance(); err != nil {
		return err
	}
	prefixRule := getRule(c.previous.Type).prefix
	if prefixRule == nil {
		return c.errorAtPrevious(fmt.Sprintf("Expect expression, got %s.", c.previous.Type.Display()))
	}
	canAssign := min <= PrecAssignment
	if err := prefixRule(c, canAssign); err != nil {
		return err
	}

	for min <= getRule(c.current.Type).prec {
		if err := c.advance(); err != nil {
			return err
		}
		infixRule := getRule(c.previous.Type).infix
		if err := infixRule(c, canAssign); err != nil {
			return err
		}
	}

	if canAssign && c.check(token.Equal) {
		return c.errorAtCurrent("Invalid assignment target.")
	}
	return nil
}

func (c *Compiler) resolveLocal(name token.Token) (int, error) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].Name == name.Lexeme {
			if c.locals[i].Depth == uninitializedDepth {
				return 0, &CompileError{Line: name.Line, Msg: "Can't read local variable in its own initializer."}
			}
			return i, nil
		}
	}
	return -1, nil
}

func (c *Compiler) namedVariable(name token.Token, canAssign bool) error {
	slot, err := c.resolveLocal(name)
	if err != nil {
		return err
	}

	var getOp, setOp chunk.Op
	var arg int
	if slot != -1 {
		getOp, setOp, arg = chunk.OpGetLocal, chunk.OpSetLocal, slot
	} else {
		getOp, setOp, arg = chunk.OpGetGlobal, chunk.OpSetGlobal, c.identifierConstant(name.Lexeme)
	}

	if canAssign {
		if ok, err := c.match(token.Equal); err != nil {
			return err
		} else if ok {
			if err := c.expression(); err != nil {
				return err
			}
			c.emitOperand(setOp, arg)
			return nil
		}
	}
	c.emitOperand(getOp, arg)
	return nil
}

func grouping(c *Compiler, canAssign bool) error {
	if err := c.expression(); err != nil {
		return err
	}
	return c.consume(token.RightParen, "Expect ')' after expression.")
}

func unary(c *Compiler, canAssign bool) error {
	operator := c.previous.Type
	if err := c.parsePrecedence(PrecUnary); err != nil {
		return err
	}
	switch operator {
	case token.Minus:
		c.emit(chunk.OpNegate)
	case token.Bang:
		c.emit(chunk.OpNot)
	}
	return nil
}

func binary(c *Compiler, canAssign bool) error {
	operator := c.previous.Type
	r := getRule(operator)
	if err := c.parsePrecedence(r.prec.next()); err != nil {
		return err
	}
	switch operator {
	case token.Plus:
		c.emit(chunk.OpAdd)
	case token.Minus:
		c.emit(chunk.OpSubtract)
	case token.Star:
		c.emit(chunk.OpMultiply)
	case token.Slash:
		c.emit(chunk.OpDivide)
	case token.EqualEqual:
		c.emit(chunk.OpEqual)
	case token.BangEqual:
		c.emit(chunk.OpEqual)
		c.emit(chunk.OpNot)
	case token.Less:
		c.emit(chunk.OpLess)
	case token.LessEqual:
		c.emit(chunk.OpGreater)
		c.emit(chunk.OpNot)
	case token.Greater:
		c.emit(chunk.OpGreater)
	case token.GreaterEqual:
		c.emit(chunk.OpLess)
		c.emit(chunk.OpNot)
	}
	return nil
}

func literal(c *Compiler, canAssign bool) error {
	switch c.previous.Type {
	case token.True:
		c.emit(chunk.OpTrue)
	case token.False:
		c.emit(chunk.OpFalse)
	case token.Nil:
		c.emit(chunk.OpNil)
	}
	return nil
}

func number(c *Compiler, canAssign bool) error {
	ix := c.chunk.AddConstant(value.NewNumber(c.previous.Literal))
	c.emitOperand(chunk.OpConstant, ix)
	return nil
}

func stringLit(c *Compiler, canAssign bool) error {
	id := c.chunk.Strings.Intern(c.previous.Lexeme)
	ix := c.chunk.AddConstant(value.NewString(id))
	c.emitOperand(chunk.OpConstant, ix)
	return nil
}

func variable(c *Compiler, canAssign bool) error {
	return c.namedVariable(c.previous, canAssign)
}

func and_(c *Compiler, canAssign bool) error {
	endJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emit(chunk.OpPop)
	if err := c.parsePrecedence(PrecAnd); err != nil {
		return err
	}
	return c.patchJump(endJump)
}

func or_(c *Compiler, canAssign bool) error {
	elseJump := c.emitJump(chunk.OpJumpIfFalse)
	endJump := c.emitJump(chunk.OpJump)
	if err := c.patchJump(elseJump); err != nil {
		return err
	}
	c.emit(chunk.OpPop)
	if err := c.parsePrecedence(PrecOr); err != nil {
		return err
	}
	return c.patchJump(endJump)
}
