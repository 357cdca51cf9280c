// Package compiler implements golox's single-pass compiler: a Pratt
// expression parser wired directly into recursive-descent statement and
// declaration parsing, emitting bytecode as it goes. No AST is ever
// built — each grammar rule writes straight into the chunk of the
// function currently being compiled.
//
// Architecture:
//
// Compile drives one Compiler over one Scanner, one token of lookahead at
// a time (current, previous). Nested function declarations push a new
// compilation unit onto an explicit enclosing-linked stack (see unit in
// scope.go) rather than recursing through a global; resolving a bare
// name walks that stack outward — current locals, then each enclosing
// unit's locals as upvalues, then finally the globals table.
//
// Parsing errors don't stop compilation: a had_error latch records that
// the run is unusable while panic_mode suppresses cascading diagnostics
// until the next statement boundary (see synchronize), so a single
// source file can report several independent mistakes in one pass.
package compiler

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"golox/pkg/chunk"
	"golox/pkg/intern"
	"golox/pkg/scanner"
	"golox/pkg/value"
)

// precedence orders golox's binary operators from loosest to tightest
// binding, lowest to highest as in spec.
type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . ()
	precPrimary
)

// parseFn is either a prefix or an infix handler for some token kind.
// canAssign tells the handler whether it's parsing at a precedence loose
// enough that a trailing '=' would be a legal assignment target.
type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

var rules map[scanner.TokenType]parseRule

func init() {
	rules = map[scanner.TokenType]parseRule{
		scanner.TokenLeftParen:    {grouping, call, precCall},
		scanner.TokenMinus:        {unary, binary, precTerm},
		scanner.TokenPlus:         {nil, binary, precTerm},
		scanner.TokenSlash:        {nil, binary, precFactor},
		scanner.TokenStar:         {nil, binary, precFactor},
		scanner.TokenBang:         {unary, nil, precNone},
		scanner.TokenBangEqual:    {nil, binary, precEquality},
		scanner.TokenEqualEqual:   {nil, binary, precEquality},
		scanner.TokenGreater:      {nil, binary, precComparison},
		scanner.TokenGreaterEqual: {nil, binary, precComparison},
		scanner.TokenLess:         {nil, binary, precComparison},
		scanner.TokenLessEqual:    {nil, binary, precComparison},
		scanner.TokenIdentifier:   {variable, nil, precNone},
		scanner.TokenString:       {stringLiteral, nil, precNone},
		scanner.TokenNumber:       {number, nil, precNone},
		scanner.TokenAnd:          {nil, and_, precAnd},
		scanner.TokenOr:           {nil, or_, precOr},
		scanner.TokenFalse:        {literal, nil, precNone},
		scanner.TokenNil:          {literal, nil, precNone},
		scanner.TokenTrue:         {literal, nil, precNone},
	}
}

func ruleFor(t scanner.TokenType) parseRule {
	return rules[t] // missing entries are the zero value: no prefix, no infix, precNone
}

// Compiler holds the parser's lookahead and diagnostic state for one
// call to Compile. The chain of active function units lives in cur.
type Compiler struct {
	scan     *scanner.Scanner
	interner *intern.Interner
	errOut   io.Writer
	track    func(value.Object)

	previous scanner.Token
	current  scanner.Token

	hadError  bool
	panicMode bool

	cur *unit
}

// Compile compiles source into a top-level script function ("<script>"),
// interning identifier and string-literal lexemes through interner as it
// goes. track, if non-nil, is called with every *value.ObjFunction
// allocated for a function unit (including the top-level script unit
// itself) as soon as it's created — (*vm.VM).Interpret passes its own
// track method so every function golox allocates ends up linked onto
// vm.objects, not just the ones returned to the VM's call stack. The
// second return value is false if any compile error was reported;
// callers must not run the returned function in that case.
func Compile(source string, interner *intern.Interner, errOut io.Writer, track func(value.Object)) (*value.ObjFunction, bool) {
	c := &Compiler{
		scan:     scanner.New(source),
		interner: interner,
		errOut:   errOut,
		track:    track,
	}
	c.beginUnit(typeScript, "")

	c.advance()
	for !c.match(scanner.TokenEOF) {
		c.declaration()
	}

	fn := c.endUnit()
	return fn, !c.hadError
}

// --- token stream -----------------------------------------------------

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.scan.NextToken()
		if c.current.Type != scanner.TokenError {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) check(t scanner.TokenType) bool {
	return c.current.Type == t
}

func (c *Compiler) match(t scanner.TokenType) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(t scanner.TokenType, message string) {
	if c.current.Type == t {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

// --- diagnostics --------------------------------------------------------

func (c *Compiler) errorAtCurrent(message string) { c.errorAt(c.current, message) }
func (c *Compiler) error(message string)          { c.errorAt(c.previous, message) }

func (c *Compiler) errorAt(tok scanner.Token, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	fmt.Fprintf(c.errOut, "[line %d] Error", tok.Line)
	switch tok.Type {
	case scanner.TokenEOF:
		fmt.Fprint(c.errOut, " at end")
	case scanner.TokenError:
		// the lexeme is already the message; no "at" clause
	default:
		fmt.Fprintf(c.errOut, " at '%s'", tok.Lexeme)
	}
	fmt.Fprintf(c.errOut, ": %s\n", message)
	c.hadError = true
}

// synchronize discards tokens until a likely statement boundary, so one
// malformed statement doesn't cascade into spurious follow-on errors.
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Type != scanner.TokenEOF {
		if c.previous.Type == scanner.TokenSemicolon {
			return
		}
		switch c.current.Type {
		case scanner.TokenClass, scanner.TokenFun, scanner.TokenVar, scanner.TokenFor,
			scanner.TokenIf, scanner.TokenWhile, scanner.TokenPrint, scanner.TokenReturn:
			return
		}
		c.advance()
	}
}

// --- bytecode emission --------------------------------------------------

func (c *Compiler) currentChunk() *value.Chunk { return &c.cur.function.Chunk }

func (c *Compiler) emitByte(b byte) {
	c.currentChunk().Write(b, c.previous.Line)
}

func (c *Compiler) emitOp(op chunk.OpCode) {
	c.currentChunk().WriteOp(op, c.previous.Line)
}

func (c *Compiler) emitBytes(op chunk.OpCode, b byte) {
	c.emitOp(op)
	c.emitByte(b)
}

func (c *Compiler) emitReturn() {
	c.emitOp(chunk.OpNil)
	c.emitOp(chunk.OpReturn)
}

// makeConstant appends v to the current chunk's constant pool, reporting
// a compile error instead of returning an index that wouldn't fit in the
// single operand byte OP_CONSTANT and friends use.
func (c *Compiler) makeConstant(v value.Value) byte {
	idx := c.currentChunk().AddConstant(v)
	if idx > math.MaxUint8 {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return byte(idx)
}

func (c *Compiler) emitConstant(v value.Value) {
	c.emitBytes(chunk.OpConstant, c.makeConstant(v))
}

// emitJump writes a jump opcode with a placeholder 16-bit offset and
// returns the offset of that placeholder for patchJump to fill in once
// the jump target is known.
func (c *Compiler) emitJump(op chunk.OpCode) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.currentChunk().Code) - 2
}

func (c *Compiler) patchJump(offset int) {
	jump := len(c.currentChunk().Code) - offset - 2
	if jump > math.MaxUint16 {
		c.error("Too much code to jump over.")
	}
	code := c.currentChunk().Code
	code[offset] = byte((jump >> 8) & 0xff)
	code[offset+1] = byte(jump & 0xff)
}

func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(chunk.OpLoop)
	offset := len(c.currentChunk().Code) - loopStart + 2
	if offset > math.MaxUint16 {
		c.error("Loop body too large.")
	}
	c.emitByte(byte((offset >> 8) & 0xff))
	c.emitByte(byte(offset & 0xff))
}

// --- expressions ----------------------------------------------------------

func (c *Compiler) expression() {
	c.parsePrecedence(precAssignment)
}

// parsePrecedence is the Pratt core: consume one prefix handler, then
// keep consuming infix handlers as long as the lookahead token binds at
// least as tightly as minPrec.
func (c *Compiler) parsePrecedence(minPrec precedence) {
	c.advance()
	prefix := ruleFor(c.previous.Type).prefix
	if prefix == nil {
		c.error("Expect expression.")
		return
	}

	canAssign := minPrec <= precAssignment
	prefix(c, canAssign)

	for minPrec <= ruleFor(c.current.Type).precedence {
		c.advance()
		infix := ruleFor(c.previous.Type).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(scanner.TokenEqual) {
		c.error("Invalid assignment target.")
	}
}

func grouping(c *Compiler, _ bool) {
	c.expression()
	c.consume(scanner.TokenRightParen, "Expect ')' after expression.")
}

func unary(c *Compiler, _ bool) {
	opType := c.previous.Type
	c.parsePrecedence(precUnary)
	switch opType {
	case scanner.TokenMinus:
		c.emitOp(chunk.OpNegate)
	case scanner.TokenBang:
		c.emitOp(chunk.OpNot)
	}
}

func binary(c *Compiler, _ bool) {
	opType := c.previous.Type
	rule := ruleFor(opType)
	c.parsePrecedence(rule.precedence + 1)

	switch opType {
	case scanner.TokenBangEqual:
		c.emitOp(chunk.OpEqual)
		c.emitOp(chunk.OpNot)
	case scanner.TokenEqualEqual:
		c.emitOp(chunk.OpEqual)
	case scanner.TokenGreater:
		c.emitOp(chunk.OpGreater)
	case scanner.TokenGreaterEqual:
		c.emitOp(chunk.OpLess)
		c.emitOp(chunk.OpNot)
	case scanner.TokenLess:
		c.emitOp(chunk.OpLess)
	case scanner.TokenLessEqual:
		c.emitOp(chunk.OpGreater)
		c.emitOp(chunk.OpNot)
	case scanner.TokenPlus:
		c.emitOp(chunk.OpAdd)
	case scanner.TokenMinus:
		c.emitOp(chunk.OpSubtract)
	case scanner.TokenStar:
		c.emitOp(chunk.OpMultiply)
	case scanner.TokenSlash:
		c.emitOp(chunk.OpDivide)
	}
}

func call(c *Compiler, _ bool) {
	argCount := c.argumentList()
	c.emitBytes(chunk.OpCall, argCount)
}

// argumentList parses a parenthesized, comma-separated expression list
// ending at ')'. The opening '(' has already been consumed by the call
// site (it's the LEFT_PAREN infix handler).
func (c *Compiler) argumentList() byte {
	var count int
	if !c.check(scanner.TokenRightParen) {
		for {
			c.expression()
			if count == 255 {
				c.error("Can't have more than 255 arguments.")
			}
			count++
			if !c.match(scanner.TokenComma) {
				break
			}
		}
	}
	c.consume(scanner.TokenRightParen, "Expect ')' after arguments.")
	return byte(count)
}

func literal(c *Compiler, _ bool) {
	switch c.previous.Type {
	case scanner.TokenFalse:
		c.emitOp(chunk.OpFalse)
	case scanner.TokenNil:
		c.emitOp(chunk.OpNil)
	case scanner.TokenTrue:
		c.emitOp(chunk.OpTrue)
	}
}

func number(c *Compiler, _ bool) {
	n, err := strconv.ParseFloat(c.previous.Lexeme, 64)
	if err != nil {
		c.error("Invalid number literal.")
		return
	}
	c.emitConstant(value.Number(n))
}

// stringLiteral strips the surrounding quotes and interns the contents;
// golox string literals have no escape sequences (spec.md §6).
func stringLiteral(c *Compiler, _ bool) {
	lexeme := c.previous.Lexeme
	s := c.interner.Intern(lexeme[1 : len(lexeme)-1])
	c.emitConstant(value.Obj(s))
}

func variable(c *Compiler, canAssign bool) {
	c.namedVariable(c.previous, canAssign)
}

// namedVariable resolves name through locals, then enclosing-unit
// upvalues, then finally the globals table, and emits the matching
// get/set opcode depending on whether an assignment follows.
func (c *Compiler) namedVariable(name scanner.Token, canAssign bool) {
	var getOp, setOp chunk.OpCode
	arg := c.resolveLocal(c.cur, name)
	if arg != -1 {
		getOp, setOp = chunk.OpGetLocal, chunk.OpSetLocal
	} else if arg = c.resolveUpvalue(c.cur, name); arg != -1 {
		getOp, setOp = chunk.OpGetUpvalue, chunk.OpSetUpvalue
	} else {
		arg = int(c.identifierConstant(name))
		getOp, setOp = chunk.OpGetGlobal, chunk.OpSetGlobal
	}

	if canAssign && c.match(scanner.TokenEqual) {
		c.expression()
		c.emitBytes(setOp, byte(arg))
	} else {
		c.emitBytes(getOp, byte(arg))
	}
}

func and_(c *Compiler, _ bool) {
	endJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emitOp(chunk.OpPop)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

func or_(c *Compiler, _ bool) {
	elseJump := c.emitJump(chunk.OpJumpIfFalse)
	endJump := c.emitJump(chunk.OpJump)
	c.patchJump(elseJump)
	c.emitOp(chunk.OpPop)
	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

// identifierConstant interns name's lexeme and records it as a constant,
// for the GET/SET/DEFINE_GLOBAL opcodes, which address globals by name.
func (c *Compiler) identifierConstant(name scanner.Token) byte {
	s := c.interner.Intern(name.Lexeme)
	return c.makeConstant(value.Obj(s))
}
