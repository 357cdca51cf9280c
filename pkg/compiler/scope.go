package compiler

import (
	"golox/pkg/chunk"
	"golox/pkg/scanner"
	"golox/pkg/value"
)

// maxLocals bounds both the locals array and the upvalues array of a
// single function: both are addressed by a one-byte operand.
const maxLocals = 256

type funcType int

const (
	typeFunction funcType = iota
	typeScript
)

// localVar is one entry in a unit's locals array. depth -1 marks "the
// name has been declared but its initializer hasn't run yet" — reading
// a local in that state is the self-reference-in-initializer error.
type localVar struct {
	name       string
	depth      int
	isCaptured bool
}

// upvalueRef is one entry in a unit's compile-time upvalue array: either
// a slot in the immediately enclosing unit's locals (isLocal) or an
// index into the enclosing unit's own upvalue array (transitive
// capture through more than one level of nesting).
type upvalueRef struct {
	index   byte
	isLocal bool
}

// unit is one compilation context: one per function (or the implicit
// top-level script) currently being compiled. Nesting is an explicit
// enclosing-linked stack rather than recursion through shared state, so
// resolveUpvalue can walk outward by following pointers instead of
// needing a hidden global compiler.
type unit struct {
	enclosing *unit
	function  *value.ObjFunction
	kind      funcType

	locals     [maxLocals]localVar
	localCount int

	upvalues [maxLocals]upvalueRef

	scopeDepth int
}

// beginUnit pushes a new compilation unit for a function named name
// (ignored for the script unit) and makes it current. Slot 0 of every
// unit's locals is reserved for the callee itself, matching the VM's
// convention that frame.slots[0] holds the closure being called.
func (c *Compiler) beginUnit(kind funcType, name string) {
	u := &unit{enclosing: c.cur, kind: kind}
	u.function = value.NewObjFunction()
	if c.track != nil {
		c.track(u.function)
	}
	if kind != typeScript {
		u.function.Name = c.interner.Intern(name)
	}
	u.locals[0] = localVar{name: "", depth: 0, isCaptured: false}
	u.localCount = 1
	c.cur = u
}

// endUnit closes the current unit, emitting its implicit "return nil"
// tail, and restores the enclosing unit as current.
func (c *Compiler) endUnit() *value.ObjFunction {
	c.emitReturn()
	fn := c.cur.function
	c.cur = c.cur.enclosing
	return fn
}

func (c *Compiler) beginScope() { c.cur.scopeDepth++ }

// endScope pops every local declared at a depth deeper than the scope
// being closed. A captured local is closed (OP_CLOSE_UPVALUE) rather
// than simply popped, so any closure holding its upvalue keeps seeing
// the value after the stack slot is gone — closing must happen before
// the slot is released, which is exactly what happens here since both
// opcodes run immediately, in reverse declaration order, before the slot count
// is decremented.
func (c *Compiler) endScope() {
	c.cur.scopeDepth--
	for c.cur.localCount > 0 && c.cur.locals[c.cur.localCount-1].depth > c.cur.scopeDepth {
		if c.cur.locals[c.cur.localCount-1].isCaptured {
			c.emitOp(chunk.OpCloseUpvalue)
		} else {
			c.emitOp(chunk.OpPop)
		}
		c.cur.localCount--
	}
}

// declareVariable records a new local in the current unit's scope,
// rejecting a name already declared at this exact depth. Global-scope
// declarations are handled entirely by the caller (parseVariable) via
// the constant pool, so this is a no-op at depth 0.
func (c *Compiler) declareVariable(name scanner.Token) {
	if c.cur.scopeDepth == 0 {
		return
	}
	for i := c.cur.localCount - 1; i >= 0; i-- {
		local := &c.cur.locals[i]
		if local.depth != -1 && local.depth < c.cur.scopeDepth {
			break
		}
		if local.name == name.Lexeme {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

func (c *Compiler) addLocal(name scanner.Token) {
	if c.cur.localCount == maxLocals {
		c.error("Too many local variables in function.")
		return
	}
	c.cur.locals[c.cur.localCount] = localVar{name: name.Lexeme, depth: -1}
	c.cur.localCount++
}

// parseVariable consumes the identifier naming a variable declaration
// and returns its constant-pool index if it's a global (0 — and
// meaningless — for a local, whose "index" is its stack slot instead).
func (c *Compiler) parseVariable(errMessage string) byte {
	c.consume(scanner.TokenIdentifier, errMessage)
	c.declareVariable(c.previous)
	if c.cur.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.previous)
}

// markInitialized makes the most recently declared local visible to
// name resolution — before this, reading it is the "declared but not
// yet initialized" compile error.
func (c *Compiler) markInitialized() {
	if c.cur.scopeDepth == 0 {
		return
	}
	c.cur.locals[c.cur.localCount-1].depth = c.cur.scopeDepth
}

func (c *Compiler) defineVariable(global byte) {
	if c.cur.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitBytes(chunk.OpDefineGlobal, global)
}

// resolveLocal finds name among u's locals, searching from the most
// recently declared backward so shadowing within one function resolves
// to the innermost declaration.
func (c *Compiler) resolveLocal(u *unit, name scanner.Token) int {
	for i := u.localCount - 1; i >= 0; i-- {
		local := &u.locals[i]
		if local.name == name.Lexeme {
			if local.depth == -1 {
				c.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

// resolveUpvalue looks for name in enclosing units, marking the
// captured local (or, for transitive capture, the intermediate upvalue)
// along every unit between the declaration and the unit doing the
// capturing. Returns -1 if name isn't found at any enclosing level,
// meaning namedVariable should fall back to treating it as a global.
func (c *Compiler) resolveUpvalue(u *unit, name scanner.Token) int {
	if u.enclosing == nil {
		return -1
	}

	if local := c.resolveLocal(u.enclosing, name); local != -1 {
		u.enclosing.locals[local].isCaptured = true
		return c.addUpvalue(u, byte(local), true)
	}

	if up := c.resolveUpvalue(u.enclosing, name); up != -1 {
		return c.addUpvalue(u, byte(up), false)
	}

	return -1
}

// addUpvalue records a new compile-time upvalue on u, deduplicating by
// (index, isLocal) so capturing the same variable twice in one function
// reuses a single runtime upvalue slot.
func (c *Compiler) addUpvalue(u *unit, index byte, isLocal bool) int {
	count := u.function.UpvalueCount
	for i := 0; i < count; i++ {
		existing := &u.upvalues[i]
		if existing.index == index && existing.isLocal == isLocal {
			return i
		}
	}
	if count == maxLocals {
		c.error("Too many closure variables in function.")
		return 0
	}
	u.upvalues[count] = upvalueRef{index: index, isLocal: isLocal}
	u.function.UpvalueCount++
	return count
}

// --- declarations and statements -----------------------------------------

func (c *Compiler) declaration() {
	switch {
	case c.match(scanner.TokenFun):
		c.funDeclaration()
	case c.match(scanner.TokenVar):
		c.varDeclaration()
	default:
		c.statement()
	}

	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) funDeclaration() {
	global := c.parseVariable("Expect function name.")
	c.markInitialized()
	c.function(typeFunction)
	c.defineVariable(global)
}

// function compiles one function's parameter list and body in a fresh
// unit, then emits OP_CLOSURE (plus its upvalue operand pairs) back in
// the enclosing unit so the VM builds a closure for it at runtime.
func (c *Compiler) function(kind funcType) {
	c.beginUnit(kind, c.previous.Lexeme)
	c.beginScope()

	c.consume(scanner.TokenLeftParen, "Expect '(' after function name.")
	if !c.check(scanner.TokenRightParen) {
		for {
			c.cur.function.Arity++
			if c.cur.function.Arity > 255 {
				c.errorAtCurrent("Can't have more than 255 parameters.")
			}
			paramConstant := c.parseVariable("Expect parameter name.")
			c.defineVariable(paramConstant)
			if !c.match(scanner.TokenComma) {
				break
			}
		}
	}
	c.consume(scanner.TokenRightParen, "Expect ')' after parameters.")
	c.consume(scanner.TokenLeftBrace, "Expect '{' before function body.")
	c.block()

	finishedUnit := c.cur
	fn := c.endUnit()

	idx := c.makeConstant(value.Obj(fn))
	c.emitBytes(chunk.OpClosure, idx)
	for i := 0; i < fn.UpvalueCount; i++ {
		if finishedUnit.upvalues[i].isLocal {
			c.emitByte(1)
		} else {
			c.emitByte(0)
		}
		c.emitByte(finishedUnit.upvalues[i].index)
	}
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")
	if c.match(scanner.TokenEqual) {
		c.expression()
	} else {
		c.emitOp(chunk.OpNil)
	}
	c.consume(scanner.TokenSemicolon, "Expect ';' after variable declaration.")
	c.defineVariable(global)
}

func (c *Compiler) statement() {
	switch {
	case c.match(scanner.TokenPrint):
		c.printStatement()
	case c.match(scanner.TokenFor):
		c.forStatement()
	case c.match(scanner.TokenIf):
		c.ifStatement()
	case c.match(scanner.TokenReturn):
		c.returnStatement()
	case c.match(scanner.TokenWhile):
		c.whileStatement()
	case c.match(scanner.TokenLeftBrace):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) block() {
	for !c.check(scanner.TokenRightBrace) && !c.check(scanner.TokenEOF) {
		c.declaration()
	}
	c.consume(scanner.TokenRightBrace, "Expect '}' after block.")
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(scanner.TokenSemicolon, "Expect ';' after value.")
	c.emitOp(chunk.OpPrint)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(scanner.TokenSemicolon, "Expect ';' after expression.")
	c.emitOp(chunk.OpPop)
}

func (c *Compiler) returnStatement() {
	if c.cur.kind == typeScript {
		c.error("Can't return from top-level code.")
	}
	if c.match(scanner.TokenSemicolon) {
		c.emitReturn()
		return
	}
	c.expression()
	c.consume(scanner.TokenSemicolon, "Expect ';' after return value.")
	c.emitOp(chunk.OpReturn)
}

func (c *Compiler) ifStatement() {
	c.consume(scanner.TokenLeftParen, "Expect '(' after 'if'.")
	c.expression()
	c.consume(scanner.TokenRightParen, "Expect ')' after condition.")

	thenJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emitOp(chunk.OpPop)
	c.statement()

	elseJump := c.emitJump(chunk.OpJump)
	c.patchJump(thenJump)
	c.emitOp(chunk.OpPop)

	if c.match(scanner.TokenElse) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := len(c.currentChunk().Code)
	c.consume(scanner.TokenLeftParen, "Expect '(' after 'while'.")
	c.expression()
	c.consume(scanner.TokenRightParen, "Expect ')' after condition.")

	exitJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emitOp(chunk.OpPop)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(chunk.OpPop)
}

// forStatement desugars the three-clause for loop into the same
// if-less-than-and-loop shape whileStatement produces, splicing the
// increment clause in between the body and the backward jump to the
// condition — see spec.md §4.5 for why loopStart gets reassigned to
// incrementStart partway through.
func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(scanner.TokenLeftParen, "Expect '(' after 'for'.")

	switch {
	case c.match(scanner.TokenSemicolon):
		// no initializer
	case c.match(scanner.TokenVar):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := len(c.currentChunk().Code)
	exitJump := -1
	if !c.match(scanner.TokenSemicolon) {
		c.expression()
		c.consume(scanner.TokenSemicolon, "Expect ';' after loop condition.")
		exitJump = c.emitJump(chunk.OpJumpIfFalse)
		c.emitOp(chunk.OpPop)
	}

	if !c.match(scanner.TokenRightParen) {
		bodyJump := c.emitJump(chunk.OpJump)
		incrementStart := len(c.currentChunk().Code)
		c.expression()
		c.emitOp(chunk.OpPop)
		c.consume(scanner.TokenRightParen, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(chunk.OpPop)
	}
	c.endScope()
}
