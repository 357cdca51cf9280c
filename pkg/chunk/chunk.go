// Package chunk defines the opcode vocabulary of the bytecode container
// (value.Chunk) the golox compiler writes into and the VM reads from.
//
// A Chunk is a flat byte sequence (the instruction stream) paired with a
// parallel per-byte line-number array (for runtime-error reporting) and a
// constant pool (for literal values referenced by index).
//
// Architecture:
//
// golox follows a stack-based bytecode architecture where:
//   1. Values are pushed onto and popped from the VM's value stack
//   2. Opcodes consume operands from the stack and push results back
//   3. Locals live in the stack itself; globals live in a separate table
//   4. Constants (numbers, strings, functions) are addressed by one-byte
//      index into the chunk's constant pool
//
// Example compilation:
//
//   Source:  var x = 10; print x + 5;
//
//   Bytecode:
//     CONSTANT 1        ; push constant[1] (10.0)
//     DEFINE_GLOBAL 0   ; globals["x"] = pop()
//     GET_GLOBAL 2      ; push globals["x"]
//     CONSTANT 3        ; push constant[3] (5.0)
//     ADD               ; pop b, a; push a+b
//     PRINT             ; pop and print
//     NIL
//     RETURN
//
//   Constants: ["x", 10.0, "x", 5.0]   (in order of use; every mention
//   of a global name adds its own entry for the same interned string)
//
// Instruction format: one opcode byte, followed by however many operand
// bytes that opcode defines (0, 1, or 2 — see the OpXxx doc comments
// below — except OpClosure, whose 1-byte constant index is followed by
// a variable number of upvalue operand pairs). This keeps the instruction stream itself untyped and compact;
// the VM's decode loop knows each opcode's operand width.
//
// The Chunk struct itself lives in package value, not here: a function
// value owns a chunk directly (the clox original embeds Chunk chunk
// inside ObjFunction), and value.Value is the chunk's constant-pool
// element type, so the dependency has to run value -> chunk and this
// package can't also import value without a cycle. This package holds
// only the opcode vocabulary, which both value and the VM need and
// which needs nothing from either.
package chunk

// OpCode is a single bytecode instruction's operation.
type OpCode byte

// Bytecode instruction opcodes, one byte each.
const (
	// OpConstant loads a constant from the constant pool onto the stack.
	// Operand: 1-byte index into the constant pool.
	OpConstant OpCode = iota

	// OpNil, OpTrue, OpFalse push their literal directly, with no
	// constant-pool lookup — more compact than OpConstant for these three
	// maximally common values.
	OpNil
	OpTrue
	OpFalse

	// OpPop discards the top of the value stack.
	OpPop

	// OpGetLocal / OpSetLocal address a slot in the current frame's
	// window of the value stack. Operand: 1-byte slot index.
	// SET leaves the assigned value on the stack (assignment is itself
	// an expression in the source language).
	OpGetLocal
	OpSetLocal

	// OpGetGlobal / OpSetGlobal / OpDefineGlobal address the VM's globals
	// table by name. Operand: 1-byte constant-pool index of the name
	// (interned) string.
	OpGetGlobal
	OpDefineGlobal
	OpSetGlobal

	// OpGetUpvalue / OpSetUpvalue read or write through the current
	// closure's upvalue array. Operand: 1-byte upvalue index.
	OpGetUpvalue
	OpSetUpvalue

	// OpEqual, OpGreater, OpLess pop two values and push a boolean.
	OpEqual
	OpGreater
	OpLess

	// OpAdd, OpSubtract, OpMultiply, OpDivide pop two numbers (OpAdd also
	// accepts two strings, producing an interned concatenation) and push
	// the result.
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide

	// OpNot pops a value and pushes its logical negation; only booleans
	// are valid operands, nil included among the rejected ones (stricter
	// than common truthy "!").
	OpNot

	// OpNegate pops a number and pushes its arithmetic negation.
	OpNegate

	// OpPrint pops a value and writes its display form followed by a
	// newline to the VM's output sink.
	OpPrint

	// OpJump unconditionally advances ip by a 16-bit offset.
	// Operand: 2-byte big-endian offset.
	OpJump

	// OpJumpIfFalse advances ip by a 16-bit offset if the top of the
	// stack (left in place) is falsy. Operand: 2-byte big-endian offset.
	OpJumpIfFalse

	// OpLoop is OpJump with the offset subtracted instead of added —
	// the only backward control-flow instruction.
	// Operand: 2-byte big-endian offset.
	OpLoop

	// OpCall invokes the callee at stack depth argCount below the top.
	// Operand: 1-byte argument count.
	OpCall

	// OpClosure builds a closure over the function at the given constant
	// index. Operand: 1-byte constant index, followed by
	// function.UpvalueCount pairs of (isLocal byte, index byte) that tell
	// the VM how to populate the closure's upvalue array.
	OpClosure

	// OpCloseUpvalue closes the open upvalue (if any) pointing at the
	// current stack top, then pops it.
	OpCloseUpvalue

	// OpReturn pops the return value, closes upvalues owned by the
	// returning frame, and pops the frame.
	OpReturn
)

var opcodeNames = [...]string{
	OpConstant:     "OP_CONSTANT",
	OpNil:          "OP_NIL",
	OpTrue:         "OP_TRUE",
	OpFalse:        "OP_FALSE",
	OpPop:          "OP_POP",
	OpGetLocal:     "OP_GET_LOCAL",
	OpSetLocal:     "OP_SET_LOCAL",
	OpGetGlobal:    "OP_GET_GLOBAL",
	OpDefineGlobal: "OP_DEFINE_GLOBAL",
	OpSetGlobal:    "OP_SET_GLOBAL",
	OpGetUpvalue:   "OP_GET_UPVALUE",
	OpSetUpvalue:   "OP_SET_UPVALUE",
	OpEqual:        "OP_EQUAL",
	OpGreater:      "OP_GREATER",
	OpLess:         "OP_LESS",
	OpAdd:          "OP_ADD",
	OpSubtract:     "OP_SUBTRACT",
	OpMultiply:     "OP_MULTIPLY",
	OpDivide:       "OP_DIVIDE",
	OpNot:          "OP_NOT",
	OpNegate:       "OP_NEGATE",
	OpPrint:        "OP_PRINT",
	OpJump:         "OP_JUMP",
	OpJumpIfFalse:  "OP_JUMP_IF_FALSE",
	OpLoop:         "OP_LOOP",
	OpCall:         "OP_CALL",
	OpClosure:      "OP_CLOSURE",
	OpCloseUpvalue: "OP_CLOSE_UPVALUE",
	OpReturn:       "OP_RETURN",
}

// String renders an OpCode's mnemonic, for disassembly and debugging.
func (op OpCode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return "OP_UNKNOWN"
}

// MaxConstants is the largest number of constants a single chunk may hold;
// constants are addressed by a one-byte index.
const MaxConstants = 256
