package compiler_test

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golox/pkg/chunk"
	"golox/pkg/compiler"
	"golox/pkg/intern"
)

func compile(t *testing.T, source string) (ok bool, errs string) {
	t.Helper()
	var errOut bytes.Buffer
	fn, ok := compiler.Compile(source, intern.New(), &errOut, nil)
	require.NotNil(t, fn, "Compile must always return a script function, even after an error")
	return ok, errOut.String()
}

func TestCompileSimpleExpressionStatement(t *testing.T) {
	ok, errs := compile(t, `print 1 + 2 * 3;`)
	assert.True(t, ok)
	assert.Empty(t, errs)
}

func TestCompileReportsErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"missing expression", `var a = ;`, "Expect expression."},
		{"bad assignment target", `1 = 2;`, "Invalid assignment target."},
		{"read local in own initializer", `{ var a = a; }`, "Can't read local variable in its own initializer."},
		{"redeclared local in same scope", `{ var a = 1; var a = 2; }`, "Already a variable with this name in this scope."},
		{"return at top level", `return 1;`, "Can't return from top-level code."},
		{"missing semicolon", `var a = 1`, "Expect ';' after variable declaration."},
		{"unclosed block", `{ var a = 1;`, "Expect '}' after block."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, errs := compile(t, tt.source)
			assert.False(t, ok)
			assert.Contains(t, errs, tt.want)
		})
	}
}

func TestCompileTooManyParameters(t *testing.T) {
	params := make([]string, 300)
	for i := range params {
		params[i] = "p" + strconv.Itoa(i)
	}
	source := "fun f(" + strings.Join(params, ", ") + ") {}"
	ok, errs := compile(t, source)
	assert.False(t, ok)
	assert.Contains(t, errs, "Can't have more than 255 parameters.")
}

func TestCompileTooManyArguments(t *testing.T) {
	args := make([]string, 300)
	for i := range args {
		args[i] = "1"
	}
	source := `fun f() {} f(` + strings.Join(args, ", ") + `);`
	ok, errs := compile(t, source)
	assert.False(t, ok)
	assert.Contains(t, errs, "Can't have more than 255 arguments.")
}

// A single malformed statement shouldn't stop the compiler from reporting
// errors in statements that follow it (synchronize's job).
func TestCompileRecoversAfterError(t *testing.T) {
	ok, errs := compile(t, `1 = 2; 3 = 4;`)
	assert.False(t, ok)
	assert.Equal(t, 2, strings.Count(errs, "Invalid assignment target."))
}

// A function declaration (here 'make', whose nested 'inc' captures a
// local) should compile through scope.go's function() into an OP_CLOSURE
// in the enclosing script chunk.
func TestCompileEmitsClosureOpcodeForNestedFunction(t *testing.T) {
	source := `
		fun make() {
			var c = 0;
			fun inc() {
				c = c + 1;
				return c;
			}
			return inc;
		}
	`
	var errOut bytes.Buffer
	fn, ok := compiler.Compile(source, intern.New(), &errOut, nil)
	require.True(t, ok, errOut.String())

	found := false
	for _, b := range fn.Chunk.Code {
		if chunk.OpCode(b) == chunk.OpClosure {
			found = true
			break
		}
	}
	assert.True(t, found, "expected OP_CLOSURE to be emitted for the top-level 'make' function")
}

func TestCompileForLoopDesugarsToJumpsAndLoop(t *testing.T) {
	source := `for (var i = 0; i < 3; i = i + 1) { print i; }`
	var errOut bytes.Buffer
	fn, ok := compiler.Compile(source, intern.New(), &errOut, nil)
	require.True(t, ok, errOut.String())

	var sawLoop, sawJumpIfFalse bool
	for _, b := range fn.Chunk.Code {
		switch chunk.OpCode(b) {
		case chunk.OpLoop:
			sawLoop = true
		case chunk.OpJumpIfFalse:
			sawJumpIfFalse = true
		}
	}
	assert.True(t, sawLoop, "expected OP_LOOP in a desugared for loop")
	assert.True(t, sawJumpIfFalse, "expected OP_JUMP_IF_FALSE for the loop condition")
}

func TestCompileStringInterningSharesBackingStorage(t *testing.T) {
	interner := intern.New()
	var errOut bytes.Buffer
	fn, ok := compiler.Compile(`"same" + "same";`, interner, &errOut, nil)
	require.True(t, ok, errOut.String())
	require.Len(t, fn.Chunk.Constants, 2)

	a := fn.Chunk.Constants[0].AsObject()
	b := fn.Chunk.Constants[1].AsObject()
	assert.Same(t, a, b, "two identical string literals must intern to the same *ObjString")
}
