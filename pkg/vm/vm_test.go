package vm_test

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golox/pkg/vm"
)

// run interprets source on a fresh VM and returns everything printed to
// the out sink and the err sink, plus the Interpret outcome.
func run(source string) (out, errs string, result vm.InterpretResult) {
	var outBuf, errBuf bytes.Buffer
	machine := vm.New(&outBuf, &errBuf)
	result = machine.Interpret(source)
	return outBuf.String(), errBuf.String(), result
}

// These mirror spec.md §8's end-to-end scenarios verbatim.
func TestEndToEndScenarios(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			"arithmetic precedence",
			`print 1 + 2 * 3;`,
			"7\n",
		},
		{
			"string concatenation",
			`var a = "foo"; var b = "bar"; print a + b;`,
			"foobar\n",
		},
		{
			"for loop accumulation",
			`var x = 0; for (var i = 0; i < 3; i = i + 1) { x = x + i; } print x;`,
			"3\n",
		},
		{
			"closure captures and persists state across calls",
			`fun make() { var c = 0; fun inc() { c = c + 1; return c; } return inc; } var f = make(); print f(); print f(); print f();`,
			"1\n2\n3\n",
		},
		{
			"boolean negation and comparison",
			`if (!(1 == 2)) print "ok"; else print "no";`,
			"ok\n",
		},
		{
			"uninitialized var defaults to nil",
			`var a; print a;`,
			"nil\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errs, result := run(tt.source)
			require.Equal(t, vm.InterpretOK, result, "stderr: %s", errs)
			assert.Empty(t, errs)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestErrorPathScenarios(t *testing.T) {
	t.Run("adding number and string is a runtime error", func(t *testing.T) {
		_, errs, result := run(`print 1 + "a";`)
		assert.Equal(t, vm.InterpretRuntimeError, result)
		assert.Contains(t, errs, "Operands must be two numbers or two strings")
	})

	t.Run("reading an undefined global is a runtime error", func(t *testing.T) {
		_, errs, result := run(`print foo;`)
		assert.Equal(t, vm.InterpretRuntimeError, result)
		assert.Contains(t, errs, "Undefined variable 'foo'")
	})

	t.Run("assigning to a non-variable target is a compile error", func(t *testing.T) {
		_, errs, result := run(`1 = 2;`)
		assert.Equal(t, vm.InterpretCompileError, result)
		assert.Contains(t, errs, "Invalid assignment target")
	})

	t.Run("too many parameters is a compile error", func(t *testing.T) {
		source := "fun f("
		for i := 0; i < 300; i++ {
			if i > 0 {
				source += ", "
			}
			source += "p" + strconv.Itoa(i)
		}
		source += ") {}"
		_, errs, result := run(source)
		assert.Equal(t, vm.InterpretCompileError, result)
		assert.Contains(t, errs, "Can't have more than 255 parameters")
	})
}

func TestUndefinedVariableAssignmentLeavesGlobalUnset(t *testing.T) {
	// OP_SET_GLOBAL to a name never declared with `var` must fail without
	// creating the global as a side effect.
	_, errs, result := run(`foo = 1;`)
	assert.Equal(t, vm.InterpretRuntimeError, result)
	assert.Contains(t, errs, "Undefined variable 'foo'")
}

func TestCallingNonCallableValueIsRuntimeError(t *testing.T) {
	_, errs, result := run(`var x = 1; x();`)
	assert.Equal(t, vm.InterpretRuntimeError, result)
	assert.Contains(t, errs, "Can only call functions and classes")
}

func TestArityMismatchIsRuntimeError(t *testing.T) {
	_, errs, result := run(`fun f(a, b) { return a + b; } f(1);`)
	assert.Equal(t, vm.InterpretRuntimeError, result)
	assert.Contains(t, errs, "Expected 2 arguments but got 1")
}

func TestNotRejectsNonBooleanOperand(t *testing.T) {
	// spec.md §9: "!" is stricter than usual truthy-scripting-language "!"
	// and rejects non-boolean operands at runtime.
	_, errs, result := run(`print !1;`)
	assert.Equal(t, vm.InterpretRuntimeError, result)
	assert.Contains(t, errs, "Operand must be a boolean")
}

func TestShortCircuitAndDoesNotEvaluateRHS(t *testing.T) {
	out, errs, result := run(`fun sideEffect() { print "evaluated"; return true; } print false and sideEffect();`)
	require.Equal(t, vm.InterpretOK, result, "stderr: %s", errs)
	assert.Equal(t, "false\n", out)
}

func TestShortCircuitOrDoesNotEvaluateRHS(t *testing.T) {
	out, errs, result := run(`fun sideEffect() { print "evaluated"; return true; } print true or sideEffect();`)
	require.Equal(t, vm.InterpretOK, result, "stderr: %s", errs)
	assert.Equal(t, "true\n", out)
}

func TestRecursiveFunctionCallsTerminate(t *testing.T) {
	source := `
		fun fib(n) {
			if (n < 2) return n;
			return fib(n - 1) + fib(n - 2);
		}
		print fib(10);
	`
	out, errs, result := run(source)
	require.Equal(t, vm.InterpretOK, result, "stderr: %s", errs)
	assert.Equal(t, "55\n", out)
}

func TestStackOverflowIsRuntimeError(t *testing.T) {
	source := `fun recurse() { return recurse(); } recurse();`
	_, errs, result := run(source)
	assert.Equal(t, vm.InterpretRuntimeError, result)
	assert.Contains(t, errs, "Stack overflow")
}

func TestClockNativeReturnsANumber(t *testing.T) {
	out, errs, result := run(`print clock() >= 0;`)
	require.Equal(t, vm.InterpretOK, result, "stderr: %s", errs)
	assert.Equal(t, "true\n", out)
}

func TestVMIsReusableAcrossInterpretCalls(t *testing.T) {
	var outBuf, errBuf bytes.Buffer
	machine := vm.New(&outBuf, &errBuf)

	require.Equal(t, vm.InterpretOK, machine.Interpret(`var a = 1; print a;`))
	require.Equal(t, vm.InterpretOK, machine.Interpret(`var b = 2; print b;`))
	assert.Equal(t, "1\n2\n", outBuf.String())
}
