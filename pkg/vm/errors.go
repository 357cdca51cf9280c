// Package vm — runtime error formatting with a call-stack trace.
package vm

import (
	"fmt"
	"strings"
)

// stackTraceFrame captures one call frame's position at the moment a
// runtime error was raised: which function, and what source line its
// currently-executing instruction came from.
type stackTraceFrame struct {
	FunctionName string // "" for the implicit top-level script
	Line         int
}

// RuntimeError is returned by Interpret when the VM aborts mid-run. Its
// Error() rendering matches the original's "message\n[line L] in NAME"
// trace, innermost call first.
type RuntimeError struct {
	Message string
	Trace   []stackTraceFrame
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for _, frame := range e.Trace {
		b.WriteByte('\n')
		fmt.Fprintf(&b, "[line %d] in ", frame.Line)
		if frame.FunctionName == "" {
			b.WriteString("script")
		} else {
			fmt.Fprintf(&b, "%s()", frame.FunctionName)
		}
	}
	return b.String()
}

func newRuntimeError(message string, trace []stackTraceFrame) *RuntimeError {
	return &RuntimeError{Message: message, Trace: trace}
}
