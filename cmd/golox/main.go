// Command golox is the CLI driver around package vm: a file runner with
// one argument and a line-edited REPL with none, matching the original
// clox main.c's two modes.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"golox/pkg/vm"
)

const (
	exitUsage        = 64
	exitCompileError = 65
	exitRuntimeError = 70
	exitIOFailure    = 74
)

var errRed = color.New(color.FgRed, color.Bold)

func main() {
	switch len(os.Args) {
	case 1:
		runREPL()
	case 2:
		runFile(os.Args[1])
	default:
		fmt.Fprintln(os.Stderr, "Usage: golox [path]")
		os.Exit(exitUsage)
	}
}

func runFile(path string) {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not read file \"%s\": %v\n", path, err)
		os.Exit(exitIOFailure)
	}

	machine := vm.New(os.Stdout, errWriter{})
	switch machine.Interpret(string(source)) {
	case vm.InterpretCompileError:
		os.Exit(exitCompileError)
	case vm.InterpretRuntimeError:
		os.Exit(exitRuntimeError)
	}
}

// runREPL reads one line at a time from an edited, history-backed prompt
// and submits each line to the same VM, exactly as the original's
// `repl()` does — no whole-program buffering, no special-casing of bare
// expressions (see SPEC_FULL.md's supplemented-features note on this).
func runREPL() {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := replHistoryPath()
	if f, err := os.Open(historyPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	machine := vm.New(os.Stdout, errWriter{})

	for {
		text, err := line.Prompt("> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				break
			}
			fmt.Fprintf(os.Stderr, "Input error: %v\n", err)
			break
		}
		if text == "" {
			continue
		}
		line.AppendHistory(text)
		machine.Interpret(text)
	}

	if f, err := os.Create(historyPath); err == nil {
		line.WriteHistory(f)
		f.Close()
	}
}

func replHistoryPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".golox_history"
	}
	return dir + "/golox_history"
}

// errWriter colors every line it's given red before forwarding it to
// stderr, falling back to plain text when stdout isn't a terminal
// (color's own isatty detection, which looks at stdout, handles that).
type errWriter struct{}

func (errWriter) Write(p []byte) (int, error) {
	errRed.Fprint(os.Stderr, string(p))
	return len(p), nil
}
