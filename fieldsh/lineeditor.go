// =============================================================================
// lineeditor.go - Line Editor with Dual-Mode Operation
// =============================================================================
//
// This file implements the line editor used by the fieldsh REPL. It detects
// whether the terminal is interactive (TTY) or non-interactive (piped input,
// e.g. from a script or Emacs comint mode) and selects the input method:
//
//   - Interactive mode: ergochat/readline for full line editing with Emacs
//     keybindings, persistent history and Ctrl-R history search.
//   - Non-interactive mode: bufio.Scanner for simple line-by-line reading,
//     printing the prompt manually.
//
// History is stored at ~/.fieldsh_history by default (configurable with
// [history] file/size) with duplicate-free, non-empty entries only.
//
// Lines longer than a command line are not cut here. The tokenizer keeps
// the first 80 characters, exactly as the character console does.
//
// =============================================================================

package main

// GO CONCEPT: Conditional Imports and Build Tags
// -----------------------------------------------
// Go imports are always unconditional: every imported package must be used.
// Platform-specific behavior goes in separate files with build tags
// (see serial_linux.go) rather than conditional imports. Here both readline
// and term are imported unconditionally because the dual-mode logic runs on
// all platforms; we just take different code paths at runtime.
import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ergochat/readline"
	"golang.org/x/term"
)

const (
	// historyFileName is the default history file in the user's home
	// directory.
	historyFileName = ".fieldsh_history"

	// historySize is the default maximum number of history entries.
	historySize = 500
)

// LineEditor wraps line editing with dual-mode operation.
//
// In interactive mode it uses ergochat/readline for rich line editing with
// Emacs keybindings, history file persistence and Ctrl-R history search. In
// non-interactive mode (piped input or Emacs comint) it falls back to
// bufio.Scanner.
//
// GO CONCEPT: Struct Fields with Mixed Visibility
// ------------------------------------------------
// All fields are lowercase (unexported), so only code in this package can
// touch them. The exported methods GetLine, Close and IsInteractive are the
// API.
type LineEditor struct {
	// interactive is true when stdin is a TTY and false when it is piped.
	interactive bool

	// rl is the readline instance used in interactive mode; nil otherwise.
	rl *readline.Instance

	// scanner reads lines in non-interactive mode; nil otherwise.
	scanner *bufio.Scanner

	// out receives the prompt in non-interactive mode.
	out io.Writer
}

// NewLineEditor creates a LineEditor on stdin with automatic mode detection.
//
// If stdin is a TTY it creates a readline instance that persists history to
// historyPath, keeping at most historyLimit entries. Otherwise it reads
// stdin with a bufio.Scanner.
//
// The INSIDE_EMACS environment variable is also checked: under Emacs
// (M-x shell or comint) we always use non-interactive mode because Emacs
// provides its own line editing.
func NewLineEditor(historyPath string, historyLimit int) *LineEditor {
	// GO CONCEPT: TTY Detection
	// -------------------------
	// golang.org/x/term.IsTerminal() checks whether a file descriptor is
	// connected to a terminal. os.Stdin.Fd() returns a uintptr, so we
	// convert it to int.
	isInteractive := term.IsTerminal(int(os.Stdin.Fd())) &&
		os.Getenv("INSIDE_EMACS") == ""

	if !isInteractive {
		return newScannerLineEditor(os.Stdin, os.Stdout)
	}

	rl, err := readline.NewFromConfig(&readline.Config{
		HistoryFile:  historyPath,
		HistoryLimit: historyLimit,

		// We call SaveToHistory() ourselves so empty lines are skipped.
		DisableAutoSaveHistory: true,

		// Set before every read via SetPrompt().
		Prompt: "",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: readline init failed (%v), using basic input\n", err)
		return newScannerLineEditor(os.Stdin, os.Stdout)
	}

	return &LineEditor{
		interactive: true,
		rl:          rl,
	}
}

// newScannerLineEditor creates a non-interactive editor reading lines from
// in and printing prompts to out.
func newScannerLineEditor(in io.Reader, out io.Writer) *LineEditor {
	return &LineEditor{
		interactive: false,
		scanner:     bufio.NewScanner(in),
		out:         out,
	}
}

// GetLine reads a line of input with the given prompt.
//
// Returns the line without its trailing newline. Returns ("", io.EOF) on
// Ctrl-D, Ctrl-C or exhausted piped input.
//
// GO CONCEPT: Sentinel Errors
// ---------------------------
// io.EOF is a "sentinel error": a predefined value used as a signal rather
// than a real failure. Callers compare against it with errors.Is(err, io.EOF).
func (le *LineEditor) GetLine(prompt string) (string, error) {
	if le.interactive {
		return le.getInteractiveLine(prompt)
	}
	return le.getNonInteractiveLine(prompt)
}

// getInteractiveLine reads a line using ergochat/readline.
func (le *LineEditor) getInteractiveLine(prompt string) (string, error) {
	if le.rl == nil {
		return "", io.EOF
	}
	le.rl.SetPrompt(prompt)

	line, err := le.rl.Readline()
	if err != nil {
		if err == readline.ErrInterrupt {
			return "", io.EOF
		}
		return "", err
	}

	trimmed := strings.TrimSpace(line)
	if trimmed != "" {
		le.rl.SaveToHistory(trimmed)
	}

	return line, nil
}

// getNonInteractiveLine reads a line using bufio.Scanner. The prompt is
// still printed; Emacs comint matches on it to find where input begins.
func (le *LineEditor) getNonInteractiveLine(prompt string) (string, error) {
	if le.scanner == nil {
		return "", io.EOF
	}
	fmt.Fprint(le.out, prompt)

	if !le.scanner.Scan() {
		if err := le.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}

	return le.scanner.Text(), nil
}

// Close releases resources held by the LineEditor. In interactive mode it
// saves history and closes readline. Close is idempotent.
//
// GO CONCEPT: Resource Cleanup and Idempotency
// ---------------------------------------------
// Go has no destructors. Resources such as terminals and history files are
// released with an explicit Close(), usually deferred by the caller:
//
//	editor := NewLineEditor(path, size)
//	defer editor.Close()
func (le *LineEditor) Close() {
	if le.rl != nil {
		le.rl.Close()
		le.rl = nil
	}
	le.scanner = nil
}

// IsInteractive reports whether the editor has full line editing.
func (le *LineEditor) IsInteractive() bool {
	return le.interactive
}
