// =============================================================================
// rawconsole.go - Character-at-a-Time Console (--raw)
// =============================================================================
//
// With --raw the terminal is switched to raw mode and fieldsh behaves like
// a serial console: every keystroke reaches the line reader as it is typed,
// backspace is handled by fieldsh itself, and output lines end in "\r\n".
// Ctrl-C or Ctrl-D ends the session.
//
// =============================================================================

package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/fieldsh/fieldsh/fieldproto"
)

// Keys that end a raw session.
const (
	keyInterrupt = 3 // Ctrl-C
	keyEOF       = 4 // Ctrl-D
)

// errRawNeedsTerminal is returned by --raw when stdin is not a terminal.
var errRawNeedsTerminal = errors.New("--raw requires stdin to be a terminal")

// runRawConsole serves d on the terminal in raw mode until Ctrl-C, Ctrl-D
// or ctx is done. The terminal state is restored on return.
func runRawConsole(ctx context.Context, d *fieldproto.Dispatcher, prompt string, logger *slog.Logger) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return errRawNeedsTerminal
	}

	// GO CONCEPT: Raw Terminal Mode
	// -----------------------------
	// term.MakeRaw turns off line buffering, echo and signal keys, and
	// returns the previous state. Restoring it is mandatory: a shell left in
	// raw mode is unusable, so the restore is deferred and also registered
	// with the signal handler.
	state, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	restore := func() { term.Restore(fd, state) }
	defer restore()
	setupSignalHandler(restore)

	return fieldproto.ServeStream(ctx, &interruptReader{r: os.Stdin}, os.Stdout, d, fieldproto.StreamOptions{
		Echo:    true,
		Newline: "\r\n",
		Prompt:  prompt,
		Logger:  logger,
	})
}

// interruptReader turns Ctrl-C and Ctrl-D into end of input. Raw mode
// delivers them as plain bytes instead of signals. Once seen, every later
// Read reports io.EOF.
type interruptReader struct {
	r    io.Reader
	done bool
}

func (ir *interruptReader) Read(p []byte) (int, error) {
	if ir.done {
		return 0, io.EOF
	}
	n, err := ir.r.Read(p)
	for i := 0; i < n; i++ {
		if p[i] == keyInterrupt || p[i] == keyEOF {
			ir.done = true
			return i, io.EOF
		}
	}
	return n, err
}
