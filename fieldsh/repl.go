// =============================================================================
// repl.go - REPL Loop
// =============================================================================
//
// The REPL reads lines from the LineEditor and answers them. Lines starting
// with "." are local dot-commands (.help, .commands, .quit); every other
// line, including an empty one, is a command line for the dispatcher.
//
// The dispatcher is either local (the default) or a fieldsh server reached
// over its Unix socket. Both sit behind the executor interface, so the loop
// does not care which one it talks to.
//
// =============================================================================

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/fieldsh/fieldsh/fieldproto"
)

// executor answers one command line.
//
// GO CONCEPT: Small Interfaces
// ----------------------------
// An interface with a single method is the most common shape in Go. Both
// executors below satisfy it implicitly; there is no "implements" keyword.
type executor interface {
	Execute(ctx context.Context, line string) (fieldproto.Response, error)
}

// localExecutor runs lines on an in-process dispatcher.
type localExecutor struct {
	dispatcher *fieldproto.Dispatcher
}

func (e localExecutor) Execute(_ context.Context, line string) (fieldproto.Response, error) {
	return e.dispatcher.Execute(line), nil
}

// remoteExecutor sends lines to a fieldsh server.
type remoteExecutor struct {
	client  *fieldproto.Client
	timeout time.Duration
}

func (e remoteExecutor) Execute(ctx context.Context, line string) (fieldproto.Response, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	return e.client.SendWithContext(ctx, line)
}

// repl holds everything the loop needs.
type repl struct {
	exec     executor
	editor   *LineEditor
	out      io.Writer
	errOut   io.Writer
	styles   styles
	prompt   string
	commands []fieldproto.CommandSpec
	logger   *slog.Logger
}

// run reads and answers lines until EOF, .quit, a lost server connection
// or ctx being done.
func (r *repl) run(ctx context.Context) error {
	prompt := r.styles.Prompt(r.prompt)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := r.editor.GetLine(prompt)
		if err != nil {
			if errors.Is(err, io.EOF) {
				// Ctrl-D or end of piped input.
				fmt.Fprintln(r.out)
				return nil
			}
			return err
		}

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, ".") {
			if quit := r.dotCommand(trimmed); quit {
				return nil
			}
			continue
		}

		resp, err := r.exec.Execute(ctx, line)
		if err != nil {
			fmt.Fprintln(r.errOut, r.styles.Error("Error: "+err.Error()))
			if errors.Is(err, fieldproto.ErrNotConnected) {
				return err
			}
			continue
		}
		r.logger.Debug("line answered", slog.Bool("ok", resp.IsOK()), slog.String("data", resp.Data))

		if resp.IsOK() {
			fmt.Fprintln(r.out, r.styles.Reply(resp.Data))
		} else {
			fmt.Fprintln(r.out, r.styles.Error(resp.Data))
		}
	}
}

// dotCommand runs a local dot-command and reports whether the REPL should
// exit.
func (r *repl) dotCommand(line string) bool {
	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]

	switch name {
	case ".quit", ".exit":
		return true
	case ".help":
		printHelp(r.out, r.errOut, r.commands, strings.Join(args, " "))
	case ".commands":
		printCommands(r.out, r.commands)
	default:
		fmt.Fprintf(r.errOut, "Error: Unknown command '%s'. Type .help to see available commands.\n", name)
	}
	return false
}
