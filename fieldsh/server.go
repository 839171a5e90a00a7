// =============================================================================
// server.go - Server Command and Server Process Launcher
// =============================================================================
//
// Two halves:
//
//   - `fieldsh serve` runs the command dispatcher as a server: the line
//     protocol on a Unix domain socket (always) and a websocket endpoint
//     (with --ws). It stops cleanly on SIGINT/SIGTERM.
//
//   - launchServer starts `fieldsh serve` as a background process for a
//     REPL run with --connect when no server is running, then waits for
//     its socket to appear.
//
// =============================================================================

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/fieldsh/fieldsh/fieldproto"
)

const (
	// serverExecutableName is the binary looked up in PATH when the running
	// executable cannot be determined.
	serverExecutableName = "fieldsh"

	// serverSocketTimeout is how long to wait for a launched server's
	// socket.
	serverSocketTimeout = 4 * time.Second

	// serverSocketPollInterval is the delay between socket checks.
	serverSocketPollInterval = 100 * time.Millisecond
)

// serveOptions configures runServe.
type serveOptions struct {
	// socketPath is the Unix socket to listen on.
	socketPath string

	// webSocketAddr enables the websocket endpoint when non-empty.
	webSocketAddr string
}

// runServe serves d until ctx is done or a listener fails. Both listeners
// share one Server, so Close tears down every session.
func runServe(ctx context.Context, out io.Writer, opts serveOptions, d *fieldproto.Dispatcher, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := fieldproto.NewServer(d, fieldproto.ServerOptions{Logger: logger})
	defer srv.Close()

	// GO CONCEPT: Fan-In with a Buffered Channel
	// -------------------------------------------
	// Each listener runs in its own goroutine and reports its result on
	// errCh. The channel is buffered for every sender, so a goroutine never
	// blocks on send even after we stop reading.
	errCh := make(chan error, 2)
	running := 1

	go func() { errCh <- srv.ListenAndServe(ctx, opts.socketPath) }()
	fmt.Fprintf(out, "Listening on %s\n", opts.socketPath)

	if opts.webSocketAddr != "" {
		running++
		go func() { errCh <- srv.ListenAndServeWebSocket(ctx, opts.webSocketAddr) }()
		fmt.Fprintf(out, "Websocket endpoint ws://%s%s\n", opts.webSocketAddr, fieldproto.WebSocketPath)
	}

	var first error
	for ; running > 0; running-- {
		err := <-errCh
		if err != nil && !errors.Is(err, context.Canceled) && first == nil {
			first = err
			cancel()
		}
	}
	return first
}

// launchServer starts `fieldsh serve` in the background on socketPath and
// waits until the socket accepts connections. It returns the server's PID.
func launchServer(socketPath string, configPath string) (int, error) {
	exePath, err := findServerExecutable()
	if err != nil {
		return 0, fmt.Errorf("could not find %s executable: %w", serverExecutableName, err)
	}

	cmdArgs := []string{"serve", "--socket", socketPath}
	if configPath != "" {
		cmdArgs = append(cmdArgs, "--config", configPath)
	}

	// GO CONCEPT: os/exec for Subprocess Management
	// -----------------------------------------------
	// exec.Command builds the process description; Start launches it
	// without waiting. The server's output is discarded so it cannot
	// interleave with the REPL.
	cmd := exec.Command(exePath, cmdArgs...)
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to launch %s: %w", serverExecutableName, err)
	}
	pid := cmd.Process.Pid

	// Reap the child when it exits so it does not linger as a zombie.
	go cmd.Wait()

	if err := waitForSocket(socketPath); err != nil {
		return pid, fmt.Errorf("server started (PID: %d) but socket not found: %w", pid, err)
	}
	return pid, nil
}

// findServerExecutable locates the fieldsh binary: the running executable
// first, then PATH.
func findServerExecutable() (string, error) {
	if selfPath, err := os.Executable(); err == nil && isExecutable(selfPath) {
		return selfPath, nil
	}

	if path, err := exec.LookPath(serverExecutableName); err == nil {
		return path, nil
	}

	candidate := filepath.Join(homeDir(), ".local", "bin", serverExecutableName)
	if isExecutable(candidate) {
		return candidate, nil
	}

	return "", fmt.Errorf("%s not found in PATH or common locations", serverExecutableName)
}

// waitForSocket polls until a socket file exists at path.
func waitForSocket(path string) error {
	deadline := time.Now().Add(serverSocketTimeout)

	for time.Now().Before(deadline) {
		if info, err := os.Stat(path); err == nil && info.Mode()&os.ModeSocket != 0 {
			return nil
		}
		time.Sleep(serverSocketPollInterval)
	}

	return fmt.Errorf("timeout waiting for socket %s", path)
}

// isExecutable reports whether path is a regular file with an execute bit.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Mode().Perm()&0111 != 0
}

// homeDir returns the user's home directory, or "" if it is unknown.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}
