// =============================================================================
// main_test.go - Tests for CLI Entry Point (main.go)
// =============================================================================
//
// GO CONCEPT: Testing in Go
// -------------------------
// Go has built-in testing support; no external framework is needed.
//
// Rules:
//   - Test files end in _test.go (e.g., main_test.go)
//   - Test functions start with "Test" and take *testing.T
//   - Run tests with: go test ./...
//   - Run specific tests: go test -run TestFullTitle
//
// Assertion style: Go has no assert functions built in. Use if statements
// and call t.Error() or t.Fatal():
//   - t.Errorf(...)  log a formatted error and continue
//   - t.Fatalf(...)  log a formatted error and stop this test
//
// Commands are tested by building the real cobra tree with newRootCmd,
// setting its arguments and output writers, and calling Execute. Nothing
// touches the process's own os.Args.
//
// =============================================================================

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/fieldsh/fieldsh/fieldproto"
)

// =============================================================================
// Version and Banner Tests
// =============================================================================

func TestFullTitle(t *testing.T) {
	got := fullTitle()
	expected := "fieldsh v" + version
	if got != expected {
		t.Errorf("fullTitle() = %q, want %q", got, expected)
	}
}

func TestWelcomeBanner(t *testing.T) {
	banner := welcomeBanner()

	// GO CONCEPT: Table-Driven Tests
	// --------------------------------
	// The most common Go test pattern: a slice of cases, then one loop.
	// Adding a case is one line, and the failure message names it.
	checks := []struct {
		name    string
		content string
	}{
		{"title", fullTitle()},
		{"copyright", copyright},
		{"help hint", ".help"},
		{"quit hint", ".quit"},
	}

	for _, tc := range checks {
		if !strings.Contains(banner, tc.content) {
			t.Errorf("welcomeBanner() missing %s (%q)", tc.name, tc.content)
		}
	}
	if !strings.HasSuffix(banner, "\n") {
		t.Error("welcomeBanner() should end with a newline")
	}
}

// =============================================================================
// Command Tree Tests
// =============================================================================

// isolateConfig keeps loadConfig away from the developer's own files.
func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv(configEnvVar, "")
	t.Setenv("HOME", t.TempDir())
}

// executeRoot runs the command tree with args and returns stdout, stderr
// and the error from Execute.
func executeRoot(t *testing.T, a *app, args ...string) (string, string, error) {
	t.Helper()

	root := newRootCmd(a)
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersionCommand(t *testing.T) {
	isolateConfig(t)

	out, _, err := executeRoot(t, &app{}, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}

	for _, want := range []string{
		fullTitle(),
		fieldproto.ProtocolVersion,
		runtime.Version(),
		runtime.GOOS + "/" + runtime.GOARCH,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("version output missing %q:\n%s", want, out)
		}
	}
}

func TestRootFlags(t *testing.T) {
	root := newRootCmd(&app{})

	tests := []struct {
		name       string
		persistent bool
		defValue   string
	}{
		{"config", true, ""},
		{"log-level", true, ""},
		{"log-format", true, ""},
		{"plain", true, "false"},
		{"socket", false, ""},
		{"connect", false, "false"},
		{"raw", false, "false"},
	}

	for _, tc := range tests {
		flags := root.Flags()
		if tc.persistent {
			flags = root.PersistentFlags()
		}
		f := flags.Lookup(tc.name)
		if f == nil {
			t.Errorf("flag --%s not defined", tc.name)
			continue
		}
		if f.DefValue != tc.defValue {
			t.Errorf("--%s default = %q, want %q", tc.name, f.DefValue, tc.defValue)
		}
	}
}

func TestSubcommands(t *testing.T) {
	root := newRootCmd(&app{})

	tests := []struct {
		name  string
		flags []string
	}{
		{"serve", []string{"socket", "ws"}},
		{"serial", []string{"device", "baud", "echo"}},
		{"version", nil},
	}

	for _, tc := range tests {
		cmd, _, err := root.Find([]string{tc.name})
		if err != nil || cmd == root {
			t.Errorf("subcommand %q not found", tc.name)
			continue
		}
		for _, name := range tc.flags {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("%s: flag --%s not defined", tc.name, name)
			}
		}
	}
}

func TestRawIsExclusive(t *testing.T) {
	isolateConfig(t)

	tests := [][]string{
		{"--raw", "--socket", "/tmp/fieldsh-test.sock"},
		{"--raw", "--connect"},
	}

	for _, args := range tests {
		_, _, err := executeRoot(t, &app{}, args...)
		if err == nil {
			t.Errorf("%v: expected error", args)
			continue
		}
		if !strings.Contains(err.Error(), "raw") {
			t.Errorf("%v: error %q does not name the raw flag", args, err)
		}
	}
}

func TestRootRejectsArguments(t *testing.T) {
	isolateConfig(t)

	if _, _, err := executeRoot(t, &app{}, "set", "3", "4"); err == nil {
		t.Error("expected error for positional arguments")
	}
}

// =============================================================================
// Setup (Config and Logging) Tests
// =============================================================================

func TestSetupInvalidLogLevel(t *testing.T) {
	isolateConfig(t)

	_, _, err := executeRoot(t, &app{}, "--log-level", "loud", "version")
	if err == nil {
		t.Fatal("expected error for invalid log level")
	}
	if !strings.Contains(err.Error(), "invalid log level") {
		t.Errorf("error = %q, want it to mention the log level", err)
	}
}

func TestSetupMissingConfigFile(t *testing.T) {
	isolateConfig(t)

	_, _, err := executeRoot(t, &app{}, "--config", filepath.Join(t.TempDir(), "nope.toml"), "version")
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %q, want 'not found'", err)
	}
}

func TestSetupLoadsConfigAndAppliesFlags(t *testing.T) {
	isolateConfig(t)

	path := filepath.Join(t.TempDir(), "fieldsh.toml")
	content := `
prompt = "fs> "
plain = false

[log]
level = "error"
format = "json"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	a := &app{}
	_, _, err := executeRoot(t, a, "--config", path, "--log-level", "debug", "--plain", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}

	if a.cfg == nil || a.logger == nil {
		t.Fatal("setup did not populate config and logger")
	}
	if a.cfg.Path() != path {
		t.Errorf("cfg.Path() = %q, want %q", a.cfg.Path(), path)
	}
	if a.cfg.Prompt != "fs> " {
		t.Errorf("Prompt = %q, want %q", a.cfg.Prompt, "fs> ")
	}
	// Flags win over the file; unset flags leave the file's values.
	if a.cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", a.cfg.Log.Level)
	}
	if a.cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", a.cfg.Log.Format)
	}
	if !a.cfg.Plain {
		t.Error("Plain should be set by --plain")
	}
}

func TestSetupLogsToCommandStderr(t *testing.T) {
	isolateConfig(t)

	_, stderr, err := executeRoot(t, &app{}, "--log-level", "debug", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(stderr, "configuration loaded") {
		t.Errorf("stderr = %q, want the debug record", stderr)
	}
}

// =============================================================================
// Executor Selection Tests
// =============================================================================

func TestNewExecutorLocalByDefault(t *testing.T) {
	a := &app{cfg: defaultConfig()}

	exec, cleanup, err := a.newExecutor(fieldproto.NewDefaultDispatcher())
	if err != nil {
		t.Fatalf("newExecutor: %v", err)
	}
	defer cleanup()

	if _, ok := exec.(localExecutor); !ok {
		t.Errorf("executor = %T, want localExecutor", exec)
	}
}

func TestNewExecutorRemoteWithSocket(t *testing.T) {
	socketPath := startTestServer(t)

	a := &app{cfg: defaultConfig()}
	a.args.socketPath = socketPath

	exec, cleanup, err := a.newExecutor(fieldproto.NewDefaultDispatcher())
	if err != nil {
		t.Fatalf("newExecutor: %v", err)
	}
	defer cleanup()

	if _, ok := exec.(remoteExecutor); !ok {
		t.Fatalf("executor = %T, want remoteExecutor", exec)
	}

	resp, err := exec.Execute(t.Context(), "set 3 4")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !resp.IsOK() || resp.Data != "set: 7" {
		t.Errorf("Execute = %+v, want OK set: 7", resp)
	}
}

func TestNewExecutorSocketFromConfig(t *testing.T) {
	socketPath := startTestServer(t)

	cfg := defaultConfig()
	cfg.Socket = socketPath
	a := &app{cfg: cfg}

	exec, cleanup, err := a.newExecutor(fieldproto.NewDefaultDispatcher())
	if err != nil {
		t.Fatalf("newExecutor: %v", err)
	}
	defer cleanup()

	if _, ok := exec.(remoteExecutor); !ok {
		t.Errorf("executor = %T, want remoteExecutor", exec)
	}
}

func TestNewExecutorConnectFailure(t *testing.T) {
	a := &app{cfg: defaultConfig()}
	a.args.socketPath = filepath.Join(t.TempDir(), "missing.sock")

	if _, _, err := a.newExecutor(fieldproto.NewDefaultDispatcher()); err == nil {
		t.Error("expected error connecting to a missing socket")
	}
}

func TestStopProcessIgnoresZero(t *testing.T) {
	// Must not signal anything, least of all process group 0.
	stopProcess(0)
	stopProcess(-1)
}
