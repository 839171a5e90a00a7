// =============================================================================
// config_test.go - Tests for Configuration Loading (config.go)
// =============================================================================

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fieldsh/fieldsh/fieldproto"
)

// writeConfig writes content to name inside a temporary directory and
// returns its path.
func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// =============================================================================
// Duration Tests
// =============================================================================

func TestDurationText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("1m30s")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if d.Duration != 90*time.Second {
		t.Errorf("Duration = %v, want 1m30s", d.Duration)
	}

	text, err := d.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	if string(text) != "1m30s" {
		t.Errorf("MarshalText = %q, want %q", text, "1m30s")
	}

	if err := d.UnmarshalText([]byte("soon")); err == nil {
		t.Error("UnmarshalText should reject an invalid duration")
	}
}

// =============================================================================
// Defaults Tests
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Prompt != "> " {
		t.Errorf("Prompt = %q", cfg.Prompt)
	}
	if cfg.CommandTimeout.Duration != fieldproto.CommandTimeout {
		t.Errorf("CommandTimeout = %v, want %v", cfg.CommandTimeout.Duration, fieldproto.CommandTimeout)
	}
	if cfg.History.Size != historySize {
		t.Errorf("History.Size = %d, want %d", cfg.History.Size, historySize)
	}
	if !strings.HasSuffix(cfg.History.File, historyFileName) {
		t.Errorf("History.File = %q", cfg.History.File)
	}
	if cfg.Serial.Device != "/dev/ttyACM0" || cfg.Serial.Baud != 115200 {
		t.Errorf("Serial = %+v", cfg.Serial)
	}
	if !cfg.SerialEcho() {
		t.Error("serial echo should default to on")
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Path() != "" {
		t.Errorf("Path() = %q, want empty for defaults", cfg.Path())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

// =============================================================================
// Loading Tests
// =============================================================================

func TestLoadConfigTOML(t *testing.T) {
	path := writeConfig(t, "fieldsh.toml", `
prompt = "board> "
socket = "/tmp/fieldsh-1.sock"
command_timeout = "5s"

[history]
size = 50

[server]
websocket = "127.0.0.1:8765"

[serial]
device = "/dev/ttyUSB0"
baud = 9600
echo = false

[log]
level = "debug"
format = "json"
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if cfg.Prompt != "board> " {
		t.Errorf("Prompt = %q", cfg.Prompt)
	}
	if cfg.Socket != "/tmp/fieldsh-1.sock" {
		t.Errorf("Socket = %q", cfg.Socket)
	}
	if cfg.CommandTimeout.Duration != 5*time.Second {
		t.Errorf("CommandTimeout = %v", cfg.CommandTimeout.Duration)
	}
	if cfg.History.Size != 50 {
		t.Errorf("History.Size = %d", cfg.History.Size)
	}
	if cfg.Server.WebSocket != "127.0.0.1:8765" {
		t.Errorf("Server.WebSocket = %q", cfg.Server.WebSocket)
	}
	if cfg.Serial.Device != "/dev/ttyUSB0" || cfg.Serial.Baud != 9600 {
		t.Errorf("Serial = %+v", cfg.Serial)
	}
	if cfg.SerialEcho() {
		t.Error("echo = false should disable serial echo")
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}
	// Unset values still get defaults.
	if cfg.History.File == "" {
		t.Error("History.File should default")
	}
}

func TestLoadConfigYAML(t *testing.T) {
	for _, name := range []string{"fieldsh.yaml", "fieldsh.yml"} {
		path := writeConfig(t, name, `
prompt: "y> "
plain: true
command_timeout: 250ms
serial:
  baud: 57600
log:
  level: warn
`)

		cfg, err := loadConfig(path)
		if err != nil {
			t.Fatalf("%s: loadConfig: %v", name, err)
		}
		if cfg.Prompt != "y> " || !cfg.Plain {
			t.Errorf("%s: Prompt = %q, Plain = %v", name, cfg.Prompt, cfg.Plain)
		}
		if cfg.CommandTimeout.Duration != 250*time.Millisecond {
			t.Errorf("%s: CommandTimeout = %v", name, cfg.CommandTimeout.Duration)
		}
		if cfg.Serial.Baud != 57600 {
			t.Errorf("%s: Serial.Baud = %d", name, cfg.Serial.Baud)
		}
		if cfg.Log.Level != "warn" || cfg.Log.Format != "text" {
			t.Errorf("%s: Log = %+v", name, cfg.Log)
		}
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr string
	}{
		{
			name:    "missing file",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.toml") },
			wantErr: "not found",
		},
		{
			name:    "unsupported extension",
			path:    func(t *testing.T) string { return writeConfig(t, "fieldsh.json", "{}") },
			wantErr: "unsupported config format",
		},
		{
			name:    "bad toml",
			path:    func(t *testing.T) string { return writeConfig(t, "fieldsh.toml", "prompt = \n") },
			wantErr: "failed to parse",
		},
		{
			name:    "bad yaml",
			path:    func(t *testing.T) string { return writeConfig(t, "fieldsh.yaml", "prompt: [\n") },
			wantErr: "failed to parse",
		},
		{
			name:    "bad duration",
			path:    func(t *testing.T) string { return writeConfig(t, "fieldsh.toml", `command_timeout = "soon"`) },
			wantErr: "failed to parse",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadConfig(tc.path(t))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	path := writeConfig(t, "env.toml", `prompt = "env> "`)
	t.Setenv(configEnvVar, path)

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Prompt != "env> " {
		t.Errorf("Prompt = %q, want env> ", cfg.Prompt)
	}
}

func TestLoadConfigExpandsEnvInPath(t *testing.T) {
	path := writeConfig(t, "fieldsh.toml", `prompt = "x> "`)
	t.Setenv("FIELDSH_TEST_DIR", filepath.Dir(path))

	cfg, err := loadConfig("$FIELDSH_TEST_DIR/fieldsh.toml")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}
}

func TestLoadConfigDefaultsWhenNothingFound(t *testing.T) {
	isolateConfig(t)

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Path() != "" {
		t.Errorf("Path() = %q, want defaults", cfg.Path())
	}
}

func TestFindConfigFileInHome(t *testing.T) {
	isolateConfig(t)
	home := os.Getenv("HOME")

	dir := filepath.Join(home, ".config", "fieldsh")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(want, []byte("prompt: h> \n"), 0644); err != nil {
		t.Fatal(err)
	}

	if got := findConfigFile(); got != want {
		t.Errorf("findConfigFile() = %q, want %q", got, want)
	}
}

// =============================================================================
// Validation Tests
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr string
	}{
		{"log level", func(c *Config) { c.Log.Level = "chatty" }, "invalid log level"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "invalid log format"},
		{"history size", func(c *Config) { c.History.Size = -1 }, "history size"},
		{"timeout", func(c *Config) { c.CommandTimeout.Duration = -time.Second }, "command timeout"},
		{"baud", func(c *Config) { c.Serial.Baud = 12345 }, "unsupported baud rate"},
	}

	for _, tc := range tests {
		cfg := defaultConfig()
		tc.modify(cfg)
		err := cfg.Validate()
		if err == nil {
			t.Errorf("%s: expected error", tc.name)
			continue
		}
		if !strings.Contains(err.Error(), tc.wantErr) {
			t.Errorf("%s: error = %q, want %q", tc.name, err, tc.wantErr)
		}
	}
}

func TestValidateAcceptsUppercase(t *testing.T) {
	cfg := defaultConfig()
	cfg.Log.Level = "DEBUG"
	cfg.Log.Format = "JSON"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

// =============================================================================
// Path Helper Tests
// =============================================================================

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/fieldsh")

	tests := []struct {
		in   string
		want string
	}{
		{"~", "/home/fieldsh"},
		{"~/.fieldsh_history", "/home/fieldsh/.fieldsh_history"},
		{"/var/log/x", "/var/log/x"},
		{"~other/x", "~other/x"},
		{"", ""},
	}

	for _, tc := range tests {
		if got := expandHome(tc.in); got != tc.want {
			t.Errorf("expandHome(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestHistoryPathExpandsHome(t *testing.T) {
	t.Setenv("HOME", "/home/fieldsh")
	cfg := defaultConfig()
	if got := cfg.HistoryPath(); got != "/home/fieldsh/"+historyFileName {
		t.Errorf("HistoryPath() = %q", got)
	}
}
