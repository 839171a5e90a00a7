// =============================================================================
// config.go - Configuration File Loading (TOML and YAML)
// =============================================================================
//
// fieldsh reads an optional configuration file. Values from the file are
// defaults; command-line flags override them. Lookup order:
//
//   1. --config <path>
//   2. $FIELDSH_CONFIG
//   3. ./fieldsh.toml, ./fieldsh.yaml
//   4. ~/.config/fieldsh/config.toml, ~/.config/fieldsh/config.yaml
//
// If no file is found the built-in defaults are used. The format is chosen
// by file extension: .toml, or .yaml/.yml.
//
// =============================================================================

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/fieldsh/fieldsh/fieldproto"
)

// configEnvVar names the environment variable holding a config file path.
const configEnvVar = "FIELDSH_CONFIG"

// Config is the complete fieldsh configuration.
type Config struct {
	Prompt         string   `toml:"prompt" yaml:"prompt"`
	Plain          bool     `toml:"plain" yaml:"plain"`
	Socket         string   `toml:"socket" yaml:"socket"`
	CommandTimeout Duration `toml:"command_timeout" yaml:"command_timeout"`

	History HistoryConfig `toml:"history" yaml:"history"`
	Server  ServerConfig  `toml:"server" yaml:"server"`
	Serial  SerialConfig  `toml:"serial" yaml:"serial"`
	Log     LogConfig     `toml:"log" yaml:"log"`

	// path is the file the configuration was loaded from, empty for defaults.
	path string
}

// HistoryConfig controls the interactive line editor's history file.
type HistoryConfig struct {
	File string `toml:"file" yaml:"file"`
	Size int    `toml:"size" yaml:"size"`
}

// ServerConfig controls `fieldsh serve`.
type ServerConfig struct {
	Socket    string `toml:"socket" yaml:"socket"`
	WebSocket string `toml:"websocket" yaml:"websocket"`
}

// SerialConfig controls `fieldsh serial`.
type SerialConfig struct {
	Device string `toml:"device" yaml:"device"`
	Baud   int    `toml:"baud" yaml:"baud"`
	Echo   *bool  `toml:"echo" yaml:"echo"`
}

// LogConfig selects the slog level and handler.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// Duration wraps time.Duration for text config values such as "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// defaultConfig returns the configuration used when no file is found.
func defaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in every value the file left unset.
func (c *Config) applyDefaults() {
	if c.Prompt == "" {
		c.Prompt = "> "
	}
	if c.CommandTimeout.Duration == 0 {
		c.CommandTimeout.Duration = fieldproto.CommandTimeout
	}
	if c.History.File == "" {
		c.History.File = filepath.Join("~", historyFileName)
	}
	if c.History.Size == 0 {
		c.History.Size = historySize
	}
	if c.Serial.Device == "" {
		c.Serial.Device = "/dev/ttyACM0"
	}
	if c.Serial.Baud == 0 {
		c.Serial.Baud = 115200
	}
	if c.Serial.Echo == nil {
		echo := true
		c.Serial.Echo = &echo
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate reports the first invalid value in the configuration.
func (c *Config) Validate() error {
	if _, err := parseLogLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (want text or json)", c.Log.Format)
	}
	if c.History.Size <= 0 {
		return fmt.Errorf("history size must be positive, got %d", c.History.Size)
	}
	if c.CommandTimeout.Duration < 0 {
		return fmt.Errorf("command timeout must not be negative, got %s", c.CommandTimeout.Duration)
	}
	if !isSupportedBaud(c.Serial.Baud) {
		return fmt.Errorf("unsupported baud rate %d", c.Serial.Baud)
	}
	return nil
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string {
	return c.path
}

// HistoryPath returns the history file with a leading ~ expanded.
func (c *Config) HistoryPath() string {
	return expandHome(c.History.File)
}

// SerialEcho reports whether the serial console echoes typed characters.
func (c *Config) SerialEcho() bool {
	return c.Serial.Echo == nil || *c.Serial.Echo
}

// loadConfig loads the file at path, or the first file found in the
// default locations when path is empty. A missing explicit path is an
// error; finding nothing in the default locations is not.
func loadConfig(path string) (*Config, error) {
	if path == "" {
		path = findConfigFile()
	}
	if path == "" {
		return defaultConfig(), nil
	}

	path = expandHome(os.ExpandEnv(path))
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case ".yaml", ".yml":
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (want .toml or .yaml)", filepath.Ext(path))
	}

	cfg.applyDefaults()
	cfg.path = path
	return &cfg, nil
}

// findConfigFile returns the first existing config file in the default
// locations, or "".
func findConfigFile() string {
	if path := os.Getenv(configEnvVar); path != "" {
		return path
	}

	candidates := []string{
		"./fieldsh.toml",
		"./fieldsh.yaml",
	}
	if home := homeDir(); home != "" {
		candidates = append(candidates,
			filepath.Join(home, ".config", "fieldsh", "config.toml"),
			filepath.Join(home, ".config", "fieldsh", "config.yaml"),
		)
	}

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LogValue lets a Config be logged as a group.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("path", c.path),
		slog.String("socket", c.Socket),
		slog.Duration("command_timeout", c.CommandTimeout.Duration),
		slog.String("log_level", c.Log.Level),
	)
}

// expandHome replaces a leading "~" with the user's home directory.
func expandHome(path string) string {
	if path == "~" {
		return homeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}
