package fieldproto

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Line grammar limits.
const (
	// MaxChars is the capacity of a line buffer, terminator excluded.
	MaxChars = 80

	// MaxFields is the capacity of a field table. Fields past this count
	// are dropped.
	MaxFields = 5

	// Terminator is written over every delimiter and after the last
	// character of a line.
	Terminator byte = 0
)

// Protocol constants.
const (
	// CommandPrefix is the optional prefix for lines sent from a client to the server.
	CommandPrefix = "CMD:"

	// OKPrefix is the prefix for success responses.
	OKPrefix = "OK:"

	// ErrorPrefix is the prefix for error responses.
	ErrorPrefix = "ERR:"

	// InvalidCommandMessage is the reply for a line whose verb matches no command.
	InvalidCommandMessage = "Invalid Command"

	// SocketPathPrefix is the prefix for server socket paths.
	SocketPathPrefix = "/tmp/fieldsh-"

	// SocketPathSuffix is the suffix for server socket paths.
	SocketPathSuffix = ".sock"

	// MaxLineLength is the maximum allowed length for a protocol line in bytes.
	MaxLineLength = 4096

	// CommandTimeout is the default timeout for commands.
	CommandTimeout = 30 * time.Second

	// PingTimeout is the timeout used for ping during connection verification.
	PingTimeout = 1 * time.Second

	// ConnectionTimeout is the timeout for establishing connections.
	ConnectionTimeout = 5 * time.Second

	// ProtocolVersion is the version string for the socket protocol.
	ProtocolVersion = "1.0"
)

// SocketPath returns the socket path for a given process ID.
func SocketPath(pid int) string {
	return fmt.Sprintf("%s%d%s", SocketPathPrefix, pid, SocketPathSuffix)
}

// CurrentSocketPath returns the socket path for the current process.
func CurrentSocketPath() string {
	return SocketPath(os.Getpid())
}

// DiscoverSockets finds all fieldsh server sockets in /tmp.
// Returns socket paths sorted by modification time (most recent first).
func DiscoverSockets() ([]string, error) {
	pattern := filepath.Join("/tmp", "fieldsh-*.sock")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob sockets: %w", err)
	}

	type socketInfo struct {
		path    string
		modTime time.Time
	}
	sockets := make([]socketInfo, 0, len(matches))

	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue // Skip inaccessible sockets
		}
		if info.Mode()&os.ModeSocket == 0 {
			continue
		}
		sockets = append(sockets, socketInfo{
			path:    path,
			modTime: info.ModTime(),
		})
	}

	sort.Slice(sockets, func(i, j int) bool {
		return sockets[i].modTime.After(sockets[j].modTime)
	})

	result := make([]string, len(sockets))
	for i, s := range sockets {
		result[i] = s.path
	}

	return result, nil
}

// DiscoverSocket finds the most recently active server socket.
// Returns empty string if no socket is found.
func DiscoverSocket() string {
	sockets, err := DiscoverSockets()
	if err != nil || len(sockets) == 0 {
		return ""
	}
	return sockets[0]
}
