// =============================================================================
// main.go - fieldsh Command-Line Entry Point
// =============================================================================
//
// fieldsh is a small command shell. Each input line is split into at most
// five alpha or numeric fields and matched against a command table:
//
//	set <a> <b>     prints the sum of two numbers
//	alert <text>    echoes its first argument
//
// Anything else answers "Invalid Command".
//
// Usage:
//
//	fieldsh                           REPL on a local dispatcher
//	fieldsh --raw                     Character-at-a-time console (raw TTY)
//	fieldsh --socket /tmp/x.sock      REPL against a running server
//	fieldsh --connect                 Find a server, or launch one
//	fieldsh serve [--ws 127.0.0.1:8765]
//	fieldsh serial --device /dev/ttyACM0 --baud 115200
//	fieldsh version
//
// =============================================================================

// GO CONCEPT: Packages
// --------------------
// The package name "main" tells the compiler this is an executable. A main
// package must contain func main() as the entry point. The reusable parts
// (tokenizer, dispatcher, transports) live in the fieldproto library package
// so other programs can embed them.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fieldsh/fieldsh/fieldproto"
)

// =============================================================================
// Version Information
// =============================================================================

const (
	// version is the current fieldsh version.
	version = "0.3.0"

	// appName is the application name.
	appName = "fieldsh"

	// copyright is the copyright notice.
	copyright = "Copyright (c) 2026"
)

// fullTitle returns the application name with version.
func fullTitle() string {
	return fmt.Sprintf("%s v%s", appName, version)
}

// welcomeBanner returns the text printed when an interactive REPL starts.
//
// GO CONCEPT: Raw String Literals
// --------------------------------
// Backtick strings are raw: no escape processing, and they may span lines.
// They are convenient for multi-line text such as banners and usage.
func welcomeBanner() string {
	return fmt.Sprintf(`%s - field command shell
%s

Type '.help' for available commands.
Type '.quit' to exit.
`, fullTitle(), copyright)
}

// =============================================================================
// Command-Line Arguments
// =============================================================================

// arguments holds the parsed command-line flags shared by every command.
//
// GO CONCEPT: Flags Bound to Struct Fields
// ----------------------------------------
// cobra (via pflag) writes parsed values straight into the variables passed
// to StringVar/BoolVar. Binding them to fields of one struct keeps all
// flag state in a single place that tests can inspect.
type arguments struct {
	configPath string
	logLevel   string
	logFormat  string
	plain      bool

	socketPath string
	connect    bool
	raw        bool
}

// app is the state shared by all commands once flags are parsed.
type app struct {
	args   arguments
	cfg    *Config
	logger *slog.Logger
}

// newRootCmd builds the command tree around a.
func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "fieldsh",
		Short: "Field command shell",
		Long: `fieldsh reads command lines, splits each into at most five alpha or
numeric fields, and runs the matching command.

Commands:
  set <a> <b>     Print the sum of two numbers
  alert <text>    Echo the first argument

By default the REPL runs commands in-process. Use --socket or --connect to
send them to a fieldsh server instead, or --raw for a character-at-a-time
console that behaves like a serial terminal.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runInteractive(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.args.configPath, "config", "", "config file (default: $FIELDSH_CONFIG, ./fieldsh.toml, ~/.config/fieldsh/config.toml)")
	pf.StringVar(&a.args.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&a.args.logFormat, "log-format", "", "log format: text, json")
	pf.BoolVar(&a.args.plain, "plain", false, "plain output without colors")

	f := root.Flags()
	f.StringVar(&a.args.socketPath, "socket", "", "send commands to the server at this socket path")
	f.BoolVar(&a.args.connect, "connect", false, "connect to a running server, launching one if none is found")
	f.BoolVar(&a.args.raw, "raw", false, "raw terminal console with local echo and backspace handling")
	root.MarkFlagsMutuallyExclusive("raw", "socket")
	root.MarkFlagsMutuallyExclusive("raw", "connect")

	root.AddCommand(newServeCmd(a), newSerialCmd(a), newVersionCmd())
	return root
}

// setup loads the configuration, applies flag overrides and builds the
// logger. It runs before every command.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := loadConfig(a.args.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = a.args.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = a.args.logFormat
	}
	if flags.Changed("plain") {
		cfg.Plain = a.args.plain
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	logger.Debug("configuration loaded", slog.Any("config", cfg))

	a.cfg = cfg
	a.logger = logger
	return nil
}

// =============================================================================
// Interactive Mode
// =============================================================================

// runInteractive runs the REPL, or the raw console with --raw.
func (a *app) runInteractive(cmd *cobra.Command) error {
	dispatcher := fieldproto.NewDefaultDispatcher()

	if a.args.raw {
		return runRawConsole(cmd.Context(), dispatcher, a.cfg.Prompt, a.logger)
	}

	exec, cleanup, err := a.newExecutor(dispatcher)
	if err != nil {
		return err
	}
	setupSignalHandler(cleanup)

	st := newStyles(a.cfg.Plain || !term.IsTerminal(int(os.Stdout.Fd())))

	editor := NewLineEditor(a.cfg.HistoryPath(), a.cfg.History.Size)
	defer editor.Close()

	if editor.IsInteractive() {
		fmt.Print(st.Title(welcomeBanner()))
		fmt.Println()
	}

	r := &repl{
		exec:     exec,
		editor:   editor,
		out:      os.Stdout,
		errOut:   os.Stderr,
		styles:   st,
		prompt:   a.cfg.Prompt,
		commands: dispatcher.Commands(),
		logger:   a.logger,
	}
	err = r.run(cmd.Context())
	cleanup()
	return err
}

// newExecutor picks the local dispatcher or a server connection. The
// returned cleanup disconnects and stops a server this session launched.
func (a *app) newExecutor(dispatcher *fieldproto.Dispatcher) (executor, func(), error) {
	socketPath := a.args.socketPath
	if socketPath == "" {
		socketPath = a.cfg.Socket
	}
	if socketPath == "" && !a.args.connect {
		return localExecutor{dispatcher: dispatcher}, func() {}, nil
	}

	var launchedPid int
	if socketPath == "" {
		socketPath = fieldproto.DiscoverSocket()
	}
	if socketPath == "" {
		fmt.Println("No running fieldsh server found. Launching...")

		socketPath = fieldproto.CurrentSocketPath()
		pid, err := launchServer(socketPath, a.cfg.Path())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to start server: %w", err)
		}
		launchedPid = pid
		fmt.Printf("Server started (PID: %d)\n", launchedPid)
	}

	client := fieldproto.NewClient()
	fmt.Printf("Connecting to %s...\n", socketPath)
	if err := client.Connect(socketPath); err != nil {
		stopProcess(launchedPid)
		return nil, nil, fmt.Errorf("failed to connect to server: %w", err)
	}
	client.SetDisconnectHandler(func(err error) {
		fmt.Fprintf(os.Stderr, "\nDisconnected from server: %v\n", err)
	})

	cleanup := func() {
		client.Disconnect()
		stopProcess(launchedPid)
	}
	return remoteExecutor{client: client, timeout: a.cfg.CommandTimeout.Duration}, cleanup, nil
}

// stopProcess sends SIGTERM to pid. Zero means no process.
func stopProcess(pid int) {
	if pid <= 0 {
		return
	}
	if proc, err := os.FindProcess(pid); err == nil {
		proc.Signal(syscall.SIGTERM)
	}
}

// =============================================================================
// Subcommands
// =============================================================================

func newServeCmd(a *app) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve commands on a Unix socket (and optionally a websocket)",
		Long: `Serve the command dispatcher to fieldsh clients.

Each connection sends one command line per protocol line (an optional
"CMD:" prefix is accepted) and receives "OK:<reply>" or "ERR:<message>".
With --ws the same commands are answered as websocket text messages.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("socket") {
				opts.socketPath = a.cfg.Server.Socket
			}
			if opts.socketPath == "" {
				opts.socketPath = fieldproto.CurrentSocketPath()
			}
			if !cmd.Flags().Changed("ws") {
				opts.webSocketAddr = a.cfg.Server.WebSocket
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd.OutOrStdout(), opts, fieldproto.NewDefaultDispatcher(), a.logger)
		},
	}
	cmd.Flags().StringVar(&opts.socketPath, "socket", "", "Unix socket path (default /tmp/fieldsh-<pid>.sock)")
	cmd.Flags().StringVar(&opts.webSocketAddr, "ws", "", "also serve websockets on this address, e.g. 127.0.0.1:8765")
	return cmd
}

func newSerialCmd(a *app) *cobra.Command {
	var opts serialOptions

	cmd := &cobra.Command{
		Use:   "serial",
		Short: "Serve commands on a serial device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if !flags.Changed("device") {
				opts.device = a.cfg.Serial.Device
			}
			if !flags.Changed("baud") {
				opts.baud = a.cfg.Serial.Baud
			}
			if !flags.Changed("echo") {
				opts.echo = a.cfg.SerialEcho()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runSerial(ctx, opts, fieldproto.NewDefaultDispatcher(), a.logger)
		},
	}
	cmd.Flags().StringVar(&opts.device, "device", "", "serial device (default from config, /dev/ttyACM0)")
	cmd.Flags().IntVar(&opts.baud, "baud", 0, "baud rate (default from config, 115200)")
	cmd.Flags().BoolVar(&opts.echo, "echo", true, "echo typed characters back to the device")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, fullTitle())
			fmt.Fprintf(out, "  Protocol:   %s\n", fieldproto.ProtocolVersion)
			fmt.Fprintf(out, "  Go Version: %s\n", runtime.Version())
			fmt.Fprintf(out, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// =============================================================================
// Error Output and Signals
// =============================================================================

// printError prints an error message to stderr.
func printError(message string) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
}

// setupSignalHandler runs cleanup and exits on SIGINT or SIGTERM.
//
// GO CONCEPT: Signal Handling with Channels
// ------------------------------------------
// signal.Notify delivers OS signals on a channel. A goroutine blocks on the
// channel, so the main flow keeps running until a signal actually arrives.
// The channel is buffered (capacity 1) so a signal is not lost if it arrives
// before the goroutine is ready.
func setupSignalHandler(cleanup func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println()
		cleanup()
		os.Exit(0)
	}()
}

func main() {
	if err := newRootCmd(&app{}).ExecuteContext(context.Background()); err != nil {
		printError(err.Error())
		os.Exit(1)
	}
}
