// =============================================================================
// serial.go - Serial Console (fieldsh serial)
// =============================================================================
//
// `fieldsh serial` answers command lines arriving on a serial device, the
// way a microcontroller console does: 8N1, raw mode, characters echoed back
// to the terminal on the other end, replies terminated by "\r\n".
//
// Opening and configuring the device is platform code (serial_linux.go,
// serial_other.go); this file holds the portable part.
//
// =============================================================================

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fieldsh/fieldsh/fieldproto"
)

// supportedBaudRates lists the rates accepted by `fieldsh serial`.
var supportedBaudRates = []int{9600, 19200, 38400, 57600, 115200, 230400}

// isSupportedBaud reports whether baud is in supportedBaudRates.
func isSupportedBaud(baud int) bool {
	for _, b := range supportedBaudRates {
		if b == baud {
			return true
		}
	}
	return false
}

// serialOptions configures runSerial.
type serialOptions struct {
	device string
	baud   int
	echo   bool
}

// runSerial opens the device and serves d on it until ctx is done or the
// device reports end of input.
func runSerial(ctx context.Context, opts serialOptions, d *fieldproto.Dispatcher, logger *slog.Logger) error {
	if !isSupportedBaud(opts.baud) {
		return fmt.Errorf("unsupported baud rate %d", opts.baud)
	}

	port, err := openSerial(opts.device, opts.baud)
	if err != nil {
		return fmt.Errorf("open %s: %w", opts.device, err)
	}
	defer port.Close()

	// Closing the port is the only way to interrupt a blocked read.
	stop := context.AfterFunc(ctx, func() { port.Close() })
	defer stop()

	logger.Info("serial console started",
		slog.String("device", opts.device),
		slog.Int("baud", opts.baud),
		slog.Bool("echo", opts.echo))

	err = fieldproto.ServeStream(ctx, port, port, d, fieldproto.StreamOptions{
		Echo:    opts.echo,
		Newline: "\r\n",
		Logger:  logger,
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}
