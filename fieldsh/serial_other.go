//go:build !linux

package main

import (
	"errors"
	"os"
)

// openSerial is only implemented on Linux.
func openSerial(device string, baud int) (*os.File, error) {
	return nil, errors.New("serial consoles are only supported on Linux")
}
