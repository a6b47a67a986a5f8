//go:build !linux

package system

import (
	"context"
	"errors"
)

var errUnsupported = errors.New("console control needs linux")

func SetGraphicsMode() error { return errUnsupported }
func RestoreTextMode() error { return errUnsupported }
func HideCursor() error      { return errUnsupported }
func ShowCursor() error      { return errUnsupported }

// StartExitOnF4 has no evdev devices to watch outside linux.
func StartExitOnF4(ctx context.Context, logger Logger, onExit func()) {
	if logger != nil {
		logger.Infof("input", "F4 exit is only available on linux")
	}
}
