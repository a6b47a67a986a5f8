//go:build linux

package system

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"
)

const (
	evKey = 0x01

	// Linux input-event-codes.h
	keyF4 = 62

	keyPressed = 1
	pollMillis = 250
)

// input_event = timeval + u16 type + u16 code + s32 value.
var (
	timevalSize = binary.Size(unix.Timeval{})
	eventSize   = timevalSize + 2 + 2 + 4
)

// StartExitOnF4 watches Linux evdev devices under /dev/input/event* and invokes onExit
// once when the F4 key is pressed.
//
// It is best-effort: if no input devices are available, it logs and returns.
func StartExitOnF4(ctx context.Context, logger Logger, onExit func()) {
	if onExit == nil {
		return
	}

	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil || len(paths) == 0 {
		if logger != nil {
			logger.Infof("input", "no evdev devices found for F4 exit")
		}
		return
	}

	var once sync.Once
	triggerExit := func() {
		once.Do(func() {
			if logger != nil {
				logger.Infof("input", "F4 pressed: exiting")
			}
			onExit()
		})
	}

	for _, path := range paths {
		go watchDevice(ctx, path, triggerExit)
	}
}

// watchDevice polls one evdev node until ctx is done, the device goes away
// or F4 is pressed.
func watchDevice(ctx context.Context, path string, onF4 func()) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return
	}
	f := os.NewFile(uintptr(fd), path)
	defer func() {
		_ = f.Close()
	}()

	buf := make([]byte, 4096)
	for ctx.Err() == nil {
		pollFds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		if _, err := unix.Poll(pollFds, pollMillis); err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}
		if pollFds[0].Revents&unix.POLLIN == 0 {
			continue
		}

		n, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return
		}
		if containsF4Press(buf[:n]) {
			onF4()
			return
		}
	}
}

// containsF4Press scans a read of whole input_event records for an F4 key
// down. A trailing partial record is ignored.
func containsF4Press(data []byte) bool {
	for off := 0; off+eventSize <= len(data); off += eventSize {
		rec := data[off : off+eventSize]
		// type and code are immediately after timeval.
		typ := binary.LittleEndian.Uint16(rec[timevalSize : timevalSize+2])
		code := binary.LittleEndian.Uint16(rec[timevalSize+2 : timevalSize+4])
		value := int32(binary.LittleEndian.Uint32(rec[timevalSize+4 : timevalSize+8]))
		if typ == evKey && code == keyF4 && value == keyPressed {
			return true
		}
	}
	return false
}
