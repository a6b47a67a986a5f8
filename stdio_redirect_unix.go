//go:build unix

package main

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// redirectStdIO points fds 1 and 2 at path so panics and prints from any
// goroutine end up in the file.
func redirectStdIO(path string) error {
	if path == "" {
		return nil
	}
	f, err := openAppendLog(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, std := range []*os.File{os.Stdout, os.Stderr} {
		if err := unix.Dup2(int(f.Fd()), int(std.Fd())); err != nil {
			return fmt.Errorf("dup2 %s onto %s: %w", path, std.Name(), err)
		}
	}
	return nil
}
