//go:build !unix

package main

import "os"

// Best-effort fallback for non-Unix platforms.
// Note: this does not reliably capture runtime-level stderr output (like panics)
// the same way Dup2 does on Unix.
func redirectStdIO(path string) error {
	if path == "" {
		return nil
	}
	f, err := openAppendLog(path)
	if err != nil {
		return err
	}
	os.Stdout = f
	os.Stderr = f
	return nil
}
