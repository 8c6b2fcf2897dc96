//go:build darwin

package logger

import "golang.org/x/sys/unix"

// isTerminal reports whether the file descriptor is attached to a tty.
func isTerminal(fd uintptr) bool {
	_, err := unix.IoctlGetTermios(int(fd), unix.TIOCGETA)
	return err == nil
}
