// Package terminal detects whether the installer can prompt the user.
package terminal

import (
	"os"

	"golang.org/x/term"
)

// IsInteractive reports whether stdin and stdout are both interactive terminals.
func IsInteractive() bool {
	return Attached(os.Stdin, os.Stdout)
}

// Attached reports whether every file is a terminal. Nil files never are.
func Attached(files ...*os.File) bool {
	if len(files) == 0 {
		return false
	}
	for _, f := range files {
		if f == nil || !term.IsTerminal(int(f.Fd())) {
			return false
		}
	}
	return true
}
