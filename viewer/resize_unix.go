//go:build !windows

package viewer

import (
	"os"
	"os/signal"
	"syscall"
)

// notifyResize delivers a tick whenever the terminal window changes size.
// The returned stop function releases the signal registration.
func notifyResize() (<-chan os.Signal, func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGWINCH)
	return ch, func() { signal.Stop(ch) }
}
