//go:build windows

package viewer

import "os"

// Windows consoles have no resize signal. A nil channel never fires, so the
// size is only re-read when a key arrives.
func notifyResize() (<-chan os.Signal, func()) {
	return nil, func() {}
}
