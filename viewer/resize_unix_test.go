//go:build !windows

package viewer

import (
	"syscall"
	"testing"
	"time"
)

func TestNotifyResize_DeliversWindowChanges(t *testing.T) {
	ch, stop := notifyResize()
	defer stop()

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGWINCH); err != nil {
		t.Fatalf("unable to raise SIGWINCH: %v", err)
	}
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("window change signal never delivered")
	}
}
