//go:build linux

package gnssattach

import (
	"fmt"
	"unsafe"

	ioctl "github.com/daedaluz/goioctl"
	"golang.org/x/sys/unix"
)

// OpenPTY opens a fresh pty master/slave pair for tests and fixtures
// (§1.4) — gpsd itself never allocates a pty (it only opens an existing
// slave), but the teacher package's own pty_linux.go precedent is a
// ready-made way to exercise Classify/Open/SetSpeed against a real tty
// without GNSS hardware.
func OpenPTY() (masterFD int, slavePath string, err error) {
	master, err := unix.Open("/dev/ptmx", unix.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return UnallocatedFD, "", fmt.Errorf("OpenPTY: open /dev/ptmx: %w", err)
	}

	var locked int32
	if err := ioctl.Ioctl(uintptr(master), tiocgptlck, uintptr(unsafe.Pointer(&locked))); err == nil && locked != 0 {
		var unlock int32
		if err := ioctl.Ioctl(uintptr(master), tiocsptlck, uintptr(unsafe.Pointer(&unlock))); err != nil {
			unix.Close(master)
			return UnallocatedFD, "", fmt.Errorf("OpenPTY: unlock: %w", err)
		}
	}

	var ptyNum uint32
	if err := ioctl.Ioctl(uintptr(master), tiocgptn, uintptr(unsafe.Pointer(&ptyNum))); err != nil {
		unix.Close(master)
		return UnallocatedFD, "", fmt.Errorf("OpenPTY: get pty number: %w", err)
	}

	// A GNSS source is never a human terminal, but leaving the window
	// size at its all-zero default confuses some terminal-aware test
	// harnesses; stamp a plausible default the way an interactive
	// allocator would.
	ws := Winsize{Row: 24, Col: 80}
	_ = ioctl.Ioctl(uintptr(master), tiocswinsz, uintptr(unsafe.Pointer(&ws)))

	return master, fmt.Sprintf("/dev/pts/%d", ptyNum), nil
}
