package gnssattach

import (
	ioctl "github.com/daedaluz/goioctl"
	"unsafe"
)

// ioctl request numbers, kept from the teacher's ioctl_linux.go. Trimmed to
// the subset this subsystem actually issues: termios get/set, flush/drain,
// exclusion lock, and the PTY bookkeeping ioctls used by the test-fixture
// PTY helper. RS-485 configuration, modem-line control, break signaling and
// the legacy BOTHER/Termios2 path are dropped — nothing in this domain
// touches modem control lines or RS-485 framing, see DESIGN.md.
var (
	tcgets = uintptr(0x5401)
	tcsets = uintptr(0x5402)

	tcsbrk = uintptr(0x5409) // arg==1 behaves like tcdrain(3)
	tcflsh = uintptr(0x540B)

	tiocexcl = uintptr(0x540C)
	tiocnxcl = uintptr(0x540D)

	tiocswinsz = uintptr(0x5414)

	tiocgptn   = ioctl.IOR('T', 0x30, unsafe.Sizeof(uint32(0)))
	tiocsptlck = ioctl.IOW('T', 0x31, unsafe.Sizeof(int32(0)))
	tiocgptlck = ioctl.IOR('T', 0x39, unsafe.Sizeof(int32(0)))
)
