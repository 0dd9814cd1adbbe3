//go:build linux

package gnssattach

import (
	"unsafe"

	ioctl "github.com/daedaluz/goioctl"
)

// Raw fd-level termios/ioctl operations, ported from the teacher
// package's (*Port) GetAttr/SetAttr/Flush/Drain methods but taking a
// bare fd instead of a Port — Session owns the fd directly rather than
// wrapping it in the teacher's richer Port type, since this subsystem
// never needs Port's SPI/modem-line/RS485 surface.

func tcGetAttr(fd int) (*Termios, error) {
	t := &Termios{}
	err := ioctl.Ioctl(uintptr(fd), tcgets, uintptr(unsafe.Pointer(t)))
	if err != nil {
		return nil, err
	}
	return t, nil
}

func tcSetAttr(fd int, when Action, t *Termios) error {
	return ioctl.Ioctl(uintptr(fd), tcsets+uintptr(when), uintptr(unsafe.Pointer(t)))
}

func tcFlush(fd int, queue Queue) error {
	return ioctl.Ioctl(uintptr(fd), tcflsh, uintptr(queue))
}

// tcDrain waits for all output to be transmitted (tcsbrk with a nonzero
// arg behaves like POSIX tcdrain(3), per tty_ioctl(4)).
func tcDrain(fd int) error {
	return ioctl.Ioctl(uintptr(fd), tcsbrk, 1)
}

func tiocExcl(fd int) error {
	return ioctl.Ioctl(uintptr(fd), tiocexcl, 0)
}

func tiocNxcl(fd int) error {
	return ioctl.Ioctl(uintptr(fd), tiocnxcl, 0)
}
