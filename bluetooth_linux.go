//go:build linux

package gnssattach

import (
	"fmt"
	"strconv"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

// sysAFBluetooth / sysBTProtoRFCOMM mirror bluetooth.h — x/sys/unix
// doesn't carry RFCOMM-specific constants, only the generic socket
// families some platforms define (and not reliably across GOOS), so
// these are spelled out the way the kernel headers do.
const (
	sysAFBluetooth    = 31
	sysBTProtoRFCOMM  = 3
	bluetoothChannel  = 1 // gpsd always dials RFCOMM channel 1
)

// isBluetoothAddress reports whether path looks like a BD address
// ("XX:XX:XX:XX:XX:XX", six colon-separated hex octets), the same shape
// bachk(3) validates in gpsd_serial_open before trying the BlueZ path.
func isBluetoothAddress(path string) bool {
	_, err := parseBDAddr(path)
	return err == nil
}

// parseBDAddr parses a BD address string into wire order. BlueZ's
// bdaddr_t stores the six octets reversed relative to how they're
// printed, so "AA:BB:CC:DD:EE:FF" becomes {FF EE DD CC BB AA}.
func parseBDAddr(s string) ([6]byte, error) {
	var addr [6]byte
	parts := strings.Split(s, ":")
	if len(parts) != 6 {
		return addr, fmt.Errorf("bluetooth: %q is not a BD address", s)
	}
	for i, p := range parts {
		if len(p) != 2 {
			return addr, fmt.Errorf("bluetooth: %q is not a BD address", s)
		}
		v, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return addr, fmt.Errorf("bluetooth: %q is not a BD address", s)
		}
		addr[5-i] = byte(v)
	}
	return addr, nil
}

// openBluetooth opens an RFCOMM socket, sets it non-blocking, and
// connects it to path's BD address on channel 1, mirroring
// gpsd_serial_open's ENABLE_BLUEZ branch. EINPROGRESS/EAGAIN from
// connect are tolerated on the now-non-blocking socket (gpsd logs and
// continues rather than failing the open).
func openBluetooth(path string) (int, error) {
	addr, err := parseBDAddr(path)
	if err != nil {
		return UnallocatedFD, err
	}

	fd, _, errno := unix.Syscall(unix.SYS_SOCKET, sysAFBluetooth, unix.SOCK_STREAM, sysBTProtoRFCOMM)
	if errno != 0 {
		return UnallocatedFD, fmt.Errorf("bluetooth: socket: %w", errno)
	}

	if err := unix.SetNonblock(int(fd), true); err != nil {
		unix.Close(int(fd))
		return UnallocatedFD, fmt.Errorf("bluetooth: set nonblock: %w", err)
	}

	var raw [10]byte
	raw[0] = byte(sysAFBluetooth)
	raw[1] = byte(sysAFBluetooth >> 8)
	copy(raw[2:8], addr[:])
	raw[8] = bluetoothChannel

	_, _, errno = unix.Syscall(unix.SYS_CONNECT, fd,
		uintptr(unsafe.Pointer(&raw[0])), uintptr(len(raw)))
	if errno != 0 && errno != unix.EINPROGRESS && errno != unix.EAGAIN {
		unix.Close(int(fd))
		return UnallocatedFD, fmt.Errorf("bluetooth: connect: %w", errno)
	}

	return int(fd), nil
}
