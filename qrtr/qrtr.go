// Package qrtr implements just enough of Qualcomm's QRTR (IPC router)
// datagram protocol to find and talk to a PDS (Position Determination
// Service) endpoint over it: socket creation, the service lookup
// handshake, and raw sendto/recvfrom. It has no dependency on termios or
// on the serial core — a "qrtr:" path never touches a tty at all — so it
// lives in its own package the way the teacher package keeps its SPI
// ioctls in their own sub-package.
//
// golang.org/x/sys/unix has no native sockaddr type for AF_QIPCRTR (it
// isn't a mainline socket family anyone outside the Qualcomm/Linaro tree
// uses), so this package talks to the kernel with raw syscalls instead of
// the unix.Sockaddr interface, the same way low-level libraries for any
// address family x/sys/unix doesn't special-case end up doing it.
package qrtr

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// sysAFQIPCRTR is AF_QIPCRTR from the Linux kernel's
// include/uapi/linux/qrtr.h. x/sys/unix carries no constant for it.
const sysAFQIPCRTR = 42

// QRTR control packet types, from include/uapi/linux/qrtr.h.
const (
	typeData      = 1
	typeHello     = 2
	typeBye       = 3
	typeNewServer = 4
	typeDelServer = 5
	typeDelClient = 6
	typeResumeTx  = 7
	typeExit      = 8
	typePing      = 9
	typeNewLookup = 10
	typeDelLookup = 11
)

// portCtrl is the well-known control port every QRTR node answers
// lookups on (QRTR_PORT_CTRL).
const portCtrl = 0xFFFFFFFF

// sockaddrQrtr mirrors struct sockaddr_qrtr: family, node, port. Laid out
// and marshaled by hand since it can't satisfy unix.Sockaddr (that
// interface's single method is unexported, so only x/sys/unix itself can
// implement it).
type sockaddrQrtr struct {
	node uint32
	port uint32
}

func (s sockaddrQrtr) raw() [12]byte {
	var buf [12]byte
	binary.LittleEndian.PutUint16(buf[0:2], sysAFQIPCRTR)
	binary.LittleEndian.PutUint32(buf[4:8], s.node)
	binary.LittleEndian.PutUint32(buf[8:12], s.port)
	return buf
}

func parseSockaddrQrtr(buf []byte) (sockaddrQrtr, error) {
	if len(buf) < 12 {
		return sockaddrQrtr{}, fmt.Errorf("qrtr: short sockaddr (%d bytes)", len(buf))
	}
	return sockaddrQrtr{
		node: binary.LittleEndian.Uint32(buf[4:8]),
		port: binary.LittleEndian.Uint32(buf[8:12]),
	}, nil
}

// ctrlPacket is the 20-byte QRTR control packet: a command word followed
// by a service/instance/node/port tuple (the "server" variant of the
// union; lookup requests and NEW_SERVER replies both use this shape).
type ctrlPacket struct {
	cmd      uint32
	service  uint32
	instance uint32
	node     uint32
	port     uint32
}

func (p ctrlPacket) marshal() []byte {
	buf := make([]byte, 20)
	binary.LittleEndian.PutUint32(buf[0:4], p.cmd)
	binary.LittleEndian.PutUint32(buf[4:8], p.service)
	binary.LittleEndian.PutUint32(buf[8:12], p.instance)
	binary.LittleEndian.PutUint32(buf[12:16], p.node)
	binary.LittleEndian.PutUint32(buf[16:20], p.port)
	return buf
}

func parseCtrlPacket(buf []byte) (ctrlPacket, error) {
	if len(buf) < 20 {
		return ctrlPacket{}, fmt.Errorf("qrtr: short control packet (%d bytes)", len(buf))
	}
	return ctrlPacket{
		cmd:      binary.LittleEndian.Uint32(buf[0:4]),
		service:  binary.LittleEndian.Uint32(buf[4:8]),
		instance: binary.LittleEndian.Uint32(buf[8:12]),
		node:     binary.LittleEndian.Uint32(buf[12:16]),
		port:     binary.LittleEndian.Uint32(buf[16:20]),
	}, nil
}

// openSocket creates an AF_QIPCRTR/SOCK_DGRAM socket and reads back, via
// getsockname, the local node/port the kernel assigned to it (no explicit
// bind), mirroring driver_pds.c's pds_control_socket_open.
func openSocket() (fd int, local sockaddrQrtr, err error) {
	fd, _, errno := unix.Syscall(unix.SYS_SOCKET, sysAFQIPCRTR, unix.SOCK_DGRAM, 0)
	if errno != 0 {
		return -1, sockaddrQrtr{}, fmt.Errorf("qrtr: socket: %w", errno)
	}
	var raw [12]byte
	rawLen := uint32(len(raw))
	_, _, errno = unix.Syscall(unix.SYS_GETSOCKNAME, fd,
		uintptr(unsafe.Pointer(&raw[0])), uintptr(unsafe.Pointer(&rawLen)))
	if errno != 0 {
		unix.Close(int(fd))
		return -1, sockaddrQrtr{}, fmt.Errorf("qrtr: getsockname: %w", errno)
	}
	local, err = parseSockaddrQrtr(raw[:])
	if err != nil {
		unix.Close(int(fd))
		return -1, sockaddrQrtr{}, err
	}
	return int(fd), local, nil
}

func sendTo(fd int, dst sockaddrQrtr, payload []byte) (int, error) {
	raw := dst.raw()
	var payloadPtr unsafe.Pointer
	if len(payload) > 0 {
		payloadPtr = unsafe.Pointer(&payload[0])
	}
	n, _, errno := unix.Syscall6(unix.SYS_SENDTO, uintptr(fd),
		uintptr(payloadPtr), uintptr(len(payload)), 0,
		uintptr(unsafe.Pointer(&raw[0])), uintptr(len(raw)))
	if errno != 0 {
		return 0, errno
	}
	return int(n), nil
}

// connectTo binds fd's peer address to dst. Used once the lookup
// handshake resolves a server's node/port, turning the lookup socket
// into a connected data socket (qmi_pds_connect's connect(2) call).
func connectTo(fd int, dst sockaddrQrtr) error {
	raw := dst.raw()
	_, _, errno := unix.Syscall(unix.SYS_CONNECT, uintptr(fd),
		uintptr(unsafe.Pointer(&raw[0])), uintptr(len(raw)))
	if errno != 0 {
		return errno
	}
	return nil
}

func recvFrom(fd int, buf []byte) (n int, from sockaddrQrtr, err error) {
	var raw [12]byte
	rawLen := uint32(len(raw))
	var bufPtr unsafe.Pointer
	if len(buf) > 0 {
		bufPtr = unsafe.Pointer(&buf[0])
	}
	rn, _, errno := unix.Syscall6(unix.SYS_RECVFROM, uintptr(fd),
		uintptr(bufPtr), uintptr(len(buf)), 0,
		uintptr(unsafe.Pointer(&raw[0])), uintptr(unsafe.Pointer(&rawLen)))
	if errno != 0 {
		return 0, sockaddrQrtr{}, errno
	}
	from, err = parseSockaddrQrtr(raw[:])
	return int(rn), from, err
}
