package qrtr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// PathPrefixLen is QMI_PDS_PATH_STARTS: the hostid substring of a PDS
// path begins at this byte offset, independent of how many characters of
// literal "qrtr:" a caller's routing prefix test uses (driver_pds.c's own
// QMI_PDS_PATH_STARTS is 6; see DESIGN.md for the apparent mismatch with
// the 5-character "qrtr:" literal).
const PathPrefixLen = 6

var (
	// ErrInvalidPath is returned when a path is too short to contain a
	// hostid substring at PathPrefixLen.
	ErrInvalidPath = errors.New("qrtr: invalid PDS path")
	// ErrNoService is returned when the lookup exhausts without ever
	// seeing a matching NEW_SERVER before the all-zero end-of-lookup
	// sentinel.
	ErrNoService = errors.New("qrtr: no PDS service found")
)

// Conn is one open QRTR/PDS endpoint: the control-lookup socket (later
// connected to the discovered server), the parsed hostid filter, and the
// per-connection QMI transaction counter. It has no termios dependency
// at all — the serial core treats it as an opaque transport the way it
// treats a tty fd.
type Conn struct {
	fd     int
	local  sockaddrQrtr
	hostID int // -1 means "any"

	node uint32
	port uint32

	ready bool
	txn   txnCounter
}

// Open parses path (a "qrtr:<hostid>" string, hostid either a decimal
// node number or the literal "any"), opens the AF_QIPCRTR socket and
// sends the NEW_LOOKUP request for the PDS service. It does not block
// for the reply — driver_pds.c's own qmi_pds_open only sends the lookup
// and returns the fd; the reply is read lazily by the first GetPacket
// call (Connect).
func Open(path string) (*Conn, error) {
	if len(path) < PathPrefixLen {
		return nil, ErrInvalidPath
	}
	hostname := path[PathPrefixLen:]
	hostID := -1
	if hostname != "any" {
		n, err := strconv.Atoi(hostname)
		if err != nil {
			return nil, fmt.Errorf("qrtr: invalid node id %q: %w", hostname, err)
		}
		hostID = n
	}

	fd, local, err := openSocket()
	if err != nil {
		return nil, err
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("qrtr: set nonblock: %w", err)
	}

	lookup := ctrlPacket{cmd: typeNewLookup, service: pdsServiceID, instance: pdsVersion}
	ctrlDst := sockaddrQrtr{node: local.node, port: portCtrl}
	if _, err := sendTo(fd, ctrlDst, lookup.marshal()); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("qrtr: send lookup: %w", err)
	}

	return &Conn{fd: fd, local: local, hostID: hostID}, nil
}

// FD is the underlying socket descriptor, exposed so the core session
// can select/poll on it the same as a tty fd.
func (c *Conn) FD() int { return c.fd }

// Ready reports whether Connect has completed the lookup and bound the
// socket to a discovered PDS server.
func (c *Conn) Ready() bool { return c.ready }

// Connect drains one pending datagram on the control socket. It ignores
// anything not addressed from QRTR_PORT_CTRL, returns ErrNoService on
// the end-of-lookup sentinel, silently skips servers that don't match
// the requested hostid, and on a match connects the socket to the
// discovered node/port and marks the connection ready. Mirrors
// qmi_pds_connect exactly, including its "return 1" no-op paths for
// messages that should just be ignored (reported here as (false, nil)).
func (c *Conn) Connect() (matched bool, err error) {
	buf := make([]byte, 256)
	n, from, err := recvFrom(c.fd, buf)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return false, nil
		}
		return false, fmt.Errorf("qrtr: recv lookup reply: %w", err)
	}
	if from.port != portCtrl {
		return false, nil
	}
	pkt, perr := parseCtrlPacket(buf[:n])
	if perr != nil {
		return false, nil
	}
	if pkt.cmd != typeNewServer {
		return false, nil
	}
	if pkt.service == 0 && pkt.instance == 0 && pkt.node == 0 && pkt.port == 0 {
		return false, ErrNoService
	}
	if c.hostID != -1 && c.hostID != int(pkt.node) {
		return false, nil
	}

	c.node = pkt.node
	c.port = pkt.port

	if err := connectTo(c.fd, sockaddrQrtr{node: c.node, port: c.port}); err != nil {
		return false, fmt.Errorf("qrtr: connect to PDS service: %w", err)
	}
	c.ready = true
	return true, nil
}

// GetPacket reads one datagram. If the connection isn't ready yet, it
// delegates to Connect (qmi_pds_get's dispatch between connect/get_packet
// phases). Once ready, non-NMEA-indication datagrams are discarded
// (nmea == nil, ok == true, to mean "read something, nothing to report"),
// EAGAIN reports (nil, true, nil) the same as the C driver's outbuflen=0
// return-1 path, and a matching indication returns its NMEA TLV payload.
func (c *Conn) GetPacket() (nmea []byte, ok bool, err error) {
	if !c.ready {
		matched, cerr := c.Connect()
		if cerr != nil {
			return nil, false, cerr
		}
		if matched {
			return nil, true, nil
		}
		return nil, true, nil
	}

	buf := make([]byte, 2048)
	n, _, err := recvFrom(c.fd, buf)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return nil, true, nil
		}
		return nil, false, fmt.Errorf("qrtr: recv packet: %w", err)
	}

	hdr, okHdr := parseQMIHeader(buf[:n])
	if !okHdr || hdr.typ != qmiIndication || hdr.msg != msgEventNMEA {
		return nil, true, nil
	}

	payload := buf[qmiHeaderSize:n]
	value, found := walkNMEATLV(payload)
	if !found {
		return nil, true, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

// Reactivate sends REG_EVENTS (with the NMEA event mask) followed by
// START, the pair driver_pds.c's event_reactivate case sends together.
// A no-op before Connect has completed (ready == false).
func (c *Conn) Reactivate() error {
	if !c.ready {
		return nil
	}
	if _, err := unix.Write(c.fd, buildRegEvents(c.txn.next())); err != nil {
		return fmt.Errorf("qrtr: send REG_EVENTS: %w", err)
	}
	if _, err := unix.Write(c.fd, buildStart(c.txn.next())); err != nil {
		return fmt.Errorf("qrtr: send START: %w", err)
	}
	return nil
}

// Deactivate sends STOP. A no-op before Connect has completed.
func (c *Conn) Deactivate() error {
	if !c.ready {
		return nil
	}
	if _, err := unix.Write(c.fd, buildStop(c.txn.next())); err != nil {
		return fmt.Errorf("qrtr: send STOP: %w", err)
	}
	return nil
}

// Close releases the socket. Safe to call once; a second call is a
// harmless no-op.
func (c *Conn) Close() error {
	if c.fd < 0 {
		return nil
	}
	err := unix.Close(c.fd)
	c.fd = -1
	return err
}

// HasPrefix reports whether path is routed to the QRTR/PDS driver. This
// is the "qrtr:" literal-prefix test (5 characters) — a separate concern
// from PathPrefixLen's 6-byte hostid offset; see DESIGN.md.
func HasPrefix(path string) bool {
	return strings.HasPrefix(path, "qrtr:")
}

