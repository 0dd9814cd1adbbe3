package gnssattach

import (
	"errors"
	"time"

	"github.com/daedaluz/fdev/poll"
	"golang.org/x/sys/unix"
)

// GetPacket reads one chunk from the session (§5, §6 "get_packet"). For
// QRTR sessions this runs the PDS discovery/framing state machine; for
// every other source it's a bare non-blocking read into the lexer's
// input buffer, leaving interpretation to the external lexer collaborator
// (§1 out of scope). EAGAIN is translated to (0, nil) — "no packet yet",
// never an error (§7 "Transient read").
func (s *Session) GetPacket(ctx *Context) (int, error) {
	if s.fd == UnallocatedFD || s.fd == PlaceholdingFD {
		return 0, wrapErr("GetPacket", ErrClosed)
	}

	if s.sourceType == QRTR {
		return s.getPacketQRTR(ctx)
	}

	n, err := unix.Read(s.fd, s.lexer.InputBuffer)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return 0, nil
		}
		s.lastErr = wrapErr("GetPacket", err)
		return -1, s.lastErr
	}
	return n, nil
}

// GetPacketTimeout is GetPacket layered over a bounded wait for
// readability, for callers that would rather block up to timeout than
// poll in a tight loop (§5). It never applies to QRTR sessions — PDS
// discovery has its own connect/get-packet dispatch and doesn't sit on
// a plain readable fd the way a tty does.
func (s *Session) GetPacketTimeout(ctx *Context, timeout time.Duration) (int, error) {
	if s.fd == UnallocatedFD || s.fd == PlaceholdingFD {
		return 0, wrapErr("GetPacket", ErrClosed)
	}
	if s.sourceType == QRTR {
		return s.getPacketQRTR(ctx)
	}
	if err := poll.WaitInput(s.fd, timeout); err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.ETIMEDOUT) {
			return 0, nil
		}
		s.lastErr = wrapErr("GetPacketTimeout", err)
		return -1, s.lastErr
	}
	return s.GetPacket(ctx)
}
