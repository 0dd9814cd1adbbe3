package gnssattach

import "syscall"

// Error wraps a package-level failure with the operation that caused it,
// mirroring the msg/err split the teacher package used for every syscall
// failure it reported.
type Error struct {
	msg string
	err error
}

func (e Error) Error() string {
	if e.msg != "" {
		msg := e.msg
		if e.err != nil {
			msg += ": " + e.err.Error()
		}
		return msg
	}
	if e.err != nil {
		return e.err.Error()
	}
	return ""
}

func (e Error) Unwrap() error {
	return e.err
}

func wrapErr(msg string, e error) error {
	if e == nil {
		return nil
	}
	return Error{
		msg: msg,
		err: e,
	}
}

var (
	// ErrClosed is returned by GetPacket/GetPacketTimeout when the session
	// holds no open fd, and by SetSpeed/SetRaw when no termios state was
	// captured. Write and Close treat a released fd as a no-op instead.
	ErrClosed = Error{"session already closed", syscall.EBADF}

	// ErrUnknownSource is returned by Open when the path's stat() result
	// does not match any recognized SourceType (§4.2).
	ErrUnknownSource = Error{msg: "unable to classify device path"}

	// ErrExclusionConflict is returned by Open when /proc shows more than
	// one process already holding the path open (§4.4 step 6, §7).
	ErrExclusionConflict = Error{msg: "device already opened by another process"}

	// ErrLookupExhausted is returned by the QRTR driver when a NEW_SERVER
	// lookup response with an all-zero server tuple arrives, meaning no PDS
	// service was advertised (§4.6).
	ErrLookupExhausted = Error{msg: "no PDS service found"}

	// ErrDuplicatePath names the refusal of a QRTR path already held by a
	// live session (§3 invariant 5, §8 item 6). Open does not return this
	// value: qrtr.Registry.Register reports the duplicate with its own
	// error, which Open wraps.
	ErrDuplicatePath = Error{msg: "QRTR path already open"}

	// ErrRegistryFull names the refusal when all 16 registry slots are
	// occupied (§4.6). Open does not return this value:
	// qrtr.Registry.Register reports the full registry with its own error,
	// which Open wraps.
	ErrRegistryFull = Error{msg: "QRTR registry full"}

	// ErrInvalidPDSPath names a "qrtr:" path shorter than the fixed
	// 6-character prefix, or one whose host id segment doesn't parse. Open
	// does not return this value: qrtr.Open reports those cases with its
	// own errors (qrtr.ErrInvalidPath for a short path), which Open wraps.
	ErrInvalidPDSPath = Error{msg: "invalid QRTR/PDS path"}
)
