//go:build linux

package gnssattach

import (
	"time"

	"github.com/daedaluz/gnssattach/internal/nmealexer"
	"github.com/daedaluz/gnssattach/qrtr"
	"golang.org/x/sys/unix"
)

// Open acquires the device, ported from gpsd_serial_open (§4.4). It
// returns UnallocatedFD (via an error) on failure, leaves the session at
// PlaceholdingFD for /dev/ppsX without ever calling open(2), and
// dispatches "qrtr:" paths to the QRTR/PDS driver entirely — that branch
// shares nothing with the termios path below.
func (s *Session) Open(ctx *Context) error {
	if qrtr.HasPrefix(s.path) {
		return s.openQRTR(ctx)
	}

	s.sourceType = Classify(s.path)
	s.serviceType = ServiceSensor

	if s.sourceType == Unknown {
		return wrapErr("Open", ErrUnknownSource)
	}

	if s.sourceType == PPS {
		switchDriver(s, ctx, "PPS")
		s.fd = PlaceholdingFD
		return nil
	}

	readonly := ctx.Readonly || s.sourceType <= BlockDev

	var fd int
	var err error
	if isBluetoothAddress(s.path) {
		fd, err = openBluetooth(s.path)
		if err != nil {
			return wrapErr("Open", err)
		}
	} else {
		flags := unix.O_NONBLOCK | unix.O_NOCTTY
		if readonly {
			flags |= unix.O_RDONLY
		} else {
			flags |= unix.O_RDWR
		}
		fd, err = unix.Open(s.path, flags, 0)
		if err != nil {
			ctx.logger().Errorf("SER: device open of %s failed: %v - retrying read-only", s.path, err)
			fd, err = unix.Open(s.path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_NOCTTY, 0)
			if err != nil {
				return wrapErr("Open: read-only retry", err)
			}
		}
	}
	s.fd = fd

	// Ptys are intentionally opened by another process on the master
	// side, and bluetoothd already holds the RFCOMM socket open — both
	// are exempt from the exclusion check (§4.4 step 6).
	if s.sourceType != PTY && s.sourceType != Bluetooth {
		_ = tiocExcl(s.fd)
		if count := fuserCount(s.path); count > 1 {
			unix.Close(s.fd)
			s.fd = UnallocatedFD
			return wrapErr("Open", ErrExclusionConflict)
		}
	}

	s.lexer.Type = nmealexer.BadPacket

	t, err := tcGetAttr(s.fd)
	if err != nil {
		// Not a tty: nothing more to program, same as gpsd's
		// isatty()==0 early return.
		return nil
	}
	s.ttysetCurrent = t
	saved := *t
	s.ttysetSaved = &saved

	if ctx.FixedPortSpeed > 0 {
		s.savedBaud = ctx.FixedPortSpeed
	}
	if s.savedBaud != -1 {
		s.ttysetCurrent.setCFlagSpeed(SpeedToCode(s.savedBaud))
		_ = tcSetAttr(s.fd, TCSANOW, s.ttysetCurrent)
		_ = tcFlush(s.fd, TCIOFLUSH)
	}

	for i := range s.ttysetCurrent.Cc {
		s.ttysetCurrent.Cc[i] = 0
	}
	// The FTDI chip used in some USB GPS mice gets hosed in the
	// presence of flow control; CRTSCTS is never set by this subsystem
	// (§4.4 step 11).
	s.ttysetCurrent.Cflag &= ^(PARENB | PARODD | CRTSCTS | CSTOPB)
	s.ttysetCurrent.Cflag |= CREAD | CLOCAL
	s.ttysetCurrent.Iflag = 0
	s.ttysetCurrent.Oflag = 0
	s.ttysetCurrent.Lflag = 0

	s.baudIndex = 0
	var newSpeed int
	if ctx.FixedPortSpeed > 0 {
		newSpeed = ctx.FixedPortSpeed
	} else {
		newSpeed = s.savedBaud
		if newSpeed < 0 {
			newSpeed = 0
		}
	}
	newParity := byte('N')
	newStop := 1
	if ctx.FixedPortFraming != "" {
		newParity = ctx.FixedPortFraming[1]
		newStop = int(ctx.FixedPortFraming[2] - '0')
	}
	if err := s.SetSpeed(ctx, newSpeed, newParity, newStop); err != nil {
		ctx.logger().Errorf("SER: error setting port attributes: %v", err)
	}

	if s.sourceType <= BlockDev {
		s.parity = 'N'
		s.stopBits = 1
	}

	s.tsStartCurrentBaud = time.Now()
	return nil
}
