package gnssattach

import "time"

// normalizeParity backward-compatibility hack from gpsd_set_speed: numeric
// parity codes (1, 2) are accepted alongside the character form, and
// anything else collapses to 'N' so the dev.parity reporting field is
// never left at '\0'.
func normalizeParity(parity byte) byte {
	switch parity {
	case 'E', 2:
		return 'E'
	case 'O', 1:
		return 'O'
	default:
		return 'N'
	}
}

// SetSpeed programs rate/parity/stopBits onto the line, ported from
// gpsd_set_speed (§4.3). ctx's FixedPortSpeed/FixedPortFraming silently
// override whatever the caller asked for; speed 0 (B0) means "leave the
// current rate alone" by design, not a bug.
func (s *Session) SetSpeed(ctx *Context, speed int, parity byte, stopBits int) error {
	if ctx.FixedPortSpeed > 0 {
		speed = ctx.FixedPortSpeed
	}
	if ctx.FixedPortFraming != "" {
		parity = ctx.FixedPortFraming[1]
		stopBits = int(ctx.FixedPortFraming[2] - '0')
	}

	rate := SpeedToCode(speed)
	if speed == 0 {
		rate = B0
	}
	parity = normalizeParity(parity)

	if s.ttysetCurrent == nil {
		return wrapErr("SetSpeed", ErrClosed)
	}
	cur := s.ttysetCurrent

	// The programming+settle sequence below only runs when something
	// actually changed; dev.parity/stopbits, the wakeup probe, the
	// lexer reset and the hunt-clock restamp below always run, even
	// when nothing changed — that's deliberate (§4.3 step 8 applies on
	// every SetSpeed call, not just the ones that reprogram the line).
	if rate != (cur.Cflag&CBAUD) || parity != s.parity || stopBits != s.stopBits {
		// "Don't mess with this conditional!" B0 means "leave the port
		// speed at whatever it currently is" (§4.3 step 3).
		if rate != B0 {
			cur.setCFlagSpeed(rate)
		}

		cur.Iflag &= ^(PARMRK | INPCK)
		cur.Cflag &= ^(CSIZE | CSTOPB | PARENB | PARODD)
		if stopBits == 2 {
			cur.Cflag |= CS7 | CSTOPB
		} else {
			cur.Cflag |= CS8
		}
		switch parity {
		case 'E':
			cur.Iflag |= INPCK
			cur.Cflag |= PARENB
		case 'O':
			cur.Iflag |= INPCK
			cur.Cflag |= PARENB | PARODD
		}

		// tcsetattr failing here is tolerated (it routinely does on
		// non-serial ports) rather than returned — see the "serious
		// black magic" comment below; failing hard would break every
		// non-tty-but-still-worth-reading source.
		_ = tcSetAttr(s.fd, TCSANOW, cur)

		// Serious black magic: devices need time to settle into a new
		// baud rate. flush, sleep 200ms, flush again. Shortening this
		// reliably breaks autobaud lock on USB-serial adapters (§4.3
		// step 6) — do not "optimize" it away.
		_ = tcFlush(s.fd, TCIOFLUSH)
		time.Sleep(200 * time.Millisecond)
		_ = tcFlush(s.fd, TCIOFLUSH)
	}

	s.parity = parity
	s.stopBits = stopBits

	if !ctx.Readonly && s.sourceType != USB && s.sourceType != Bluetooth {
		fireWakeup(s, ctx)
	}
	s.lexer.Reset()
	s.tsStartCurrentBaud = time.Now()
	return nil
}

// SetRaw puts the line into cfmakeraw mode (§3 SPEC_FULL item 3,
// gpsd_set_raw).
func (s *Session) SetRaw(ctx *Context) error {
	if s.ttysetCurrent == nil {
		return wrapErr("SetRaw", ErrClosed)
	}
	s.ttysetCurrent.MakeRaw()
	if err := tcSetAttr(s.fd, TCSANOW, s.ttysetCurrent); err != nil {
		return wrapErr("SetRaw: tcsetattr", err)
	}
	return nil
}
