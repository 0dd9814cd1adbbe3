package gnssattach

import "golang.org/x/sys/unix"

// Write sends buf and blocks until it drains, ported from
// gpsd_serial_write (§4.7). Readonly sessions and already-closed
// sessions silently discard the write and report 0, matching the C
// function's own "return 0" early-out rather than erroring.
func (s *Session) Write(ctx *Context, buf []byte) (int, error) {
	if ctx.Readonly || s.fd == UnallocatedFD || s.fd == PlaceholdingFD {
		return 0, nil
	}

	n, err := unix.Write(s.fd, buf)
	_ = tcDrain(s.fd)
	if err != nil {
		s.lastErr = wrapErr("Write", err)
		ctx.logger().Errorf("SER: => GPS write failed: %v", err)
		return n, s.lastErr
	}
	if n != len(buf) {
		ctx.logger().Errorf("SER: short write: %d of %d bytes", n, len(buf))
	}
	return n, nil
}

// Close tears the session down, ported from gpsd_close (§4.7): drop the
// exclusion lock, drain output, force a hangup on both directions for
// systems that don't honor HUPCL reliably, then restore the saved
// attributes with HUPCL forced on before the final close.
func (s *Session) Close(ctx *Context) error {
	if s.sourceType == QRTR {
		if s.pds != nil {
			_ = s.pds.Close()
		}
		ctx.QRTR.Unregister(s.path)
		s.fd = UnallocatedFD
		return nil
	}

	if s.fd == UnallocatedFD || s.fd == PlaceholdingFD {
		return nil
	}

	_ = tiocNxcl(s.fd)

	if !ctx.Readonly {
		if err := tcDrain(s.fd); err != nil {
			ctx.logger().Errorf("SER: Close() tcdrain() failed: %v", err)
		}
	}

	if s.ttysetCurrent != nil {
		if t, err := tcGetAttr(s.fd); err == nil {
			s.ttysetSaved = t
		} else {
			ctx.logger().Errorf("SER: Close() tcgetattr() failed: %v", err)
		}

		hangup := *s.ttysetSaved
		hangup.setCFlagSpeed(B0)
		if err := tcSetAttr(s.fd, TCSANOW, &hangup); err != nil {
			ctx.logger().Errorf("SER: Close() tcsetattr(B0) failed: %v", err)
		}

		s.ttysetSaved.Cflag |= HUPCL
		if err := tcSetAttr(s.fd, TCSANOW, s.ttysetSaved); err != nil {
			ctx.logger().Errorf("SER: Close() tcsetattr(restore) failed: %v", err)
		}
	}

	err := unix.Close(s.fd)
	s.fd = UnallocatedFD
	return err
}
