package gnssattach

import (
	"errors"

	"github.com/daedaluz/gnssattach/internal/nmealexer"
	"github.com/daedaluz/gnssattach/qrtr"
)

// pdsDriver is the event-hook binding for QRTR/PDS sessions
// (driver_pds.c's qmi_pds_event_hook): REACTIVATE sends REG_EVENTS+START,
// DEACTIVATE sends STOP. Both are no-ops before the lookup handshake
// completes, which Conn itself enforces.
var pdsDriver = &Driver{
	Name: "Qualcomm PDS",
	EventHook: func(session *Session, ctx *Context, event Event) {
		if session.pds == nil {
			return
		}
		// qmi_control_send reports success without touching the wire when
		// the context is readonly (§9 Open Question 3) — it's a sentinel
		// the original treats as a byte count, which we just fold into
		// "nothing to do" here rather than propagating the confusion.
		if ctx.Readonly {
			return
		}
		var err error
		switch event {
		case EventReactivate:
			err = session.pds.Reactivate()
		case EventDeactivate:
			err = session.pds.Deactivate()
		}
		if err != nil {
			ctx.logger().Errorf("QRTR event_hook: %v", err)
		}
	},
}

// openQRTR implements qmi_pds_open (§4.6): register the path, open the
// lookup socket, send NEW_LOOKUP, bind the driver.
func (s *Session) openQRTR(ctx *Context) error {
	if err := ctx.QRTR.Register(s.path); err != nil {
		return wrapErr("Open", err)
	}

	conn, err := qrtr.Open(s.path)
	if err != nil {
		ctx.QRTR.Unregister(s.path)
		return wrapErr("Open", err)
	}

	s.pds = conn
	s.fd = conn.FD()
	s.sourceType = QRTR
	s.serviceType = ServiceSensor
	s.driver = pdsDriver
	return nil
}

// getPacketQRTR implements qmi_pds_get's dispatch (§4.6): drive the
// lookup handshake until ready, then pull NMEA payloads out of QMI
// indications. Matching driver_pds.c's own calling convention, n tracks
// "how much was consumed/produced" rather than strictly a byte count;
// both connect-phase outcomes return 1 the same as the C driver.
func (s *Session) getPacketQRTR(ctx *Context) (int, error) {
	if !s.pds.Ready() {
		matched, err := s.pds.Connect()
		if err != nil {
			if errors.Is(err, qrtr.ErrNoService) {
				s.lastErr = wrapErr("Open", ErrLookupExhausted)
				return -1, s.lastErr
			}
			s.lastErr = wrapErr("GetPacket", err)
			return -1, s.lastErr
		}
		if matched && s.driver != nil && s.driver.EventHook != nil {
			s.driver.EventHook(s, ctx, EventReactivate)
		}
		s.lexer.OutputLen = 0
		return 1, nil
	}

	payload, ok, err := s.pds.GetPacket()
	if err != nil {
		s.lastErr = wrapErr("GetPacket", err)
		return -1, s.lastErr
	}
	if !ok || payload == nil {
		s.lexer.OutputLen = 0
		return 1, nil
	}
	s.lexer.Deposit(nmealexer.NMEAPacket, payload)
	return len(payload), nil
}
