package gnssattach

import (
	"time"

	"github.com/daedaluz/gnssattach/internal/nmealexer"
	"github.com/daedaluz/gnssattach/qrtr"
)

// Context is the configuration and shared-resource surface every Session
// operation takes (§3 "Context (shared)"). It is a plain struct built by
// the caller, same shape as the teacher package's Options/NewOptions.
type Context struct {
	// Readonly disallows writes and forces read-only opens (§4.4 step 3).
	Readonly bool
	// FixedPortSpeed overrides whatever speed Open/hunt would otherwise
	// pick, and disables hunting entirely once set (0 = unset, §4.3/§4.5).
	FixedPortSpeed int
	// FixedPortFraming is either "" or a 3-character string like "8N1":
	// length is ignored, framing[1] is parity, framing[2]-'0' is stop bits
	// (§4.3 step 1).
	FixedPortFraming string

	// Logger receives tolerated failures and progress (§1.1).
	Logger Logger

	// Drivers is the event-hook vtable §9 calls for: an explicit,
	// caller-owned collaborator rather than a hidden global driver table.
	Drivers []*Driver

	// QRTR is this Context's registry of live QRTR paths (§3 invariant
	// 5, capacity 16). Shared across every Session opened against a
	// "qrtr:" path from this Context.
	QRTR *qrtr.Registry
}

// NewContext builds a Context with sane defaults: a discarding Logger, the
// built-in PPS placeholder driver registered, and a fresh 16-slot QRTR
// registry.
func NewContext() *Context {
	return &Context{
		Logger:  nopLogger{},
		Drivers: []*Driver{ppsDriver},
		QRTR:    qrtr.NewRegistry(16),
	}
}

func (c *Context) logger() Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return nopLogger{}
}

// Session is the central entity (§3): one path, one backing OS handle (or
// a sentinel), and the cursor state the hunt controller and termios driver
// mutate in place.
type Session struct {
	path        string
	sourceType  SourceType
	serviceType ServiceType

	fd int

	ttysetCurrent *Termios
	ttysetSaved   *Termios

	baudIndex int
	stopBits  int
	parity    byte

	savedBaud int // -1 if never synced

	tsStartCurrentBaud time.Time

	lexer *nmealexer.Lexer

	driver *Driver

	// pds is non-nil only for SourceType == QRTR sessions.
	pds *qrtr.Conn

	lastErr error
}

// NewSession allocates a Session for path, mirroring gpsd_tty_init: fd
// marked unallocated, baud rate unknown (SPEC_FULL §3 item 4).
func NewSession(path string) *Session {
	return &Session{
		path:      path,
		fd:        UnallocatedFD,
		savedBaud: -1,
		parity:    'N',
		stopBits:  1,
		lexer:     nmealexer.New(),
	}
}

func (s *Session) Path() string             { return s.path }
func (s *Session) SourceType() SourceType   { return s.sourceType }
func (s *Session) ServiceType() ServiceType { return s.serviceType }
func (s *Session) FD() int                  { return s.fd }
func (s *Session) SavedBaud() int           { return s.savedBaud }
func (s *Session) LastErr() error           { return s.lastErr }

// OutputBuffer, OutputLen and PacketType expose the lexer's externally
// observable surface (§6) without exposing the internal lexer type.
func (s *Session) OutputBuffer() []byte           { return s.lexer.OutputBuffer[:s.lexer.OutputLen] }
func (s *Session) OutputLen() int                 { return s.lexer.OutputLen }
func (s *Session) PacketType() nmealexer.PacketType { return s.lexer.Type }

// CurrentSpeed returns the integer rate presently programmed on the line,
// or 0 if the session was never a tty (gpsd_get_speed).
func (s *Session) CurrentSpeed() int {
	if s.ttysetCurrent == nil {
		return 0
	}
	return CodeToSpeed(s.ttysetCurrent.Cflag & CBAUD)
}

// SavedSpeed returns the rate captured in ttyset_saved (gpsd_get_speed_old).
func (s *Session) SavedSpeed() int {
	if s.ttysetSaved == nil {
		return 0
	}
	return CodeToSpeed(s.ttysetSaved.Cflag & CBAUD)
}

// ReportedParity derives the parity character from the live termios
// control flags rather than the cached session field (gpsd_get_parity).
func (s *Session) ReportedParity() byte {
	if s.ttysetCurrent == nil {
		return 'N'
	}
	cflag := s.ttysetCurrent.Cflag
	if cflag&(PARENB|PARODD) == (PARENB | PARODD) {
		return 'O'
	}
	if cflag&PARENB == PARENB {
		return 'E'
	}
	return 'N'
}

// ReportedStopbits derives stop bits from the live termios control flags
// (gpsd_get_stopbits).
func (s *Session) ReportedStopbits() int {
	if s.ttysetCurrent == nil {
		return 0
	}
	cflag := s.ttysetCurrent.Cflag
	if cflag&CS8 == CS8 {
		return 1
	}
	if cflag&(CS7|CSTOPB) == (CS7 | CSTOPB) {
		return 2
	}
	return 0
}

// AssertSync is called by higher layers on first successful packet lock
// (§4.5). If this path has never synced before, the current input speed is
// memorized so a subsequent Open converges immediately.
func (s *Session) AssertSync() {
	if s.savedBaud == -1 && s.ttysetCurrent != nil {
		s.savedBaud = CodeToSpeed(s.ttysetCurrent.Cflag & CBAUD)
	}
}
