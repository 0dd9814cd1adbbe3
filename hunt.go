package gnssattach

import (
	"time"

	"github.com/daedaluz/gnssattach/internal/nmealexer"
)

// huntRates is R from §4.5: element 0 is the "keep current" slot used on
// first entry, the rest are every rate a GNSS receiver is likely to ship
// at (u-blox 9 goes to 921600).
var huntRates = [...]int{0, 4800, 9600, 19200, 38400, 57600, 115200, 230400, 460800, 921600}

// sniffRetries bounds how many GetPacket calls the hunt controller
// tolerates on one cell before moving on, independent of the 3-second
// wall-clock deadline — whichever triggers first.
const sniffRetries = nmealexer.MaxPacketLength + 128

// NextHuntSetting advances the speed/framing search, ported from
// gpsd_next_hunt_setting (§4.5). Call this whenever a read yielded
// garbage; it returns false once every cell has been tried (or hunting
// isn't applicable at all) and true if the caller should keep reading on
// the current or a freshly reprogrammed setting.
func (s *Session) NextHuntSetting(ctx *Context) bool {
	if s.ttysetCurrent == nil {
		return false
	}
	if s.sourceType == PPS {
		return false
	}

	elapsed := time.Since(s.tsStartCurrentBaud)

	s.lexer.RetryCounter++
	if s.lexer.RetryCounter <= sniffRetries && elapsed <= 3*time.Second {
		return true
	}

	if ctx.FixedPortSpeed > 0 {
		return false
	}

	s.baudIndex++
	if s.baudIndex >= len(huntRates) {
		s.baudIndex = 0
		if ctx.FixedPortFraming != "" {
			return false
		}
		s.stopBits++
		if s.stopBits > 2 {
			return false
		}
	}

	parity := s.parity
	stopBits := s.stopBits
	if ctx.FixedPortFraming != "" {
		parity = ctx.FixedPortFraming[1]
		stopBits = int(ctx.FixedPortFraming[2] - '0')
	}

	if err := s.SetSpeed(ctx, huntRates[s.baudIndex], parity, stopBits); err != nil {
		ctx.logger().Errorf("SER: hunt SetSpeed failed: %v", err)
	}
	s.lexer.RetryCounter = 0
	return true
}
