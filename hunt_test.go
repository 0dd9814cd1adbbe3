package gnssattach

import (
	"testing"
	"time"

	"github.com/daedaluz/gnssattach/internal/nmealexer"
)

func TestNextHuntSettingFalseWithoutTermios(t *testing.T) {
	s := NewSession("/dev/nonexistent")
	ctx := NewContext()
	if s.NextHuntSetting(ctx) {
		t.Fatal("expected false: session was never opened as a tty")
	}
}

func TestNextHuntSettingFalseForPPS(t *testing.T) {
	s := NewSession("/dev/pps0")
	s.sourceType = PPS
	s.ttysetCurrent = &Termios{}
	ctx := NewContext()
	if s.NextHuntSetting(ctx) {
		t.Fatal("expected false: hunting never applies to PPS sources")
	}
}

func TestNextHuntSettingStaysWithinRetryBudget(t *testing.T) {
	master, slave, err := OpenPTY()
	if err != nil {
		t.Skipf("no pty support in this sandbox: %v", err)
	}
	defer func() { _ = master }()

	s := NewSession(slave)
	ctx := NewContext()
	if err := s.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close(ctx)

	startIndex := s.baudIndex
	if !s.NextHuntSetting(ctx) {
		t.Fatal("expected true: well within the retry/time budget")
	}
	if s.baudIndex != startIndex {
		t.Error("baud index should not advance while still within budget")
	}
}

func TestNextHuntSettingAdvancesAfterRetryExhaustion(t *testing.T) {
	master, slave, err := OpenPTY()
	if err != nil {
		t.Skipf("no pty support in this sandbox: %v", err)
	}
	defer func() { _ = master }()

	s := NewSession(slave)
	ctx := NewContext()
	if err := s.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close(ctx)

	s.lexer.RetryCounter = sniffRetries
	startIndex := s.baudIndex
	if !s.NextHuntSetting(ctx) {
		t.Fatal("expected true: exhausting one cell should move to the next, not give up")
	}
	if s.baudIndex == startIndex {
		t.Error("baud index should have advanced once the retry budget was exhausted")
	}
	if s.lexer.RetryCounter != 0 {
		t.Errorf("retry counter should reset after advancing, got %d", s.lexer.RetryCounter)
	}
}

func TestNextHuntSettingFixedSpeedNeverAdvances(t *testing.T) {
	master, slave, err := OpenPTY()
	if err != nil {
		t.Skipf("no pty support in this sandbox: %v", err)
	}
	defer func() { _ = master }()

	s := NewSession(slave)
	ctx := NewContext()
	ctx.FixedPortSpeed = 9600
	if err := s.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close(ctx)

	s.lexer.RetryCounter = sniffRetries
	s.tsStartCurrentBaud = time.Now().Add(-time.Hour)
	if s.NextHuntSetting(ctx) {
		t.Fatal("expected false: a fixed speed forecloses hunting entirely")
	}
}

func TestNextHuntSettingExhaustsAllCellsEventually(t *testing.T) {
	master, slave, err := OpenPTY()
	if err != nil {
		t.Skipf("no pty support in this sandbox: %v", err)
	}
	defer func() { _ = master }()

	s := NewSession(slave)
	ctx := NewContext()
	if err := s.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close(ctx)

	// Drive the hunt controller until it gives up; it must do so in a
	// bounded number of cells (len(huntRates) per stop-bit setting, stop
	// bits 1 and 2; maxIterations leaves headroom over that), never spin
	// forever.
	iterations := 0
	const maxIterations = (len(huntRates) + 1) * 4
	for iterations < maxIterations {
		s.lexer.RetryCounter = sniffRetries
		s.tsStartCurrentBaud = time.Now().Add(-time.Hour)
		if !s.NextHuntSetting(ctx) {
			return
		}
		iterations++
	}
	t.Fatalf("hunt controller did not exhaust within %d iterations", maxIterations)
}

func TestSniffRetriesDerivedFromMaxPacketLength(t *testing.T) {
	if sniffRetries != nmealexer.MaxPacketLength+128 {
		t.Errorf("sniffRetries = %d, want %d", sniffRetries, nmealexer.MaxPacketLength+128)
	}
}
