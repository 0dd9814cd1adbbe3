package gnssattach

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestNormalizeParity(t *testing.T) {
	cases := []struct {
		in   byte
		want byte
	}{
		{'E', 'E'},
		{'O', 'O'},
		{'N', 'N'},
		{2, 'E'},
		{1, 'O'},
		{0, 'N'},
		{'x', 'N'},
	}
	for _, c := range cases {
		if got := normalizeParity(c.in); got != c.want {
			t.Errorf("normalizeParity(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSetSpeedRejectsSessionWithoutTermios(t *testing.T) {
	s := NewSession("/dev/nonexistent")
	ctx := NewContext()
	if err := s.SetSpeed(ctx, 9600, 'N', 1); err == nil {
		t.Fatal("expected error for a session with no ttysetCurrent")
	}
}

func TestSetSpeedOnPTY(t *testing.T) {
	master, slave, err := OpenPTY()
	if err != nil {
		t.Skipf("no pty support in this sandbox: %v", err)
	}
	defer unix.Close(master)

	s := NewSession(slave)
	ctx := NewContext()
	if err := s.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close(ctx)

	if err := s.SetSpeed(ctx, 9600, 'N', 1); err != nil {
		t.Fatalf("SetSpeed: %v", err)
	}
	if s.CurrentSpeed() != 9600 {
		t.Errorf("CurrentSpeed() = %d, want 9600", s.CurrentSpeed())
	}
	if s.ReportedParity() != 'N' {
		t.Errorf("ReportedParity() = %q, want N", s.ReportedParity())
	}

	if err := s.SetSpeed(ctx, 19200, 'E', 2); err != nil {
		t.Fatalf("SetSpeed (reprogram): %v", err)
	}
	if s.CurrentSpeed() != 19200 {
		t.Errorf("CurrentSpeed() = %d, want 19200", s.CurrentSpeed())
	}
	if s.ReportedParity() != 'E' {
		t.Errorf("ReportedParity() = %q, want E", s.ReportedParity())
	}
	if s.ReportedStopbits() != 2 {
		t.Errorf("ReportedStopbits() = %d, want 2", s.ReportedStopbits())
	}
}

func TestSetSpeedAlwaysRestampsHuntClock(t *testing.T) {
	master, slave, err := OpenPTY()
	if err != nil {
		t.Skipf("no pty support in this sandbox: %v", err)
	}
	defer unix.Close(master)

	s := NewSession(slave)
	ctx := NewContext()
	if err := s.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close(ctx)

	first := s.tsStartCurrentBaud
	// Calling SetSpeed again with the same rate/parity/stopbits must still
	// restamp the hunt clock and reset the lexer, even though nothing about
	// the line actually changes.
	s.lexer.OutputLen = 7
	if err := s.SetSpeed(ctx, s.CurrentSpeed(), s.parity, s.stopBits); err != nil {
		t.Fatalf("SetSpeed: %v", err)
	}
	if !s.tsStartCurrentBaud.After(first) && s.tsStartCurrentBaud != first {
		t.Error("tsStartCurrentBaud should always be restamped")
	}
	if s.lexer.OutputLen != 0 {
		t.Error("lexer should always be reset on SetSpeed")
	}
}
