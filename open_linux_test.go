package gnssattach

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestOpenUnknownSourceErrors(t *testing.T) {
	s := NewSession("/nonexistent/path/that/should/never/exist")
	ctx := NewContext()
	if err := s.Open(ctx); err == nil {
		t.Fatal("expected an error classifying a nonexistent path")
	}
}

func TestOpenPPSNeverCallsOpen(t *testing.T) {
	// Classify only recognizes /dev/pps<N> by path prefix once stat(2)
	// succeeds, so the fixture needs a real, stat-able path under that
	// prefix; a fifo is the cheapest thing this sandbox can create there
	// without root. Skip if /dev isn't writable here.
	path := "/dev/ppstest0"
	if err := unix.Mkfifo(path, 0600); err != nil {
		t.Skipf("cannot create a /dev/pps-prefixed fixture in this sandbox: %v", err)
	}
	defer unix.Unlink(path)

	s := NewSession(path)
	ctx := NewContext()
	if err := s.Open(ctx); err != nil {
		t.Fatalf("Open on a pps-shaped path: %v", err)
	}
	if s.FD() != PlaceholdingFD {
		t.Errorf("FD() = %d, want PlaceholdingFD", s.FD())
	}
	if s.driver == nil || s.driver.Name != "PPS" {
		t.Error("expected the PPS placeholder driver to be bound")
	}
}

func TestOpenPTYProgramsLine(t *testing.T) {
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

	if s.SourceType() != PTY {
		t.Errorf("SourceType() = %v, want PTY", s.SourceType())
	}
	if s.FD() == UnallocatedFD || s.FD() == PlaceholdingFD {
		t.Error("expected a real fd after opening a pty slave")
	}
	if s.ttysetCurrent == nil {
		t.Fatal("expected termios state to be captured for a tty")
	}
	if s.ttysetCurrent.Cflag&CREAD == 0 {
		t.Error("CREAD should always be set after Open")
	}
	if s.ttysetCurrent.Cflag&CLOCAL == 0 {
		t.Error("CLOCAL should always be set after Open")
	}
	if s.ttysetCurrent.Cflag&CRTSCTS != 0 {
		t.Error("CRTSCTS must never be set: it hoses FTDI-based GPS mice")
	}
}

func TestOpenReadonlyForcesRDONLY(t *testing.T) {
	master, slave, err := OpenPTY()
	if err != nil {
		t.Skipf("no pty support in this sandbox: %v", err)
	}
	defer unix.Close(master)

	s := NewSession(slave)
	ctx := NewContext()
	ctx.Readonly = true
	if err := s.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close(ctx)

	flags, ferr := unix.FcntlInt(uintptr(s.FD()), unix.F_GETFL, 0)
	if ferr != nil {
		t.Fatalf("fcntl(F_GETFL): %v", ferr)
	}
	if flags&unix.O_ACCMODE != unix.O_RDONLY {
		t.Errorf("access mode = %#o, want O_RDONLY", flags&unix.O_ACCMODE)
	}

	n, werr := s.Write(ctx, []byte("x"))
	if werr != nil || n != 0 {
		t.Errorf("Write under forced readonly = (%d, %v), want (0, nil)", n, werr)
	}
}

func TestOpenSecondTimeOnPTYSkipsExclusionCheck(t *testing.T) {
	master, slave, err := OpenPTY()
	if err != nil {
		t.Skipf("no pty support in this sandbox: %v", err)
	}
	defer unix.Close(master)

	s1 := NewSession(slave)
	ctx := NewContext()
	if err := s1.Open(ctx); err != nil {
		t.Fatalf("first Open: %v", err)
	}
	defer s1.Close(ctx)

	// PTYs are explicitly exempted from the exclusion check (§4.4 step
	// 6), so a second open must succeed rather than conflict.
	s2 := NewSession(slave)
	if err := s2.Open(ctx); err != nil {
		t.Fatalf("second Open on a pty should not hit exclusion: %v", err)
	}
	defer s2.Close(ctx)
}
