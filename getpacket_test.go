package gnssattach

import (
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func TestGetPacketOnClosedSessionErrors(t *testing.T) {
	s := NewSession("/dev/nonexistent")
	ctx := NewContext()
	if _, err := s.GetPacket(ctx); err == nil {
		t.Fatal("expected an error for a never-opened session")
	}
}

func TestGetPacketEAGAINIsNotAnError(t *testing.T) {
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

	n, err := s.GetPacket(ctx)
	if err != nil {
		t.Fatalf("GetPacket with nothing pending: %v", err)
	}
	if n != 0 {
		t.Errorf("GetPacket with nothing pending returned n=%d, want 0", n)
	}
}

func TestGetPacketTimeoutReadsWhatWasWritten(t *testing.T) {
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

	payload := []byte("$GPRMC,hello*00\r\n")
	if _, err := unix.Write(master, payload); err != nil {
		t.Fatalf("writing from master: %v", err)
	}

	n, err := s.GetPacketTimeout(ctx, time.Second)
	if err != nil {
		t.Fatalf("GetPacketTimeout: %v", err)
	}
	if n != len(payload) {
		t.Fatalf("GetPacketTimeout read %d bytes, want %d", n, len(payload))
	}
}

func TestGetPacketTimeoutExpiresWithoutData(t *testing.T) {
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

	n, err := s.GetPacketTimeout(ctx, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("GetPacketTimeout with nothing pending: %v", err)
	}
	if n != 0 {
		t.Errorf("GetPacketTimeout with nothing pending returned n=%d, want 0", n)
	}
}

func TestGetPacketReadsWhatWasWritten(t *testing.T) {
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

	payload := []byte("$GPGGA,hello*00\r\n")
	if _, err := unix.Write(master, payload); err != nil {
		t.Fatalf("writing from master: %v", err)
	}

	// The read side is non-blocking; give the kernel a moment to deliver
	// the bytes across the pty before polling.
	var n int
	for i := 0; i < 100 && n == 0; i++ {
		n, err = s.GetPacket(ctx)
		if err != nil {
			t.Fatalf("GetPacket: %v", err)
		}
		if n == 0 {
			time.Sleep(time.Millisecond)
		}
	}
	if n != len(payload) {
		t.Fatalf("GetPacket read %d bytes, want %d", n, len(payload))
	}
	if string(s.lexer.InputBuffer[:n]) != string(payload) {
		t.Errorf("GetPacket data = %q, want %q", s.lexer.InputBuffer[:n], payload)
	}
}
