package gnssattach

import (
	"os"
	"testing"

	"golang.org/x/sys/unix"
)

func TestFuserCountSeesItsOwnOpenFile(t *testing.T) {
	f, err := os.CreateTemp("", "fusercount-*")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	path := f.Name()
	defer os.Remove(path)
	defer f.Close()

	if count := fuserCount(path); count < 1 {
		t.Errorf("fuserCount(%q) = %d, want at least 1 (this process)", path, count)
	}
}

func TestFuserCountZeroForUnopenedPath(t *testing.T) {
	path := "/tmp/fusercount-never-opened-by-anyone"
	os.Remove(path)
	if f, err := os.Create(path); err == nil {
		f.Close()
		defer os.Remove(path)
	}
	if count := fuserCount(path); count != 0 {
		t.Errorf("fuserCount(%q) = %d, want 0", path, count)
	}
}

func TestFuserCountOnPTYExclusion(t *testing.T) {
	master, slave, err := OpenPTY()
	if err != nil {
		t.Skipf("no pty support in this sandbox: %v", err)
	}
	defer unix.Close(master)

	fd, err := unix.Open(slave, unix.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		t.Fatalf("open slave: %v", err)
	}
	defer unix.Close(fd)

	if count := fuserCount(slave); count < 1 {
		t.Errorf("fuserCount(%q) = %d, want at least 1", slave, count)
	}
}
