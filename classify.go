package gnssattach

import (
	"strings"

	"golang.org/x/sys/unix"
)

// Classify inspects path with stat(2) and returns the SourceType tag the
// rest of the subsystem keys its behavior on (§4.2). A stat failure — the
// path doesn't exist, or isn't reachable — yields Unknown, which Open turns
// into UnallocatedFD without ever trying to open anything.
func Classify(path string) SourceType {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return Unknown
	}

	switch st.Mode & unix.S_IFMT {
	case unix.S_IFREG:
		return BlockDev
	case unix.S_IFSOCK:
		// this assumes we won't get UDP from a filesystem socket
		return TCP
	}

	// OS-independent check for ptys using the Unix98 naming convention.
	if strings.HasPrefix(path, "/dev/pts/") {
		return PTY
	}
	// No more direct way to check for PPS than the path prefix.
	if strings.HasPrefix(path, "/dev/pps") {
		return PPS
	}
	if st.Mode&unix.S_IFMT == unix.S_IFIFO {
		return Pipe
	}
	if st.Mode&unix.S_IFMT == unix.S_IFCHR {
		return classifyCharDevice(path, uint64(st.Rdev))
	}
	return Unknown
}
