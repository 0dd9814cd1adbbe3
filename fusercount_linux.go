//go:build linux

package gnssattach

import (
	"os"
	"strconv"
)

// fuserCount returns how many open fds, across all processes (this one
// included), currently refer to path, ported from serial.c's Linux-only
// fusercount: scan /proc/<pid>/fd/* and readlink each entry, counting
// matches. A process holding path open twice counts twice. -1
// means /proc couldn't be opened at all.
func fuserCount(path string) int {
	procEntries, err := os.ReadDir("/proc")
	if err != nil {
		return -1
	}
	count := 0
	for _, procEntry := range procEntries {
		name := procEntry.Name()
		if _, err := strconv.Atoi(name); err != nil {
			continue
		}
		fdDir := "/proc/" + name + "/fd/"
		fdEntries, err := os.ReadDir(fdDir)
		if err != nil {
			continue
		}
		for _, fdEntry := range fdEntries {
			link, err := os.Readlink(fdDir + fdEntry.Name())
			if err != nil {
				continue
			}
			if link == path {
				count++
			}
		}
	}
	return count
}
