//go:build !linux

package gnssattach

import "strings"

// classifyCharDevice on non-Linux platforms has no stable major/minor
// table to rely on, so it defaults every character device to RS232 except
// for the BSD-family path conventions spec.md calls out explicitly: Unix98
// names ttyp*/ttyq* are pty halves, and ttyU*/dtyU* are USB-serial (§4.2).
func classifyCharDevice(path string, _ uint64) SourceType {
	if strings.HasPrefix(path, "/dev/ttyp") || strings.HasPrefix(path, "/dev/ttyq") {
		return PTY
	}
	if strings.HasPrefix(path, "/dev/ttyU") || strings.HasPrefix(path, "/dev/dtyU") {
		return USB
	}
	return RS232
}
