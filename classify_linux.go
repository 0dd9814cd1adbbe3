//go:build linux

package gnssattach

import "golang.org/x/sys/unix"

// classifyCharDevice inspects a character device's major/minor numbers
// against the stable, architecture-independent Linux device number
// assignments (§4.2). This table is Linux-specific by construction — other
// Unixes don't guarantee the same numbers mean the same thing.
func classifyCharDevice(path string, rdev uint64) SourceType {
	major := unix.Major(rdev)
	minor := unix.Minor(rdev)

	switch major {
	case 3: // legacy BSD-style pty slaves (block major 3 is the IDE disk interface)
		return PTY
	case 136, 137, 138, 139, 140, 141, 142, 143: // Unix98 PTY slaves
		return PTY
	case 4, 204, 207: // TTY devices, low-density serial, Freescale i.MX UARTs
		return RS232
	case 10:
		if minor == 223 {
			return PPS
		}
		return RS232
	case 166: // ACM USB modems — no speed, otherwise like USB
		return ACM
	case 188: // USB serial converters
		return USB
	case 216, 217: // Bluetooth RFCOMM TTY devices
		return Bluetooth
	default:
		return RS232
	}
}
