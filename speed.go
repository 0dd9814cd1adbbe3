package gnssattach

// speedTable is the descending staircase of platform bit rates this
// subsystem knows how to program, paired with their CBAUD-encoded codes
// (§4.1). Entries above 230400 are the "optionally supported" extended
// rates some u-blox 9 and Javad receivers use; Linux defines all of them.
var speedTable = []struct {
	rate int
	code CFlag
}{
	{300, B300},
	{1200, B1200},
	{2400, B2400},
	{4800, B4800},
	{9600, B9600},
	{19200, B19200},
	{38400, B38400},
	{57600, B57600},
	{115200, B115200},
	{230400, B230400},
	{460800, B460800},
	{500000, B500000},
	{576000, B576000},
	{921600, B921600},
	{1000000, B1000000},
	{1152000, B1152000},
	{1500000, B1500000},
	{2000000, B2000000},
	{2500000, B2500000},
	{3000000, B3000000},
	{3500000, B3500000},
	{4000000, B4000000},
}

// SpeedToCode maps an integer bit rate to the platform speed code by a
// descending staircase: any input in [R, nextR) rounds down to R. Inputs
// below 1200 map to 300. Totally defined; inputs at or above the top rate
// (4000000) map to B4000000 (§4.1).
func SpeedToCode(rate int) CFlag {
	if rate < 1200 {
		return B300
	}
	for i := 0; i < len(speedTable)-1; i++ {
		if rate < speedTable[i+1].rate {
			return speedTable[i].code
		}
	}
	last := speedTable[len(speedTable)-1]
	if rate >= last.rate {
		return last.code
	}
	return B9600
}

// CodeToSpeed is the inverse of SpeedToCode on exact codes. Unknown codes
// return 0.
func CodeToSpeed(code CFlag) int {
	for _, entry := range speedTable {
		if entry.code == code {
			return entry.rate
		}
	}
	return 0
}
