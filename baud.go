package patchram

import (
	"encoding/binary"
	"sort"
)

// DefaultBaudRate is the rate the chip comes out of reset at.
const DefaultBaudRate = 115200

// SupportedBaudRates lists the rates a local serial port can be switched to.
var SupportedBaudRates = []int{
	9600,
	19200,
	38400,
	57600,
	115200,
	230400,
	460800,
	500000,
	576000,
	921600,
	1000000,
	1152000,
	1500000,
	2000000,
	2500000,
	3000000,
	3500000,
	4000000,
}

// IsSupportedBaudRate reports whether rate is in SupportedBaudRates.
func IsSupportedBaudRate(rate int) bool {
	i := sort.SearchInts(SupportedBaudRates, rate)
	return i < len(SupportedBaudRates) && SupportedBaudRates[i] == rate
}

// EncodeBaudRate encodes rate the way the chip expects it in the update baud rate
// command, least significant byte first.
func EncodeBaudRate(rate uint32) [4]byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], rate)
	return b
}
