package patchram

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/rigado/patchram/sliceops"
)

// BDAddr is a Bluetooth device address in wire order (least significant byte first).
type BDAddr [6]byte

// bdAddrStringLen is the length of "XX:XX:XX:XX:XX:XX".
const bdAddrStringLen = 17

// ParseBDAddr parses a colon separated address, most significant byte first,
// as it is printed by hciconfig and friends.
func ParseBDAddr(s string) (BDAddr, error) {
	var a BDAddr

	s = strings.TrimSpace(s)
	if len(s) != bdAddrStringLen {
		return a, errors.Errorf("invalid bd_addr %q", s)
	}

	hexStr := strings.Replace(s, ":", "", -1)
	if len(hexStr) != 2*len(a) {
		return a, errors.Errorf("invalid bd_addr %q", s)
	}

	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return a, errors.Wrapf(err, "invalid bd_addr %q", s)
	}

	copy(a[:], sliceops.SwapBuf(b))
	return a, nil
}

func (a BDAddr) String() string {
	b := sliceops.SwapBuf(a[:])
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%02X", v)
	}
	return strings.Join(parts, ":")
}

// Bytes returns the address in wire order.
func (a BDAddr) Bytes() []byte {
	out := make([]byte, len(a))
	copy(out, a[:])
	return out
}
