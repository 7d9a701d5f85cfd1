package sliceops

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSwapBuf(t *testing.T) {
	in := []byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}
	out := SwapBuf(in)

	require.Equal(t, []byte{0xff, 0xee, 0xdd, 0xcc, 0xbb, 0xaa}, out)
	require.Equal(t, byte(0xaa), in[0], "input must not be modified")
	require.Empty(t, SwapBuf(nil))
}

func TestDump(t *testing.T) {
	require.Equal(t, "01 03 0c 00", Dump([]byte{0x01, 0x03, 0x0c, 0x00}))

	b := make([]byte, 17)
	b[16] = 0xff
	require.Equal(t, "00 00 00 00 00 00 00 00 00 00 00 00 00 00 00 00\nff", Dump(b))
	require.Equal(t, "", Dump(nil))
}
