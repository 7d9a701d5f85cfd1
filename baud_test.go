package patchram

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeBaudRate(t *testing.T) {
	require.Equal(t, [4]byte{0x00, 0xc2, 0x01, 0x00}, EncodeBaudRate(115200))
	require.Equal(t, [4]byte{0x00, 0x10, 0x0e, 0x00}, EncodeBaudRate(921600))
	require.Equal(t, [4]byte{0x00, 0x09, 0x3d, 0x00}, EncodeBaudRate(4000000))
}

func TestIsSupportedBaudRate(t *testing.T) {
	require.True(t, sort.IntsAreSorted(SupportedBaudRates))
	require.True(t, IsSupportedBaudRate(115200))
	require.True(t, IsSupportedBaudRate(3000000))
	require.False(t, IsSupportedBaudRate(0))
	require.False(t, IsSupportedBaudRate(115201))
	require.False(t, IsSupportedBaudRate(5000000))
}
