package hcitest

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestChipAcknowledges(t *testing.T) {
	clock := NewClock()
	c := NewChip(clock)
	c.Chunk = 2

	_, err := c.Write([]byte{0x01, 0x03, 0x0c, 0x00})
	require.NoError(t, err)
	require.Equal(t, []uint16{0x0c03}, c.OpCodes())

	var got []byte
	buf := make([]byte, 16)
	for c.Pending() > 0 {
		n, err := c.Read(buf)
		require.NoError(t, err)
		require.True(t, n <= 2)
		got = append(got, buf[:n]...)
	}
	require.Equal(t, []byte{0x04, 0x0e, 0x04, 0x01, 0x03, 0x0c, 0x00}, got)

	start := clock.Now()
	n, err := c.Read(buf)
	require.NoError(t, err)
	require.Zero(t, n)
	require.Equal(t, 100*time.Millisecond, clock.Since(start))
}

func TestChipIdleLimit(t *testing.T) {
	c := &Chip{MaxIdle: 2}
	buf := make([]byte, 4)

	for i := 0; i < 2; i++ {
		_, err := c.Read(buf)
		require.NoError(t, err)
	}
	_, err := c.Read(buf)
	require.Equal(t, io.EOF, err)
}

func TestCommandComplete(t *testing.T) {
	require.Equal(t,
		[]byte{0x04, 0x0e, 0x05, 0x01, 0x79, 0xfc, 0x00, 0x43},
		CommandComplete(0xfc79, 0x00, 0x43))
}
