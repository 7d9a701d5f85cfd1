//go:build linux
// +build linux

package ldisc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIoctlNumbers(t *testing.T) {
	// _IOW('U', 200, int) and friends as defined in hci_uart.h
	require.Equal(t, uintptr(0x400455c8), hciUARTSetProto)
	require.Equal(t, uintptr(0x800455c9), hciUARTGetProto)
	require.Equal(t, uintptr(0x800455ca), hciUARTGetDevice)
}

func TestSetUnknownProto(t *testing.T) {
	require.Error(t, Set(0, 42))
}
