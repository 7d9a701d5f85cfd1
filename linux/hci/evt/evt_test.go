package evt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandComplete(t *testing.T) {
	// verbose config version info response from a BCM4330B2
	e := Event{0x04, 0x0e, 0x0a, 0x01, 0x79, 0xfc, 0x00, 0x43, 0x02, 0x10, 0x00, 0x55, 0x01}

	require.Equal(t, uint8(0x04), e.PacketType())
	require.Equal(t, uint8(CommandCompleteCode), e.Code())
	require.Equal(t, uint8(10), e.ParameterLength())

	cc := e.CommandComplete()
	require.NotNil(t, cc)
	require.Equal(t, uint8(1), cc.NumHCICommandPackets())
	require.Equal(t, uint16(0xfc79), cc.CommandOpcode())
	require.Equal(t, uint8(0x00), cc.Status())
	require.Equal(t, []byte{0x00, 0x43, 0x02, 0x10, 0x00, 0x55, 0x01}, cc.ReturnParameters())

	// byte 7 of the whole frame is the chip id
	require.Equal(t, e[7], cc.ReturnParameters()[1])
}

func TestCommandCompleteNoReturnParameters(t *testing.T) {
	cc := Event{0x04, 0x0e, 0x03, 0x01, 0x03, 0x0c}.CommandComplete()
	require.Equal(t, uint16(0x0c03), cc.CommandOpcode())

	_, err := cc.StatusWErr()
	require.Error(t, err)
	require.Equal(t, uint8(0xff), cc.Status())
}

func TestNotCommandComplete(t *testing.T) {
	e := Event{0x04, 0x0f, 0x04, 0x00, 0x01, 0x03, 0x0c}
	require.Nil(t, e.CommandComplete())
	require.Equal(t, []byte{0x00, 0x01, 0x03, 0x0c}, e.Parameters())
}

func TestShortEvent(t *testing.T) {
	e := Event{0x04, 0x0e}
	_, err := e.ParameterLengthWErr()
	require.Error(t, err)

	// declared length larger than what arrived
	_, err = Event{0x04, 0x0e, 0x04, 0x01}.ParametersWErr()
	require.Error(t, err)

	p, err := Event{0x04, 0xff, 0x00}.ParametersWErr()
	require.NoError(t, err)
	require.Empty(t, p)
}
