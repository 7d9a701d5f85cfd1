package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type command interface {
	OpCode() int
	Len() int
	Marshal([]byte) error
}

func marshalled(t *testing.T, c command) []byte {
	b := make([]byte, c.Len())
	require.NoError(t, c.Marshal(b))
	return b
}

func TestOpCodes(t *testing.T) {
	for want, c := range map[int]command{
		0x0c03: &Reset{},
		0xfc79: &ReadVerboseConfigVersionInfo{},
		0xfc2e: &DownloadMinidriver{},
		0xfc18: &UpdateUARTBaudRate{},
		0xfc01: &WriteBDADDR{},
		0xfc27: &WriteSleepMode{},
		0xfc1c: &WriteSCOPCMIntParam{},
		0xfc1e: &WritePCMDataFormatParam{},
		0xfc6d: &WriteI2SPCMInterfaceParam{},
		0xfc4c: &Raw{Op: 0xfc4c},
	} {
		require.Equal(t, want, c.OpCode())
	}
}

func TestMarshal(t *testing.T) {
	require.Equal(t, []byte{0x00, 0x00, 0x00, 0xc2, 0x01, 0x00},
		marshalled(t, &UpdateUARTBaudRate{ExplicitRate: [4]byte{0x00, 0xc2, 0x01, 0x00}}))

	require.Equal(t, []byte{0x55, 0x44, 0x33, 0x22, 0x11, 0x00},
		marshalled(t, &WriteBDADDR{BDADDR: [6]byte{0x55, 0x44, 0x33, 0x22, 0x11, 0x00}}))

	require.Equal(t, []byte{0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00},
		marshalled(t, UARTSleepMode()))

	require.Equal(t, []byte{0x00, 0x04, 0x00, 0x01, 0x01},
		marshalled(t, &WriteSCOPCMIntParam{PCMInterfaceRate: 4, SyncMode: 1, ClockMode: 1}))

	require.Equal(t, []byte{0x01, 0x00, 0x03, 0x00, 0x01},
		marshalled(t, &WritePCMDataFormatParam{LSBFirst: 1, FillMethod: 3, RightJustify: 1}))

	require.Equal(t, []byte{0x01, 0x00, 0x01, 0x04},
		marshalled(t, &WriteI2SPCMInterfaceParam{Enable: 1, SampleRate: 1, ClockRate: 4}))

	require.Empty(t, marshalled(t, &Reset{}))
	require.Equal(t, []byte{0xde, 0xad}, marshalled(t, &Raw{Op: 0xfc4c, Params: []byte{0xde, 0xad}}))
}

func TestMarshalShortBuffer(t *testing.T) {
	require.Error(t, (&WriteBDADDR{}).Marshal(make([]byte, 3)))
	require.Error(t, (&Raw{Params: []byte{1, 2}}).Marshal(nil))
}

func TestReadVerboseConfigVersionInfoRP(t *testing.T) {
	var rp ReadVerboseConfigVersionInfoRP
	require.NoError(t, rp.Unmarshal([]byte{0x00, 0x43, 0x02, 0x34, 0x12, 0x78, 0x56}))
	require.Equal(t, ReadVerboseConfigVersionInfoRP{ChipID: 0x43, TargetID: 2, BuildBase: 0x1234, BuildNum: 0x5678}, rp)

	rp = ReadVerboseConfigVersionInfoRP{}
	require.NoError(t, rp.Unmarshal([]byte{0x00, 0x29}))
	require.Equal(t, uint8(0x29), rp.ChipID)

	require.Error(t, rp.Unmarshal([]byte{0x00}))
}
