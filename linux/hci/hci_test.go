package hci

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/patchram"
	"github.com/rigado/patchram/linux/hci/cmd"
	"github.com/rigado/patchram/linux/hci/hcitest"
	"github.com/stretchr/testify/require"
)

func newTestHCI(t *testing.T) (*HCI, *hcitest.Chip, *hcitest.Clock) {
	clock := hcitest.NewClock()
	chip := hcitest.NewChip(clock)
	h, err := NewHCI(chip, OptClock(clock.Now, clock.Sleep))
	require.NoError(t, err)
	return h, chip, clock
}

func TestSendWritesFrameAndReadsEvent(t *testing.T) {
	h, chip, _ := newTestHCI(t)
	chip.Chunk = 1

	require.NoError(t, h.Send(&cmd.Reset{}, nil))
	require.Equal(t, [][]byte{{0x01, 0x03, 0x0c, 0x00}}, chip.Writes)
	require.Zero(t, chip.Pending())
}

func TestSendIgnoresFailedStatus(t *testing.T) {
	// The event is taken as an acknowledgement whatever it says. A controller
	// rejecting the address still lets the bring-up carry on.
	h, chip, _ := newTestHCI(t)
	chip.Respond = hcitest.Acknowledge(map[uint16][]byte{0xfc01: {0x12}})

	require.NoError(t, h.WriteBDADDR(patchram.BDAddr{0x02, 0x01, 0x55, 0xb1, 0x29, 0x43}))
	require.Equal(t, []byte{0x01, 0x01, 0xfc, 0x06, 0x02, 0x01, 0x55, 0xb1, 0x29, 0x43}, chip.Writes[0])
}

func TestSendIgnoresUnexpectedEvent(t *testing.T) {
	// nor is the event checked against the command that was sent
	h, chip, _ := newTestHCI(t)
	chip.Respond = func([]byte) [][]byte {
		return [][]byte{{0x04, 0xff, 0x01, 0x00}}
	}

	require.NoError(t, h.EnableLowPowerMode())
}

func TestSendUnmarshalsReturnParameters(t *testing.T) {
	h, chip, _ := newTestHCI(t)
	chip.Respond = hcitest.Acknowledge(map[uint16][]byte{
		0xfc79: {0x00, 0x43, 0x0b, 0x34, 0x12, 0x78, 0x56},
	})

	rp := &cmd.ReadVerboseConfigVersionInfoRP{}
	require.NoError(t, h.Send(&cmd.ReadVerboseConfigVersionInfo{}, rp))
	require.Equal(t, uint8(0x43), rp.ChipID)
	require.Equal(t, uint16(0x1234), rp.BuildBase)
	require.Equal(t, uint16(0x5678), rp.BuildNum)
}

func TestSendWriteError(t *testing.T) {
	h, chip, _ := newTestHCI(t)
	chip.WriteErr = io.ErrClosedPipe

	err := h.Send(&cmd.Reset{}, nil)
	require.Equal(t, io.ErrClosedPipe, errors.Cause(err))
}

func TestResetRetries(t *testing.T) {
	h, chip, clock := newTestHCI(t)
	resets := 0
	chip.Respond = func(w []byte) [][]byte {
		resets++
		if resets < 3 {
			return nil
		}
		return [][]byte{hcitest.CommandComplete(0x0c03, 0x00)}
	}
	start := clock.Now()

	require.NoError(t, h.Reset(context.Background()))
	require.Len(t, chip.Writes, 3)
	require.Equal(t, 4*time.Second, chip.WriteTimes[1].Sub(start))
	require.Equal(t, 8*time.Second, chip.WriteTimes[2].Sub(start))
}

func TestResetKeepsLateAnswer(t *testing.T) {
	// The first answer stalls after its first two bytes and only completes
	// once the reset has been repeated, followed by the answer to the repeat.
	h, chip, clock := newTestHCI(t)
	ack := hcitest.Acknowledge(map[uint16][]byte{
		0xfc79: {0x00, 0x43, 0x0b, 0x34, 0x12, 0x78, 0x56},
	})
	complete := hcitest.CommandComplete(0x0c03, 0x00)
	resets := 0
	chip.Respond = func(w []byte) [][]byte {
		if !bytes.Equal(w, []byte{0x01, 0x03, 0x0c, 0x00}) {
			return ack(w)
		}
		resets++
		if resets == 1 {
			return [][]byte{complete[:2]}
		}
		return [][]byte{complete[2:], complete}
	}
	start := clock.Now()

	require.NoError(t, h.Reset(context.Background()))
	require.Len(t, chip.Writes, 2)
	require.Equal(t, 4*time.Second, chip.WriteTimes[1].Sub(start))
	require.Zero(t, chip.Pending())

	rp := &cmd.ReadVerboseConfigVersionInfoRP{}
	require.NoError(t, h.Send(&cmd.ReadVerboseConfigVersionInfo{}, rp))
	require.Equal(t, uint8(0x43), rp.ChipID)
	require.Zero(t, chip.Pending())
}

func TestResetCancelled(t *testing.T) {
	h, _, _ := newTestHCI(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Equal(t, context.Canceled, h.Reset(ctx))
}

func TestUpdateBaudRate(t *testing.T) {
	h, chip, clock := newTestHCI(t)
	baudsAtAck := -1
	chip.Respond = func(w []byte) [][]byte {
		baudsAtAck = len(chip.Bauds)
		return hcitest.Acknowledge(nil)(w)
	}
	start := clock.Now()

	require.NoError(t, h.UpdateBaudRate(115200))
	require.Equal(t, []byte{0x01, 0x18, 0xfc, 0x06, 0x00, 0x00, 0x00, 0xc2, 0x01, 0x00}, chip.Writes[0])
	require.Zero(t, baudsAtAck, "local rate must not change before the command is written")
	require.Equal(t, []int{115200}, chip.Bauds)
	require.Equal(t, BaudRateSettleTime, clock.Since(start))

	require.Error(t, h.UpdateBaudRate(12345))
}

func TestWriteAudio(t *testing.T) {
	h, chip, _ := newTestHCI(t)

	sco, err := patchram.ParseSCOPCM("0,4,0,1,1,0,0,3,3,0")
	require.NoError(t, err)
	require.NoError(t, h.WriteSCOPCM(sco))

	i2s, err := patchram.ParseI2SPCM("1,1,1,1")
	require.NoError(t, err)
	require.NoError(t, h.WriteI2SPCM(i2s))

	require.Equal(t, [][]byte{
		{0x01, 0x1c, 0xfc, 0x05, 0x00, 0x04, 0x00, 0x01, 0x01},
		{0x01, 0x1e, 0xfc, 0x05, 0x00, 0x00, 0x03, 0x03, 0x00},
		{0x01, 0x6d, 0xfc, 0x04, 0x01, 0x01, 0x01, 0x01},
	}, chip.Writes)
}

func TestEnableLowPowerMode(t *testing.T) {
	h, chip, _ := newTestHCI(t)

	require.NoError(t, h.EnableLowPowerMode())
	require.Equal(t, []byte{0x01, 0x27, 0xfc, 0x0c,
		0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00}, chip.Writes[0])
}

// image builds a patchram image from opcode/payload pairs.
func image(records ...[]byte) *bytes.Buffer {
	b := &bytes.Buffer{}
	for _, r := range records {
		b.Write(r)
	}
	return b
}

func record(op uint16, payload ...byte) []byte {
	b := make([]byte, 3, 3+len(payload))
	binary.LittleEndian.PutUint16(b, op)
	b[2] = byte(len(payload))
	return append(b, payload...)
}
