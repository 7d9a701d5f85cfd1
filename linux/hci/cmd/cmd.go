// Package cmd defines the HCI commands sent during bring-up.
package cmd

import (
	"bytes"
	"encoding/binary"
	"io"
)

const (
	ogfHostControl    = 0x03
	ogfVendorSpecific = 0x3f
	ogfBitShift       = 10
)

func opCode(ogf, ocf int) int {
	return ogf<<ogfBitShift | ocf
}

func marshal(c interface{}, b []byte, l int) error {
	buf := bytes.NewBuffer(b)
	buf.Reset()
	if buf.Cap() < l {
		return io.ErrShortBuffer
	}
	return binary.Write(buf, binary.LittleEndian, c)
}

// Reset implements Reset (0x03|0x0003) [Vol 2, Part E, 7.3.2]
type Reset struct{}

func (c *Reset) String() string { return "Reset (0x03|0x0003)" }

// OpCode returns the opcode of the command.
func (c *Reset) OpCode() int { return opCode(ogfHostControl, 0x0003) }

// Len returns the length of the command.
func (c *Reset) Len() int { return 0 }

// Marshal serializes the command parameters into binary form.
func (c *Reset) Marshal(b []byte) error { return nil }

// ReadVerboseConfigVersionInfo implements the Broadcom version query (0x3f|0x0079).
type ReadVerboseConfigVersionInfo struct{}

func (c *ReadVerboseConfigVersionInfo) String() string {
	return "Read Verbose Config Version Info (0x3f|0x0079)"
}

func (c *ReadVerboseConfigVersionInfo) OpCode() int { return opCode(ogfVendorSpecific, 0x0079) }

func (c *ReadVerboseConfigVersionInfo) Len() int { return 0 }

func (c *ReadVerboseConfigVersionInfo) Marshal(b []byte) error { return nil }

// ReadVerboseConfigVersionInfoRP holds the return parameters of ReadVerboseConfigVersionInfo.
type ReadVerboseConfigVersionInfoRP struct {
	Status    uint8
	ChipID    uint8
	TargetID  uint8
	BuildBase uint16
	BuildNum  uint16
}

// Unmarshal de-serializes the return parameters. Chips are not consistent
// about the trailing fields, so only status and chip id are required.
func (c *ReadVerboseConfigVersionInfoRP) Unmarshal(b []byte) error {
	if len(b) < 2 {
		return io.ErrUnexpectedEOF
	}
	c.Status = b[0]
	c.ChipID = b[1]
	if len(b) >= 7 {
		c.TargetID = b[2]
		c.BuildBase = binary.LittleEndian.Uint16(b[3:])
		c.BuildNum = binary.LittleEndian.Uint16(b[5:])
	}
	return nil
}

// DownloadMinidriver puts the chip in patchram download mode (0x3f|0x002e).
type DownloadMinidriver struct{}

func (c *DownloadMinidriver) String() string { return "Download Minidriver (0x3f|0x002e)" }

func (c *DownloadMinidriver) OpCode() int { return opCode(ogfVendorSpecific, 0x002e) }

func (c *DownloadMinidriver) Len() int { return 0 }

func (c *DownloadMinidriver) Marshal(b []byte) error { return nil }

// UpdateUARTBaudRate implements the Broadcom baud rate change (0x3f|0x0018).
type UpdateUARTBaudRate struct {
	EncodedBaudRate uint16 // 0x0000 selects the explicit rate below
	ExplicitRate    [4]byte
}

func (c *UpdateUARTBaudRate) String() string { return "Update UART Baud Rate (0x3f|0x0018)" }

func (c *UpdateUARTBaudRate) OpCode() int { return opCode(ogfVendorSpecific, 0x0018) }

func (c *UpdateUARTBaudRate) Len() int { return 6 }

func (c *UpdateUARTBaudRate) Marshal(b []byte) error { return marshal(c, b, c.Len()) }

// WriteBDADDR implements the Broadcom address write (0x3f|0x0001).
type WriteBDADDR struct {
	BDADDR [6]byte
}

func (c *WriteBDADDR) String() string { return "Write BD_ADDR (0x3f|0x0001)" }

func (c *WriteBDADDR) OpCode() int { return opCode(ogfVendorSpecific, 0x0001) }

func (c *WriteBDADDR) Len() int { return 6 }

func (c *WriteBDADDR) Marshal(b []byte) error { return marshal(c, b, c.Len()) }

// WriteSleepMode implements the Broadcom low power mode setup (0x3f|0x0027).
type WriteSleepMode struct {
	SleepMode                         uint8
	IdleThresholdHost                 uint8
	IdleThresholdHC                   uint8
	BTWakeActiveMode                  uint8
	HostWakeActiveMode                uint8
	AllowHostSleepDuringSCO           uint8
	CombineSleepModeAndLPM            uint8
	EnableTristateControl             uint8
	ActiveConnectionHandlingOnSuspend uint8
	ResumeTimeout                     uint8
	EnableBreakToHost                 uint8
	PulsedHostWake                    uint8
}

// UARTSleepMode returns the parameters used by --enable_lpm.
func UARTSleepMode() *WriteSleepMode {
	return &WriteSleepMode{
		SleepMode:               0x01, // UART
		IdleThresholdHost:       0x01,
		IdleThresholdHC:         0x01,
		BTWakeActiveMode:        0x01,
		HostWakeActiveMode:      0x01,
		AllowHostSleepDuringSCO: 0x01,
		CombineSleepModeAndLPM:  0x01,
	}
}

func (c *WriteSleepMode) String() string { return "Write Sleep Mode (0x3f|0x0027)" }

func (c *WriteSleepMode) OpCode() int { return opCode(ogfVendorSpecific, 0x0027) }

func (c *WriteSleepMode) Len() int { return 12 }

func (c *WriteSleepMode) Marshal(b []byte) error { return marshal(c, b, c.Len()) }

// WriteSCOPCMIntParam implements the Broadcom SCO routing setup (0x3f|0x001c).
type WriteSCOPCMIntParam struct {
	SCORouting       uint8
	PCMInterfaceRate uint8
	FrameType        uint8
	SyncMode         uint8
	ClockMode        uint8
}

func (c *WriteSCOPCMIntParam) String() string { return "Write SCO PCM Int Param (0x3f|0x001c)" }

func (c *WriteSCOPCMIntParam) OpCode() int { return opCode(ogfVendorSpecific, 0x001c) }

func (c *WriteSCOPCMIntParam) Len() int { return 5 }

func (c *WriteSCOPCMIntParam) Marshal(b []byte) error { return marshal(c, b, c.Len()) }

// WritePCMDataFormatParam implements the Broadcom PCM sample format setup (0x3f|0x001e).
type WritePCMDataFormatParam struct {
	LSBFirst     uint8
	FillBits     uint8
	FillMethod   uint8
	FillNum      uint8
	RightJustify uint8
}

func (c *WritePCMDataFormatParam) String() string { return "Write PCM Data Format Param (0x3f|0x001e)" }

func (c *WritePCMDataFormatParam) OpCode() int { return opCode(ogfVendorSpecific, 0x001e) }

func (c *WritePCMDataFormatParam) Len() int { return 5 }

func (c *WritePCMDataFormatParam) Marshal(b []byte) error { return marshal(c, b, c.Len()) }

// WriteI2SPCMInterfaceParam implements the Broadcom I2S/PCM setup (0x3f|0x006d).
type WriteI2SPCMInterfaceParam struct {
	Enable     uint8
	Master     uint8
	SampleRate uint8
	ClockRate  uint8
}

func (c *WriteI2SPCMInterfaceParam) String() string {
	return "Write I2S PCM Interface Param (0x3f|0x006d)"
}

func (c *WriteI2SPCMInterfaceParam) OpCode() int { return opCode(ogfVendorSpecific, 0x006d) }

func (c *WriteI2SPCMInterfaceParam) Len() int { return 4 }

func (c *WriteI2SPCMInterfaceParam) Marshal(b []byte) error { return marshal(c, b, c.Len()) }

// Raw is a command replayed verbatim, such as a patchram record.
type Raw struct {
	Op     uint16
	Params []byte
}

func (c *Raw) OpCode() int { return int(c.Op) }

func (c *Raw) Len() int { return len(c.Params) }

func (c *Raw) Marshal(b []byte) error {
	if len(b) < len(c.Params) {
		return io.ErrShortBuffer
	}
	copy(b, c.Params)
	return nil
}
