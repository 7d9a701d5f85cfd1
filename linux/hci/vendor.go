package hci

import (
	"github.com/pkg/errors"
	"github.com/rigado/patchram"
	"github.com/rigado/patchram/linux/hci/cmd"
)

// UpdateBaudRate asks the controller to switch to rate, then follows with the
// local end once the command is acknowledged at the old rate.
func (h *HCI) UpdateBaudRate(rate int) error {
	if !patchram.IsSupportedBaudRate(rate) {
		return errors.Errorf("baudrate %d not supported", rate)
	}

	c := &cmd.UpdateUARTBaudRate{ExplicitRate: patchram.EncodeBaudRate(uint32(rate))}
	if err := h.Send(c, nil); err != nil {
		return err
	}

	if err := h.port.SetBaudRate(rate); err != nil {
		return err
	}
	h.logger.Debugf("done setting baudrate %d", rate)

	h.sleep(BaudRateSettleTime)
	return nil
}

// WriteBDADDR sets the device address.
func (h *HCI) WriteBDADDR(a patchram.BDAddr) error {
	h.logger.Debugf("writing bd_addr %v", a)
	return h.Send(&cmd.WriteBDADDR{BDADDR: a}, nil)
}

// EnableLowPowerMode turns on UART sleep mode.
func (h *HCI) EnableLowPowerMode() error {
	return h.Send(cmd.UARTSleepMode(), nil)
}

// WriteSCOPCM sets SCO routing and then the PCM data format.
func (h *HCI) WriteSCOPCM(p patchram.SCOPCM) error {
	err := h.Send(&cmd.WriteSCOPCMIntParam{
		SCORouting:       p.SCORouting,
		PCMInterfaceRate: p.PCMInterfaceRate,
		FrameType:        p.FrameType,
		SyncMode:         p.SyncMode,
		ClockMode:        p.ClockMode,
	}, nil)
	if err != nil {
		return err
	}

	return h.Send(&cmd.WritePCMDataFormatParam{
		LSBFirst:     p.LSBFirst,
		FillBits:     p.FillBits,
		FillMethod:   p.FillMethod,
		FillNum:      p.FillNum,
		RightJustify: p.RightJustify,
	}, nil)
}

// WriteI2SPCM sets up the I2S/PCM interface.
func (h *HCI) WriteI2SPCM(p patchram.I2SPCM) error {
	return h.Send(&cmd.WriteI2SPCMInterfaceParam{
		Enable:     p.Enable,
		Master:     p.Master,
		SampleRate: p.SampleRate,
		ClockRate:  p.ClockRate,
	}, nil)
}
