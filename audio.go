package patchram

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// SCOPCM routes SCO audio. The first five fields go into the SCO/PCM interface
// parameter command, the last five into the PCM data format command.
type SCOPCM struct {
	SCORouting       uint8 // 0 PCM, 1 transport, 2 codec, 3 I2S
	PCMInterfaceRate uint8 // 0 128k, 1 256k, 2 512k, 3 1024k, 4 2048k
	FrameType        uint8 // 0 short, 1 long
	SyncMode         uint8 // 0 slave, 1 master
	ClockMode        uint8 // 0 slave, 1 master

	LSBFirst     uint8
	FillBits     uint8
	FillMethod   uint8 // 0 zeros, 1 ones, 2 signed, 3 programmable
	FillNum      uint8
	RightJustify uint8
}

// I2SPCM configures the I2S/PCM interface.
type I2SPCM struct {
	Enable     uint8
	Master     uint8
	SampleRate uint8 // 0 8kHz, 1 16kHz, 2 4kHz
	ClockRate  uint8 // 0 128kHz, 1 256kHz, 3 1024kHz, 4 2048kHz
}

// ParseSCOPCM parses
// "sco_routing,pcm_interface_rate,frame_type,sync_mode,clock_mode,lsb_first,fill_bits,fill_method,fill_num,right_justify".
func ParseSCOPCM(s string) (SCOPCM, error) {
	v, err := parseUint8List(s, 10)
	if err != nil {
		return SCOPCM{}, errors.Wrap(err, "invalid scopcm")
	}

	return SCOPCM{
		SCORouting:       v[0],
		PCMInterfaceRate: v[1],
		FrameType:        v[2],
		SyncMode:         v[3],
		ClockMode:        v[4],
		LSBFirst:         v[5],
		FillBits:         v[6],
		FillMethod:       v[7],
		FillNum:          v[8],
		RightJustify:     v[9],
	}, nil
}

// ParseI2SPCM parses "i2s_enable,is_master,sample_rate,clock_rate".
func ParseI2SPCM(s string) (I2SPCM, error) {
	v, err := parseUint8List(s, 4)
	if err != nil {
		return I2SPCM{}, errors.Wrap(err, "invalid i2s")
	}

	return I2SPCM{
		Enable:     v[0],
		Master:     v[1],
		SampleRate: v[2],
		ClockRate:  v[3],
	}, nil
}

func parseUint8List(s string, want int) ([]uint8, error) {
	parts := strings.Split(s, ",")
	if len(parts) != want {
		return nil, errors.Errorf("want %d comma separated values, got %d", want, len(parts))
	}

	out := make([]uint8, want)
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return nil, errors.Wrapf(err, "value %d", i)
		}
		out[i] = uint8(n)
	}
	return out, nil
}

func (p SCOPCM) String() string {
	return joinUint8(p.SCORouting, p.PCMInterfaceRate, p.FrameType, p.SyncMode, p.ClockMode,
		p.LSBFirst, p.FillBits, p.FillMethod, p.FillNum, p.RightJustify)
}

func (p I2SPCM) String() string {
	return joinUint8(p.Enable, p.Master, p.SampleRate, p.ClockRate)
}

func joinUint8(v ...uint8) string {
	s := make([]string, len(v))
	for i, n := range v {
		s[i] = strconv.Itoa(int(n))
	}
	return strings.Join(s, ",")
}
