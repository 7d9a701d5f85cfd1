package patchram

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// SettingKind enumerates the session options that can be given on the command
// line or stored in a profile.
type SettingKind int

const (
	SettingPatchram SettingKind = iota
	SettingBaudRate
	SettingBDAddr
	SettingEnableLPM
	SettingEnableH4
	SettingEnableH5
	SettingUseBaudRateForDownload
	SettingSCOPCM
	SettingI2S
	SettingNo2Bytes
	SettingToSleep
)

// SettingKinds lists every kind in command line order.
var SettingKinds = []SettingKind{
	SettingPatchram,
	SettingBaudRate,
	SettingBDAddr,
	SettingEnableLPM,
	SettingEnableH4,
	SettingEnableH5,
	SettingUseBaudRateForDownload,
	SettingSCOPCM,
	SettingI2S,
	SettingNo2Bytes,
	SettingToSleep,
}

var settingNames = map[SettingKind]string{
	SettingPatchram:               "patchram",
	SettingBaudRate:               "baudrate",
	SettingBDAddr:                 "bd_addr",
	SettingEnableLPM:              "enable_lpm",
	SettingEnableH4:               "enable_h4",
	SettingEnableH5:               "enable_h5",
	SettingUseBaudRateForDownload: "use_baudrate_for_download",
	SettingSCOPCM:                 "scopcm",
	SettingI2S:                    "i2s",
	SettingNo2Bytes:               "no2bytes",
	SettingToSleep:                "tosleep",
}

// String returns the long option name.
func (k SettingKind) String() string {
	if n, ok := settingNames[k]; ok {
		return n
	}
	return "SettingKind(" + strconv.Itoa(int(k)) + ")"
}

// HasArg reports whether the option takes a value.
func (k SettingKind) HasArg() bool {
	switch k {
	case SettingPatchram, SettingBaudRate, SettingBDAddr, SettingSCOPCM, SettingI2S, SettingToSleep:
		return true
	default:
		return false
	}
}

func (k SettingKind) MarshalText() ([]byte, error) {
	n, ok := settingNames[k]
	if !ok {
		return nil, errors.Errorf("unknown setting %d", int(k))
	}
	return []byte(n), nil
}

func (k *SettingKind) UnmarshalText(b []byte) error {
	for kind, n := range settingNames {
		if n == string(b) {
			*k = kind
			return nil
		}
	}
	return errors.Errorf("unknown setting %q", string(b))
}

// Setting is one requested option with its raw argument.
type Setting struct {
	Kind SettingKind `json:"name"`
	Arg  string      `json:"arg,omitempty"`
}

// Option parses the argument and returns the matching configuration function.
func (s Setting) Option() (Option, error) {
	switch s.Kind {
	case SettingPatchram:
		return OptPatchram(s.Arg), nil

	case SettingBaudRate:
		rate, err := strconv.Atoi(s.Arg)
		if err != nil {
			return nil, usageError(err, "invalid baudrate %q", s.Arg)
		}
		return OptBaudRate(rate), nil

	case SettingBDAddr:
		a, err := ParseBDAddr(s.Arg)
		if err != nil {
			return nil, usageError(err, "bd_addr")
		}
		return OptBDAddr(a), nil

	case SettingEnableLPM:
		return OptLowPowerMode(), nil

	case SettingEnableH4:
		return OptTransport(TransportH4), nil

	case SettingEnableH5:
		return OptTransport(TransportH5), nil

	case SettingUseBaudRateForDownload:
		return OptUseBaudRateForDownload(), nil

	case SettingSCOPCM:
		p, err := ParseSCOPCM(s.Arg)
		if err != nil {
			return nil, usageError(err, "scopcm")
		}
		return OptSCOPCM(p), nil

	case SettingI2S:
		p, err := ParseI2SPCM(s.Arg)
		if err != nil {
			return nil, usageError(err, "i2s")
		}
		return OptI2SPCM(p), nil

	case SettingNo2Bytes:
		return OptNo2Bytes(), nil

	case SettingToSleep:
		us, err := strconv.Atoi(s.Arg)
		if err != nil {
			return nil, usageError(err, "invalid tosleep %q", s.Arg)
		}
		return OptSleepBeforeDownload(time.Duration(us) * time.Microsecond), nil

	default:
		return nil, configErrorf(ExitUsage, "unknown option %v", s.Kind)
	}
}

// NewConfigFromSettings dispatches every setting in order and builds the
// session configuration. Later settings of the same kind win.
func NewConfigFromSettings(settings []Setting) (*Config, error) {
	opts := make([]Option, 0, len(settings))
	for _, s := range settings {
		opt, err := s.Option()
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}
	return NewConfig(opts...)
}
