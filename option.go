package patchram

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Transport is the host protocol the port is handed over to after bring-up.
type Transport int

const (
	TransportNone Transport = iota
	TransportH4
	TransportH5
)

func (t Transport) String() string {
	switch t {
	case TransportH4:
		return "h4"
	case TransportH5:
		return "h5"
	default:
		return "none"
	}
}

// Config is the session configuration. It is built once by NewConfig before any
// protocol activity and only read afterwards. A reset is always implied.
type Config struct {
	// Patchram is the path of the .hcd image, empty for no download.
	Patchram string

	// BaudRate is the operational rate, 0 to stay at DefaultBaudRate.
	BaudRate int

	// UseBaudRateForDownload switches to BaudRate before the download.
	UseBaudRateForDownload bool

	BDAddr       *BDAddr
	LowPowerMode bool
	SCOPCM       *SCOPCM
	I2SPCM       *I2SPCM

	// No2Bytes skips the two bytes older chips send after the minidriver is loaded.
	No2Bytes bool

	// SleepBeforeDownload is the settle time before the first patch record.
	SleepBeforeDownload time.Duration

	EnableH4 bool
	EnableH5 bool
}

// An Option is a configuration function, which configures the session.
type Option func(*Config) error

// NewConfig applies opts in order and validates the result.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.EnableH4 && c.EnableH5 {
		return configErrorf(ExitUsage, "both h4 and h5 cannot be enabled at the same time")
	}
	if c.BaudRate != 0 && !IsSupportedBaudRate(c.BaudRate) {
		return configErrorf(ExitUsage, "baudrate %d not supported", c.BaudRate)
	}
	return nil
}

// Transport returns the requested hand-off protocol.
func (c *Config) Transport() Transport {
	switch {
	case c.EnableH4:
		return TransportH4
	case c.EnableH5:
		return TransportH5
	default:
		return TransportNone
	}
}

// ValidatePatchramName checks that path names an .hcd file.
func ValidatePatchramName(path string) error {
	ext := filepath.Ext(path)
	if ext == "" {
		return configErrorf(ExitNoExtension, "file %s not an HCD file", path)
	}
	if !strings.EqualFold(ext[1:], "hcd") {
		return configErrorf(ExitNotHCD, "file %s not an HCD file", path)
	}
	return nil
}

// OptPatchram downloads the image at path after the reset.
func OptPatchram(path string) Option {
	return func(c *Config) error {
		if err := ValidatePatchramName(path); err != nil {
			return err
		}
		c.Patchram = path
		return nil
	}
}

// OptBaudRate switches the chip and the port to rate.
func OptBaudRate(rate int) Option {
	return func(c *Config) error {
		if !IsSupportedBaudRate(rate) {
			return configErrorf(ExitUsage, "baudrate %d not supported", rate)
		}
		c.BaudRate = rate
		return nil
	}
}

// OptUseBaudRateForDownload performs the download at the configured baud rate.
func OptUseBaudRateForDownload() Option {
	return func(c *Config) error {
		c.UseBaudRateForDownload = true
		return nil
	}
}

// OptBDAddr writes a device address.
func OptBDAddr(a BDAddr) Option {
	return func(c *Config) error {
		c.BDAddr = &a
		return nil
	}
}

// OptLowPowerMode enables the UART sleep mode.
func OptLowPowerMode() Option {
	return func(c *Config) error {
		c.LowPowerMode = true
		return nil
	}
}

// OptSCOPCM configures SCO routing and the PCM data format.
func OptSCOPCM(p SCOPCM) Option {
	return func(c *Config) error {
		c.SCOPCM = &p
		return nil
	}
}

// OptI2SPCM configures the I2S/PCM interface.
func OptI2SPCM(p I2SPCM) Option {
	return func(c *Config) error {
		c.I2SPCM = &p
		return nil
	}
}

// OptNo2Bytes skips the two byte confirmation before the download.
func OptNo2Bytes() Option {
	return func(c *Config) error {
		c.No2Bytes = true
		return nil
	}
}

// OptSleepBeforeDownload pauses for d before the first patch record is sent.
func OptSleepBeforeDownload(d time.Duration) Option {
	return func(c *Config) error {
		if d <= 0 {
			return configErrorf(ExitUsage, "invalid sleep %v", d)
		}
		c.SleepBeforeDownload = d
		return nil
	}
}

// OptTransport selects the protocol the port is handed to at the end.
func OptTransport(t Transport) Option {
	return func(c *Config) error {
		switch t {
		case TransportH4:
			c.EnableH4 = true
		case TransportH5:
			c.EnableH5 = true
		case TransportNone:
		default:
			return errors.Errorf("unknown transport %d", t)
		}
		return nil
	}
}
