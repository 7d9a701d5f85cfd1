// Package linux brings a Broadcom controller on a serial line up to the point
// where the kernel Bluetooth stack can take it over.
package linux

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/patchram"
	"github.com/rigado/patchram/hcd"
	"github.com/rigado/patchram/linux/hci"
	"github.com/rigado/patchram/linux/hci/h5"
	"github.com/rigado/patchram/linux/hci/ldisc"
)

const (
	// DefaultSyncAttempt bounds one round of 3-wire sync frames.
	DefaultSyncAttempt = 20 * time.Second

	// DefaultSyncBackoff is the pause between two rounds.
	DefaultSyncBackoff = 4 * time.Second
)

// Handoff is implemented by ports that can be given to the kernel.
type Handoff interface {
	EnableSoftwareFlowControl() error
	SetLineDiscipline(proto int) error
}

// Bringup runs the whole session on one port.
type Bringup struct {
	cfg   *patchram.Config
	port  hci.Port
	image io.Reader

	now         func() time.Time
	sleep       func(time.Duration)
	backoff     func(context.Context, time.Duration) error
	retryPeriod time.Duration
	syncAttempt time.Duration
	syncBackoff time.Duration
	logger      patchram.Logger
}

// An Option configures a Bringup.
type Option func(*Bringup)

// OptImage supplies the patchram image instead of opening cfg.Patchram.
func OptImage(r io.Reader) Option {
	return func(b *Bringup) {
		b.image = r
	}
}

// OptClock replaces time.Now and time.Sleep.
func OptClock(now func() time.Time, sleep func(time.Duration)) Option {
	return func(b *Bringup) {
		b.now = now
		b.sleep = sleep
		b.backoff = func(ctx context.Context, d time.Duration) error {
			sleep(d)
			return ctx.Err()
		}
	}
}

// OptRetryPeriod sets how often unanswered reset and 3-wire frames are resent.
func OptRetryPeriod(d time.Duration) Option {
	return func(b *Bringup) {
		b.retryPeriod = d
	}
}

// OptSyncAttempt sets the length of a sync round and the pause after it.
func OptSyncAttempt(attempt, backoff time.Duration) Option {
	return func(b *Bringup) {
		b.syncAttempt = attempt
		b.syncBackoff = backoff
	}
}

// NewBringup returns a session for cfg over port.
func NewBringup(cfg *patchram.Config, port hci.Port, opts ...Option) *Bringup {
	b := &Bringup{
		cfg:         cfg,
		port:        port,
		now:         time.Now,
		sleep:       time.Sleep,
		backoff:     h5.Sleep,
		retryPeriod: hci.DefaultRetryPeriod,
		syncAttempt: DefaultSyncAttempt,
		syncBackoff: DefaultSyncBackoff,
		logger:      patchram.ComponentLogger("bringup"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run resets the controller, downloads the patchram, applies the requested
// settings and, when a transport is selected, hands the port over. The port
// has to stay open afterwards for the kernel to keep it.
func (b *Bringup) Run(ctx context.Context) error {
	cfg := b.cfg

	h, err := hci.NewHCI(b.port,
		hci.OptClock(b.now, b.sleep),
		hci.OptRetryPeriod(b.retryPeriod),
	)
	if err != nil {
		return err
	}

	if err := h.Reset(ctx); err != nil {
		return errors.Wrap(err, "reset")
	}

	if cfg.UseBaudRateForDownload && cfg.BaudRate != 0 {
		if err := h.UpdateBaudRate(cfg.BaudRate); err != nil {
			return errors.Wrap(err, "baudrate for download")
		}
	}

	if cfg.Patchram != "" || b.image != nil {
		if err := b.download(ctx, h); err != nil {
			return err
		}
	}

	if cfg.BaudRate != 0 {
		if err := h.UpdateBaudRate(cfg.BaudRate); err != nil {
			return errors.Wrap(err, "baudrate")
		}
	}

	if cfg.BDAddr != nil {
		if err := h.WriteBDADDR(*cfg.BDAddr); err != nil {
			return errors.Wrap(err, "bd_addr")
		}
	}

	if cfg.LowPowerMode {
		if err := h.EnableLowPowerMode(); err != nil {
			return errors.Wrap(err, "enable_lpm")
		}
	}

	if cfg.SCOPCM != nil {
		if err := h.WriteSCOPCM(*cfg.SCOPCM); err != nil {
			return errors.Wrap(err, "scopcm")
		}
	}

	if cfg.I2SPCM != nil {
		if err := h.WriteI2SPCM(*cfg.I2SPCM); err != nil {
			return errors.Wrap(err, "i2s")
		}
	}

	if cfg.Transport() == patchram.TransportH5 {
		if err := b.handshake(ctx); err != nil {
			return err
		}
	}

	return b.handoff()
}

func (b *Bringup) download(ctx context.Context, h *hci.HCI) error {
	image := b.image
	if image == nil {
		f, err := hcd.Open(b.cfg.Patchram)
		if err != nil {
			return err
		}
		defer f.Close()
		image = f
	}

	if _, err := h.DownloadPatchram(ctx, image, b.cfg.No2Bytes, b.cfg.SleepBeforeDownload); err != nil {
		return errors.Wrap(err, "patchram")
	}

	if b.cfg.UseBaudRateForDownload {
		// the controller is back at the default rate after the reset below
		if err := b.port.SetBaudRate(patchram.DefaultBaudRate); err != nil {
			return err
		}
	}

	return errors.Wrap(h.Reset(ctx), "reset after download")
}

func (b *Bringup) handshake(ctx context.Context) error {
	b.logger.Infof("start %v", b.now().Format(time.ANSIC))

	hs := h5.New(b.port, h5.OptClock(b.now), h5.OptRetryPeriod(b.retryPeriod))
	if err := hs.Run(ctx, b.syncAttempt, b.syncBackoff, b.backoff); err != nil {
		return errors.Wrap(err, "h5 link establishment")
	}

	b.logger.Infof("end %v", b.now().Format(time.ANSIC))
	return nil
}

func (b *Bringup) handoff() error {
	var proto int
	switch b.cfg.Transport() {
	case patchram.TransportH4:
		proto = ldisc.ProtoH4
	case patchram.TransportH5:
		proto = ldisc.ProtoH5
	default:
		return nil
	}

	p, ok := b.port.(Handoff)
	if !ok {
		return &patchram.ConfigError{
			Code: patchram.ExitUsage,
			Err:  errors.Errorf("%v hand-off needs a local serial port", b.cfg.Transport()),
		}
	}

	if proto == ldisc.ProtoH5 {
		if err := p.EnableSoftwareFlowControl(); err != nil {
			return err
		}
	}

	if err := p.SetLineDiscipline(proto); err != nil {
		return err
	}
	b.logger.Debugf("done setting line discipline")
	return nil
}
