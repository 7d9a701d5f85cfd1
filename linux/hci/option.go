package hci

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/patchram"
)

// An Option is a configuration function for an HCI.
type Option func(*HCI) error

// Option applies opts in order.
func (h *HCI) Option(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(h); err != nil {
			return err
		}
	}
	return nil
}

// SetFrameReader replaces the blocking event reader.
func (h *HCI) SetFrameReader(fr FrameReader) error {
	h.fr = fr
	return nil
}

// SetClock replaces time.Now and time.Sleep.
func (h *HCI) SetClock(now func() time.Time, sleep func(time.Duration)) error {
	if now == nil || sleep == nil {
		return errors.New("clock needs both now and sleep")
	}
	h.now = now
	h.sleep = sleep
	return nil
}

// SetRetryPeriod overrides DefaultRetryPeriod.
func (h *HCI) SetRetryPeriod(d time.Duration) error {
	if d <= 0 {
		return errors.Errorf("invalid retry period %v", d)
	}
	h.retryPeriod = d
	return nil
}

// SetLogger replaces the component logger.
func (h *HCI) SetLogger(l patchram.Logger) error {
	h.logger = l
	return nil
}

// OptFrameReader sets the event reader.
func OptFrameReader(fr FrameReader) Option {
	return func(h *HCI) error {
		return h.SetFrameReader(fr)
	}
}

// OptClock sets the time source used for retries and pauses.
func OptClock(now func() time.Time, sleep func(time.Duration)) Option {
	return func(h *HCI) error {
		return h.SetClock(now, sleep)
	}
}

// OptRetryPeriod sets the reset retry period.
func OptRetryPeriod(d time.Duration) Option {
	return func(h *HCI) error {
		return h.SetRetryPeriod(d)
	}
}

// OptLogger sets the logger.
func OptLogger(l patchram.Logger) Option {
	return func(h *HCI) error {
		return h.SetLogger(l)
	}
}
