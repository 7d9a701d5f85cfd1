// Package h5 brings up the Three-wire UART transport link before the port is
// handed to the kernel.
package h5

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/patchram"
	"github.com/rigado/patchram/sliceops"
)

// DefaultRetryPeriod is how long a link frame waits for its answer before it is
// sent again.
const DefaultRetryPeriod = 4 * time.Second

// State of the link establishment.
type State int

const (
	Unsynchronized State = iota
	Synchronized
	Configured
)

func (s State) String() string {
	switch s {
	case Unsynchronized:
		return "unsynchronized"
	case Synchronized:
		return "synchronized"
	case Configured:
		return "configured"
	default:
		return "unknown"
	}
}

// Handshake runs the sync and config phases over rw. rw must return (0, nil)
// when no data is available yet instead of blocking forever.
type Handshake struct {
	rw     io.ReadWriter
	state  State
	now    func() time.Time
	timer  retryTimer
	logger patchram.Logger

	rbuf    []byte
	pending []byte
}

// An Option configures a Handshake.
type Option func(*Handshake)

// OptRetryPeriod overrides DefaultRetryPeriod.
func OptRetryPeriod(d time.Duration) Option {
	return func(h *Handshake) {
		h.timer.period = d
	}
}

// OptClock replaces time.Now.
func OptClock(now func() time.Time) Option {
	return func(h *Handshake) {
		h.now = now
	}
}

// OptLogger replaces the component logger.
func OptLogger(l patchram.Logger) Option {
	return func(h *Handshake) {
		h.logger = l
	}
}

// New returns a Handshake in the Unsynchronized state.
func New(rw io.ReadWriter, opts ...Option) *Handshake {
	h := &Handshake{
		rw:     rw,
		now:    time.Now,
		timer:  retryTimer{period: DefaultRetryPeriod},
		logger: patchram.ComponentLogger("h5"),
		rbuf:   make([]byte, 64),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.timer.now = h.now
	return h
}

// State returns the current link state.
func (h *Handshake) State() State {
	return h.state
}

// Sync sends sync frames until the peer answers with a sync response. It gives
// up and returns false once attempt has passed; attempt 0 means never.
func (h *Handshake) Sync(ctx context.Context, attempt time.Duration) (bool, error) {
	var until time.Time
	if attempt > 0 {
		until = h.now().Add(attempt)
	}

	if err := h.send(SyncFrame); err != nil {
		return false, err
	}
	h.timer.arm()
	defer h.timer.cancel()

	for {
		f, err := h.next(ctx, until)
		if err != nil {
			return false, err
		}

		if f == nil {
			if !until.IsZero() && !h.now().Before(until) {
				h.logger.Debugf("no sync response within %v", attempt)
				return false, nil
			}
			if err := h.send(SyncFrame); err != nil {
				return false, err
			}
			h.timer.arm()
			continue
		}

		if len(f) > 6 && f[6] == 0x7d {
			h.timer.cancel()
			h.state = Synchronized
			return true, nil
		}

		// the peer is syncing with us
		if err := h.send(SyncResponseFrame); err != nil {
			return false, err
		}
	}
}

// Configure sends config frames until the peer answers with a config response.
// It must follow a successful Sync.
func (h *Handshake) Configure(ctx context.Context) error {
	if h.state != Synchronized {
		return errors.Errorf("can't configure link in state %v", h.state)
	}

	if err := h.send(ConfigFrame); err != nil {
		return err
	}
	h.timer.arm()
	defer h.timer.cancel()

	for {
		f, err := h.next(ctx, time.Time{})
		if err != nil {
			return err
		}

		var reply []byte
		switch {
		case f == nil:
			h.timer.arm()
			reply = ConfigFrame

		case len(f) == 8:
			if f[5] == 0x03 && f[6] == 0xfc {
				reply = ConfigNullResponseFrame
			} else {
				reply = SyncResponseFrame
			}

		case len(f) > 7 && f[7] == 0x7b:
			h.timer.cancel()
			h.state = Configured
			return nil

		default:
			reply = ConfigResponseFrame
		}

		if err := h.send(reply); err != nil {
			return err
		}
	}
}

// Run syncs, retrying every backoff after an attempt without answer, then
// configures the link. It only returns early if ctx is done or the port fails.
// sleep waits out the backoff and may be nil for Sleep.
func (h *Handshake) Run(ctx context.Context, attempt, backoff time.Duration, sleep func(context.Context, time.Duration) error) error {
	if sleep == nil {
		sleep = Sleep
	}

	for {
		ok, err := h.Sync(ctx, attempt)
		if err != nil {
			return err
		}
		if ok {
			break
		}
		h.logger.Infof("link not synchronized, retrying in %v", backoff)
		if err := sleep(ctx, backoff); err != nil {
			return err
		}
	}
	return h.Configure(ctx)
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (h *Handshake) send(f []byte) error {
	h.logger.Debugf("writing %s\n%s", Describe(f), sliceops.Dump(f))
	if _, err := h.rw.Write(f); err != nil {
		return errors.Wrap(err, "can't write link frame")
	}
	return nil
}

// next returns the next complete frame, or nil once the retry timer has expired
// or until has passed.
func (h *Handshake) next(ctx context.Context, until time.Time) ([]byte, error) {
	for {
		if f := h.assemble(); f != nil {
			h.logger.Debugf("received %s\n%s", Describe(f), sliceops.Dump(f))
			return f, nil
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if h.timer.expired() || (!until.IsZero() && !h.now().Before(until)) {
			return nil, nil
		}

		n, err := h.rw.Read(h.rbuf)
		if err != nil {
			return nil, errors.Wrap(err, "can't read link frame")
		}
		h.pending = append(h.pending, h.rbuf[:n]...)
	}
}

// assemble cuts the first delimited frame out of the pending bytes. Bytes before
// the opening delimiter are dropped.
func (h *Handshake) assemble() []byte {
	for {
		start := bytes.IndexByte(h.pending, Delimiter)
		if start < 0 {
			h.pending = h.pending[:0]
			return nil
		}
		h.pending = h.pending[start:]

		end := bytes.IndexByte(h.pending[1:], Delimiter)
		if end < 0 {
			return nil
		}
		end++

		if end == 1 {
			// back to back delimiters, the second one opens the frame
			h.pending = h.pending[1:]
			continue
		}

		f := make([]byte, end+1)
		copy(f, h.pending[:end+1])
		// the closing delimiter may also open the next frame
		h.pending = h.pending[end:]
		return f
	}
}
