// Package hci exchanges HCI commands and events with a Broadcom controller
// during bring-up: reset, patchram download and vendor configuration.
package hci

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/patchram"
	"github.com/rigado/patchram/linux/hci/cmd"
	"github.com/rigado/patchram/linux/hci/evt"
	"github.com/rigado/patchram/linux/hci/h4"
	"github.com/rigado/patchram/sliceops"
)

// Command ...
type Command interface {
	OpCode() int
	Len() int
	Marshal([]byte) error
}

// CommandRP ...
type CommandRP interface {
	Unmarshal(b []byte) error
}

// Port is the serial link to the controller. Reads may return fewer bytes than
// asked for, including none.
type Port interface {
	io.ReadWriter
	SetBaudRate(rate int) error
}

// FrameReader assembles event frames from the port.
type FrameReader interface {
	ReadFrame(b []byte) (int, error)
	ReadFull(b []byte) error
}

// HCI is a half-duplex command channel: every command waits for its event
// before the next one is written.
type HCI struct {
	port        Port
	fr          FrameReader
	now         func() time.Time
	sleep       func(time.Duration)
	retryPeriod time.Duration
	logger      patchram.Logger

	rbuf []byte
}

// NewHCI returns a command channel over port. By default events are read
// with a reader that blocks until the frame is complete.
func NewHCI(port Port, opts ...Option) (*HCI, error) {
	h := &HCI{
		port:        port,
		now:         time.Now,
		sleep:       time.Sleep,
		retryPeriod: DefaultRetryPeriod,
		logger:      patchram.ComponentLogger("hci"),
		rbuf:        make([]byte, h4.MaxFrameLength),
	}
	if err := h.Option(opts...); err != nil {
		return nil, errors.Wrap(err, "can't set options")
	}
	if h.fr == nil {
		h.fr = h4.NewBlockingReader(port)
	}
	return h, nil
}

// Send writes c and waits for the event that follows. The event is taken as
// the acknowledgement of c whatever it contains; a failed status is only
// logged. If r is not nil the return parameters are unmarshalled into it.
func (h *HCI) Send(c Command, r CommandRP) error {
	e, err := h.exchange(c, h.fr)
	if err != nil {
		return err
	}

	cc := e.CommandComplete()
	if cc == nil {
		h.logger.Warnf("%v: answered by event 0x%02x", describe(c), e.Code())
	} else if s := cc.Status(); s != 0x00 {
		h.logger.Warnf("%v: status 0x%02x", describe(c), s)
	}

	if r != nil {
		return errors.Wrapf(r.Unmarshal(cc.ReturnParameters()), "%v: can't unmarshal return parameters", describe(c))
	}
	return nil
}

// Reset sends a reset, repeating it every retry period until the controller
// answers. An answer that was already arriving when the reset was repeated is
// completed, and the answer to the repeat is read and dropped so the next
// exchange starts on a fresh event.
func (h *HCI) Reset(ctx context.Context) error {
	fr := h4.NewTimeoutReader(h.port, h.retryPeriod, h.now)
	late := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		_, err := h.exchange(&cmd.Reset{}, fr)
		if errors.Cause(err) == h4.ErrTimeout {
			if fr.Partial() > 0 {
				late++
			}
			h.logger.Debugf("no answer to reset after %v, resending", h.retryPeriod)
			continue
		}
		if err != nil {
			return err
		}
		break
	}

	for ; late > 0; late-- {
		n, err := fr.ReadFrame(h.rbuf)
		if errors.Cause(err) == h4.ErrTimeout {
			break
		}
		if err != nil {
			return errors.Wrap(err, "can't read answer to repeated reset")
		}
		h.logger.Debugf("dropped answer to repeated reset\n%s", sliceops.Dump(h.rbuf[:n]))
	}
	return nil
}

func (h *HCI) exchange(c Command, fr FrameReader) (evt.Event, error) {
	if err := h.write(c); err != nil {
		return nil, err
	}

	n, err := fr.ReadFrame(h.rbuf)
	if err != nil {
		return nil, errors.Wrapf(err, "%v: can't read event", describe(c))
	}

	e := evt.Event(h.rbuf[:n])
	h.logger.Debugf("received %d\n%s", n, sliceops.Dump(e))
	return e, nil
}

func (h *HCI) write(c Command) error {
	params := make([]byte, c.Len())
	if err := c.Marshal(params); err != nil {
		return errors.Wrapf(err, "%v: can't marshal", describe(c))
	}

	b, err := h4.EncodeCommand(uint16(c.OpCode()), params)
	if err != nil {
		return err
	}

	h.logger.Debugf("writing %v\n%s", describe(c), sliceops.Dump(b))
	n, err := h.port.Write(b)
	if err != nil {
		return errors.Wrapf(err, "%v: can't write", describe(c))
	}
	if n != len(b) {
		return errors.Errorf("%v: short write %d/%d", describe(c), n, len(b))
	}
	return nil
}

func describe(c Command) string {
	if s, ok := c.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("command 0x%04x", c.OpCode())
}
