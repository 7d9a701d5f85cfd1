// Package hcitest provides a scripted controller for exercising the bring-up
// code without hardware.
package hcitest

import (
	"encoding/binary"
	"io"
	"time"
)

// DefaultMaxIdle bounds the consecutive empty reads a Chip serves before it
// reports io.EOF, so a test waiting for bytes that never come fails instead of
// spinning.
const DefaultMaxIdle = 100000

// Chip is a fake controller on the other end of a serial link. Responses are
// queued by Respond for every write and handed out at most Chunk bytes per
// read. An empty read returns (0, nil) and advances Clock by IdleStep.
type Chip struct {
	// Chunk limits the bytes returned per read, 0 for no limit.
	Chunk int

	// Respond returns what the chip sends back after a write.
	Respond func(w []byte) [][]byte

	Clock    *Clock
	IdleStep time.Duration
	MaxIdle  int

	// WriteErr is returned by every write when set.
	WriteErr error

	Writes     [][]byte
	WriteTimes []time.Time
	Bauds      []int

	pending []byte
	idle    int
}

// NewChip returns a chip on clock that acknowledges every command.
func NewChip(clock *Clock) *Chip {
	return &Chip{
		Respond:  Acknowledge(nil),
		Clock:    clock,
		IdleStep: 100 * time.Millisecond,
	}
}

func (c *Chip) Read(p []byte) (int, error) {
	if len(c.pending) == 0 {
		c.idle++
		limit := c.MaxIdle
		if limit == 0 {
			limit = DefaultMaxIdle
		}
		if c.idle > limit {
			return 0, io.EOF
		}
		if c.Clock != nil {
			c.Clock.Advance(c.IdleStep)
		}
		return 0, nil
	}
	c.idle = 0

	n := len(p)
	if c.Chunk > 0 && n > c.Chunk {
		n = c.Chunk
	}
	n = copy(p[:n], c.pending)
	c.pending = c.pending[n:]
	return n, nil
}

func (c *Chip) Write(p []byte) (int, error) {
	if c.WriteErr != nil {
		return 0, c.WriteErr
	}

	w := make([]byte, len(p))
	copy(w, p)
	c.Writes = append(c.Writes, w)
	if c.Clock != nil {
		c.WriteTimes = append(c.WriteTimes, c.Clock.Now())
	}

	if c.Respond != nil {
		for _, r := range c.Respond(w) {
			c.Inject(r)
		}
	}
	return len(p), nil
}

// SetBaudRate records the rate.
func (c *Chip) SetBaudRate(rate int) error {
	c.Bauds = append(c.Bauds, rate)
	return nil
}

// Inject queues bytes for reading.
func (c *Chip) Inject(b []byte) {
	c.pending = append(c.pending, b...)
}

// Pending returns the number of queued bytes not read yet.
func (c *Chip) Pending() int {
	return len(c.pending)
}

// OpCodes returns the opcode of every command frame written, in order.
func (c *Chip) OpCodes() []uint16 {
	var ops []uint16
	for _, w := range c.Writes {
		if len(w) >= 4 && w[0] == 0x01 {
			ops = append(ops, binary.LittleEndian.Uint16(w[1:]))
		}
	}
	return ops
}

// CommandComplete builds a Command Complete event for opcode with the given
// return parameters.
func CommandComplete(opcode uint16, ret ...byte) []byte {
	b := []byte{0x04, 0x0e, byte(3 + len(ret)), 0x01, byte(opcode), byte(opcode >> 8)}
	return append(b, ret...)
}

// Acknowledge answers every command frame with a Command Complete carrying
// ret[opcode], or a success status when the opcode is not in ret.
func Acknowledge(ret map[uint16][]byte) func([]byte) [][]byte {
	return func(w []byte) [][]byte {
		if len(w) < 4 || w[0] != 0x01 {
			return nil
		}
		op := binary.LittleEndian.Uint16(w[1:])
		if r, ok := ret[op]; ok {
			return [][]byte{CommandComplete(op, r...)}
		}
		return [][]byte{CommandComplete(op, 0x00)}
	}
}
