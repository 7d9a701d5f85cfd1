package h5

import (
	"fmt"

	"github.com/pkg/errors"
)

// Delimiter opens and closes every 3-wire frame.
const Delimiter = 0xc0

const (
	escape        = 0xdb
	escDelimiter  = 0xdc
	escEscape     = 0xdd
	headerLength  = 4
	linkPacketTyp = 15
)

// Link establishment frames, already SLIP encoded.
var (
	SyncFrame               = []byte{0xc0, 0x00, 0x2f, 0x00, 0xd0, 0x01, 0x7e, 0xc0}
	SyncResponseFrame       = []byte{0xc0, 0x00, 0x2f, 0x00, 0xd0, 0x02, 0x7d, 0xc0}
	ConfigFrame             = []byte{0xc0, 0x00, 0x3f, 0x00, 0xdb, 0xdc, 0x03, 0xfc, 0x1b, 0xc0}
	ConfigResponseFrame     = []byte{0xc0, 0x00, 0x3f, 0x00, 0xdb, 0xdc, 0x04, 0x7b, 0x1b, 0xc0}
	ConfigNullResponseFrame = []byte{0xc0, 0x00, 0x2f, 0x00, 0xd0, 0x04, 0x7b, 0xc0}
)

var linkMessages = map[[2]byte]string{
	{0x01, 0x7e}: "sync",
	{0x02, 0x7d}: "sync response",
	{0x03, 0xfc}: "config",
	{0x04, 0x7b}: "config response",
	{0x05, 0xfa}: "sleep",
	{0x06, 0xf9}: "woken",
	{0x07, 0x78}: "wakeup",
}

// Unslip strips the delimiters from a frame and undoes the escaping.
func Unslip(f []byte) ([]byte, error) {
	if len(f) >= 1 && f[0] == Delimiter {
		f = f[1:]
	}
	if len(f) >= 1 && f[len(f)-1] == Delimiter {
		f = f[:len(f)-1]
	}

	out := make([]byte, 0, len(f))
	for i := 0; i < len(f); i++ {
		switch f[i] {
		case Delimiter:
			return nil, errors.Errorf("delimiter inside frame at %d", i)
		case escape:
			i++
			if i == len(f) {
				return nil, errors.New("frame ends in escape")
			}
			switch f[i] {
			case escDelimiter:
				out = append(out, Delimiter)
			case escEscape:
				out = append(out, escape)
			default:
				return nil, errors.Errorf("invalid escape 0x%02x", f[i])
			}
		default:
			out = append(out, f[i])
		}
	}
	return out, nil
}

// Header is the 4 byte packet header of an unescaped frame.
type Header struct {
	Seq      uint8
	Ack      uint8
	CRC      bool
	Reliable bool
	Type     uint8
	Length   int
}

// ParseHeader decodes the header at the start of an unescaped frame and checks
// its checksum.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < headerLength {
		return Header{}, errors.Errorf("header too short: %d bytes", len(b))
	}

	if sum := b[0] + b[1] + b[2] + b[3]; sum != 0xff {
		return Header{}, errors.Errorf("bad header checksum 0x%02x", b[3])
	}

	return Header{
		Seq:      b[0] & 0x07,
		Ack:      (b[0] >> 3) & 0x07,
		CRC:      b[0]&0x40 != 0,
		Reliable: b[0]&0x80 != 0,
		Type:     b[1] & 0x0f,
		Length:   int(b[2])<<4 | int(b[1]>>4),
	}, nil
}

// Describe returns a one line summary of an encoded frame for traces.
func Describe(f []byte) string {
	b, err := Unslip(f)
	if err != nil {
		return err.Error()
	}
	h, err := ParseHeader(b)
	if err != nil {
		return err.Error()
	}

	s := fmt.Sprintf("seq %d ack %d reliable %t type %d len %d", h.Seq, h.Ack, h.Reliable, h.Type, h.Length)
	if h.Type == linkPacketTyp && len(b) >= headerLength+2 {
		if name, ok := linkMessages[[2]byte{b[4], b[5]}]; ok {
			s += " (" + name + ")"
		}
	}
	return s
}
