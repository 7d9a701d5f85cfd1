package h4

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Packet indicators.
const (
	CommandPacket byte = 0x01
	ACLPacket     byte = 0x02
	SCOPacket     byte = 0x03
	EventPacket   byte = 0x04
)

const (
	headerOffsetPacketType = 0
	headerOffsetEventCode  = 1
	headerOffsetDataLength = 2

	// HeaderLength is the size of an event header.
	HeaderLength = 3

	commandOffsetOpCode     = 1
	commandOffsetDataLength = 3
	commandHeaderLength     = 4

	// MaxParamLength is the largest parameter block a length byte can describe.
	MaxParamLength = 255

	// MaxFrameLength is the largest command frame.
	MaxFrameLength = commandHeaderLength + MaxParamLength
)

var (
	ErrFrameTooLong = errors.New("parameters longer than 255 bytes")
	ErrShortFrame   = errors.New("frame shorter than its header")
)

// EncodeCommand builds a command frame: indicator, opcode (little endian),
// parameter length, parameters.
func EncodeCommand(opcode uint16, params []byte) ([]byte, error) {
	if len(params) > MaxParamLength {
		return nil, errors.Wrapf(ErrFrameTooLong, "opcode 0x%04x: %d bytes", opcode, len(params))
	}

	b := make([]byte, commandHeaderLength+len(params))
	b[headerOffsetPacketType] = CommandPacket
	binary.LittleEndian.PutUint16(b[commandOffsetOpCode:], opcode)
	b[commandOffsetDataLength] = byte(len(params))
	copy(b[commandHeaderLength:], params)
	return b, nil
}

// DecodeCommand splits a frame built by EncodeCommand.
func DecodeCommand(b []byte) (uint16, []byte, error) {
	if len(b) < commandHeaderLength {
		return 0, nil, ErrShortFrame
	}
	if b[headerOffsetPacketType] != CommandPacket {
		return 0, nil, errors.Errorf("not a command frame: indicator 0x%02x", b[headerOffsetPacketType])
	}

	l := int(b[commandOffsetDataLength])
	if len(b) < commandHeaderLength+l {
		return 0, nil, ErrShortFrame
	}
	return binary.LittleEndian.Uint16(b[commandOffsetOpCode:]), b[commandHeaderLength : commandHeaderLength+l], nil
}

// EventHeader is the fixed part of an event frame.
type EventHeader struct {
	PacketType  byte
	EventCode   byte
	ParamLength int
}

// FrameLength is the size of the whole frame the header announces.
func (h EventHeader) FrameLength() int {
	return HeaderLength + h.ParamLength
}

// DecodeEventHeader reads the first three bytes of an event frame. The third
// byte is always the length of what follows.
func DecodeEventHeader(b []byte) (EventHeader, error) {
	if len(b) < HeaderLength {
		return EventHeader{}, ErrShortFrame
	}
	return EventHeader{
		PacketType:  b[headerOffsetPacketType],
		EventCode:   b[headerOffsetEventCode],
		ParamLength: int(b[headerOffsetDataLength]),
	}, nil
}
