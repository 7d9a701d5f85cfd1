package evt

import (
	"encoding/binary"
	"fmt"
)

func (e Event) PacketTypeWErr() (uint8, error) {
	return getByte(e, 0, 0)
}

func (e Event) CodeWErr() (uint8, error) {
	return getByte(e, 1, 0)
}

func (e Event) ParameterLengthWErr() (uint8, error) {
	return getByte(e, 2, 0)
}

// ParametersWErr returns the declared parameter bytes; an empty parameter
// block is not an error.
func (e Event) ParametersWErr() ([]byte, error) {
	l, err := e.ParameterLengthWErr()
	if err != nil {
		return nil, err
	}
	if l == 0 {
		return []byte{}, nil
	}
	return getBytes(e, 3, int(l))
}

func (e CommandComplete) NumHCICommandPacketsWErr() (uint8, error) {
	return getByte(e, 0, 0)
}

func (e CommandComplete) CommandOpcodeWErr() (uint16, error) {
	return getUint16LE(e, 1, 0xffff)
}

func (e CommandComplete) ReturnParametersWErr() ([]byte, error) {
	return getBytes(e, 3, -1)
}

func (e CommandComplete) StatusWErr() (uint8, error) {
	return getByte(e, 3, 0xff)
}

//get or default
func getByte(b []byte, i int, def byte) (byte, error) {
	bb, err := getBytes(b, i, 1)
	if err != nil {
		return def, err
	}
	return bb[0], nil
}

//get or default
func getUint16LE(b []byte, i int, def uint16) (uint16, error) {
	bb, err := getBytes(b, i, 2)
	if err != nil {
		return def, err
	}
	return binary.LittleEndian.Uint16(bb), nil
}

func getBytes(bytes []byte, start int, count int) ([]byte, error) {
	if bytes == nil || start >= len(bytes) {
		return nil, fmt.Errorf("index error")
	}

	if count < 0 {
		return bytes[start:], nil
	}

	end := start + count
	//end is non-inclusive
	if end > len(bytes) {
		return nil, fmt.Errorf("index error")
	}

	return bytes[start:end], nil
}
