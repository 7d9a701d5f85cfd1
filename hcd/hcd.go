// Package hcd reads Broadcom patchram images.
//
// An image is a plain sequence of records, each laid out like an HCI command
// without its packet indicator:
//
//	opcode_lo, opcode_hi, length, payload[length]
//
// The records are replayed to the chip one at a time.
package hcd

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rigado/patchram"
)

const (
	headerOffsetOpCode = 0
	headerOffsetLength = 2
	headerLength       = 3
)

// Record is one command of a patchram image.
type Record struct {
	OpCode  uint16
	Payload []byte
}

func (r Record) String() string {
	return fmt.Sprintf("record 0x%04x, %d bytes", r.OpCode, len(r.Payload))
}

// Reader yields the records of an image in file order.
type Reader struct {
	r   io.Reader
	hdr [headerLength]byte
	buf [255]byte
	n   int
}

// NewReader returns a Reader over the image r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Next returns the next record. The payload is only valid until the following
// call. It returns io.EOF once no header byte is left, which is the normal end
// of an image; a record cut short is reported as io.ErrUnexpectedEOF.
func (r *Reader) Next() (Record, error) {
	_, err := io.ReadFull(r.r, r.hdr[:])
	switch {
	case err == io.EOF:
		return Record{}, io.EOF
	case err == io.ErrUnexpectedEOF:
		return Record{}, errors.Wrapf(err, "record %d: truncated header", r.n)
	case err != nil:
		return Record{}, errors.Wrapf(err, "record %d: can't read header", r.n)
	}

	rec := Record{OpCode: binary.LittleEndian.Uint16(r.hdr[headerOffsetOpCode:])}
	l := int(r.hdr[headerOffsetLength])

	if _, err := io.ReadFull(r.r, r.buf[:l]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return Record{}, errors.Wrapf(err, "record %d: can't read %d byte payload", r.n, l)
	}

	rec.Payload = r.buf[:l]
	r.n++
	return rec, nil
}

// Count returns the number of records returned so far.
func (r *Reader) Count() int {
	return r.n
}

// Open validates the file name and opens the image at path.
func Open(path string) (*os.File, error) {
	if err := patchram.ValidatePatchramName(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &patchram.ConfigError{
			Code: patchram.ExitPatchramOpen,
			Err:  errors.Wrapf(err, "file %s could not be opened", path),
		}
	}
	return f, nil
}
