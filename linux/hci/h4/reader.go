package h4

import (
	"io"
	"time"

	"github.com/pkg/errors"
)

// ErrTimeout is returned by a bounded Reader when the frame did not complete in time.
var ErrTimeout = errors.New("timeout waiting for frame")

// Reader assembles event frames from a stream that may return fewer bytes than
// asked for, or none at all, on any call.
//
// A Reader built with NewBlockingReader waits as long as it takes. Nothing in
// the frame is checked beyond its length byte.
type Reader struct {
	r       io.Reader
	timeout time.Duration
	now     func() time.Time

	// bytes of a frame cut short by ErrTimeout
	partial []byte
}

// NewBlockingReader returns a Reader that never gives up.
func NewBlockingReader(r io.Reader) *Reader {
	return &Reader{r: r, now: time.Now}
}

// NewTimeoutReader returns a Reader that fails with ErrTimeout if a frame is not
// complete within timeout. The bytes read so far are kept and the next
// ReadFrame carries on with the same frame. now may be nil.
func NewTimeoutReader(r io.Reader, timeout time.Duration, now func() time.Time) *Reader {
	if now == nil {
		now = time.Now
	}
	return &Reader{r: r, timeout: timeout, now: now}
}

// Partial returns the number of bytes held from a frame that timed out.
func (fr *Reader) Partial() int {
	return len(fr.partial)
}

// ReadFrame reads one frame into b and returns its length. b is reused by
// callers, so only b[:n] is meaningful.
func (fr *Reader) ReadFrame(b []byte) (int, error) {
	if len(b) < HeaderLength || len(b) < len(fr.partial) {
		return 0, io.ErrShortBuffer
	}

	deadline := fr.deadline()
	i := copy(b, fr.partial)
	fr.partial = fr.partial[:0]

	i, err := fr.fill(b, i, HeaderLength, deadline)
	if err != nil {
		return 0, err
	}

	hdr, _ := DecodeEventHeader(b)
	n := hdr.FrameLength()
	if n > len(b) {
		return HeaderLength, errors.Wrapf(io.ErrShortBuffer, "frame of %d bytes", n)
	}

	if _, err := fr.fill(b, i, n, deadline); err != nil {
		return HeaderLength, err
	}
	return n, nil
}

// ReadFull reads exactly len(b) raw bytes.
func (fr *Reader) ReadFull(b []byte) error {
	_, err := fr.fill(b, 0, len(b), fr.deadline())
	return err
}

func (fr *Reader) deadline() time.Time {
	if fr.timeout > 0 {
		return fr.now().Add(fr.timeout)
	}
	return time.Time{}
}

// fill reads into b[i:end] and returns how far it got.
func (fr *Reader) fill(b []byte, i, end int, deadline time.Time) (int, error) {
	for i < end {
		n, err := fr.r.Read(b[i:end])
		i += n
		if err != nil {
			return i, errors.Wrap(err, "can't read frame")
		}
		if i < end && !deadline.IsZero() && !fr.now().Before(deadline) {
			fr.partial = append(fr.partial[:0], b[:i]...)
			return i, ErrTimeout
		}
	}
	return i, nil
}
