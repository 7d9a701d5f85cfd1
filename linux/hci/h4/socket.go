package h4

import (
	"io"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/patchram"
)

// DefaultSocketTimeout bounds each read and write on a serial bridge.
const DefaultSocketTimeout = 100 * time.Millisecond

// Socket reaches the chip through a TCP serial bridge such as ser2net. The
// bridge owns the line settings, so baud rate changes are only logged.
type Socket struct {
	cwt    *connWithTimeout
	logger patchram.Logger

	done chan int
	cmu  sync.Mutex
}

// NewSocket dials the bridge at addr.
func NewSocket(addr string, timeout time.Duration) (*Socket, error) {
	if timeout <= 0 {
		timeout = DefaultSocketTimeout
	}

	c, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, errors.Wrapf(err, "can't dial %s", addr)
	}

	return &Socket{
		cwt:    &connWithTimeout{c: c, timeout: timeout},
		logger: patchram.ComponentLogger("h4"),
		done:   make(chan int),
	}, nil
}

func (s *Socket) Read(p []byte) (int, error) {
	if !s.isOpen() {
		return 0, io.EOF
	}
	n, err := s.cwt.Read(p)
	return n, errors.Wrap(err, "can't read h4 socket")
}

func (s *Socket) Write(p []byte) (int, error) {
	if !s.isOpen() {
		return 0, io.EOF
	}
	n, err := s.cwt.Write(p)
	return n, errors.Wrap(err, "can't write h4 socket")
}

// SetBaudRate is a no-op; the bridge has to be reconfigured out of band.
func (s *Socket) SetBaudRate(rate int) error {
	s.logger.Warnf("baud rate %d must be set on the serial bridge", rate)
	return nil
}

func (s *Socket) Close() error {
	s.cmu.Lock()
	defer s.cmu.Unlock()

	select {
	case <-s.done:
		return nil

	default:
		close(s.done)
		return errors.Wrap(s.cwt.Close(), "can't close h4 socket")
	}
}

func (s *Socket) isOpen() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}
