package h4

import (
	"io"
	"sync"

	"github.com/jacobsa/go-serial/serial"
	"github.com/pkg/errors"
	"github.com/rigado/patchram"
	"github.com/rigado/patchram/linux/hci/ldisc"
)

// DefaultSerialOptions returns raw 8N1 at the reset rate, without RTS/CTS.
func DefaultSerialOptions() serial.OpenOptions {
	return serial.OpenOptions{
		PortName:              "/dev/ttyHS0",
		BaudRate:              patchram.DefaultBaudRate,
		DataBits:              8,
		ParityMode:            serial.PARITY_NONE,
		StopBits:              1,
		RTSCTSFlowControl:     false,
		MinimumReadSize:       0,
		InterCharacterTimeout: 100,
	}
}

// Serial is a local UART. A read that hits the inter-character timeout
// returns no bytes and no error.
type Serial struct {
	rwc    io.ReadWriteCloser
	fd     uintptr
	logger patchram.Logger

	rmu  sync.Mutex
	wmu  sync.Mutex
	done chan int
	cmu  sync.Mutex
}

// NewSerial opens and flushes the port described by opts.
func NewSerial(opts serial.OpenOptions) (*Serial, error) {
	// force these
	opts.MinimumReadSize = 0
	if opts.InterCharacterTimeout == 0 {
		opts.InterCharacterTimeout = 100
	}

	logger := patchram.ComponentLogger("h4")
	logger.Debugf("opening %s", opts.PortName)

	rwc, err := serial.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "port %s could not be opened", opts.PortName)
	}

	f, ok := rwc.(interface{ Fd() uintptr })
	if !ok {
		rwc.Close()
		return nil, errors.Errorf("port %s has no file descriptor", opts.PortName)
	}

	s := &Serial{
		rwc:    rwc,
		fd:     f.Fd(),
		logger: logger,
		done:   make(chan int),
	}

	if err := flush(s.fd); err != nil {
		rwc.Close()
		return nil, errors.Wrapf(err, "can't flush %s", opts.PortName)
	}
	return s, nil
}

func (s *Serial) Read(p []byte) (int, error) {
	if !s.isOpen() {
		return 0, io.EOF
	}

	s.rmu.Lock()
	defer s.rmu.Unlock()

	n, err := s.rwc.Read(p)
	if err == io.EOF {
		// inter-character timeout
		return n, nil
	}
	return n, errors.Wrap(err, "can't read serial")
}

func (s *Serial) Write(p []byte) (int, error) {
	if !s.isOpen() {
		return 0, io.EOF
	}

	s.wmu.Lock()
	defer s.wmu.Unlock()

	n, err := s.rwc.Write(p)
	return n, errors.Wrap(err, "can't write serial")
}

// SetBaudRate switches the local end of the link to rate.
func (s *Serial) SetBaudRate(rate int) error {
	return errors.Wrapf(setBaudRate(s.fd, rate), "can't set baud rate %d", rate)
}

// EnableSoftwareFlowControl turns XON/XOFF and canonical mode back on, which the
// 3-wire line discipline expects to find.
func (s *Serial) EnableSoftwareFlowControl() error {
	return errors.Wrap(enableSoftwareFlowControl(s.fd), "can't enable software flow control")
}

// SetLineDiscipline hands the port to the kernel Bluetooth stack.
func (s *Serial) SetLineDiscipline(proto int) error {
	if err := ldisc.Set(s.fd, proto); err != nil {
		return err
	}

	id, err := ldisc.Device(s.fd)
	if err != nil {
		s.logger.Warnf("line discipline set, %v", err)
		return nil
	}
	p, err := ldisc.Proto(s.fd)
	if err != nil {
		s.logger.Warnf("line discipline set, %v", err)
		return nil
	}
	s.logger.Infof("attached as hci%d using %s", id, ldisc.ProtoName(p))
	return nil
}

// Fd returns the file descriptor of the port.
func (s *Serial) Fd() uintptr {
	return s.fd
}

func (s *Serial) Close() error {
	s.cmu.Lock()
	defer s.cmu.Unlock()

	select {
	case <-s.done:
		return nil

	default:
		close(s.done)
		s.rmu.Lock()
		err := s.rwc.Close()
		s.rmu.Unlock()

		return errors.Wrap(err, "can't close serial")
	}
}

func (s *Serial) isOpen() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}
