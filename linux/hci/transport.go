package hci

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/patchram"
	"github.com/rigado/patchram/linux/hci/h4"
)

// Transport describes where the controller is attached. Exactly one of
// UART and Socket is set.
type Transport struct {
	UART   *TransportUART
	Socket *TransportSocket
}

type TransportUART struct {
	Path string
}

// TransportSocket is a TCP serial bridge.
type TransportSocket struct {
	Addr    string
	Timeout time.Duration
}

// PortCloser is a Port that is released at the end of the session.
type PortCloser interface {
	Port
	io.Closer
}

// OpenTransport opens the port described by t. A failure is a configuration
// error with exit status patchram.ExitPortOpen.
func OpenTransport(t Transport) (PortCloser, error) {
	var p PortCloser
	var err error

	switch {
	case t.UART != nil && t.Socket != nil:
		return nil, &patchram.ConfigError{Code: patchram.ExitUsage, Err: errors.New("both uart and tcp transport given")}

	case t.UART != nil:
		so := h4.DefaultSerialOptions()
		so.PortName = t.UART.Path
		p, err = h4.NewSerial(so)

	case t.Socket != nil:
		p, err = h4.NewSocket(t.Socket.Addr, t.Socket.Timeout)

	default:
		return nil, &patchram.ConfigError{Code: patchram.ExitUsage, Err: errors.New("no valid transport found")}
	}

	if err != nil {
		return nil, &patchram.ConfigError{Code: patchram.ExitPortOpen, Err: err}
	}
	return p, nil
}
