//go:build linux
// +build linux

package h4

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

var termiosSpeeds = map[int]uint32{
	9600:    unix.B9600,
	19200:   unix.B19200,
	38400:   unix.B38400,
	57600:   unix.B57600,
	115200:  unix.B115200,
	230400:  unix.B230400,
	460800:  unix.B460800,
	500000:  unix.B500000,
	576000:  unix.B576000,
	921600:  unix.B921600,
	1000000: unix.B1000000,
	1152000: unix.B1152000,
	1500000: unix.B1500000,
	2000000: unix.B2000000,
	2500000: unix.B2500000,
	3000000: unix.B3000000,
	3500000: unix.B3500000,
	4000000: unix.B4000000,
}

func flush(fd uintptr) error {
	return unix.IoctlSetInt(int(fd), unix.TCFLSH, unix.TCIOFLUSH)
}

func setBaudRate(fd uintptr, rate int) error {
	speed, ok := termiosSpeeds[rate]
	if !ok {
		return errors.Errorf("baud rate %d not supported", rate)
	}

	t, err := unix.IoctlGetTermios(int(fd), unix.TCGETS)
	if err != nil {
		return err
	}

	t.Cflag &^= unix.CBAUD | unix.CBAUDEX
	t.Cflag |= speed
	t.Ispeed = speed
	t.Ospeed = speed
	return unix.IoctlSetTermios(int(fd), unix.TCSETS, t)
}

func enableSoftwareFlowControl(fd uintptr) error {
	t, err := unix.IoctlGetTermios(int(fd), unix.TCGETS)
	if err != nil {
		return err
	}

	t.Iflag |= unix.IXON | unix.IXOFF
	t.Lflag |= unix.ICANON
	return unix.IoctlSetTermios(int(fd), unix.TCSETS, t)
}
