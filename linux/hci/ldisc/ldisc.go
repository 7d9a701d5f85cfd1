//go:build linux
// +build linux

// Package ldisc switches a tty to the kernel HCI UART line discipline.
package ldisc

import (
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

func ioR(t, nr, size uintptr) uintptr {
	return (2 << 30) | (t << 8) | nr | (size << 16)
}

func ioW(t, nr, size uintptr) uintptr {
	return (1 << 30) | (t << 8) | nr | (size << 16)
}

func ioctl(fd, op, arg uintptr) error {
	if _, _, ep := unix.Syscall(unix.SYS_IOCTL, fd, op, arg); ep != 0 {
		return ep
	}
	return nil
}

const (
	ioctlSize = 4
	typUART   = 85 // 'U'
)

var (
	hciUARTSetProto  = ioW(typUART, 200, ioctlSize) // HCIUARTSETPROTO
	hciUARTGetProto  = ioR(typUART, 201, ioctlSize) // HCIUARTGETPROTO
	hciUARTGetDevice = ioR(typUART, 202, ioctlSize) // HCIUARTGETDEVICE
)

// Set attaches N_HCI to fd and selects proto. The discipline stays attached for
// as long as fd is open.
func Set(fd uintptr, proto int) error {
	if _, ok := protoNames[proto]; !ok {
		return errors.Errorf("unknown hci uart protocol %d", proto)
	}

	disc := int32(NHCI)
	if err := ioctl(fd, unix.TIOCSETD, uintptr(unsafe.Pointer(&disc))); err != nil {
		return errors.Wrap(err, "can't set line discipline")
	}

	if err := ioctl(fd, hciUARTSetProto, uintptr(proto)); err != nil {
		return errors.Wrapf(err, "can't set hci protocol %s", ProtoName(proto))
	}
	return nil
}

// Device returns the hciN index the kernel assigned to the line.
func Device(fd uintptr) (int, error) {
	id, _, ep := unix.Syscall(unix.SYS_IOCTL, fd, hciUARTGetDevice, 0)
	if ep != 0 {
		return -1, errors.Wrap(ep, "can't get hci device")
	}
	return int(id), nil
}

// Proto returns the protocol currently set on the line.
func Proto(fd uintptr) (int, error) {
	p, _, ep := unix.Syscall(unix.SYS_IOCTL, fd, hciUARTGetProto, 0)
	if ep != 0 {
		return -1, errors.Wrap(ep, "can't get hci protocol")
	}
	return int(p), nil
}
