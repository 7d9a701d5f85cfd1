//go:build !linux
// +build !linux

package ldisc

import "fmt"

// Set is a dummy function for non-Linux platform.
func Set(fd uintptr, proto int) error {
	return fmt.Errorf("only available on linux")
}

// Device is a dummy function for non-Linux platform.
func Device(fd uintptr) (int, error) {
	return -1, fmt.Errorf("only available on linux")
}

// Proto is a dummy function for non-Linux platform.
func Proto(fd uintptr) (int, error) {
	return -1, fmt.Errorf("only available on linux")
}
