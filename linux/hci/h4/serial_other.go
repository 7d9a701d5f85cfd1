//go:build !linux
// +build !linux

package h4

import "fmt"

func flush(fd uintptr) error {
	return nil
}

func setBaudRate(fd uintptr, rate int) error {
	return fmt.Errorf("only available on linux")
}

func enableSoftwareFlowControl(fd uintptr) error {
	return fmt.Errorf("only available on linux")
}
