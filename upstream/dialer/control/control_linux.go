//go:build linux

package control

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

func BindToInterface(interfaceName string) Func {
	return func(_ string, _ string, conn syscall.RawConn) error {
		var inErr error
		err := conn.Control(func(fd uintptr) {
			inErr = unix.BindToDevice(int(fd), interfaceName)
		})
		return joinErr(inErr, err)
	}
}

func SetMark(mark uint32) Func {
	return func(_ string, _ string, conn syscall.RawConn) error {
		var inErr error
		err := conn.Control(func(fd uintptr) {
			inErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_MARK, int(mark))
		})
		return joinErr(inErr, err)
	}
}

func joinErr(inErr error, err error) error {
	if inErr != nil {
		if err != nil {
			return fmt.Errorf("errors: %s, and %s", inErr, err)
		}
		return inErr
	}
	return err
}
