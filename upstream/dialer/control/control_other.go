//go:build !linux

package control

import (
	"errors"
	"syscall"
)

var ErrOSNotSupported = errors.New("control: OS not supported")

func BindToInterface(_ string) Func {
	return func(_ string, _ string, _ syscall.RawConn) error {
		return ErrOSNotSupported
	}
}

func SetMark(_ uint32) Func {
	return func(_ string, _ string, _ syscall.RawConn) error {
		return ErrOSNotSupported
	}
}
