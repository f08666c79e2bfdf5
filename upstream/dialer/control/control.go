package control

import (
	"syscall"
)

type Func = func(network string, address string, c syscall.RawConn) error

// AppendControl chains control functions, stopping at the first error.
func AppendControl(fs ...Func) Func {
	return func(network string, address string, c syscall.RawConn) error {
		for _, f := range fs {
			if f == nil {
				continue
			}
			err := f(network, address, c)
			if err != nil {
				return err
			}
		}
		return nil
	}
}
