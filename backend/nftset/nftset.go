// Package nftset applies set statements to nftables over netlink. All
// statements of one Apply call are sent as a single batch, which the kernel
// commits atomically.
package nftset

import (
	"errors"

	"github.com/towalink/hostname2set/constant"
)

const BackendName = constant.BackendNftables

var (
	ErrInetMismatch = errors.New("nftset: address family mismatch")
	ErrConnClosed   = errors.New("nftset: conn is closed")
	ErrSetFlags     = errors.New("nftset: unsupported set")
)
