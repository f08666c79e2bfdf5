// Package ipset applies set statements to kernel ipsets over netlink. The
// kernel has no multi-statement transaction for ipset, so statements are
// applied one by one in order and the table locator is not used.
package ipset

import (
	"errors"

	"github.com/towalink/hostname2set/constant"
)

const BackendName = constant.BackendIPSet

var (
	ErrInetMismatch = errors.New("ipset: address family mismatch")
	ErrClosed       = errors.New("ipset: handle is closed")
)
