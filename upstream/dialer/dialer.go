package dialer

import (
	"context"
	"net"

	"github.com/towalink/hostname2set/option"
)

type NetDialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

func NewNetDialer(options option.DialerOption) (NetDialer, error) {
	if options.Socks5 != nil {
		return newSocks5Dialer(options)
	}
	return newSimpleDialer(options)
}
