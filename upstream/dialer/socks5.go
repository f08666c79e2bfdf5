package dialer

import (
	"context"
	"fmt"
	"net"
	"net/netip"

	"github.com/towalink/hostname2set/constant"
	"github.com/towalink/hostname2set/option"

	"golang.org/x/net/proxy"
)

var _ NetDialer = (*socks5Dialer)(nil)

type socks5Dialer struct {
	socks5Dialer proxy.ContextDialer
}

func newSocks5Dialer(options option.DialerOption) (NetDialer, error) {
	simpleDialer, err := newSimpleDialer(options)
	if err != nil {
		return nil, err
	}
	socks5Address, err := netip.ParseAddrPort(options.Socks5.Address)
	if err != nil || !socks5Address.IsValid() {
		return nil, fmt.Errorf("failed to parse socks5 address %s: %v", options.Socks5.Address, err)
	}
	var auth *proxy.Auth
	if options.Socks5.Username != "" && options.Socks5.Password != "" {
		auth = &proxy.Auth{
			User:     options.Socks5.Username,
			Password: options.Socks5.Password,
		}
	}
	d, err := proxy.SOCKS5(constant.NetworkTCP, socks5Address.String(), auth, simpleDialer)
	if err != nil {
		return nil, fmt.Errorf("failed to create socks5 dialer: %s", err)
	}
	contextDialer, ok := d.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("socks5 dialer does not support context")
	}
	return &socks5Dialer{
		socks5Dialer: contextDialer,
	}, nil
}

func (d *socks5Dialer) DialContext(ctx context.Context, network string, address string) (net.Conn, error) {
	switch network {
	case "tcp", "tcp4", "tcp6":
		return d.socks5Dialer.DialContext(ctx, network, address)
	}
	return nil, fmt.Errorf("socks5 dialer: unsupported network %s", network)
}
