package dialer

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/towalink/hostname2set/constant"
	"github.com/towalink/hostname2set/option"
	"github.com/towalink/hostname2set/upstream/dialer/control"
)

var _ NetDialer = (*simpleDialer)(nil)

type simpleDialer struct {
	tcpDialer *net.Dialer
	udpDialer *net.Dialer
}

func newSimpleDialer(options option.DialerOption) (*simpleDialer, error) {
	tcpDialer := &net.Dialer{Timeout: constant.TCPDialTimeout}
	udpDialer := &net.Dialer{Timeout: constant.UDPDialTimeout}
	if options.Timeout > 0 {
		tcpDialer.Timeout = time.Duration(options.Timeout)
		udpDialer.Timeout = time.Duration(options.Timeout)
	}
	var controls []control.Func
	if options.SoMark > 0 {
		controls = append(controls, control.SetMark(options.SoMark))
	}
	if options.BindInterface != "" {
		netInterface, err := net.InterfaceByName(options.BindInterface)
		if err != nil {
			return nil, fmt.Errorf("failed to get interface %s: %v", options.BindInterface, err)
		}
		controls = append(controls, control.BindToInterface(netInterface.Name))
	}
	if len(controls) > 0 {
		tcpDialer.Control = control.AppendControl(controls...)
		udpDialer.Control = control.AppendControl(controls...)
	}
	if options.BindIP.IsValid() {
		bindIP := options.BindIP.Addr
		tcpDialer.LocalAddr = &net.TCPAddr{
			IP: bindIP.AsSlice(),
		}
		udpDialer.LocalAddr = &net.UDPAddr{
			IP: bindIP.AsSlice(),
		}
	}
	return &simpleDialer{
		tcpDialer: tcpDialer,
		udpDialer: udpDialer,
	}, nil
}

func (d *simpleDialer) DialContext(ctx context.Context, network string, address string) (net.Conn, error) {
	switch network {
	case "tcp", "tcp4", "tcp6":
		return d.tcpDialer.DialContext(ctx, network, address)
	case "udp", "udp4", "udp6":
		return d.udpDialer.DialContext(ctx, network, address)
	}
	return nil, fmt.Errorf("unsupported network %s", network)
}

// Dial lets the dialer forward connections for golang.org/x/net/proxy.
func (d *simpleDialer) Dial(network string, address string) (net.Conn, error) {
	return d.DialContext(context.Background(), network, address)
}
