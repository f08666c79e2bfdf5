package upstream

import (
	"context"
	"fmt"
	"time"

	"github.com/towalink/hostname2set/adapter"
	"github.com/towalink/hostname2set/constant"
	"github.com/towalink/hostname2set/log"
	"github.com/towalink/hostname2set/option"
	"github.com/towalink/hostname2set/upstream/dialer"

	"github.com/miekg/dns"
)

type udpUpstream struct {
	ctx          context.Context
	tag          string
	logger       log.ContextLogger
	dialer       dialer.NetDialer
	address      string
	queryTimeout time.Duration
}

var (
	_ adapter.Upstream  = (*udpUpstream)(nil)
	_ adapter.Exchanger = (*udpUpstream)(nil)
)

func NewUDPUpstream(ctx context.Context, logger log.ContextLogger, options option.UpstreamOption) (adapter.Upstream, error) {
	return newUDPUpstream(ctx, logger, constant.UpstreamUDP, options)
}

func newUDPUpstream(ctx context.Context, logger log.ContextLogger, tag string, options option.UpstreamOption) (*udpUpstream, error) {
	u := &udpUpstream{
		ctx:    ctx,
		tag:    tag,
		logger: logger,
	}
	address, err := parseAddress(options.Address, 53)
	if err != nil {
		return nil, fmt.Errorf("create udp upstream fail: parse address fail: %s", err)
	}
	u.address = address
	if options.QueryTimeout > 0 {
		u.queryTimeout = time.Duration(options.QueryTimeout)
	} else {
		u.queryTimeout = constant.DNSQueryTimeout
	}
	d, err := dialer.NewNetDialer(options.DialerOption)
	if err != nil {
		return nil, fmt.Errorf("create udp upstream fail: create dialer fail: %s", err)
	}
	u.dialer = d
	return u, nil
}

func (u *udpUpstream) Tag() string {
	return u.tag
}

func (u *udpUpstream) Type() string {
	return constant.UpstreamUDP
}

func (u *udpUpstream) Address() string {
	return u.address
}

func (u *udpUpstream) Lookup(ctx context.Context, name string, qType uint16) ([]string, error) {
	return lookup(ctx, u, name, qType)
}

func (u *udpUpstream) Exchange(ctx context.Context, dnsMsg *dns.Msg) (*dns.Msg, error) {
	u.logger.InfoContext(ctx, fmt.Sprintf("exchange dns: %s, server: %s", logDNSMsg(dnsMsg), u.address))
	conn, err := u.dialer.DialContext(ctx, constant.NetworkUDP, u.address)
	if err != nil {
		err = fmt.Errorf("open connection fail: %w", err)
		u.logger.ErrorContext(ctx, err.Error())
		return nil, err
	}
	u.logger.DebugContext(ctx, "open new connection")
	return exchangeConn(ctx, u.logger, newPacketConn(conn), dnsMsg, u.queryTimeout)
}
