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

type tcpUpstream struct {
	ctx          context.Context
	tag          string
	logger       log.ContextLogger
	dialer       dialer.NetDialer
	address      string
	queryTimeout time.Duration
}

var (
	_ adapter.Upstream  = (*tcpUpstream)(nil)
	_ adapter.Exchanger = (*tcpUpstream)(nil)
)

func NewTCPUpstream(ctx context.Context, logger log.ContextLogger, options option.UpstreamOption) (adapter.Upstream, error) {
	return newTCPUpstream(ctx, logger, constant.UpstreamTCP, options)
}

func newTCPUpstream(ctx context.Context, logger log.ContextLogger, tag string, options option.UpstreamOption) (*tcpUpstream, error) {
	u := &tcpUpstream{
		ctx:    ctx,
		tag:    tag,
		logger: logger,
	}
	address, err := parseAddress(options.Address, 53)
	if err != nil {
		return nil, fmt.Errorf("create tcp upstream fail: parse address fail: %s", err)
	}
	u.address = address
	if options.QueryTimeout > 0 {
		u.queryTimeout = time.Duration(options.QueryTimeout)
	} else {
		u.queryTimeout = constant.DNSQueryTimeout
	}
	d, err := dialer.NewNetDialer(options.DialerOption)
	if err != nil {
		return nil, fmt.Errorf("create tcp upstream fail: create dialer fail: %s", err)
	}
	u.dialer = d
	return u, nil
}

func (u *tcpUpstream) Tag() string {
	return u.tag
}

func (u *tcpUpstream) Type() string {
	return constant.UpstreamTCP
}

func (u *tcpUpstream) Lookup(ctx context.Context, name string, qType uint16) ([]string, error) {
	return lookup(ctx, u, name, qType)
}

func (u *tcpUpstream) Exchange(ctx context.Context, dnsMsg *dns.Msg) (*dns.Msg, error) {
	u.logger.InfoContext(ctx, fmt.Sprintf("exchange dns: %s, server: %s", logDNSMsg(dnsMsg), u.address))
	conn, err := u.dialer.DialContext(ctx, constant.NetworkTCP, u.address)
	if err != nil {
		err = fmt.Errorf("open connection fail: %w", err)
		u.logger.ErrorContext(ctx, err.Error())
		return nil, err
	}
	u.logger.DebugContext(ctx, "open new connection")
	return exchangeConn(ctx, u.logger, conn, dnsMsg, u.queryTimeout)
}
