package upstream

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/towalink/hostname2set/adapter"
	"github.com/towalink/hostname2set/constant"
	"github.com/towalink/hostname2set/log"
	"github.com/towalink/hostname2set/option"
	"github.com/towalink/hostname2set/upstream/dialer"

	"github.com/miekg/dns"
)

type tlsUpstream struct {
	ctx          context.Context
	tag          string
	logger       log.ContextLogger
	dialer       dialer.NetDialer
	address      string
	queryTimeout time.Duration
	tlsConfig    *tls.Config
}

var (
	_ adapter.Upstream  = (*tlsUpstream)(nil)
	_ adapter.Exchanger = (*tlsUpstream)(nil)
)

func NewTLSUpstream(ctx context.Context, logger log.ContextLogger, options option.UpstreamOption) (adapter.Upstream, error) {
	u := &tlsUpstream{
		ctx:    ctx,
		tag:    constant.UpstreamTLS,
		logger: logger,
	}
	address, err := parseAddress(options.Address, 853)
	if err != nil {
		return nil, fmt.Errorf("create tls upstream fail: parse address fail: %s", err)
	}
	u.address = address
	if options.QueryTimeout > 0 {
		u.queryTimeout = time.Duration(options.QueryTimeout)
	} else {
		u.queryTimeout = constant.DNSQueryTimeout
	}
	d, err := dialer.NewNetDialer(options.DialerOption)
	if err != nil {
		return nil, fmt.Errorf("create tls upstream fail: create dialer fail: %s", err)
	}
	u.dialer = d
	host, _, _ := net.SplitHostPort(address)
	u.tlsConfig, err = newTLSConfig(options.TLSOption, host)
	if err != nil {
		return nil, fmt.Errorf("create tls upstream fail: %s", err)
	}
	return u, nil
}

func (u *tlsUpstream) Tag() string {
	return u.tag
}

func (u *tlsUpstream) Type() string {
	return constant.UpstreamTLS
}

func (u *tlsUpstream) Lookup(ctx context.Context, name string, qType uint16) ([]string, error) {
	return lookup(ctx, u, name, qType)
}

func (u *tlsUpstream) Exchange(ctx context.Context, dnsMsg *dns.Msg) (*dns.Msg, error) {
	u.logger.InfoContext(ctx, fmt.Sprintf("exchange dns: %s, server: %s", logDNSMsg(dnsMsg), u.address))
	conn, err := u.dialer.DialContext(ctx, constant.NetworkTCP, u.address)
	if err != nil {
		err = fmt.Errorf("open connection fail: %w", err)
		u.logger.ErrorContext(ctx, err.Error())
		return nil, err
	}
	u.logger.DebugContext(ctx, "open new connection")
	tlsConn := tls.Client(conn, u.tlsConfig.Clone())
	err = tlsConn.HandshakeContext(ctx)
	if err != nil {
		conn.Close()
		err = fmt.Errorf("tls handshake fail: %s", err)
		u.logger.ErrorContext(ctx, err.Error())
		return nil, err
	}
	u.logger.DebugContext(ctx, "tls handshake success")
	return exchangeConn(ctx, u.logger, tlsConn, dnsMsg, u.queryTimeout)
}
