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
	"github.com/quic-go/quic-go"
)

type quicUpstream struct {
	ctx          context.Context
	tag          string
	logger       log.ContextLogger
	dialer       dialer.NetDialer
	address      string
	queryTimeout time.Duration
	tlsConfig    *tls.Config
	quicConfig   *quic.Config
}

var (
	_ adapter.Upstream  = (*quicUpstream)(nil)
	_ adapter.Exchanger = (*quicUpstream)(nil)
)

func NewQUICUpstream(ctx context.Context, logger log.ContextLogger, options option.UpstreamOption) (adapter.Upstream, error) {
	u := &quicUpstream{
		ctx:    ctx,
		tag:    constant.UpstreamQUIC,
		logger: logger,
	}
	address, err := parseAddress(options.Address, 853)
	if err != nil {
		return nil, fmt.Errorf("create quic upstream fail: parse address fail: %s", err)
	}
	u.address = address
	if options.QueryTimeout > 0 {
		u.queryTimeout = time.Duration(options.QueryTimeout)
	} else {
		u.queryTimeout = constant.DNSQueryTimeout
	}
	u.dialer, err = dialer.NewNetDialer(options.DialerOption)
	if err != nil {
		return nil, fmt.Errorf("create quic upstream fail: create dialer fail: %s", err)
	}
	host, _, _ := net.SplitHostPort(address)
	u.tlsConfig, err = newTLSConfig(options.TLSOption, host, "doq")
	if err != nil {
		return nil, fmt.Errorf("create quic upstream fail: %s", err)
	}
	u.quicConfig = &quic.Config{
		HandshakeIdleTimeout: u.queryTimeout,
	}
	return u, nil
}

func (u *quicUpstream) Tag() string {
	return u.tag
}

func (u *quicUpstream) Type() string {
	return constant.UpstreamQUIC
}

func (u *quicUpstream) Lookup(ctx context.Context, name string, qType uint16) ([]string, error) {
	return lookup(ctx, u, name, qType)
}

func (u *quicUpstream) Exchange(ctx context.Context, dnsMsg *dns.Msg) (*dns.Msg, error) {
	u.logger.InfoContext(ctx, fmt.Sprintf("exchange dns: %s, server: %s", logDNSMsg(dnsMsg), u.address))
	udpConn, err := u.dialer.DialContext(ctx, constant.NetworkUDP, u.address)
	if err != nil {
		err = fmt.Errorf("open connection fail: %w", err)
		u.logger.ErrorContext(ctx, err.Error())
		return nil, err
	}
	defer udpConn.Close()
	u.logger.DebugContext(ctx, "open quic connection")
	quicConn, err := quic.DialEarly(ctx, newPacketConn(udpConn), udpConn.RemoteAddr(), u.tlsConfig.Clone(), u.quicConfig)
	if err != nil {
		err = fmt.Errorf("open quic connection fail: %s", err)
		u.logger.ErrorContext(ctx, err.Error())
		return nil, err
	}
	defer quicConn.CloseWithError(0, "")
	stream, err := quicConn.OpenStreamSync(ctx)
	if err != nil {
		err = fmt.Errorf("open stream fail: %s", err)
		u.logger.ErrorContext(ctx, err.Error())
		return nil, err
	}
	// RFC 9250: the id of a DoQ query is 0
	reqMsg := dnsMsg.Copy()
	reqMsg.Id = 0
	respMsg, err := exchangeStream(ctx, u.logger, newQUICStreamConn(stream, quicConn), reqMsg, u.queryTimeout)
	if err != nil {
		return nil, err
	}
	respMsg.Id = dnsMsg.Id
	return respMsg, nil
}

// exchangeStream is exchangeConn for a QUIC stream: the send side is closed
// after the query so that the server sees the end of the request.
func exchangeStream(ctx context.Context, logger log.ContextLogger, conn *quicStreamConn, dnsMsg *dns.Msg, queryTimeout time.Duration) (*dns.Msg, error) {
	dnsConn := &dns.Conn{Conn: conn}
	defer conn.CancelRead(0)
	if deadline, ok := ctx.Deadline(); ok {
		dnsConn.SetDeadline(deadline)
	} else {
		dnsConn.SetDeadline(time.Now().Add(queryTimeout))
	}
	logger.DebugContext(ctx, "write dns message")
	err := dnsConn.WriteMsg(dnsMsg)
	if err != nil {
		err = fmt.Errorf("write dns message fail: %s", wrapCanceled(ctx, err))
		logger.ErrorContext(ctx, err.Error())
		return nil, err
	}
	conn.Close()
	logger.DebugContext(ctx, "read dns message")
	respMsg, err := dnsConn.ReadMsg()
	if err != nil {
		err = fmt.Errorf("read dns message fail: %s", wrapCanceled(ctx, err))
		logger.ErrorContext(ctx, err.Error())
		return nil, err
	}
	logger.DebugContext(ctx, "read dns message success")
	return respMsg, nil
}

type quicStreamConn struct {
	quic.Stream
	conn quic.Connection
}

func newQUICStreamConn(stream quic.Stream, conn quic.Connection) *quicStreamConn {
	return &quicStreamConn{Stream: stream, conn: conn}
}

func (q *quicStreamConn) LocalAddr() net.Addr {
	return q.conn.LocalAddr()
}

func (q *quicStreamConn) RemoteAddr() net.Addr {
	return q.conn.RemoteAddr()
}
