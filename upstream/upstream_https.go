package upstream

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/towalink/hostname2set/adapter"
	"github.com/towalink/hostname2set/constant"
	"github.com/towalink/hostname2set/log"
	"github.com/towalink/hostname2set/option"
	"github.com/towalink/hostname2set/upstream/dialer"

	"github.com/miekg/dns"
	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
	"golang.org/x/net/http2"
)

const dnsMessageContentType = "application/dns-message"

type httpsUpstream struct {
	ctx          context.Context
	tag          string
	logger       log.ContextLogger
	dialer       dialer.NetDialer
	address      string
	queryTimeout time.Duration
	httpClient   *http.Client
	useH3        bool
	url          *url.URL
	header       http.Header
}

var (
	_ adapter.Upstream  = (*httpsUpstream)(nil)
	_ adapter.Exchanger = (*httpsUpstream)(nil)
	_ adapter.Closer    = (*httpsUpstream)(nil)
)

func NewHTTPSUpstream(ctx context.Context, logger log.ContextLogger, options option.UpstreamOption) (adapter.Upstream, error) {
	u := &httpsUpstream{
		ctx:    ctx,
		tag:    constant.UpstreamHTTPS,
		logger: logger,
	}
	var err error
	u.url = options.URL.URL()
	if u.url.Scheme != "https" {
		return nil, fmt.Errorf("create https upstream fail: url scheme is not https")
	}
	address := options.Address
	if address == "" {
		address = u.url.Host
	}
	u.address, err = parseAddress(address, 443)
	if err != nil {
		return nil, fmt.Errorf("create https upstream fail: parse address fail: %s", err)
	}
	if options.QueryTimeout > 0 {
		u.queryTimeout = time.Duration(options.QueryTimeout)
	} else {
		u.queryTimeout = constant.DNSQueryTimeout
	}
	u.dialer, err = dialer.NewNetDialer(options.DialerOption)
	if err != nil {
		return nil, fmt.Errorf("create https upstream fail: create dialer fail: %s", err)
	}
	tlsConfig, err := newTLSConfig(options.TLSOption, u.url.Hostname())
	if err != nil {
		return nil, fmt.Errorf("create https upstream fail: %s", err)
	}
	if options.Header != nil {
		u.header = http.Header{}
		for k, v := range options.Header {
			u.header.Set(k, v)
		}
	}
	u.httpClient = &http.Client{
		Timeout: u.queryTimeout,
	}
	if !options.UseH3 {
		transport := &http.Transport{
			DialContext: func(ctx context.Context, _ string, _ string) (net.Conn, error) {
				conn, err := u.dialer.DialContext(ctx, constant.NetworkTCP, u.address)
				if err != nil {
					return nil, err
				}
				u.logger.Debug("open new connection")
				return conn, nil
			},
			TLSClientConfig:   tlsConfig,
			ForceAttemptHTTP2: true,
		}
		err = http2.ConfigureTransport(transport)
		if err != nil {
			return nil, fmt.Errorf("create https upstream fail: configure http2 fail: %s", err)
		}
		u.httpClient.Transport = transport
	} else {
		u.httpClient.Transport = &http3.RoundTripper{
			Dial: func(ctx context.Context, _ string, tlsCfg *tls.Config, cfg *quic.Config) (quic.EarlyConnection, error) {
				conn, err := u.dialer.DialContext(ctx, constant.NetworkUDP, u.address)
				if err != nil {
					return nil, err
				}
				u.logger.Debug("open new connection")
				quicConn, err := quic.DialEarly(ctx, newPacketConn(conn), conn.RemoteAddr(), tlsCfg, cfg)
				if err != nil {
					conn.Close()
					return nil, err
				}
				u.logger.Debug("open new quic connection")
				return quicConn, nil
			},
			TLSClientConfig: tlsConfig,
		}
		u.useH3 = true
	}
	return u, nil
}

func (u *httpsUpstream) Tag() string {
	return u.tag
}

func (u *httpsUpstream) Type() string {
	return constant.UpstreamHTTPS
}

func (u *httpsUpstream) Close() error {
	if closer, ok := u.httpClient.Transport.(io.Closer); ok {
		return closer.Close()
	}
	u.httpClient.CloseIdleConnections()
	return nil
}

func (u *httpsUpstream) Lookup(ctx context.Context, name string, qType uint16) ([]string, error) {
	return lookup(ctx, u, name, qType)
}

func (u *httpsUpstream) Exchange(ctx context.Context, dnsMsg *dns.Msg) (*dns.Msg, error) {
	u.logger.InfoContext(ctx, fmt.Sprintf("exchange dns: %s, server: %s", logDNSMsg(dnsMsg), u.url.String()))
	// RFC 8484: the id of a DoH query is 0
	reqMsg := dnsMsg.Copy()
	reqMsg.Id = 0
	rawDNSMsg, err := reqMsg.Pack()
	if err != nil {
		err = fmt.Errorf("pack dns message fail: %s", err)
		u.logger.ErrorContext(ctx, err.Error())
		return nil, err
	}
	u.logger.DebugContext(ctx, fmt.Sprintf("create http request, use http3: %t", u.useH3))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.url.String(), bytes.NewReader(rawDNSMsg))
	if err != nil {
		err = fmt.Errorf("create http request fail: %s", err)
		u.logger.ErrorContext(ctx, err.Error())
		return nil, err
	}
	if u.header != nil {
		req.Header = u.header.Clone()
	}
	req.Header.Set("Content-Type", dnsMessageContentType)
	req.Header.Set("Accept", dnsMessageContentType)
	u.logger.DebugContext(ctx, "send http request")
	resp, err := u.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("send http request fail: %s", err)
		u.logger.ErrorContext(ctx, err.Error())
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("http status code not ok: %d", resp.StatusCode)
		u.logger.ErrorContext(ctx, err.Error())
		return nil, err
	}
	u.logger.DebugContext(ctx, "read response body")
	respRawDNSMsg, err := io.ReadAll(io.LimitReader(resp.Body, dns.MaxMsgSize))
	if err != nil {
		err = fmt.Errorf("read response body fail: %s", err)
		u.logger.ErrorContext(ctx, err.Error())
		return nil, err
	}
	respMsg := &dns.Msg{}
	err = respMsg.Unpack(respRawDNSMsg)
	if err != nil {
		err = fmt.Errorf("unpack dns message fail: %s", err)
		u.logger.ErrorContext(ctx, err.Error())
		return nil, err
	}
	respMsg.Id = dnsMsg.Id
	u.logger.DebugContext(ctx, "unpack dns message success")
	return respMsg, nil
}
