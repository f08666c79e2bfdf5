package upstream

import (
	"context"
	"fmt"
	"net"

	"github.com/towalink/hostname2set/adapter"
	"github.com/towalink/hostname2set/constant"
	"github.com/towalink/hostname2set/log"
	"github.com/towalink/hostname2set/option"

	"github.com/miekg/dns"
)

// systemUpstream queries the first nameserver of resolv.conf over UDP and
// repeats the query over TCP when the UDP answer is truncated.
type systemUpstream struct {
	logger log.ContextLogger
	udp    *udpUpstream
	tcp    *tcpUpstream
}

var (
	_ adapter.Upstream  = (*systemUpstream)(nil)
	_ adapter.Exchanger = (*systemUpstream)(nil)
)

func NewSystemUpstream(ctx context.Context, logger log.ContextLogger, options option.UpstreamOption) (adapter.Upstream, error) {
	u := &systemUpstream{
		logger: logger,
	}
	resolvConf := options.ResolvConf
	if resolvConf == "" {
		resolvConf = constant.ResolvConfPath
	}
	server, err := systemServer(resolvConf)
	if err != nil {
		return nil, fmt.Errorf("create system upstream fail: %s", err)
	}
	options.Address = server
	u.udp, err = newUDPUpstream(ctx, logger, constant.UpstreamSystem, options)
	if err != nil {
		return nil, fmt.Errorf("create system upstream fail: %s", err)
	}
	u.tcp, err = newTCPUpstream(ctx, logger, constant.UpstreamSystem, options)
	if err != nil {
		return nil, fmt.Errorf("create system upstream fail: %s", err)
	}
	return u, nil
}

func (u *systemUpstream) Tag() string {
	return constant.UpstreamSystem
}

func (u *systemUpstream) Type() string {
	return constant.UpstreamSystem
}

func (u *systemUpstream) Address() string {
	return u.udp.Address()
}

func (u *systemUpstream) Lookup(ctx context.Context, name string, qType uint16) ([]string, error) {
	return lookup(ctx, u, name, qType)
}

func (u *systemUpstream) Exchange(ctx context.Context, dnsMsg *dns.Msg) (*dns.Msg, error) {
	respMsg, err := u.udp.Exchange(ctx, dnsMsg)
	if err != nil {
		return nil, err
	}
	if !respMsg.Truncated {
		return respMsg, nil
	}
	u.logger.InfoContext(ctx, "udp response truncated, query again over tcp")
	return u.tcp.Exchange(ctx, dnsMsg)
}

// systemServer returns the first nameserver of resolvConf as host:port.
func systemServer(resolvConf string) (string, error) {
	config, err := dns.ClientConfigFromFile(resolvConf)
	if err != nil {
		return "", fmt.Errorf("read %s fail: %s", resolvConf, err)
	}
	if len(config.Servers) == 0 {
		return "", fmt.Errorf("no nameserver found in %s", resolvConf)
	}
	return net.JoinHostPort(config.Servers[0], config.Port), nil
}
