package upstream

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strconv"

	"github.com/towalink/hostname2set/adapter"
	"github.com/towalink/hostname2set/constant"
	"github.com/towalink/hostname2set/log"
	"github.com/towalink/hostname2set/option"

	"github.com/miekg/dns"
	"go4.org/netipx"
)

func NewUpstream(ctx context.Context, logger log.Logger, options option.UpstreamOption) (adapter.Upstream, error) {
	contextLogger := log.NewContextLogger(log.NewTagLogger(logger, fmt.Sprintf("upstream/%s", options.Type)))
	switch options.Type {
	case constant.UpstreamSystem, "":
		return NewSystemUpstream(ctx, contextLogger, options)
	case constant.UpstreamUDP:
		return NewUDPUpstream(ctx, contextLogger, options)
	case constant.UpstreamTCP:
		return NewTCPUpstream(ctx, contextLogger, options)
	case constant.UpstreamTLS:
		return NewTLSUpstream(ctx, contextLogger, options)
	case constant.UpstreamHTTPS:
		return NewHTTPSUpstream(ctx, contextLogger, options)
	case constant.UpstreamQUIC:
		return NewQUICUpstream(ctx, contextLogger, options)
	case constant.UpstreamDig:
		return NewDigUpstream(contextLogger, options)
	default:
		return nil, fmt.Errorf("unknown upstream type: %s", options.Type)
	}
}

// lookup sends a single recursive question through exchanger and returns
// the answer as text records.
func lookup(ctx context.Context, exchanger adapter.Exchanger, name string, qType uint16) ([]string, error) {
	if _, isDomain := dns.IsDomainName(name); !isDomain {
		return nil, fmt.Errorf("invalid domain name: %s", name)
	}
	reqMsg := new(dns.Msg)
	reqMsg.SetQuestion(dns.Fqdn(name), qType)
	reqMsg.SetEdns0(dns.DefaultMsgSize, false)
	respMsg, err := exchanger.Exchange(ctx, reqMsg)
	if err != nil {
		return nil, err
	}
	return answerRecords(respMsg)
}

// answerRecords converts the answer section into text records. Alias
// records are returned as their target name; record types that carry
// neither an address nor an alias are skipped.
func answerRecords(respMsg *dns.Msg) ([]string, error) {
	switch respMsg.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return nil, nil
	default:
		return nil, fmt.Errorf("dns response code: %s", dns.RcodeToString[respMsg.Rcode])
	}
	records := make([]string, 0, len(respMsg.Answer))
	for _, rr := range respMsg.Answer {
		switch r := rr.(type) {
		case *dns.A:
			addr, ok := netipx.FromStdIP(r.A)
			if !ok {
				return nil, fmt.Errorf("invalid A record: %s", r.String())
			}
			records = append(records, addr.String())
		case *dns.AAAA:
			addr, ok := netipx.FromStdIPRaw(r.AAAA)
			if !ok {
				return nil, fmt.Errorf("invalid AAAA record: %s", r.String())
			}
			records = append(records, addr.String())
		case *dns.CNAME:
			records = append(records, r.Target)
		case *dns.DNAME:
			records = append(records, r.Target)
		}
	}
	return records, nil
}

// parseAddress adds defaultPort to address when it has none.
func parseAddress(address string, defaultPort uint16) (string, error) {
	if address == "" {
		return "", fmt.Errorf("address is empty")
	}
	if ip, err := netip.ParseAddr(address); err == nil {
		return net.JoinHostPort(ip.String(), strconv.Itoa(int(defaultPort))), nil
	}
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return net.JoinHostPort(address, strconv.Itoa(int(defaultPort))), nil
	}
	if host == "" {
		return "", fmt.Errorf("address %s has no host", address)
	}
	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return "", fmt.Errorf("invalid port in %s", address)
	}
	return address, nil
}

func logDNSMsg(dnsMsg *dns.Msg) string {
	return fmt.Sprintf("qtype: %s, qname: %s", dns.TypeToString[dnsMsg.Question[0].Qtype], dnsMsg.Question[0].Name)
}
