package resolver

import (
	"context"
	"fmt"
	"net/netip"
	"strings"

	"github.com/towalink/hostname2set/adapter"
	"github.com/towalink/hostname2set/lib/tools"
	"github.com/towalink/hostname2set/lib/types"
	"github.com/towalink/hostname2set/log"

	"github.com/miekg/dns"
)

// Resolver maps a hostname to the addresses of one family, in the order the
// upstream returns them.
type Resolver struct {
	logger   log.ContextLogger
	upstream adapter.Upstream
}

func New(logger log.Logger, upstream adapter.Upstream) *Resolver {
	return &Resolver{
		logger:   log.NewContextLogger(log.NewTagLogger(logger, "resolver")),
		upstream: upstream,
	}
}

// Resolve sends a single query for hostname. Alias records are skipped,
// duplicates are kept. The result is never empty when err is nil.
func (r *Resolver) Resolve(ctx context.Context, hostname string, family types.AddressFamily) ([]netip.Addr, error) {
	if hostname == "" {
		return nil, ErrEmptyHostname
	}
	if !family.IsValid() {
		return nil, fmt.Errorf("invalid address type: %d", uint8(family))
	}
	if _, isDomain := dns.IsDomainName(hostname); !isDomain {
		return nil, fmt.Errorf("invalid hostname: %q", hostname)
	}
	r.logger.DebugContext(ctx, fmt.Sprintf("lookup %s %s via %s", family, hostname, r.upstream.Tag()))
	records, err := r.upstream.Lookup(ctx, hostname, family.QType())
	if err != nil {
		return nil, fmt.Errorf("lookup %s fail: %w", hostname, err)
	}
	addrs := make([]netip.Addr, 0, len(records))
	for _, record := range records {
		record = strings.TrimSpace(record)
		if isAlias(record) {
			r.logger.DebugContext(ctx, fmt.Sprintf("skip alias %s", record))
			continue
		}
		addr, err := netip.ParseAddr(record)
		if err != nil || addr.Zone() != "" || !family.Match(addr) {
			return nil, &AddressSyntaxError{
				Hostname: hostname,
				Family:   family,
				Record:   record,
			}
		}
		addrs = append(addrs, addr)
	}
	if len(addrs) == 0 {
		return nil, &EmptyResultError{
			Hostname: hostname,
			Family:   family,
		}
	}
	r.logger.InfoContext(ctx, fmt.Sprintf("%s %s => %s", family, hostname, tools.Join(addrs, ", ")))
	return addrs, nil
}

// isAlias reports whether record points to another name. Alias targets are
// fully qualified, so they end with a dot.
func isAlias(record string) bool {
	if !strings.HasSuffix(record, ".") {
		return false
	}
	_, isDomain := dns.IsDomainName(record)
	return isDomain
}
