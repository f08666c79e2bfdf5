package adapter

import (
	"context"

	"github.com/miekg/dns"
)

// Upstream is the DNS resolution service. Lookup returns the records of
// type qType for name as text, one entry per record, the way `dig +short`
// prints them: literal addresses for address records and the target name,
// ending with a dot, for alias records. An empty result is not an error.
type Upstream interface {
	Tag() string
	Type() string
	Lookup(ctx context.Context, name string, qType uint16) ([]string, error)
}

// Exchanger is implemented by upstreams speaking the DNS wire protocol.
type Exchanger interface {
	Exchange(ctx context.Context, dnsMsg *dns.Msg) (*dns.Msg, error)
}
