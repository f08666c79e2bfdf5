package types

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/miekg/dns"
)

// AddressFamily selects both the DNS record type queried and the literal
// address syntax accepted for a whole run.
type AddressFamily uint8

const (
	IPv4 AddressFamily = 4
	IPv6 AddressFamily = 6
)

// ParseAddressFamily accepts the DNS record type names A and AAAA in any case.
func ParseAddressFamily(s string) (AddressFamily, error) {
	qType, loaded := dns.StringToType[strings.ToUpper(strings.TrimSpace(s))]
	if loaded {
		switch qType {
		case dns.TypeA:
			return IPv4, nil
		case dns.TypeAAAA:
			return IPv6, nil
		}
	}
	return 0, fmt.Errorf("unknown address type: %q, must be A or AAAA", s)
}

func (f AddressFamily) IsValid() bool {
	return f == IPv4 || f == IPv6
}

func (f AddressFamily) QType() uint16 {
	switch f {
	case IPv4:
		return dns.TypeA
	case IPv6:
		return dns.TypeAAAA
	default:
		return dns.TypeNone
	}
}

// Match reports whether addr is written in this family's syntax. An
// IPv4-mapped IPv6 address is IPv6 syntax.
func (f AddressFamily) Match(addr netip.Addr) bool {
	switch f {
	case IPv4:
		return addr.Is4()
	case IPv6:
		return addr.Is6()
	default:
		return false
	}
}

func (f AddressFamily) String() string {
	switch f {
	case IPv4:
		return "A"
	case IPv6:
		return "AAAA"
	default:
		return fmt.Sprintf("AddressFamily(%d)", uint8(f))
	}
}

func (f *AddressFamily) UnmarshalText(text []byte) error {
	family, err := ParseAddressFamily(string(text))
	if err != nil {
		return err
	}
	*f = family
	return nil
}

func (f *AddressFamily) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	err := unmarshal(&s)
	if err != nil {
		return err
	}
	return f.UnmarshalText([]byte(s))
}

func (f AddressFamily) MarshalYAML() (interface{}, error) {
	return f.String(), nil
}
