package types

import (
	"fmt"
	"net/netip"
)

type Addr struct {
	netip.Addr
}

func (a *Addr) UnmarshalText(text []byte) error {
	addr, err := netip.ParseAddr(string(text))
	if err != nil {
		return err
	}
	if !addr.IsValid() {
		return fmt.Errorf("invalid address: %s", text)
	}
	a.Addr = addr
	return nil
}

func (a *Addr) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	err := unmarshal(&s)
	if err != nil {
		return err
	}
	return a.UnmarshalText([]byte(s))
}

func (a Addr) MarshalYAML() (interface{}, error) {
	return a.String(), nil
}
