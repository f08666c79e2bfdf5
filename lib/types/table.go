package types

import (
	"fmt"
	"strings"
)

type TableKind string

const (
	TableInet   TableKind = "inet"
	TableIP     TableKind = "ip"
	TableIP6    TableKind = "ip6"
	TableARP    TableKind = "arp"
	TableBridge TableKind = "bridge"
	TableNetdev TableKind = "netdev"
)

func ParseTableKind(s string) (TableKind, error) {
	switch kind := TableKind(strings.ToLower(strings.TrimSpace(s))); kind {
	case TableInet, TableIP, TableIP6, TableARP, TableBridge, TableNetdev:
		return kind, nil
	default:
		return "", fmt.Errorf("unknown table kind: %q", s)
	}
}

// TableLocator identifies a table of the packet filter, e.g. "inet filter".
type TableLocator struct {
	Kind TableKind
	Name string
}

func NewTableLocator(kind string, name string) (TableLocator, error) {
	k, err := ParseTableKind(kind)
	if err != nil {
		return TableLocator{}, err
	}
	if name == "" {
		return TableLocator{}, fmt.Errorf("table name is empty")
	}
	return TableLocator{Kind: k, Name: name}, nil
}

func (t TableLocator) IsZero() bool {
	return t.Kind == "" && t.Name == ""
}

func (t TableLocator) String() string {
	return fmt.Sprintf("%s %s", t.Kind, t.Name)
}

func (t *TableLocator) UnmarshalText(text []byte) error {
	fields := strings.Fields(string(text))
	if len(fields) != 2 {
		return fmt.Errorf("invalid table: %q, expect \"<kind> <name>\"", text)
	}
	locator, err := NewTableLocator(fields[0], fields[1])
	if err != nil {
		return err
	}
	*t = locator
	return nil
}

func (t *TableLocator) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	err := unmarshal(&s)
	if err != nil {
		return err
	}
	return t.UnmarshalText([]byte(s))
}

func (t TableLocator) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}
