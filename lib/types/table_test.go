package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNewTableLocator(t *testing.T) {
	table, err := NewTableLocator("INET", "filter")
	require.NoError(t, err)
	assert.Equal(t, TableLocator{Kind: TableInet, Name: "filter"}, table)
	assert.Equal(t, "inet filter", table.String())

	_, err = NewTableLocator("ipx", "filter")
	assert.Error(t, err)
	_, err = NewTableLocator("ip6", "")
	assert.Error(t, err)
}

func TestTableLocatorUnmarshalText(t *testing.T) {
	var table TableLocator
	require.NoError(t, table.UnmarshalText([]byte("ip6  nat")))
	assert.Equal(t, TableLocator{Kind: TableIP6, Name: "nat"}, table)

	for _, s := range []string{"", "inet", "inet filter extra", "foo filter"} {
		assert.Error(t, table.UnmarshalText([]byte(s)), s)
	}
	assert.True(t, TableLocator{}.IsZero())
	assert.False(t, table.IsZero())
}

func TestYAML(t *testing.T) {
	var v struct {
		Type      AddressFamily    `yaml:"type"`
		Table     TableLocator     `yaml:"table"`
		Timeout   TimeDuration     `yaml:"timeout"`
		Hostnames Listable[string] `yaml:"hostnames"`
		Single    Listable[string] `yaml:"single"`
	}
	content := `
type: A
table: bridge filter
timeout: 90s
hostnames:
  - a.example
  - b.example
single: c.example
`
	require.NoError(t, yaml.Unmarshal([]byte(content), &v))
	assert.Equal(t, IPv4, v.Type)
	assert.Equal(t, TableLocator{Kind: TableBridge, Name: "filter"}, v.Table)
	assert.Equal(t, "1m30s", v.Timeout.String())
	assert.Equal(t, Listable[string]{"a.example", "b.example"}, v.Hostnames)
	assert.Equal(t, Listable[string]{"c.example"}, v.Single)

	out, err := yaml.Marshal(v)
	require.NoError(t, err)
	assert.Contains(t, string(out), "table: bridge filter")
	assert.Contains(t, string(out), "single: c.example")
}
