package printer

import (
	"bytes"
	"context"
	"errors"
	"net/netip"
	"testing"
	"time"

	"github.com/towalink/hostname2set/adapter"
	"github.com/towalink/hostname2set/lib/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)
	table := types.TableLocator{Kind: types.TableIP, Name: "filter"}
	addr := netip.MustParseAddr("192.0.2.1")
	err := p.Apply(context.Background(), []adapter.Statement{
		{Op: adapter.OpAdd, Table: table, Set: "myset", Addr: addr, Timeout: 90 * time.Second},
		{Op: adapter.OpDelete, Table: table, Set: "myset", Addr: addr},
		{Op: adapter.OpAdd, Table: table, Set: "myset", Addr: addr},
	})
	require.NoError(t, err)
	assert.Equal(t, "add element ip filter myset { 192.0.2.1 timeout 90s }\n"+
		"delete element ip filter myset { 192.0.2.1 }\n"+
		"add element ip filter myset { 192.0.2.1 }\n", buf.String())
	assert.Equal(t, BackendName, p.Name())
	assert.NoError(t, p.Close())
}

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestApplyWriteError(t *testing.T) {
	p := New(errWriter{})
	err := p.Apply(context.Background(), []adapter.Statement{{Op: adapter.OpDelete, Set: "myset", Addr: netip.MustParseAddr("2001:db8::1")}})
	assert.ErrorContains(t, err, "broken pipe")
}

func TestApplyCanceled(t *testing.T) {
	var buf bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(&buf).Apply(ctx, []adapter.Statement{{Op: adapter.OpAdd, Set: "myset", Addr: netip.MustParseAddr("2001:db8::1")}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, buf.Len())
}
