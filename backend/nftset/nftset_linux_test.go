//go:build linux

package nftset

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net/netip"
	"testing"
	"time"

	"github.com/towalink/hostname2set/adapter"
	"github.com/towalink/hostname2set/lib/types"
	"github.com/towalink/hostname2set/log"

	"github.com/google/nftables"
	"github.com/mdlayher/netlink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

var (
	testTable = types.TableLocator{Kind: types.TableInet, Name: "filter"}
	testAddr  = netip.MustParseAddr("2001:db8::1")
)

type fakeLister struct {
	tables    []*nftables.Table
	sets      map[string]*nftables.Set
	listCalls int
	getCalls  int
}

func newFakeLister(sets ...*nftables.Set) *fakeLister {
	l := &fakeLister{
		tables: []*nftables.Table{
			{Name: "filter", Family: nftables.TableFamilyIPv4},
			{Name: "filter", Family: nftables.TableFamilyINet},
		},
		sets: make(map[string]*nftables.Set),
	}
	for _, set := range sets {
		l.sets[set.Name] = set
	}
	return l
}

func (l *fakeLister) ListTables() ([]*nftables.Table, error) {
	l.listCalls++
	return l.tables, nil
}

func (l *fakeLister) GetSetByName(t *nftables.Table, name string) (*nftables.Set, error) {
	l.getCalls++
	set, ok := l.sets[name]
	if !ok {
		return nil, errors.New("no such file or directory")
	}
	found := *set
	found.Table = t
	return &found, nil
}

func ip6Set(name string) *nftables.Set {
	return &nftables.Set{
		Name:       name,
		KeyType:    nftables.TypeIP6Addr,
		HasTimeout: true,
	}
}

// batchRecorder captures every batch sent over a test netlink conn.
type batchRecorder struct {
	batches [][]netlink.Message
	err     error
}

func (r *batchRecorder) dial(req []netlink.Message) ([]netlink.Message, error) {
	if len(req) == 0 {
		return nil, nil
	}
	if r.err != nil {
		err := r.err
		r.err = nil
		return nil, err
	}
	r.batches = append(r.batches, append([]netlink.Message(nil), req...))
	return req, nil
}

func newTestNftSet(lister setLister) (*NftSet, *batchRecorder) {
	logger := log.NewLogger()
	logger.SetOutput(io.Discard)
	recorder := &batchRecorder{}
	return newNftSet(logger, lister, nil, nftables.WithTestDial(recorder.dial)), recorder
}

func transaction(set string, addr netip.Addr, timeout time.Duration) []adapter.Statement {
	return []adapter.Statement{
		{Op: adapter.OpAdd, Table: testTable, Set: set, Addr: addr, Timeout: timeout},
		{Op: adapter.OpDelete, Table: testTable, Set: set, Addr: addr},
		{Op: adapter.OpAdd, Table: testTable, Set: set, Addr: addr, Timeout: timeout},
	}
}

func msgType(typ uint16) netlink.HeaderType {
	return netlink.HeaderType(unix.NFNL_SUBSYS_NFTABLES<<8 | typ)
}

func headerTypes(batch []netlink.Message) []netlink.HeaderType {
	got := make([]netlink.HeaderType, 0, len(batch))
	for _, m := range batch {
		got = append(got, m.Header.Type)
	}
	return got
}

func TestApplySingleBatch(t *testing.T) {
	n, recorder := newTestNftSet(newFakeLister(ip6Set("myset")))
	err := n.Apply(context.Background(), transaction("myset", testAddr, time.Hour))
	require.NoError(t, err)
	require.Len(t, recorder.batches, 1)
	batch := recorder.batches[0]
	assert.Equal(t, []netlink.HeaderType{
		netlink.HeaderType(unix.NFNL_MSG_BATCH_BEGIN),
		msgType(unix.NFT_MSG_NEWSETELEM),
		msgType(unix.NFT_MSG_DELSETELEM),
		msgType(unix.NFT_MSG_NEWSETELEM),
		netlink.HeaderType(unix.NFNL_MSG_BATCH_END),
	}, headerTypes(batch))
	timeout := make([]byte, 8)
	binary.BigEndian.PutUint64(timeout, uint64(time.Hour.Milliseconds()))
	for _, m := range batch[1:4] {
		assert.True(t, bytes.Contains(m.Data, testAddr.AsSlice()))
	}
	assert.True(t, bytes.Contains(batch[1].Data, timeout))
	assert.False(t, bytes.Contains(batch[2].Data, timeout))
	assert.True(t, bytes.Contains(batch[3].Data, timeout))
}

func TestApplyFamilyMismatch(t *testing.T) {
	lister := newFakeLister(ip6Set("myset"))
	n, recorder := newTestNftSet(lister)
	err := n.Apply(context.Background(), transaction("myset", netip.MustParseAddr("192.0.2.1"), 0))
	assert.ErrorIs(t, err, ErrInetMismatch)
	assert.Empty(t, recorder.batches)
}

func TestApplyMixedFamilyQueuesNothing(t *testing.T) {
	lister := newFakeLister(ip6Set("myset"))
	n, recorder := newTestNftSet(lister)
	statements := transaction("myset", testAddr, 0)
	statements[2].Addr = netip.MustParseAddr("192.0.2.1")
	err := n.Apply(context.Background(), statements)
	assert.ErrorIs(t, err, ErrInetMismatch)
	assert.Empty(t, recorder.batches)
}

func TestApplyCachesSetLookup(t *testing.T) {
	lister := newFakeLister(ip6Set("myset"))
	n, recorder := newTestNftSet(lister)
	require.NoError(t, n.Apply(context.Background(), transaction("myset", testAddr, 0)))
	require.NoError(t, n.Apply(context.Background(), transaction("myset", netip.MustParseAddr("2001:db8::2"), 0)))
	assert.Equal(t, 1, lister.listCalls)
	assert.Equal(t, 1, lister.getCalls)
	assert.Len(t, recorder.batches, 2)
}

func TestApplyLookupErrors(t *testing.T) {
	n, recorder := newTestNftSet(newFakeLister(ip6Set("myset")))
	err := n.Apply(context.Background(), transaction("missing", testAddr, 0))
	assert.ErrorContains(t, err, "set missing not found in table inet filter")

	statements := transaction("myset", testAddr, 0)
	for i := range statements {
		statements[i].Table = types.TableLocator{Kind: types.TableIP6, Name: "filter"}
	}
	err = n.Apply(context.Background(), statements)
	assert.ErrorContains(t, err, "table ip6 filter not found")
	assert.Empty(t, recorder.batches)
}

func TestApplyUnsupportedSet(t *testing.T) {
	interval := ip6Set("ranges")
	interval.Interval = true
	verdicts := ip6Set("verdicts")
	verdicts.IsMap = true
	n, recorder := newTestNftSet(newFakeLister(interval, verdicts))
	err := n.Apply(context.Background(), transaction("ranges", testAddr, 0))
	assert.ErrorIs(t, err, ErrSetFlags)
	assert.ErrorContains(t, err, "flag interval")
	err = n.Apply(context.Background(), transaction("verdicts", testAddr, 0))
	assert.ErrorIs(t, err, ErrSetFlags)
	assert.Empty(t, recorder.batches)
}

func TestApplyQueueFailureDropsBatch(t *testing.T) {
	anonymous := ip6Set("anon")
	anonymous.Anonymous = true
	n, recorder := newTestNftSet(newFakeLister(ip6Set("myset"), anonymous))
	statements := []adapter.Statement{
		{Op: adapter.OpAdd, Table: testTable, Set: "myset", Addr: testAddr},
		{Op: adapter.OpAdd, Table: testTable, Set: "anon", Addr: testAddr},
	}
	err := n.Apply(context.Background(), statements)
	assert.ErrorContains(t, err, "anonymous sets cannot be updated")
	assert.Empty(t, recorder.batches)

	require.NoError(t, n.Apply(context.Background(), statements[:1]))
	require.Len(t, recorder.batches, 1)
	assert.Len(t, recorder.batches[0], 3)
}

func TestApplyCommitError(t *testing.T) {
	n, recorder := newTestNftSet(newFakeLister(ip6Set("myset")))
	recorder.err = errors.New("operation not permitted")
	err := n.Apply(context.Background(), transaction("myset", testAddr, 0))
	assert.ErrorContains(t, err, "commit batch fail")

	require.NoError(t, n.Apply(context.Background(), transaction("myset", testAddr, 0)))
	require.Len(t, recorder.batches, 1)
	assert.Len(t, recorder.batches[0], 5)
}

func TestApplyCanceled(t *testing.T) {
	n, recorder := newTestNftSet(newFakeLister(ip6Set("myset")))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := n.Apply(ctx, transaction("myset", testAddr, 0))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, recorder.batches)
}

func TestApplyClosed(t *testing.T) {
	closed := 0
	logger := log.NewLogger()
	logger.SetOutput(io.Discard)
	n := newNftSet(logger, newFakeLister(ip6Set("myset")), func() error {
		closed++
		return nil
	})
	require.NoError(t, n.Close())
	require.NoError(t, n.Close())
	assert.Equal(t, 1, closed)
	err := n.Apply(context.Background(), transaction("myset", testAddr, 0))
	assert.ErrorIs(t, err, ErrConnClosed)
}

func TestTableFamily(t *testing.T) {
	for kind, want := range map[types.TableKind]nftables.TableFamily{
		types.TableInet:   nftables.TableFamilyINet,
		types.TableIP:     nftables.TableFamilyIPv4,
		types.TableIP6:    nftables.TableFamilyIPv6,
		types.TableARP:    nftables.TableFamilyARP,
		types.TableBridge: nftables.TableFamilyBridge,
		types.TableNetdev: nftables.TableFamilyNetdev,
	} {
		family, err := tableFamily(kind)
		require.NoError(t, err, kind)
		assert.Equal(t, want, family, kind)
	}
	_, err := tableFamily("ipx")
	assert.Error(t, err)
}

func TestKeyMatch(t *testing.T) {
	v4 := &nftables.Set{KeyType: nftables.TypeIPAddr}
	v6 := &nftables.Set{KeyType: nftables.TypeIP6Addr}
	other := &nftables.Set{KeyType: nftables.TypeInteger}
	a4 := adapter.Statement{Addr: netip.MustParseAddr("192.0.2.1")}
	a6 := adapter.Statement{Addr: testAddr}
	assert.True(t, keyMatch(v4, a4))
	assert.False(t, keyMatch(v4, a6))
	assert.True(t, keyMatch(v6, a6))
	assert.False(t, keyMatch(v6, a4))
	assert.True(t, keyMatch(other, a4))
}
