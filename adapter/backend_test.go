package adapter

import (
	"math"
	"net/netip"
	"testing"
	"time"

	"github.com/towalink/hostname2set/lib/types"

	"github.com/stretchr/testify/assert"
)

func TestStatementTimeoutSeconds(t *testing.T) {
	for _, c := range []struct {
		op      Op
		timeout time.Duration
		want    uint32
	}{
		{OpAdd, 0, 0},
		{OpAdd, -time.Second, 0},
		{OpAdd, 500 * time.Millisecond, 1},
		{OpAdd, time.Second, 1},
		{OpAdd, 1500 * time.Millisecond, 2},
		{OpAdd, time.Hour, 3600},
		{OpAdd, 200 * 365 * 24 * time.Hour, math.MaxUint32},
		{OpDelete, time.Hour, 0},
	} {
		st := Statement{Op: c.op, Timeout: c.timeout}
		assert.Equal(t, c.want, st.TimeoutSeconds(), "%s %s", c.op, c.timeout)
	}
}

func TestStatementString(t *testing.T) {
	st := Statement{
		Op:      OpAdd,
		Table:   types.TableLocator{Kind: types.TableInet, Name: "filter"},
		Set:     "s",
		Addr:    netip.MustParseAddr("192.0.2.1"),
		Timeout: 500 * time.Millisecond,
	}
	assert.Equal(t, "add element inet filter s { 192.0.2.1 timeout 1s }", st.String())
	st.Timeout = 0
	assert.Equal(t, "add element inet filter s { 192.0.2.1 }", st.String())
	st.Op = OpDelete
	st.Timeout = time.Minute
	assert.Equal(t, "delete element inet filter s { 192.0.2.1 }", st.String())
}
