package adapter

import (
	"context"
	"fmt"
	"math"
	"net/netip"
	"time"

	"github.com/towalink/hostname2set/lib/types"
)

type Op string

const (
	OpAdd    Op = "add"
	OpDelete Op = "delete"
)

// Statement changes the membership of one address in one set.
type Statement struct {
	Op    Op
	Table types.TableLocator
	Set   string
	Addr  netip.Addr
	// Timeout applies to OpAdd only; zero means the set's default.
	Timeout time.Duration
}

// TimeoutSeconds is the element timeout in whole seconds, rounded up and
// capped at math.MaxUint32. Zero means the set's default.
func (s Statement) TimeoutSeconds() uint32 {
	if s.Op != OpAdd || s.Timeout <= 0 {
		return 0
	}
	seconds := s.Timeout / time.Second
	if s.Timeout%time.Second != 0 {
		seconds++
	}
	if seconds > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(seconds)
}

func (s Statement) String() string {
	if timeout := s.TimeoutSeconds(); timeout > 0 {
		return fmt.Sprintf("%s element %s %s { %s timeout %ds }", s.Op, s.Table, s.Set, s.Addr, timeout)
	}
	return fmt.Sprintf("%s element %s %s { %s }", s.Op, s.Table, s.Set, s.Addr)
}

// Backend is the firewall set store. Apply submits statements as one
// transaction, in order. Backends that can commit atomically must do so.
type Backend interface {
	Name() string
	Apply(ctx context.Context, statements []Statement) error
	Close() error
}
