package setsync

import (
	"context"
	"fmt"
	"net/netip"
	"time"

	"github.com/towalink/hostname2set/adapter"
	"github.com/towalink/hostname2set/lib/types"
	"github.com/towalink/hostname2set/log"
)

// Target is the set addresses are written to.
type Target struct {
	Table types.TableLocator
	Set   string
}

func (t Target) String() string {
	return fmt.Sprintf("%s %s", t.Table, t.Set)
}

// RejectedError is returned when the backend refuses a refresh transaction.
type RejectedError struct {
	Backend string
	Target  Target
	Addr    netip.Addr
	Err     error
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s rejected refresh of %s in %s: %s", e.Backend, e.Addr, e.Target, e.Err)
}

func (e *RejectedError) Unwrap() error {
	return e.Err
}

// Synchronizer keeps addresses in a set with a fresh timeout. The only
// mutation it issues is the refresh transaction: add, delete, add.
type Synchronizer struct {
	logger  log.ContextLogger
	backend adapter.Backend
	target  Target
	timeout time.Duration
}

// New returns a Synchronizer writing to target through backend. A non-zero
// timeout is attached to every added element.
func New(logger log.Logger, backend adapter.Backend, target Target, timeout time.Duration) *Synchronizer {
	return &Synchronizer{
		logger:  log.NewContextLogger(log.NewTagLogger(logger, "setsync")),
		backend: backend,
		target:  target,
		timeout: timeout,
	}
}

func (s *Synchronizer) Target() Target {
	return s.target
}

// Transaction returns the refresh transaction for addr. The leading add
// makes the delete valid when addr is not in the set yet, the delete and
// second add recreate the element with a fresh timeout.
func (s *Synchronizer) Transaction(addr netip.Addr) []adapter.Statement {
	statement := func(op adapter.Op) adapter.Statement {
		st := adapter.Statement{
			Op:    op,
			Table: s.target.Table,
			Set:   s.target.Set,
			Addr:  addr,
		}
		if op == adapter.OpAdd {
			st.Timeout = s.timeout
		}
		return st
	}
	return []adapter.Statement{
		statement(adapter.OpAdd),
		statement(adapter.OpDelete),
		statement(adapter.OpAdd),
	}
}

// Refresh submits the refresh transaction for addr as one Apply call.
func (s *Synchronizer) Refresh(ctx context.Context, addr netip.Addr) error {
	if !addr.IsValid() {
		return fmt.Errorf("invalid address")
	}
	statements := s.Transaction(addr)
	for _, st := range statements {
		s.logger.DebugContext(ctx, st.String())
	}
	err := s.backend.Apply(ctx, statements)
	if err != nil {
		err = &RejectedError{
			Backend: s.backend.Name(),
			Target:  s.target,
			Addr:    addr,
			Err:     err,
		}
		s.logger.ErrorContext(ctx, err.Error())
		return err
	}
	s.logger.InfoContext(ctx, fmt.Sprintf("refresh %s in %s", addr, s.target))
	return nil
}
