//go:build linux

package nftset

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/towalink/hostname2set/adapter"
	"github.com/towalink/hostname2set/lib/types"
	"github.com/towalink/hostname2set/log"

	"github.com/google/nftables"
)

var _ adapter.Backend = (*NftSet)(nil)

// setLister finds sets in the ruleset. *nftables.Conn implements it.
type setLister interface {
	ListTables() ([]*nftables.Table, error)
	GetSetByName(t *nftables.Table, name string) (*nftables.Set, error)
}

type setKey struct {
	table types.TableLocator
	set   string
}

type NftSet struct {
	logger      log.ContextLogger
	lister      setLister
	closeLister func() error
	connOptions []nftables.ConnOption
	sets        map[setKey]*nftables.Set
	lock        sync.Mutex
}

func New(logger log.Logger) (*NftSet, error) {
	conn, err := nftables.New(nftables.AsLasting())
	if err != nil {
		return nil, fmt.Errorf("open nftables conn fail: %s", err)
	}
	return newNftSet(logger, conn, conn.CloseLasting), nil
}

// newNftSet builds the backend around lister. Each Apply opens its own batch
// conn with connOptions.
func newNftSet(logger log.Logger, lister setLister, closeLister func() error, connOptions ...nftables.ConnOption) *NftSet {
	return &NftSet{
		logger:      log.NewContextLogger(log.NewTagLogger(logger, "backend/"+BackendName)),
		lister:      lister,
		closeLister: closeLister,
		connOptions: connOptions,
		sets:        make(map[setKey]*nftables.Set),
	}
}

func (n *NftSet) Name() string {
	return BackendName
}

func (n *NftSet) Close() error {
	n.lock.Lock()
	defer n.lock.Unlock()
	if n.lister == nil {
		return nil
	}
	n.lister = nil
	if n.closeLister != nil {
		return n.closeLister()
	}
	return nil
}

type queuedElement struct {
	statement adapter.Statement
	set       *nftables.Set
	element   nftables.SetElement
}

// Apply checks every statement and builds its element before anything is
// queued. The batch conn is private to the call, so a failed queue leaves
// nothing behind for a later Flush.
func (n *NftSet) Apply(ctx context.Context, statements []adapter.Statement) error {
	n.lock.Lock()
	defer n.lock.Unlock()
	if n.lister == nil {
		return ErrConnClosed
	}
	elements := make([]queuedElement, 0, len(statements))
	for _, st := range statements {
		set, err := n.lookupSet(st.Table, st.Set)
		if err != nil {
			return err
		}
		err = checkSet(set, st)
		if err != nil {
			return err
		}
		if !keyMatch(set, st) {
			return fmt.Errorf("%w: %s is not a valid key of %s %s", ErrInetMismatch, st.Addr, st.Table, st.Set)
		}
		if st.Op != adapter.OpAdd && st.Op != adapter.OpDelete {
			return fmt.Errorf("unknown statement op: %s", st.Op)
		}
		element := nftables.SetElement{
			Key: st.Addr.AsSlice(),
		}
		if timeout := st.TimeoutSeconds(); timeout > 0 {
			element.Timeout = time.Duration(timeout) * time.Second
		}
		elements = append(elements, queuedElement{statement: st, set: set, element: element})
	}
	err := ctx.Err()
	if err != nil {
		return err
	}
	conn, err := nftables.New(n.connOptions...)
	if err != nil {
		return fmt.Errorf("open nftables conn fail: %s", err)
	}
	for _, e := range elements {
		switch e.statement.Op {
		case adapter.OpAdd:
			err = conn.SetAddElements(e.set, []nftables.SetElement{e.element})
		case adapter.OpDelete:
			err = conn.SetDeleteElements(e.set, []nftables.SetElement{e.element})
		}
		if err != nil {
			return fmt.Errorf("queue %s fail: %s", e.statement, err)
		}
		n.logger.DebugContext(ctx, fmt.Sprintf("queue %s", e.statement))
	}
	err = conn.Flush()
	if err != nil {
		return fmt.Errorf("commit batch fail: %w", err)
	}
	n.logger.DebugContext(ctx, fmt.Sprintf("commit batch of %d statements", len(elements)))
	return nil
}

// lookupSet finds the set once per run; nothing else modifies the table
// layout while the run is in progress.
func (n *NftSet) lookupSet(locator types.TableLocator, name string) (*nftables.Set, error) {
	key := setKey{table: locator, set: name}
	if set, ok := n.sets[key]; ok {
		return set, nil
	}
	family, err := tableFamily(locator.Kind)
	if err != nil {
		return nil, err
	}
	tables, err := n.lister.ListTables()
	if err != nil {
		return nil, fmt.Errorf("list tables fail: %s", err)
	}
	var matchTable *nftables.Table
	for _, table := range tables {
		if table.Family == family && table.Name == locator.Name {
			matchTable = table
			break
		}
	}
	if matchTable == nil {
		return nil, fmt.Errorf("table %s not found", locator)
	}
	set, err := n.lister.GetSetByName(matchTable, name)
	if err != nil {
		return nil, fmt.Errorf("set %s not found in table %s: %s", name, locator, err)
	}
	n.sets[key] = set
	return set, nil
}

func tableFamily(kind types.TableKind) (nftables.TableFamily, error) {
	switch kind {
	case types.TableInet:
		return nftables.TableFamilyINet, nil
	case types.TableIP:
		return nftables.TableFamilyIPv4, nil
	case types.TableIP6:
		return nftables.TableFamilyIPv6, nil
	case types.TableARP:
		return nftables.TableFamilyARP, nil
	case types.TableBridge:
		return nftables.TableFamilyBridge, nil
	case types.TableNetdev:
		return nftables.TableFamilyNetdev, nil
	default:
		return 0, fmt.Errorf("unknown table kind: %s", kind)
	}
}

// checkSet accepts plain sets only. An interval set needs a range end
// element per address and a map needs a value, neither of which a single
// address statement carries.
func checkSet(set *nftables.Set, st adapter.Statement) error {
	switch {
	case set.Interval:
		return fmt.Errorf("%w: %s %s has flag interval", ErrSetFlags, st.Table, st.Set)
	case set.IsMap:
		return fmt.Errorf("%w: %s %s is a map", ErrSetFlags, st.Table, st.Set)
	}
	return nil
}

func keyMatch(set *nftables.Set, st adapter.Statement) bool {
	switch set.KeyType.Name {
	case nftables.TypeIPAddr.Name:
		return st.Addr.Is4()
	case nftables.TypeIP6Addr.Name:
		return st.Addr.Is6()
	default:
		return true
	}
}
