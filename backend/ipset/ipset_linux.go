//go:build linux

package ipset

import (
	"context"
	"fmt"
	"net/netip"
	"sync"

	"github.com/towalink/hostname2set/adapter"
	"github.com/towalink/hostname2set/log"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

var _ adapter.Backend = (*IPSet)(nil)

type IPSet struct {
	logger  log.ContextLogger
	handler *netlink.Handle
	family  map[string]uint8
	lock    sync.Mutex
}

func New(logger log.Logger) (*IPSet, error) {
	handler, err := netlink.NewHandle()
	if err != nil {
		return nil, fmt.Errorf("open netlink handle fail: %s", err)
	}
	return &IPSet{
		logger:  log.NewContextLogger(log.NewTagLogger(logger, "backend/"+BackendName)),
		handler: handler,
		family:  make(map[string]uint8),
	}, nil
}

func (i *IPSet) Name() string {
	return BackendName
}

func (i *IPSet) Close() error {
	i.lock.Lock()
	defer i.lock.Unlock()
	if i.handler != nil {
		i.handler.Close()
		i.handler = nil
	}
	return nil
}

func (i *IPSet) Apply(ctx context.Context, statements []adapter.Statement) error {
	i.lock.Lock()
	defer i.lock.Unlock()
	if i.handler == nil {
		return ErrClosed
	}
	for _, st := range statements {
		err := i.checkFamily(st.Set, st.Addr)
		if err != nil {
			return err
		}
	}
	for _, st := range statements {
		err := ctx.Err()
		if err != nil {
			return err
		}
		switch st.Op {
		case adapter.OpAdd:
			e := &netlink.IPSetEntry{
				Replace: true,
				IP:      st.Addr.AsSlice(),
			}
			if timeout := st.TimeoutSeconds(); timeout > 0 {
				e.Timeout = &timeout
			}
			err = i.handler.IpsetAdd(st.Set, e)
		case adapter.OpDelete:
			err = i.handler.IpsetDel(st.Set, &netlink.IPSetEntry{
				IP: st.Addr.AsSlice(),
			})
		default:
			err = fmt.Errorf("unknown statement op: %s", st.Op)
		}
		if err != nil {
			return fmt.Errorf("%s fail: %w", st, err)
		}
		i.logger.DebugContext(ctx, st.String())
	}
	return nil
}

// checkFamily compares addr with the family the set was created with. The
// family of each set is read once.
func (i *IPSet) checkFamily(name string, addr netip.Addr) error {
	family, ok := i.family[name]
	if !ok {
		result, err := i.handler.IpsetList(name)
		if err != nil {
			return fmt.Errorf("ipset %s not found: %s", name, err)
		}
		family = result.Family
		i.family[name] = family
	}
	return matchFamily(name, family, addr)
}

// matchFamily accepts any address for a set of a family other than
// AF_INET and AF_INET6.
func matchFamily(name string, family uint8, addr netip.Addr) error {
	switch family {
	case unix.AF_INET:
		if !addr.Is4() {
			return fmt.Errorf("%w: %s is not a valid entry of %s", ErrInetMismatch, addr, name)
		}
	case unix.AF_INET6:
		if !addr.Is6() {
			return fmt.Errorf("%w: %s is not a valid entry of %s", ErrInetMismatch, addr, name)
		}
	}
	return nil
}
