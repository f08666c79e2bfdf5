package option

import (
	"fmt"
	"math"
	"time"

	"github.com/towalink/hostname2set/constant"
	"github.com/towalink/hostname2set/lib/types"
)

type BackendOption struct {
	Type string `config:"type"`
	// Timeout is attached to every added element. Zero keeps the set's own
	// default timeout, otherwise it must be whole seconds in [1s, MaxUint32 s].
	Timeout types.TimeDuration `config:"timeout"`
	DryRun  bool               `config:"dry_run"`
}

func (b BackendOption) Validate() error {
	switch b.Type {
	case constant.BackendNftables, constant.BackendIPSet, constant.BackendPrinter:
	default:
		return fmt.Errorf("unknown backend type: %s", b.Type)
	}
	timeout := time.Duration(b.Timeout)
	switch {
	case timeout == 0:
	case timeout < 0:
		return fmt.Errorf("timeout is negative")
	case timeout < time.Second:
		return fmt.Errorf("timeout %s is shorter than 1s", timeout)
	case timeout%time.Second != 0:
		return fmt.Errorf("timeout %s is not a whole number of seconds", timeout)
	case timeout/time.Second > math.MaxUint32:
		return fmt.Errorf("timeout %s exceeds %d seconds", timeout, uint32(math.MaxUint32))
	}
	return nil
}
