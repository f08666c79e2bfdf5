package core

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/towalink/hostname2set/adapter"
	"github.com/towalink/hostname2set/backend/ipset"
	"github.com/towalink/hostname2set/backend/nftset"
	"github.com/towalink/hostname2set/backend/printer"
	"github.com/towalink/hostname2set/constant"
	"github.com/towalink/hostname2set/lib/tools"
	"github.com/towalink/hostname2set/lib/types"
	"github.com/towalink/hostname2set/log"
	"github.com/towalink/hostname2set/option"
	"github.com/towalink/hostname2set/resolver"
	"github.com/towalink/hostname2set/setsync"
	"github.com/towalink/hostname2set/upstream"
)

// Core runs one resolve-and-refresh pass over the configured hostnames.
type Core struct {
	ctx          context.Context
	logger       log.Logger
	family       types.AddressFamily
	hostnames    []string
	upstream     adapter.Upstream
	backend      adapter.Backend
	resolver     *resolver.Resolver
	synchronizer *setsync.Synchronizer
}

// Summary counts the work done by a run.
type Summary struct {
	Hostnames int
	Addresses int
	Duration  time.Duration
}

func New(ctx context.Context, logger log.Logger, options option.Option) (*Core, error) {
	up, err := upstream.NewUpstream(ctx, logger, options.UpstreamOption)
	if err != nil {
		return nil, fmt.Errorf("init upstream fail: %s", err)
	}
	backend, err := newBackend(logger, options.BackendOption)
	if err != nil {
		closeUpstream(logger, up)
		return nil, fmt.Errorf("init backend fail: %s", err)
	}
	return newCore(ctx, logger, options, up, backend), nil
}

func newCore(ctx context.Context, logger log.Logger, options option.Option, up adapter.Upstream, backend adapter.Backend) *Core {
	target := setsync.Target{
		Table: options.Table,
		Set:   options.Set,
	}
	return &Core{
		ctx:          ctx,
		logger:       log.NewTagLogger(logger, "core"),
		family:       options.Family,
		hostnames:    options.Hostnames,
		upstream:     up,
		backend:      backend,
		resolver:     resolver.New(logger, up),
		synchronizer: setsync.New(logger, backend, target, time.Duration(options.BackendOption.Timeout)),
	}
}

func newBackend(logger log.Logger, options option.BackendOption) (adapter.Backend, error) {
	if options.DryRun {
		return printer.New(os.Stdout), nil
	}
	switch options.Type {
	case constant.BackendNftables, "":
		return nftset.New(logger)
	case constant.BackendIPSet:
		return ipset.New(logger)
	case constant.BackendPrinter:
		return printer.New(os.Stdout), nil
	default:
		return nil, fmt.Errorf("unknown backend type: %s", options.Type)
	}
}

// Run processes hostnames in order and the addresses of each hostname in the
// order they were resolved. The first error aborts the run; refreshes that
// were already applied stay in place.
func (c *Core) Run() error {
	_, err := c.run()
	if err != nil && c.ctx.Err() != nil && tools.IsCloseOrCanceled(err) {
		c.logger.Warn("run canceled")
	}
	return err
}

func (c *Core) run() (Summary, error) {
	ctx := log.AddContextTag(c.ctx, "")
	var summary Summary
	startTime := time.Now()
	target := c.synchronizer.Target()
	c.logger.Debug(fmt.Sprintf("run: %d hostnames, type %s, target %s, upstream %s, backend %s", len(c.hostnames), c.family, target, c.upstream.Tag(), c.backend.Name()))
	for _, hostname := range c.hostnames {
		addrs, err := c.resolver.Resolve(ctx, hostname, c.family)
		if err != nil {
			return summary, &Error{
				Stage:    StageResolve,
				Hostname: hostname,
				Err:      err,
			}
		}
		for _, addr := range addrs {
			err = c.synchronizer.Refresh(ctx, addr)
			if err != nil {
				return summary, &Error{
					Stage:    StageApply,
					Hostname: hostname,
					Addr:     addr,
					Err:      err,
				}
			}
			summary.Addresses++
		}
		summary.Hostnames++
	}
	summary.Duration = time.Since(startTime)
	c.logger.Info(fmt.Sprintf("refreshed %d addresses of %d hostnames in %s, cost %s", summary.Addresses, summary.Hostnames, target, summary.Duration.String()))
	return summary, nil
}

func (c *Core) Close() error {
	closeUpstream(c.logger, c.upstream)
	err := c.backend.Close()
	if err != nil {
		return fmt.Errorf("backend [%s] close fail: %s", c.backend.Name(), err)
	}
	return nil
}

func closeUpstream(logger log.Logger, up adapter.Upstream) {
	if closer, isCloser := up.(adapter.Closer); isCloser {
		err := closer.Close()
		if err != nil {
			logger.Error(fmt.Sprintf("upstream [%s] close fail: %s", up.Tag(), err))
		}
	}
}
