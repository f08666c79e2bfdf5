package hostname2set

import (
	"context"
	"fmt"

	"github.com/towalink/hostname2set/adapter"
	"github.com/towalink/hostname2set/lib/tools"
	"github.com/towalink/hostname2set/log"
	"github.com/towalink/hostname2set/resolver"
	"github.com/towalink/hostname2set/upstream"

	"github.com/spf13/cobra"
)

func newLookupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup host1[,host2...]",
		Short: "Resolve hostnames and print the addresses that would be refreshed",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return &usageError{err: fmt.Errorf("expect 1 argument, got %d", len(args))}
			}
			return nil
		},
		RunE: lookup,
	}
}

func lookup(cmd *cobra.Command, args []string) error {
	options, err := buildOption(cmd, nil)
	if err != nil {
		return &usageError{err: err}
	}
	hostnames, emptyIndex := tools.SplitList(args[0], ",")
	if emptyIndex >= 0 {
		return &usageError{err: fmt.Errorf("hostname #%d in %q is empty", emptyIndex+1, args[0])}
	}
	err = options.UpstreamOption.Validate()
	if err != nil {
		return &usageError{err: err}
	}
	logger, closeLogger, err := newLogger(options.LogOption)
	if err != nil {
		return fmt.Errorf("open log file fail: %s", err)
	}
	defer closeLogger()
	err = upstream.Precheck(options.UpstreamOption)
	if err != nil {
		logger.Fatal(err)
		return &reportedError{err: &preconditionError{err: err}}
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go notifySignal(ctx, logger, cancel)
	up, err := upstream.NewUpstream(ctx, logger, options.UpstreamOption)
	if err != nil {
		logger.Fatal(err)
		return &reportedError{err: err}
	}
	if closer, isCloser := up.(adapter.Closer); isCloser {
		defer closer.Close()
	}
	r := resolver.New(logger, up)
	ctx = log.AddContextTag(ctx, "lookup")
	for _, hostname := range hostnames {
		addrs, err := r.Resolve(ctx, hostname, options.Family)
		if err != nil {
			logger.Fatal(err)
			return &reportedError{err: err}
		}
		for _, addr := range addrs {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", hostname, options.Family, addr)
		}
	}
	return nil
}
