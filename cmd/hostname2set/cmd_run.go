package hostname2set

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/towalink/hostname2set/core"
	"github.com/towalink/hostname2set/log"
	"github.com/towalink/hostname2set/option"
	"github.com/towalink/hostname2set/upstream"

	"github.com/spf13/cobra"
)

func run(cmd *cobra.Command, args []string) error {
	options, err := buildOption(cmd, args)
	if err != nil {
		return &usageError{err: err}
	}
	err = options.Validate()
	if err != nil {
		return &usageError{err: err}
	}
	logger, closeLogger, err := newLogger(options.LogOption)
	if err != nil {
		return fmt.Errorf("open log file fail: %s", err)
	}
	defer closeLogger()
	err = precheck(options)
	if err != nil {
		logger.Fatal(err)
		return &reportedError{err: &preconditionError{err: err}}
	}
	logger.Debug(fmt.Sprintf("options: type %s, table %s, set %s, hostnames %v, upstream %s, backend %s, timeout %s, dry-run %t",
		options.Family, options.Table, options.Set, []string(options.Hostnames), options.UpstreamOption.Type,
		options.BackendOption.Type, formatTimeout(options.BackendOption.Timeout), options.BackendOption.DryRun))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go notifySignal(ctx, logger, cancel)
	c, err := core.New(ctx, logger, options)
	if err != nil {
		logger.Fatal(err)
		return &reportedError{err: err}
	}
	defer func() {
		err := c.Close()
		if err != nil {
			logger.Error(err)
		}
	}()
	err = c.Run()
	if err != nil {
		logger.Fatal(err)
		return &reportedError{err: err}
	}
	return nil
}

// precheck verifies everything the run depends on outside the process,
// before any side effect.
func precheck(options option.Option) error {
	if !options.BackendOption.DryRun {
		err := checkPrivilege()
		if err != nil {
			return err
		}
	}
	err := upstream.Precheck(options.UpstreamOption)
	if err != nil {
		return fmt.Errorf("dns resolution unavailable: %s", err)
	}
	return nil
}

func newLogger(options option.LogOption) (*log.SimpleLogger, func(), error) {
	logger := log.NewLogger()
	logger.SetOutput(os.Stderr)
	closer := func() {}
	if options.Disabled {
		logger.SetOutput(io.Discard)
	}
	if options.DisableTimestamp {
		logger.SetFormatFunc(log.DisableTimestampFormatFunc)
	}
	logger.SetQuiet(options.Quiet)
	logger.SetDebug(options.Debug)
	if options.File != "" {
		f, err := os.OpenFile(options.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		logger.AddOutput(f)
		closer = func() {
			f.Close()
		}
	} else if !options.Disabled {
		logger.SetColor(log.IsTerminal(os.Stderr))
	}
	return logger, closer, nil
}

func notifySignal(ctx context.Context, logger log.Logger, cancel context.CancelFunc) {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalChan)
	select {
	case sig := <-signalChan:
		logger.Warn(fmt.Sprintf("receive signal %s, exiting...", sig))
		cancel()
	case <-ctx.Done():
	}
}
