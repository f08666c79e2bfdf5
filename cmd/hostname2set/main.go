package hostname2set

import (
	"errors"
	"fmt"
	"os"

	"github.com/towalink/hostname2set/constant"
	"github.com/towalink/hostname2set/log"

	"github.com/spf13/cobra"
)

const usageLine = "hostname2set [flags] [--] [tableKind tableName] setName host1[,host2...]"

type usageError struct {
	err error
}

func (e *usageError) Error() string {
	return e.err.Error()
}

func (e *usageError) Unwrap() error {
	return e.err
}

type preconditionError struct {
	err error
}

func (e *preconditionError) Error() string {
	return e.err.Error()
}

func (e *preconditionError) Unwrap() error {
	return e.err
}

// reportedError has already been written to the run's logger.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string {
	return e.err.Error()
}

func (e *reportedError) Unwrap() error {
	return e.err
}

func newMainCommand() *cobra.Command {
	mainCommand := &cobra.Command{
		Use:   usageLine,
		Short: "Resolve hostnames and refresh their addresses in a firewall set",
		Long: fmt.Sprintf(`Resolve hostnames and refresh their addresses in a firewall set.

Every address is refreshed with one add, delete, add transaction, so an
element already in the set gets its timeout reset. The table defaults to
"%s %s", the address type to %s.

The first positional argument is matched against the subcommands below. Put
"--" before the positional arguments to target a table or set named like one
of them, e.g. "hostname2set -- version host.example".`, constant.DefaultTableKind, constant.DefaultTableName, constant.DefaultQueryType),
		Args:          validateArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          run,
	}
	mainCommand.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})
	flags := mainCommand.PersistentFlags()
	flags.BoolP("debug", "d", false, "print debug messages")
	flags.BoolP("quiet", "q", false, "print warnings and errors only")
	flags.StringP("type", "t", constant.DefaultQueryType, "address type, A or AAAA")
	flags.StringP("config", "c", "", "config file (yaml or json)")
	flags.StringP("server", "s", "", "query this dns server over udp instead of the system resolver")
	flags.StringP("log-file", "l", "", "also write log to this file")
	localFlags := mainCommand.Flags()
	localFlags.StringP("backend", "b", constant.BackendNftables, "set backend, nftables or ipset")
	localFlags.DurationP("timeout", "T", 0, "timeout of added elements (default: the set's timeout)")
	localFlags.BoolP("dry-run", "n", false, "print the statements instead of applying them")
	mainCommand.AddCommand(newVersionCommand())
	mainCommand.AddCommand(newLookupCommand())
	return mainCommand
}

// Run executes the command line and returns the process exit code.
func Run() int {
	return execute(newMainCommand(), os.Args[1:])
}

func execute(mainCommand *cobra.Command, args []string) int {
	mainCommand.SetArgs(args)
	err := mainCommand.Execute()
	if err == nil {
		return 0
	}
	var rErr *reportedError
	if errors.As(err, &rErr) {
		return 1
	}
	log.DefaultSimpleLogger.Fatal(err)
	var uErr *usageError
	if errors.As(err, &uErr) {
		fmt.Fprint(mainCommand.ErrOrStderr(), mainCommand.UsageString())
	}
	return 1
}
