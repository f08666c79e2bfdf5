package hostname2set

import (
	"fmt"
	"strings"
	"time"

	"github.com/towalink/hostname2set/constant"
	"github.com/towalink/hostname2set/lib/tools"
	"github.com/towalink/hostname2set/lib/types"
	"github.com/towalink/hostname2set/option"

	"github.com/spf13/cobra"
)

func validateArgs(cmd *cobra.Command, args []string) error {
	switch len(args) {
	case 2, 4:
		return nil
	case 0:
		config, _ := cmd.Flags().GetString("config")
		if config != "" {
			return nil
		}
		return &usageError{err: fmt.Errorf("set name and hostnames are required")}
	default:
		return &usageError{err: fmt.Errorf("expect 2 or 4 arguments, got %d", len(args))}
	}
}

// parseTarget reads `[tableKind tableName] setName host1,host2` into options.
func parseTarget(options *option.Option, args []string) error {
	switch len(args) {
	case 0:
		return nil
	case 2:
	case 4:
		table, err := types.NewTableLocator(args[0], args[1])
		if err != nil {
			return err
		}
		options.Table = table
		args = args[2:]
	default:
		return fmt.Errorf("expect 2 or 4 arguments, got %d", len(args))
	}
	options.Set = strings.TrimSpace(args[0])
	if options.Set == "" {
		return fmt.Errorf("set name is empty")
	}
	hostnames, emptyIndex := tools.SplitList(args[1], ",")
	if emptyIndex >= 0 {
		return fmt.Errorf("hostname #%d in %q is empty", emptyIndex+1, args[1])
	}
	options.Hostnames = hostnames
	return nil
}

// buildOption reads the config file, if any, and overlays it with the flags
// and positional arguments of cmd.
func buildOption(cmd *cobra.Command, args []string) (option.Option, error) {
	flags := cmd.Flags()
	options := option.Option{}
	config, _ := flags.GetString("config")
	if config != "" {
		fileOptions, err := option.ReadFile(config)
		if err != nil {
			return options, fmt.Errorf("read config file %s fail: %s", config, err)
		}
		options = *fileOptions
	}
	if flags.Changed("type") || !options.Family.IsValid() {
		typeStr, _ := flags.GetString("type")
		family, err := types.ParseAddressFamily(typeStr)
		if err != nil {
			return options, err
		}
		options.Family = family
	}
	if debug, _ := flags.GetBool("debug"); debug {
		options.LogOption.Debug = true
	}
	if quiet, _ := flags.GetBool("quiet"); quiet {
		options.LogOption.Quiet = true
	}
	if logFile, _ := flags.GetString("log-file"); logFile != "" {
		options.LogOption.File = logFile
	}
	if server, _ := flags.GetString("server"); server != "" {
		options.UpstreamOption.Type = constant.UpstreamUDP
		options.UpstreamOption.Address = server
	}
	if flags.Lookup("backend") != nil {
		if flags.Changed("backend") {
			options.BackendOption.Type, _ = flags.GetString("backend")
		}
		if flags.Changed("timeout") {
			timeout, _ := flags.GetDuration("timeout")
			options.BackendOption.Timeout = types.TimeDuration(timeout)
		}
		if dryRun, _ := flags.GetBool("dry-run"); dryRun {
			options.BackendOption.DryRun = true
		}
	}
	err := parseTarget(&options, args)
	if err != nil {
		return options, err
	}
	options.ApplyDefaults()
	return options, nil
}

// formatTimeout is used in the debug dump of the effective configuration.
func formatTimeout(timeout types.TimeDuration) string {
	if timeout <= 0 {
		return "set default"
	}
	return time.Duration(timeout).String()
}
