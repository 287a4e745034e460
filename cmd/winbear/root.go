package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mbikovitsky/winbear/pkg/config"
)

// globalFlags backs the root command's persistent flags, parsed into
// config.Options by each subcommand's RunE.
type globalFlags struct {
	verbosity       int
	quiet           bool
	timeout         string
	appendExisting  bool
	output          string
	configPath      string
	commandAsString bool
	dropOutput      bool
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "winbear -- COMMAND...",
		Short: "Reconstruct a compile_commands.json by observing a build's process tree",
		SilenceUsage: true,
	}

	root.PersistentFlags().CountVarP(&flags.verbosity, "verbose", "v", "increase log verbosity (repeatable)")
	root.PersistentFlags().BoolVarP(&flags.quiet, "quiet", "q", false, "suppress all logging but errors")
	root.PersistentFlags().StringVarP(&flags.timeout, "timeout", "t", "none", "debug-event wait timeout: none|<n>s|<n>ms|<n>ns")
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "", "", "optional YAML configuration file")
	root.PersistentFlags().BoolVar(&flags.commandAsString, "format-command-string", false, "write entries with a single shell-quoted \"command\" string instead of an \"arguments\" array")
	root.PersistentFlags().BoolVar(&flags.dropOutput, "no-output-field", false, "omit the optional \"output\" field from every entry")

	runCmd := newRunCommand(flags)
	root.AddCommand(runCmd)
	root.AddCommand(newMergeCommand(flags))

	// `winbear -- COMMAND...` with no subcommand behaves like `winbear run`.
	root.RunE = runCmd.RunE
	root.Flags().AddFlagSet(runCmd.Flags())
	root.AddCommand(newCitnamesCommand(flags))

	return root
}

// parseTimeout implements the "-t none|<n>s|<n>ms|<n>ns" grammar from
// spec.md §6.
func parseTimeout(s string) (config.Timeout, error) {
	if s == "" || s == "none" {
		return config.Timeout{}, nil
	}

	for _, unit := range []struct {
		suffix string
		scale  time.Duration
	}{
		{"ns", time.Nanosecond},
		{"ms", time.Millisecond},
		{"s", time.Second},
	} {
		if strings.HasSuffix(s, unit.suffix) {
			n, err := strconv.ParseInt(strings.TrimSuffix(s, unit.suffix), 10, 64)
			if err != nil {
				return config.Timeout{}, fmt.Errorf("invalid -t value %q: %w", s, err)
			}
			return config.Timeout{Duration: time.Duration(n) * unit.scale, Set: true}, nil
		}
	}

	return config.Timeout{}, fmt.Errorf("invalid -t value %q: expected none|<n>s|<n>ms|<n>ns", s)
}

func (f *globalFlags) toOptions(outputPath string, appendExisting bool, command []string) (config.Options, error) {
	timeout, err := parseTimeout(f.timeout)
	if err != nil {
		return config.Options{}, err
	}

	opts := config.NewOptions()
	opts.OutputPath = outputPath
	opts.Append = appendExisting
	opts.Timeout = timeout
	opts.Verbosity = f.verbosity
	opts.Quiet = f.quiet
	opts.ConfigPath = f.configPath
	opts.CommandAsArray = !f.commandAsString
	opts.DropOutputField = f.dropOutput
	opts.Command = command
	return opts, nil
}
