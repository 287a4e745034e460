package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mbikovitsky/winbear/pkg/compiledb"
	"github.com/mbikovitsky/winbear/pkg/config"
	"github.com/mbikovitsky/winbear/pkg/debugger"
	"github.com/mbikovitsky/winbear/pkg/execlogger"
	"github.com/mbikovitsky/winbear/pkg/toolrecognizer"
)

// newRunCommand is the default `winbear run -- COMMAND...` subcommand:
// launch COMMAND under the debugger, observe its whole descendant tree,
// and write the resulting compile_commands.json.
func newRunCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run -- COMMAND...",
		Short: "Observe a build command and emit compile_commands.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			dashAt := cmd.ArgsLenAtDash()
			var command []string
			if dashAt >= 0 {
				command = args[dashAt:]
			} else {
				command = args
			}
			if len(command) == 0 {
				return fmt.Errorf("winbear run: no build command given after --")
			}

			opts, err := flags.toOptions(flags.output, flags.appendExisting, command)
			if err != nil {
				return err
			}
			return runObserve(opts)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", config.DefaultOutputPath, "output compilation database path")
	cmd.Flags().BoolVarP(&flags.appendExisting, "append", "a", false, "merge into an existing database at the output path")

	return cmd
}

// runObserve drives C4 over the given build command, then runs the
// recognized executions through C7+C8 (§10.4's shared pipeline with
// `winbear citnames`) and writes the resulting database.
func runObserve(opts config.Options) error {
	log, err := config.NewLogger(opts.Verbosity, opts.Quiet)
	if err != nil {
		return fmt.Errorf("winbear: building logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	fs := afero.NewOsFs()

	fc, err := loadFileConfig(fs, opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("winbear: loading config: %w", err)
	}

	logger := execlogger.New(log.Desugar())

	var cmdline string
	if len(opts.Command) == 1 {
		cmdline = opts.Command[0]
	}
	timeout := debugger.WaitTimeout{Duration: opts.Timeout.Duration, Set: opts.Timeout.Set}
	if err := logger.Run(cmdline, opts.Command, "", timeout); err != nil {
		return fmt.Errorf("winbear: observing build: %w", err)
	}

	observations := logger.Executions()
	runs := make([]toolrecognizer.Run, 0, len(observations))
	for _, obs := range observations {
		runs = append(runs, obs.ToRun())
	}

	tool := buildToolAny(fc)
	entries := recognizeAndSynthesize(runs, tool, log)
	entries = applyContentFilter(fs, fc, entries)
	entries = compiledb.Deduplicate(entries)

	if opts.Append {
		prior, err := readPriorDatabase(fs, opts.OutputPath)
		if err != nil {
			return fmt.Errorf("winbear: reading prior database: %w", err)
		}
		entries = compiledb.Merge(prior, entries)
	}

	out, err := fs.Create(opts.OutputPath)
	if err != nil {
		return fmt.Errorf("winbear: creating %s: %w", opts.OutputPath, err)
	}
	defer out.Close()

	if err := compiledb.Serialize(out, entries, formatFor(opts)); err != nil {
		return fmt.Errorf("winbear: writing database: %w", err)
	}

	log.Infow("wrote compilation database", "path", opts.OutputPath, "entries", len(entries))
	return nil
}
