package main

import (
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mbikovitsky/winbear/pkg/compiledb"
	"github.com/mbikovitsky/winbear/pkg/config"
	"github.com/mbikovitsky/winbear/pkg/toolrecognizer"
)

var citnamesJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// wireRun is the JSON shape `winbear citnames` reads: an
// already-captured execution, for users who gathered process info with
// a tool other than C1-C4 (§12's standalone-citnames feature).
type wireRun struct {
	Executable  string            `json:"executable"`
	Arguments   []string          `json:"arguments"`
	Directory   string            `json:"directory"`
	Environment map[string]string `json:"environment"`
	PID         uint32            `json:"pid"`
	PPID        uint32            `json:"ppid"`
}

// newCitnamesCommand implements `winbear citnames [INPUT]`: the
// build-free mode that re-runs C7+C8+C9 over a JSON array of
// already-captured runs, instead of driving C1-C4 itself. INPUT
// defaults to stdin.
func newCitnamesCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "citnames [INPUT]",
		Short: "Recognize compiler invocations from a JSON array of already-captured runs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			opts, err := flags.toOptions(flags.output, flags.appendExisting, nil)
			if err != nil {
				return err
			}
			return runCitnames(opts, input)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", config.DefaultOutputPath, "output compilation database path")
	cmd.Flags().BoolVarP(&flags.appendExisting, "append", "a", false, "merge into an existing database at the output path")

	return cmd
}

func runCitnames(opts config.Options, input string) error {
	log, err := config.NewLogger(opts.Verbosity, opts.Quiet)
	if err != nil {
		return fmt.Errorf("winbear citnames: building logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	fs := afero.NewOsFs()

	var r io.Reader
	if input == "" {
		r = os.Stdin
	} else {
		f, err := fs.Open(input)
		if err != nil {
			return fmt.Errorf("winbear citnames: opening %s: %w", input, err)
		}
		defer f.Close()
		r = f
	}

	var wireRuns []wireRun
	if err := citnamesJSON.NewDecoder(r).Decode(&wireRuns); err != nil {
		return fmt.Errorf("winbear citnames: decoding input: %w", err)
	}

	runs := make([]toolrecognizer.Run, 0, len(wireRuns))
	for _, wr := range wireRuns {
		runs = append(runs, toolrecognizer.Run{
			Executable: wr.Executable,
			Args:       wr.Arguments,
			Directory:  wr.Directory,
			Env:        wr.Environment,
			PID:        wr.PID,
			PPID:       wr.PPID,
		})
	}

	fc, err := loadFileConfig(fs, opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("winbear citnames: loading config: %w", err)
	}

	tool := buildToolAny(fc)
	entries := recognizeAndSynthesize(runs, tool, log)
	entries = applyContentFilter(fs, fc, entries)
	entries = compiledb.Deduplicate(entries)

	if opts.Append {
		prior, err := readPriorDatabase(fs, opts.OutputPath)
		if err != nil {
			return fmt.Errorf("winbear citnames: reading prior database: %w", err)
		}
		entries = compiledb.Merge(prior, entries)
	}

	out, err := fs.Create(opts.OutputPath)
	if err != nil {
		return fmt.Errorf("winbear citnames: creating %s: %w", opts.OutputPath, err)
	}
	defer out.Close()

	if err := compiledb.Serialize(out, entries, formatFor(opts)); err != nil {
		return fmt.Errorf("winbear citnames: writing database: %w", err)
	}

	log.Infow("wrote compilation database", "path", opts.OutputPath, "entries", len(entries))
	return nil
}
