package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mbikovitsky/winbear/pkg/compiledb"
	"github.com/mbikovitsky/winbear/pkg/config"
)

// newMergeCommand implements `winbear merge OUT IN...`: generalizes the
// single-prior-file `-a/--append` case to N input databases (§12 of
// SPEC_FULL.md, grounded on original_source/citnames/src/output.rs).
func newMergeCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge OUT IN...",
		Short: "Merge one or more compilation databases into OUT",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.toOptions(args[0], false, nil)
			if err != nil {
				return err
			}
			return runMerge(opts, args[1:])
		},
	}
	return cmd
}

func runMerge(opts config.Options, inputs []string) error {
	fs := afero.NewOsFs()

	var merged []compiledb.Entry
	if exists, _ := afero.Exists(fs, opts.OutputPath); exists {
		prior, err := readPriorDatabase(fs, opts.OutputPath)
		if err != nil {
			return fmt.Errorf("winbear merge: reading existing %s: %w", opts.OutputPath, err)
		}
		merged = prior
	}

	for _, in := range inputs {
		entries, err := readPriorDatabase(fs, in)
		if err != nil {
			return fmt.Errorf("winbear merge: reading %s: %w", in, err)
		}
		merged = compiledb.Merge(merged, entries)
	}

	out, err := fs.Create(opts.OutputPath)
	if err != nil {
		return fmt.Errorf("winbear merge: creating %s: %w", opts.OutputPath, err)
	}
	defer out.Close()

	return compiledb.Serialize(out, merged, formatFor(opts))
}
