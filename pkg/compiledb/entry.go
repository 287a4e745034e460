// Package compiledb implements the Entry Synthesizer & DB Writer (C8):
// projecting recognized compiles into per-source Entry records,
// filtering and deduplicating them, and (de)serializing the resulting
// JSON compilation database.
package compiledb

import (
	"fmt"
	"path/filepath"

	"github.com/mbikovitsky/winbear/pkg/toolrecognizer"
)

// Entry is one compilation-database record.
type Entry struct {
	File      string
	Directory string
	Output    string
	HasOutput bool
	Arguments []string
}

// Synthesize projects a Semantic (which must be a Compile) into one
// Entry per source file, per spec.md §4.8. File and Output are made
// absolute by joining with WorkingDir when relative.
func Synthesize(sem toolrecognizer.Semantic) ([]Entry, error) {
	if sem.Kind != toolrecognizer.Compile {
		return nil, fmt.Errorf("compiledb: Synthesize requires a Compile semantic")
	}
	if len(sem.Sources) == 0 {
		return nil, fmt.Errorf("compiledb: Compile semantic has no sources")
	}

	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(sem.WorkingDir, p)
	}

	output := ""
	if sem.HasOutput {
		output = abs(sem.Output)
	}

	entries := make([]Entry, 0, len(sem.Sources))
	for _, src := range sem.Sources {
		args := make([]string, 0, len(sem.Flags)+3)
		args = append(args, sem.Compiler)
		args = append(args, sem.Flags...)
		if sem.HasOutput {
			args = append(args, "-o", sem.Output)
		}
		args = append(args, src)

		entries = append(entries, Entry{
			File:      abs(src),
			Directory: sem.WorkingDir,
			Output:    output,
			HasOutput: sem.HasOutput,
			Arguments: args,
		})
	}

	return entries, nil
}
