package main

import (
	"os"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/mbikovitsky/winbear/pkg/compiledb"
	"github.com/mbikovitsky/winbear/pkg/config"
	"github.com/mbikovitsky/winbear/pkg/resolver"
	"github.com/mbikovitsky/winbear/pkg/toolrecognizer"
)

// buildToolAny assembles C7's matcher dispatcher from a FileConfig:
// the gcc-like/clang-like/CUDA/wrapper matchers in the order spec.md
// §4.7 lists them, one UserExtendingWrapper per configured wrapper, and
// the configured exclude set.
func buildToolAny(fc config.FileConfig) toolrecognizer.ToolAny {
	matchers := []toolrecognizer.Matcher{
		toolrecognizer.GccLike{},
		toolrecognizer.ClangLike{},
		toolrecognizer.CUDA{},
		toolrecognizer.Wrapper{Resolver: resolver.New()},
	}
	for _, w := range fc.Wrappers {
		matchers = append(matchers, toolrecognizer.UserExtendingWrapper{
			Path:      w.Path,
			ExtraArgs: w.ExtraArgs,
		})
	}

	excluded := make(map[string]bool, len(fc.Exclude))
	for _, e := range fc.Exclude {
		excluded[e] = true
	}

	return toolrecognizer.ToolAny{Matchers: matchers, Excluded: excluded}
}

// recognizeAndSynthesize runs every captured Run through the recognizer
// and C8's entry synthesizer, per spec.md §7's error-handling design:
// an unrecognized or excluded execution is logged and silently dropped
// rather than aborting the whole operation.
func recognizeAndSynthesize(runs []toolrecognizer.Run, tool toolrecognizer.ToolAny, log *zap.SugaredLogger) []compiledb.Entry {
	var entries []compiledb.Entry

	for _, run := range runs {
		sem, err := tool.Recognize(run)
		if err != nil {
			log.Debugw("execution not recognized as a compile", "executable", run.Executable, "pid", run.PID, "error", err)
			continue
		}
		if sem.Kind != toolrecognizer.Compile {
			continue
		}

		synthesized, err := compiledb.Synthesize(sem)
		if err != nil {
			log.Debugw("failed to synthesize entries", "executable", run.Executable, "error", err)
			continue
		}
		entries = append(entries, synthesized...)
	}

	return entries
}

// applyContentFilter applies C8's content filter using fc's include and
// exclude path lists.
func applyContentFilter(fs afero.Fs, fc config.FileConfig, entries []compiledb.Entry) []compiledb.Entry {
	filter := compiledb.ContentFilter{
		FS:      fs,
		Include: fc.ContentFilterInclude,
		Exclude: fc.ContentFilterExclude,
	}

	kept := make([]compiledb.Entry, 0, len(entries))
	for _, e := range entries {
		if filter.Keep(e) {
			kept = append(kept, e)
		}
	}
	return kept
}

func formatFor(opts config.Options) compiledb.Format {
	return compiledb.Format{
		CommandAsArray:  opts.CommandAsArray,
		DropOutputField: opts.DropOutputField,
	}
}

func loadFileConfig(fs afero.Fs, path string) (config.FileConfig, error) {
	return config.LoadFile(fs, path)
}

// readPriorDatabase reads an existing compile_commands.json for the
// -a/--append flag; a missing file is not an error (append with no
// prior file degenerates to a fresh write).
func readPriorDatabase(fs afero.Fs, path string) ([]compiledb.Entry, error) {
	f, err := fs.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	return compiledb.Deserialize(f)
}
