package toolrecognizer

import (
	"fmt"

	"github.com/mbikovitsky/winbear/pkg/argparser"
	"github.com/mbikovitsky/winbear/pkg/flaggrammar"
)

// classifyGccLike implements the post-parse classification shared by
// every gcc-family tool (gcc-like, clang-like, CUDA, and the unwrapped
// target of ccache/distcc): spec.md §4.7 step "Post-parse
// classification (the gcc-like core)".
func classifyGccLike(run Run) (Semantic, error) {
	var rest []string
	if len(run.Args) > 1 {
		rest = run.Args[1:]
	}

	flags, err := argparser.Parse(rest)
	if err != nil {
		return Semantic{}, fmt.Errorf("toolrecognizer: parsing arguments: %w", err)
	}

	if len(flags) == 0 {
		return Semantic{Kind: QueryCompiler}, nil
	}
	for _, f := range flags {
		if f.Category == flaggrammar.KindOfOutputInfo {
			return Semantic{Kind: QueryCompiler}, nil
		}
	}

	sawNoLinking := false
	for _, f := range flags {
		if f.Category == flaggrammar.KindOfOutputNoLinking && len(f.Args) > 0 && f.Args[0] == "-E" {
			return Semantic{Kind: Preprocess}, nil
		}
		if f.Category == flaggrammar.PreprocessorMake && len(f.Args) > 0 && (f.Args[0] == "-M" || f.Args[0] == "-MM") {
			return Semantic{Kind: Preprocess}, nil
		}
		if f.Category == flaggrammar.KindOfOutputNoLinking {
			sawNoLinking = true
		}
	}

	var sources []string
	var output string
	haveOutput := false
	var kept []string

	for _, f := range flags {
		switch f.Category {
		case flaggrammar.Source:
			sources = append(sources, f.Args[0])
		case flaggrammar.KindOfOutputOutput:
			if len(f.Args) > 1 {
				output = f.Args[len(f.Args)-1]
				haveOutput = true
			}
		case flaggrammar.Linker, flaggrammar.PreprocessorMake, flaggrammar.DirectorySearchLinker:
			// dropped
		default:
			kept = append(kept, f.Args...)
		}
	}

	if len(sources) == 0 {
		return Semantic{}, fmt.Errorf("toolrecognizer: no source files in: %v", run.Args)
	}

	if !sawNoLinking {
		kept = append([]string{"-c"}, kept...)
	}

	sem := Semantic{
		Kind:       Compile,
		WorkingDir: run.Directory,
		Compiler:   run.Executable,
		Flags:      kept,
		Sources:    sources,
		Output:     output,
		HasOutput:  haveOutput,
	}

	envFlags := argparser.AppendEnvironmentIncludes(nil, run.Env)
	for _, f := range envFlags {
		sem.Flags = append(sem.Flags, f.Args...)
	}

	return sem, nil
}
