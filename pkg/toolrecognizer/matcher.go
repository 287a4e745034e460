package toolrecognizer

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mbikovitsky/winbear/pkg/resolver"
)

// ErrUnrecognized is returned when no matcher claims an execution.
var ErrUnrecognized = errors.New("toolrecognizer: no tool recognized this execution")

// ErrExcluded is returned when the executable is on the configured
// exclude list.
var ErrExcluded = errors.New("toolrecognizer: compiler is excluded by configuration")

// verdictState is the three-state outcome of a single matcher.
type verdictState int

const (
	notApplicable verdictState = iota
	recognizedOK
	recognizedError
)

type verdict struct {
	state verdictState
	sem   Semantic
	err   error
}

// Matcher claims or declines a Run.
type Matcher interface {
	Recognize(run Run) verdict
}

func stem(executable string) string {
	base := filepath.Base(executable)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

var gccLikeStem = regexp.MustCompile(`^(cc|c\+\+|cxx|CC|([^-]*-)*([mg](cc|\+\+)|g?fortran)(-?\d+(\.\d+){0,2})?)$`)

// GccLike matches the gcc/g++/mingw/fortran family by program stem.
type GccLike struct{}

func (GccLike) Recognize(run Run) verdict {
	if !gccLikeStem.MatchString(stem(run.Executable)) {
		return verdict{state: notApplicable}
	}
	sem, err := classifyGccLike(run)
	if err != nil {
		return verdict{state: recognizedError, err: err}
	}
	return verdict{state: recognizedOK, sem: sem}
}

var clangLikeStem = regexp.MustCompile(`^(clang|clang\+\+)(-?\d+(\.\d+){0,2})?$`)

// ClangLike matches the clang/clang++ family by program stem.
type ClangLike struct{}

func (ClangLike) Recognize(run Run) verdict {
	if !clangLikeStem.MatchString(stem(run.Executable)) {
		return verdict{state: notApplicable}
	}
	sem, err := classifyGccLike(run)
	if err != nil {
		return verdict{state: recognizedError, err: err}
	}
	return verdict{state: recognizedOK, sem: sem}
}

var cudaStem = regexp.MustCompile(`^nvcc$`)

// CUDA matches nvcc by program stem.
type CUDA struct{}

func (CUDA) Recognize(run Run) verdict {
	if !cudaStem.MatchString(stem(run.Executable)) {
		return verdict{state: notApplicable}
	}
	sem, err := classifyGccLike(run)
	if err != nil {
		return verdict{state: recognizedError, err: err}
	}
	return verdict{state: recognizedOK, sem: sem}
}

var distccMetaFlags = map[string]bool{
	"--help": true, "--version": true, "--show-hosts": true,
	"--scan-includes": true, "-j": true, "--show-principal": true,
}

// Wrapper matches ccache/distcc, unwrapping to the real compiler and
// recursing into the gcc-like classifier.
type Wrapper struct {
	Resolver *resolver.Resolver
}

func (w Wrapper) Recognize(run Run) verdict {
	s := stem(run.Executable)
	if s != "ccache" && s != "distcc" {
		return verdict{state: notApplicable}
	}

	if len(run.Args) <= 1 || strings.HasPrefix(run.Args[1], "-") || distccMetaFlags[run.Args[1]] {
		return verdict{state: recognizedOK, sem: Semantic{Kind: QueryCompiler}}
	}

	// Strip only the wrapper itself; the resolved compiler stays as
	// unwrapped.Args[0], since classifyGccLike skips argv[0] itself.
	unwrapped := run
	unwrapped.Args = run.Args[1:]

	target := unwrapped.Args[0]
	if resolved, err := w.Resolver.FromPath(target, run.Env); err == nil {
		unwrapped.Executable = resolved
	} else {
		unwrapped.Executable = target
	}

	sem, err := classifyGccLike(unwrapped)
	if err != nil {
		return verdict{state: recognizedError, err: fmt.Errorf("toolrecognizer: unwrapping %s: %w", s, err)}
	}
	return verdict{state: recognizedOK, sem: sem}
}

// UserExtendingWrapper matches a single configured absolute executable
// path, parses it as gcc-like, and appends configured extra flags to
// the resulting Compile.Flags.
type UserExtendingWrapper struct {
	Path      string
	ExtraArgs []string
}

func (u UserExtendingWrapper) Recognize(run Run) verdict {
	if !strings.EqualFold(run.Executable, u.Path) {
		return verdict{state: notApplicable}
	}
	sem, err := classifyGccLike(run)
	if err != nil {
		return verdict{state: recognizedError, err: err}
	}
	if sem.Kind == Compile {
		sem.Flags = append(sem.Flags, u.ExtraArgs...)
	}
	return verdict{state: recognizedOK, sem: sem}
}

// ToolAny dispatches a Run to an ordered list of matchers plus an
// exclude list of absolute executable paths.
type ToolAny struct {
	Matchers []Matcher
	Excluded map[string]bool
}

// Recognize returns the Semantic for run, or an error wrapping
// ErrExcluded / ErrUnrecognized / a matcher-specific parse failure.
func (t ToolAny) Recognize(run Run) (Semantic, error) {
	if t.Excluded[run.Executable] {
		return Semantic{}, fmt.Errorf("%w: %s", ErrExcluded, run.Executable)
	}

	for _, m := range t.Matchers {
		v := m.Recognize(run)
		switch v.state {
		case notApplicable:
			continue
		case recognizedOK:
			return v.sem, nil
		case recognizedError:
			return Semantic{}, v.err
		}
	}

	return Semantic{}, fmt.Errorf("%w: %s", ErrUnrecognized, run.Executable)
}
