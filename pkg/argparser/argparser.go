// Package argparser implements the combinator kernel (C6) that turns a
// raw argument vector into a tagged CompilerFlag sequence: a flag
// parser driven by pkg/flaggrammar, a source-file matcher keyed on file
// extension, and a catch-all for everything else, composed with OneOf
// and Repeat the way original_source/citnames/src/semantic/parsers.rs
// composes its own combinators.
package argparser

import (
	"fmt"
	"strings"

	"github.com/mbikovitsky/winbear/pkg/flaggrammar"
)

// CompilerFlag is a slice of the original argument vector tagged with
// its semantic category.
type CompilerFlag struct {
	Args     []string
	Category flaggrammar.Category
}

// sourceExtensions is the fixed set of source-file extensions from
// spec.md §4.6, in the 53-entry list it names verbatim.
var sourceExtensions = map[string]bool{}

func init() {
	for _, ext := range []string{
		".h", ".hh", ".H", ".hp", ".hxx", ".hpp", ".HPP", ".h++", ".tcc",
		".c", ".C", ".cc", ".CC", ".c++", ".C++", ".cxx", ".cpp", ".cp",
		".cu", ".m", ".mi", ".mm", ".M", ".mii", ".i", ".ii", ".s", ".S",
		".sx", ".asm", ".f", ".for", ".ftn", ".F", ".FOR", ".fpp", ".FPP",
		".FTN", ".f90", ".f95", ".f03", ".f08", ".F90", ".F95", ".F03",
		".F08", ".go", ".brig", ".d", ".di", ".dd", ".ads", ".abd",
	} {
		sourceExtensions[ext] = true
	}
}

// IsSource reports whether token's extension (the substring from the
// final '.') is one of the fixed source extensions.
func IsSource(token string) bool {
	idx := strings.LastIndexByte(token, '.')
	if idx < 0 {
		return false
	}
	return sourceExtensions[token[idx:]]
}

// parser consumes a prefix of args and returns the flag produced, the
// remaining tokens, and whether it matched.
type parser func(args []string) (CompilerFlag, []string, bool)

// oneOf tries each parser in order, returning the first match.
func oneOf(parsers ...parser) parser {
	return func(args []string) (CompilerFlag, []string, bool) {
		for _, p := range parsers {
			if flag, rest, ok := p(args); ok {
				return flag, rest, ok
			}
		}
		return CompilerFlag{}, args, false
	}
}

// flagParser matches the head of args against the flag grammar table.
func flagParser(args []string) (CompilerFlag, []string, bool) {
	if len(args) == 0 {
		return CompilerFlag{}, args, false
	}

	head := args[0]
	def, exact, ok := flaggrammar.Lookup(head)
	if !ok {
		return CompilerFlag{}, args, false
	}

	consume := def.Count
	if !exact {
		consume = def.Count - 1
		if consume < 0 {
			consume = 0
		}
	}

	if 1+consume > len(args) {
		// Not enough tokens left to satisfy the flag's arity; treat as
		// no match so CatchAll can claim it instead of panicking on a
		// malformed invocation.
		return CompilerFlag{}, args, false
	}

	flag := CompilerFlag{
		Args:     append([]string(nil), args[:1+consume]...),
		Category: def.Category,
	}
	return flag, args[1+consume:], true
}

// sourceMatcher matches the head of args if it looks like a source file.
func sourceMatcher(args []string) (CompilerFlag, []string, bool) {
	if len(args) == 0 || !IsSource(args[0]) {
		return CompilerFlag{}, args, false
	}
	return CompilerFlag{Args: args[:1], Category: flaggrammar.Source}, args[1:], true
}

// catchAll accepts any remaining non-empty token as a LinkerObjectFile.
func catchAll(args []string) (CompilerFlag, []string, bool) {
	if len(args) == 0 {
		return CompilerFlag{}, args, false
	}
	return CompilerFlag{Args: args[:1], Category: flaggrammar.LinkerObjectFile}, args[1:], true
}

// Parse consumes the entire argument vector, applying
// Repeat(OneOf(FlagParser, SourceMatcher, CatchAll)) until it is
// exhausted. Since CatchAll always matches a non-empty remainder,
// Parse only fails to consume everything if args is empty to begin
// with, in which case it returns an empty, successful result.
func Parse(args []string) ([]CompilerFlag, error) {
	top := oneOf(flagParser, sourceMatcher, catchAll)

	var flags []CompilerFlag
	remaining := args
	for len(remaining) > 0 {
		flag, rest, ok := top(remaining)
		if !ok {
			return nil, fmt.Errorf("argparser: could not consume remaining arguments: %v", remaining)
		}
		if len(rest) >= len(remaining) {
			return nil, fmt.Errorf("argparser: parser made no progress on: %v", remaining)
		}
		flags = append(flags, flag)
		remaining = rest
	}

	return flags, nil
}

// includeEnvVars lists the environment variables consulted for
// environment-sourced include flags, in the order spec.md §4.6 requires
// them to be appended.
var includeEnvVars = []struct {
	name string
	flag string
}{
	{"CPATH", "-I"},
	{"C_INCLUDE_PATH", "-I"},
	{"CPLUS_INCLUDE_PATH", "-I"},
	{"OBJC_INCLUDE_PATH", "-isystem"},
}

// AppendEnvironmentIncludes appends one CompilerFlag pair per entry of
// CPATH, C_INCLUDE_PATH, CPLUS_INCLUDE_PATH (as -I) and
// OBJC_INCLUDE_PATH (as -isystem), read from the target process's own
// environment, variables in listed order and entries in original order.
// An empty path-list entry contributes ".".
func AppendEnvironmentIncludes(flags []CompilerFlag, env map[string]string) []CompilerFlag {
	for _, v := range includeEnvVars {
		value, ok := env[v.name]
		if !ok {
			continue
		}
		for _, entry := range strings.Split(value, ";") {
			if entry == "" {
				entry = "."
			}
			flags = append(flags, CompilerFlag{
				Args:     []string{v.flag, entry},
				Category: flaggrammar.DirectorySearch,
			})
		}
	}
	return flags
}
