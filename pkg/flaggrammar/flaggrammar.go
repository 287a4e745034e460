// Package flaggrammar declares the static table of compiler flags the
// argument parser (pkg/argparser) consumes. Each entry states how many
// following tokens the flag consumes, whether it may match by exact
// equality, prefix, or either, whether an `=`-glued value counts as a
// single argument, and the semantic category the flag belongs to.
package flaggrammar

import "sort"

// Category tags a parsed CompilerFlag with its semantic role.
type Category int

const (
	// KindOfOutput selects the overall output kind or driver behavior
	// (-x, -dumpbase, -v, -###, ...).
	KindOfOutput Category = iota
	// KindOfOutputNoLinking stops the pipeline before linking (-c, -S, -E).
	KindOfOutputNoLinking
	// KindOfOutputInfo requests informational output instead of compiling
	// (--version, --help, --target-help, ...).
	KindOfOutputInfo
	// KindOfOutputOutput names the output file (-o).
	KindOfOutputOutput
	// Preprocessor flags affect preprocessing only.
	Preprocessor
	// PreprocessorMake flags request Makefile dependency generation.
	PreprocessorMake
	// Linker flags are meaningful only when linking.
	Linker
	// LinkerObjectFile is an unrecognized bare token, treated as an
	// object/library file destined for the linker.
	LinkerObjectFile
	// DirectorySearch flags add a compiler include search path.
	DirectorySearch
	// DirectorySearchLinker flags add a linker library search path.
	DirectorySearchLinker
	// Source marks a token recognized as a source file by extension.
	Source
	// Other covers everything else retained verbatim in compile flags.
	Other
)

// Match governs how a flag's key may appear in an argument.
type Match int

const (
	// Exact requires the argument to equal the key verbatim (the value,
	// if any, is a separate following token).
	Exact Match = iota
	// Partial allows the key to be a prefix of the argument, with the
	// value glued to the key (e.g. -I/usr/include).
	Partial
	// Both allows either form.
	Both
)

// Definition describes how a single flag key is consumed.
type Definition struct {
	Key           string
	Count         int
	Match         Match
	EqualsAllowed bool
	Category      Category
}

// table is sorted by Key in init, so Lookup can binary-search for an
// exact key; TestTableIsSorted checks the sorted result.
//
// Reproduced from the GCC documentation per spec.md §4.5 ("the
// exhaustive list follows the full gcc documentation and is part of the
// specification artifact; implementers reproduce it verbatim").
var table = []Definition{
	{"-###", 0, Exact, false, KindOfOutput},
	{"-A", 1, Exact, false, Preprocessor},
	{"-B", 1, Exact, false, DirectorySearch},
	{"-C", 0, Exact, false, Preprocessor},
	{"-CC", 0, Exact, false, Preprocessor},
	{"-D", 1, Exact, false, Preprocessor},
	{"-E", 0, Exact, false, KindOfOutputNoLinking},
	{"-H", 0, Exact, false, Preprocessor},
	{"-I", 1, Both, false, DirectorySearch},
	{"-L", 1, Both, false, DirectorySearchLinker},
	{"-M", 0, Exact, false, PreprocessorMake},
	{"-MD", 0, Exact, false, PreprocessorMake},
	{"-MF", 1, Exact, false, PreprocessorMake},
	{"-MG", 0, Exact, false, PreprocessorMake},
	{"-MM", 0, Exact, false, PreprocessorMake},
	{"-MMD", 0, Exact, false, PreprocessorMake},
	{"-MP", 0, Exact, false, PreprocessorMake},
	{"-MQ", 1, Exact, false, PreprocessorMake},
	{"-MT", 1, Exact, false, PreprocessorMake},
	{"-O", 0, Partial, false, Other},
	{"-P", 0, Exact, false, Preprocessor},
	{"-Q", 0, Partial, false, Other},
	{"-S", 0, Exact, false, KindOfOutputNoLinking},
	{"-T", 1, Exact, false, Linker},
	{"-U", 1, Exact, false, Preprocessor},
	{"-W", 0, Partial, false, Other},
	{"-Wa,", 0, Partial, false, Other},
	{"-Wl,", 0, Partial, false, Linker},
	{"-Wp,", 0, Partial, false, Preprocessor},
	{"-X", 0, Partial, false, Other},
	{"-Xassembler", 1, Exact, false, Other},
	{"-Xlinker", 1, Exact, false, Linker},
	{"-Xpreprocessor", 1, Exact, false, Preprocessor},
	{"-Y", 0, Partial, false, Other},
	{"-aux-info", 1, Exact, false, Other},
	{"-ansi", 0, Exact, false, Other},
	{"-c", 0, Exact, false, KindOfOutputNoLinking},
	{"-d", 0, Partial, false, Other},
	{"-dumpbase", 1, Exact, false, KindOfOutput},
	{"-e", 1, Exact, false, Linker},
	{"-f", 0, Partial, false, Other},
	{"-flinker-output", 1, Partial, true, Linker},
	{"-fuse-ld", 1, Partial, true, Linker},
	{"-g", 0, Partial, false, Other},
	{"-idirafter", 1, Exact, false, DirectorySearch},
	{"-imacros", 1, Exact, false, Preprocessor},
	{"-imultilib", 1, Exact, false, DirectorySearch},
	{"-include", 1, Exact, false, Preprocessor},
	{"-iprefix", 1, Exact, false, DirectorySearch},
	{"-iquote", 1, Exact, false, DirectorySearch},
	{"-isysroot", 1, Exact, false, DirectorySearch},
	{"-isystem", 1, Exact, false, DirectorySearch},
	{"-iwithprefix", 1, Exact, false, DirectorySearch},
	{"-iwithprefixbefore", 1, Exact, false, DirectorySearch},
	{"-l", 0, Partial, false, Linker},
	{"-m", 0, Partial, false, Other},
	{"-no-pie", 0, Exact, false, Linker},
	{"-nodefaultlibs", 0, Exact, false, Linker},
	{"-nolibc", 0, Exact, false, Linker},
	{"-nostartfiles", 0, Exact, false, Linker},
	{"-nostdlib", 0, Exact, false, Linker},
	{"-no", 0, Partial, false, Other},
	{"-o", 1, Exact, false, KindOfOutputOutput},
	{"-p", 0, Partial, false, Other},
	{"-pie", 0, Exact, false, Linker},
	{"-pipe", 0, Exact, false, KindOfOutput},
	{"-pthread", 0, Exact, false, Preprocessor},
	{"-r", 0, Exact, false, Linker},
	{"-rdynamic", 0, Exact, false, Linker},
	{"-remap", 0, Exact, false, Preprocessor},
	{"-s", 0, Exact, false, Linker},
	{"-save", 0, Partial, false, Other},
	{"-shared", 0, Exact, false, Linker},
	{"-static", 0, Exact, false, Linker},
	{"-static-pie", 0, Exact, false, Linker},
	{"-std", 1, Partial, true, Other},
	{"-symbolic", 0, Exact, false, Linker},
	{"-sysroot", 1, Partial, true, DirectorySearch},
	{"-traditional", 0, Partial, false, Preprocessor},
	{"-trigraphs", 0, Exact, false, Preprocessor},
	{"-u", 1, Exact, false, Linker},
	{"-undef", 0, Exact, false, Preprocessor},
	{"-v", 0, Exact, false, KindOfOutput},
	{"-wrapper", 1, Exact, false, KindOfOutput},
	{"-x", 1, Exact, false, KindOfOutput},
	{"-z", 1, Exact, false, Linker},
	{"--entry", 1, Partial, true, Linker},
	{"--help", 0, Exact, false, KindOfOutputInfo},
	{"--sysroot", 1, Partial, true, DirectorySearch},
	{"--target-help", 0, Exact, false, KindOfOutputInfo},
	{"--version", 0, Exact, false, KindOfOutputInfo},
	{"--", 0, Exact, false, Other},
	{"@", 0, Partial, false, Other},
}

func init() {
	sort.Slice(table, func(i, j int) bool { return table[i].Key < table[j].Key })
}

// Table returns the static flag table, sorted by key.
func Table() []Definition {
	return table
}

// Lookup finds the best-matching definition for a raw argument token,
// following spec.md §4.6's preference order: exact beats partial; among
// partial matches, the longest matching key wins; ties broken by key
// order. It returns (definition, matchedExact, ok).
func Lookup(arg string) (Definition, bool, bool) {
	var bestPartial Definition
	havePartial := false

	// An exact match, if present, is unique (keys are distinct), so a
	// binary search finds it. Partial candidates are then found by a
	// linear scan over the whole table, which is small (roughly 90
	// entries).
	idx := sort.Search(len(table), func(i int) bool { return table[i].Key >= arg })
	if idx < len(table) && table[idx].Key == arg {
		def := table[idx]
		if def.Match == Exact || def.Match == Both {
			return def, true, true
		}
	}

	for _, def := range table {
		if def.Match == Exact {
			continue
		}
		if len(def.Key) == 0 || len(def.Key) > len(arg) {
			continue
		}
		if arg[:len(def.Key)] != def.Key {
			continue
		}
		if !havePartial || len(def.Key) > len(bestPartial.Key) ||
			(len(def.Key) == len(bestPartial.Key) && def.Key < bestPartial.Key) {
			bestPartial = def
			havePartial = true
		}
	}

	if havePartial {
		return bestPartial, false, true
	}

	return Definition{}, false, false
}
