package toolrecognizer

// SemanticKind tags the classified meaning of an observed execution.
type SemanticKind int

const (
	// QueryCompiler is an informational invocation (--version, --help, ...).
	QueryCompiler SemanticKind = iota
	// Preprocess is a preprocess-only invocation (-E, -M, -MM).
	Preprocess
	// Compile is a genuine compile, carrying the reconstructed flags.
	Compile
)

// Semantic is the tagged union result of recognizing a Run.
//
// Invariant: when Kind == Compile, Sources is non-empty, and Flags
// excludes Linker, PreprocessorMake, DirectorySearchLinker, Source, and
// output-category flags — those are projected into Sources/Output
// separately.
type Semantic struct {
	Kind SemanticKind

	// The following fields are populated only when Kind == Compile.
	WorkingDir string
	Compiler   string
	Flags      []string
	Sources    []string
	Output     string
	HasOutput  bool
}
