package toolrecognizer_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbikovitsky/winbear/pkg/resolver"
	"github.com/mbikovitsky/winbear/pkg/toolrecognizer"
)

func defaultTool() toolrecognizer.ToolAny {
	return toolrecognizer.ToolAny{
		Matchers: []toolrecognizer.Matcher{
			toolrecognizer.GccLike{},
			toolrecognizer.ClangLike{},
			toolrecognizer.CUDA{},
			toolrecognizer.Wrapper{Resolver: resolver.New()},
		},
	}
}

func TestSimpleCompile(t *testing.T) {
	tool := defaultTool()
	run := toolrecognizer.Run{
		Executable: `C:\cc.exe`,
		Args:       []string{"cc", "-c", "-o", "source.o", "source.c"},
		Directory:  `C:\proj`,
		Env:        map[string]string{},
	}
	sem, err := tool.Recognize(run)
	require.NoError(t, err)
	assert.Equal(t, toolrecognizer.Compile, sem.Kind)
	assert.Equal(t, []string{"-c"}, sem.Flags)
	assert.Equal(t, []string{"source.c"}, sem.Sources)
	assert.True(t, sem.HasOutput)
	assert.Equal(t, "source.o", sem.Output)
}

func TestLinkerFlagsFiltered(t *testing.T) {
	tool := defaultTool()
	run := toolrecognizer.Run{
		Executable: `C:\cc.exe`,
		Args:       []string{"cc", "-L.", "-lthing", "-o", "exe", "source.c"},
		Directory:  `C:\proj`,
		Env:        map[string]string{},
	}
	sem, err := tool.Recognize(run)
	require.NoError(t, err)
	assert.Equal(t, []string{"-c"}, sem.Flags)
	assert.Equal(t, []string{"source.c"}, sem.Sources)
	assert.Equal(t, "exe", sem.Output)
}

func TestVersionQuery(t *testing.T) {
	tool := defaultTool()
	run := toolrecognizer.Run{Executable: `C:\gcc.exe`, Args: []string{"gcc", "--version"}}
	sem, err := tool.Recognize(run)
	require.NoError(t, err)
	assert.Equal(t, toolrecognizer.QueryCompiler, sem.Kind)
}

func TestPreprocessOnly(t *testing.T) {
	tool := defaultTool()
	run := toolrecognizer.Run{Executable: `C:\cc.exe`, Args: []string{"cc", "-E", "source.c"}}
	sem, err := tool.Recognize(run)
	require.NoError(t, err)
	assert.Equal(t, toolrecognizer.Preprocess, sem.Kind)
}

func TestEnvironmentIncludes(t *testing.T) {
	tool := defaultTool()
	run := toolrecognizer.Run{
		Executable: `C:\cc.exe`,
		Args:       []string{"cc", "-c", "source.c"},
		Env: map[string]string{
			"CPATH":          "/u/p1;/u/p2",
			"C_INCLUDE_PATH": ";/u/p3",
		},
	}
	sem, err := tool.Recognize(run)
	require.NoError(t, err)
	assert.Equal(t, []string{"-c", "-I", "/u/p1", "-I", "/u/p2", "-I", ".", "-I", "/u/p3"}, sem.Flags)
}

func TestCcacheWrapper(t *testing.T) {
	bin := t.TempDir()
	ccPath := filepath.Join(bin, "cc.exe")
	require.NoError(t, os.WriteFile(ccPath, []byte("stub"), 0o755))

	tool := defaultTool()
	run := toolrecognizer.Run{
		Executable: `C:\bin\ccache.exe`,
		Args:       []string{"ccache", "cc", "-c", "source.c"},
		Directory:  `C:\proj`,
		Env:        map[string]string{"PATH": bin},
	}
	sem, err := tool.Recognize(run)
	require.NoError(t, err)
	assert.Equal(t, toolrecognizer.Compile, sem.Kind)
	assert.Equal(t, ccPath, sem.Compiler)
	assert.Equal(t, []string{"source.c"}, sem.Sources)
	assert.False(t, sem.HasOutput)
}

func TestCcacheQuery(t *testing.T) {
	tool := defaultTool()
	run := toolrecognizer.Run{
		Executable: `C:\bin\ccache.exe`,
		Args:       []string{"ccache", "--version"},
	}
	sem, err := tool.Recognize(run)
	require.NoError(t, err)
	assert.Equal(t, toolrecognizer.QueryCompiler, sem.Kind)
}

func TestExcluded(t *testing.T) {
	tool := defaultTool()
	tool.Excluded = map[string]bool{`C:\cc.exe`: true}
	_, err := tool.Recognize(toolrecognizer.Run{Executable: `C:\cc.exe`, Args: []string{"cc", "-c", "a.c"}})
	assert.ErrorIs(t, err, toolrecognizer.ErrExcluded)
}

func TestUnrecognized(t *testing.T) {
	tool := defaultTool()
	_, err := tool.Recognize(toolrecognizer.Run{Executable: `C:\make.exe`, Args: []string{"make", "-j8"}})
	assert.ErrorIs(t, err, toolrecognizer.ErrUnrecognized)
}

func TestUserExtendingWrapper(t *testing.T) {
	tool := toolrecognizer.ToolAny{
		Matchers: []toolrecognizer.Matcher{
			toolrecognizer.UserExtendingWrapper{Path: `C:\custom\mycc.exe`, ExtraArgs: []string{"-DCUSTOM=1"}},
		},
	}
	sem, err := tool.Recognize(toolrecognizer.Run{
		Executable: `C:\custom\mycc.exe`,
		Args:       []string{"mycc", "-c", "source.c"},
	})
	require.NoError(t, err)
	assert.Contains(t, sem.Flags, "-DCUSTOM=1")
}
