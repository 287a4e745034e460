package compiledb_test

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbikovitsky/winbear/pkg/compiledb"
	"github.com/mbikovitsky/winbear/pkg/toolrecognizer"
)

func TestSynthesizeSimpleCompile(t *testing.T) {
	sem := toolrecognizer.Semantic{
		Kind:       toolrecognizer.Compile,
		WorkingDir: `C:\proj`,
		Compiler:   "cc",
		Flags:      []string{"-c"},
		Sources:    []string{"source.c"},
		Output:     "source.o",
		HasOutput:  true,
	}
	entries, err := compiledb.Synthesize(sem)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, `C:\proj\source.c`, e.File)
	assert.Equal(t, `C:\proj`, e.Directory)
	assert.Equal(t, `C:\proj\source.o`, e.Output)
	assert.Equal(t, []string{"cc", "-c", "-o", "source.o", "source.c"}, e.Arguments)
}

func TestSynthesizeMultipleSources(t *testing.T) {
	sem := toolrecognizer.Semantic{
		Kind:       toolrecognizer.Compile,
		WorkingDir: `C:\proj`,
		Compiler:   "cc",
		Sources:    []string{"a.c", "b.c"},
	}
	entries, err := compiledb.Synthesize(sem)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, `C:\proj\a.c`, entries[0].File)
	assert.Equal(t, `C:\proj\b.c`, entries[1].File)
}

func TestSynthesizeRejectsNonCompile(t *testing.T) {
	_, err := compiledb.Synthesize(toolrecognizer.Semantic{Kind: toolrecognizer.QueryCompiler})
	assert.Error(t, err)
}

func TestContentFilterExistence(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, `/proj/source.c`, []byte(""), 0o644))

	filter := compiledb.ContentFilter{FS: fs}
	assert.True(t, filter.Keep(compiledb.Entry{File: `/proj/source.c`}))
	assert.False(t, filter.Keep(compiledb.Entry{File: `/proj/missing.c`}))
}

func TestContentFilterIncludeExclude(t *testing.T) {
	filter := compiledb.ContentFilter{
		Include: []string{`/proj/src`},
		Exclude: []string{`/proj/src/vendor`},
	}
	assert.True(t, filter.Keep(compiledb.Entry{File: `/proj/src/main.c`}))
	assert.False(t, filter.Keep(compiledb.Entry{File: `/proj/other/main.c`}))
	assert.False(t, filter.Keep(compiledb.Entry{File: `/proj/src/vendor/lib.c`}))
}

func TestDeduplicateKeepsFirst(t *testing.T) {
	e1 := compiledb.Entry{File: "a.c", Arguments: []string{"cc", "-c", "a.c"}}
	e2 := compiledb.Entry{File: "a.c", Arguments: []string{"cc1", "-c", "a.c"}}
	out := compiledb.Deduplicate([]compiledb.Entry{e1, e2})
	require.Len(t, out, 1)
	assert.Equal(t, "cc", out[0].Arguments[0])
}

func TestDeduplicateIdempotent(t *testing.T) {
	entries := []compiledb.Entry{
		{File: "a.c", Arguments: []string{"cc", "-c", "a.c"}},
		{File: "b.c", Arguments: []string{"cc", "-c", "b.c"}},
	}
	once := compiledb.Deduplicate(entries)
	twice := compiledb.Deduplicate(append(append([]compiledb.Entry{}, entries...), entries...))
	assert.Equal(t, once, twice)
}

func TestSerializeDeserializeRoundTripArguments(t *testing.T) {
	entries := []compiledb.Entry{
		{File: `C:\a.c`, Directory: `C:\`, Output: `C:\a.o`, HasOutput: true, Arguments: []string{"cc", "-c", "-o", "a.o", "a.c"}},
	}
	var buf bytes.Buffer
	require.NoError(t, compiledb.Serialize(&buf, entries, compiledb.DefaultFormat))

	got, err := compiledb.Deserialize(&buf)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestSerializeDeserializeRoundTripCommand(t *testing.T) {
	entries := []compiledb.Entry{
		{File: `C:\a.c`, Directory: `C:\`, Arguments: []string{"cc", "-c", "hello world.c"}},
	}
	format := compiledb.Format{CommandAsArray: false}
	var buf bytes.Buffer
	require.NoError(t, compiledb.Serialize(&buf, entries, format))

	got, err := compiledb.Deserialize(&buf)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestSerializeDropOutputField(t *testing.T) {
	entries := []compiledb.Entry{
		{File: `C:\a.c`, Directory: `C:\`, Output: `C:\a.o`, HasOutput: true, Arguments: []string{"cc", "a.c"}},
	}
	format := compiledb.Format{CommandAsArray: true, DropOutputField: true}
	var buf bytes.Buffer
	require.NoError(t, compiledb.Serialize(&buf, entries, format))
	assert.NotContains(t, buf.String(), "output")
}

func TestDeserializeRejectsEmptyFile(t *testing.T) {
	_, err := compiledb.Deserialize(bytes.NewBufferString(`[{"file":"","directory":"C:\\","arguments":["cc"]}]`))
	assert.ErrorIs(t, err, compiledb.ErrInvalidEntry)
}

func TestDeserializeRejectsEmptyArguments(t *testing.T) {
	_, err := compiledb.Deserialize(bytes.NewBufferString(`[{"file":"a.c","directory":"C:\\","arguments":[]}]`))
	assert.ErrorIs(t, err, compiledb.ErrInvalidEntry)
}

func TestMerge(t *testing.T) {
	prior := []compiledb.Entry{{File: "a.c", Arguments: []string{"cc", "-c", "a.c"}}}
	fresh := []compiledb.Entry{
		{File: "a.c", Arguments: []string{"cc2", "-c", "a.c"}},
		{File: "b.c", Arguments: []string{"cc", "-c", "b.c"}},
	}
	merged := compiledb.Merge(prior, fresh)
	require.Len(t, merged, 2)
	assert.Equal(t, "cc", merged[0].Arguments[0])
}
