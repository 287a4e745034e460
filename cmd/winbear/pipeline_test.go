package main

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mbikovitsky/winbear/pkg/compiledb"
	"github.com/mbikovitsky/winbear/pkg/config"
	"github.com/mbikovitsky/winbear/pkg/toolrecognizer"
)

func TestBuildToolAnyAndSynthesize(t *testing.T) {
	fc := config.FileConfig{
		Exclude: []string{`C:\banned.exe`},
		Wrappers: []config.Wrapper{
			{Path: `C:\custom\mycc.exe`, ExtraArgs: []string{"-DCUSTOM=1"}},
		},
	}
	tool := buildToolAny(fc)

	log := zap.NewNop().Sugar()

	runs := []toolrecognizer.Run{
		{Executable: `C:\cc.exe`, Args: []string{"-c", "a.c"}, Directory: `C:\proj`},
		{Executable: `C:\banned.exe`, Args: []string{"-c", "a.c"}},
		{Executable: `C:\make.exe`, Args: []string{"-j8"}},
		{Executable: `C:\custom\mycc.exe`, Args: []string{"-c", "b.c"}, Directory: `C:\proj`},
	}

	entries := recognizeAndSynthesize(runs, tool, log)
	require.Len(t, entries, 2)
	assert.Equal(t, `C:\proj\a.c`, entries[0].File)
	assert.Equal(t, `C:\proj\b.c`, entries[1].File)
	assert.Contains(t, entries[1].Arguments, "-DCUSTOM=1")
}

func TestApplyContentFilter(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, `/proj/a.c`, []byte(""), 0o644))

	fc := config.FileConfig{}
	entries := []compiledb.Entry{
		{File: `/proj/a.c`},
		{File: `/proj/missing.c`},
	}

	kept := applyContentFilter(fs, fc, entries)
	require.Len(t, kept, 1)
	assert.Equal(t, `/proj/a.c`, kept[0].File)
}

func TestReadPriorDatabaseMissingIsEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	entries, err := readPriorDatabase(fs, "/nonexistent.json")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
