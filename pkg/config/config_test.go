package config_test

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbikovitsky/winbear/pkg/config"
)

func TestLoadEmpty(t *testing.T) {
	fc, err := config.Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, fc.Exclude)
	assert.Empty(t, fc.Wrappers)
}

func TestLoadParsesWrappers(t *testing.T) {
	yaml := `
exclude:
  - C:\banned\cl.exe
wrappers:
  - path: C:\custom\mycc.exe
    extra_args: ["-DCUSTOM=1"]
content_filter_include:
  - C:\proj\src
`
	fc, err := config.Load(strings.NewReader(yaml))
	require.NoError(t, err)
	assert.Equal(t, []string{`C:\banned\cl.exe`}, fc.Exclude)
	require.Len(t, fc.Wrappers, 1)
	assert.Equal(t, `C:\custom\mycc.exe`, fc.Wrappers[0].Path)
	assert.Equal(t, []string{"-DCUSTOM=1"}, fc.Wrappers[0].ExtraArgs)
	assert.Equal(t, []string{`C:\proj\src`}, fc.ContentFilterInclude)
}

func TestLoadFileMissingPathIsNotError(t *testing.T) {
	fc, err := config.LoadFile(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	assert.Empty(t, fc.Exclude)
}

func TestLoadFileReadsFromFS(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "winbear.yaml", []byte("exclude: [cl.exe]\n"), 0o644))

	fc, err := config.LoadFile(fs, "winbear.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"cl.exe"}, fc.Exclude)
}

func TestNewOptionsDefaults(t *testing.T) {
	opts := config.NewOptions()
	assert.Equal(t, config.DefaultOutputPath, opts.OutputPath)
	assert.True(t, opts.CommandAsArray)
	assert.False(t, opts.Append)
}

func TestNewLogger(t *testing.T) {
	logger, err := config.NewLogger(0, false)
	require.NoError(t, err)
	require.NotNil(t, logger)
}
