// Package config defines winbear's runtime configuration: the
// CLI-flag-derived settings from spec.md §6, and the structural
// allow/deny lists (content filter paths, compiler exclude list,
// user-defined compiler wrappers) that are naturally file-based,
// loaded from an optional YAML file the way the teacher's pkg/config
// layers datadog.yaml over flag defaults.
package config

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Wrapper is a user-declared compiler wrapper: an absolute executable
// path plus extra flags appended to every compile recognized through it.
// Grounded on original_source/citnames/src/semantic/tool/tool_extending_wrapper.rs.
type Wrapper struct {
	Path      string   `yaml:"path"`
	ExtraArgs []string `yaml:"extra_args"`
}

// FileConfig holds the settings naturally expressed as a config file
// rather than a one-shot CLI flag.
type FileConfig struct {
	// Exclude lists executables that must never be recognized as
	// compilers (spec.md §4.7's exclude list).
	Exclude []string `yaml:"exclude"`

	// Wrappers lists user-defined compiler wrappers.
	Wrappers []Wrapper `yaml:"wrappers"`

	// ContentFilterInclude/Exclude are path prefixes the content filter
	// (C8) applies to synthesized entries.
	ContentFilterInclude []string `yaml:"content_filter_include"`
	ContentFilterExclude []string `yaml:"content_filter_exclude"`
}

// Load reads a FileConfig from r. An empty input yields a zero-value
// FileConfig (all lists empty), matching "no config file given".
func Load(r io.Reader) (FileConfig, error) {
	var fc FileConfig
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&fc); err != nil {
		if err == io.EOF {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("config: parsing YAML: %w", err)
	}
	return fc, nil
}

// LoadFile reads a FileConfig from path on fs. A missing path is not an
// error: it yields a zero-value FileConfig, so --config is optional.
func LoadFile(fs afero.Fs, path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, nil
	}

	f, err := fs.Open(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("config: opening %s: %w", path, err)
	}
	defer f.Close()

	return Load(f)
}

// Timeout wraps the optional debug-event wait timeout from spec.md §6's
// `-t none|sec|ms|ns` flag.
type Timeout struct {
	Duration time.Duration
	Set      bool
}

// Options is the CLI-flag-derived configuration for a single `winbear
// run` invocation.
type Options struct {
	OutputPath         string
	Append             bool
	Timeout            Timeout
	Verbosity          int
	Quiet              bool
	ConfigPath         string
	CommandAsArray     bool
	DropOutputField    bool
	Command            []string
}

// DefaultOutputPath is the -o flag's default, per spec.md §6.
const DefaultOutputPath = "compile_commands.json"

// NewOptions returns Options with spec.md §6's defaults.
func NewOptions() Options {
	return Options{
		OutputPath:     DefaultOutputPath,
		CommandAsArray: true,
	}
}
