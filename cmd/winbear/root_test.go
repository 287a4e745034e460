package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeout(t *testing.T) {
	tests := []struct {
		in       string
		wantSet  bool
		wantDur  time.Duration
		wantFail bool
	}{
		{in: "none", wantSet: false},
		{in: "", wantSet: false},
		{in: "5s", wantSet: true, wantDur: 5 * time.Second},
		{in: "250ms", wantSet: true, wantDur: 250 * time.Millisecond},
		{in: "10ns", wantSet: true, wantDur: 10 * time.Nanosecond},
		{in: "bogus", wantFail: true},
		{in: "5x", wantFail: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseTimeout(tt.in)
			if tt.wantFail {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSet, got.Set)
			if tt.wantSet {
				assert.Equal(t, tt.wantDur, got.Duration)
			}
		})
	}
}

func TestGlobalFlagsToOptions(t *testing.T) {
	f := &globalFlags{timeout: "1s", verbosity: 2, quiet: false, configPath: "cfg.yaml"}
	opts, err := f.toOptions("out.json", true, []string{"make", "-j4"})
	require.NoError(t, err)
	assert.Equal(t, "out.json", opts.OutputPath)
	assert.True(t, opts.Append)
	assert.True(t, opts.Timeout.Set)
	assert.Equal(t, time.Second, opts.Timeout.Duration)
	assert.Equal(t, 2, opts.Verbosity)
	assert.Equal(t, "cfg.yaml", opts.ConfigPath)
	assert.Equal(t, []string{"make", "-j4"}, opts.Command)
}
