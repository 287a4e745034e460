//go:build !windows

package quoting

// SplitWithOS falls back to the pure-Go decoder on non-Windows hosts,
// where no CommandLineToArgvW is available. It implements the identical
// grammar, so it is exercised by the package's tests on any platform.
func SplitWithOS(cmdline string) ([]string, error) {
	return Split(cmdline), nil
}
