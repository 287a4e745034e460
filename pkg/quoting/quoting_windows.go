//go:build windows

package quoting

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// SplitWithOS decodes a command line using the real CommandLineToArgvW
// primitive, guaranteeing byte-for-byte agreement with however the
// target process itself would have parsed its own command line.
func SplitWithOS(cmdline string) ([]string, error) {
	ptr, err := windows.UTF16PtrFromString(cmdline)
	if err != nil {
		return nil, fmt.Errorf("quoting: encoding command line: %w", err)
	}

	var argc int32
	argv, err := windows.CommandLineToArgv(ptr, &argc)
	if err != nil {
		return nil, fmt.Errorf("quoting: CommandLineToArgvW: %w", err)
	}
	defer windows.LocalFree(windows.Handle(uintptr(unsafe.Pointer(&argv[0])))) //nolint:errcheck

	out := make([]string, 0, argc)
	for _, u := range argv[:argc] {
		out = append(out, windows.UTF16PtrToString(u))
	}
	return out, nil
}
