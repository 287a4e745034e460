//go:build windows

package debugger

import (
	"fmt"

	"golang.org/x/sys/windows"

	"github.com/mbikovitsky/winbear/pkg/quoting"
)

// Process owns the handles of a launched root process.
type Process struct {
	ProcessHandle windows.Handle
	PID           uint32
}

// Launch spawns cmdline (or, if cmdline is empty, a quoted join of
// args) with DEBUG_PROCESS set so the caller becomes the debugger of
// the whole descendant tree (spec.md §4.2). The returned thread handle
// is closed immediately, as the contract requires.
func Launch(cmdline string, args []string, dir string) (*Process, error) {
	if cmdline == "" {
		cmdline = quoting.Join(args)
	}

	cmdlinePtr, err := windows.UTF16PtrFromString(cmdline)
	if err != nil {
		return nil, fmt.Errorf("debugger: encoding command line: %w", err)
	}

	var dirPtr *uint16
	if dir != "" {
		dirPtr, err = windows.UTF16PtrFromString(dir)
		if err != nil {
			return nil, fmt.Errorf("debugger: encoding working directory: %w", err)
		}
	}

	si := &windows.StartupInfo{}
	pi := &windows.ProcessInformation{}

	const creationFlags = debugProcess

	err = windows.CreateProcess(
		nil,
		cmdlinePtr,
		nil,
		nil,
		false,
		creationFlags,
		nil,
		dirPtr,
		si,
		pi,
	)
	if err != nil {
		return nil, &OSError{Op: "CreateProcess", Err: err}
	}

	// The thread handle must be closed immediately; only the process
	// handle is retained.
	_ = windows.CloseHandle(pi.Thread)

	return &Process{ProcessHandle: pi.Process, PID: pi.ProcessId}, nil
}

// Close releases the launched process's handle.
func (p *Process) Close() error {
	if p.ProcessHandle == 0 {
		return nil
	}
	err := windows.CloseHandle(p.ProcessHandle)
	p.ProcessHandle = 0
	return err
}
