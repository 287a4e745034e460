// Package debugger implements the three tightly-coupled Windows-only
// components of the observation engine: the Remote Process Inspector
// (C1), the Process Launcher (C2), and the Debug Event Loop (C3). The
// real implementation lives in the _windows.go files; non-Windows
// builds get a stub returning ErrUnsupported everywhere, so the module
// stays cross-compilable and pkg/argparser/pkg/toolrecognizer/pkg/compiledb
// remain testable on any host.
package debugger

import (
	"errors"
	"time"
)

// ErrUnsupported is returned by every debugger operation on a non-Windows
// host: the observation primitive this package wraps is Win32-specific,
// per spec.md §1's Non-goals.
var ErrUnsupported = errors.New("debugger: only supported on windows")

// RemoteAddress is a pointer value in a *target* process's address
// space. It is kept distinct from local Go pointers so that a read
// helper can never be handed the wrong kind of address by accident —
// spec.md §9's design note on cross-process reads.
type RemoteAddress uint64

// EnvEntry is one NAME=VALUE pair from a process's environment block,
// in the order the block stored it.
type EnvEntry struct {
	Name  string
	Value string
}

// Snapshot is everything C1 extracts from a target process at the
// moment it is opened.
type Snapshot struct {
	ImagePath        string
	CommandLine      string
	Arguments        []string
	CurrentDirectory string
	Environment      []EnvEntry
	ParentPID        uint32
}

// ExitStatus is the result of C1's exit-code read on process-exit.
type ExitStatus struct {
	Code uint32
}

// HandlerResponse is the verdict an event handler returns to the
// Debug Event Loop (C3), per spec.md §4.3.
type HandlerResponse int

const (
	// ContinueHandled acknowledges the event as handled and continues.
	ContinueHandled HandlerResponse = iota
	// ContinueNotHandled acknowledges the event as not handled and
	// continues (the debuggee's default exception handling applies).
	ContinueNotHandled
	// ExitDetachHandled acknowledges once, detaches from every
	// still-attached process, then returns.
	ExitDetachHandled
	// ExitDetachNotHandled is the not-handled counterpart.
	ExitDetachNotHandled
	// Exit returns immediately without acknowledging the event. Used
	// only for forced shutdown.
	Exit
)

// EventKind tags the nine canonical Win32 debug event kinds.
type EventKind int

const (
	EventException EventKind = iota
	EventCreateThread
	EventCreateProcess
	EventExitThread
	EventExitProcess
	EventLoadDLL
	EventUnloadDLL
	EventOutputDebugString
	EventRIP
)

// Event is a decoded debug event. Only the fields relevant to Kind are
// populated.
type Event struct {
	Kind EventKind
	PID  uint32
	TID  uint32

	// EventCreateProcess
	ProcessHandle uintptr
	ThreadHandle  uintptr
	ImageFileHandle uintptr

	// EventExitProcess / EventExitThread
	ExitCode uint32

	// EventLoadDLL
	DLLFileHandle uintptr
}

// Handler is the C3 callback contract.
type Handler func(ev Event) HandlerResponse

// WaitTimeout bundles the optional timeout parameter threaded verbatim
// into the kernel wait, per spec.md §4.3 and §5.
type WaitTimeout struct {
	Duration time.Duration
	Set      bool
}

// Infinite is the zero-value WaitTimeout: no timeout, block forever.
var Infinite = WaitTimeout{}
