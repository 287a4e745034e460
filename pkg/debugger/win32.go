//go:build windows

package debugger

// Constants and struct layouts for the Win32 debug-event API that
// golang.org/x/sys/windows does not itself wrap (WaitForDebugEvent,
// ContinueDebugEvent, DebugActiveProcessStop, and the CREATE_PROCESS
// flag that puts the caller in the debugger role for an entire
// descendant tree).

const (
	// debugProcess is the CreateProcess creation flag that makes the
	// caller the debugger of the new process and every process it
	// creates (spec.md §4.2).
	debugProcess = 0x00000001

	dbgContinue         = 0x00010002
	dbgExceptionNotHandled = 0x80010001

	createProcessDebugEvent  = 3
	createThreadDebugEvent   = 2
	exitProcessDebugEvent    = 5
	exitThreadDebugEvent     = 4
	loadDLLDebugEvent        = 6
	unloadDLLDebugEvent      = 7
	outputDebugStringEvent   = 8
	ripEvent                 = 9
	exceptionDebugEvent      = 1
)

// debugEventRaw mirrors DEBUG_EVENT: a tagged union discriminated by
// dwDebugEventCode, keyed to a process/thread id pair. The union payload
// is kept as raw bytes and decoded field by field in decodeEvent.
type debugEventRaw struct {
	DebugEventCode uint32
	ProcessID      uint32
	ThreadID       uint32
	_              uint32 // the union is 8-byte aligned in the 64-bit layout
	// Union is the size of its largest member, EXCEPTION_DEBUG_INFO
	// (160 bytes in the 64-bit layout); this tool only ever runs as a
	// 64-bit debugger, so the layout is fixed.
	Union [160]byte
}

// createProcessDebugInfo mirrors CREATE_PROCESS_DEBUG_INFO's prefix. Of
// its three handles, only FileHandle is released by this package when
// the event is dropped (closeEventHandles).
type createProcessDebugInfo struct {
	FileHandle       uintptr
	ProcessHandle    uintptr
	ThreadHandle     uintptr
	BaseOfImage      uint64
	DebugInfoFileOffset uint32
	DebugInfoSize    uint32
	// ... LPTHREAD_START_ROUTINE, image name fields follow but are
	// unused: image path is re-derived via QueryFullProcessImageName
	// for a canonical absolute path instead.
}

// exitProcessDebugInfo mirrors EXIT_PROCESS_DEBUG_INFO.
type exitProcessDebugInfo struct {
	ExitCode uint32
}

// loadDLLDebugInfo mirrors the file-handle prefix of LOAD_DLL_DEBUG_INFO.
type loadDLLDebugInfo struct {
	FileHandle uintptr
}
