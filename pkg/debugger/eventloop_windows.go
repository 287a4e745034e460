//go:build windows

package debugger

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	procWaitForDebugEvent      = modkernel32.NewProc("WaitForDebugEvent")
	procContinueDebugEvent     = modkernel32.NewProc("ContinueDebugEvent")
	procDebugActiveProcessStop = modkernel32.NewProc("DebugActiveProcessStop")
)

// Loop is the C3 event loop: single-threaded, cooperative, blocking on
// WaitForDebugEvent. It must run on the same OS thread throughout its
// lifetime (wait/continue must pair on one thread), so callers should
// invoke Run from inside runtime.LockOSThread.
type Loop struct {
	live map[uint32]bool
}

// NewLoop returns a Loop with no tracked processes; Run adds the root
// process's pid as soon as its CREATE_PROCESS_DEBUG_EVENT arrives.
func NewLoop() *Loop {
	return &Loop{live: make(map[uint32]bool)}
}

// Run blocks on WaitForDebugEvent, dispatching each decoded event to
// handler, until the live-process set empties, the handler asks to
// exit, or the wait itself fails (including on timeout).
func (l *Loop) Run(handler Handler, timeout WaitTimeout) error {
	for {
		var raw debugEventRaw
		ms := uint32(0xFFFFFFFF) // INFINITE
		if timeout.Set {
			ms = uint32(timeout.Duration.Milliseconds())
		}

		r1, _, e1 := procWaitForDebugEvent.Call(uintptr(unsafe.Pointer(&raw)), uintptr(ms))
		if r1 == 0 {
			return &OSError{Op: "WaitForDebugEvent", Err: e1}
		}

		ev := decodeEvent(raw)

		switch ev.Kind {
		case EventCreateProcess:
			if l.live[ev.PID] {
				panic(fmt.Sprintf("debugger: duplicate CREATE_PROCESS_DEBUG_EVENT for pid %d", ev.PID))
			}
			l.live[ev.PID] = true
		case EventExitProcess:
			if !l.live[ev.PID] {
				panic(fmt.Sprintf("debugger: EXIT_PROCESS_DEBUG_EVENT for untracked pid %d", ev.PID))
			}
			delete(l.live, ev.PID)
		}

		resp := handler(ev)

		closeEventHandles(ev)

		switch resp {
		case Exit:
			return nil

		case ContinueHandled, ContinueNotHandled:
			if err := l.continueEvent(ev, resp == ContinueHandled); err != nil {
				return err
			}
			if len(l.live) == 0 {
				return nil
			}

		case ExitDetachHandled, ExitDetachNotHandled:
			if err := l.continueEvent(ev, resp == ExitDetachHandled); err != nil {
				return err
			}
			return l.detachAll()
		}
	}
}

func (l *Loop) continueEvent(ev Event, handled bool) error {
	status := uint32(dbgContinue)
	if !handled {
		status = dbgExceptionNotHandled
	}
	r1, _, e1 := procContinueDebugEvent.Call(uintptr(ev.PID), uintptr(ev.TID), uintptr(status))
	if r1 == 0 {
		return &OSError{Op: "ContinueDebugEvent", Err: e1}
	}
	return nil
}

func (l *Loop) detachAll() error {
	var firstErr error
	for pid := range l.live {
		r1, _, e1 := procDebugActiveProcessStop.Call(uintptr(pid))
		if r1 == 0 && firstErr == nil {
			firstErr = &OSError{Op: fmt.Sprintf("DebugActiveProcessStop(%d)", pid), Err: e1}
		}
		delete(l.live, pid)
	}
	return firstErr
}

func decodeEvent(raw debugEventRaw) Event {
	ev := Event{PID: raw.ProcessID, TID: raw.ThreadID}

	switch raw.DebugEventCode {
	case createProcessDebugEvent:
		ev.Kind = EventCreateProcess
		var info createProcessDebugInfo
		info.FileHandle = uintptr(binary.LittleEndian.Uint64(raw.Union[0:8]))
		info.ProcessHandle = uintptr(binary.LittleEndian.Uint64(raw.Union[8:16]))
		info.ThreadHandle = uintptr(binary.LittleEndian.Uint64(raw.Union[16:24]))
		ev.ProcessHandle = info.ProcessHandle
		ev.ThreadHandle = info.ThreadHandle
		ev.ImageFileHandle = info.FileHandle
	case exitProcessDebugEvent:
		ev.Kind = EventExitProcess
		ev.ExitCode = binary.LittleEndian.Uint32(raw.Union[0:4])
	case createThreadDebugEvent:
		ev.Kind = EventCreateThread
	case exitThreadDebugEvent:
		ev.Kind = EventExitThread
		ev.ExitCode = binary.LittleEndian.Uint32(raw.Union[0:4])
	case loadDLLDebugEvent:
		ev.Kind = EventLoadDLL
		ev.DLLFileHandle = uintptr(binary.LittleEndian.Uint64(raw.Union[0:8]))
	case unloadDLLDebugEvent:
		ev.Kind = EventUnloadDLL
	case outputDebugStringEvent:
		ev.Kind = EventOutputDebugString
	case ripEvent:
		ev.Kind = EventRIP
	default:
		ev.Kind = EventException
	}

	return ev
}

// closeEventHandles releases the OS file handles embedded in a
// create-process or DLL-load event, per spec.md §3's ownership rule
// ("any file handle carried by a create-process or DLL-load event is
// owned by the event object and must be released when the event is
// dropped").
func closeEventHandles(ev Event) {
	if ev.Kind == EventCreateProcess {
		if ev.ImageFileHandle != 0 {
			_ = windows.CloseHandle(windows.Handle(ev.ImageFileHandle))
		}
	}
	if ev.Kind == EventLoadDLL && ev.DLLFileHandle != 0 {
		_ = windows.CloseHandle(windows.Handle(ev.DLLFileHandle))
	}
}
