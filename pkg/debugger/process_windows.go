//go:build windows

package debugger

import (
	"encoding/binary"
	"fmt"
	"time"
	"unicode/utf16"
	"unsafe"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/multierr"
	"golang.org/x/sys/windows"
	"golang.org/x/text/encoding/unicode"

	"github.com/mbikovitsky/winbear/pkg/quoting"
)

// utf16LEDecoder decodes the little-endian UTF-16 byte spans read out
// of a target process's PEB, command line, and environment block; the
// decoder (rather than unicode/utf16 directly) matches how the rest of
// the pack handles wire-format UTF-16 text.
var utf16LEDecoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()

var (
	modntdll   = windows.NewLazySystemDLL("ntdll.dll")
	modkernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procNtQueryInformationProcess = modntdll.NewProc("NtQueryInformationProcess")
	procReadProcessMemory         = modkernel32.NewProc("ReadProcessMemory")
)

// OSError wraps a failed Windows API call with its NTSTATUS/Win32 error
// code, per spec.md §4.1's error model.
type OSError struct {
	Op  string
	Err error
}

func (e *OSError) Error() string { return fmt.Sprintf("debugger: %s: %v", e.Op, e.Err) }
func (e *OSError) Unwrap() error { return e.Err }

// processBasicInformation64 mirrors PROCESS_BASIC_INFORMATION, always
// read in its 64-bit layout: the tool builds as a 64-bit process, and
// WoW64 exposes a 64-bit PEB to a 64-bit debugger for every target
// regardless of the target's own bitness (spec.md §4.1 step 1).
type processBasicInformation64 struct {
	ExitStatus                   uint32
	_                             uint32 // alignment padding
	PebBaseAddress                uint64
	AffinityMask                  uint64
	BasePriority                  uint32
	_                             uint32
	UniqueProcessID                uint64
	InheritedFromUniqueProcessID   uint64
}

// pebProcessParametersOffset locates the only 64-bit PEB field this
// package reads: the ProcessParameters pointer, at a fixed offset from the PEB base
// (0x20 on all Windows Vista-and-later 64-bit layouts — spec.md §4.1's
// precondition).
const pebProcessParametersOffset = 0x20

// unicodeString64 mirrors UNICODE_STRING in the 64-bit layout: a
// 16-bit length, a 16-bit max length, 4 bytes of padding, and a 64-bit
// buffer pointer.
type unicodeString64 struct {
	Length        uint16
	MaximumLength uint16
	_             uint32
	Buffer        uint64
}

// Field offsets within RTL_USER_PROCESS_PARAMETERS (64-bit layout),
// read per spec.md §4.1 step 3.
const (
	offsetCurrentDirectoryDosPath = 0x38
	offsetCommandLine             = 0x70
	offsetEnvironment             = 0x80
	offsetEnvironmentSize         = 0x3F0
)

// Handle owns a process handle opened for VM-read + query-information
// access, guaranteeing release on every exit path.
type Handle struct {
	h   windows.Handle
	pid uint32
}

// Open opens pid for VM-read and query-information access, per C1's
// contract. A transient "process not found yet" race (spec.md §4.4)
// is retried with a short bounded backoff before surfacing
// windows.ERROR_INVALID_PARAMETER / access-denied as a typed error.
func Open(pid uint32) (*Handle, error) {
	const access = windows.PROCESS_VM_READ | windows.PROCESS_QUERY_INFORMATION

	var h windows.Handle
	open := func() error {
		var err error
		h, err = windows.OpenProcess(access, false, pid)
		return err
	}

	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(5*time.Millisecond), 3)
	if err := backoff.Retry(open, policy); err != nil {
		return nil, &OSError{Op: fmt.Sprintf("OpenProcess(%d)", pid), Err: err}
	}

	return &Handle{h: h, pid: pid}, nil
}

// Close releases the process handle.
func (p *Handle) Close() error {
	if p.h == 0 {
		return nil
	}
	err := windows.CloseHandle(p.h)
	p.h = 0
	if err != nil {
		return &OSError{Op: "CloseHandle", Err: err}
	}
	return nil
}

// basicInfo queries PROCESS_BASIC_INFORMATION and returns the PEB base
// address, per spec.md §4.1 step 1.
func (p *Handle) basicInfo() (RemoteAddress, error) {
	var info processBasicInformation64
	var returnLength uint32

	const processBasicInformationClass = 0
	r1, _, _ := procNtQueryInformationProcess.Call(
		uintptr(p.h),
		uintptr(processBasicInformationClass),
		uintptr(unsafe.Pointer(&info)),
		unsafe.Sizeof(info),
		uintptr(unsafe.Pointer(&returnLength)),
	)
	if r1 != 0 {
		return 0, &OSError{Op: "NtQueryInformationProcess", Err: windows.NTStatus(r1)}
	}

	return RemoteAddress(info.PebBaseAddress), nil
}

// readRemote reads exactly len(buf) bytes from the target's address
// space at addr. Unaligned reads are explicitly permitted (spec.md
// §4.1 step 2 / §9's design note).
func (p *Handle) readRemote(addr RemoteAddress, buf []byte) error {
	var bytesRead uintptr
	r1, _, e1 := procReadProcessMemory.Call(
		uintptr(p.h),
		uintptr(addr),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(len(buf)),
		uintptr(unsafe.Pointer(&bytesRead)),
	)
	if r1 == 0 {
		return &OSError{Op: fmt.Sprintf("ReadProcessMemory(0x%x, %d)", addr, len(buf)), Err: e1}
	}
	if int(bytesRead) != len(buf) {
		return &OSError{Op: "ReadProcessMemory", Err: fmt.Errorf("short read: got %d of %d bytes", bytesRead, len(buf))}
	}
	return nil
}

func (p *Handle) readUint64(addr RemoteAddress) (uint64, error) {
	var buf [8]byte
	if err := p.readRemote(addr, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// readUnicodeString reads a counted UTF-16 string descriptor located at
// addr (a UNICODE_STRING64) and decodes its buffer contents.
func (p *Handle) readUnicodeString(addr RemoteAddress) (string, error) {
	var raw [16]byte
	if err := p.readRemote(addr, raw[:]); err != nil {
		return "", err
	}

	var us unicodeString64
	us.Length = binary.LittleEndian.Uint16(raw[0:2])
	us.MaximumLength = binary.LittleEndian.Uint16(raw[2:4])
	us.Buffer = binary.LittleEndian.Uint64(raw[8:16])

	if us.Length == 0 {
		return "", nil
	}

	buf := make([]byte, us.Length)
	if err := p.readRemote(RemoteAddress(us.Buffer), buf); err != nil {
		return "", err
	}

	return decodeUTF16(buf), nil
}

func decodeUTF16(b []byte) string {
	out, err := utf16LEDecoder.Bytes(b)
	if err != nil {
		// Malformed UTF-16 in a remote process's own PEB strings isn't
		// expected; fall back to the stdlib decoder rather than fail
		// the whole snapshot over a presentation detail.
		u16 := make([]uint16, len(b)/2)
		for i := range u16 {
			u16[i] = binary.LittleEndian.Uint16(b[2*i : 2*i+2])
		}
		return string(utf16.Decode(u16))
	}
	return string(out)
}

// Snapshot reads image name, command line, current directory and
// environment block from the target, per spec.md §4.1 steps 1-5.
func (p *Handle) Snapshot() (Snapshot, error) {
	pebAddr, err := p.basicInfo()
	if err != nil {
		return Snapshot{}, err
	}

	paramsPtr, err := p.readUint64(pebAddr + pebProcessParametersOffset)
	if err != nil {
		return Snapshot{}, fmt.Errorf("debugger: reading ProcessParameters pointer: %w", err)
	}
	params := RemoteAddress(paramsPtr)

	cmdLine, err := p.readUnicodeString(params + offsetCommandLine)
	if err != nil {
		return Snapshot{}, fmt.Errorf("debugger: reading command line: %w", err)
	}

	cwd, err := p.readUnicodeString(params + offsetCurrentDirectoryDosPath)
	if err != nil {
		return Snapshot{}, fmt.Errorf("debugger: reading current directory: %w", err)
	}

	envPtr, err := p.readUint64(params + offsetEnvironment)
	if err != nil {
		return Snapshot{}, fmt.Errorf("debugger: reading Environment pointer: %w", err)
	}
	envSize, err := p.readUint64(params + offsetEnvironmentSize)
	if err != nil {
		return Snapshot{}, fmt.Errorf("debugger: reading EnvironmentSize: %w", err)
	}

	var env []EnvEntry
	if envSize > 0 {
		envBuf := make([]byte, envSize)
		if err := p.readRemote(RemoteAddress(envPtr), envBuf); err != nil {
			return Snapshot{}, fmt.Errorf("debugger: reading environment block: %w", err)
		}
		env = decodeEnvironmentBlock(envBuf)
	}

	imageName, err := p.imageName()
	if err != nil {
		return Snapshot{}, err
	}

	ppid, err := p.parentPID()
	if err != nil {
		return Snapshot{}, err
	}

	argv, err := quoting.SplitWithOS(cmdLine)
	if err != nil {
		return Snapshot{}, fmt.Errorf("debugger: splitting command line: %w", err)
	}

	return Snapshot{
		ImagePath:        imageName,
		CommandLine:      cmdLine,
		Arguments:        argv,
		CurrentDirectory: cwd,
		Environment:      env,
		ParentPID:        ppid,
	}, nil
}

// decodeEnvironmentBlock interprets a raw environment block as a
// sequence of NUL-terminated UTF-16 "NAME=VALUE" entries, terminated by
// an empty entry (spec.md §4.1 step 5).
func decodeEnvironmentBlock(buf []byte) []EnvEntry {
	u16 := make([]uint16, len(buf)/2)
	for i := range u16 {
		u16[i] = binary.LittleEndian.Uint16(buf[2*i : 2*i+2])
	}

	var entries []EnvEntry
	start := 0
	for i := 0; i <= len(u16); i++ {
		if i == len(u16) || u16[i] == 0 {
			if i == start {
				break // empty entry: terminator
			}
			raw := decodeUTF16(buf[2*start : 2*i])
			if name, value, ok := splitNameValue(raw); ok {
				entries = append(entries, EnvEntry{Name: name, Value: value})
			}
			start = i + 1
		}
	}
	return entries
}

func splitNameValue(s string) (name, value string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '=' {
			if i == 0 {
				// Windows reserves entries like "=C:=C:\foo" for
				// per-drive working directories; keep the full key.
				continue
			}
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}

// imageName resolves the target's full image path via
// QueryFullProcessImageName, growing the buffer until it fits
// (spec.md §4.1 "Image name").
func (p *Handle) imageName() (string, error) {
	size := uint32(260)
	for {
		buf := make([]uint16, size)
		n := size
		err := windows.QueryFullProcessImageName(p.h, 0, &buf[0], &n)
		if err == nil {
			return windows.UTF16ToString(buf[:n]), nil
		}
		if err != windows.ERROR_INSUFFICIENT_BUFFER {
			return "", &OSError{Op: "QueryFullProcessImageName", Err: err}
		}
		size *= 2
	}
}

// parentPID is read from PROCESS_BASIC_INFORMATION's
// InheritedFromUniqueProcessID field.
func (p *Handle) parentPID() (uint32, error) {
	var info processBasicInformation64
	var returnLength uint32
	const processBasicInformationClass = 0
	r1, _, _ := procNtQueryInformationProcess.Call(
		uintptr(p.h),
		uintptr(processBasicInformationClass),
		uintptr(unsafe.Pointer(&info)),
		unsafe.Sizeof(info),
		uintptr(unsafe.Pointer(&returnLength)),
	)
	if r1 != 0 {
		return 0, &OSError{Op: "NtQueryInformationProcess", Err: windows.NTStatus(r1)}
	}
	return uint32(info.InheritedFromUniqueProcessID), nil
}

// ExitCode reads the target's exit code. Only meaningful after the
// process has actually exited.
func (p *Handle) ExitCode() (uint32, error) {
	var code uint32
	if err := windows.GetExitCodeProcess(p.h, &code); err != nil {
		return 0, &OSError{Op: "GetExitCodeProcess", Err: err}
	}
	return code, nil
}

// CloseAll releases every handle, aggregating any errors.
func CloseAll(handles ...*Handle) error {
	var errs error
	for _, h := range handles {
		if h == nil {
			continue
		}
		errs = multierr.Append(errs, h.Close())
	}
	return errs
}
