// Package execlogger implements C4, the Execution Logger: it drives
// the Debug Event Loop (pkg/debugger), snapshots every process that
// enters the observed tree via the Remote Process Inspector, and
// assembles an ordered log of process executions and their start/stop
// events, grounded on original_source/src/execution_logger.rs.
package execlogger

import (
	"time"

	"github.com/mbikovitsky/winbear/pkg/toolrecognizer"
)

// ExecutionID is a dense, monotonically assigned identifier, matching
// the original's BTreeMap<u64, Execution> insertion order.
type ExecutionID uint64

// EventKind tags a lifecycle event of a tracked process.
type EventKind int

const (
	EventStart EventKind = iota
	EventStop
)

// LifecycleEvent is one Start or Stop event in a process's run.
type LifecycleEvent struct {
	At     time.Time
	Kind   EventKind
	Status uint32 // only meaningful when Kind == EventStop
}

// Command is the static part of a process observation: the image, its
// argv, environment, and working directory at the moment it was first
// observed.
type Command struct {
	Program     string
	Arguments   []string
	Environment map[string]string
	WorkingDir  string
}

// Run is the dynamic part: the process and parent ids, and the ordered
// lifecycle events recorded for it.
type Run struct {
	Events []LifecycleEvent
	PID    uint32
	PPID   uint32
}

// ProcessObservation is everything the logger knows about one tracked
// process execution.
type ProcessObservation struct {
	ID      ExecutionID
	Command Command
	Run     Run
}

// ToRun projects a ProcessObservation into the sanitized input the
// tool recognizer (C7) consumes.
func (o ProcessObservation) ToRun() toolrecognizer.Run {
	return toolrecognizer.Run{
		Executable: o.Command.Program,
		Args:       o.Command.Arguments,
		Directory:  o.Command.WorkingDir,
		Env:        o.Command.Environment,
		PID:        o.Run.PID,
		PPID:       o.Run.PPID,
	}
}

// ExitStatus returns the process's terminal exit code and whether the
// process has actually stopped yet.
func (o ProcessObservation) ExitStatus() (status uint32, stopped bool) {
	for _, ev := range o.Run.Events {
		if ev.Kind == EventStop {
			return ev.Status, true
		}
	}
	return 0, false
}
