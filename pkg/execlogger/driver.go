package execlogger

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mbikovitsky/winbear/pkg/debugger"
)

func timeNow() time.Time { return time.Now() }

// Logger drives a debugger.Loop and accumulates ProcessObservations.
// Construct one with New; the zero value has no maps or clock.
type Logger struct {
	log *zap.Logger

	extant      map[uint32]ExecutionID // pid -> execution id, live processes only
	executions  map[ExecutionID]*ProcessObservation
	order       []ExecutionID
	nextID      ExecutionID
	clock       func() time.Time
}

// New returns a Logger that reports failures to log, or to a no-op
// logger if log is nil.
func New(log *zap.Logger) *Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logger{
		log:        log,
		extant:     make(map[uint32]ExecutionID),
		executions: make(map[ExecutionID]*ProcessObservation),
		clock:      timeNow,
	}
}

// Run launches cmdline/args in dir and drives the debug event loop,
// bounded by timeout, until every tracked descendant has exited, per
// spec.md §4.2/§4.3.
func (l *Logger) Run(cmdline string, args []string, dir string, timeout debugger.WaitTimeout) error {
	proc, err := debugger.Launch(cmdline, args, dir)
	if err != nil {
		return fmt.Errorf("execlogger: launching root process: %w", err)
	}
	defer proc.Close()

	loop := debugger.NewLoop()
	return loop.Run(l.handle, timeout)
}

// Executions returns every tracked observation in assignment order,
// mirroring the original's BTreeMap<u64, Execution> iteration order.
func (l *Logger) Executions() []ProcessObservation {
	out := make([]ProcessObservation, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.executions[id])
	}
	return out
}

func (l *Logger) handle(ev debugger.Event) debugger.HandlerResponse {
	switch ev.Kind {
	case debugger.EventCreateProcess:
		if err := l.addExecution(ev.PID); err != nil {
			l.log.Warn("failed to snapshot new process; continuing without it",
				zap.Uint32("pid", ev.PID), zap.Error(err))
		}
		return debugger.ContinueNotHandled

	case debugger.EventExitProcess:
		l.finishExecution(ev.PID, ev.ExitCode)
		if len(l.extant) == 0 {
			return debugger.ExitDetachNotHandled
		}
		return debugger.ContinueNotHandled

	default:
		return debugger.ContinueNotHandled
	}
}

func (l *Logger) addExecution(pid uint32) error {
	h, err := debugger.Open(pid)
	if err != nil {
		return fmt.Errorf("opening process %d: %w", pid, err)
	}
	defer h.Close()

	snap, err := h.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshotting process %d: %w", pid, err)
	}

	id := l.nextID
	l.nextID++

	env := make(map[string]string, len(snap.Environment))
	for _, e := range snap.Environment {
		env[e.Name] = e.Value
	}

	obs := &ProcessObservation{
		ID: id,
		Command: Command{
			Program:     snap.ImagePath,
			Arguments:   snap.Arguments,
			Environment: env,
			WorkingDir:  snap.CurrentDirectory,
		},
		Run: Run{
			Events: []LifecycleEvent{{At: l.clock(), Kind: EventStart}},
			PID:    pid,
			PPID:   snap.ParentPID,
		},
	}

	if _, exists := l.executions[id]; exists {
		panic(fmt.Sprintf("execlogger: duplicate execution id %d", id))
	}
	l.executions[id] = obs
	l.order = append(l.order, id)

	if _, exists := l.extant[pid]; exists {
		panic(fmt.Sprintf("execlogger: duplicate live pid %d", pid))
	}
	l.extant[pid] = id

	return nil
}

func (l *Logger) finishExecution(pid uint32, exitCode uint32) {
	id, ok := l.extant[pid]
	if !ok {
		// Snapshot failed at create-time: nothing to finish.
		return
	}

	obs := l.executions[id]
	obs.Run.Events = append(obs.Run.Events, LifecycleEvent{
		At:     l.clock(),
		Kind:   EventStop,
		Status: exitCode,
	})

	delete(l.extant, pid)
}
