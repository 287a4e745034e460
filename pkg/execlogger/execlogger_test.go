package execlogger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mbikovitsky/winbear/pkg/execlogger"
)

func TestProcessObservationToRun(t *testing.T) {
	obs := execlogger.ProcessObservation{
		ID: 3,
		Command: execlogger.Command{
			Program:     `C:\tools\cc.exe`,
			Arguments:   []string{"cc", "-c", "a.c"},
			Environment: map[string]string{"PATH": `C:\bin`},
			WorkingDir:  `C:\src`,
		},
		Run: execlogger.Run{
			PID:  42,
			PPID: 7,
		},
	}

	run := obs.ToRun()
	assert.Equal(t, `C:\tools\cc.exe`, run.Executable)
	assert.Equal(t, []string{"cc", "-c", "a.c"}, run.Args)
	assert.Equal(t, `C:\src`, run.Directory)
	assert.Equal(t, uint32(42), run.PID)
	assert.Equal(t, uint32(7), run.PPID)
	assert.Equal(t, `C:\bin`, run.Env["PATH"])
}

func TestProcessObservationExitStatus(t *testing.T) {
	now := time.Now()

	running := execlogger.ProcessObservation{
		Run: execlogger.Run{
			Events: []execlogger.LifecycleEvent{
				{At: now, Kind: execlogger.EventStart},
			},
		},
	}
	_, stopped := running.ExitStatus()
	assert.False(t, stopped)

	finished := execlogger.ProcessObservation{
		Run: execlogger.Run{
			Events: []execlogger.LifecycleEvent{
				{At: now, Kind: execlogger.EventStart},
				{At: now.Add(time.Second), Kind: execlogger.EventStop, Status: 1},
			},
		},
	}
	status, stopped := finished.ExitStatus()
	assert.True(t, stopped)
	assert.Equal(t, uint32(1), status)
}
