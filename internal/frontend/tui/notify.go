package tui

import (
	"fmt"

	"github.com/dshills/dbgfront/internal/interp"
)

func (t *Interpreter) status(format string, args ...any) {
	t.appendLine(fmt.Sprintf(format, args...))
	t.draw()
}

// OnSignalReceived logs the signal in the command pane.
func (t *Interpreter) OnSignalReceived(sig interp.Signal) {
	t.status("Program received signal %s, %s.", sig.Name(), sig.Description())
}

// OnSignalExited logs the terminating signal.
func (t *Interpreter) OnSignalExited(sig interp.Signal) {
	t.location = ""
	t.status("Program terminated with signal %s, %s.", sig.Name(), sig.Description())
}

// OnNormalStop updates the header and, with printFrame, logs
// the frame.
func (t *Interpreter) OnNormalStop(ev *interp.StopEvent, printFrame bool) {
	if ev == nil || ev.Frame == nil {
		return
	}
	f := ev.Frame
	if f.File != "" {
		t.location = fmt.Sprintf("%s () at %s:%d", f.Func, f.File, f.Line)
	} else {
		t.location = fmt.Sprintf("0x%016x in %s ()", f.Addr, f.Func)
	}
	if printFrame {
		t.status("Stopped: %s", t.location)
		return
	}
	t.draw()
}

// OnExited logs the exit status and clears the frame.
func (t *Interpreter) OnExited(status int) {
	t.location = ""
	if status == 0 {
		t.status("[Inferior exited normally]")
		return
	}
	t.status("[Inferior exited with code %02o]", status)
}

// OnNoHistory logs that reverse execution ran out of history.
func (t *Interpreter) OnNoHistory() {
	t.status("No more reverse-execution history.")
}

// OnNewThread logs a new thread.
func (t *Interpreter) OnNewThread(th *interp.Thread) {
	t.status("[New Thread %s]", th.ID())
}

// OnThreadExited logs a thread exit unless silent.
func (t *Interpreter) OnThreadExited(th *interp.Thread, silent bool) {
	if !silent {
		t.status("[Thread %s exited]", th.ID())
	}
}

// OnInferiorAppeared logs the started process.
func (t *Interpreter) OnInferiorAppeared(inf *interp.Inferior) {
	t.status("[Inferior %d (process %d) started]", inf.Num, inf.Pid)
}
