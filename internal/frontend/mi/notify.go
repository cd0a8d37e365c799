package mi

import (
	"fmt"

	"github.com/dshills/dbgfront/internal/interp"
)

// OnSignalReceived emits *stopped with reason signal-received.
func (m *Interpreter) OnSignalReceived(sig interp.Signal) {
	m.async.Field("reason", "signal-received")
	m.signal(sig)
	m.async.Emit("*stopped")
}

// OnSignalExited emits *stopped with reason exited-signalled.
func (m *Interpreter) OnSignalExited(sig interp.Signal) {
	m.async.Field("reason", "exited-signalled")
	m.signal(sig)
	m.async.Emit("*stopped")
}

func (m *Interpreter) signal(sig interp.Signal) {
	m.async.Field("signal-name", sig.Name())
	m.async.Field("signal-meaning", sig.Description())
}

// OnExited emits *stopped with the exit status. Status 0 is
// exited-normally.
func (m *Interpreter) OnExited(status int) {
	if status == 0 {
		m.async.Field("reason", "exited-normally")
	} else {
		m.async.Field("reason", "exited")
		m.async.Field("exit-code", fmt.Sprintf("0%o", status))
	}
	m.async.Emit("*stopped")
}

// OnNormalStop emits *stopped with the stop reason and frame.
func (m *Interpreter) OnNormalStop(ev *interp.StopEvent, printFrame bool) {
	if ev == nil {
		return
	}
	if ev.Reason != "" {
		m.async.Field("reason", string(ev.Reason))
	}
	if len(ev.Breakpoints) > 0 {
		m.async.Field("disp", "keep")
		m.async.FieldInt("bkptno", ev.Breakpoints[0])
	}
	if f := ev.Frame; f != nil && printFrame {
		m.async.BeginTuple("frame")
		m.async.Field("addr", fmt.Sprintf("0x%016x", f.Addr))
		m.async.Field("func", f.Func)
		m.async.BeginList("args")
		m.async.EndList()
		if f.File != "" {
			m.async.Field("file", f.File)
			m.async.FieldInt("line", f.Line)
		}
		m.async.EndTuple()
	}
	if ev.Thread != nil {
		m.thread = ev.Thread
		m.async.FieldInt("thread-id", ev.Thread.GlobalNum)
	}
	m.async.Field("stopped-threads", "all")
	m.async.Emit("*stopped")
}

// OnNoHistory emits *stopped with reason no-history.
func (m *Interpreter) OnNoHistory() {
	m.async.Field("reason", "no-history")
	m.async.Emit("*stopped")
}

// OnUserSelectedContextChanged emits =thread-selected.
func (m *Interpreter) OnUserSelectedContextChanged(sel interp.Selection) {
	if !sel.Has(interp.SelectedThread) || m.thread == nil {
		return
	}
	m.async.FieldInt("id", m.thread.GlobalNum)
	m.async.Emit("=thread-selected")
}

// OnNewThread emits =thread-created.
func (m *Interpreter) OnNewThread(t *interp.Thread) {
	m.thread = t
	m.threadRecord(t)
	m.async.Emit("=thread-created")
}

// OnThreadExited emits =thread-exited.
func (m *Interpreter) OnThreadExited(t *interp.Thread, _ bool) {
	m.threadRecord(t)
	m.async.Emit("=thread-exited")
}

func (m *Interpreter) threadRecord(t *interp.Thread) {
	m.async.FieldInt("id", t.GlobalNum)
	m.async.Field("group-id", groupID(t.InferiorNum))
}

// OnInferiorAdded emits =thread-group-added.
func (m *Interpreter) OnInferiorAdded(inf *interp.Inferior) {
	m.async.Field("id", groupID(inf.Num))
	m.async.Emit("=thread-group-added")
}

// OnInferiorAppeared emits =thread-group-started.
func (m *Interpreter) OnInferiorAppeared(inf *interp.Inferior) {
	m.async.Field("id", groupID(inf.Num))
	m.async.FieldInt("pid", inf.Pid)
	m.async.Emit("=thread-group-started")
}

func groupID(inferior int) string {
	return fmt.Sprintf("i%d", inferior)
}
