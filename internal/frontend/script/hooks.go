package script

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/dshills/dbgfront/internal/interp"
)

// call invokes the global Lua function fn if the script defines one.
// Errors are logged and otherwise ignored.
func (s *Interpreter) call(fn string, args ...lua.LValue) {
	if s.L == nil {
		return
	}
	f, ok := s.L.GetGlobal(fn).(*lua.LFunction)
	if !ok {
		return
	}
	err := s.run(func() error {
		return s.L.CallByParam(lua.P{Fn: f, NRet: 0, Protect: true}, args...)
	})
	if err != nil {
		s.logger.Warn("lua hook failed", zap.String("hook", fn), zap.Error(err))
	}
	if ferr := s.out.Flush(); ferr != nil {
		s.logger.Warn("flush", zap.Error(ferr))
	}
}

func (s *Interpreter) table(fields map[string]lua.LValue) *lua.LTable {
	t := s.L.NewTable()
	for k, v := range fields {
		t.RawSetString(k, v)
	}
	return t
}

func (s *Interpreter) threadTable(t *interp.Thread) *lua.LTable {
	return s.table(map[string]lua.LValue{
		"id":       lua.LNumber(t.GlobalNum),
		"num":      lua.LNumber(t.Num),
		"inferior": lua.LNumber(t.InferiorNum),
		"lwp":      lua.LNumber(t.LWP),
		"name":     lua.LString(t.Name),
	})
}

func (s *Interpreter) inferiorTable(inf *interp.Inferior) *lua.LTable {
	return s.table(map[string]lua.LValue{
		"num":        lua.LNumber(inf.Num),
		"pid":        lua.LNumber(inf.Pid),
		"executable": lua.LString(inf.Executable),
	})
}

// OnSignalReceived calls the script's on_signal_received hook.
func (s *Interpreter) OnSignalReceived(sig interp.Signal) {
	s.call("on_signal_received", lua.LString(sig.Name()))
}

// OnSignalExited calls on_signal_exited.
func (s *Interpreter) OnSignalExited(sig interp.Signal) {
	s.call("on_signal_exited", lua.LString(sig.Name()))
}

// OnNormalStop calls on_normal_stop with a table describing the stop.
func (s *Interpreter) OnNormalStop(ev *interp.StopEvent, printFrame bool) {
	if s.L == nil || ev == nil {
		return
	}
	fields := map[string]lua.LValue{"reason": lua.LString(ev.Reason)}
	if len(ev.Breakpoints) > 0 {
		bps := s.L.NewTable()
		for _, n := range ev.Breakpoints {
			bps.Append(lua.LNumber(n))
		}
		fields["breakpoints"] = bps
	}
	if f := ev.Frame; f != nil {
		fields["func"] = lua.LString(f.Func)
		fields["file"] = lua.LString(f.File)
		fields["line"] = lua.LNumber(f.Line)
		fields["addr"] = lua.LNumber(f.Addr)
	}
	if ev.Thread != nil {
		fields["thread"] = s.threadTable(ev.Thread)
	}
	s.call("on_normal_stop", s.table(fields), lua.LBool(printFrame))
}

// OnExited calls on_exited with the exit status.
func (s *Interpreter) OnExited(status int) {
	s.call("on_exited", lua.LNumber(status))
}

// OnNoHistory calls on_no_history.
func (s *Interpreter) OnNoHistory() {
	s.call("on_no_history")
}

// OnSyncExecutionDone calls on_sync_execution_done.
func (s *Interpreter) OnSyncExecutionDone() {
	s.call("on_sync_execution_done")
}

// OnCommandError calls on_command_error.
func (s *Interpreter) OnCommandError() {
	s.call("on_command_error")
}

// OnUserSelectedContextChanged calls on_user_selected_context_changed.
func (s *Interpreter) OnUserSelectedContextChanged(sel interp.Selection) {
	s.call("on_user_selected_context_changed", lua.LString(sel.String()))
}

// OnNewThread calls on_new_thread with a table describing t.
func (s *Interpreter) OnNewThread(t *interp.Thread) {
	if s.L != nil {
		s.call("on_new_thread", s.threadTable(t))
	}
}

// OnThreadExited calls on_thread_exited.
func (s *Interpreter) OnThreadExited(t *interp.Thread, silent bool) {
	if s.L != nil {
		s.call("on_thread_exited", s.threadTable(t), lua.LBool(silent))
	}
}

// OnInferiorAdded calls on_inferior_added.
func (s *Interpreter) OnInferiorAdded(inf *interp.Inferior) {
	if s.L != nil {
		s.call("on_inferior_added", s.inferiorTable(inf))
	}
}

// OnInferiorAppeared calls on_inferior_appeared.
func (s *Interpreter) OnInferiorAppeared(inf *interp.Inferior) {
	if s.L != nil {
		s.call("on_inferior_appeared", s.inferiorTable(inf))
	}
}
