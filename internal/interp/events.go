package interp

import (
	"fmt"
	"strings"
)

// EventKind names a debuggee lifecycle event delivered by the Directory.
type EventKind string

// Event kinds, one per Notify method.
const (
	EventSignalReceived     EventKind = "signal-received"
	EventSignalExited       EventKind = "signal-exited"
	EventNormalStop         EventKind = "normal-stop"
	EventExited             EventKind = "exited"
	EventNoHistory          EventKind = "no-history"
	EventSyncExecutionDone  EventKind = "sync-execution-done"
	EventCommandError       EventKind = "command-error"
	EventUserContextChanged EventKind = "user-selected-context-changed"
	EventNewThread          EventKind = "new-thread"
	EventThreadExited       EventKind = "thread-exited"
	EventInferiorAdded      EventKind = "inferior-added"
	EventInferiorAppeared   EventKind = "inferior-appeared"
)

// Signal is a target-independent signal number.
type Signal int

// Signals known by name. Numbering follows the traditional Unix values.
const (
	SignalNone Signal = iota
	SignalHUP
	SignalINT
	SignalQUIT
	SignalILL
	SignalTRAP
	SignalABRT
	SignalEMT
	SignalFPE
	SignalKILL
	SignalBUS
	SignalSEGV
	SignalSYS
	SignalPIPE
	SignalALRM
	SignalTERM
)

var signalInfo = [...]struct {
	name string
	desc string
}{
	SignalNone: {"0", "Signal 0"},
	SignalHUP:  {"SIGHUP", "Hangup"},
	SignalINT:  {"SIGINT", "Interrupt"},
	SignalQUIT: {"SIGQUIT", "Quit"},
	SignalILL:  {"SIGILL", "Illegal instruction"},
	SignalTRAP: {"SIGTRAP", "Trace/breakpoint trap"},
	SignalABRT: {"SIGABRT", "Aborted"},
	SignalEMT:  {"SIGEMT", "Emulation trap"},
	SignalFPE:  {"SIGFPE", "Arithmetic exception"},
	SignalKILL: {"SIGKILL", "Killed"},
	SignalBUS:  {"SIGBUS", "Bus error"},
	SignalSEGV: {"SIGSEGV", "Segmentation fault"},
	SignalSYS:  {"SIGSYS", "Bad system call"},
	SignalPIPE: {"SIGPIPE", "Broken pipe"},
	SignalALRM: {"SIGALRM", "Alarm clock"},
	SignalTERM: {"SIGTERM", "Terminated"},
}

// Name returns the signal's symbolic name, e.g. "SIGINT".
func (s Signal) Name() string {
	if s >= 0 && int(s) < len(signalInfo) {
		return signalInfo[s].name
	}
	return "?"
}

// Description returns a human description, e.g. "Interrupt".
func (s Signal) Description() string {
	if s >= 0 && int(s) < len(signalInfo) {
		return signalInfo[s].desc
	}
	return fmt.Sprintf("Unknown signal %d", int(s))
}

// String returns the symbolic name.
func (s Signal) String() string {
	return s.Name()
}

// ParseSignal parses a name such as "SIGSEGV" or "segv".
func ParseSignal(name string) (Signal, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if !strings.HasPrefix(name, "SIG") {
		name = "SIG" + name
	}
	for i := SignalHUP; int(i) < len(signalInfo); i++ {
		if signalInfo[i].name == name {
			return i, true
		}
	}
	return SignalNone, false
}

// StopReason describes why the inferior stopped normally.
type StopReason string

// Stop reasons, spelled as the machine interface reports them.
const (
	StopBreakpointHit     StopReason = "breakpoint-hit"
	StopWatchpointTrigger StopReason = "watchpoint-trigger"
	StopEndSteppingRange  StopReason = "end-stepping-range"
	StopFunctionFinished  StopReason = "function-finished"
	StopLocationReached   StopReason = "location-reached"
	StopPause             StopReason = "signal-received"
	StopException         StopReason = "exception"
	StopEntry             StopReason = "entry"
)

// Frame is a stack frame as reported with a stop.
type Frame struct {
	Level int
	Addr  uint64
	Func  string
	File  string
	Line  int
}

// StopEvent describes a normal stop: the breakpoints that caused it and
// where the stopped thread is.
type StopEvent struct {
	Reason      StopReason
	Breakpoints []int
	Thread      *Thread
	Frame       *Frame
}

// Thread identifies a thread of an inferior.
type Thread struct {
	// GlobalNum is unique across all inferiors.
	GlobalNum int

	// Num is the thread number within its inferior.
	Num int

	InferiorNum int
	LWP         int
	Name        string
}

// ID returns the "inferior.thread" form used in console output.
func (t *Thread) ID() string {
	return fmt.Sprintf("%d.%d", t.InferiorNum, t.Num)
}

// Inferior is a program being debugged.
type Inferior struct {
	Num        int
	Pid        int
	Executable string
}

// Selection records which parts of the user-selected context changed.
type Selection uint8

// Selection flags.
const (
	SelectedInferior Selection = 1 << iota
	SelectedThread
	SelectedFrame
)

// Has reports whether every flag in f is set.
func (s Selection) Has(f Selection) bool {
	return s&f == f
}

// String returns the set flags joined by '|'.
func (s Selection) String() string {
	var parts []string
	if s.Has(SelectedInferior) {
		parts = append(parts, "inferior")
	}
	if s.Has(SelectedThread) {
		parts = append(parts, "thread")
	}
	if s.Has(SelectedFrame) {
		parts = append(parts, "frame")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}
