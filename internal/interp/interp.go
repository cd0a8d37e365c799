package interp

import (
	"io"

	"github.com/dshills/dbgfront/internal/uiout"
)

// Interpreter is one instantiated front-end attached to a UI.
//
// Implementations embed Base to get the optional methods and no-op
// notification hooks, and provide the lifecycle and execution methods.
type Interpreter interface {
	// Name returns the registered type name. It never changes.
	Name() string

	// Init prepares the interpreter the first time it becomes current.
	// topLevel is set when it is the UI's top-level interpreter. Init is
	// called at most once per instance.
	Init(topLevel bool) error

	// Resume is called when the interpreter becomes current.
	Resume()

	// Suspend is called when the interpreter stops being current.
	Suspend()

	// Exec runs one command and returns when it has completed or failed.
	Exec(command string) error

	// UIOut returns the sink currently used to report results.
	UIOut() uiout.Out

	// SetLogging starts (logfile != nil) or ends (logfile == nil) session
	// logging. loggingRedirect sends normal output only to the log;
	// debugRedirect does the same for debug output. The interpreter takes
	// ownership of logfile.
	SetLogging(logfile io.Writer, loggingRedirect, debugRedirect bool) error

	// PreCommandLoop runs before a command loop starts, e.g. to print a
	// prompt.
	PreCommandLoop()

	// SupportsCommandEditing reports whether the interpreter uses rich
	// line editing.
	SupportsCommandEditing() bool

	Notifier
}

// Notifier is the set of debuggee lifecycle hooks.
type Notifier interface {
	// OnSignalReceived: the current inferior stopped with sig.
	OnSignalReceived(sig Signal)

	// OnSignalExited: the current inferior was terminated by sig.
	OnSignalExited(sig Signal)

	// OnNormalStop: the current inferior stopped normally.
	OnNormalStop(ev *StopEvent, printFrame bool)

	// OnExited: the current inferior exited with status.
	OnExited(status int)

	// OnNoHistory: reverse execution ran out of history.
	OnNoHistory()

	// OnSyncExecutionDone: a synchronous execution command finished.
	OnSyncExecutionDone()

	// OnCommandError: a command executed by this interpreter failed.
	OnCommandError()

	// OnUserSelectedContextChanged: the user focus changed.
	OnUserSelectedContextChanged(sel Selection)

	// OnNewThread: thread t was created.
	OnNewThread(t *Thread)

	// OnThreadExited: thread t exited.
	OnThreadExited(t *Thread, silent bool)

	// OnInferiorAdded: inferior inf was added.
	OnInferiorAdded(inf *Inferior)

	// OnInferiorAppeared: inferior inf was started or attached.
	OnInferiorAppeared(inf *Inferior)
}

// Prompter is implemented by interpreters that print a prompt before
// each command line they read. MI does not: its responses end with their
// own prompt.
type Prompter interface {
	DisplayPrompt()
}

// DebugLogger is implemented by interpreters that print debug output,
// such as diagnostics from the debug adapter. The output goes to the
// interpreter's log stream, so SetLogging's debugRedirect decides
// whether it also reaches the terminal.
type DebugLogger interface {
	LogDebug(text string)
}

// Factory creates a new, uninitialized interpreter for name, owned by ui.
type Factory func(name string, ui *UI) Interpreter

// Engine executes a CLI command on behalf of an interpreter. It is the
// seam to the debugger's command semantics.
type Engine interface {
	Execute(ui *UI, out uiout.Out, command string) error
}

// UIForgetter is implemented by engines that keep state per UI. A UI
// calls ForgetUI when it closes.
type UIForgetter interface {
	ForgetUI(ui *UI)
}

// EngineFunc adapts a function to Engine.
type EngineFunc func(ui *UI, out uiout.Out, command string) error

// Execute calls f.
func (f EngineFunc) Execute(ui *UI, out uiout.Out, command string) error {
	return f(ui, out, command)
}

// Base provides the name and default no-op behavior for the optional
// parts of Interpreter.
type Base struct {
	name string
}

// NewBase returns a Base for name.
func NewBase(name string) Base {
	return Base{name: name}
}

// Name returns the name the interpreter was created under.
func (b *Base) Name() string { return b.name }

// PreCommandLoop does nothing.
func (b *Base) PreCommandLoop() {}

// SupportsCommandEditing reports false.
func (b *Base) SupportsCommandEditing() bool { return false }

// The notification hooks below ignore the event. Embedders override
// the ones they print.

// OnSignalReceived ignores the event.
func (b *Base) OnSignalReceived(Signal) {}

// OnSignalExited ignores the event.
func (b *Base) OnSignalExited(Signal) {}

// OnNormalStop ignores the event.
func (b *Base) OnNormalStop(*StopEvent, bool) {}

// OnExited ignores the event.
func (b *Base) OnExited(int) {}

// OnNoHistory ignores the event.
func (b *Base) OnNoHistory() {}

// OnSyncExecutionDone ignores the event.
func (b *Base) OnSyncExecutionDone() {}

// OnCommandError ignores the event.
func (b *Base) OnCommandError() {}

// OnUserSelectedContextChanged ignores the event.
func (b *Base) OnUserSelectedContextChanged(Selection) {}

// OnNewThread ignores the event.
func (b *Base) OnNewThread(*Thread) {}

// OnThreadExited ignores the event.
func (b *Base) OnThreadExited(*Thread, bool) {}

// OnInferiorAdded ignores the event.
func (b *Base) OnInferiorAdded(*Inferior) {}

// OnInferiorAppeared ignores the event.
func (b *Base) OnInferiorAppeared(*Inferior) {}
