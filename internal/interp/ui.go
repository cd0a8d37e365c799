package interp

import (
	"errors"
	"io"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UI is one debugging session: a terminal or connection with its own
// interpreters and its own current and top-level interpreter.
//
// The UI owns its interpreters. They are created on first lookup, kept in
// insertion order, and closed with the UI. A UI is not safe for concurrent
// use.
type UI struct {
	id     string
	dir    *Directory
	in     io.Reader
	out    io.Writer
	errw   io.Writer
	engine Engine
	logger *zap.Logger

	interps []*entry
	byName  map[string]*entry

	current       *entry
	topLevel      *entry
	commandInterp Interpreter
	scopes        []*Scope

	closed bool
}

// entry is an owned interpreter and whether Init has run.
type entry struct {
	it          Interpreter
	initialized bool
}

// UIOption configures a UI.
type UIOption func(*UI)

// WithStreams sets the UI's terminal streams. The defaults are the
// process's standard streams.
func WithStreams(in io.Reader, out, errw io.Writer) UIOption {
	return func(ui *UI) {
		ui.in = in
		ui.out = out
		ui.errw = errw
	}
}

// WithEngine sets the command engine interpreters execute CLI commands
// through.
func WithEngine(e Engine) UIOption {
	return func(ui *UI) {
		ui.engine = e
	}
}

// WithID overrides the generated UI identifier.
func WithID(id string) UIOption {
	return func(ui *UI) {
		ui.id = id
	}
}

func newUI(dir *Directory, opts ...UIOption) *UI {
	ui := &UI{
		id:     uuid.NewString(),
		dir:    dir,
		in:     os.Stdin,
		out:    os.Stdout,
		errw:   os.Stderr,
		byName: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(ui)
	}
	ui.logger = dir.logger.With(zap.String("ui", ui.id))
	return ui
}

// ID returns the UI's identifier.
func (ui *UI) ID() string { return ui.id }

// In returns the UI's input stream.
func (ui *UI) In() io.Reader { return ui.in }

// Out returns the UI's terminal output stream.
func (ui *UI) Out() io.Writer { return ui.out }

// Err returns the UI's terminal error stream.
func (ui *UI) Err() io.Writer { return ui.errw }

// Engine returns the command engine, or nil if none was configured.
func (ui *UI) Engine() Engine { return ui.engine }

// Directory returns the directory the UI belongs to.
func (ui *UI) Directory() *Directory { return ui.dir }

// Logger returns the UI's logger.
func (ui *UI) Logger() *zap.Logger { return ui.logger }

// Lookup returns the UI's interpreter named name, creating it through the
// registry if it does not exist yet. A newly created interpreter is not
// initialized; that happens when it first becomes current.
func (ui *UI) Lookup(name string) (Interpreter, error) {
	e, err := ui.lookup(name)
	if err != nil {
		return nil, err
	}
	return e.it, nil
}

func (ui *UI) lookup(name string) (*entry, error) {
	if ui.closed {
		return nil, ErrUIClosed
	}
	if e, ok := ui.byName[name]; ok {
		return e, nil
	}

	it, err := ui.dir.registry.Create(name, ui)
	if err != nil {
		return nil, err
	}
	e := &entry{it: it}
	ui.interps = append(ui.interps, e)
	ui.byName[name] = e
	ui.logger.Debug("interpreter created", zap.String("interp", name))
	return e, nil
}

// initialize runs Init once. On failure the interpreter is discarded.
func (ui *UI) initialize(e *entry, topLevel bool) error {
	if e.initialized {
		return nil
	}
	name := e.it.Name()
	if err := e.it.Init(topLevel); err != nil {
		ui.discard(e)
		ui.dir.metrics.InitFailed(name)
		ui.logger.Warn("interpreter init failed", zap.String("interp", name), zap.Error(err))
		return &InitError{Name: name, Err: err}
	}
	e.initialized = true
	return nil
}

func (ui *UI) discard(e *entry) {
	delete(ui.byName, e.it.Name())
	for i, x := range ui.interps {
		if x == e {
			ui.interps = append(ui.interps[:i], ui.interps[i+1:]...)
			break
		}
	}
	if c, ok := e.it.(io.Closer); ok {
		_ = c.Close()
	}
}

// SetTopLevel makes name the UI's top-level and current interpreter,
// initializing it with topLevel set. If name is unknown or Init fails,
// the UI is left unchanged.
func (ui *UI) SetTopLevel(name string) error {
	e, err := ui.lookup(name)
	if err != nil {
		return err
	}
	if err := ui.initialize(e, true); err != nil {
		return err
	}
	ui.topLevel = e
	ui.activate(e)
	return nil
}

// Switch makes name the UI's current interpreter, initializing it if
// needed, and returns the interpreter that was current before (nil if
// none). The previous interpreter is suspended and the new one resumed,
// also when they are the same instance. On error the UI is unchanged.
func (ui *UI) Switch(name string) (Interpreter, error) {
	e, err := ui.lookup(name)
	if err != nil {
		return nil, err
	}
	if err := ui.initialize(e, false); err != nil {
		return nil, err
	}
	prev := ui.current
	ui.activate(e)
	if prev == nil {
		return nil, nil
	}
	return prev.it, nil
}

// activate suspends the current interpreter and resumes e.
func (ui *UI) activate(e *entry) {
	ui.deactivate()
	ui.current = e
	ui.dir.metrics.Switched(e.it.Name())
	ui.logger.Debug("interpreter resumed", zap.String("interp", e.it.Name()))
	e.it.Resume()
}

// deactivate suspends the current interpreter, leaving none current.
func (ui *UI) deactivate() {
	prev := ui.current
	if prev == nil {
		return
	}
	if out := prev.it.UIOut(); out != nil {
		if err := out.Flush(); err != nil {
			ui.logger.Warn("flush on suspend", zap.String("interp", prev.it.Name()), zap.Error(err))
		}
	}
	ui.current = nil
	prev.it.Suspend()
}

// Current returns the current interpreter, or nil.
func (ui *UI) Current() Interpreter {
	if ui.current == nil {
		return nil
	}
	return ui.current.it
}

// TopLevel returns the top-level interpreter, or nil before SetTopLevel.
func (ui *UI) TopLevel() Interpreter {
	if ui.topLevel == nil {
		return nil
	}
	return ui.topLevel.it
}

// IsNamed reports whether the current interpreter is called name.
func (ui *UI) IsNamed(name string) bool {
	return ui.current != nil && ui.current.it.Name() == name
}

// CommandInterpreter returns the interpreter executing the running
// command, falling back to the current interpreter.
func (ui *UI) CommandInterpreter() Interpreter {
	if ui.commandInterp != nil {
		return ui.commandInterp
	}
	return ui.Current()
}

// Interpreters returns the UI's interpreters in creation order.
func (ui *UI) Interpreters() []Interpreter {
	list := make([]Interpreter, len(ui.interps))
	for i, e := range ui.interps {
		list[i] = e.it
	}
	return list
}

// Initialized reports whether it has been initialized by this UI.
func (ui *UI) Initialized(it Interpreter) bool {
	e, ok := ui.byName[it.Name()]
	return ok && e.it == it && e.initialized
}

// Exec runs command on it, with it reported as the command interpreter
// for the duration. If the command fails, it is told through
// OnCommandError and the error is returned. ErrQuit is returned without
// the notification.
func (ui *UI) Exec(it Interpreter, command string) error {
	if ui.closed {
		return ErrUIClosed
	}
	saved := ui.commandInterp
	ui.commandInterp = it
	defer func() { ui.commandInterp = saved }()

	if err := it.Exec(command); err != nil {
		if !errors.Is(err, ErrQuit) {
			it.OnCommandError()
		}
		return err
	}
	return nil
}

// ExecCurrent runs command on the current interpreter.
func (ui *UI) ExecCurrent(command string) error {
	if ui.current == nil {
		return ErrNoCurrent
	}
	return ui.Exec(ui.current.it, command)
}

// SetLogging forwards a logging change to the current interpreter only.
// A nil logfile ends logging.
func (ui *UI) SetLogging(logfile io.Writer, loggingRedirect, debugRedirect bool) error {
	if ui.current == nil {
		return ErrNoCurrent
	}
	ui.logger.Debug("set logging",
		zap.String("interp", ui.current.it.Name()),
		zap.Bool("start", logfile != nil),
		zap.Bool("redirect", loggingRedirect),
		zap.Bool("debug_redirect", debugRedirect),
	)
	return ui.current.it.SetLogging(logfile, loggingRedirect, debugRedirect)
}

// PreCommandLoop runs the current interpreter's pre-command-loop hook.
func (ui *UI) PreCommandLoop() {
	if ui.current != nil {
		ui.current.it.PreCommandLoop()
	}
}

// DisplayPrompt asks the current interpreter to print its prompt again,
// if it has one. Command loops call it after each command and after
// asynchronous output.
func (ui *UI) DisplayPrompt() {
	if ui.current == nil {
		return
	}
	if p, ok := ui.current.it.(Prompter); ok {
		p.DisplayPrompt()
	}
}

// LogDebug prints debug output through the current interpreter. Without
// a current interpreter that accepts it, text goes to the UI's error
// stream.
func (ui *UI) LogDebug(text string) {
	if ui.current != nil {
		if d, ok := ui.current.it.(DebugLogger); ok {
			d.LogDebug(text)
			return
		}
	}
	if _, err := io.WriteString(ui.errw, text); err != nil {
		ui.logger.Debug("debug output", zap.Error(err))
	}
}

// SupportsCommandEditing reports whether it supports rich line editing.
// A nil interpreter does not.
func SupportsCommandEditing(it Interpreter) bool {
	return it != nil && it.SupportsCommandEditing()
}

// Close suspends the current interpreter and destroys every interpreter
// the UI owns, newest first, then lets the engine drop its state for the
// UI. Close is idempotent.
func (ui *UI) Close() error {
	if ui.closed {
		return nil
	}
	ui.deactivate()
	ui.closed = true

	var errs []error
	for i := len(ui.interps) - 1; i >= 0; i-- {
		if c, ok := ui.interps[i].it.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	ui.interps = nil
	ui.byName = make(map[string]*entry)
	ui.topLevel = nil
	ui.scopes = nil
	if f, ok := ui.engine.(UIForgetter); ok {
		f.ForgetUI(ui)
	}
	return errors.Join(errs...)
}
