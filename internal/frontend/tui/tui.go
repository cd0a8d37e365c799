// Package tui implements the full-screen terminal interpreter.
//
// The screen has three parts: a header showing where the program last
// stopped, a pane of command output and event messages, and a command
// line at the bottom.
package tui

import (
	"errors"
	"fmt"
	"io"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/dshills/dbgfront/internal/interp"
	"github.com/dshills/dbgfront/internal/uiout"
)

// Prompt prefixes the command line.
const Prompt = "(dbgfront) "

// maxLines bounds the output pane history.
const maxLines = 1000

var (
	// ErrNotInitialized is returned when the screen is used before Init.
	ErrNotInitialized = errors.New("tui not initialized")

	// ErrNoEngine is returned by Exec when the UI has no command engine.
	ErrNoEngine = errors.New("no command engine")

	// ErrQuit is returned by ReadCommand when the user closes the TUI.
	ErrQuit = errors.New("tui closed")

	// ErrInterrupt is returned by ReadCommand when the user presses
	// Ctrl-C.
	ErrInterrupt = errors.New("interrupt")

	// ErrWoken is returned by ReadCommand after Wake. The partial command
	// line is kept.
	ErrWoken = errors.New("tui woken")
)

// ScreenFunc creates the screen the interpreter draws on.
type ScreenFunc func() (tcell.Screen, error)

// Options configures TUI interpreters.
type Options struct {
	// Mouse enables mouse reporting.
	Mouse bool

	// HeaderColor is the header background as #rrggbb. Empty uses
	// reverse video.
	HeaderColor string

	// NewScreen creates the screen. Defaults to tcell.NewScreen.
	NewScreen ScreenFunc
}

// Interpreter is the terminal UI interpreter.
type Interpreter struct {
	interp.Base

	ui      *interp.UI
	opts    Options
	logger  *zap.Logger
	screen  tcell.Screen
	header  tcell.Style
	streams *uiout.Streams
	out     *uiout.CLI

	lines     []string
	partial   string
	location  string
	input     []rune
	suspended bool
}

// NewFactory returns an interp.Factory for TUI interpreters using opts.
func NewFactory(opts Options) interp.Factory {
	if opts.NewScreen == nil {
		opts.NewScreen = tcell.NewScreen
	}
	return func(name string, ui *interp.UI) interp.Interpreter {
		t := &Interpreter{
			Base:   interp.NewBase(name),
			ui:     ui,
			opts:   opts,
			logger: ui.Logger().Named(name),
		}
		pane := paneWriter{t}
		t.streams = uiout.NewStreams(pane, pane)
		t.out = uiout.NewCLI(t.streams.Out)
		return t
	}
}

// Register adds the TUI type to reg.
func Register(reg *interp.Registry, opts Options) {
	reg.Register(interp.TUI, NewFactory(opts))
}

// Init creates and initializes the screen. It fails when there is no
// usable terminal.
func (t *Interpreter) Init(bool) error {
	header, err := headerStyleFor(t.opts.HeaderColor)
	if err != nil {
		return fmt.Errorf("cannot enable the TUI: %w", err)
	}
	s, err := t.opts.NewScreen()
	if err != nil {
		return fmt.Errorf("cannot enable the TUI: %w", err)
	}
	if err := s.Init(); err != nil {
		return fmt.Errorf("cannot enable the TUI: %w", err)
	}
	if t.opts.Mouse {
		s.EnableMouse()
	}
	t.screen = s
	t.header = header
	return nil
}

// Resume gives the terminal back to the TUI and redraws.
func (t *Interpreter) Resume() {
	if t.screen == nil {
		return
	}
	if t.suspended {
		if err := t.screen.Resume(); err != nil {
			t.logger.Warn("resume screen", zap.Error(err))
		}
		t.suspended = false
	}
	t.draw()
}

// Suspend releases the terminal so a line-oriented interpreter can use it.
func (t *Interpreter) Suspend() {
	if t.screen == nil || t.suspended {
		return
	}
	if err := t.screen.Suspend(); err != nil {
		t.logger.Warn("suspend screen", zap.Error(err))
		return
	}
	t.suspended = true
}

// Suspended reports whether the screen is released.
func (t *Interpreter) Suspended() bool { return t.suspended }

// Exec echoes command to the output pane and runs it through the UI's
// command engine.
func (t *Interpreter) Exec(command string) error {
	engine := t.ui.Engine()
	if engine == nil {
		return ErrNoEngine
	}
	t.appendLine(Prompt + command)
	err := engine.Execute(t.ui, t.out, command)
	if ferr := t.out.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	if err != nil && !errors.Is(err, interp.ErrQuit) {
		fmt.Fprintln(t.streams.Err, err)
	}
	t.draw()
	return err
}

// UIOut returns the sink feeding the command pane.
func (t *Interpreter) UIOut() uiout.Out { return t.out }

// LogDebug shows text in the pane, or only in the session log when debug
// output is redirected.
func (t *Interpreter) LogDebug(text string) {
	if _, err := io.WriteString(t.streams.Log, text); err != nil {
		t.logger.Debug("debug output", zap.Error(err))
	}
	t.draw()
}

// SetLogging tees or redirects pane output to logfile.
func (t *Interpreter) SetLogging(logfile io.Writer, loggingRedirect, debugRedirect bool) error {
	err := t.streams.Redirect(logfile, loggingRedirect, debugRedirect)
	t.out.SetWriter(t.streams.Out)
	return err
}

// SupportsCommandEditing reports true; the input line is edited in place.
func (t *Interpreter) SupportsCommandEditing() bool { return true }

// Lines returns the output pane contents, oldest first.
func (t *Interpreter) Lines() []string {
	lines := append([]string(nil), t.lines...)
	if t.partial != "" {
		lines = append(lines, t.partial)
	}
	return lines
}

// Location returns the header text.
func (t *Interpreter) Location() string { return t.location }

// Close restores the terminal and ends session logging.
func (t *Interpreter) Close() error {
	if t.screen != nil {
		t.screen.Fini()
		t.screen = nil
	}
	if t.streams.Logging() {
		return t.streams.Redirect(nil, false, false)
	}
	return nil
}

// paneWriter appends written text to the output pane.
type paneWriter struct {
	t *Interpreter
}

// Write appends b to the pane and redraws.
func (p paneWriter) Write(b []byte) (int, error) {
	p.t.appendText(string(b))
	return len(b), nil
}

func (t *Interpreter) appendText(s string) {
	for _, r := range s {
		if r == '\n' {
			t.appendLine(t.partial)
			t.partial = ""
			continue
		}
		t.partial += string(r)
	}
}

func (t *Interpreter) appendLine(line string) {
	t.lines = append(t.lines, line)
	if len(t.lines) > maxLines {
		t.lines = t.lines[len(t.lines)-maxLines:]
	}
}
