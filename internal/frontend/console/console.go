// Package console implements the human-readable command-line interpreter.
package console

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/dshills/dbgfront/internal/interp"
	"github.com/dshills/dbgfront/internal/uiout"
)

// Prompt is printed before each command when the console is top-level.
const Prompt = "(dbgfront) "

// ErrNoEngine is returned by Exec when the UI has no command engine.
var ErrNoEngine = errors.New("no command engine")

// Interpreter is the console interpreter.
type Interpreter struct {
	interp.Base

	ui       *interp.UI
	streams  *uiout.Streams
	out      *uiout.CLI
	logger   *zap.Logger
	topLevel bool
	resumed  bool

	// inferior is the last inferior reported to the console, used to
	// describe exits.
	inferior *interp.Inferior
}

// New creates a console interpreter for ui. It has the signature of
// interp.Factory.
func New(name string, ui *interp.UI) interp.Interpreter {
	streams := uiout.NewStreams(ui.Out(), ui.Err())
	return &Interpreter{
		Base:    interp.NewBase(name),
		ui:      ui,
		streams: streams,
		out:     uiout.NewCLI(streams.Out),
		logger:  ui.Logger().Named(name),
	}
}

// Register adds the console type to reg.
func Register(reg *interp.Registry) {
	reg.Register(interp.Console, New)
}

// Init records whether the console is the UI's top-level interpreter.
// Only a top-level console prints prompts.
func (c *Interpreter) Init(topLevel bool) error {
	c.topLevel = topLevel
	return nil
}

// Resume marks the console current.
func (c *Interpreter) Resume() { c.resumed = true }

// Suspend flushes pending output and marks the console inactive.
func (c *Interpreter) Suspend() {
	c.resumed = false
	if err := c.out.Flush(); err != nil {
		c.logger.Warn("flush on suspend", zap.Error(err))
	}
}

// Resumed reports whether the console is the UI's current interpreter.
func (c *Interpreter) Resumed() bool { return c.resumed }

// Exec runs command through the UI's command engine. Errors are printed
// to the error stream and returned.
func (c *Interpreter) Exec(command string) error {
	engine := c.ui.Engine()
	if engine == nil {
		return ErrNoEngine
	}
	err := engine.Execute(c.ui, c.out, command)
	if ferr := c.out.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	if err != nil && !errors.Is(err, interp.ErrQuit) {
		fmt.Fprintln(c.streams.Err, err)
	}
	return err
}

// UIOut returns the sink commands print through.
func (c *Interpreter) UIOut() uiout.Out { return c.out }

// SetLogging redirects or tees the console streams to logfile.
func (c *Interpreter) SetLogging(logfile io.Writer, loggingRedirect, debugRedirect bool) error {
	if err := c.out.Flush(); err != nil {
		c.logger.Warn("flush before redirect", zap.Error(err))
	}
	err := c.streams.Redirect(logfile, loggingRedirect, debugRedirect)
	c.out.SetWriter(c.streams.Out)
	return err
}

// PreCommandLoop prints the first prompt.
func (c *Interpreter) PreCommandLoop() {
	c.DisplayPrompt()
}

// DisplayPrompt prints the prompt when the console is top-level. A
// console entered through interpreter-exec does not prompt.
func (c *Interpreter) DisplayPrompt() {
	if c.topLevel {
		io.WriteString(c.streams.Out, Prompt)
	}
}

// LogDebug writes text to the debug log stream.
func (c *Interpreter) LogDebug(text string) {
	if err := c.out.Flush(); err != nil {
		c.logger.Warn("flush before debug output", zap.Error(err))
	}
	if _, err := io.WriteString(c.streams.Log, text); err != nil {
		c.logger.Debug("debug output", zap.Error(err))
	}
}

// SupportsCommandEditing reports true only for a top-level console
// reading from a terminal.
func (c *Interpreter) SupportsCommandEditing() bool {
	if !c.topLevel {
		return false
	}
	f, ok := c.ui.In().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Close ends session logging, closing the log file.
func (c *Interpreter) Close() error {
	if !c.streams.Logging() {
		return nil
	}
	return c.streams.Redirect(nil, false, false)
}
