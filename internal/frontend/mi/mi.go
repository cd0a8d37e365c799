// Package mi implements the machine interface interpreter in its protocol
// versions 2 through 4.
//
// Input lines are either MI commands, which start with '-' and may carry a
// numeric token, or CLI commands run through the UI's command engine. Each
// command produces one result record followed by the prompt:
//
//	12-interpreter-exec console "echo hi\n"
//	~"hi\n"
//	12^done
//	(gdb)
//
// Notifications are written as async records (*stopped, =thread-created)
// as they happen.
package mi

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/dshills/dbgfront/internal/interp"
	"github.com/dshills/dbgfront/internal/uiout"
)

// Prompt ends every response.
const Prompt = "(gdb) "

// LatestVersion is the version selected by the plain "mi" name.
const LatestVersion = 4

// ErrNoEngine is returned for CLI commands when the UI has no engine.
var ErrNoEngine = errors.New("no command engine")

// Interpreter is an MI interpreter.
type Interpreter struct {
	interp.Base

	ui      *interp.UI
	streams *uiout.Streams
	logger  *zap.Logger
	version int

	// result collects the response of the running command; async holds
	// notification records so they never mix with a pending result; log
	// writes &"..." records to the debug log stream.
	result *uiout.MI
	async  *uiout.MI
	log    *uiout.MI

	// thread is the last thread reported in a stop, for =thread-selected.
	thread *interp.Thread
}

// Version returns the protocol version selected by name.
func Version(name string) int {
	switch name {
	case interp.MI2:
		return 2
	case interp.MI3:
		return 3
	default:
		return LatestVersion
	}
}

// New creates an MI interpreter for ui. It has the signature of
// interp.Factory.
func New(name string, ui *interp.UI) interp.Interpreter {
	streams := uiout.NewStreams(ui.Out(), ui.Err())
	v := Version(name)
	return &Interpreter{
		Base:    interp.NewBase(name),
		ui:      ui,
		streams: streams,
		logger:  ui.Logger().Named(name),
		version: v,
		result:  uiout.NewMI(streams.Out, v),
		async:   uiout.NewMI(streams.Out, v),
		log:     uiout.NewMI(streams.Log, v),
	}
}

// Register adds every MI version to reg.
func Register(reg *interp.Registry) {
	for _, name := range []string{interp.MI2, interp.MI3, interp.MI4, interp.MI} {
		reg.Register(name, New)
	}
}

// Version returns the protocol version the interpreter speaks.
func (m *Interpreter) Version() int { return m.version }

// Init emits the =version record when MI is top-level.
func (m *Interpreter) Init(topLevel bool) error {
	if topLevel {
		m.async.FieldInt("mi", m.version)
		m.async.Emit("=version")
	}
	return nil
}

// Resume does nothing; MI keeps no state between activations.
func (m *Interpreter) Resume() {}

// Suspend does nothing.
func (m *Interpreter) Suspend() {}

// UIOut returns the result record sink. CLI commands run through
// -interpreter-exec print into it.
func (m *Interpreter) UIOut() uiout.Out { return m.result }

// Exec runs one MI or CLI command and writes its result record and the
// prompt.
func (m *Interpreter) Exec(command string) error {
	token, body := splitToken(strings.TrimSpace(command))
	if body == "" {
		m.prompt()
		return nil
	}

	var err error
	if strings.HasPrefix(body, "-") {
		err = m.execMI(body)
	} else {
		err = m.execCLI(body)
	}

	switch {
	case errors.Is(err, interp.ErrQuit):
		m.result.Reset()
		m.result.Emit(token + "^exit")
		if ferr := m.result.Flush(); ferr != nil {
			m.logger.Warn("flush", zap.Error(ferr))
		}
		return err
	case err != nil:
		m.result.Reset()
		m.result.Field("msg", err.Error())
		var uerr *undefinedError
		if errors.As(err, &uerr) && m.version >= 3 {
			m.result.Field("code", "undefined-command")
		}
		m.result.Emit(token + "^error")
	default:
		m.result.Emit(token + "^done")
	}
	m.prompt()
	if ferr := m.result.Flush(); ferr != nil {
		m.logger.Warn("flush", zap.Error(ferr))
	}
	return err
}

func (m *Interpreter) execCLI(command string) error {
	engine := m.ui.Engine()
	if engine == nil {
		return ErrNoEngine
	}
	return engine.Execute(m.ui, m.result, command)
}

func (m *Interpreter) prompt() {
	m.result.Emitf("%s", Prompt)
}

// SetLogging redirects or tees MI output to logfile.
func (m *Interpreter) SetLogging(logfile io.Writer, loggingRedirect, debugRedirect bool) error {
	err := m.streams.Redirect(logfile, loggingRedirect, debugRedirect)
	m.result.SetWriter(m.streams.Out)
	m.async.SetWriter(m.streams.Out)
	m.log.SetWriter(m.streams.Log)
	return err
}

// LogDebug writes text as a log stream record.
func (m *Interpreter) LogDebug(text string) {
	m.log.Stream('&', text)
	if err := m.log.Flush(); err != nil {
		m.logger.Debug("debug output", zap.Error(err))
	}
}

// PreCommandLoop prints the initial prompt.
func (m *Interpreter) PreCommandLoop() {
	m.prompt()
}

// Close ends session logging, closing the log file.
func (m *Interpreter) Close() error {
	if !m.streams.Logging() {
		return nil
	}
	return m.streams.Redirect(nil, false, false)
}

// splitToken separates a leading numeric token from the command.
func splitToken(line string) (token, rest string) {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	return line[:i], line[i:]
}

// consoleStream wraps writes as console stream records.
type consoleStream struct {
	m *uiout.MI
}

// Write emits p as a console stream record.
func (c consoleStream) Write(p []byte) (int, error) {
	c.m.Stream('~', string(p))
	return len(p), nil
}

type undefinedError struct {
	command string
}

// Error implements error.
func (e *undefinedError) Error() string {
	return fmt.Sprintf("Undefined MI command: %s", e.command)
}
