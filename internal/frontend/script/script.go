// Package script implements the Lua-scripted interpreter.
//
// Exec runs its argument as a Lua chunk. Notifications call global Lua
// functions named after the event, when the script defines them:
//
//	function on_normal_stop(ev, print_frame)
//	  print("stopped in " .. ev.func)
//	end
//
// The dbg module gives scripts access to the command engine:
//
//	dbg.execute("break main")
//	print(dbg.interpreter())
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/dshills/dbgfront/internal/interp"
	"github.com/dshills/dbgfront/internal/uiout"
)

// ErrNotInitialized is returned by Exec before Init.
var ErrNotInitialized = errors.New("lua state not initialized")

// Options configures Lua interpreters.
type Options struct {
	// Script is loaded by Init when set.
	Script string

	// Timeout bounds each chunk and hook call. Zero means no limit.
	Timeout time.Duration
}

// Interpreter runs Lua code against the debugger.
type Interpreter struct {
	interp.Base

	ui      *interp.UI
	opts    Options
	logger  *zap.Logger
	streams *uiout.Streams
	out     *uiout.CLI
	L       *lua.LState
}

// NewFactory returns an interp.Factory for Lua interpreters using opts.
func NewFactory(opts Options) interp.Factory {
	return func(name string, ui *interp.UI) interp.Interpreter {
		streams := uiout.NewStreams(ui.Out(), ui.Err())
		return &Interpreter{
			Base:    interp.NewBase(name),
			ui:      ui,
			opts:    opts,
			logger:  ui.Logger().Named(name),
			streams: streams,
			out:     uiout.NewCLI(streams.Out),
		}
	}
}

// Register adds the Lua type to reg.
func Register(reg *interp.Registry, opts Options) {
	reg.Register(interp.Lua, NewFactory(opts))
}

// Init creates the Lua state with the safe standard libraries and loads
// the configured script.
func (s *Interpreter) Init(bool) error {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	L.SetGlobal("print", L.NewFunction(s.print))
	L.SetGlobal("dbg", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"execute":     s.execute,
		"interpreter": s.interpreter,
	}))
	s.L = L

	if s.opts.Script != "" {
		if err := s.run(func() error { return L.DoFile(s.opts.Script) }); err != nil {
			L.Close()
			s.L = nil
			return fmt.Errorf("load %s: %w", s.opts.Script, err)
		}
	}
	return nil
}

// Resume does nothing.
func (s *Interpreter) Resume() {}

// Suspend does nothing.
func (s *Interpreter) Suspend() {}

// Exec runs command as a Lua chunk.
func (s *Interpreter) Exec(command string) error {
	if s.L == nil {
		return ErrNotInitialized
	}
	err := s.run(func() error { return s.L.DoString(command) })
	if ferr := s.out.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	if err != nil {
		fmt.Fprintln(s.streams.Err, err)
	}
	return err
}

// run executes fn under the configured timeout, converting panics raised
// inside the Lua VM to errors.
func (s *Interpreter) run(fn func() error) (err error) {
	if s.opts.Timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.Timeout)
		defer cancel()
		s.L.SetContext(ctx)
		defer s.L.RemoveContext()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// UIOut returns the sink the script's print goes to.
func (s *Interpreter) UIOut() uiout.Out { return s.out }

// SetLogging tees or redirects script output to logfile.
func (s *Interpreter) SetLogging(logfile io.Writer, loggingRedirect, debugRedirect bool) error {
	err := s.streams.Redirect(logfile, loggingRedirect, debugRedirect)
	s.out.SetWriter(s.streams.Out)
	return err
}

// LogDebug writes text to the debug log stream.
func (s *Interpreter) LogDebug(text string) {
	if _, err := io.WriteString(s.streams.Log, text); err != nil {
		s.logger.Debug("debug output", zap.Error(err))
	}
}

// Close releases the Lua state and ends session logging.
func (s *Interpreter) Close() error {
	if s.L != nil {
		s.L.Close()
		s.L = nil
	}
	if s.streams.Logging() {
		return s.streams.Redirect(nil, false, false)
	}
	return nil
}

// print writes its arguments separated by tabs, like the standard print.
func (s *Interpreter) print(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, n)
	for i := 1; i <= n; i++ {
		parts[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	s.out.Text(strings.Join(parts, "\t") + "\n")
	return 0
}

// execute runs a CLI command. It returns true, or nil and the error
// message.
func (s *Interpreter) execute(L *lua.LState) int {
	command := L.CheckString(1)
	engine := s.ui.Engine()
	if engine == nil {
		L.Push(lua.LNil)
		L.Push(lua.LString("no command engine"))
		return 2
	}
	if err := engine.Execute(s.ui, s.out, command); err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LTrue)
	return 1
}

func (s *Interpreter) interpreter(L *lua.LState) int {
	if cur := s.ui.Current(); cur != nil {
		L.Push(lua.LString(cur.Name()))
	} else {
		L.Push(lua.LNil)
	}
	return 1
}
