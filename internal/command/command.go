package command

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/dbgfront/internal/interp"
	"github.com/dshills/dbgfront/internal/logging"
	"github.com/dshills/dbgfront/internal/uiout"
)

var (
	// ErrQuit is returned by the quit command.
	ErrQuit = interp.ErrQuit

	// ErrNoTarget is returned by execution commands without a target.
	ErrNoTarget = errors.New("no debug adapter configured")
)

// UndefinedError is returned for an unknown command name.
type UndefinedError struct {
	Name string
}

// Error implements error.
func (e *UndefinedError) Error() string {
	return fmt.Sprintf("Undefined command: \"%s\".  Try \"help\".", e.Name)
}

// Target controls the debuggee.
type Target interface {
	Run(ctx context.Context) error
	Continue(ctx context.Context) error
	Next(ctx context.Context) error
	Step(ctx context.Context) error
	Interrupt(ctx context.Context) error
	Break(ctx context.Context, location string) (int, error)
}

// Options configures a Table.
type Options struct {
	// Target receives execution commands. It may be nil.
	Target Target

	// Program is reported by run.
	Program string

	// LogFile is the default session log file.
	LogFile string

	// Redirect and DebugRedirect are the initial "set logging" flags.
	Redirect      bool
	DebugRedirect bool

	// Rotate configures session log files.
	Rotate logging.RotateOptions

	// Timeout bounds each request to the target. Zero means 30s.
	Timeout time.Duration

	Logger *zap.Logger
}

// Context is passed to a handler.
type Context struct {
	context.Context

	UI    *interp.UI
	Out   uiout.Out
	Args  string
	Table *Table
}

// Printf writes formatted text to the command's output.
func (c *Context) Printf(format string, args ...any) {
	c.Out.Text(fmt.Sprintf(format, args...))
}

// Command is one CLI command.
type Command struct {
	Name    string
	Aliases []string
	Help    string
	Run     func(c *Context) error
}

// Table is a set of commands. It implements interp.Engine.
type Table struct {
	opts     Options
	logger   *zap.Logger
	commands map[string]*Command
	names    []string
	sessions map[string]*session
}

// NewTable creates a table holding the built-in commands.
func NewTable(opts Options) *Table {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.LogFile == "" {
		opts.LogFile = "dbgfront.txt"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	t := &Table{
		opts:     opts,
		logger:   opts.Logger.Named("command"),
		commands: make(map[string]*Command),
		sessions: make(map[string]*session),
	}
	for _, c := range builtins() {
		t.Add(c)
	}
	return t
}

// SetTarget replaces the target execution commands are sent to. A nil
// target makes them fail with ErrNoTarget.
func (t *Table) SetTarget(tg Target) {
	t.opts.Target = tg
}

// Add registers c under its name and aliases, replacing earlier commands
// with the same names.
func (t *Table) Add(c *Command) {
	if _, ok := t.commands[c.Name]; !ok {
		t.names = append(t.names, c.Name)
		sort.Strings(t.names)
	}
	t.commands[c.Name] = c
	for _, a := range c.Aliases {
		t.commands[a] = c
	}
}

// Lookup returns the command named name.
func (t *Table) Lookup(name string) (*Command, bool) {
	c, ok := t.commands[name]
	return c, ok
}

// Names returns the primary command names, sorted.
func (t *Table) Names() []string {
	return append([]string(nil), t.names...)
}

// Execute runs command for ui, writing results to out.
func (t *Table) Execute(ui *interp.UI, out uiout.Out, command string) error {
	name, args := split(command)
	if name == "" {
		return nil
	}
	c, ok := t.commands[name]
	if !ok {
		// "set logging on" and friends are keyed by their first two words.
		sub, rest := split(args)
		if c, ok = t.commands[name+" "+sub]; ok {
			args = rest
		}
	}
	if !ok {
		return &UndefinedError{Name: name}
	}
	t.logger.Debug("execute",
		zap.String("ui", ui.ID()),
		zap.String("command", c.Name),
		zap.String("args", args),
	)
	ctx, cancel := context.WithTimeout(context.Background(), t.opts.Timeout)
	defer cancel()
	return c.Run(&Context{Context: ctx, UI: ui, Out: out, Args: args, Table: t})
}

// split separates the first word of s from the rest.
func split(s string) (word, rest string) {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i+1:])
}
