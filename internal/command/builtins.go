package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/dbgfront/internal/interp"
)

func builtins() []*Command {
	return []*Command{
		{Name: "echo", Help: "Print a constant string.", Run: echo},
		{Name: "help", Aliases: []string{"h"}, Help: "List commands.", Run: help},
		{Name: "quit", Aliases: []string{"q"}, Help: "Exit the debugger.", Run: quit},
		{Name: "interpreter-exec", Help: "Execute commands in another interpreter.", Run: interpreterExec},
		{Name: "show interpreter", Help: "Show the current and top-level interpreters.", Run: showInterpreter},
		{Name: "complete", Help: "List the completions for the rest of the line.", Run: complete},
		{Name: "set logging", Help: "Set logging options.", Run: setLogging},
		{Name: "show logging", Help: "Show logging options.", Run: showLogging},
		{Name: "run", Aliases: []string{"r"}, Help: "Start the program.", Run: run},
		{Name: "continue", Aliases: []string{"c"}, Help: "Continue the program.", Run: forward(Target.Continue)},
		{Name: "next", Aliases: []string{"n"}, Help: "Step over one line.", Run: forward(Target.Next)},
		{Name: "step", Aliases: []string{"s"}, Help: "Step into one line.", Run: forward(Target.Step)},
		{Name: "interrupt", Help: "Interrupt the program.", Run: forward(Target.Interrupt)},
		{Name: "break", Aliases: []string{"b"}, Help: "Set a breakpoint at a function.", Run: breakpoint},
	}
}

func echo(c *Context) error {
	s, err := unescape(c.Args)
	if err != nil {
		return err
	}
	c.Out.Text(s)
	return nil
}

// unescape expands C escapes; a trailing backslash is dropped.
func unescape(s string) (string, error) {
	s = strings.TrimSuffix(s, `\`)
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	quoted := `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	out, err := strconv.Unquote(quoted)
	if err != nil {
		return "", fmt.Errorf("bad escape in %q", s)
	}
	return out, nil
}

func help(c *Context) error {
	for _, name := range c.Table.Names() {
		cmd, _ := c.Table.Lookup(name)
		c.Printf("%s -- %s\n", name, cmd.Help)
	}
	return nil
}

func quit(*Context) error {
	return ErrQuit
}

// interpreterExec runs each command argument in the named interpreter,
// which is current for the duration.
func interpreterExec(c *Context) error {
	args, err := buildArgv(c.Args)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return errors.New("usage: interpreter-exec INTERPRETER COMMAND...")
	}
	name := args[0]
	if !c.UI.Directory().Registry().Has(name) {
		return fmt.Errorf("Could not find interpreter \"%s\".", name)
	}
	return c.UI.WithInterpreter(name, func(it interp.Interpreter) error {
		for _, command := range args[1:] {
			if err := c.UI.Exec(it, command); err != nil {
				return fmt.Errorf("error in command: \"%s\": %w", command, err)
			}
		}
		return nil
	})
}

func showInterpreter(c *Context) error {
	if cur := c.UI.Current(); cur != nil {
		c.Printf("The current interpreter is \"%s\".\n", cur.Name())
	}
	if top := c.UI.TopLevel(); top != nil {
		c.Printf("The top-level interpreter is \"%s\".\n", top.Name())
	}
	return nil
}

// complete lists completions; only interpreter names are completed.
func complete(c *Context) error {
	name, rest := split(c.Args)
	if name != "interpreter-exec" || strings.Contains(rest, " ") {
		return nil
	}
	for _, m := range c.UI.Directory().CompleteInterpreterNames(rest) {
		c.Printf("%s %s\n", name, m)
	}
	return nil
}

func run(c *Context) error {
	t := c.Table.opts.Target
	if t == nil {
		return ErrNoTarget
	}
	if p := c.Table.opts.Program; p != "" {
		c.Printf("Starting program: %s\n", p)
	}
	return t.Run(c)
}

func forward(fn func(Target, context.Context) error) func(*Context) error {
	return func(c *Context) error {
		t := c.Table.opts.Target
		if t == nil {
			return ErrNoTarget
		}
		return fn(t, c)
	}
}

func breakpoint(c *Context) error {
	t := c.Table.opts.Target
	if t == nil {
		return ErrNoTarget
	}
	n, err := t.Break(c, c.Args)
	if err != nil {
		return err
	}
	c.Printf("Breakpoint %d at %s\n", n, c.Args)
	return nil
}

// buildArgv splits s into words. Double or single quotes group words. A
// backslash escapes the next character; inside quotes it only escapes the
// quote character and itself, other sequences are kept for the command.
func buildArgv(s string) ([]string, error) {
	var (
		args  []string
		cur   strings.Builder
		quote rune
		in    bool
		esc   bool
	)
	for _, r := range s {
		switch {
		case esc:
			if quote != 0 && r != quote && r != '\\' {
				cur.WriteRune('\\')
			}
			cur.WriteRune(r)
			esc = false
		case r == '\\':
			esc = true
			in = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			in = true
		case r == ' ' || r == '\t':
			if in {
				args = append(args, cur.String())
				cur.Reset()
				in = false
			}
		default:
			cur.WriteRune(r)
			in = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote in %q", s)
	}
	if in {
		args = append(args, cur.String())
	}
	return args, nil
}
