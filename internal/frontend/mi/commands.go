package mi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/dbgfront/internal/interp"
)

type handler func(m *Interpreter, args []string) error

// commands maps MI command names, without the leading '-', to handlers.
var commands = map[string]handler{
	"interpreter-exec": (*Interpreter).interpreterExec,
	"gdb-exit":         cli("quit"),
	"gdb-version":      (*Interpreter).gdbVersion,
	"list-features":    (*Interpreter).listFeatures,
	"exec-run":         cli("run"),
	"exec-continue":    cli("continue"),
	"exec-next":        cli("next"),
	"exec-step":        cli("step"),
	"exec-interrupt":   cli("interrupt"),
	"break-insert":     cli("break"),
}

// cli forwards an MI command to the CLI command name with the same
// arguments.
func cli(name string) handler {
	return func(m *Interpreter, args []string) error {
		return m.execCLI(strings.TrimSpace(name + " " + strings.Join(args, " ")))
	}
}

func (m *Interpreter) execMI(line string) error {
	args, err := splitArgs(line[1:])
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return &undefinedError{command: line}
	}
	h, ok := commands[args[0]]
	if !ok {
		return &undefinedError{command: "-" + args[0]}
	}
	return h(m, args[1:])
}

// interpreterExec runs each command argument in the named interpreter,
// which is current for the duration. Output the interpreter prints
// through its result sink is forwarded as console stream records.
func (m *Interpreter) interpreterExec(args []string) error {
	if len(args) < 2 {
		return errors.New("-interpreter-exec: Usage: -interpreter-exec interp command")
	}
	name := args[0]
	if !m.ui.Directory().Registry().Has(name) {
		return fmt.Errorf("-interpreter-exec: could not find interpreter \"%s\"", name)
	}
	return m.ui.WithInterpreter(name, func(it interp.Interpreter) error {
		if out := it.UIOut(); out != nil && it != interp.Interpreter(m) {
			prev := out.Writer()
			out.SetWriter(consoleStream{m.result})
			defer out.SetWriter(prev)
		}
		for _, command := range args[1:] {
			if err := m.ui.Exec(it, command); err != nil {
				return err
			}
		}
		return nil
	})
}

func (m *Interpreter) gdbVersion([]string) error {
	m.result.Text(fmt.Sprintf("dbgfront (MI version %d)\n", m.version))
	return nil
}

func (m *Interpreter) listFeatures([]string) error {
	m.result.BeginList("features")
	m.result.Field("", "interpreter-exec")
	if m.version >= 3 {
		m.result.Field("", "undefined-command-error-code")
	}
	m.result.EndList()
	return nil
}
