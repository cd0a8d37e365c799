package console

import (
	"fmt"

	"github.com/dshills/dbgfront/internal/interp"
)

func (c *Interpreter) printf(format string, args ...any) {
	fmt.Fprintf(c.streams.Out, format, args...)
}

func (c *Interpreter) describeInferior() string {
	if c.inferior == nil {
		return "Inferior 1"
	}
	if c.inferior.Pid == 0 {
		return fmt.Sprintf("Inferior %d", c.inferior.Num)
	}
	return fmt.Sprintf("Inferior %d (process %d)", c.inferior.Num, c.inferior.Pid)
}

// OnSignalReceived prints the signal that stopped the program.
func (c *Interpreter) OnSignalReceived(sig interp.Signal) {
	c.printf("\nProgram received signal %s, %s.\n", sig.Name(), sig.Description())
}

// OnSignalExited prints the signal that ended the program.
func (c *Interpreter) OnSignalExited(sig interp.Signal) {
	c.printf("\nProgram terminated with signal %s, %s.\n", sig.Name(), sig.Description())
	c.printf("The program no longer exists.\n")
}

// OnNormalStop prints where the program stopped. The frame line is
// left out unless printFrame is set.
func (c *Interpreter) OnNormalStop(ev *interp.StopEvent, printFrame bool) {
	if !printFrame || ev == nil {
		return
	}
	if ev.Reason == interp.StopBreakpointHit && len(ev.Breakpoints) > 0 {
		if ev.Thread != nil {
			c.printf("\nThread %s hit Breakpoint %d, ", ev.Thread.ID(), ev.Breakpoints[0])
		} else {
			c.printf("\nBreakpoint %d, ", ev.Breakpoints[0])
		}
	}
	if f := ev.Frame; f != nil {
		if f.File != "" {
			c.printf("%s () at %s:%d\n", f.Func, f.File, f.Line)
		} else {
			c.printf("0x%016x in %s ()\n", f.Addr, f.Func)
		}
	}
}

// OnExited prints a non-zero status in octal.
func (c *Interpreter) OnExited(status int) {
	if status == 0 {
		c.printf("[%s exited normally]\n", c.describeInferior())
		return
	}
	c.printf("[%s exited with code %02o]\n", c.describeInferior(), status)
}

// OnNoHistory reports that reverse execution ran out of history.
func (c *Interpreter) OnNoHistory() {
	c.printf("\nNo more reverse-execution history.\n")
}

// OnNewThread announces a thread.
func (c *Interpreter) OnNewThread(t *interp.Thread) {
	if t.LWP != 0 {
		c.printf("[New Thread %s (lwp %d)]\n", t.ID(), t.LWP)
		return
	}
	c.printf("[New Thread %s]\n", t.ID())
}

// OnThreadExited announces a thread exit unless silent is set.
func (c *Interpreter) OnThreadExited(t *interp.Thread, silent bool) {
	if silent {
		return
	}
	if t.LWP != 0 {
		c.printf("[Thread %s (lwp %d) exited]\n", t.ID(), t.LWP)
		return
	}
	c.printf("[Thread %s exited]\n", t.ID())
}

// OnInferiorAdded prints the number of a new inferior.
func (c *Interpreter) OnInferiorAdded(inf *interp.Inferior) {
	c.inferior = inf
	c.printf("[New inferior %d]\n", inf.Num)
}

// OnInferiorAppeared remembers inf for later exit messages.
func (c *Interpreter) OnInferiorAppeared(inf *interp.Inferior) {
	c.inferior = inf
}
