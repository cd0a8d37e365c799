package interp

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/dshills/dbgfront/internal/uiout"
)

// journal collects calls from every fake interpreter in a test, in order.
type journal struct {
	entries []string
}

func (j *journal) add(format string, args ...any) {
	j.entries = append(j.entries, fmt.Sprintf(format, args...))
}

func (j *journal) count(entry string) int {
	n := 0
	for _, e := range j.entries {
		if e == entry {
			n++
		}
	}
	return n
}

func (j *journal) reset() { j.entries = nil }

type logCall struct {
	logfile         io.Writer
	loggingRedirect bool
	debugRedirect   bool
}

// fakeInterp records lifecycle and notification calls.
type fakeInterp struct {
	Base
	j       *journal
	ui      *UI
	out     *uiout.CLI
	buf     bytes.Buffer
	initErr error
	execErr error
	panicOn EventKind
	logs    []logCall
	closed  bool
}

func (f *fakeInterp) Init(topLevel bool) error {
	f.j.add("%s.init(%v)", f.Name(), topLevel)
	return f.initErr
}

func (f *fakeInterp) Resume()  { f.j.add("%s.resume", f.Name()) }
func (f *fakeInterp) Suspend() { f.j.add("%s.suspend", f.Name()) }

func (f *fakeInterp) Exec(command string) error {
	f.j.add("%s.exec(%s)", f.Name(), command)
	if f.ui.CommandInterpreter() != Interpreter(f) {
		f.j.add("%s.wrong-command-interp", f.Name())
	}
	return f.execErr
}

func (f *fakeInterp) UIOut() uiout.Out { return f.out }

func (f *fakeInterp) SetLogging(logfile io.Writer, loggingRedirect, debugRedirect bool) error {
	f.logs = append(f.logs, logCall{logfile, loggingRedirect, debugRedirect})
	return nil
}

func (f *fakeInterp) Close() error {
	f.closed = true
	f.j.add("%s.close", f.Name())
	return nil
}

func (f *fakeInterp) hook(kind EventKind, detail string) {
	if f.panicOn == kind {
		panic("hook failure")
	}
	f.j.add("%s.%s%s", f.Name(), kind, detail)
}

func (f *fakeInterp) OnSignalReceived(sig Signal) { f.hook(EventSignalReceived, ":"+sig.Name()) }
func (f *fakeInterp) OnSignalExited(sig Signal)   { f.hook(EventSignalExited, ":"+sig.Name()) }
func (f *fakeInterp) OnNormalStop(ev *StopEvent, printFrame bool) {
	f.hook(EventNormalStop, fmt.Sprintf(":%s:%v", ev.Reason, printFrame))
}
func (f *fakeInterp) OnExited(status int)  { f.hook(EventExited, fmt.Sprintf(":%d", status)) }
func (f *fakeInterp) OnNoHistory()         { f.hook(EventNoHistory, "") }
func (f *fakeInterp) OnSyncExecutionDone() { f.hook(EventSyncExecutionDone, "") }
func (f *fakeInterp) OnCommandError()      { f.hook(EventCommandError, "") }
func (f *fakeInterp) OnUserSelectedContextChanged(sel Selection) {
	f.hook(EventUserContextChanged, ":"+sel.String())
}
func (f *fakeInterp) OnNewThread(t *Thread) { f.hook(EventNewThread, ":"+t.ID()) }
func (f *fakeInterp) OnThreadExited(t *Thread, silent bool) {
	f.hook(EventThreadExited, fmt.Sprintf(":%s:%v", t.ID(), silent))
}
func (f *fakeInterp) OnInferiorAdded(inf *Inferior) {
	f.hook(EventInferiorAdded, fmt.Sprintf(":%d", inf.Num))
}
func (f *fakeInterp) OnInferiorAppeared(inf *Inferior) {
	f.hook(EventInferiorAppeared, fmt.Sprintf(":%d", inf.Num))
}

var errNoTerminal = errors.New("no terminal")

// fixture is a registry of fake interpreter types sharing one journal.
type fixture struct {
	j        *journal
	reg      *Registry
	dir      *Directory
	initErrs map[string]error
	panics   map[string]EventKind
}

func newFixture(names ...string) *fixture {
	fx := &fixture{
		j:        &journal{},
		reg:      NewRegistry(),
		initErrs: make(map[string]error),
		panics:   make(map[string]EventKind),
	}
	for _, name := range names {
		fx.reg.Register(name, fx.factory)
	}
	fx.dir = NewDirectory(fx.reg)
	return fx
}

func (fx *fixture) factory(name string, ui *UI) Interpreter {
	f := &fakeInterp{
		Base:    NewBase(name),
		j:       fx.j,
		ui:      ui,
		initErr: fx.initErrs[name],
		panicOn: fx.panics[name],
	}
	f.out = uiout.NewCLI(&f.buf)
	return f
}

func fake(t interface{ Fatalf(string, ...any) }, it Interpreter) *fakeInterp {
	f, ok := it.(*fakeInterp)
	if !ok {
		t.Fatalf("interpreter %T is not a fake", it)
	}
	return f
}
