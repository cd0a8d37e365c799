package script

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dshills/dbgfront/internal/interp"
	"github.com/dshills/dbgfront/internal/uiout"
)

type fixture struct {
	ui       *interp.UI
	out      bytes.Buffer
	commands []string
	logs     *observer.ObservedLogs
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	fx := &fixture{}
	core, logs := observer.New(zap.WarnLevel)
	fx.logs = logs

	reg := interp.NewRegistry()
	Register(reg, opts)
	engine := interp.EngineFunc(func(_ *interp.UI, out uiout.Out, cmd string) error {
		fx.commands = append(fx.commands, cmd)
		if cmd == "bad" {
			return errors.New("bad command")
		}
		return nil
	})
	dir := interp.NewDirectory(reg, interp.WithLogger(zap.New(core)))
	fx.ui = dir.NewUI(
		interp.WithStreams(strings.NewReader(""), &fx.out, &fx.out),
		interp.WithEngine(engine),
	)
	if err := fx.ui.SetTopLevel(interp.Lua); err != nil {
		t.Fatalf("SetTopLevel: %v", err)
	}
	return fx
}

func TestExecChunk(t *testing.T) {
	fx := newFixture(t, Options{})
	if err := fx.ui.ExecCurrent(`print("hello", 1 + 2)`); err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if got := fx.out.String(); got != "hello\t3\n" {
		t.Errorf("output = %q", got)
	}
}

func TestExecSyntaxError(t *testing.T) {
	fx := newFixture(t, Options{})
	if err := fx.ui.ExecCurrent(`print(`); err == nil {
		t.Fatal("expected syntax error")
	}
	if fx.out.Len() == 0 {
		t.Error("error not printed")
	}
}

func TestUnsafeLibrariesAbsent(t *testing.T) {
	fx := newFixture(t, Options{})
	if err := fx.ui.ExecCurrent(`print(type(os), type(io), type(require))`); err != nil {
		t.Fatal(err)
	}
	if got := fx.out.String(); got != "nil\tnil\tnil\n" {
		t.Errorf("output = %q", got)
	}
}

func TestDbgModule(t *testing.T) {
	fx := newFixture(t, Options{})
	err := fx.ui.ExecCurrent(`
local ok = dbg.execute("break main")
local nok, msg = dbg.execute("bad")
print(ok, nok, msg, dbg.interpreter())
`)
	if err != nil {
		t.Fatal(err)
	}
	if got := fx.out.String(); got != "true\tnil\tbad command\tlua\n" {
		t.Errorf("output = %q", got)
	}
	if strings.Join(fx.commands, ",") != "break main,bad" {
		t.Errorf("commands = %v", fx.commands)
	}
}

func TestHooksCallLuaFunctions(t *testing.T) {
	fx := newFixture(t, Options{})
	err := fx.ui.ExecCurrent(`
function on_new_thread(t) print("thread", t.inferior .. "." .. t.num) end
function on_normal_stop(ev, pf) print(ev.reason, ev.func, ev.line, ev.breakpoints[1], pf) end
function on_exited(status) print("exit", status) end
function on_user_selected_context_changed(what) print("sel", what) end
`)
	if err != nil {
		t.Fatal(err)
	}
	dir := fx.ui.Directory()
	dir.NotifyNewThread(&interp.Thread{InferiorNum: 1, Num: 2})
	dir.NotifyNormalStop(&interp.StopEvent{
		Reason:      interp.StopBreakpointHit,
		Breakpoints: []int{4},
		Frame:       &interp.Frame{Func: "main", Line: 9},
	}, true)
	dir.NotifyExited(1)
	dir.NotifyUserSelectedContextChanged(interp.SelectedThread)
	// undefined hooks are skipped
	dir.NotifyNoHistory()

	want := "thread\t1.2\nbreakpoint-hit\tmain\t9\t4\ttrue\nexit\t1\nsel\tthread\n"
	if got := fx.out.String(); got != want {
		t.Errorf("output = %q\nwant     %q", got, want)
	}
}

func TestHookErrorIsLogged(t *testing.T) {
	fx := newFixture(t, Options{})
	if err := fx.ui.ExecCurrent(`function on_no_history() error("boom") end`); err != nil {
		t.Fatal(err)
	}
	fx.ui.Directory().NotifyNoHistory()
	if fx.logs.FilterMessage("lua hook failed").Len() != 1 {
		t.Errorf("logs = %v", fx.logs.All())
	}
}

func TestTimeout(t *testing.T) {
	fx := newFixture(t, Options{Timeout: 50 * time.Millisecond})
	if err := fx.ui.ExecCurrent(`while true do end`); err == nil {
		t.Fatal("runaway chunk was not stopped")
	}
	// the state is still usable afterwards
	fx.out.Reset()
	if err := fx.ui.ExecCurrent(`print("ok")`); err != nil {
		t.Fatal(err)
	}
}

func TestScriptLoadedOnInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "init.lua")
	if err := os.WriteFile(path, []byte(`greeting = "hi"`), 0o644); err != nil {
		t.Fatal(err)
	}
	fx := newFixture(t, Options{Script: path})
	if err := fx.ui.ExecCurrent(`print(greeting)`); err != nil {
		t.Fatal(err)
	}
	if fx.out.String() != "hi\n" {
		t.Errorf("output = %q", fx.out.String())
	}
}

func TestBadScriptFailsInit(t *testing.T) {
	reg := interp.NewRegistry()
	Register(reg, Options{Script: filepath.Join(t.TempDir(), "missing.lua")})
	ui := interp.NewDirectory(reg).NewUI(interp.WithStreams(nil, &bytes.Buffer{}, &bytes.Buffer{}))
	if err := ui.SetTopLevel(interp.Lua); !errors.Is(err, interp.ErrInitFailed) {
		t.Fatalf("SetTopLevel error = %v, want ErrInitFailed", err)
	}
	if ui.Current() != nil {
		t.Error("current set after failed init")
	}
}

func TestUninitializedHooksAreSafe(t *testing.T) {
	reg := interp.NewRegistry()
	Register(reg, Options{})
	ui := interp.NewDirectory(reg).NewUI(interp.WithStreams(nil, &bytes.Buffer{}, &bytes.Buffer{}))
	if _, err := ui.Lookup(interp.Lua); err != nil {
		t.Fatal(err)
	}
	ui.Directory().NotifyNewThread(&interp.Thread{})
	it, _ := ui.Lookup(interp.Lua)
	if err := it.Exec("x = 1"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Exec error = %v, want ErrNotInitialized", err)
	}
}
