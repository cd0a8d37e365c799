package interp

import (
	"reflect"
	"sort"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dshills/dbgfront/internal/metrics"
)

func TestNotify_AllInterpretersAllUIs(t *testing.T) {
	fx := newFixture(Console, MI2, MI3)
	a := fx.dir.NewUI(WithID("a"))
	b := fx.dir.NewUI(WithID("b"))

	_ = a.SetTopLevel(Console)
	_, _ = a.Switch(MI2)
	_ = b.SetTopLevel(MI3)
	// Created but never initialized: still notified.
	_, _ = b.Lookup(Console)
	fx.j.reset()

	fx.dir.NotifyExited(3)

	want := []string{
		"console.exited:3", "mi2.exited:3",
		"mi3.exited:3", "console.exited:3",
	}
	if !reflect.DeepEqual(fx.j.entries, want) {
		t.Errorf("calls = %v, want %v", fx.j.entries, want)
	}
}

func TestNotify_NeverInstantiatedGetsNothing(t *testing.T) {
	fx := newFixture(Console, MI2)
	ui := fx.dir.NewUI()
	_ = ui.SetTopLevel(Console)
	fx.j.reset()

	fx.dir.NotifyNoHistory()

	if !reflect.DeepEqual(fx.j.entries, []string{"console.no-history"}) {
		t.Errorf("calls = %v", fx.j.entries)
	}
}

func TestNotify_LateCreatedInterpreterReceives(t *testing.T) {
	fx := newFixture(Console, MI2)
	ui := fx.dir.NewUI()
	_ = ui.SetTopLevel(Console)
	fx.dir.NotifySyncExecutionDone()
	_, _ = ui.Lookup(MI2)
	fx.j.reset()

	fx.dir.NotifySyncExecutionDone()

	want := []string{"console.sync-execution-done", "mi2.sync-execution-done"}
	if !reflect.DeepEqual(fx.j.entries, want) {
		t.Errorf("calls = %v, want %v", fx.j.entries, want)
	}
}

func TestNotify_EveryEventKind(t *testing.T) {
	fx := newFixture(Console)
	ui := fx.dir.NewUI()
	_ = ui.SetTopLevel(Console)
	fx.j.reset()

	th := &Thread{GlobalNum: 1, Num: 1, InferiorNum: 1}
	inf := &Inferior{Num: 1, Pid: 42}
	fx.dir.NotifySignalReceived(SignalINT)
	fx.dir.NotifySignalExited(SignalSEGV)
	fx.dir.NotifyNormalStop(&StopEvent{Reason: StopBreakpointHit}, true)
	fx.dir.NotifyExited(0)
	fx.dir.NotifyNoHistory()
	fx.dir.NotifySyncExecutionDone()
	fx.dir.NotifyCommandError()
	fx.dir.NotifyUserSelectedContextChanged(SelectedThread | SelectedFrame)
	fx.dir.NotifyNewThread(th)
	fx.dir.NotifyThreadExited(th, true)
	fx.dir.NotifyInferiorAdded(inf)
	fx.dir.NotifyInferiorAppeared(inf)

	want := []string{
		"console.signal-received:SIGINT",
		"console.signal-exited:SIGSEGV",
		"console.normal-stop:breakpoint-hit:true",
		"console.exited:0",
		"console.no-history",
		"console.sync-execution-done",
		"console.command-error",
		"console.user-selected-context-changed:thread|frame",
		"console.new-thread:1.1",
		"console.thread-exited:1.1:true",
		"console.inferior-added:1",
		"console.inferior-appeared:1",
	}
	if !reflect.DeepEqual(fx.j.entries, want) {
		t.Errorf("calls =\n%v\nwant\n%v", fx.j.entries, want)
	}
}

func TestNotify_PanickingHookIsIsolated(t *testing.T) {
	fx := newFixture(Console, MI2, MI3)
	fx.panics[MI2] = EventNewThread

	core, logs := observer.New(zap.ErrorLevel)
	reg := prometheus.NewRegistry()
	m := metrics.MustNew(reg)
	fx.dir = NewDirectory(fx.reg, WithLogger(zap.New(core)), WithMetrics(m))

	ui := fx.dir.NewUI()
	_ = ui.SetTopLevel(Console)
	_, _ = ui.Lookup(MI2)
	_, _ = ui.Lookup(MI3)
	fx.j.reset()

	fx.dir.NotifyNewThread(&Thread{Num: 1, InferiorNum: 1})

	want := []string{"console.new-thread:1.1", "mi3.new-thread:1.1"}
	if !reflect.DeepEqual(fx.j.entries, want) {
		t.Errorf("calls = %v, want %v", fx.j.entries, want)
	}
	if logs.FilterMessage("notification hook panicked").Len() != 1 {
		t.Errorf("expected one panic log entry, got %v", logs.All())
	}
	if got := testutil.ToFloat64(m.NotifyPanics.WithLabelValues("new-thread", MI2)); got != 1 {
		t.Errorf("panic counter = %v", got)
	}
	if got := testutil.ToFloat64(m.Notifications.WithLabelValues("new-thread")); got != 2 {
		t.Errorf("delivered counter = %v", got)
	}
}

// activeWatcher reports which UI is active while it is notified.
type activeWatcher struct {
	fakeInterp
	seen *[]string
}

func (p *activeWatcher) OnExited(int) {
	*p.seen = append(*p.seen, p.ui.Directory().Active().ID())
}

func TestNotify_ActiveUIFollowsIteration(t *testing.T) {
	var seen []string
	reg := NewRegistry()
	reg.Register(Console, func(name string, ui *UI) Interpreter {
		return &activeWatcher{fakeInterp: fakeInterp{Base: NewBase(name), j: &journal{}, ui: ui}, seen: &seen}
	})
	dir := NewDirectory(reg)
	a := dir.NewUI(WithID("a"))
	b := dir.NewUI(WithID("b"))
	_, _ = a.Lookup(Console)
	_, _ = b.Lookup(Console)
	_ = dir.SetActive(b)

	dir.NotifyExited(0)

	if !reflect.DeepEqual(seen, []string{"a", "b"}) {
		t.Errorf("active during notify = %v", seen)
	}
	if dir.Active() != b {
		t.Error("active UI not restored after broadcast")
	}
}

func TestNotify_StableOrder(t *testing.T) {
	fx := newFixture(Console, MI2, MI3, MI4)
	ui := fx.dir.NewUI()
	for _, name := range []string{MI4, Console, MI3, MI2} {
		_, _ = ui.Lookup(name)
	}

	var first []string
	for i := 0; i < 3; i++ {
		fx.j.reset()
		fx.dir.NotifyNoHistory()
		if i == 0 {
			first = append(first, fx.j.entries...)
			continue
		}
		if !reflect.DeepEqual(fx.j.entries, first) {
			t.Fatalf("order changed: %v vs %v", fx.j.entries, first)
		}
	}
	if sort.StringsAreSorted(first) {
		t.Error("expected creation order, not name order")
	}
}
