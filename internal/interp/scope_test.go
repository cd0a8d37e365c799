package interp

import (
	"errors"
	"reflect"
	"testing"
)

func TestScope_RestoresPrevious(t *testing.T) {
	fx := newFixture(Console, MI2)
	ui := fx.dir.NewUI()
	_ = ui.SetTopLevel(Console)
	console := ui.Current()
	fx.j.reset()

	s, err := ui.Enter(MI2)
	if err != nil {
		t.Fatalf("Enter: %v", err)
	}
	if !ui.IsNamed(MI2) || s.Interpreter().Name() != MI2 {
		t.Fatal("Enter did not switch to mi2")
	}
	if err := s.Restore(); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if ui.Current() != console {
		t.Error("console is not current after Restore")
	}
	want := []string{
		"mi2.init(false)", "console.suspend", "mi2.resume",
		"mi2.suspend", "console.resume",
	}
	if !reflect.DeepEqual(fx.j.entries, want) {
		t.Errorf("calls = %v, want %v", fx.j.entries, want)
	}
	if fx.j.count("console.resume")-fx.j.count("console.suspend") != 0 {
		t.Error("console suspend/resume not balanced")
	}
}

func TestScope_NestedLIFO(t *testing.T) {
	fx := newFixture(Console, MI2, MI3)
	ui := fx.dir.NewUI()
	_ = ui.SetTopLevel(Console)
	console := ui.Current()

	g1, err := ui.Enter(MI2)
	if err != nil {
		t.Fatalf("Enter g1: %v", err)
	}
	g2, err := ui.Enter(MI3)
	if err != nil {
		t.Fatalf("Enter g2: %v", err)
	}
	if ui.ScopeDepth() != 2 {
		t.Fatalf("depth = %d", ui.ScopeDepth())
	}

	if err := g1.Restore(); !errors.Is(err, ErrScopeOrder) {
		t.Fatalf("out-of-order Restore = %v, want ErrScopeOrder", err)
	}
	if !ui.IsNamed(MI3) {
		t.Fatal("out-of-order Restore changed the current interpreter")
	}

	if err := g2.Restore(); err != nil {
		t.Fatalf("Restore g2: %v", err)
	}
	if !ui.IsNamed(MI2) {
		t.Errorf("after g2: current = %s, want mi2", ui.Current().Name())
	}
	if err := g1.Restore(); err != nil {
		t.Fatalf("Restore g1: %v", err)
	}
	if ui.Current() != console || ui.ScopeDepth() != 0 {
		t.Error("nested scopes did not restore the console")
	}
}

func TestScope_RestoreTwice(t *testing.T) {
	fx := newFixture(Console, MI2)
	ui := fx.dir.NewUI()
	_ = ui.SetTopLevel(Console)

	s, _ := ui.Enter(MI2)
	if err := s.Restore(); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if err := s.Restore(); !errors.Is(err, ErrScopeClosed) {
		t.Errorf("second Restore = %v, want ErrScopeClosed", err)
	}
}

func TestScope_EnterFailureOpensNothing(t *testing.T) {
	fx := newFixture(Console, TUI)
	fx.initErrs[TUI] = errNoTerminal
	ui := fx.dir.NewUI()
	_ = ui.SetTopLevel(Console)

	if _, err := ui.Enter(TUI); !errors.Is(err, ErrInitFailed) {
		t.Fatalf("Enter = %v", err)
	}
	if _, err := ui.Enter("bogus"); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("Enter = %v", err)
	}
	if ui.ScopeDepth() != 0 || !ui.IsNamed(Console) {
		t.Error("failed Enter changed the UI")
	}
}

func TestScope_RestoreToNoCurrent(t *testing.T) {
	fx := newFixture(MI2)
	ui := fx.dir.NewUI()

	s, err := ui.Enter(MI2)
	if err != nil {
		t.Fatalf("Enter: %v", err)
	}
	if err := s.Restore(); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if ui.Current() != nil {
		t.Error("expected no current interpreter")
	}
	if fx.j.count("mi2.suspend") != 1 {
		t.Error("mi2 was not suspended")
	}
}

func TestWithInterpreter_RestoresOnError(t *testing.T) {
	fx := newFixture(Console, MI2)
	ui := fx.dir.NewUI()
	_ = ui.SetTopLevel(Console)

	boom := errors.New("boom")
	err := ui.WithInterpreter(MI2, func(it Interpreter) error {
		if !ui.IsNamed(MI2) || it.Name() != MI2 {
			t.Error("fn did not run with mi2 current")
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want boom", err)
	}
	if !ui.IsNamed(Console) {
		t.Error("console not restored after error")
	}
}

func TestWithInterpreter_RestoresOnPanic(t *testing.T) {
	fx := newFixture(Console, MI2)
	ui := fx.dir.NewUI()
	_ = ui.SetTopLevel(Console)

	func() {
		defer func() {
			if recover() == nil {
				t.Error("panic was swallowed")
			}
		}()
		_ = ui.WithInterpreter(MI2, func(Interpreter) error {
			panic("command fault")
		})
	}()

	if !ui.IsNamed(Console) || ui.ScopeDepth() != 0 {
		t.Error("console not restored after panic")
	}
}

func TestWithInterpreter_Reentrant(t *testing.T) {
	fx := newFixture(Console, MI2, MI3)
	ui := fx.dir.NewUI()
	_ = ui.SetTopLevel(Console)

	var seen []string
	err := ui.WithInterpreter(MI2, func(Interpreter) error {
		seen = append(seen, ui.Current().Name())
		err := ui.WithInterpreter(MI3, func(Interpreter) error {
			seen = append(seen, ui.Current().Name())
			return nil
		})
		seen = append(seen, ui.Current().Name())
		return err
	})
	if err != nil {
		t.Fatalf("WithInterpreter: %v", err)
	}
	seen = append(seen, ui.Current().Name())

	want := []string{MI2, MI3, MI2, Console}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("current sequence = %v, want %v", seen, want)
	}
}
