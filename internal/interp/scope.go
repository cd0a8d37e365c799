package interp

import "go.uber.org/zap"

// noCopy may be embedded in structs that must not be copied after first
// use; go vet's copylocks check reports copies.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Scope is a temporary switch of a UI's current interpreter. Restore
// switches back to the interpreter that was current when the scope was
// entered.
//
// Scopes on one UI nest: they must be restored in reverse order of entry.
// A Scope must not be copied.
type Scope struct {
	noCopy noCopy

	ui     *UI
	prev   *entry
	it     Interpreter
	closed bool
}

// Enter switches the UI to name and returns the scope that undoes it.
func (ui *UI) Enter(name string) (*Scope, error) {
	prev := ui.current
	if _, err := ui.Switch(name); err != nil {
		return nil, err
	}
	s := &Scope{ui: ui, prev: prev, it: ui.current.it}
	ui.scopes = append(ui.scopes, s)
	return s, nil
}

// Interpreter returns the interpreter the scope switched to.
func (s *Scope) Interpreter() Interpreter { return s.it }

// Restore makes the interpreter that was current before Enter current
// again. If nothing was current, the UI is left with no current
// interpreter. Restoring a scope while a later one is still open returns
// ErrScopeOrder and changes nothing.
func (s *Scope) Restore() error {
	if s.closed {
		return ErrScopeClosed
	}
	ui := s.ui
	if ui.closed {
		s.closed = true
		return nil
	}
	n := len(ui.scopes)
	if n == 0 || ui.scopes[n-1] != s {
		return ErrScopeOrder
	}
	ui.scopes = ui.scopes[:n-1]
	s.closed = true

	if s.prev == nil {
		ui.deactivate()
		return nil
	}
	ui.logger.Debug("scope restore", zap.String("interp", s.prev.it.Name()), zap.Int("depth", n-1))
	ui.activate(s.prev)
	return nil
}

// WithInterpreter runs fn with name as the UI's current interpreter and
// restores the previous one afterwards, including when fn panics.
func (ui *UI) WithInterpreter(name string, fn func(Interpreter) error) (err error) {
	s, err := ui.Enter(name)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := s.Restore(); rerr != nil && err == nil {
			err = rerr
		}
	}()
	return fn(s.it)
}

// ScopeDepth returns the number of open scopes.
func (ui *UI) ScopeDepth() int {
	return len(ui.scopes)
}
