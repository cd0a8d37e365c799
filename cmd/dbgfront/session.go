package main

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/dshills/dbgfront/internal/frontend/tui"
	"github.com/dshills/dbgfront/internal/interp"
	"github.com/dshills/dbgfront/internal/remote"
	"github.com/dshills/dbgfront/internal/target"
)

// session is the command loop of the terminal UI. Commands, adapter
// events, remote UI work and interrupts are all handled on the loop's
// goroutine.
type session struct {
	ui         *interp.UI
	bridge     *target.Bridge
	remote     *remote.Server
	interrupts <-chan os.Signal
	logger     *zap.Logger

	// events is signalled when the bridge or the remote server has
	// queued work.
	events chan struct{}
}

func newSession(ui *interp.UI, bridge *target.Bridge, srv *remote.Server, interrupts <-chan os.Signal, logger *zap.Logger) *session {
	return &session{
		ui:         ui,
		bridge:     bridge,
		remote:     srv,
		interrupts: interrupts,
		logger:     logger,
		events:     make(chan struct{}, 1),
	}
}

// run reads and executes commands until quit, end of input or ctx is
// done.
func (s *session) run(ctx context.Context) error {
	t, full := s.ui.TopLevel().(*tui.Interpreter)
	var wake func()
	if full {
		wake = func() { _ = t.Wake() }
	}
	go s.forward(ctx, wake)

	s.pump(ctx)
	if full {
		return s.runScreen(ctx, t)
	}
	return s.runLines(ctx)
}

// forward turns bridge and remote readiness into session events, calling
// wake so a screen blocked on input notices.
func (s *session) forward(ctx context.Context, wake func()) {
	var events, work <-chan struct{}
	if s.bridge != nil {
		events = s.bridge.Ready()
	}
	if s.remote != nil {
		work = s.remote.Ready()
	}
	for {
		select {
		case <-ctx.Done():
			if wake != nil {
				wake()
			}
			return
		case <-events:
		case <-work:
		}
		select {
		case s.events <- struct{}{}:
		default:
		}
		if wake != nil {
			wake()
		}
	}
}

type lineResult struct {
	line string
	err  error
	eof  bool
}

func (s *session) runLines(ctx context.Context) error {
	lines := make(chan lineResult)
	go scan(ctx, s.ui.In(), lines)

	s.ui.PreCommandLoop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.events:
			if s.pump(ctx) == 0 {
				continue
			}
		case <-s.interrupts:
			s.interrupt(ctx)
		case r := <-lines:
			if r.eof {
				return r.err
			}
			if err := s.exec(r.line); err != nil {
				if errors.Is(err, interp.ErrQuit) {
					return nil
				}
				return err
			}
			if err := s.wait(ctx); err != nil {
				return err
			}
		}
		s.ui.DisplayPrompt()
	}
}

func scan(ctx context.Context, in io.Reader, lines chan<- lineResult) {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		select {
		case lines <- lineResult{line: sc.Text()}:
		case <-ctx.Done():
			return
		}
	}
	select {
	case lines <- lineResult{err: sc.Err(), eof: true}:
	case <-ctx.Done():
	}
}

// runScreen drives the full-screen interpreter. Execution commands do
// not block the command line there; events are delivered as they come.
func (s *session) runScreen(ctx context.Context, t *tui.Interpreter) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.pump(ctx)
		line, err := t.ReadCommand()
		switch {
		case errors.Is(err, tui.ErrWoken):
			continue
		case errors.Is(err, tui.ErrInterrupt):
			s.interrupt(ctx)
			continue
		case errors.Is(err, tui.ErrQuit):
			return nil
		case err != nil:
			return err
		}
		if err := s.exec(line); errors.Is(err, interp.ErrQuit) {
			return nil
		}
	}
}

// exec runs line on the current interpreter. Only ErrQuit is returned;
// command errors have already been reported by the interpreter.
func (s *session) exec(line string) error {
	err := s.ui.ExecCurrent(line)
	if errors.Is(err, interp.ErrQuit) {
		return err
	}
	if err != nil {
		s.logger.Debug("command failed", zap.String("command", line), zap.Error(err))
	}
	return nil
}

// wait blocks while an execution command runs, delivering events and
// forwarding interrupts to the program.
func (s *session) wait(ctx context.Context) error {
	if s.bridge == nil {
		return nil
	}
	for {
		s.pump(ctx)
		if !s.bridge.Executing() {
			return nil
		}
		if err := s.bridge.Err(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.interrupts:
			s.interrupt(ctx)
		case <-s.events:
		}
	}
}

// pump runs remote UI work and delivers adapter events. It returns the
// number of adapter events, the only ones that print on this UI.
func (s *session) pump(ctx context.Context) int {
	if s.remote != nil {
		s.remote.Process()
	}
	if s.bridge == nil {
		return 0
	}
	return s.bridge.Pump(ctx)
}

// interrupt pauses the program, or prints Quit when there is nothing to
// interrupt.
func (s *session) interrupt(ctx context.Context) {
	if s.bridge != nil {
		err := s.bridge.Interrupt(ctx)
		if err == nil {
			return
		}
		if !errors.Is(err, target.ErrNotStarted) {
			s.logger.Warn("interrupt", zap.Error(err))
			return
		}
	}
	if it := s.ui.Current(); it != nil {
		out := it.UIOut()
		out.Text("Quit\n")
		if err := out.Flush(); err != nil {
			s.logger.Debug("flush", zap.Error(err))
		}
	}
}
