package target

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/dshills/dbgfront/internal/interp"
)

// ErrNotStarted is returned by execution commands before Run.
var ErrNotStarted = errors.New("the program is not being run")

// Options configures a Bridge.
type Options struct {
	Program string
	Args    []string
}

// Bridge drives one debuggee through a Client and reports what happens to
// it on a Directory. It is not safe for concurrent use; call it from the
// command loop.
type Bridge struct {
	client *Client
	dir    *interp.Directory
	logger *zap.Logger
	opts   Options

	inferior    *interp.Inferior
	threads     map[int]*interp.Thread
	started     bool
	exited      bool
	sync        bool
	thread      int
	breakpoints []FunctionBreakpoint
	bpIDs       []int
}

// NewBridge creates a bridge reporting to dir and announces inferior 1.
func NewBridge(client *Client, dir *interp.Directory, opts Options) *Bridge {
	b := &Bridge{
		client:   client,
		dir:      dir,
		logger:   dir.Logger().Named("target"),
		opts:     opts,
		inferior: &interp.Inferior{Num: 1, Executable: opts.Program},
		threads:  make(map[int]*interp.Thread),
	}
	dir.NotifyInferiorAdded(b.inferior)
	return b
}

// Inferior returns the debuggee description.
func (b *Bridge) Inferior() *interp.Inferior { return b.inferior }

// Run initializes the adapter and launches the program.
func (b *Bridge) Run(ctx context.Context) error {
	if b.started && !b.exited {
		return errors.New("the program being debugged has been started already")
	}
	if b.opts.Program == "" {
		return errors.New("no executable file specified")
	}
	err := b.client.Request(ctx, "initialize", InitializeArguments{
		ClientID:        "dbgfront",
		ClientName:      "dbgfront",
		AdapterID:       "dbgfront",
		PathFormat:      "path",
		LinesStartAt1:   true,
		ColumnsStartAt1: true,
	}, nil)
	if err != nil {
		return err
	}
	if err := b.client.Request(ctx, "launch", LaunchArguments{Program: b.opts.Program, Args: b.opts.Args}, nil); err != nil {
		return err
	}
	if len(b.breakpoints) > 0 {
		if err := b.sendBreakpoints(ctx); err != nil {
			return err
		}
	}
	if err := b.client.Request(ctx, "configurationDone", nil, nil); err != nil {
		return err
	}
	b.started, b.exited, b.sync = true, false, true
	return nil
}

// Continue resumes every thread.
func (b *Bridge) Continue(ctx context.Context) error {
	return b.resume(ctx, "continue")
}

// Next steps over one line in the selected thread.
func (b *Bridge) Next(ctx context.Context) error {
	return b.resume(ctx, "next")
}

// Step steps into one line in the selected thread.
func (b *Bridge) Step(ctx context.Context) error {
	return b.resume(ctx, "stepIn")
}

func (b *Bridge) resume(ctx context.Context, command string) error {
	if !b.started || b.exited {
		return ErrNotStarted
	}
	if err := b.client.Request(ctx, command, map[string]int{"threadId": b.thread}, nil); err != nil {
		return err
	}
	b.sync = true
	return nil
}

// Interrupt pauses the selected thread.
func (b *Bridge) Interrupt(ctx context.Context) error {
	if !b.started || b.exited {
		return ErrNotStarted
	}
	return b.client.Request(ctx, "pause", map[string]int{"threadId": b.thread}, nil)
}

// Break adds a function breakpoint and returns its number. Before Run the
// breakpoint is remembered and sent when the program starts.
func (b *Bridge) Break(ctx context.Context, location string) (int, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return 0, errors.New("argument required (location)")
	}
	b.breakpoints = append(b.breakpoints, FunctionBreakpoint{Name: location})
	if !b.started || b.exited {
		return len(b.breakpoints), nil
	}
	if err := b.sendBreakpoints(ctx); err != nil {
		b.breakpoints = b.breakpoints[:len(b.breakpoints)-1]
		return 0, err
	}
	return len(b.breakpoints), nil
}

func (b *Bridge) sendBreakpoints(ctx context.Context) error {
	var resp struct {
		Breakpoints []Breakpoint `json:"breakpoints"`
	}
	args := map[string]any{"breakpoints": b.breakpoints}
	if err := b.client.Request(ctx, "setFunctionBreakpoints", args, &resp); err != nil {
		return err
	}
	b.bpIDs = b.bpIDs[:0]
	for _, bp := range resp.Breakpoints {
		b.bpIDs = append(b.bpIDs, bp.ID)
	}
	return nil
}

// number maps an adapter breakpoint id to the user's breakpoint number.
func (b *Bridge) number(id int) int {
	for i, x := range b.bpIDs {
		if x == id {
			return i + 1
		}
	}
	return id
}

// Pump delivers every queued adapter event to the directory and returns
// the number delivered. It never blocks on the adapter except to fetch
// the stack of a stopped thread.
func (b *Bridge) Pump(ctx context.Context) int {
	n := 0
	for {
		ev, ok := b.client.Next()
		if !ok {
			return n
		}
		b.handle(ctx, ev)
		n++
	}
}

// Executing reports whether a run, continue, next or step is waiting for
// the program to stop.
func (b *Bridge) Executing() bool { return b.sync }

// Err returns the error that ended the adapter connection, if any.
func (b *Bridge) Err() error { return b.client.Err() }

// Ready is signalled when adapter events are queued for Pump.
func (b *Bridge) Ready() <-chan struct{} { return b.client.Ready() }

// Wait blocks until at least one event has been delivered, the adapter
// connection fails or ctx is done.
func (b *Bridge) Wait(ctx context.Context) error {
	for {
		if b.Pump(ctx) > 0 {
			return nil
		}
		if err := b.client.Err(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-b.client.Ready():
		}
	}
}

func (b *Bridge) handle(ctx context.Context, ev Event) {
	b.logger.Debug("event", zap.String("event", ev.Event))
	switch ev.Event {
	case "process":
		var body ProcessBody
		if b.decode(ev, &body) {
			b.inferior.Pid = body.SystemProcessID
			if body.Name != "" {
				b.inferior.Executable = body.Name
			}
			b.dir.NotifyInferiorAppeared(b.inferior)
		}
	case "thread":
		var body ThreadBody
		if b.decode(ev, &body) {
			b.onThread(body)
		}
	case "stopped":
		var body StoppedBody
		if b.decode(ev, &body) {
			b.onStopped(ctx, body)
		}
	case "exited":
		var body ExitedBody
		if b.decode(ev, &body) {
			b.exited = true
			b.dir.NotifyExited(body.ExitCode)
			b.syncDone()
		}
	case "terminated":
		if !b.exited {
			b.exited = true
			b.dir.NotifySignalExited(interp.SignalKILL)
			b.syncDone()
		}
	case "output":
		var body OutputBody
		if b.decode(ev, &body) {
			b.output(body)
		}
	}
}

// output shows program output on the active UI's terminal. The adapter's
// own messages are debug output of the current interpreter.
func (b *Bridge) output(body OutputBody) {
	ui := b.dir.Active()
	if ui == nil {
		return
	}
	switch body.Category {
	case "telemetry":
	case "stdout", "stderr":
		if _, err := io.WriteString(ui.Out(), body.Output); err != nil {
			b.logger.Debug("program output", zap.Error(err))
		}
	default:
		ui.LogDebug(body.Output)
	}
}

func (b *Bridge) decode(ev Event, v any) bool {
	if err := json.Unmarshal(ev.Body, v); err != nil {
		b.logger.Warn("bad event body", zap.String("event", ev.Event), zap.Error(err))
		return false
	}
	return true
}

func (b *Bridge) onThread(body ThreadBody) {
	switch body.Reason {
	case "started":
		t := &interp.Thread{
			GlobalNum:   body.ThreadID,
			Num:         len(b.threads) + 1,
			InferiorNum: b.inferior.Num,
		}
		b.threads[body.ThreadID] = t
		if b.thread == 0 {
			b.thread = body.ThreadID
		}
		b.dir.NotifyNewThread(t)
	case "exited":
		t, ok := b.threads[body.ThreadID]
		if !ok {
			return
		}
		delete(b.threads, body.ThreadID)
		b.dir.NotifyThreadExited(t, false)
	}
}

func (b *Bridge) onStopped(ctx context.Context, body StoppedBody) {
	if body.ThreadID != 0 {
		changed := body.ThreadID != b.thread
		b.thread = body.ThreadID
		if changed {
			b.dir.NotifyUserSelectedContextChanged(interp.SelectedThread | interp.SelectedFrame)
		}
	}

	switch body.Reason {
	case "pause":
		b.dir.NotifySignalReceived(interp.SignalINT)
		b.syncDone()
		return
	case "exception":
		sig := interp.SignalSEGV
		if s, ok := interp.ParseSignal(body.Text); ok {
			sig = s
		}
		b.dir.NotifySignalReceived(sig)
		b.syncDone()
		return
	}

	ev := &interp.StopEvent{
		Reason: stopReason(body.Reason),
		Thread: b.threads[body.ThreadID],
		Frame:  b.topFrame(ctx, body.ThreadID),
	}
	for _, id := range body.HitBreakpointIDs {
		ev.Breakpoints = append(ev.Breakpoints, b.number(id))
	}
	b.dir.NotifyNormalStop(ev, true)
	b.syncDone()
}

func (b *Bridge) syncDone() {
	if b.sync {
		b.sync = false
		b.dir.NotifySyncExecutionDone()
	}
}

func (b *Bridge) topFrame(ctx context.Context, thread int) *interp.Frame {
	var resp struct {
		StackFrames []StackFrame `json:"stackFrames"`
	}
	args := map[string]int{"threadId": thread, "levels": 1}
	if err := b.client.Request(ctx, "stackTrace", args, &resp); err != nil {
		b.logger.Warn("stack trace", zap.Error(err))
		return nil
	}
	if len(resp.StackFrames) == 0 {
		return nil
	}
	sf := resp.StackFrames[0]
	f := &interp.Frame{Func: sf.Name, Line: sf.Line}
	if sf.Source != nil {
		f.File = sf.Source.Path
		if f.File == "" {
			f.File = sf.Source.Name
		}
	}
	if ip := strings.TrimPrefix(sf.InstructionPointerReference, "0x"); ip != "" {
		if addr, err := strconv.ParseUint(ip, 16, 64); err == nil {
			f.Addr = addr
		}
	}
	return f
}

func stopReason(reason string) interp.StopReason {
	switch reason {
	case "breakpoint", "function breakpoint", "instruction breakpoint":
		return interp.StopBreakpointHit
	case "data breakpoint":
		return interp.StopWatchpointTrigger
	case "step":
		return interp.StopEndSteppingRange
	case "entry":
		return interp.StopEntry
	default:
		return interp.StopLocationReached
	}
}

// Close disconnects from the adapter.
func (b *Bridge) Close(ctx context.Context) error {
	if b.started && !b.exited {
		if err := b.client.Request(ctx, "disconnect", map[string]bool{"terminateDebuggee": true}, nil); err != nil {
			b.logger.Debug("disconnect", zap.Error(err))
		}
	}
	if err := b.client.Close(); err != nil {
		return fmt.Errorf("close adapter: %w", err)
	}
	return nil
}
