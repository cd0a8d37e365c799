package interp

import (
	"runtime/debug"

	"go.uber.org/zap"
)

// broadcast calls fn on every interpreter of every UI, in creation order.
// While a UI's interpreters are notified, that UI is the active one; the
// previous active UI is restored afterwards.
func (d *Directory) broadcast(kind EventKind, fn func(Interpreter)) {
	saved := d.active
	defer func() { d.active = saved }()

	for _, ui := range d.UIs() {
		if ui.closed {
			continue
		}
		d.active = ui
		for _, it := range ui.Interpreters() {
			d.deliver(ui, kind, it, fn)
		}
	}
}

// deliver runs one hook, isolating a panic so the remaining interpreters
// are still notified.
func (d *Directory) deliver(ui *UI, kind EventKind, it Interpreter, fn func(Interpreter)) {
	defer func() {
		if r := recover(); r != nil {
			d.metrics.Panicked(string(kind), it.Name())
			d.logger.Error("notification hook panicked",
				zap.String("event", string(kind)),
				zap.String("interp", it.Name()),
				zap.String("ui", ui.id),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()
	fn(it)
	d.metrics.Delivered(string(kind))
}

// NotifySignalReceived tells every interpreter the current inferior
// stopped with sig.
func (d *Directory) NotifySignalReceived(sig Signal) {
	d.broadcast(EventSignalReceived, func(it Interpreter) { it.OnSignalReceived(sig) })
}

// NotifySignalExited tells every interpreter the current inferior was
// terminated by sig.
func (d *Directory) NotifySignalExited(sig Signal) {
	d.broadcast(EventSignalExited, func(it Interpreter) { it.OnSignalExited(sig) })
}

// NotifyNormalStop tells every interpreter the current inferior stopped
// normally.
func (d *Directory) NotifyNormalStop(ev *StopEvent, printFrame bool) {
	d.broadcast(EventNormalStop, func(it Interpreter) { it.OnNormalStop(ev, printFrame) })
}

// NotifyExited tells every interpreter the current inferior exited with
// status.
func (d *Directory) NotifyExited(status int) {
	d.broadcast(EventExited, func(it Interpreter) { it.OnExited(status) })
}

// NotifyNoHistory tells every interpreter reverse execution ran out of
// history.
func (d *Directory) NotifyNoHistory() {
	d.broadcast(EventNoHistory, func(it Interpreter) { it.OnNoHistory() })
}

// NotifySyncExecutionDone tells every interpreter a synchronous execution
// command finished.
func (d *Directory) NotifySyncExecutionDone() {
	d.broadcast(EventSyncExecutionDone, func(it Interpreter) { it.OnSyncExecutionDone() })
}

// NotifyCommandError tells every interpreter a command failed.
func (d *Directory) NotifyCommandError() {
	d.broadcast(EventCommandError, func(it Interpreter) { it.OnCommandError() })
}

// NotifyUserSelectedContextChanged tells every interpreter the user focus
// changed.
func (d *Directory) NotifyUserSelectedContextChanged(sel Selection) {
	d.broadcast(EventUserContextChanged, func(it Interpreter) { it.OnUserSelectedContextChanged(sel) })
}

// NotifyNewThread tells every interpreter thread t was created.
func (d *Directory) NotifyNewThread(t *Thread) {
	d.broadcast(EventNewThread, func(it Interpreter) { it.OnNewThread(t) })
}

// NotifyThreadExited tells every interpreter thread t exited.
func (d *Directory) NotifyThreadExited(t *Thread, silent bool) {
	d.broadcast(EventThreadExited, func(it Interpreter) { it.OnThreadExited(t, silent) })
}

// NotifyInferiorAdded tells every interpreter inferior inf was added.
func (d *Directory) NotifyInferiorAdded(inf *Inferior) {
	d.broadcast(EventInferiorAdded, func(it Interpreter) { it.OnInferiorAdded(inf) })
}

// NotifyInferiorAppeared tells every interpreter inferior inf was started
// or attached.
func (d *Directory) NotifyInferiorAppeared(inf *Inferior) {
	d.broadcast(EventInferiorAppeared, func(it Interpreter) { it.OnInferiorAppeared(inf) })
}
