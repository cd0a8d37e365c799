// Package target connects the front-end to a debuggee through a debug
// adapter speaking the Debug Adapter Protocol.
//
// A Client exchanges requests and responses with the adapter on its own
// reader goroutine and queues adapter events. A Bridge drains that queue
// on the caller's goroutine and turns each event into a notification on
// an interp.Directory, so interpreters are only ever called from the
// command loop:
//
//	for {
//	    bridge.Pump(ctx)
//	    line := readLine()
//	    ui.ExecCurrent(line)
//	}
package target
