// Package interp manages the command interpreters ("front-ends") attached
// to debugger sessions.
//
// A debugging session can be driven by several front-ends at once: the
// human console, the machine interface in its protocol versions, a
// full-screen terminal UI, or a scripted front-end. Each session is a UI,
// and each UI owns its own set of interpreter instances.
//
// # Architecture
//
//	┌──────────────┐   Create(name)   ┌──────────────────────────────┐
//	│   Registry   │◄─────────────────│ UI (one per session)          │
//	│ name→Factory │                  │  - interpreters, by name      │
//	└──────────────┘                  │  - current / top-level        │
//	                                  │  - open Scopes (LIFO)         │
//	                                  └──────────────────────────────┘
//	                                                 ▲
//	┌──────────────────────────────┐   all UIs       │
//	│ Directory                     │────────────────┘
//	│  - active UI                  │
//	│  - Notify* broadcaster        │
//	└──────────────────────────────┘
//
// Interpreter types register a Factory once at startup. A UI creates an
// instance lazily the first time a name is looked up, and initializes it
// the first time it becomes current. Switching the current interpreter
// always suspends the outgoing one and resumes the incoming one.
//
// # Notifications
//
// Debuggee lifecycle events (stops, exits, new threads, focus changes, ...)
// reach every interpreter that was ever created in any UI, current or not,
// through the Directory's Notify methods. A hook that panics is logged and
// skipped; the remaining interpreters are still notified.
//
// # Scoped switches
//
// Enter switches a UI to another interpreter and returns a Scope whose
// Restore switches back. Scopes nest and must be restored in reverse order
// of entry. WithInterpreter wraps the pair around a function:
//
//	err := ui.WithInterpreter(interp.MI3, func(it interp.Interpreter) error {
//	    return ui.Exec(it, "-thread-info")
//	})
//
// # Concurrency
//
// The core assumes a single cooperative execution context. Registration
// happens at startup; UIs and the Directory are not safe for concurrent
// use. Collaborators that receive events on other goroutines must hand
// them to the command loop before calling Notify.
package interp
