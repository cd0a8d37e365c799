// Package command implements the CLI commands interpreters execute
// through their UI's command engine.
//
// A Table maps command names and aliases to handlers. It implements
// interp.Engine, so the same table serves every UI and interpreter:
//
//	table := command.NewTable(command.Options{Target: bridge})
//	ui := dir.NewUI(interp.WithEngine(table))
//
// Execution commands (run, continue, next, step, break, interrupt) are
// forwarded to a Target. Commands that change the interpreter, such as
// interpreter-exec, go through the UI's scoped switch.
package command
