// Package engine provides the per-file editing session of the editor.
//
// The engine package serves as the facade over the line store, the undo
// log and the file's settings:
//
//   - buffer: the line store with TOF/EOF sentinels
//   - target: target expression parsing and resolution
//   - history: command-based undo/redo grouped into transactions
//   - settings: per-file SET values
//
// # Transactions
//
// Every mutation runs inside Change. The first Change opened records the
// editor state, nested Change calls join it, and when the outermost
// function returns an error every edit made so far is rolled back:
//
//	err := e.Change("delete", func() error {
//	    return e.Apply(history.NewDeleteCommand(1, 2))
//	})
//
// # Concurrency
//
// An Engine is owned by one file ring entry and used from one thread of
// control; it performs no locking.
package engine
