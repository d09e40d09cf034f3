// Package history provides the undo log for a line buffer.
//
// The history system uses the Command pattern to encapsulate line edits,
// enabling them to be executed, undone, and redone. Key concepts:
//
// # Commands
//
// Commands implement the Command interface with Execute and Undo methods.
// Built-in commands include:
//   - InsertCommand: Insert lines after an anchor
//   - DeleteCommand: Delete a block of lines
//   - ReplaceCommand: Replace the text of one line
//   - MoveCommand, CopyCommand: Block transfers
//   - CompoundCommand: Group multiple commands as one undo unit
//
// # Transactions
//
// Every undo entry is a transaction: the commands executed between Begin
// and Commit, tagged with the editor state (Marker) before and after.
//
//	h := NewHistory(100)
//	h.Begin("delete", before)
//	h.Execute(NewDeleteCommand(1, 2), buf)
//	h.Commit(after)
//
//	marker, _ := h.Undo(buf) // restore marker.Current, marker.Settings, ...
//
// Rollback reverses the commands of an open transaction and discards it,
// which makes a failed batch all-or-nothing.
//
// Any new transaction clears the redo stack.
package history
