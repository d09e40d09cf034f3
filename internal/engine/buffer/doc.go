// Package buffer provides the line store behind every open file: an ordered
// sequence of text lines with 1-based addressing and two virtual sentinels.
//
// Address 0 is the top-of-file (TOF) sentinel and LineCount()+1 is the
// end-of-file (EOF) sentinel. Neither holds content. Both are valid values for
// the current-line pointer and as insertion anchors, but never as the subject
// of a mutation.
//
// Basic usage:
//
//	buf := buffer.NewBufferFromLines([]string{"A", "B", "C"})
//
//	// Insert after line 1
//	addr, _ := buf.Insert(1, "A2") // addr == 2
//
//	// Move lines 1-2 after line 4
//	buf.MoveBlock(1, 2, 4)
//
// The buffer knows nothing about undo. Callers that need reversible edits
// record each successful mutation themselves (see package history).
package buffer
