// Package command parses command lines into typed invocations.
//
// Verb names are resolved through a static abbreviation table: each verb has
// a minimum abbreviation, so L is LOCATE, D is DELETE and LE is LEFT. A verb
// the table does not know is returned as a candidate macro invocation; the
// dispatcher decides whether such a macro exists.
package command

import (
	"github.com/dshills/xedit/internal/command/abbrev"
)

// Verb identifies a built-in command.
type Verb int

// Built-in verbs.
const (
	VerbNone Verb = iota
	VerbAdd
	VerbAll
	VerbBackward
	VerbBottom
	VerbChange
	VerbCommand
	VerbCopy
	VerbCount
	VerbDelete
	VerbDown
	VerbDuplicate
	VerbFile
	VerbForward
	VerbGet
	VerbHelp
	VerbInput
	VerbLeft
	VerbLocate
	VerbLowercase
	VerbMacro
	VerbMove
	VerbNext
	VerbQQuit
	VerbQuery
	VerbQuit
	VerbRedo
	VerbRefresh
	VerbReplace
	VerbRight
	VerbSave
	VerbSet
	VerbShift
	VerbSort
	VerbTop
	VerbUndo
	VerbUp
	VerbUppercase
	VerbXedit
)

// Info describes a built-in verb.
type Info struct {
	Verb      Verb
	Name      string
	Min       int
	NeedsFile bool   // Rejected when the ring is empty
	Mutates   bool   // Changes the buffer
	Syntax    string // Operand summary shown by HELP
}

var infos = []Info{
	{VerbAdd, "ADD", 1, true, true, "ADD [n]"},
	{VerbAll, "ALL", 3, true, false, "ALL [target]"},
	{VerbBackward, "BACKWARD", 1, true, false, "BACKWARD [n|*]"},
	{VerbBottom, "BOTTOM", 2, true, false, "BOTTOM"},
	{VerbChange, "CHANGE", 1, true, true, "CHANGE /old/new/ [target [n|* [p]]]"},
	{VerbCommand, "COMMAND", 7, false, false, "COMMAND verb [operands]"},
	{VerbCopy, "COPY", 4, true, true, "COPY target1 target2"},
	{VerbCount, "COUNT", 3, true, false, "COUNT /string/ [target]"},
	{VerbDelete, "DELETE", 1, true, true, "DELETE [target]"},
	{VerbDown, "DOWN", 2, true, false, "DOWN [n|*]"},
	{VerbDuplicate, "DUPLICATE", 3, true, true, "DUPLICATE [n [target]]"},
	{VerbFile, "FILE", 4, true, false, "FILE [fn [ft [fm]]]"},
	{VerbForward, "FORWARD", 1, true, false, "FORWARD [n|*]"},
	{VerbGet, "GET", 3, true, true, "GET fn ft [fm]"},
	{VerbHelp, "HELP", 4, false, false, "HELP [verb]"},
	{VerbInput, "INPUT", 1, true, true, "INPUT [text]"},
	{VerbLeft, "LEFT", 2, true, false, "LEFT [n]"},
	{VerbLocate, "LOCATE", 1, true, false, "LOCATE target"},
	{VerbLowercase, "LOWERCASE", 3, true, true, "LOWERCASE [target]"},
	{VerbMacro, "MACRO", 5, false, false, "MACRO name [arguments]"},
	{VerbMove, "MOVE", 4, true, true, "MOVE target1 target2"},
	{VerbNext, "NEXT", 1, true, false, "NEXT [n|*]"},
	{VerbQQuit, "QQUIT", 2, true, false, "QQUIT"},
	{VerbQuery, "QUERY", 2, false, false, "QUERY subject"},
	{VerbQuit, "QUIT", 4, true, false, "QUIT"},
	{VerbRedo, "REDO", 4, true, false, "REDO [n]"},
	{VerbRefresh, "REFRESH", 3, false, false, "REFRESH"},
	{VerbReplace, "REPLACE", 1, true, true, "REPLACE [text]"},
	{VerbRight, "RIGHT", 2, true, false, "RIGHT [n]"},
	{VerbSave, "SAVE", 2, true, false, "SAVE [fn [ft [fm]]]"},
	{VerbSet, "SET", 3, false, false, "SET subject operands"},
	{VerbShift, "SHIFT", 2, true, true, "SHIFT LEFT|RIGHT [n [target]]"},
	{VerbSort, "SORT", 4, true, true, "SORT [target] [A|D] [col1 col2]"},
	{VerbTop, "TOP", 1, true, false, "TOP"},
	{VerbUndo, "UNDO", 4, true, false, "UNDO [n]"},
	{VerbUp, "UP", 1, true, false, "UP [n|*]"},
	{VerbUppercase, "UPPERCASE", 3, true, true, "UPPERCASE [target]"},
	{VerbXedit, "XEDIT", 1, false, false, "XEDIT [fn ft [fm]]"},
}

var (
	byName = map[string]Info{}
	byVerb = map[Verb]Info{}
	table  *abbrev.Table
)

func init() {
	entries := make([]abbrev.Entry, 0, len(infos))
	for _, info := range infos {
		byName[info.Name] = info
		byVerb[info.Verb] = info
		entries = append(entries, abbrev.Entry{Name: info.Name, Min: info.Min})
	}
	table = abbrev.New(entries...)
}

// String returns the canonical name of the verb.
func (v Verb) String() string {
	if info, ok := byVerb[v]; ok {
		return info.Name
	}
	return "NONE"
}

// Info returns the table entry for the verb.
func (v Verb) Info() Info {
	return byVerb[v]
}

// Lookup resolves an abbreviated verb name. It fails with
// xerr.UnknownError or xerr.AmbiguousError.
func Lookup(name string) (Info, error) {
	canon, err := table.Resolve(name)
	if err != nil {
		return Info{}, err
	}
	return byName[canon], nil
}

// Names returns every built-in verb name in sorted order.
func Names() []string {
	return table.Names()
}

// Infos returns every built-in verb in table order.
func Infos() []Info {
	return append([]Info(nil), infos...)
}
