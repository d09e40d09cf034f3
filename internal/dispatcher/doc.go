// Package dispatcher executes command lines against the file ring.
//
// The dispatcher is the single entry point for commands, whether typed on
// the command line, bound to a PF key or issued by a macro. Each line is
// parsed, resolved to a built-in verb or a macro, and run against the
// current ring entry. The outcome is a handler.Result carrying the return
// code a macro would see: 0 success, 1 command error, 2 target not found,
// 3 unknown command or bad syntax, 5 file I/O error.
//
// # Resolution
//
// A verb is first resolved through the abbreviation table of the built-in
// commands. A verb the table does not know is looked up as a macro; only
// when no macro exists either is it reported as unknown, with suggestions.
// COMMAND forces built-in resolution and MACRO forces macro resolution.
// A line that starts with a target is LOCATE.
//
// The lines "=" and "?" repeat and recall the last command entered at the
// top level.
//
// # Execution
//
// When a command runs:
//
//  1. An ExecutionContext is built for the current ring entry
//  2. The line is parsed into a command.Invocation
//  3. Pre-dispatch hooks are called (can modify or cancel the command)
//  4. The built-in handler or the macro runs (with optional panic recovery)
//  5. The profile macro runs if the command opened a file
//  6. Post-dispatch hooks are called
//  7. Metrics are recorded (if enabled)
//
// Every built-in that changes the file runs as one undo transaction. A
// failing command leaves the file as it was.
//
// # Macros
//
// A macro receives a snapshot of the EXTRACT variables taken when it
// starts and may issue further commands through its environment. Those
// commands run one nesting level deeper; beyond Config.MaxMacroDepth levels
// a macro invocation fails with xerr.ErrMacroRecursionLimit. EXTRACT issued
// by a macro is answered from its snapshot with return code 0.
//
// # Usage
//
// Basic setup:
//
//	d := dispatcher.NewWithDefaults()
//	d.SetFileSystem(cms.NewFileSystem(vfs.NewOSFS()))
//	d.SetMacroHost(lua.NewHost(vfs.NewOSFS(), []string{"."}))
//
//	result := d.Execute(ctx, "XEDIT PROFILE EXEC A")
//	result = d.Execute(ctx, "CHANGE /old/new/ * *")
//
// # Hooks
//
// Pre-dispatch hooks can modify or cancel commands:
//
//	d.RegisterPreHook(dispatcher.PreDispatchFunc(func(inv *command.Invocation, ctx *execctx.ExecutionContext) bool {
//	    // Return false to cancel
//	    return true
//	}))
//
// Post-dispatch hooks can observe or modify results:
//
//	d.RegisterPostHook(dispatcher.PostDispatchFunc(func(inv *command.Invocation, ctx *execctx.ExecutionContext, result *handler.Result) {
//	    // Log, audit, etc.
//	}))
package dispatcher
