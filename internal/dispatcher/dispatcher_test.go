package dispatcher_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/dshills/xedit/internal/cms"
	"github.com/dshills/xedit/internal/command"
	"github.com/dshills/xedit/internal/dispatcher"
	"github.com/dshills/xedit/internal/dispatcher/execctx"
	"github.com/dshills/xedit/internal/dispatcher/handler"
	"github.com/dshills/xedit/internal/dispatcher/handlers/file"
	"github.com/dshills/xedit/internal/engine"
	"github.com/dshills/xedit/internal/macro"
	"github.com/dshills/xedit/internal/vfs"
	"github.com/dshills/xedit/internal/xerr"
)

type name string

func (n name) String() string { return string(n) }

func open(t *testing.T, d *dispatcher.Dispatcher, lines ...string) *engine.Engine {
	t.Helper()
	e := d.NewEngine(lines, false)
	if _, added := d.Ring().Open(name("TEST FILE A1"), e); !added {
		t.Fatal("file not added to the ring")
	}
	return e
}

func run(t *testing.T, d *dispatcher.Dispatcher, line string) handler.Result {
	t.Helper()
	return d.Execute(context.Background(), line)
}

func TestNewWithDefaults(t *testing.T) {
	d := dispatcher.NewWithDefaults()

	if d.Registry() == nil {
		t.Fatal("expected non-nil registry")
	}
	for _, info := range command.Infos() {
		if info.Verb == command.VerbCommand || info.Verb == command.VerbMacro {
			continue
		}
		if !d.Registry().Has(info.Verb) {
			t.Errorf("no handler for %s", info.Name)
		}
	}
	if d.Metrics() != nil {
		t.Error("expected nil metrics by default")
	}
	if !d.Ring().IsEmpty() {
		t.Error("expected an empty ring")
	}
}

func TestNewWithMetrics(t *testing.T) {
	d := dispatcher.New(dispatcher.DefaultConfig().WithMetrics())

	if d.Metrics() == nil {
		t.Error("expected non-nil metrics when enabled")
	}
}

func TestLocateFromTOF(t *testing.T) {
	for _, line := range []string{"LOCATE /B/", "L /B/", "/B/"} {
		d := dispatcher.NewWithDefaults()
		e := open(t, d, "A", "B", "C")

		r := run(t, d, line)
		if r.Code != xerr.RCOK {
			t.Fatalf("%q: rc = %d (%s)", line, r.Code, r.Message)
		}
		if e.Current() != 2 || r.Current != 2 {
			t.Errorf("%q: current = %d, result current = %d, want 2", line, e.Current(), r.Current)
		}
	}
}

func TestLocateNotFound(t *testing.T) {
	d := dispatcher.NewWithDefaults()
	e := open(t, d, "A", "B", "C")

	r := run(t, d, "LOCATE /Z/")
	if r.Code != xerr.RCNotFound {
		t.Fatalf("rc = %d, want 2", r.Code)
	}
	if e.Current() != 0 {
		t.Errorf("current = %d, want unchanged TOF", e.Current())
	}
}

func TestChange(t *testing.T) {
	d := dispatcher.NewWithDefaults()
	e := open(t, d, "A", "B")
	if err := e.SetCurrent(1); err != nil {
		t.Fatal(err)
	}

	r := run(t, d, "CHANGE /A/X/")
	if r.Code != xerr.RCOK {
		t.Fatalf("rc = %d (%s)", r.Code, r.Message)
	}
	if got := e.Buffer().Lines(); !reflect.DeepEqual(got, []string{"X", "B"}) {
		t.Errorf("lines = %q", got)
	}

	r = run(t, d, "CHANGE /Z/Y/")
	if r.Code != xerr.RCNotFound {
		t.Fatalf("rc = %d, want 2", r.Code)
	}
	if got := e.Buffer().Lines(); !reflect.DeepEqual(got, []string{"X", "B"}) {
		t.Errorf("lines after failed change = %q", got)
	}
}

func TestNoActiveFile(t *testing.T) {
	d := dispatcher.NewWithDefaults()

	for _, line := range []string{"DOWN 1", "CHANGE /a/b/", "DELETE"} {
		r := run(t, d, line)
		if !errors.Is(r.Error, xerr.ErrNoActiveFile) {
			t.Errorf("%q: error = %v, want no active file", line, r.Error)
		}
		if r.Code != xerr.RCError {
			t.Errorf("%q: rc = %d, want 1", line, r.Code)
		}
		if r.Current != -1 {
			t.Errorf("%q: current = %d, want -1", line, r.Current)
		}
	}
}

func TestUnknownCommand(t *testing.T) {
	d := dispatcher.NewWithDefaults()
	open(t, d, "A")

	r := run(t, d, "FROBNICATE 3")
	if r.Code != xerr.RCBadSyntax {
		t.Errorf("rc = %d, want 3", r.Code)
	}
	if !errors.Is(r.Error, xerr.ErrUnknownCommand) {
		t.Errorf("error = %v", r.Error)
	}
}

func TestMacroFallback(t *testing.T) {
	d := dispatcher.NewWithDefaults()
	e := open(t, d, "A", "B", "C")

	var gotArgs string
	d.SetMacroHost(macro.Funcs{
		"MYMAC": func(ctx context.Context, args string, env macro.Env) (xerr.ReturnCode, error) {
			gotArgs = args
			rc, _ := env.Command("DOWN 2")
			return rc, nil
		},
	})

	r := run(t, d, "mymac one two")
	if r.Code != xerr.RCOK {
		t.Fatalf("rc = %d (%s)", r.Code, r.Message)
	}
	if gotArgs != "one two" {
		t.Errorf("args = %q", gotArgs)
	}
	if e.Current() != 2 {
		t.Errorf("current = %d, want 2", e.Current())
	}

	r = run(t, d, "MACRO MYMAC")
	if r.Code != xerr.RCOK || e.Current() != 4 {
		t.Errorf("MACRO MYMAC: rc = %d, current = %d", r.Code, e.Current())
	}
}

type warnings []string

func (w *warnings) Debug(string, ...any) {}
func (w *warnings) Info(string, ...any)  {}
func (w *warnings) Error(string, ...any) {}
func (w *warnings) Warn(msg string, args ...any) {
	*w = append(*w, fmt.Sprintf(msg, args...))
}

func TestMacroRecursionLimit(t *testing.T) {
	d := dispatcher.New(dispatcher.DefaultConfig().WithMaxMacroDepth(4))
	d.RegisterDefaults()
	open(t, d, "A")
	var logged warnings
	d.SetLogger(&logged)

	calls := 0
	d.SetMacroHost(macro.Funcs{
		"LOOP": func(ctx context.Context, args string, env macro.Env) (xerr.ReturnCode, error) {
			calls++
			rc, _ := env.Command("LOOP")
			return rc, nil
		},
	})

	r := run(t, d, "LOOP")
	if calls != 4 {
		t.Errorf("calls = %d, want 4", calls)
	}
	if r.Code != xerr.RCError {
		t.Errorf("rc = %d, want 1", r.Code)
	}
	if !strings.Contains(r.Message, "recursion limit") {
		t.Errorf("message = %q", r.Message)
	}
	if len(logged) != 1 || !strings.Contains(logged[0], "depth 4") {
		t.Errorf("warnings = %q", logged)
	}
}

func TestExtractInMacro(t *testing.T) {
	d := dispatcher.NewWithDefaults()
	open(t, d, "A", "B", "C")

	var rc xerr.ReturnCode
	var msg, size string
	d.SetMacroHost(macro.Funcs{
		"EX": func(ctx context.Context, args string, env macro.Env) (xerr.ReturnCode, error) {
			env.Command("DOWN 1")
			rc, msg = env.Command("EXTRACT /SIZE/LINE/")
			size = env.Snapshot().Value("SIZE", 1)
			return xerr.RCOK, nil
		},
	})

	if r := run(t, d, "EX"); r.Code != xerr.RCOK {
		t.Fatalf("rc = %d (%s)", r.Code, r.Message)
	}
	if rc != xerr.RCOK {
		t.Errorf("EXTRACT rc = %d", rc)
	}
	// The snapshot was taken when the macro started, before DOWN.
	if msg != "LINE=0 SIZE=3" {
		t.Errorf("EXTRACT message = %q", msg)
	}
	if size != "3" {
		t.Errorf("SIZE.1 = %q", size)
	}
}

func TestPanicRecovery(t *testing.T) {
	d := dispatcher.New(dispatcher.DefaultConfig().WithMetrics())
	d.RegisterDefaults()
	open(t, d, "A")
	d.RegisterHandlerFunc(command.VerbRefresh, func(command.Invocation, *execctx.ExecutionContext) handler.Result {
		panic("boom")
	})

	r := run(t, d, "REFRESH")
	if !errors.Is(r.Error, dispatcher.ErrPanic) {
		t.Fatalf("error = %v, want panic", r.Error)
	}
	if r.Code != xerr.RCError {
		t.Errorf("rc = %d", r.Code)
	}
	if d.Metrics().TotalPanics() != 1 {
		t.Errorf("panics = %d", d.Metrics().TotalPanics())
	}
}

func TestRepeatAndRecall(t *testing.T) {
	d := dispatcher.NewWithDefaults()
	e := open(t, d, "A", "B", "C")

	if r := run(t, d, "="); !errors.Is(r.Error, dispatcher.ErrNoPrevious) {
		t.Errorf("= with no history: %v", r.Error)
	}

	run(t, d, "DOWN 1")
	run(t, d, "=")
	if e.Current() != 2 {
		t.Errorf("current = %d, want 2", e.Current())
	}

	r := run(t, d, "?")
	if recalled, _ := r.GetData(handler.DataRecall); recalled != "DOWN 1" {
		t.Errorf("recall = %v", recalled)
	}
	if d.Last() != "DOWN 1" {
		t.Errorf("last = %q", d.Last())
	}
}

func TestMetrics(t *testing.T) {
	d := dispatcher.New(dispatcher.DefaultConfig().WithMetrics())
	d.RegisterDefaults()
	open(t, d, "A", "B")

	run(t, d, "DOWN 1")
	run(t, d, "LOCATE /Z/")
	run(t, d, "LOCATE /B/")

	m := d.Metrics()
	if m.TotalDispatches() != 3 {
		t.Errorf("dispatches = %d", m.TotalDispatches())
	}
	if m.TotalErrors() != 1 {
		t.Errorf("errors = %d", m.TotalErrors())
	}
	stats := m.CommandStats("LOCATE")
	if stats == nil || stats.DispatchCount != 2 || stats.Codes[xerr.RCNotFound] != 1 {
		t.Errorf("LOCATE stats = %+v", stats)
	}
}

func TestHooks(t *testing.T) {
	d := dispatcher.NewWithDefaults()
	e := open(t, d, "A", "B")

	d.RegisterPreHook(dispatcher.PreDispatchFunc(func(inv *command.Invocation, ctx *execctx.ExecutionContext) bool {
		return inv.Verb != command.VerbDelete
	}))
	var seen []string
	d.RegisterPostHook(dispatcher.PostDispatchFunc(func(inv *command.Invocation, ctx *execctx.ExecutionContext, result *handler.Result) {
		seen = append(seen, inv.Name)
	}))

	r := run(t, d, "DELETE *")
	if r.Status != handler.StatusCancelled {
		t.Errorf("status = %v, want cancelled", r.Status)
	}
	if e.Buffer().LineCount() != 2 {
		t.Error("cancelled DELETE changed the file")
	}

	run(t, d, "NEXT")
	if !reflect.DeepEqual(seen, []string{"NEXT"}) {
		t.Errorf("post hooks saw %q", seen)
	}
}

func TestUndoRedo(t *testing.T) {
	d := dispatcher.NewWithDefaults()
	e := open(t, d, "A", "B", "C")

	run(t, d, "DOWN 1")
	if r := run(t, d, "DELETE 2"); r.Code != xerr.RCOK {
		t.Fatalf("DELETE: rc = %d (%s)", r.Code, r.Message)
	}
	if got := e.Buffer().Lines(); !reflect.DeepEqual(got, []string{"C"}) {
		t.Fatalf("lines = %q", got)
	}

	run(t, d, "UNDO")
	if got := e.Buffer().Lines(); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("after UNDO lines = %q", got)
	}
	run(t, d, "REDO")
	if got := e.Buffer().Lines(); !reflect.DeepEqual(got, []string{"C"}) {
		t.Errorf("after REDO lines = %q", got)
	}

	run(t, d, "UNDO")
	if r := run(t, d, "UNDO"); !errors.Is(r.Error, xerr.ErrNothingToUndo) || r.Code != xerr.RCError {
		t.Errorf("UNDO on empty log: %v rc %d", r.Error, r.Code)
	}
}

func newFileDispatcher(t *testing.T) (*dispatcher.Dispatcher, *cms.FileSystem, *vfs.MemFS) {
	t.Helper()
	m := vfs.NewMemFS()
	fs := cms.NewFileSystem(m)
	if err := fs.Access('A', "/cms/a", cms.ReadWrite); err != nil {
		t.Fatal(err)
	}
	d := dispatcher.NewWithDefaults()
	d.SetFileSystem(fs)
	return d, fs, m
}

func TestFileCommands(t *testing.T) {
	d, _, m := newFileDispatcher(t)

	r := run(t, d, "XEDIT TEST DATA A")
	if r.Code != xerr.RCOK || !r.Opened || r.Message != "New file" {
		t.Fatalf("XEDIT: %+v", r)
	}
	run(t, d, "INPUT hello")
	if r := run(t, d, "QUIT"); !errors.Is(r.Error, file.ErrFileChanged) || r.Code != xerr.RCError {
		t.Errorf("QUIT on a changed file: %v rc %d", r.Error, r.Code)
	}
	if r := run(t, d, "SAVE"); r.Code != xerr.RCOK {
		t.Fatalf("SAVE: rc = %d (%s)", r.Code, r.Message)
	}
	raw, err := m.ReadFile("/cms/a/test.data")
	if err != nil || string(raw) != "hello\n" {
		t.Fatalf("saved content = %q, %v", raw, err)
	}
	if r := run(t, d, "QUIT"); r.Code != xerr.RCOK || !d.Ring().IsEmpty() {
		t.Fatalf("QUIT: rc = %d, ring = %d", r.Code, d.Ring().Len())
	}

	r = run(t, d, "XEDIT TEST DATA A")
	if r.Code != xerr.RCOK || r.Message != "" {
		t.Fatalf("reopen: %+v", r)
	}
	entry, _ := d.Ring().Current()
	if got := entry.Engine.Buffer().Lines(); !reflect.DeepEqual(got, []string{"hello"}) {
		t.Errorf("reopened lines = %q", got)
	}
	run(t, d, "INPUT more")
	if r := run(t, d, "QQUIT"); r.Code != xerr.RCOK || !d.Ring().IsEmpty() {
		t.Errorf("QQUIT: rc = %d", r.Code)
	}
}

func TestFileRingSwitching(t *testing.T) {
	d, _, _ := newFileDispatcher(t)

	run(t, d, "XEDIT ONE DATA A")
	run(t, d, "XEDIT TWO DATA A")
	if d.Ring().Len() != 2 {
		t.Fatalf("ring = %d", d.Ring().Len())
	}

	r := run(t, d, "XEDIT ONE DATA A")
	if r.Opened || r.Message != "ONE DATA A1" {
		t.Errorf("switch: %+v", r)
	}
	r = run(t, d, "XEDIT")
	if r.Message != "TWO DATA A1" {
		t.Errorf("next: %q", r.Message)
	}
	if d.Ring().Len() != 2 {
		t.Errorf("ring = %d after switching", d.Ring().Len())
	}
}

func TestGetAndFile(t *testing.T) {
	d, fs, _ := newFileDispatcher(t)
	other, _ := fs.Identify([]string{"OTHER", "DATA", "A"}, nil)
	if err := fs.Write(other, []string{"x", "y"}); err != nil {
		t.Fatal(err)
	}

	run(t, d, "XEDIT MAIN DATA A")
	run(t, d, "INPUT first")
	r := run(t, d, "GET OTHER DATA A")
	if r.Code != xerr.RCOK {
		t.Fatalf("GET: rc = %d (%s)", r.Code, r.Message)
	}
	entry, _ := d.Ring().Current()
	if got := entry.Engine.Buffer().Lines(); !reflect.DeepEqual(got, []string{"first", "x", "y"}) {
		t.Errorf("lines = %q", got)
	}
	if entry.Engine.Current() != 3 {
		t.Errorf("current = %d", entry.Engine.Current())
	}

	if r := run(t, d, "GET MISSING DATA A"); r.Code != xerr.RCFileIO {
		t.Errorf("GET missing: rc = %d", r.Code)
	}

	if r := run(t, d, "FILE"); r.Code != xerr.RCOK || !d.Ring().IsEmpty() {
		t.Fatalf("FILE: rc = %d (%s)", r.Code, r.Message)
	}
	main, _ := fs.Identify([]string{"MAIN", "DATA", "A"}, nil)
	lines, err := fs.Read(main)
	if err != nil || !reflect.DeepEqual(lines, []string{"first", "x", "y"}) {
		t.Errorf("filed lines = %q, %v", lines, err)
	}
}

func TestProfileMacro(t *testing.T) {
	d, _, _ := newFileDispatcher(t)
	profiled := 0
	d.SetMacroHost(macro.Funcs{
		"PROFILE": func(ctx context.Context, args string, env macro.Env) (xerr.ReturnCode, error) {
			profiled++
			rc, _ := env.Command("SET TRUNC 10")
			return rc, nil
		},
	})

	run(t, d, "XEDIT A DATA A")
	run(t, d, "XEDIT B DATA A")
	run(t, d, "XEDIT A DATA A")
	if profiled != 2 {
		t.Errorf("profile ran %d times, want 2", profiled)
	}
	entry, _ := d.Ring().Current()
	if entry.Engine.Settings().Trunc != 10 {
		t.Errorf("trunc = %d", entry.Engine.Settings().Trunc)
	}
}
