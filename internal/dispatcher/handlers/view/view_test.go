package view_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/dshills/xedit/internal/command"
	"github.com/dshills/xedit/internal/dispatcher/execctx"
	"github.com/dshills/xedit/internal/dispatcher/handler"
	"github.com/dshills/xedit/internal/dispatcher/handlers/view"
	"github.com/dshills/xedit/internal/engine"
	"github.com/dshills/xedit/internal/engine/history"
	"github.com/dshills/xedit/internal/ring"
	"github.com/dshills/xedit/internal/xerr"
)

type name string

func (n name) String() string { return string(n) }

func setup(t *testing.T, lines ...string) (*engine.Engine, *execctx.ExecutionContext) {
	t.Helper()
	e := engine.New(engine.WithLines(lines))
	r := ring.New()
	r.Open(name("ONE DATA A1"), e)
	ctx := execctx.New(context.Background(), r)
	ctx.Keys = map[int]string{}
	return e, ctx
}

func exec(t *testing.T, ctx *execctx.ExecutionContext, line string) handler.Result {
	t.Helper()
	inv, err := command.Parse(line)
	if err != nil {
		t.Fatalf("Parse(%q): %v", line, err)
	}
	return view.NewHandler().Verbs()[inv.Verb].Handle(inv, ctx)
}

func TestPFKey(t *testing.T) {
	tests := []struct {
		in string
		n  int
		ok bool
	}{
		{"PF1", 1, true},
		{"pf12", 12, true},
		{"PF24", 24, true},
		{"PF25", 0, false},
		{"PF0", 0, false},
		{"PFX", 0, false},
		{"TRUNC", 0, false},
	}
	for _, tt := range tests {
		n, ok := view.PFKey(tt.in)
		if n != tt.n || ok != tt.ok {
			t.Errorf("PFKey(%q) = %d, %v; want %d, %v", tt.in, n, ok, tt.n, tt.ok)
		}
	}
}

func TestSetAndQuery(t *testing.T) {
	e, ctx := setup(t, "a", "b")

	if r := exec(t, ctx, "SET TRUNC 40"); r.Code != xerr.RCOK {
		t.Fatalf("SET TRUNC: rc = %d (%s)", r.Code, r.Message)
	}
	if e.Settings().Trunc != 40 {
		t.Errorf("trunc = %d", e.Settings().Trunc)
	}

	r := exec(t, ctx, "QUERY TRUNC")
	if r.Message != "TRUNC 40" {
		t.Errorf("QUERY TRUNC = %q", r.Message)
	}
	if v, _ := r.GetData(handler.DataValues); !reflect.DeepEqual(v, []string{"40"}) {
		t.Errorf("values = %v", v)
	}

	if r := exec(t, ctx, "SET BOGUS 1"); r.Code != xerr.RCBadSyntax {
		t.Errorf("SET BOGUS: rc = %d, want 3", r.Code)
	}
	if r := exec(t, ctx, "SET TRUNC x"); r.Code != xerr.RCBadSyntax || e.Settings().Trunc != 40 {
		t.Errorf("SET TRUNC x: rc = %d, trunc = %d", r.Code, e.Settings().Trunc)
	}
}

func TestQuerySubjects(t *testing.T) {
	e, ctx := setup(t, "a", "b", "c")
	if err := e.SetCurrent(2); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		line string
		want string
	}{
		{"QUERY SIZE", "SIZE 3"},
		{"QUERY LINE", "LINE 2"},
		{"QUERY L", "LINE 2"},
		{"QUERY COLUMN", "COLUMN 1"},
		{"QUERY ALT", "ALT 0"},
		{"QUERY RING", "RING 1 ONE DATA A1"},
		{"QUERY MODIFIED", "MODIFIED OFF"},
		{"QUERY CASE", "CASE MIXED IGNORE"},
	}
	for _, tt := range tests {
		r := exec(t, ctx, tt.line)
		if r.Code != xerr.RCOK || r.Message != tt.want {
			t.Errorf("%s = %q (rc %d), want %q", tt.line, r.Message, r.Code, tt.want)
		}
	}

	if r := exec(t, ctx, "QUERY"); r.Code != xerr.RCBadSyntax {
		t.Errorf("QUERY without subject: rc = %d", r.Code)
	}
}

func TestQueryUndo(t *testing.T) {
	e, ctx := setup(t, "a", "b", "c")

	if r := exec(t, ctx, "QUERY UNDO"); r.Message != "UNDO 0 0" {
		t.Errorf("empty log: %q", r.Message)
	}
	err := e.Change("DELETE", func() error {
		return e.Apply(history.NewDeleteCommand(1, 1))
	})
	if err != nil {
		t.Fatal(err)
	}
	if r := exec(t, ctx, "QUERY UNDO"); r.Message != "UNDO 1 0 DELETE" {
		t.Errorf("after DELETE: %q", r.Message)
	}
	_ = e.Undo()
	if r := exec(t, ctx, "QUERY UNDO"); r.Message != "UNDO 0 1" {
		t.Errorf("after undo: %q", r.Message)
	}
}

func TestPFKeys(t *testing.T) {
	_, ctx := setup(t)

	if r := exec(t, ctx, "SET PF3 QUIT"); r.Code != xerr.RCOK {
		t.Fatalf("rc = %d (%s)", r.Code, r.Message)
	}
	if ctx.Keys[3] != "QUIT" {
		t.Errorf("PF3 = %q", ctx.Keys[3])
	}
	if r := exec(t, ctx, "QUERY PF3"); r.Message != "PF3 QUIT" {
		t.Errorf("QUERY PF3 = %q", r.Message)
	}
	exec(t, ctx, "SET PF3")
	if _, ok := ctx.Keys[3]; ok {
		t.Error("SET PF3 without text should remove the key")
	}
}

func TestQueryRingWithoutFile(t *testing.T) {
	ctx := execctx.New(context.Background(), ring.New())

	if r := exec(t, ctx, "QUERY RING"); r.Code != xerr.RCOK || r.Message != "RING 0" {
		t.Errorf("QUERY RING = %q (rc %d)", r.Message, r.Code)
	}
	if r := exec(t, ctx, "QUERY SIZE"); r.Code != xerr.RCError {
		t.Errorf("QUERY SIZE without file: rc = %d", r.Code)
	}
}

func TestHelp(t *testing.T) {
	_, ctx := setup(t)

	r := exec(t, ctx, "HELP CHANGE")
	if r.Message != command.VerbChange.Info().Syntax {
		t.Errorf("HELP CHANGE = %q", r.Message)
	}
	r = exec(t, ctx, "HELP")
	if v, _ := r.GetData(handler.DataValues); !reflect.DeepEqual(v, command.Names()) {
		t.Errorf("HELP names = %v", v)
	}
	if r := exec(t, ctx, "HELP NOSUCH"); r.Code != xerr.RCBadSyntax {
		t.Errorf("HELP NOSUCH: rc = %d", r.Code)
	}
}
