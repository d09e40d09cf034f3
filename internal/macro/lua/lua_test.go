package lua

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/xedit/internal/macro"
	"github.com/dshills/xedit/internal/vfs"
	"github.com/dshills/xedit/internal/xerr"
)

type recordingEnv struct {
	snap     *macro.Snapshot
	commands []string
	rc       xerr.ReturnCode
}

func (r *recordingEnv) Command(text string) (xerr.ReturnCode, string) {
	r.commands = append(r.commands, text)
	return r.rc, "done"
}

func (r *recordingEnv) Snapshot() *macro.Snapshot { return r.snap }

func newEnv() *recordingEnv {
	snap := macro.NewSnapshot()
	snap.Set("CURLINE", "2", "OFF", "hello")
	snap.Set("SIZE", "5")
	return &recordingEnv{snap: snap}
}

func newHost(t *testing.T, files map[string]string, opts ...HostOption) *Host {
	t.Helper()
	fs := vfs.NewMemFS()
	for p, src := range files {
		if err := fs.AddFile(p, src); err != nil {
			t.Fatal(err)
		}
	}
	return NewHost(fs, []string{"/macros", "/lib"}, opts...)
}

func TestHostLookup(t *testing.T) {
	h := newHost(t, map[string]string{
		"/lib/center.xedit":   "return 0",
		"/macros/top2.xedit":  "return 0",
		"/macros/other.exec":  "return 0",
		"/macros/sub/x.xedit": "return 0",
	})
	tests := []struct {
		name string
		want bool
	}{
		{"CENTER", true},
		{"center", true},
		{"TOP2", true},
		{"OTHER", false},
		{"sub/x", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := h.Lookup(tt.name); got != tt.want {
			t.Errorf("Lookup(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestHostRun(t *testing.T) {
	var out bytes.Buffer
	h := newHost(t, map[string]string{
		"/macros/demo.xedit": `
local rc, msg = xedit.command("LOCATE /x/")
local v = xedit.extract("/CURLINE/SIZE/")
print(v.CURLINE[3], v.CURLINE[0], EXTRACT.SIZE[1], ARG, RC, msg)
xedit.command("COMMAND TOP")
return 7
`,
	}, WithPrintOutput(&out))

	env := newEnv()
	env.rc = 2
	rc, err := h.Run(context.Background(), "DEMO", "a b", env)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if rc != 7 {
		t.Errorf("rc = %d, want 7", rc)
	}
	if got := strings.Join(env.commands, ";"); got != "LOCATE /x/;COMMAND TOP" {
		t.Errorf("commands = %q", got)
	}
	if got := strings.TrimSpace(out.String()); got != "hello\t3\t5\ta b\t2\tdone" {
		t.Errorf("output = %q", got)
	}
}

func TestHostRunErrors(t *testing.T) {
	h := newHost(t, map[string]string{
		"/macros/broken.xedit":  "return (",
		"/macros/fails.xedit":   `error("boom")`,
		"/macros/extract.xedit": `xedit.extract("/NOPE/")`,
		"/macros/spin.xedit":    "while true do end",
		"/macros/io.xedit":      `return require("io")`,
		"/macros/empty.xedit":   "",
	}, WithTimeout(50*time.Millisecond))

	tests := []struct {
		name    string
		wantRC  xerr.ReturnCode
		wantErr error
	}{
		{"broken", xerr.RCBadSyntax, ErrCompile},
		{"fails", xerr.RCError, nil},
		{"extract", xerr.RCError, nil},
		{"spin", xerr.RCError, ErrExecutionTimeout},
		{"io", xerr.RCError, nil},
		{"missing", xerr.RCBadSyntax, macro.ErrNotFound},
	}
	for _, tt := range tests {
		rc, err := h.Run(context.Background(), tt.name, "", newEnv())
		if err == nil {
			t.Errorf("Run(%s) succeeded", tt.name)
			continue
		}
		if rc != tt.wantRC {
			t.Errorf("Run(%s) rc = %d, want %d (%v)", tt.name, rc, tt.wantRC, err)
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Errorf("Run(%s) error = %v, want %v", tt.name, err, tt.wantErr)
		}
	}

	rc, err := h.Run(context.Background(), "empty", "", newEnv())
	if err != nil || rc != 0 {
		t.Errorf("Run(empty) = %d, %v, want 0", rc, err)
	}
}

func TestSandbox(t *testing.T) {
	st := NewState()
	defer st.Close()

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "io", "os", "debug"} {
		if st.GetGlobal(name) != lua.LNil {
			t.Errorf("global %s is available", name)
		}
	}
	ret, err := st.Run(context.Background(), "ok", `return string.upper("a") .. math.floor(2.5)`)
	if err != nil {
		t.Fatal(err)
	}
	if ret.String() != "A2" {
		t.Errorf("Run() = %s, want A2", ret)
	}

	st.Close()
	if _, err := st.Run(context.Background(), "closed", "return 1"); !errors.Is(err, ErrStateClosed) {
		t.Errorf("Run() after Close error = %v", err)
	}
}

func TestBridge(t *testing.T) {
	st := NewState()
	defer st.Close()
	b := NewBridge(st.L)

	stem := b.Stem([]string{"x", "y"})
	if stem.RawGetInt(0).String() != "2" || stem.RawGetInt(2).String() != "y" {
		t.Errorf("Stem() = [0]%s [2]%s", stem.RawGetInt(0), stem.RawGetInt(2))
	}

	tests := []struct {
		in   lua.LValue
		want int
	}{
		{lua.LNil, 0},
		{lua.LNumber(4), 4},
		{lua.LString("12"), 12},
		{lua.LString("x"), 0},
		{lua.LFalse, 1},
		{lua.LTrue, 0},
	}
	for _, tt := range tests {
		if got := b.ReturnCode(tt.in); got != tt.want {
			t.Errorf("ReturnCode(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}

	seq, ok := b.ToGoValue(b.ToLuaValue([]string{"a", "b"})).([]any)
	if !ok || len(seq) != 2 || seq[1] != "b" {
		t.Errorf("ToGoValue(sequence) = %v", seq)
	}
	m, ok := b.ToGoValue(b.ToLuaValue(map[string]string{"k": "v"})).(map[string]any)
	if !ok || m["k"] != "v" {
		t.Errorf("ToGoValue(map) = %v", m)
	}
}
