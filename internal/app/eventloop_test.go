package app

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestRun(t *testing.T) {
	s, m := newSession(t, nil, "")

	script := strings.Join([]string{
		":2",
		"#V 3",
		"#P 1 d",
		"INPUT",
		"inserted",
		"",
		"QUIT",
		"QQUIT",
		"never read",
	}, "\n")
	var out bytes.Buffer
	err := s.Run(context.Background(), strings.NewReader(script), &out, LoopOptions{Verify: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !s.Done() {
		t.Fatal("Run() returned with files open")
	}

	got := out.String()
	for _, want := range []string{
		"00002>beta",
		"TEST DATA A1  Size=5 Line=2",
		"00001 alpha",
		"1 prefix command applied",
		"Edit mode",
		"00002>inserted",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output lacks %q:\n%s", want, got)
		}
	}

	raw, _ := m.ReadFile("/cms/a/test.data")
	if string(raw) != testData {
		t.Errorf("QQUIT wrote the file: %q", raw)
	}
}

func TestRunEndOfInput(t *testing.T) {
	s, _ := newSession(t, nil, "")

	var out bytes.Buffer
	err := s.Run(context.Background(), strings.NewReader("DOWN 2\n"), &out, LoopOptions{Prompt: "> "})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if s.Done() {
		t.Error("file closed at end of input")
	}
	if out.String() != "> > " {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunCancelled(t *testing.T) {
	s, _ := newSession(t, nil, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Run(ctx, strings.NewReader("TOP\n"), &bytes.Buffer{}, LoopOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestRunEscapeErrors(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"#PF x", "key number"},
		{"#PF 20", "PF20"},
		{"#P", "no prefix entries"},
		{"#P d", "bad prefix entry"},
		{"#V 0", "row count"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			s, _ := newSession(t, nil, "")

			var out bytes.Buffer
			_ = s.Run(context.Background(), strings.NewReader(tt.line+"\n"), &out, LoopOptions{})
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("output = %q, want %q", out.String(), tt.want)
			}
		})
	}
}

func TestParsePrefixLine(t *testing.T) {
	tests := []struct {
		in      string
		want    map[int]string
		wantErr bool
	}{
		{"1 d", map[int]string{1: "d"}, false},
		{"1 dd; 3 dd ;", map[int]string{1: "dd", 3: "dd"}, false},
		{"0 i2", map[int]string{0: "i2"}, false},
		{"", nil, true},
		{"d 1", nil, true},
		{"-1 d", nil, true},
		{"4", nil, true},
	}
	for _, tt := range tests {
		got, err := ParsePrefixLine(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePrefixLine(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParsePrefixLine(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatRow(t *testing.T) {
	tests := []struct {
		row  Row
		want string
	}{
		{Row{Kind: RowBlank, Addr: -1}, ""},
		{Row{Kind: RowTOF, Addr: 0, Text: TOFText}, "00000 " + TOFText},
		{Row{Kind: RowLine, Addr: 12, Text: "x", Current: true}, "00012>x"},
		{Row{Kind: RowLine, Addr: 3, Text: "y", Modified: true}, "00003*y"},
		{Row{Kind: RowLine, Addr: 3, Text: "y", Prefix: "dd"}, "dd    y"},
	}
	for _, tt := range tests {
		if got := FormatRow(tt.row); got != tt.want {
			t.Errorf("FormatRow(%+v) = %q, want %q", tt.row, got, tt.want)
		}
	}
}
