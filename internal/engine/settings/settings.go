// Package settings holds the per-file editor settings changed by SET and
// reported by QUERY and EXTRACT.
package settings

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/xedit/internal/command/abbrev"
	"github.com/dshills/xedit/internal/xerr"
)

// Default values.
const (
	DefaultTrunc   = 72
	DefaultLRECL   = 80
	DefaultArbChar = '$'
	DefaultShift   = 2
	CurLineMiddle  = 0
)

// ErrUnknownSetting is returned for a SET or QUERY subject that does not exist.
var ErrUnknownSetting = errors.New("unknown setting")

// Settings is a value type; copies are independent.
type Settings struct {
	Trunc       int  // Last column edited by CHANGE and input
	ZoneLeft    int  // First column searched by targets and CHANGE
	ZoneRight   int  // Last column searched by targets and CHANGE
	CaseUpper   bool // Uppercase typed input
	CaseRespect bool // Searches distinguish case
	ArbOn       bool // Arbitrary-character matching in string targets
	ArbChar     rune
	Number      bool
	Prefix      bool
	Scale       bool
	Stay        bool // CHANGE leaves the current line in place
	Wrap        bool
	Hex         bool
	CurLine     int // Screen row of the current line, CurLineMiddle for the middle
	VerifyLeft  int
	VerifyRight int
	LRECL       int
	RECFM       string // "V" or "F"
}

// Default returns the settings of a newly opened file.
func Default() Settings {
	return Settings{
		Trunc:       DefaultTrunc,
		ZoneLeft:    1,
		ZoneRight:   DefaultTrunc,
		ArbChar:     DefaultArbChar,
		Number:      true,
		Prefix:      true,
		Stay:        true,
		CurLine:     CurLineMiddle,
		VerifyLeft:  1,
		VerifyRight: DefaultLRECL,
		LRECL:       DefaultLRECL,
		RECFM:       "V",
	}
}

var subjects = abbrev.New(
	abbrev.Entry{Name: "ARBCHAR", Min: 3},
	abbrev.Entry{Name: "CASE", Min: 2},
	abbrev.Entry{Name: "CURLINE", Min: 3},
	abbrev.Entry{Name: "HEX", Min: 3},
	abbrev.Entry{Name: "LRECL", Min: 5},
	abbrev.Entry{Name: "NUMBER", Min: 2},
	abbrev.Entry{Name: "PREFIX", Min: 2},
	abbrev.Entry{Name: "RECFM", Min: 5},
	abbrev.Entry{Name: "SCALE", Min: 2},
	abbrev.Entry{Name: "STAY", Min: 2},
	abbrev.Entry{Name: "TRUNC", Min: 2},
	abbrev.Entry{Name: "VERIFY", Min: 1},
	abbrev.Entry{Name: "WRAP", Min: 2},
	abbrev.Entry{Name: "ZONE", Min: 1},
)

// Subject resolves an abbreviated setting name.
func Subject(name string) (string, error) {
	s, err := subjects.Resolve(name)
	if err != nil {
		var unk *xerr.UnknownError
		if errors.As(err, &unk) {
			return "", fmt.Errorf("%s: %w", strings.ToUpper(name), ErrUnknownSetting)
		}
		return "", err
	}
	return s, nil
}

// Subjects returns every setting name.
func Subjects() []string {
	return subjects.Names()
}

// Set returns a copy of s with the named setting changed.
// Operand errors wrap xerr.ErrBadSyntax and leave s untouched.
func (s Settings) Set(name string, operands []string) (Settings, error) {
	subject, err := Subject(name)
	if err != nil {
		return s, err
	}

	switch subject {
	case "TRUNC":
		n, err := column(operands, 0, s.LRECL)
		if err != nil {
			return s, err
		}
		s.Trunc = n
		if s.ZoneRight > n {
			s.ZoneRight = n
		}
	case "ZONE":
		if len(operands) != 2 {
			return s, xerr.Syntax("ZONE needs two columns")
		}
		left, err := column(operands, 0, s.Trunc)
		if err != nil {
			return s, err
		}
		right := s.Trunc
		if operands[1] != "*" {
			if right, err = column(operands, 1, s.Trunc); err != nil {
				return s, err
			}
		}
		if left > right {
			return s, xerr.Syntax("ZONE %d %d", left, right)
		}
		s.ZoneLeft, s.ZoneRight = left, right
	case "CASE":
		if len(operands) == 0 || len(operands) > 2 {
			return s, xerr.Syntax("CASE needs M or U and optionally R or I")
		}
		switch strings.ToUpper(operands[0]) {
		case "M", "MIXED":
			s.CaseUpper = false
		case "U", "UPPER":
			s.CaseUpper = true
		case "R", "RESPECT":
			if len(operands) == 1 {
				s.CaseRespect = true
				return s, nil
			}
			return s, xerr.Syntax("CASE %s", strings.Join(operands, " "))
		case "I", "IGNORE":
			if len(operands) == 1 {
				s.CaseRespect = false
				return s, nil
			}
			return s, xerr.Syntax("CASE %s", strings.Join(operands, " "))
		default:
			return s, xerr.Syntax("CASE %s", operands[0])
		}
		if len(operands) == 2 {
			switch strings.ToUpper(operands[1]) {
			case "R", "RESPECT":
				s.CaseRespect = true
			case "I", "IGNORE":
				s.CaseRespect = false
			default:
				return s, xerr.Syntax("CASE %s", operands[1])
			}
		}
	case "ARBCHAR":
		if len(operands) == 0 || len(operands) > 2 {
			return s, xerr.Syntax("ARBCHAR needs ON or OFF")
		}
		on, err := onOff(operands[0])
		if err != nil {
			return s, err
		}
		if len(operands) == 2 {
			r := []rune(operands[1])
			if len(r) != 1 {
				return s, xerr.Syntax("ARBCHAR character %q", operands[1])
			}
			s.ArbChar = r[0]
		}
		s.ArbOn = on
	case "NUMBER", "PREFIX", "SCALE", "STAY", "WRAP", "HEX":
		if len(operands) != 1 {
			return s, xerr.Syntax("%s needs ON or OFF", subject)
		}
		on, err := onOff(operands[0])
		if err != nil {
			return s, err
		}
		*s.flag(subject) = on
	case "CURLINE":
		if len(operands) != 1 {
			return s, xerr.Syntax("CURLINE needs M or a row")
		}
		if strings.EqualFold(operands[0], "M") {
			s.CurLine = CurLineMiddle
			break
		}
		n, err := column(operands, 0, 1<<16)
		if err != nil {
			return s, err
		}
		s.CurLine = n
	case "VERIFY":
		if len(operands) != 2 {
			return s, xerr.Syntax("VERIFY needs two columns")
		}
		left, err := column(operands, 0, s.LRECL)
		if err != nil {
			return s, err
		}
		right, err := column(operands, 1, s.LRECL)
		if err != nil {
			return s, err
		}
		if left > right {
			return s, xerr.Syntax("VERIFY %d %d", left, right)
		}
		s.VerifyLeft, s.VerifyRight = left, right
	case "LRECL":
		n, err := column(operands, 0, 65535)
		if err != nil {
			return s, err
		}
		s.LRECL = n
		if s.Trunc > n {
			s.Trunc = n
		}
		if s.ZoneRight > s.Trunc {
			s.ZoneRight = s.Trunc
		}
	case "RECFM":
		if len(operands) != 1 {
			return s, xerr.Syntax("RECFM needs F or V")
		}
		switch v := strings.ToUpper(operands[0]); v {
		case "F", "V":
			s.RECFM = v
		default:
			return s, xerr.Syntax("RECFM %s", operands[0])
		}
	}
	return s, nil
}

func (s *Settings) flag(subject string) *bool {
	switch subject {
	case "NUMBER":
		return &s.Number
	case "PREFIX":
		return &s.Prefix
	case "SCALE":
		return &s.Scale
	case "STAY":
		return &s.Stay
	case "WRAP":
		return &s.Wrap
	default:
		return &s.Hex
	}
}

// Query returns the display values of the named setting, in the order
// EXTRACT exposes them.
func (s Settings) Query(name string) (string, []string, error) {
	subject, err := Subject(name)
	if err != nil {
		return "", nil, err
	}

	switch subject {
	case "TRUNC":
		return subject, []string{strconv.Itoa(s.Trunc)}, nil
	case "ZONE":
		return subject, []string{strconv.Itoa(s.ZoneLeft), strconv.Itoa(s.ZoneRight)}, nil
	case "CASE":
		upper, respect := "MIXED", "IGNORE"
		if s.CaseUpper {
			upper = "UPPER"
		}
		if s.CaseRespect {
			respect = "RESPECT"
		}
		return subject, []string{upper, respect}, nil
	case "ARBCHAR":
		return subject, []string{OnOff(s.ArbOn), string(s.ArbChar)}, nil
	case "NUMBER", "PREFIX", "SCALE", "STAY", "WRAP", "HEX":
		return subject, []string{OnOff(*s.flag(subject))}, nil
	case "CURLINE":
		if s.CurLine == CurLineMiddle {
			return subject, []string{"M"}, nil
		}
		return subject, []string{strconv.Itoa(s.CurLine)}, nil
	case "VERIFY":
		return subject, []string{strconv.Itoa(s.VerifyLeft), strconv.Itoa(s.VerifyRight)}, nil
	case "LRECL":
		return subject, []string{strconv.Itoa(s.LRECL)}, nil
	default:
		return subject, []string{s.RECFM}, nil
	}
}

// OnOff renders a flag the way QUERY reports it.
func OnOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}

func onOff(s string) (bool, error) {
	switch strings.ToUpper(s) {
	case "ON":
		return true, nil
	case "OFF":
		return false, nil
	}
	return false, xerr.Syntax("expected ON or OFF, got %q", s)
}

// column parses operands[i] as a column number in [1, max].
func column(operands []string, i, max int) (int, error) {
	if i >= len(operands) {
		return 0, xerr.Syntax("missing number")
	}
	n, err := strconv.Atoi(operands[i])
	if err != nil || n < 1 || n > max {
		return 0, xerr.Syntax("invalid column %q", operands[i])
	}
	return n, nil
}
