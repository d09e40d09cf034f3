package macro

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/xedit/internal/engine"
	"github.com/dshills/xedit/internal/engine/settings"
)

// FileInfo is the file identity as EXTRACT reports it.
type FileInfo struct {
	Name, Type, Mode string
}

// FileInfoOf splits the display form of an identity ("fn ft fm") into its
// parts. Missing parts are empty.
func FileInfoOf(id fmt.Stringer) FileInfo {
	if id == nil {
		return FileInfo{}
	}
	f := strings.Fields(id.String())
	for len(f) < 3 {
		f = append(f, "")
	}
	return FileInfo{Name: f[0], Type: f[1], Mode: f[2]}
}

// State is what Capture reads.
type State struct {
	Engine      *engine.Engine
	File        FileInfo
	Ring        []string // Identities of every open file, in ring order
	LastMessage string
	Changed     bool // The file changed on disk since it was read
}

// settingStems are exported under their setting names.
var settingStems = []string{
	"TRUNC", "ZONE", "CASE", "ARBCHAR", "NUMBER", "PREFIX", "SCALE",
	"STAY", "WRAP", "HEX", "VERIFY", "LRECL", "RECFM",
}

// Capture takes a snapshot of st.
func Capture(st State) *Snapshot {
	s := NewSnapshot()
	s.Set("RING", append([]string{strconv.Itoa(len(st.Ring))}, st.Ring...)...)
	s.Set("LASTMSG", st.LastMessage)
	s.Set("FNAME", st.File.Name)
	s.Set("FTYPE", st.File.Type)
	s.Set("FMODE", st.File.Mode)
	s.Set("CHANGED", settings.OnOff(st.Changed))

	e := st.Engine
	if e == nil {
		return s
	}
	buf := e.Buffer()
	cur := strconv.Itoa(buf.Current())
	s.Set("CURLINE", cur, settings.OnOff(buf.AtTOF()), buf.Text(buf.Current()))
	s.Set("LINE", cur)
	s.Set("SIZE", strconv.Itoa(buf.LineCount()))
	s.Set("COLUMN", strconv.Itoa(e.Column()))
	s.Set("ALT", strconv.Itoa(buf.AltCount()))
	s.Set("TOF", settings.OnOff(buf.AtTOF()))
	s.Set("EOF", settings.OnOff(buf.AtEOF()))
	s.Set("MODIFIED", settings.OnOff(buf.Modified()))

	set := e.Settings()
	for _, name := range settingStems {
		if subject, values, err := set.Query(name); err == nil {
			s.Set(subject, values...)
		}
	}
	return s
}
