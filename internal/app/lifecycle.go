package app

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/dshills/xedit/internal/ring"
	"github.com/dshills/xedit/internal/vfs"
	"github.com/dshills/xedit/internal/xerr"
)

// OpenFiles runs XEDIT for each file, given as "fn ft [fm]". The first
// failure stops the sequence.
func (s *Session) OpenFiles(ctx context.Context, files ...string) error {
	for _, f := range files {
		if strings.TrimSpace(f) == "" {
			continue
		}
		r := s.Execute(ctx, "XEDIT "+f)
		if r.Code != xerr.RCOK {
			return &OpenError{File: f, Code: int(r.Code), Message: s.message}
		}
	}
	return nil
}

// Poll applies pending file change events: an entry whose file was
// changed or removed by another program is flagged Changed. Writes that
// leave the file equal to the buffer, such as SAVE, are ignored.
func (s *Session) Poll() []*ring.Entry {
	if s.watcher == nil {
		return nil
	}

	var changed []*ring.Entry
	for _, ev := range s.watcher.Drain() {
		id, ok := s.watched[ev.Path]
		if !ok {
			continue
		}
		i, err := s.Ring().ByID(id)
		if err != nil {
			continue
		}
		e, _ := s.Ring().Entry(i)
		if e.Changed || !s.differs(e, ev) {
			continue
		}
		e.Changed = true
		changed = append(changed, e)
		s.logger.Info("%s changed on disk (%s)", e.Name(), ev.Op)
	}
	return changed
}

// differs reports whether the disk no longer holds the entry's text.
func (s *Session) differs(e *ring.Entry, ev vfs.Event) bool {
	if ev.Op.Has(vfs.OpRemove) || ev.Op.Has(vfs.OpRename) {
		return !s.files.Exists(e.Identity)
	}
	lines, err := s.files.Read(e.Identity)
	if err != nil {
		return true
	}
	return !slices.Equal(lines, e.Engine.Buffer().Lines())
}

// syncWatches watches the files of the ring and stops watching closed ones.
func (s *Session) syncWatches() {
	if s.watcher == nil {
		return
	}

	want := make(map[string]uuid.UUID)
	for _, e := range s.Ring().Entries() {
		path, err := s.files.Path(e.Identity)
		if err != nil {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			continue
		}
		want[abs] = e.ID
	}

	for path := range s.watched {
		if _, ok := want[path]; !ok {
			_ = s.watcher.Unwatch(path)
			delete(s.watched, path)
		}
	}
	for path, id := range want {
		if _, ok := s.watched[path]; ok {
			s.watched[path] = id
			continue
		}
		if err := s.watcher.Watch(path); err != nil {
			s.logger.Warn("cannot watch %s: %v", path, err)
			continue
		}
		s.watched[path] = id
	}
}
