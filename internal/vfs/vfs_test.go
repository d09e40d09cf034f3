package vfs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestMemFS_AddFile(t *testing.T) {
	m := NewMemFS()

	if err := m.AddFile("/a/b/c/file.txt", "content"); err != nil {
		t.Fatalf("AddFile failed: %v", err)
	}
	if !m.Exists("/a/b/c/file.txt") {
		t.Error("file should exist")
	}
	info, err := m.Stat("/a/b")
	if err != nil || !info.IsDir() {
		t.Errorf("parent directory should exist: %v", err)
	}
}

func TestMemFS_ReadWrite(t *testing.T) {
	m := NewMemFS()

	if err := m.WriteFile("/missing/dir/x", []byte("x"), 0o644); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("write without parent: got %v", err)
	}
	if err := m.MkdirAll("/disk", 0o755); err != nil {
		t.Fatal(err)
	}
	data := []byte("hello")
	if err := m.WriteFile("/disk/a.txt", data, 0o644); err != nil {
		t.Fatal(err)
	}
	data[0] = 'j'

	got, err := m.ReadFile("disk/a.txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello" {
		t.Errorf("content: got %q, want %q", got, "hello")
	}
	if _, err := m.ReadFile("/disk/none"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing file: got %v", err)
	}
}

func TestMemFS_ReadDirRemove(t *testing.T) {
	m := NewMemFS()
	_ = m.AddFile("/d/b.txt", "b")
	_ = m.AddFile("/d/a.txt", "a")
	_ = m.AddFile("/d/sub/c.txt", "c")

	entries, err := m.ReadDir("/d")
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	want := []string{"a.txt", "b.txt", "sub"}
	if len(names) != len(want) {
		t.Fatalf("entries: got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("entries[%d]: got %q, want %q", i, names[i], want[i])
		}
	}

	if err := m.Remove("/d/sub"); err == nil {
		t.Error("removing non-empty directory should fail")
	}
	if err := m.Remove("/d/sub/c.txt"); err != nil {
		t.Fatal(err)
	}
	if err := m.Remove("/d/sub"); err != nil {
		t.Errorf("removing empty directory: %v", err)
	}
	if m.Exists("/d/sub") {
		t.Error("directory should be gone")
	}
}

func TestOSFS_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	f := NewOSFS()
	p := f.Join(dir, "profile.xedit")

	if f.Exists(p) {
		t.Fatal("file should not exist yet")
	}
	if err := f.WriteFile(p, []byte("one\ntwo\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := f.WriteFile(p, []byte("three\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := f.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "three\n" {
		t.Errorf("content: got %q", got)
	}

	entries, err := f.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %d entries", len(entries))
	}
}

func TestWatcher_ReportsWrite(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "watched.txt")
	other := filepath.Join(dir, "other.txt")
	if err := os.WriteFile(p, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(16)
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	defer w.Close()

	if err := w.Watch(p); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(other, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("b"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-w.Events():
			if ev.Path != p {
				t.Fatalf("event for unwatched file %s", ev.Path)
			}
			return
		case <-deadline:
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestWatcher_Unwatch(t *testing.T) {
	w, err := NewWatcher(4)
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	p := filepath.Join(t.TempDir(), "f")

	if err := w.Unwatch(p); !errors.Is(err, ErrNotWatching) {
		t.Errorf("Unwatch unknown: got %v", err)
	}
	if err := w.Watch(p); err != nil {
		t.Fatal(err)
	}
	if err := w.Unwatch(p); err != nil {
		t.Errorf("Unwatch: %v", err)
	}
	if len(w.Drain()) != 0 {
		t.Error("no events expected")
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Watch(p); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("Watch after Close: got %v", err)
	}
}
