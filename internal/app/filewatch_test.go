package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileWatcherChanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("[]"), 0644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(path, past, past); err != nil {
		t.Fatal(err)
	}

	w := NewFileWatcher(path, time.Millisecond)
	if w == nil {
		t.Fatal("NewFileWatcher returned nil")
	}
	if w.Changed() {
		t.Error("fresh watcher reports a change")
	}

	if err := os.Chtimes(path, time.Now(), time.Now()); err != nil {
		t.Fatal(err)
	}
	if !w.Changed() {
		t.Error("modification not detected")
	}
	w.ResetBaseline()
	if w.Changed() {
		t.Error("change reported after ResetBaseline")
	}
}

func TestFileWatcherCallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("[]"), 0644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(path, past, past); err != nil {
		t.Fatal(err)
	}

	w := NewFileWatcher(path, 5*time.Millisecond)
	fired := make(chan struct{}, 1)
	w.OnChange(func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	w.Start()
	defer w.Stop()

	if err := os.Chtimes(path, time.Now(), time.Now()); err != nil {
		t.Fatal(err)
	}
	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("OnChange callback not called")
	}
}

func TestFileWatcherMissingFile(t *testing.T) {
	if w := NewFileWatcher(filepath.Join(t.TempDir(), "nope.json"), time.Second); w != nil {
		t.Error("watcher created for a missing file")
	}
}
