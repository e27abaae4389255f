package chunk

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResumeStoreMarkDoneAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "done.json")

	store := NewResumeStore(path, 112)
	q := 28
	if err := store.MarkDone(0, "/tmp/job/split/0.ivf", &q); err != nil {
		t.Fatalf("MarkDone() error = %v", err)
	}
	if err := store.MarkAudioDone(); err != nil {
		t.Fatalf("MarkAudioDone() error = %v", err)
	}

	reloaded, err := LoadResumeStore(path, 112)
	if err != nil {
		t.Fatalf("LoadResumeStore() error = %v", err)
	}
	rec, ok := reloaded.Get(0)
	if !ok || !rec.Done || rec.SegmentPath != "/tmp/job/split/0.ivf" || rec.Quantizer == nil || *rec.Quantizer != 28 {
		t.Errorf("Get(0) = %+v, %v", rec, ok)
	}
	if !reloaded.AudioDone() {
		t.Error("expected AudioDone() to be true after reload")
	}
}

func TestLoadResumeStoreMissingFile(t *testing.T) {
	dir := t.TempDir()
	store, err := LoadResumeStore(filepath.Join(dir, "missing.json"), 100)
	if err != nil {
		t.Fatalf("LoadResumeStore() error = %v", err)
	}
	if _, ok := store.Get(0); ok {
		t.Error("expected empty store for missing file")
	}
}

func TestResumeStoreVerifyAndFilter(t *testing.T) {
	dir := t.TempDir()
	segPath := filepath.Join(dir, "0.ivf")
	if err := os.WriteFile(segPath, []byte("fake segment"), 0644); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "done.json")
	store := NewResumeStore(path, 60)
	if err := store.MarkDone(0, segPath, nil); err != nil {
		t.Fatal(err)
	}
	// Record a chunk whose segment is missing on disk.
	if err := store.MarkDone(1, filepath.Join(dir, "missing.ivf"), nil); err != nil {
		t.Fatal(err)
	}

	chunks := []Chunk{
		{Index: 0, Start: 0, End: 30},
		{Index: 1, Start: 30, End: 60},
	}

	skip, err := store.VerifyAndFilter(chunks, func(p string) (int, error) {
		if p == segPath {
			return 30, nil
		}
		return 0, os.ErrNotExist
	})
	if err != nil {
		t.Fatalf("VerifyAndFilter() error = %v", err)
	}
	if !skip[0] {
		t.Error("chunk 0 should be verified and skippable")
	}
	if skip[1] {
		t.Error("chunk 1 has a missing segment and should not be skippable")
	}
}

func TestResumeStoreVerifyAndFilterFrameMismatch(t *testing.T) {
	dir := t.TempDir()
	segPath := filepath.Join(dir, "0.ivf")
	if err := os.WriteFile(segPath, []byte("fake"), 0644); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "done.json")
	store := NewResumeStore(path, 30)
	if err := store.MarkDone(0, segPath, nil); err != nil {
		t.Fatal(err)
	}

	chunks := []Chunk{{Index: 0, Start: 0, End: 30}}
	skip, err := store.VerifyAndFilter(chunks, func(string) (int, error) { return 29, nil })
	if err != nil {
		t.Fatalf("VerifyAndFilter() error = %v", err)
	}
	if skip[0] {
		t.Error("chunk with wrong frame count should not be skippable")
	}
}
