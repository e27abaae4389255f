package scd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadFrameList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cuts.txt")
	if err := os.WriteFile(path, []byte("0\n120\n340\n\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cuts, err := readFrameList(path)
	if err != nil {
		t.Fatalf("readFrameList() error = %v", err)
	}
	want := []int{0, 120, 340}
	if len(cuts) != len(want) {
		t.Fatalf("readFrameList() = %v, want %v", cuts, want)
	}
	for i := range want {
		if cuts[i] != want[i] {
			t.Errorf("readFrameList()[%d] = %d, want %d", i, cuts[i], want[i])
		}
	}
}

func TestReadFrameListPrependsZero(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cuts.txt")
	if err := os.WriteFile(path, []byte("50\n200\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cuts, err := readFrameList(path)
	if err != nil {
		t.Fatalf("readFrameList() error = %v", err)
	}
	if len(cuts) == 0 || cuts[0] != 0 {
		t.Errorf("readFrameList() = %v, want a leading 0", cuts)
	}
}

func TestReadFrameListInvalidLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cuts.txt")
	if err := os.WriteFile(path, []byte("0\nnot-a-number\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := readFrameList(path); err == nil {
		t.Error("expected an error for a non-numeric frame line")
	}
}

func TestIsAvailable(t *testing.T) {
	// av1an-scd is not expected to be installed in the test environment;
	// this just exercises the PATH lookup without asserting a specific result.
	_ = IsAvailable()
}
