package vmaf

import (
	"os"
	"strings"
	"testing"
)

func TestBuildFilterDefaultModel(t *testing.T) {
	f := buildFilter("/tmp/x.json", Options{NThreads: 4})
	if !strings.Contains(f, "log_path=/tmp/x.json") || !strings.Contains(f, "n_threads=4") {
		t.Errorf("buildFilter() = %q, missing log_path/n_threads", f)
	}
	if strings.Contains(f, "model=path=") {
		t.Errorf("buildFilter() = %q, want no model clause when ModelPath is empty", f)
	}
}

func TestBuildFilterCustomModel(t *testing.T) {
	f := buildFilter("/tmp/x.json", Options{ModelPath: "/opt/vmaf/model.json"})
	if !strings.Contains(f, "model=path=/opt/vmaf/model.json") {
		t.Errorf("buildFilter() = %q, want a model clause", f)
	}
}

func TestBuildFilterDefaultsThreadsToOne(t *testing.T) {
	f := buildFilter("/tmp/x.json", Options{})
	if !strings.Contains(f, "n_threads=1") {
		t.Errorf("buildFilter() = %q, want n_threads=1 default", f)
	}
}

func TestReadScore(t *testing.T) {
	f, err := os.CreateTemp("", "av1an-vmaf-test-*.json")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	f.WriteString(`{"pooled_metrics":{"vmaf":{"mean":93.42}}}`)
	f.Close()

	score, err := readScore(f.Name())
	if err != nil {
		t.Fatalf("readScore() error = %v", err)
	}
	if score != 93.42 {
		t.Errorf("readScore() = %v, want 93.42", score)
	}
}

func TestReadScoreMissingFile(t *testing.T) {
	if _, err := readScore("/nonexistent/av1an-vmaf.json"); err == nil {
		t.Error("expected an error for a missing log file")
	}
}

func TestReadScoreMalformedJSON(t *testing.T) {
	f, err := os.CreateTemp("", "av1an-vmaf-test-*.json")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	f.WriteString("not json")
	f.Close()

	if _, err := readScore(f.Name()); err == nil {
		t.Error("expected an error for malformed JSON")
	}
}
