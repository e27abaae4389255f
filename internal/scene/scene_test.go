package scene

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/av1an/av1an/internal/chunk"
)

func TestBoundariesToScenes(t *testing.T) {
	scenes := boundariesToScenes([]int{0, 30, 90}, 120)
	if len(scenes) != 3 {
		t.Fatalf("boundariesToScenes() produced %d scenes, want 3", len(scenes))
	}
	if !chunk.ValidatePartition(scenes, 120) {
		t.Errorf("boundariesToScenes() did not produce a valid partition: %+v", scenes)
	}
}

func TestWriteAndLoadScenesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenes.json")
	scenes := []chunk.Scene{{StartFrame: 0, EndFrame: 50}, {StartFrame: 50, EndFrame: 120}}

	if err := WriteScenesFile(path, scenes, 120); err != nil {
		t.Fatalf("WriteScenesFile() error = %v", err)
	}

	loaded, ok, err := tryLoad(path, 120)
	if err != nil || !ok {
		t.Fatalf("tryLoad() = %v, %v, %v", loaded, ok, err)
	}
	if len(loaded) != len(scenes) || loaded[0] != scenes[0] || loaded[1] != scenes[1] {
		t.Errorf("tryLoad() = %+v, want %+v", loaded, scenes)
	}
}

func TestTryLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, ok, err := tryLoad(filepath.Join(dir, "missing.json"), 100)
	if err != nil {
		t.Fatalf("tryLoad() error = %v", err)
	}
	if ok {
		t.Error("expected ok=false for a missing scenes file")
	}
}

func TestTryLoadFrameMismatchIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenes.json")
	data, _ := json.Marshal(scenesDocument{
		Scenes: []sceneJSON{{StartFrame: 0, EndFrame: 100}},
		Frames: 100,
	})
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := tryLoad(path, 200); err == nil {
		t.Error("expected an error when the scenes file's frame count does not match the source")
	}
}
