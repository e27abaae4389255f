// Package scene implements the Scene Splitter (§4.2): turning a probed
// source into an ordered, gap-free partition of Scenes, dispatching to one
// of two detector backends and applying extra-split and min-length
// enforcement uniformly across both.
package scene

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/av1an/av1an/internal/chunk"
	"github.com/av1an/av1an/internal/config"
	drerrors "github.com/av1an/av1an/internal/errors"
	"github.com/av1an/av1an/internal/ffprobe"
	"github.com/av1an/av1an/internal/keyframe"
	"github.com/av1an/av1an/internal/scd"
)

// DefaultMinSceneDurationSecs is the minimum scene length enforced when the
// caller does not override it. Neither this nor the detection sensitivity
// threshold is exposed as a CLI flag; both are internal tuning constants.
const DefaultMinSceneDurationSecs = 1.0

// Options configures a single Split call.
type Options struct {
	Method               config.ScenecutMethod
	Threshold            float64 // fast backend only; <= 0 uses keyframe.DefaultSceneThreshold
	MinSceneDurationSecs float64 // <= 0 uses DefaultMinSceneDurationSecs
	ExtraSplitFrames     int     // -x N; <= 0 disables
	ScenesPath           string  // -s <path>; "" disables persistence
	SCOnly               bool    // --sc-only: always recompute and write, never load
}

// Split returns the scene partition for a source, either by loading a
// previously written scenes file or by running the configured detector
// backend and post-processing its output.
func Split(videoPath string, info ffprobe.VideoInfo, opts Options) ([]chunk.Scene, error) {
	if opts.ScenesPath != "" && !opts.SCOnly {
		scenes, ok, err := tryLoad(opts.ScenesPath, info.TotalFrames)
		if err != nil {
			return nil, err
		}
		if ok {
			return scenes, nil
		}
	}

	cuts, err := detect(videoPath, info, opts)
	if err != nil {
		return nil, err
	}

	fpsNum, fpsDen := uint32(info.FPSNum), uint32(info.FPSDen)
	maxFrames := keyframe.CalculateMaxFrames(fpsNum, fpsDen)
	cuts = keyframe.SplitLongScenes(cuts, info.TotalFrames, maxFrames)

	minDuration := opts.MinSceneDurationSecs
	if minDuration <= 0 {
		minDuration = DefaultMinSceneDurationSecs
	}
	minFrames := keyframe.CalculateMinFrames(fpsNum, fpsDen, minDuration)
	cuts = keyframe.MergeShortScenes(cuts, info.TotalFrames, minFrames)

	scenes := boundariesToScenes(cuts, info.TotalFrames)
	scenes = chunk.ApplyExtraSplit(scenes, opts.ExtraSplitFrames)

	if !chunk.ValidatePartition(scenes, info.TotalFrames) {
		return nil, drerrors.NewPlanError("scene splitter produced an invalid partition", nil)
	}

	if opts.ScenesPath != "" {
		if err := WriteScenesFile(opts.ScenesPath, scenes, info.TotalFrames); err != nil {
			return nil, err
		}
	}

	return scenes, nil
}

func detect(videoPath string, info ffprobe.VideoInfo, opts Options) ([]int, error) {
	switch opts.Method {
	case config.ScenecutFast, "":
		threshold := opts.Threshold
		if threshold <= 0 {
			threshold = keyframe.DefaultSceneThreshold
		}
		return keyframe.DetectScenes(videoPath, uint32(info.FPSNum), uint32(info.FPSDen), threshold)
	case config.ScenecutStandard:
		return scd.DetectScenes(videoPath, uint32(info.FPSNum), uint32(info.FPSDen), info.TotalFrames)
	default:
		return nil, drerrors.NewPlanError(fmt.Sprintf("unknown scene-cut method %q", opts.Method), nil)
	}
}

func boundariesToScenes(cuts []int, totalFrames int) []chunk.Scene {
	scenes := make([]chunk.Scene, 0, len(cuts))
	for i, start := range cuts {
		end := totalFrames
		if i+1 < len(cuts) {
			end = cuts[i+1]
		}
		if end <= start {
			continue
		}
		scenes = append(scenes, chunk.Scene{StartFrame: start, EndFrame: end})
	}
	return scenes
}

type scenesDocument struct {
	Scenes []sceneJSON `json:"scenes"`
	Frames int         `json:"frames"`
}

type sceneJSON struct {
	StartFrame int `json:"start_frame"`
	EndFrame   int `json:"end_frame"`
}

// tryLoad loads a scenes file if it exists, validating its frames field
// against totalFrames (§6: a mismatch is fatal, not merely a cache miss).
func tryLoad(path string, totalFrames int) ([]chunk.Scene, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, drerrors.NewIOError(fmt.Sprintf("read scenes file %s", path), err)
	}

	var doc scenesDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false, drerrors.NewPlanError(fmt.Sprintf("parse scenes file %s", path), err)
	}
	if doc.Frames != totalFrames {
		return nil, false, drerrors.NewPlanError(
			fmt.Sprintf("scenes file %s covers %d frames, source has %d", path, doc.Frames, totalFrames), nil)
	}

	scenes := make([]chunk.Scene, len(doc.Scenes))
	for i, s := range doc.Scenes {
		scenes[i] = chunk.Scene{StartFrame: s.StartFrame, EndFrame: s.EndFrame}
	}
	if !chunk.ValidatePartition(scenes, totalFrames) {
		return nil, false, drerrors.NewPlanError(fmt.Sprintf("scenes file %s is not a valid partition", path), nil)
	}
	return scenes, true, nil
}

// WriteScenesFile writes scenes to path in the §6 Scenes JSON schema.
func WriteScenesFile(path string, scenes []chunk.Scene, totalFrames int) error {
	doc := scenesDocument{Scenes: make([]sceneJSON, len(scenes)), Frames: totalFrames}
	for i, s := range scenes {
		doc.Scenes[i] = sceneJSON{StartFrame: s.StartFrame, EndFrame: s.EndFrame}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return drerrors.NewIOError("marshal scenes file", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return drerrors.NewIOError(fmt.Sprintf("write scenes file %s", path), err)
	}
	return nil
}
