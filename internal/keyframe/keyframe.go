// Package keyframe implements the "fast" Scene Splitter backend (§4.2): an
// ffmpeg scene-change filter run over the whole source, with frame-count
// based enforcement of minimum and maximum scene length.
package keyframe

import (
	"bufio"
	"fmt"
	"math"
	"os/exec"
	"regexp"
	"sort"
	"strconv"

	drerrors "github.com/av1an/av1an/internal/errors"
)

// DefaultSceneThreshold is ffmpeg's scene-score cutoff above which a frame
// is treated as a cut. Higher values detect fewer, more confident cuts.
const DefaultSceneThreshold = 0.5

var ptsTimeRegex = regexp.MustCompile(`pts_time:(\d+\.?\d*)`)

// DetectScenes runs ffmpeg's scene-change filter on videoPath and returns a
// sorted, deduplicated list of cut frame numbers, always including 0.
func DetectScenes(videoPath string, fpsNum, fpsDen uint32, threshold float64) ([]int, error) {
	if threshold <= 0 {
		threshold = DefaultSceneThreshold
	}
	if fpsDen == 0 {
		return nil, drerrors.NewPlanError("detect scenes: zero frame rate denominator", nil)
	}

	cmd := exec.Command("ffmpeg",
		"-i", videoPath,
		"-vf", fmt.Sprintf("select='gt(scene,%g)',showinfo", threshold),
		"-an",
		"-f", "null",
		"-",
	)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, drerrors.NewPlanError("detect scenes: create stderr pipe", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, drerrors.WrapExecError(drerrors.KindPlan, "ffmpeg", err, "")
	}

	fps := float64(fpsNum) / float64(fpsDen)
	var cuts []int
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		matches := ptsTimeRegex.FindStringSubmatch(scanner.Text())
		if len(matches) < 2 {
			continue
		}
		ptsTime, err := strconv.ParseFloat(matches[1], 64)
		if err != nil {
			continue
		}
		cuts = append(cuts, int(math.Round(ptsTime*fps)))
	}
	scanErr := scanner.Err()
	_ = cmd.Wait() // ffmpeg exits nonzero when writing to -f null; cut list is already captured

	if scanErr != nil {
		return nil, drerrors.NewPlanError("detect scenes: read ffmpeg output", scanErr)
	}

	if len(cuts) == 0 || cuts[0] != 0 {
		cuts = append([]int{0}, cuts...)
	}
	sort.Ints(cuts)
	return dedupe(cuts), nil
}

// CalculateMaxFrames returns the default max scene length in frames:
// min(fps * 30, 1000).
func CalculateMaxFrames(fpsNum, fpsDen uint32) int {
	if fpsDen == 0 {
		return 1000
	}
	fps := float64(fpsNum) / float64(fpsDen)
	if maxFromFPS := int(fps * 30); maxFromFPS < 1000 {
		return maxFromFPS
	}
	return 1000
}

// CalculateMinFrames converts a minimum scene duration into a frame count.
func CalculateMinFrames(fpsNum, fpsDen uint32, minDurationSecs float64) int {
	if fpsDen == 0 || minDurationSecs <= 0 {
		return 0
	}
	fps := float64(fpsNum) / float64(fpsDen)
	return int(fps * minDurationSecs)
}

// SplitLongScenes subdivides any gap between consecutive cut points that
// exceeds maxFrames into roughly equal sub-runs, each at most maxFrames.
func SplitLongScenes(cuts []int, totalFrames, maxFrames int) []int {
	if len(cuts) == 0 {
		return []int{0}
	}
	if maxFrames <= 0 {
		return cuts
	}

	result := make([]int, 0, len(cuts))
	for i, start := range cuts {
		end := totalFrames
		if i+1 < len(cuts) {
			end = cuts[i+1]
		}
		result = append(result, start)

		sceneLen := end - start
		if sceneLen > maxFrames {
			numChunks := (sceneLen + maxFrames - 1) / maxFrames
			for j := 1; j < numChunks; j++ {
				if split := start + j*sceneLen/numChunks; split < end {
					result = append(result, split)
				}
			}
		}
	}
	sort.Ints(result)
	return dedupe(result)
}

// MergeShortScenes merges any cut that would produce a run shorter than
// minFrames into whichever neighbor keeps the resulting runs more balanced.
func MergeShortScenes(cuts []int, totalFrames, minFrames int) []int {
	if len(cuts) <= 1 || minFrames <= 0 {
		return cuts
	}

	result := make([]int, len(cuts))
	copy(result, cuts)

	for {
		merged := false
		for i := 0; i < len(result); i++ {
			start := result[i]
			end := totalFrames
			if i+1 < len(result) {
				end = result[i+1]
			}
			if end-start >= minFrames {
				continue
			}

			if i == 0 {
				if len(result) > 1 {
					result = append(result[:1], result[2:]...)
					merged = true
					break
				}
				continue
			}

			prevStart := 0
			if i > 1 {
				prevStart = result[i-1]
			}
			prevLen := start - prevStart

			nextEnd := totalFrames
			if i+2 < len(result) {
				nextEnd = result[i+2]
			}
			nextLen := nextEnd - end

			if i+1 >= len(result) || prevLen <= nextLen {
				result = append(result[:i], result[i+1:]...)
			} else {
				result = append(result[:i+1], result[i+2:]...)
			}
			merged = true
			break
		}
		if !merged {
			break
		}
	}
	return result
}

// dedupe removes adjacent duplicates from a sorted slice.
func dedupe(sorted []int) []int {
	if len(sorted) <= 1 {
		return sorted
	}
	result := make([]int, 1, len(sorted))
	result[0] = sorted[0]
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1] {
			result = append(result, sorted[i])
		}
	}
	return result
}
