// Package concat implements the Concatenator (§4.8): joining a chunk
// list's encoded segment files, in planning order, into one output file,
// stream-copying the source's audio in alongside if present.
package concat

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/av1an/av1an/internal/chunk"
	drerrors "github.com/av1an/av1an/internal/errors"
)

// Method names one of the two concatenation strategies.
type Method string

const (
	MethodFFmpeg   Method = "ffmpeg"
	MethodMKVMerge Method = "mkvmerge"
)

// Required reports which Method an encoder mandates, or "" if either
// works. x265 writes a raw HEVC elementary stream ffmpeg's concat demuxer
// cannot re-multiplex cleanly across segment boundaries, so it requires
// mkvmerge (§4.8).
func Required(encoderName string) Method {
	if encoderName == "x265" {
		return MethodMKVMerge
	}
	return ""
}

// Options configures one concatenation run.
type Options struct {
	Method     Method
	ScratchDir string
	Chunks     []chunk.Chunk
	OutputPath string
	AudioPath  string // empty when the source has no audio stream
}

// Concat joins opts.Chunks's segment files into opts.OutputPath in
// planning order (index ascending), muxing in opts.AudioPath if set.
func Concat(opts Options) error {
	segments := sortedSegments(opts.Chunks)
	if len(segments) == 0 {
		return drerrors.NewPlanError("concat: no segment files to join", nil)
	}

	switch opts.Method {
	case MethodMKVMerge:
		return mkvmergeConcat(segments, opts.OutputPath, opts.AudioPath)
	default:
		return ffmpegConcat(segments, opts.ScratchDir, opts.OutputPath, opts.AudioPath)
	}
}

func sortedSegments(chunks []chunk.Chunk) []string {
	sorted := make([]chunk.Chunk, len(chunks))
	copy(sorted, chunks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	segments := make([]string, len(sorted))
	for i, c := range sorted {
		segments[i] = c.Segment
	}
	return segments
}

// ffmpegConcat writes a concat-demuxer list file and runs ffmpeg's -f
// concat over it, stream-copying both video and audio.
func ffmpegConcat(segments []string, scratchDir, outputPath, audioPath string) error {
	listPath := filepath.Join(scratchDir, "concat.txt")
	var b strings.Builder
	for _, seg := range segments {
		abs, err := filepath.Abs(seg)
		if err != nil {
			return drerrors.NewIOError("resolve segment path for concat list", err)
		}
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(abs, "'", "'\\''"))
	}
	if err := os.WriteFile(listPath, []byte(b.String()), 0644); err != nil {
		return drerrors.NewIOError("write concat list", err)
	}

	args := []string{"-y", "-hide_banner", "-loglevel", "error", "-f", "concat", "-safe", "0", "-i", listPath}
	if audioPath != "" {
		args = append(args, "-i", audioPath, "-map", "0:v", "-map", "1:a", "-c:a", "copy")
	}
	args = append(args, "-c:v", "copy", outputPath)

	cmd := exec.Command("ffmpeg", args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return drerrors.WrapExecError(drerrors.KindIO, "ffmpeg -f concat", err, stderr.String())
	}
	return nil
}

// mkvmergeConcat chains segments with "+" (mkvmerge's append operator)
// and passes the audio source as an extra, non-appended input muxed into
// the same output.
func mkvmergeConcat(segments []string, outputPath, audioPath string) error {
	args := []string{"-o", outputPath}
	for i, seg := range segments {
		if i > 0 {
			args = append(args, "+")
		}
		args = append(args, seg)
	}
	if audioPath != "" {
		args = append(args, audioPath)
	}

	cmd := exec.Command("mkvmerge", args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return drerrors.WrapExecError(drerrors.KindIO, "mkvmerge", err, stderr.String())
	}
	return nil
}
