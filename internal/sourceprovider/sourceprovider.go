// Package sourceprovider implements the Chunk Source Provider (§4.4): the
// four methods by which a subrange of a source's frames is fed to an
// encoder's stdin as a y4m stream. Every method is a subprocess — §1 frames
// demuxers as external black boxes, so this package only knows how to
// invoke them, never how they decode.
package sourceprovider

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/av1an/av1an/internal/chunk"
	drerrors "github.com/av1an/av1an/internal/errors"
	"github.com/av1an/av1an/internal/ffprobe"
)

// Provider builds the subprocess that streams one chunk's frames in
// source order to its stdout, ready to be piped into an encoder's stdin.
type Provider interface {
	Access() chunk.SourceAccess
	// Prepare runs any one-time, whole-source setup this method needs
	// before any chunk's Command is called. A no-op for methods that seek
	// independently per chunk.
	Prepare(videoPath, scratchDir string, chunks []chunk.Chunk, info ffprobe.VideoInfo) error
	// Command builds the subprocess for one chunk. Its Stdout must be
	// wired directly to the encoder's Stdin by the caller.
	Command(videoPath, scratchDir string, c chunk.Chunk, info ffprobe.VideoInfo) (*exec.Cmd, error)
}

// New resolves a SourceAccess method into its Provider.
func New(access chunk.SourceAccess) (Provider, error) {
	switch access {
	case chunk.SourceAccessIndexed:
		return &indexedProvider{}, nil
	case chunk.SourceAccessPipedRange:
		return pipedRangeProvider{}, nil
	case chunk.SourceAccessSelectFilter:
		return selectFilterProvider{}, nil
	case chunk.SourceAccessHybrid:
		return &hybridProvider{}, nil
	default:
		return nil, drerrors.NewPlanError(fmt.Sprintf("unknown source access method %q", access), nil)
	}
}

func y4mOutputArgs(pixFormat string) []string {
	return []string{"-pix_fmt", pixFormat, "-strict", "-1", "-f", "yuv4mpegpipe", "-"}
}

// selectFilterProvider always decodes the full source and drops frames
// outside [start, end) (§4.4: "always frame-accurate, always slow").
type selectFilterProvider struct{}

func (selectFilterProvider) Access() chunk.SourceAccess { return chunk.SourceAccessSelectFilter }

func (selectFilterProvider) Prepare(string, string, []chunk.Chunk, ffprobe.VideoInfo) error { return nil }

func (selectFilterProvider) Command(videoPath, _ string, c chunk.Chunk, info ffprobe.VideoInfo) (*exec.Cmd, error) {
	return selectFilterCommand(videoPath, c, info.PixFormat), nil
}

func selectFilterCommand(videoPath string, c chunk.Chunk, pixFormat string) *exec.Cmd {
	filter := fmt.Sprintf(`select=between(n\,%d\,%d)`, c.Start, c.End-1)
	args := append([]string{"-y", "-hide_banner", "-loglevel", "error", "-i", videoPath, "-vf", filter}, y4mOutputArgs(pixFormat)...)
	return exec.Command("ffmpeg", args...)
}

// pipedRangeProvider uses a time-based input seek, frame-accurate only when
// the source has stable, constant-framerate PTS (§4.4).
type pipedRangeProvider struct{}

func (pipedRangeProvider) Access() chunk.SourceAccess { return chunk.SourceAccessPipedRange }

func (pipedRangeProvider) Prepare(string, string, []chunk.Chunk, ffprobe.VideoInfo) error { return nil }

func (pipedRangeProvider) Command(videoPath, _ string, c chunk.Chunk, info ffprobe.VideoInfo) (*exec.Cmd, error) {
	return pipedRangeCommand(videoPath, c, info), nil
}

func pipedRangeCommand(videoPath string, c chunk.Chunk, info ffprobe.VideoInfo) *exec.Cmd {
	fps := float64(info.FPSNum) / float64(info.FPSDen)
	startTime := float64(c.Start) / fps
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-ss", strconv.FormatFloat(startTime, 'f', 6, 64),
		"-i", videoPath,
		"-frames:v", strconv.Itoa(c.Frames()),
	}
	args = append(args, y4mOutputArgs(info.PixFormat)...)
	return exec.Command("ffmpeg", args...)
}

// indexedProvider pre-splits the whole source into per-chunk containers
// with a single stream-copy pass, then fully decodes each chunk's own
// container (§4.4: "build a frame-accurate index... and seek").
type indexedProvider struct{}

func (p *indexedProvider) Access() chunk.SourceAccess { return chunk.SourceAccessIndexed }

func (p *indexedProvider) Prepare(videoPath, scratchDir string, chunks []chunk.Chunk, _ ffprobe.VideoInfo) error {
	return presegment(videoPath, scratchDir, chunks)
}

func (p *indexedProvider) Command(_ string, scratchDir string, c chunk.Chunk, info ffprobe.VideoInfo) (*exec.Cmd, error) {
	segPath := presegmentPath(scratchDir, c.Index)
	if _, err := os.Stat(segPath); err != nil {
		return nil, drerrors.NewIOError(fmt.Sprintf("indexed source segment for chunk %d", c.Index), err)
	}
	args := append([]string{"-y", "-hide_banner", "-loglevel", "error", "-i", segPath}, y4mOutputArgs(info.PixFormat)...)
	return exec.Command("ffmpeg", args...), nil
}

func presegmentDir(scratchDir string) string {
	return filepath.Join(scratchDir, "presplit")
}

func presegmentPath(scratchDir string, index int) string {
	return filepath.Join(presegmentDir(scratchDir), fmt.Sprintf("%d.mkv", index))
}

// presegment stream-copy-splits videoPath at every chunk boundary in one
// ffmpeg invocation using the segment muxer.
func presegment(videoPath, scratchDir string, chunks []chunk.Chunk) error {
	dir := presegmentDir(scratchDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return drerrors.NewIOError("create presplit directory", err)
	}

	boundaries := make([]string, 0, len(chunks)-1)
	for _, c := range chunks[1:] {
		boundaries = append(boundaries, strconv.Itoa(c.Start))
	}

	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", videoPath,
		"-c", "copy",
		"-map", "0:v:0",
		"-f", "segment",
		"-reset_timestamps", "1",
	}
	if len(boundaries) > 0 {
		args = append(args, "-segment_frames", strings.Join(boundaries, ","))
	}
	args = append(args, filepath.Join(dir, "%d.mkv"))

	cmd := exec.Command("ffmpeg", args...)
	stderr := &strings.Builder{}
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return drerrors.WrapExecError(drerrors.KindPlan, "ffmpeg", err, stderr.String())
	}
	return nil
}

// hybridProvider uses pipedRangeProvider for any chunk whose start frame
// lands exactly on a real keyframe (cheap, still frame-accurate there) and
// falls back to selectFilterProvider otherwise (§4.4).
type hybridProvider struct {
	keyframes map[int]bool
}

func (p *hybridProvider) Access() chunk.SourceAccess { return chunk.SourceAccessHybrid }

func (p *hybridProvider) Prepare(videoPath, _ string, chunks []chunk.Chunk, _ ffprobe.VideoInfo) error {
	kfs, err := ffprobe.Keyframes(videoPath)
	if err != nil {
		return err
	}
	p.keyframes = make(map[int]bool, len(kfs))
	for _, f := range kfs {
		p.keyframes[f] = true
	}
	return nil
}

func (p *hybridProvider) Command(videoPath, _ string, c chunk.Chunk, info ffprobe.VideoInfo) (*exec.Cmd, error) {
	if p.keyframes[c.Start] {
		return pipedRangeCommand(videoPath, c, info), nil
	}
	return selectFilterCommand(videoPath, c, info.PixFormat), nil
}
