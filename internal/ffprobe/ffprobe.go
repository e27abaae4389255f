// Package ffprobe implements the Source Probe (§4.1): inspecting a source
// and reporting the VideoInfo downstream planning depends on. Native media
// files are probed via ffprobe; frame-server scripts are probed by running
// them in vspipe's info mode.
package ffprobe

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	drerrors "github.com/av1an/av1an/internal/errors"
	"github.com/av1an/av1an/internal/util"
)

// VideoInfo is the immutable result of probing a source (§3). Downstream
// chunk planning and the Chunk Source Provider must agree with
// TotalFrames exactly.
type VideoInfo struct {
	TotalFrames int
	Width       int
	Height      int
	PixFormat   string
	FPSNum      int
	FPSDen      int
	BitDepth    int
}

// scriptExtensions names frame-server script extensions probed via vspipe
// rather than ffprobe.
var scriptExtensions = map[string]bool{
	".vpy": true,
	".avs": true,
}

// Probe inspects path and returns its VideoInfo, dispatching to ffprobe for
// native media or vspipe for a frame-server script (§4.1). A path that is
// neither a recognized script nor a recognized native media file is
// rejected here, before either subprocess is invoked.
func Probe(path string) (VideoInfo, error) {
	if scriptExtensions[strings.ToLower(filepath.Ext(path))] {
		return probeScript(path)
	}
	if !util.IsVideoFile(path) {
		return VideoInfo{}, drerrors.NewConfigError(fmt.Sprintf(
			"%s is not a recognized frame-server script (.vpy, .avs) or native media file", path))
	}
	return probeMedia(path)
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeStream struct {
	CodecType        string `json:"codec_type"`
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	NbFrames         string `json:"nb_frames"`
	NbReadFrames     string `json:"nb_read_frames"`
	PixFmt           string `json:"pix_fmt"`
	RFrameRate       string `json:"r_frame_rate"`
	BitsPerRawSample string `json:"bits_per_raw_sample"`
}

func runFFprobe(args ...string) (*ffprobeOutput, error) {
	cmd := exec.Command("ffprobe", args...)
	stderr := &strings.Builder{}
	cmd.Stderr = stderr

	output, err := cmd.Output()
	if err != nil {
		return nil, drerrors.WrapExecError(drerrors.KindProbe, "ffprobe", err, stderr.String())
	}

	var result ffprobeOutput
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, drerrors.NewProbeError("parse ffprobe output", err)
	}
	return &result, nil
}

func probeMedia(path string) (VideoInfo, error) {
	probe, err := runFFprobe(
		"-v", "quiet",
		"-print_format", "json",
		"-count_frames",
		"-show_streams",
		path,
	)
	if err != nil {
		return VideoInfo{}, err
	}

	var stream *ffprobeStream
	for i := range probe.Streams {
		if probe.Streams[i].CodecType == "video" {
			stream = &probe.Streams[i]
			break
		}
	}
	if stream == nil {
		return VideoInfo{}, drerrors.NewProbeError(fmt.Sprintf("no video stream found in %s", path), nil)
	}
	if stream.Width <= 0 || stream.Height <= 0 {
		return VideoInfo{}, drerrors.NewProbeError(fmt.Sprintf("invalid dimensions in %s: %dx%d", path, stream.Width, stream.Height), nil)
	}

	frames, err := strconv.Atoi(stream.NbFrames)
	if err != nil || frames <= 0 {
		return VideoInfo{}, drerrors.NewProbeError(fmt.Sprintf("could not determine frame count for %s", path), err)
	}

	num, den, err := parseRational(stream.RFrameRate)
	if err != nil {
		return VideoInfo{}, drerrors.NewProbeError(fmt.Sprintf("could not parse frame rate for %s", path), err)
	}

	bitDepth := 8
	if stream.BitsPerRawSample != "" {
		if bd, err := strconv.Atoi(stream.BitsPerRawSample); err == nil && bd > 0 {
			bitDepth = bd
		}
	}

	return VideoInfo{
		TotalFrames: frames,
		Width:       stream.Width,
		Height:      stream.Height,
		PixFormat:   stream.PixFmt,
		FPSNum:      num,
		FPSDen:      den,
		BitDepth:    bitDepth,
	}, nil
}

// probeScript runs a frame-server script in vspipe's info mode and parses
// its "key: value" summary into a VideoInfo.
func probeScript(path string) (VideoInfo, error) {
	cmd := exec.Command("vspipe", "--info", path)
	stderr := &strings.Builder{}
	cmd.Stderr = stderr

	output, err := cmd.Output()
	if err != nil {
		return VideoInfo{}, drerrors.WrapExecError(drerrors.KindProbe, "vspipe", err, stderr.String())
	}

	info := VideoInfo{BitDepth: 8}
	for _, line := range strings.Split(string(output), "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "Width":
			info.Width, _ = strconv.Atoi(value)
		case "Height":
			info.Height, _ = strconv.Atoi(value)
		case "Frames":
			info.TotalFrames, _ = strconv.Atoi(value)
		case "FPS":
			num, den, err := parseRational(value)
			if err == nil {
				info.FPSNum, info.FPSDen = num, den
			}
		case "Format Name":
			info.PixFormat = value
		}
	}

	if info.TotalFrames <= 0 || info.Width <= 0 || info.Height <= 0 {
		return VideoInfo{}, drerrors.NewProbeError(fmt.Sprintf("incomplete vspipe info for %s", path), nil)
	}
	return info, nil
}

// parseRational parses a "num/den" or "num" frame-rate string.
func parseRational(s string) (int, int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, fmt.Errorf("empty rational")
	}
	numStr, denStr, ok := strings.Cut(s, "/")
	num, err := strconv.Atoi(numStr)
	if err != nil {
		return 0, 0, err
	}
	if !ok {
		return num, 1, nil
	}
	den, err := strconv.Atoi(denStr)
	if err != nil || den == 0 {
		return 0, 0, fmt.Errorf("invalid denominator in %q", s)
	}
	return num, den, nil
}

// HasAudioStream reports whether path contains at least one audio stream,
// used by the Concatenator to decide whether to stream-copy audio into the
// final output.
func HasAudioStream(path string) (bool, error) {
	probe, err := runFFprobe(
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		path,
	)
	if err != nil {
		return false, err
	}
	for _, s := range probe.Streams {
		if s.CodecType == "audio" {
			return true, nil
		}
	}
	return false, nil
}

// Keyframes returns the frame numbers of every keyframe in path, used by
// the hybrid Chunk Source Provider to decide which chunk boundaries permit
// a cheap time-based seek.
func Keyframes(path string) ([]int, error) {
	cmd := exec.Command("ffprobe",
		"-v", "quiet",
		"-select_streams", "v:0",
		"-skip_frame", "nokey",
		"-show_entries", "frame=pkt_pts_time,coded_picture_number",
		"-print_format", "json",
		path,
	)
	stderr := &strings.Builder{}
	cmd.Stderr = stderr

	output, err := cmd.Output()
	if err != nil {
		return nil, drerrors.WrapExecError(drerrors.KindProbe, "ffprobe", err, stderr.String())
	}

	var result struct {
		Frames []struct {
			CodedPictureNumber int `json:"coded_picture_number"`
		} `json:"frames"`
	}
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, drerrors.NewProbeError("parse ffprobe keyframe output", err)
	}

	frames := make([]int, len(result.Frames))
	for i, f := range result.Frames {
		frames[i] = f.CodedPictureNumber
	}
	return frames, nil
}

// CountFrames returns the number of video frames in an encoded segment
// file, used by the Resume Store and Worker Pool to verify a completed
// chunk's segment matches its expected frame count.
func CountFrames(path string) (int, error) {
	probe, err := runFFprobe(
		"-v", "quiet",
		"-print_format", "json",
		"-count_frames",
		"-show_entries", "stream=nb_read_frames",
		path,
	)
	if err != nil {
		return 0, err
	}
	for _, s := range probe.Streams {
		if s.NbReadFrames != "" {
			n, err := strconv.Atoi(s.NbReadFrames)
			if err == nil {
				return n, nil
			}
		}
	}
	return 0, drerrors.NewProbeError(fmt.Sprintf("could not count frames in %s", path), nil)
}
