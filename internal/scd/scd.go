// Package scd implements the "standard" Scene Splitter backend (§4.2): an
// external, PATH-resolved scene-change detector invoked as a subprocess. Its
// analysis algorithm is an opaque collaborator; this package only knows its
// CLI contract and the frame-list file it writes.
package scd

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	drerrors "github.com/av1an/av1an/internal/errors"
)

const binaryName = "av1an-scd"

// DetectScenes runs the external detector against videoPath and returns a
// list of cut frame numbers in the order the detector wrote them, with 0
// prepended when the list does not already start with it.
func DetectScenes(videoPath string, fpsNum, fpsDen uint32, totalFrames int) ([]int, error) {
	scdPath, err := exec.LookPath(binaryName)
	if err != nil {
		return nil, drerrors.NewPlanError(fmt.Sprintf("%s not found in PATH", binaryName), err)
	}

	out, err := os.CreateTemp("", "av1an-scd-*.txt")
	if err != nil {
		return nil, drerrors.NewIOError("create scene-detector output file", err)
	}
	outPath := out.Name()
	_ = out.Close()
	defer func() { _ = os.Remove(outPath) }()

	cmd := exec.Command(scdPath,
		"--input", videoPath,
		"--output", outPath,
		"--fps-num", strconv.Itoa(int(fpsNum)),
		"--fps-den", strconv.Itoa(int(fpsDen)),
		"--total-frames", strconv.Itoa(totalFrames),
	)
	stderr := &strings.Builder{}
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return nil, drerrors.WrapExecError(drerrors.KindPlan, binaryName, err, stderr.String())
	}

	return readFrameList(outPath)
}

func readFrameList(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, drerrors.NewIOError("read scene-detector output", err)
	}
	defer func() { _ = f.Close() }()

	var cuts []int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		n, err := strconv.Atoi(line)
		if err != nil {
			return nil, drerrors.NewPlanError(fmt.Sprintf("scene-detector output: invalid frame number %q", line), err)
		}
		cuts = append(cuts, n)
	}
	if err := scanner.Err(); err != nil {
		return nil, drerrors.NewIOError("read scene-detector output", err)
	}

	if len(cuts) == 0 || cuts[0] != 0 {
		cuts = append([]int{0}, cuts...)
	}
	return cuts, nil
}

// IsAvailable reports whether the external scene-change detector binary is
// resolvable on PATH.
func IsAvailable() bool {
	_, err := exec.LookPath(binaryName)
	return err == nil
}

// BinaryPath returns the resolved path of the external detector binary.
func BinaryPath() (string, error) {
	return exec.LookPath(binaryName)
}
