package chunk

// ApplyExtraSplit subdivides any scene longer than maxFrames into runs of at
// most maxFrames, preserving scene order and the overall partition of
// [0, total_frames). maxFrames <= 0 disables the transform (§4.2).
func ApplyExtraSplit(scenes []Scene, maxFrames int) []Scene {
	if maxFrames <= 0 {
		return scenes
	}

	out := make([]Scene, 0, len(scenes))
	for _, s := range scenes {
		if s.Frames() <= maxFrames {
			out = append(out, s)
			continue
		}
		for start := s.StartFrame; start < s.EndFrame; start += maxFrames {
			end := min(start+maxFrames, s.EndFrame)
			out = append(out, Scene{StartFrame: start, EndFrame: end})
		}
	}
	return out
}

// ValidatePartition reports whether scenes form a strictly ordered,
// gap-free, overlap-free partition of [0, totalFrames).
func ValidatePartition(scenes []Scene, totalFrames int) bool {
	next := 0
	for _, s := range scenes {
		if s.StartFrame != next || s.EndFrame <= s.StartFrame {
			return false
		}
		next = s.EndFrame
	}
	return next == totalFrames
}
