package encoder

import "testing"

func TestNewKnownEncoders(t *testing.T) {
	for _, name := range []string{"aom", "rav1e", "svt-av1", "vpx", "x265", "x264"} {
		a, err := New(name)
		if err != nil {
			t.Fatalf("New(%q) error = %v", name, err)
		}
		if a.Name() != name {
			t.Errorf("New(%q).Name() = %q", name, a.Name())
		}
	}
}

func TestNewUnknownEncoder(t *testing.T) {
	if _, err := New("divx"); err == nil {
		t.Error("expected an error for an unknown encoder")
	}
}

func TestStripQuantizerFlag(t *testing.T) {
	args := []string{"--tune", "psnr", "--crf", "0", "--threads", "4"}
	out := StripQuantizerFlag(args, "--crf")
	want := []string{"--tune", "psnr", "--threads", "4"}
	if len(out) != len(want) {
		t.Fatalf("StripQuantizerFlag() = %v, want %v", out, want)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("StripQuantizerFlag()[%d] = %q, want %q", i, out[i], want[i])
		}
	}
}

func TestStripQuantizerFlagEmbeddedValue(t *testing.T) {
	out := StripQuantizerFlag([]string{"--crf=0", "--threads", "4"}, "--crf")
	if len(out) != 2 || out[0] != "--threads" || out[1] != "4" {
		t.Errorf("StripQuantizerFlag() = %v", out)
	}
}

func TestStripQuantizerFlagAbsent(t *testing.T) {
	args := []string{"--threads", "4"}
	out := StripQuantizerFlag(args, "--crf")
	if len(out) != 2 {
		t.Errorf("StripQuantizerFlag() should be a no-op when the flag is absent, got %v", out)
	}
}

func TestBuildArgvInsertsQuantizer(t *testing.T) {
	a, _ := New("svt-av1")
	q := 28
	argv := a.BuildArgv(BuildOptions{Quantizer: &q, OutputPath: "0.ivf"})
	found := false
	for i, tok := range argv {
		if tok == "--crf" && i+1 < len(argv) && argv[i+1] == "28" {
			found = true
		}
	}
	if !found {
		t.Errorf("BuildArgv() = %v, expected --crf 28", argv)
	}
}

func TestParseProgress(t *testing.T) {
	a, _ := New("aom")
	frame, ok := a.ParseProgress("Pass 1/1 frame   42/100  12 us/frame")
	if !ok || frame != 42 {
		t.Errorf("ParseProgress() = %d, %v, want 42, true", frame, ok)
	}
	if _, ok := a.ParseProgress("no frame info here"); ok {
		t.Error("ParseProgress() should fail gracefully on an unparseable line")
	}
}

func TestLegalQuantizerRanges(t *testing.T) {
	for _, name := range []string{"aom", "rav1e", "svt-av1", "vpx", "x265", "x264"} {
		a, _ := New(name)
		min, max := a.LegalQuantizerRange()
		if min < 0 || max <= min {
			t.Errorf("%s: LegalQuantizerRange() = %d, %d is not a sane range", name, min, max)
		}
	}
}
