package ffprobe

import "testing"

func TestParseRational(t *testing.T) {
	tests := []struct {
		input   string
		wantNum int
		wantDen int
		wantErr bool
	}{
		{"24000/1001", 24000, 1001, false},
		{"25/1", 25, 1, false},
		{"30", 30, 1, false},
		{"", 0, 0, true},
		{"24/0", 0, 0, true},
		{"not-a-number/1", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			num, den, err := parseRational(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseRational(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && (num != tt.wantNum || den != tt.wantDen) {
				t.Errorf("parseRational(%q) = %d/%d, want %d/%d", tt.input, num, den, tt.wantNum, tt.wantDen)
			}
		})
	}
}

func TestScriptExtensions(t *testing.T) {
	if !scriptExtensions[".vpy"] {
		t.Error("expected .vpy to be recognized as a frame-server script")
	}
	if scriptExtensions[".mkv"] {
		t.Error("expected .mkv to not be recognized as a frame-server script")
	}
}
