package util

import (
	"testing"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes uint64
		want  string
	}{
		{0, "0 B"},
		{1, "1 B"},
		{1023, "1023 B"},
		{1024, "1.00 KiB"},
		{1536, "1.50 KiB"},
		{1024 * 1024, "1.00 MiB"},
		{1024 * 1024 * 1024, "1.00 GiB"},
		{1024 * 1024 * 1024 * 2, "2.00 GiB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := FormatBytes(tt.bytes)
			if got != tt.want {
				t.Errorf("FormatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestCalculateSizeReduction(t *testing.T) {
	tests := []struct {
		input  uint64
		output uint64
		want   float64
	}{
		{100, 50, 50},
		{1000, 250, 75},
		{0, 100, 0},
		{100, 100, 0},
		{100, 150, -50}, // Output larger = negative reduction
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			got := CalculateSizeReduction(tt.input, tt.output)
			if got != tt.want {
				t.Errorf("CalculateSizeReduction(%d, %d) = %v, want %v", tt.input, tt.output, got, tt.want)
			}
		})
	}
}
