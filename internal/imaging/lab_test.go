package imaging

import (
	"math"
	"testing"
)

func TestRGBToLab8_GraysHaveNeutralChroma(t *testing.T) {
	for _, v := range []uint8{0, 32, 64, 128, 200, 255} {
		_, a, b := rgbToLab8(v, v, v)
		if math.Abs(a-128) > 1e-6 || math.Abs(b-128) > 1e-6 {
			t.Errorf("gray %d: expected chroma (128,128), got (%.6f,%.6f)", v, a, b)
		}
	}
}

func TestRGBToLab8_KnownValues(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		l, a, bb float64
	}{
		{"black", 0, 0, 0, 0, 128, 128},
		{"white", 255, 255, 255, 255, 128, 128},
		{"red", 255, 0, 0, 135.8, 208.1, 195.2},
		{"green", 0, 255, 0, 223.7, 41.8, 211.2},
		{"blue", 0, 0, 255, 82.4, 207.2, 20.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, a, b := rgbToLab8(tt.r, tt.g, tt.b)
			if math.Abs(l-tt.l) > 1 || math.Abs(a-tt.a) > 1 || math.Abs(b-tt.bb) > 1 {
				t.Errorf("expected about (%.1f,%.1f,%.1f), got (%.2f,%.2f,%.2f)",
					tt.l, tt.a, tt.bb, l, a, b)
			}
		})
	}
}

func TestLab8_RoundTrip(t *testing.T) {
	colors := [][3]uint8{
		{12, 34, 56},
		{255, 128, 0},
		{1, 2, 3},
		{240, 240, 240},
		{77, 200, 150},
		{128, 128, 128},
	}

	for _, c := range colors {
		l, a, b := rgbToLab8(c[0], c[1], c[2])
		r2, g2, b2 := lab8ToRGB(l, a, b)

		for i, pair := range [][2]uint8{{c[0], r2}, {c[1], g2}, {c[2], b2}} {
			if d := int(pair[0]) - int(pair[1]); d < -1 || d > 1 {
				t.Errorf("color %v channel %d: expected %d, got %d", c, i, pair[0], pair[1])
			}
		}
	}
}

func TestLab8ToRGB_ClampsOutOfGamut(t *testing.T) {
	// Maximum lightness with an extreme chroma shift is outside sRGB.
	r, _, b := lab8ToRGB(255, 255, 0)
	if r != 255 {
		t.Errorf("expected red channel clamped to 255, got %d", r)
	}
	if b != 255 {
		t.Errorf("expected blue channel clamped to 255, got %d", b)
	}
}
