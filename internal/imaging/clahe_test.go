package imaging

import (
	"bytes"
	"image/color"
	"testing"
)

// gradientPlane returns a w x h luminance plane that ramps horizontally
// from lo to hi.
func gradientPlane(w, h int, lo, hi int) []uint8 {
	plane := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			plane[y*w+x] = uint8(lo + (hi-lo)*x/(w-1))
		}
	}
	return plane
}

func planeRange(plane []uint8) int {
	lo, hi := plane[0], plane[0]
	for _, v := range plane {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return int(hi) - int(lo)
}

func TestCLAHEEqualize_UniformPlaneStaysUniform(t *testing.T) {
	plane := make([]uint8, 16*16)
	for i := range plane {
		plane[i] = 128
	}

	out := claheEqualize(plane, 16, 16, 2, 4)

	for i, v := range out {
		if v != out[0] {
			t.Fatalf("pixel %d: expected uniform output, got %d vs %d", i, v, out[0])
		}
	}
}

func TestCLAHEEqualize_Deterministic(t *testing.T) {
	plane := gradientPlane(64, 64, 40, 220)

	a := claheEqualize(plane, 64, 64, 3, 8)
	b := claheEqualize(plane, 64, 64, 3, 8)

	if !bytes.Equal(a, b) {
		t.Error("expected identical output for identical input")
	}
}

func TestCLAHEEqualize_ExpandsNarrowContrast(t *testing.T) {
	plane := gradientPlane(64, 64, 110, 141)

	out := claheEqualize(plane, 64, 64, 4, 4)

	if got, want := planeRange(out), planeRange(plane); got <= want {
		t.Errorf("expected contrast expansion: input range %d, output range %d", want, got)
	}
}

func TestCLAHEEqualize_GridSizeChangesResult(t *testing.T) {
	plane := gradientPlane(64, 64, 40, 220)

	a := claheEqualize(plane, 64, 64, 2, 2)
	b := claheEqualize(plane, 64, 64, 2, 8)

	if bytes.Equal(a, b) {
		t.Error("expected different grids to equalize differently")
	}
}

func TestCLAHEEqualize_PlaneSmallerThanGrid(t *testing.T) {
	plane := []uint8{10, 200, 30, 90, 120, 250}

	out := claheEqualize(plane, 3, 2, 2, 8)

	if len(out) != len(plane) {
		t.Fatalf("expected %d pixels, got %d", len(plane), len(out))
	}
}

func TestApplyCLAHE_UniformImageStaysUniform(t *testing.T) {
	img := uniformImage(16, 16, color.RGBA{R: 90, G: 90, B: 90, A: 255})

	out := ApplyFilters(img, []FilterSpec{
		{Name: FilterCLAHE, Enabled: true, ClipLimit: 2, GridSize: 8},
	})

	first := out.RGBAAt(0, 0)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if got := out.RGBAAt(x, y); got != first {
				t.Fatalf("pixel (%d,%d): expected uniform output, got %v vs %v", x, y, got, first)
			}
		}
	}
}
