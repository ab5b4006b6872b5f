package imaging

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

// testImage returns a w x h opaque image with a deterministic channel ramp,
// giving non-uniform luminance across the canvas.
func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8((x*37 + y*11) % 256),
				G: uint8((x*17 + y*29) % 256),
				B: uint8((x*5 + y*3) % 256),
				A: 255,
			})
		}
	}
	return img
}

// uniformImage returns a w x h image filled with a single color.
func uniformImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func samePixels(a, b *image.RGBA) bool {
	return a.Rect == b.Rect && bytes.Equal(a.Pix, b.Pix)
}

func TestApplyFilters_BrightnessAddsAndClamps(t *testing.T) {
	img := uniformImage(4, 4, color.RGBA{R: 100, G: 220, B: 5, A: 255})

	out := ApplyFilters(img, []FilterSpec{
		{Name: FilterBrightnessContrast, Enabled: true, Brightness: 50},
	})

	want := color.RGBA{R: 150, G: 255, B: 55, A: 255}
	if got := out.RGBAAt(2, 2); got != want {
		t.Errorf("brightness +50: expected %v, got %v", want, got)
	}
}

func TestApplyFilters_NegativeBrightnessClampsAtZero(t *testing.T) {
	img := uniformImage(2, 2, color.RGBA{R: 30, G: 128, B: 255, A: 255})

	out := ApplyFilters(img, []FilterSpec{
		{Name: FilterBrightnessContrast, Enabled: true, Brightness: -60},
	})

	want := color.RGBA{R: 0, G: 68, B: 195, A: 255}
	if got := out.RGBAAt(0, 0); got != want {
		t.Errorf("brightness -60: expected %v, got %v", want, got)
	}
}

func TestApplyFilters_ContrastScalesChannels(t *testing.T) {
	img := uniformImage(2, 2, color.RGBA{R: 100, G: 220, B: 5, A: 255})

	out := ApplyFilters(img, []FilterSpec{
		{Name: FilterBrightnessContrast, Enabled: true, Contrast: 100},
	})

	// alpha = 2, beta = 0
	want := color.RGBA{R: 200, G: 255, B: 10, A: 255}
	if got := out.RGBAAt(1, 1); got != want {
		t.Errorf("contrast 100: expected %v, got %v", want, got)
	}
}

func TestApplyFilters_DisabledFiltersAreNoOps(t *testing.T) {
	img := testImage(8, 8)

	// Disabled specs carry junk parameters on purpose: they must neither
	// alter the image nor fail.
	out := ApplyFilters(img, []FilterSpec{
		{Name: FilterBrightnessContrast, Brightness: 5000, Contrast: -900},
		{Name: FilterCLAHE, ClipLimit: -3, GridSize: 0},
		{Name: FilterWhiteBalance},
		{Name: "sepia"},
	})

	if out != img {
		t.Error("expected the input image back when nothing is enabled")
	}
	if !samePixels(out, testImage(8, 8)) {
		t.Error("expected pixels to be unchanged")
	}
}

func TestApplyFilters_DoesNotMutateInput(t *testing.T) {
	img := testImage(8, 8)
	before := make([]uint8, len(img.Pix))
	copy(before, img.Pix)

	_ = ApplyFilters(img, []FilterSpec{
		{Name: FilterBrightnessContrast, Enabled: true, Brightness: 80},
	})

	if !bytes.Equal(img.Pix, before) {
		t.Error("expected the input image to be left untouched")
	}
}

func TestApplyFilters_UnknownEnabledNameIsSkipped(t *testing.T) {
	img := testImage(8, 8)

	out := ApplyFilters(img, []FilterSpec{
		{Name: "sepia", Enabled: true},
	})

	if !samePixels(out, img) {
		t.Error("expected an unknown filter name to leave pixels unchanged")
	}
}

func TestApplyFilters_OrderMatters(t *testing.T) {
	stack := []FilterSpec{
		{Name: FilterBrightnessContrast, Enabled: true, Contrast: 60},
		{Name: FilterCLAHE, Enabled: true, ClipLimit: 2, GridSize: 4},
	}
	reversed := []FilterSpec{stack[1], stack[0]}

	a := ApplyFilters(testImage(32, 32), stack)
	b := ApplyFilters(testImage(32, 32), reversed)

	if samePixels(a, b) {
		t.Error("expected filter order to change the result")
	}
}

func TestApplyFilters_WhiteBalanceKeepsNeutralGray(t *testing.T) {
	img := uniformImage(8, 8, color.RGBA{R: 128, G: 128, B: 128, A: 255})

	out := ApplyFilters(img, []FilterSpec{
		{Name: FilterWhiteBalance, Enabled: true},
	})

	got := out.RGBAAt(3, 3)
	for i, ch := range []uint8{got.R, got.G, got.B} {
		if d := int(ch) - 128; d < -2 || d > 2 {
			t.Errorf("channel %d drifted from neutral gray: got %d", i, ch)
		}
	}
}

func TestApplyFilters_WhiteBalancePullsCastTowardNeutral(t *testing.T) {
	// A reddish cast: the a chroma plane sits well above neutral.
	img := uniformImage(8, 8, color.RGBA{R: 200, G: 140, B: 140, A: 255})

	out := ApplyFilters(img, []FilterSpec{
		{Name: FilterWhiteBalance, Enabled: true},
	})

	in := img.RGBAAt(0, 0)
	res := out.RGBAAt(0, 0)
	_, aIn, _ := rgbToLab8(in.R, in.G, in.B)
	_, aOut, _ := rgbToLab8(res.R, res.G, res.B)

	if distIn, distOut := aIn-128, aOut-128; distOut >= distIn {
		t.Errorf("expected chroma closer to neutral: before %.1f, after %.1f", distIn, distOut)
	}
}

func TestFilterSpec_Validate(t *testing.T) {
	tests := []struct {
		name    string
		spec    FilterSpec
		wantErr bool
	}{
		{"valid brightness_contrast", FilterSpec{Name: FilterBrightnessContrast, Enabled: true, Brightness: 50, Contrast: -20}, false},
		{"valid clahe", FilterSpec{Name: FilterCLAHE, Enabled: true, ClipLimit: 2, GridSize: 8}, false},
		{"valid white_balance", FilterSpec{Name: FilterWhiteBalance, Enabled: true}, false},
		{"unknown name", FilterSpec{Name: "sepia"}, true},
		{"disabled junk parameters pass", FilterSpec{Name: FilterCLAHE, ClipLimit: 900, GridSize: -1}, false},
		{"brightness too high", FilterSpec{Name: FilterBrightnessContrast, Enabled: true, Brightness: 101}, true},
		{"contrast too low", FilterSpec{Name: FilterBrightnessContrast, Enabled: true, Contrast: -101}, true},
		{"clipLimit too low", FilterSpec{Name: FilterCLAHE, Enabled: true, ClipLimit: 0.5, GridSize: 8}, true},
		{"clipLimit too high", FilterSpec{Name: FilterCLAHE, Enabled: true, ClipLimit: 41, GridSize: 8}, true},
		{"gridSize too small", FilterSpec{Name: FilterCLAHE, Enabled: true, ClipLimit: 2, GridSize: 1}, true},
		{"gridSize too large", FilterSpec{Name: FilterCLAHE, Enabled: true, ClipLimit: 2, GridSize: 17}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected a validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestDefaultFilterStack(t *testing.T) {
	stack := DefaultFilterStack()

	if len(stack) != 3 {
		t.Fatalf("expected 3 filters, got %d", len(stack))
	}
	wantOrder := []string{FilterBrightnessContrast, FilterCLAHE, FilterWhiteBalance}
	for i, name := range wantOrder {
		if stack[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, stack[i].Name)
		}
		if stack[i].Enabled {
			t.Errorf("position %d: expected filter to start disabled", i)
		}
	}
	if stack[1].ClipLimit != 2 || stack[1].GridSize != 8 {
		t.Errorf("expected clahe defaults clipLimit=2 gridSize=8, got %g/%d", stack[1].ClipLimit, stack[1].GridSize)
	}
}

func TestHasEnabled(t *testing.T) {
	if HasEnabled(DefaultFilterStack()) {
		t.Error("default stack should have nothing enabled")
	}
	stack := DefaultFilterStack()
	stack[2].Enabled = true
	if !HasEnabled(stack) {
		t.Error("expected HasEnabled to see the enabled filter")
	}
	if HasEnabled(nil) {
		t.Error("empty stack should report false")
	}
}
