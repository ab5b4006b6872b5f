package imaging

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// Filter names accepted by the filter stage.
const (
	FilterBrightnessContrast = "brightness_contrast"
	FilterWhiteBalance       = "white_balance"
	FilterCLAHE              = "clahe"
)

// ErrInvalidFilter is returned when a filter spec fails validation.
var ErrInvalidFilter = errors.New("invalid filter")

// FilterSpec describes one entry of a frame's filter stack. Slice order is
// application order: each filter consumes the previous filter's output, so
// reordering the stack changes the result.
type FilterSpec struct {
	// Name selects the filter implementation.
	Name string `json:"name"`
	// Label is a display name supplied by clients and stored verbatim.
	Label string `json:"label,omitempty"`
	// Enabled toggles the filter without removing it from the stack.
	Enabled bool `json:"enabled"`

	// Brightness and Contrast apply to brightness_contrast, both in [-100,100].
	Brightness int `json:"brightness,omitempty"`
	Contrast   int `json:"contrast,omitempty"`

	// ClipLimit and GridSize apply to clahe: clip limit in [1,40] and a
	// GridSize x GridSize tile layout with GridSize in [2,16].
	ClipLimit float64 `json:"clipLimit,omitempty"`
	GridSize  int     `json:"gridSize,omitempty"`
}

// DefaultFilterStack returns the stack assigned to newly captured frames:
// every filter present, none enabled.
func DefaultFilterStack() []FilterSpec {
	return []FilterSpec{
		{Name: FilterBrightnessContrast},
		{Name: FilterCLAHE, ClipLimit: 2, GridSize: 8},
		{Name: FilterWhiteBalance},
	}
}

// Validate checks the spec against the documented parameter domains.
// Parameters of disabled specs are not checked, since the filter stage
// skips disabled entries no matter what their parameters hold.
func (f FilterSpec) Validate() error {
	switch f.Name {
	case FilterBrightnessContrast, FilterWhiteBalance, FilterCLAHE:
	default:
		return fmt.Errorf("%w: unknown name %q", ErrInvalidFilter, f.Name)
	}

	if !f.Enabled {
		return nil
	}

	switch f.Name {
	case FilterBrightnessContrast:
		if f.Brightness < -100 || f.Brightness > 100 {
			return fmt.Errorf("%w: brightness %d out of range [-100,100]", ErrInvalidFilter, f.Brightness)
		}
		if f.Contrast < -100 || f.Contrast > 100 {
			return fmt.Errorf("%w: contrast %d out of range [-100,100]", ErrInvalidFilter, f.Contrast)
		}
	case FilterCLAHE:
		if f.ClipLimit < 1 || f.ClipLimit > 40 {
			return fmt.Errorf("%w: clipLimit %g out of range [1,40]", ErrInvalidFilter, f.ClipLimit)
		}
		if f.GridSize < 2 || f.GridSize > 16 {
			return fmt.Errorf("%w: gridSize %d out of range [2,16]", ErrInvalidFilter, f.GridSize)
		}
	}
	return nil
}

// HasEnabled reports whether any filter in the stack is enabled.
func HasEnabled(filters []FilterSpec) bool {
	for _, f := range filters {
		if f.Enabled {
			return true
		}
	}
	return false
}

// ApplyFilters runs the enabled filters over img strictly in slice order.
// Disabled entries and unknown names are skipped. The input image is never
// modified; when at least one filter runs, the result is a new image.
func ApplyFilters(img *image.RGBA, filters []FilterSpec) *image.RGBA {
	if !HasEnabled(filters) {
		return img
	}

	out := cloneRGBA(img)
	for _, f := range filters {
		if !f.Enabled {
			continue
		}
		switch f.Name {
		case FilterBrightnessContrast:
			brightnessContrast(out, f.Brightness, f.Contrast)
		case FilterWhiteBalance:
			whiteBalance(out)
		case FilterCLAHE:
			applyCLAHE(out, f.ClipLimit, f.GridSize)
		}
	}
	return out
}

// brightnessContrast applies v' = clamp(alpha*v + beta, 0, 255) to every
// color channel, with alpha = 1 + contrast/100 and beta = brightness.
// Alpha channels are left untouched.
func brightnessContrast(img *image.RGBA, brightness, contrast int) {
	alpha := 1 + float64(contrast)/100
	beta := float64(brightness)

	pix := img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i+0] = clampU8(alpha*float64(pix[i+0]) + beta)
		pix[i+1] = clampU8(alpha*float64(pix[i+1]) + beta)
		pix[i+2] = clampU8(alpha*float64(pix[i+2]) + beta)
	}
}

// whiteBalance applies a luminance-weighted Gray-World correction in 8-bit
// Lab space: the a/b chroma planes are pulled toward neutral (128) in
// proportion to each pixel's luminance, which avoids over-correcting
// shadows.
func whiteBalance(img *image.RGBA) {
	bounds := img.Bounds()
	n := bounds.Dx() * bounds.Dy()
	if n == 0 {
		return
	}

	lp := make([]float64, n)
	ap := make([]float64, n)
	bp := make([]float64, n)

	var sumA, sumB float64
	pix := img.Pix
	for i, j := 0, 0; i < len(pix); i, j = i+4, j+1 {
		l, a, b := rgbToLab8(pix[i+0], pix[i+1], pix[i+2])
		// Quantize to the byte planes an 8-bit Lab image would hold.
		lp[j] = math.Round(l)
		ap[j] = math.Round(a)
		bp[j] = math.Round(b)
		sumA += ap[j]
		sumB += bp[j]
	}

	avgA := sumA / float64(n)
	avgB := sumB / float64(n)

	for i, j := 0, 0; i < len(pix); i, j = i+4, j+1 {
		weight := lp[j] / 255 * 1.1
		a := float64(clampU8(ap[j] - (avgA-128)*weight))
		b := float64(clampU8(bp[j] - (avgB-128)*weight))
		pix[i+0], pix[i+1], pix[i+2] = lab8ToRGB(lp[j], a, b)
	}
}

// clampU8 rounds to the nearest byte value, clamping out-of-range input.
func clampU8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(math.Round(v))
}

// cloneRGBA returns a deep copy of img.
func cloneRGBA(img *image.RGBA) *image.RGBA {
	out := &image.RGBA{
		Pix:    make([]uint8, len(img.Pix)),
		Stride: img.Stride,
		Rect:   img.Rect,
	}
	copy(out.Pix, img.Pix)
	return out
}
