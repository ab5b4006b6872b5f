// Package imaging implements the deterministic composition pipeline for
// captured frames: an ordered, toggleable filter stack, an integer
// rescale, and a normalized-coordinate annotation overlay. Every stage is
// a pure function of its inputs, so rendering the same frame with the same
// edits always produces byte-identical PNG output.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	// Registered so render input can be any common image format.
	_ "image/gif"
	_ "image/jpeg"
)

// Static errors for the composition pipeline.
var (
	// ErrDecodeFailure is returned when input bytes cannot be decoded as an image.
	ErrDecodeFailure = errors.New("image decode failed")
	// ErrEncodeFailure is returned when the rendered image cannot be encoded.
	ErrEncodeFailure = errors.New("image encode failed")
)

// Compose renders frame bytes through the filter stack, the integer
// rescale and the annotation overlay, in that fixed order, and encodes the
// result as PNG. When there is nothing to do (no enabled filters, no
// annotations, scale 1) the source bytes are returned unchanged with no
// decode/encode round-trip, preserving the original file exactly.
func Compose(src []byte, filters []FilterSpec, annotations []AnnotationSpec, scale int) ([]byte, error) {
	if scale < 1 {
		scale = 1
	}
	if !HasEnabled(filters) && len(annotations) == 0 && scale == 1 {
		return src, nil
	}

	decoded, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}

	img := toRGBA(decoded)
	img = ApplyFilters(img, filters)
	img = Rescale(img, scale)
	if err := DrawAnnotations(img, annotations, scale); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodeFailure, err)
	}
	return buf.Bytes(), nil
}

// toRGBA normalizes a decoded image to an RGBA buffer anchored at the
// origin, the representation every pipeline stage works on.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
}
