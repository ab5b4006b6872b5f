package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Annotation types accepted by DrawAnnotations.
const (
	AnnotationLine      = "line"
	AnnotationRectangle = "rectangle"
	AnnotationText      = "text"
)

// ErrInvalidAnnotation is returned when an annotation spec fails validation.
var ErrInvalidAnnotation = errors.New("invalid annotation")

// Point is an x,y coordinate pair in base-frame pixel space. It marshals as
// a two-element JSON array.
type Point [2]float64

// X returns the horizontal coordinate.
func (p Point) X() float64 { return p[0] }

// Y returns the vertical coordinate.
func (p Point) Y() float64 { return p[1] }

// AnnotationSpec describes one vector annotation. All coordinates and size
// fields are stored in the frame's base (scale=1) pixel space: the renderer
// multiplies them by the active scale at draw time, so a stored annotation
// lands on the same image feature at every scale.
type AnnotationSpec struct {
	// Type is one of line, rectangle or text.
	Type string `json:"type"`
	// Start and End bound lines and rectangles.
	Start *Point `json:"start,omitempty"`
	End   *Point `json:"end,omitempty"`
	// Pos is the baseline origin of a text annotation's first glyph.
	Pos *Point `json:"pos,omitempty"`
	// Text is the string drawn by a text annotation.
	Text string `json:"text,omitempty"`
	// Color is a "#rgb" or "#rrggbb" hex color.
	Color string `json:"color,omitempty"`
	// Thickness is the stroke width of lines and rectangles, in base-frame
	// pixels, at least 1.
	Thickness float64 `json:"thickness,omitempty"`
	// FontSize is the nominal text height in base-frame pixels.
	FontSize float64 `json:"fontSize,omitempty"`
}

// Validate checks the spec's shape, coordinates and color.
func (a AnnotationSpec) Validate() error {
	if _, err := ParseHexColor(a.Color); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAnnotation, err)
	}

	switch a.Type {
	case AnnotationLine, AnnotationRectangle:
		if a.Start == nil || a.End == nil {
			return fmt.Errorf("%w: %s requires start and end points", ErrInvalidAnnotation, a.Type)
		}
		if a.Thickness < 1 {
			return fmt.Errorf("%w: thickness %g must be at least 1", ErrInvalidAnnotation, a.Thickness)
		}
	case AnnotationText:
		if a.Pos == nil {
			return fmt.Errorf("%w: text requires a pos point", ErrInvalidAnnotation)
		}
		if a.Text == "" {
			return fmt.Errorf("%w: text must not be empty", ErrInvalidAnnotation)
		}
		if a.FontSize <= 0 {
			return fmt.Errorf("%w: fontSize %g must be positive", ErrInvalidAnnotation, a.FontSize)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidAnnotation, a.Type)
	}
	return nil
}

// Clone returns a copy whose point fields do not alias the original.
func (a AnnotationSpec) Clone() AnnotationSpec {
	out := a
	out.Start = clonePoint(a.Start)
	out.End = clonePoint(a.End)
	out.Pos = clonePoint(a.Pos)
	return out
}

func clonePoint(p *Point) *Point {
	if p == nil {
		return nil
	}
	q := *p
	return &q
}

// ParseHexColor parses "#rgb" and "#rrggbb" colors into an opaque RGBA
// value. Digits are case-insensitive.
func ParseHexColor(s string) (color.RGBA, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return color.RGBA{}, fmt.Errorf("hex color %q missing # prefix", s)
	}

	if len(hex) == 3 {
		// Expand each digit: #f80 means #ff8800.
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("hex color %q must have 3 or 6 digits", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("hex color %q: %v", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// DrawAnnotations draws each annotation onto img in slice order, so later
// annotations land on top of earlier ones. Every coordinate and size field
// is multiplied by scale to map from base-frame space to the canvas. The
// whole batch is validated before the first pixel is touched: a single
// malformed spec rejects the call with no partial drawing.
func DrawAnnotations(img *image.RGBA, annotations []AnnotationSpec, scale int) error {
	if scale < 1 {
		scale = 1
	}
	for _, a := range annotations {
		if err := a.Validate(); err != nil {
			return err
		}
	}

	s := float64(scale)
	for _, a := range annotations {
		c, _ := ParseHexColor(a.Color)
		switch a.Type {
		case AnnotationLine:
			strokeLine(img,
				scaleCoord(a.Start.X(), s), scaleCoord(a.Start.Y(), s),
				scaleCoord(a.End.X(), s), scaleCoord(a.End.Y(), s),
				strokeWidth(a.Thickness, scale), c)
		case AnnotationRectangle:
			strokeRect(img,
				scaleCoord(a.Start.X(), s), scaleCoord(a.Start.Y(), s),
				scaleCoord(a.End.X(), s), scaleCoord(a.End.Y(), s),
				strokeWidth(a.Thickness, scale), c)
		case AnnotationText:
			drawText(img, scaleCoord(a.Pos.X(), s), scaleCoord(a.Pos.Y(), s), a.Text, a.FontSize, scale, c)
		}
	}
	return nil
}

// strokeWidth converts a base-frame thickness to device pixels, never
// thinner than 1 so strokes stay visible at scale=1.
func strokeWidth(thickness float64, scale int) int {
	w := int(math.Round(thickness * float64(scale)))
	if w < 1 {
		w = 1
	}
	return w
}

// scaleCoord rounds a scaled base-frame coordinate to a device pixel.
func scaleCoord(v, scale float64) int {
	return int(math.Round(v * scale))
}

// strokeLine draws a hard-edged line by stamping a width x width square
// brush at every point of the Bresenham path between the endpoints.
func strokeLine(img *image.RGBA, x0, y0, x1, y1, width int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		stampBrush(img, x0, y0, width, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// strokeRect draws a rectangle outline with the stroke extending inward
// from the outline path, matching how the editor previews rectangles.
func strokeRect(img *image.RGBA, x0, y0, x1, y1, width int, c color.RGBA) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}

	for i := 0; i < width; i++ {
		rx0, ry0 := x0+i, y0+i
		rx1, ry1 := x1-i, y1-i
		if rx0 > rx1 || ry0 > ry1 {
			return
		}
		for x := rx0; x <= rx1; x++ {
			setPixel(img, x, ry0, c)
			setPixel(img, x, ry1, c)
		}
		for y := ry0; y <= ry1; y++ {
			setPixel(img, rx0, y, c)
			setPixel(img, rx1, y, c)
		}
	}
}

// drawText renders text with the 7x13 bitmap face, then nearest-neighbor
// scales it by k = max(1, round(fontSize*scale/13)) so glyphs stay
// hard-edged. The anchor (px, py) is the baseline origin of the first
// glyph. A fontSize of 13 at scale 1 therefore draws the face at its
// native size; stored fontSize values map linearly onto that.
func drawText(img *image.RGBA, px, py int, text string, fontSize float64, scale int, c color.RGBA) {
	k := int(math.Round(fontSize * float64(scale) / 13))
	if k < 1 {
		k = 1
	}

	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	if width == 0 {
		return
	}

	off := image.NewRGBA(image.Rect(0, 0, width, face.Height))
	d := font.Drawer{
		Dst:  off,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(text)

	dst := image.Rect(px, py-face.Ascent*k, px+width*k, py+(face.Height-face.Ascent)*k)
	xdraw.NearestNeighbor.Scale(img, dst, off, off.Bounds(), xdraw.Over, nil)
}

func stampBrush(img *image.RGBA, cx, cy, width int, c color.RGBA) {
	off := width / 2
	for dy := 0; dy < width; dy++ {
		for dx := 0; dx < width; dx++ {
			setPixel(img, cx-off+dx, cy-off+dy, c)
		}
	}
}

func setPixel(img *image.RGBA, x, y int, c color.RGBA) {
	if !image.Pt(x, y).In(img.Rect) {
		return
	}
	img.SetRGBA(x, y, c)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
