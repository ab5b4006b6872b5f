package imaging

import "math"

// D65 reference white, as used by the usual sRGB to CIE Lab conversion.
const (
	refWhiteX = 0.950456
	refWhiteZ = 1.088754
)

// labThreshold separates the cube-root and linear branches of the Lab
// transfer function (6/29 cubed).
const labThreshold = 0.008856

// rgbToLab8 converts a single sRGB pixel to CIE Lab in the 8-bit encoding
// used throughout the filter stage: L scaled to 0..255, a and b offset by
// 128. This is the same encoding OpenCV uses for 8-bit Lab images, so
// parameter values keep their familiar meaning.
func rgbToLab8(r8, g8, b8 uint8) (l, a, b float64) {
	r := srgbToLinear(float64(r8) / 255)
	g := srgbToLinear(float64(g8) / 255)
	bl := srgbToLinear(float64(b8) / 255)

	// Linear RGB to XYZ (D65), normalized by the reference white.
	x := (0.412453*r + 0.357580*g + 0.180423*bl) / refWhiteX
	y := 0.212671*r + 0.715160*g + 0.072169*bl
	z := (0.019334*r + 0.119193*g + 0.950227*bl) / refWhiteZ

	fx := labF(x)
	fy := labF(y)
	fz := labF(z)

	l = (116*fy - 16) * 255 / 100
	a = 500*(fx-fy) + 128
	b = 200*(fy-fz) + 128
	return l, a, b
}

// lab8ToRGB is the inverse of rgbToLab8. Out-of-gamut results are clamped
// to the displayable range.
func lab8ToRGB(l, a, b float64) (r8, g8, b8 uint8) {
	fy := (l*100/255 + 16) / 116
	fx := fy + (a-128)/500
	fz := fy - (b-128)/200

	x := labFInv(fx) * refWhiteX
	y := labFInv(fy)
	z := labFInv(fz) * refWhiteZ

	// XYZ back to linear RGB (D65).
	r := 3.240479*x - 1.537150*y - 0.498535*z
	g := -0.969256*x + 1.875992*y + 0.041556*z
	bl := 0.055648*x - 0.204043*y + 1.057311*z

	return quantU8(linearToSRGB(r)), quantU8(linearToSRGB(g)), quantU8(linearToSRGB(bl))
}

func labF(t float64) float64 {
	if t > labThreshold {
		return math.Cbrt(t)
	}
	return 7.787*t + 16.0/116.0
}

func labFInv(t float64) float64 {
	if t3 := t * t * t; t3 > labThreshold {
		return t3
	}
	return (t - 16.0/116.0) / 7.787
}

func srgbToLinear(c float64) float64 {
	if c > 0.04045 {
		return math.Pow((c+0.055)/1.055, 2.4)
	}
	return c / 12.92
}

func linearToSRGB(c float64) float64 {
	if c > 0.0031308 {
		return 1.055*math.Pow(c, 1/2.4) - 0.055
	}
	return 12.92 * c
}

// quantU8 maps a 0..1 channel value to a byte, clamping out-of-range input.
func quantU8(c float64) uint8 {
	v := math.Round(c * 255)
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}
