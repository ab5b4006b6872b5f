package imaging

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Rescale resamples img to scale times its dimensions using the Catmull-Rom
// kernel. A scale of 1 returns an identical copy with no resampling, so the
// pixel data of an unscaled frame is preserved exactly.
func Rescale(img *image.RGBA, scale int) *image.RGBA {
	if scale <= 1 {
		return cloneRGBA(img)
	}

	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx()*scale, bounds.Dy()*scale))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)
	return dst
}
