package imaging

import (
	"image"
	"math"
)

// applyCLAHE runs contrast-limited adaptive histogram equalization on the
// luminance channel of img, leaving chroma untouched. The image is split
// into grid x grid tiles; each tile gets its own clipped, equalized lookup
// table, and per-pixel values are bilinearly interpolated between the four
// surrounding tile tables to avoid visible tile seams.
func applyCLAHE(img *image.RGBA, clipLimit float64, grid int) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return
	}

	// Split into 8-bit Lab planes.
	n := w * h
	lp := make([]uint8, n)
	ap := make([]uint8, n)
	bp := make([]uint8, n)

	pix := img.Pix
	for i, j := 0, 0; i < len(pix); i, j = i+4, j+1 {
		l, a, b := rgbToLab8(pix[i+0], pix[i+1], pix[i+2])
		lp[j] = uint8(math.Round(l))
		ap[j] = uint8(math.Round(a))
		bp[j] = uint8(math.Round(b))
	}

	eq := claheEqualize(lp, w, h, clipLimit, grid)

	for i, j := 0, 0; i < len(pix); i, j = i+4, j+1 {
		pix[i+0], pix[i+1], pix[i+2] = lab8ToRGB(float64(eq[j]), float64(ap[j]), float64(bp[j]))
	}
}

// claheEqualize equalizes a single 8-bit plane of w x h pixels and returns
// the result as a new plane. Tiles are ceil(w/grid) x ceil(h/grid) pixels;
// tiles on the right and bottom edges may be smaller and use their own
// area for clipping and normalization.
func claheEqualize(plane []uint8, w, h int, clipLimit float64, grid int) []uint8 {
	if grid < 1 {
		grid = 1
	}
	// A tile must hold at least one pixel.
	if grid > w {
		grid = w
	}
	if grid > h {
		grid = h
	}

	tileW := (w + grid - 1) / grid
	tileH := (h + grid - 1) / grid

	luts := make([][256]uint8, grid*grid)
	for ty := 0; ty < grid; ty++ {
		for tx := 0; tx < grid; tx++ {
			x0, x1 := tx*tileW, min((tx+1)*tileW, w)
			y0, y1 := ty*tileH, min((ty+1)*tileH, h)
			luts[ty*grid+tx] = tileLUT(plane, w, x0, y0, x1, y1, clipLimit)
		}
	}

	out := make([]uint8, len(plane))
	for y := 0; y < h; y++ {
		// Position in tile-center space along y.
		fy := (float64(y)+0.5)/float64(tileH) - 0.5
		ty0 := int(math.Floor(fy))
		wy := fy - float64(ty0)
		ty1 := clampTile(ty0+1, grid)
		ty0 = clampTile(ty0, grid)

		for x := 0; x < w; x++ {
			fx := (float64(x)+0.5)/float64(tileW) - 0.5
			tx0 := int(math.Floor(fx))
			wx := fx - float64(tx0)
			tx1 := clampTile(tx0+1, grid)
			tx0 = clampTile(tx0, grid)

			v := plane[y*w+x]
			top := float64(luts[ty0*grid+tx0][v])*(1-wx) + float64(luts[ty0*grid+tx1][v])*wx
			bot := float64(luts[ty1*grid+tx0][v])*(1-wx) + float64(luts[ty1*grid+tx1][v])*wx
			out[y*w+x] = uint8(math.Round(top*(1-wy) + bot*wy))
		}
	}
	return out
}

// tileLUT builds the clipped equalization table for one tile.
func tileLUT(plane []uint8, stride, x0, y0, x1, y1 int, clipLimit float64) [256]uint8 {
	var hist [256]int
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			hist[plane[y*stride+x]]++
		}
	}

	area := (x1 - x0) * (y1 - y0)
	clip := int(clipLimit * float64(area) / 256)
	if clip < 1 {
		clip = 1
	}

	// Clip each bin and redistribute the excess evenly, handing the
	// remainder to the lowest bins.
	excess := 0
	for i := range hist {
		if hist[i] > clip {
			excess += hist[i] - clip
			hist[i] = clip
		}
	}
	share, rem := excess/256, excess%256
	for i := range hist {
		hist[i] += share
		if i < rem {
			hist[i]++
		}
	}

	var lut [256]uint8
	scale := 255 / float64(area)
	cum := 0
	for i := range hist {
		cum += hist[i]
		lut[i] = uint8(math.Round(float64(cum) * scale))
	}
	return lut
}

func clampTile(i, grid int) int {
	if i < 0 {
		return 0
	}
	if i >= grid {
		return grid - 1
	}
	return i
}
