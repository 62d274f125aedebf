package imaging

import (
	"image"
	"math"
)

// EnhanceOptions holds the tunable parameters of the enhancement pipeline.
type EnhanceOptions struct {
	// KernelSize is the diameter of the bilateral smoothing window.
	KernelSize int

	// ClipLimit caps per-bin histogram counts during local contrast
	// equalization, expressed as a multiple of the uniform bin height.
	ClipLimit float64

	// TileGrid is the number of equalization tiles per axis.
	TileGrid int

	// BrightnessGain and BrightnessOffset define the linear adjustment
	// out = gain*in + offset applied to dark images.
	BrightnessGain   float64
	BrightnessOffset float64

	// DenoiseStrength controls the strong denoise pass applied to very
	// low quality images.
	DenoiseStrength float64
}

// DefaultEnhanceOptions returns the enhancement defaults.
func DefaultEnhanceOptions() EnhanceOptions {
	return EnhanceOptions{
		KernelSize:       9,
		ClipLimit:        2.0,
		TileGrid:         8,
		BrightnessGain:   1.3,
		BrightnessOffset: 10,
		DenoiseStrength:  10,
	}
}

// Enhancer applies quality-driven image enhancement.
//
// All methods are pure: the input image is never mutated, every transform
// produces a new buffer.
type Enhancer struct {
	opts EnhanceOptions
}

// NewEnhancer creates an enhancer with the given options. Zero-valued
// fields fall back to the defaults.
func NewEnhancer(opts EnhanceOptions) *Enhancer {
	def := DefaultEnhanceOptions()
	if opts.KernelSize <= 0 {
		opts.KernelSize = def.KernelSize
	}
	if opts.ClipLimit <= 0 {
		opts.ClipLimit = def.ClipLimit
	}
	if opts.TileGrid <= 0 {
		opts.TileGrid = def.TileGrid
	}
	if opts.BrightnessGain <= 0 {
		opts.BrightnessGain = def.BrightnessGain
	}
	if opts.BrightnessOffset == 0 {
		opts.BrightnessOffset = def.BrightnessOffset
	}
	if opts.DenoiseStrength <= 0 {
		opts.DenoiseStrength = def.DenoiseStrength
	}
	return &Enhancer{opts: opts}
}

// Enhance applies the fixed enhancement pipeline: contrast-limited local
// histogram equalization followed by edge-preserving bilateral smoothing.
// The result is a grayscale image.
func (e *Enhancer) Enhance(img image.Image) image.Image {
	plane := GrayPlane(img)
	equalized := claheEqualize(plane, e.opts.TileGrid, e.opts.ClipLimit)
	smoothed := bilateralFilter(equalized, e.opts.KernelSize/2, 75, 75)
	return PlaneImage(smoothed)
}

// AdaptiveEnhance composes enhancement steps driven by the image's own
// statistics. Steps are applied in order, each on the previous output:
//
//  1. contrast < 30: local contrast equalization + bilateral smoothing
//  2. brightness < 100: linear brightness adjustment
//  3. contrast < 10 and brightness < 80: strong denoise pass
//
// No step is ever reverted. Images that trigger no step are returned
// unchanged.
func (e *Enhancer) AdaptiveEnhance(img image.Image) image.Image {
	plane := GrayPlane(img)
	brightness := PlaneMean(plane)
	contrast := PlaneStdDev(plane)

	enhanced := img
	if contrast < 30 {
		enhanced = e.Enhance(enhanced)
	}
	if brightness < 100 {
		enhanced = adjustLinear(enhanced, e.opts.BrightnessGain, e.opts.BrightnessOffset)
	}
	if contrast < 10 && brightness < 80 {
		enhanced = ReduceNoise(enhanced, NoiseOptions{
			MedianSize: 5,
			Strength:   e.opts.DenoiseStrength,
		})
	}
	return enhanced
}

// adjustLinear applies out = gain*in + offset per channel with saturation,
// returning a new grayscale buffer.
func adjustLinear(img image.Image, gain, offset float64) image.Image {
	plane := GrayPlane(img)
	for y := range plane {
		for x := range plane[y] {
			plane[y][x] = clampF(plane[y][x]*gain+offset, 0, 255)
		}
	}
	return PlaneImage(plane)
}

// claheEqualize performs contrast-limited adaptive histogram equalization
// on an intensity plane.
//
// The plane is divided into a grid of tiles. Each tile gets its own
// histogram, clipped at clipLimit times the uniform bin height with the
// excess redistributed uniformly, from which an equalization mapping is
// built. Pixels are remapped by bilinear interpolation between the
// mappings of the four surrounding tile centers, which avoids visible tile
// seams.
func claheEqualize(plane [][]float64, tileGrid int, clipLimit float64) [][]float64 {
	height := len(plane)
	width := len(plane[0])
	if tileGrid < 1 {
		tileGrid = 1
	}

	tileW := (width + tileGrid - 1) / tileGrid
	tileH := (height + tileGrid - 1) / tileGrid

	// Per-tile lookup tables.
	luts := make([][][256]float64, tileGrid)
	for ty := 0; ty < tileGrid; ty++ {
		luts[ty] = make([][256]float64, tileGrid)
		for tx := 0; tx < tileGrid; tx++ {
			x0 := tx * tileW
			y0 := ty * tileH
			x1 := clamp(x0+tileW, 0, width)
			y1 := clamp(y0+tileH, 0, height)
			luts[ty][tx] = tileLUT(plane, x0, y0, x1, y1, clipLimit)
		}
	}

	result := make([][]float64, height)
	for y := 0; y < height; y++ {
		result[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			// Position relative to tile centers.
			fx := (float64(x) - float64(tileW)/2) / float64(tileW)
			fy := (float64(y) - float64(tileH)/2) / float64(tileH)

			tx0 := clamp(int(math.Floor(fx)), 0, tileGrid-1)
			ty0 := clamp(int(math.Floor(fy)), 0, tileGrid-1)
			tx1 := clamp(tx0+1, 0, tileGrid-1)
			ty1 := clamp(ty0+1, 0, tileGrid-1)

			wx := clampF(fx-float64(tx0), 0, 1)
			wy := clampF(fy-float64(ty0), 0, 1)

			bin := clamp(int(plane[y][x]), 0, 255)
			top := luts[ty0][tx0][bin]*(1-wx) + luts[ty0][tx1][bin]*wx
			bottom := luts[ty1][tx0][bin]*(1-wx) + luts[ty1][tx1][bin]*wx
			result[y][x] = top*(1-wy) + bottom*wy
		}
	}
	return result
}

// tileLUT builds the clipped-histogram equalization mapping for one tile.
func tileLUT(plane [][]float64, x0, y0, x1, y1 int, clipLimit float64) [256]float64 {
	var hist [256]float64
	n := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			hist[clamp(int(plane[y][x]), 0, 255)]++
			n++
		}
	}

	var lut [256]float64
	if n == 0 {
		for i := range lut {
			lut[i] = float64(i)
		}
		return lut
	}

	// Clip the histogram and redistribute the excess uniformly.
	limit := clipLimit * float64(n) / 256
	if limit < 1 {
		limit = 1
	}
	var excess float64
	for i := range hist {
		if hist[i] > limit {
			excess += hist[i] - limit
			hist[i] = limit
		}
	}
	redistribute := excess / 256
	for i := range hist {
		hist[i] += redistribute
	}

	// Cumulative mapping scaled to 0-255.
	var cum float64
	for i := range hist {
		cum += hist[i]
		lut[i] = clampF(cum/float64(n)*255, 0, 255)
	}
	return lut
}

// bilateralFilter applies edge-preserving smoothing to an intensity plane.
//
// Each output pixel is a weighted average of its neighborhood where weights
// fall off with both spatial distance (sigmaSpace) and intensity difference
// (sigmaColor), so homogeneous regions are smoothed while edges survive.
func bilateralFilter(plane [][]float64, radius int, sigmaColor, sigmaSpace float64) [][]float64 {
	height := len(plane)
	width := len(plane[0])

	// Precompute the spatial kernel.
	size := 2*radius + 1
	spatial := make([][]float64, size)
	for ky := -radius; ky <= radius; ky++ {
		spatial[ky+radius] = make([]float64, size)
		for kx := -radius; kx <= radius; kx++ {
			d2 := float64(kx*kx + ky*ky)
			spatial[ky+radius][kx+radius] = math.Exp(-d2 / (2 * sigmaSpace * sigmaSpace))
		}
	}

	result := make([][]float64, height)
	for y := 0; y < height; y++ {
		result[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			center := plane[y][x]
			var sum, weight float64
			for ky := -radius; ky <= radius; ky++ {
				for kx := -radius; kx <= radius; kx++ {
					py := clamp(y+ky, 0, height-1)
					px := clamp(x+kx, 0, width-1)
					diff := plane[py][px] - center
					w := spatial[ky+radius][kx+radius] *
						math.Exp(-diff*diff/(2*sigmaColor*sigmaColor))
					sum += plane[py][px] * w
					weight += w
				}
			}
			result[y][x] = sum / weight
		}
	}
	return result
}
