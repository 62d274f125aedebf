package imaging

import (
	"image"
	"image/color"
	"math"
)

// GrayPlane converts an image to a grayscale intensity plane.
//
// Values are in the 0-255 range as float64, computed with ITU-R BT.601
// luminance weights (0.299*R + 0.587*G + 0.114*B). The plane is indexed
// [y][x] relative to the image bounds origin.
func GrayPlane(img image.Image) [][]float64 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	plane := make([][]float64, height)
	for y := 0; y < height; y++ {
		plane[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			plane[y][x] = float64(r>>8)*0.299 + float64(g>>8)*0.587 + float64(b>>8)*0.114
		}
	}
	return plane
}

// PlaneImage converts an intensity plane back to a grayscale image.
// Values are clamped to the 0-255 range.
func PlaneImage(plane [][]float64) *image.Gray {
	height := len(plane)
	if height == 0 {
		return image.NewGray(image.Rect(0, 0, 0, 0))
	}
	width := len(plane[0])

	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(clampF(plane[y][x], 0, 255))})
		}
	}
	return img
}

// PlaneMean returns the mean intensity of a plane.
func PlaneMean(plane [][]float64) float64 {
	var sum float64
	var n int
	for _, row := range plane {
		for _, v := range row {
			sum += v
		}
		n += len(row)
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// PlaneStdDev returns the intensity standard deviation of a plane.
func PlaneStdDev(plane [][]float64) float64 {
	mean := PlaneMean(plane)
	var sum float64
	var n int
	for _, row := range plane {
		for _, v := range row {
			d := v - mean
			sum += d * d
		}
		n += len(row)
	}
	if n == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(n))
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// clampF constrains a float value to the range [min, max].
func clampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// median3x3 applies a 3x3 median filter to a plane. Border pixels use
// clamped (replicated) edge values.
func median3x3(plane [][]float64) [][]float64 {
	height := len(plane)
	if height == 0 {
		return nil
	}
	width := len(plane[0])

	result := make([][]float64, height)
	var window [9]float64
	for y := 0; y < height; y++ {
		result[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			i := 0
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					py := clamp(y+ky, 0, height-1)
					px := clamp(x+kx, 0, width-1)
					window[i] = plane[py][px]
					i++
				}
			}
			result[y][x] = medianOf9(window)
		}
	}
	return result
}

// medianOf9 returns the median of 9 values using insertion sort on a copy.
func medianOf9(w [9]float64) float64 {
	for i := 1; i < len(w); i++ {
		for j := i; j > 0 && w[j-1] > w[j]; j-- {
			w[j-1], w[j] = w[j], w[j-1]
		}
	}
	return w[4]
}
