package detection

import (
	"image"

	"github.com/ironsheep/graphsnap/internal/imaging"
)

// BinarizeOtsu converts an image to a binary foreground mask using an
// automatic bimodal threshold.
//
// The threshold is chosen by Otsu's method (maximizing between-class
// variance of the intensity histogram) and the mask is inverted: true marks
// foreground ink, i.e. pixels at or below the threshold. The mask is
// indexed [y][x] relative to the image bounds origin.
func BinarizeOtsu(img image.Image) [][]bool {
	plane := imaging.GrayPlane(img)
	level := otsuLevel(plane)

	mask := make([][]bool, len(plane))
	for y := range plane {
		mask[y] = make([]bool, len(plane[y]))
		for x := range plane[y] {
			mask[y][x] = plane[y][x] <= level
		}
	}
	return mask
}

// otsuLevel picks the threshold that maximizes the between-class variance
// of the plane's 256-bin intensity histogram.
func otsuLevel(plane [][]float64) float64 {
	var hist [256]int
	total := 0
	for _, row := range plane {
		for _, v := range row {
			bin := int(v)
			if bin < 0 {
				bin = 0
			} else if bin > 255 {
				bin = 255
			}
			hist[bin]++
		}
		total += len(row)
	}
	if total == 0 {
		return 0
	}

	var sumAll float64
	for i, c := range hist {
		sumAll += float64(i) * float64(c)
	}

	var sumBg, weightBg float64
	bestLevel := 0
	bestVariance := -1.0
	for t := 0; t < 256; t++ {
		weightBg += float64(hist[t])
		if weightBg == 0 {
			continue
		}
		weightFg := float64(total) - weightBg
		if weightFg == 0 {
			break
		}
		sumBg += float64(t) * float64(hist[t])

		meanBg := sumBg / weightBg
		meanFg := (sumAll - sumBg) / weightFg
		diff := meanBg - meanFg
		variance := weightBg * weightFg * diff * diff
		if variance > bestVariance {
			bestVariance = variance
			bestLevel = t
		}
	}
	return float64(bestLevel)
}
