package imaging

import (
	"image"
	"math"

	"github.com/ironsheep/graphsnap/internal/graph"
)

// edgeGradientThreshold is the fixed gradient magnitude above which a pixel
// counts toward edge density.
const edgeGradientThreshold = 30.0

// AnalyzeQuality computes scalar quality metrics for an image and classifies
// it into a discrete quality level.
//
// The metrics are:
//   - brightness: mean grayscale intensity
//   - contrast: grayscale intensity standard deviation
//   - blur level: variance of the Laplacian response (lower = blurrier)
//   - noise level: mean absolute difference against a 3x3 median-filtered
//     copy (higher = noisier)
//   - edge density: fraction of pixels whose gradient exceeds a fixed
//     threshold
//
// AnalyzeQuality is a pure function: it never modifies the input image.
// It fails with graph.ErrInvalidInput when img is nil or has no pixels.
func AnalyzeQuality(img image.Image) (graph.QualityInfo, error) {
	if img == nil {
		return graph.QualityInfo{}, graph.ErrInvalidInput
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return graph.QualityInfo{}, graph.ErrInvalidInput
	}

	plane := GrayPlane(img)

	brightness := PlaneMean(plane)
	contrast := PlaneStdDev(plane)
	blurLevel := laplacianVariance(plane)
	noiseLevel := estimateNoise(plane)
	density := edgeDensity(plane)

	level, score := ClassifyQuality(brightness, contrast, blurLevel, noiseLevel)

	return graph.QualityInfo{
		Brightness:   brightness,
		Contrast:     contrast,
		BlurLevel:    blurLevel,
		NoiseLevel:   noiseLevel,
		EdgeDensity:  density,
		QualityLevel: level,
		QualityScore: score,
	}, nil
}

// ClassifyQuality maps the four scalar metrics onto a discrete quality
// level. One criterion point is awarded for each of:
//
//	brightness in [80, 220]
//	contrast   > 40
//	blur level > 100
//	noise      < 10
//
// Three or more points map to HIGH, two to MEDIUM, one to LOW and zero to
// VERY_LOW. The returned score is the level's value on the 0-3 scale.
func ClassifyQuality(brightness, contrast, blurLevel, noiseLevel float64) (graph.QualityLevel, int) {
	score := 0
	if brightness >= 80 && brightness <= 220 {
		score++
	}
	if contrast > 40 {
		score++
	}
	if blurLevel > 100 {
		score++
	}
	if noiseLevel < 10 {
		score++
	}

	switch {
	case score >= 3:
		return graph.QualityHigh, 3
	case score == 2:
		return graph.QualityMedium, 2
	case score == 1:
		return graph.QualityLow, 1
	default:
		return graph.QualityVeryLow, 0
	}
}

// laplacianVariance convolves the plane with the 3x3 Laplacian kernel and
// returns the variance of the response. Border pixels use clamped edge
// values.
func laplacianVariance(plane [][]float64) float64 {
	height := len(plane)
	width := len(plane[0])

	responses := make([]float64, 0, width*height)
	var sum float64
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			up := plane[clamp(y-1, 0, height-1)][x]
			down := plane[clamp(y+1, 0, height-1)][x]
			left := plane[y][clamp(x-1, 0, width-1)]
			right := plane[y][clamp(x+1, 0, width-1)]
			r := up + down + left + right - 4*plane[y][x]
			responses = append(responses, r)
			sum += r
		}
	}

	mean := sum / float64(len(responses))
	var variance float64
	for _, r := range responses {
		d := r - mean
		variance += d * d
	}
	return variance / float64(len(responses))
}

// estimateNoise returns the mean absolute difference between the plane and
// its 3x3 median-filtered version.
func estimateNoise(plane [][]float64) float64 {
	filtered := median3x3(plane)

	var sum float64
	var n int
	for y := range plane {
		for x := range plane[y] {
			sum += math.Abs(plane[y][x] - filtered[y][x])
		}
		n += len(plane[y])
	}
	return sum / float64(n)
}

// edgeDensity returns the fraction of pixels whose horizontal or vertical
// gradient magnitude exceeds the fixed edge threshold. Border pixels are
// never counted as edges.
func edgeDensity(plane [][]float64) float64 {
	height := len(plane)
	width := len(plane[0])

	count := 0
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			dx := math.Abs(plane[y][x] - plane[y][x+1])
			dy := math.Abs(plane[y][x] - plane[y+1][x])
			if dx > edgeGradientThreshold || dy > edgeGradientThreshold {
				count++
			}
		}
	}
	return float64(count) / float64(width*height)
}
