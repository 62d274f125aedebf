package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
)

// NoiseOptions parameterizes a noise reduction pass.
type NoiseOptions struct {
	// MedianSize is the window size of the median filter that removes
	// salt-and-pepper noise.
	MedianSize float64

	// Strength controls the Gaussian smoothing that follows the median
	// filter; the blur radius is Strength/5.
	Strength float64
}

// Noise reduction presets, from subtle to heavy.
func LightNoiseOptions() NoiseOptions    { return NoiseOptions{MedianSize: 3, Strength: 5} }
func StandardNoiseOptions() NoiseOptions { return NoiseOptions{MedianSize: 3, Strength: 10} }
func AggressiveNoiseOptions() NoiseOptions {
	return NoiseOptions{MedianSize: 5, Strength: 15}
}

// ReduceNoise applies a median filter followed by Gaussian smoothing with
// the given parameters. The input image is never modified.
func ReduceNoise(img image.Image, opts NoiseOptions) image.Image {
	if opts.MedianSize <= 0 {
		opts.MedianSize = 3
	}
	if opts.Strength <= 0 {
		opts.Strength = 10
	}
	filtered := effect.Median(img, opts.MedianSize)
	return blur.Gaussian(filtered, opts.Strength/5)
}

// ReduceNoiseAdaptive chooses a noise reduction preset from the estimated
// noise level: light below 5, standard below 15, aggressive otherwise.
func ReduceNoiseAdaptive(img image.Image, noiseLevel float64) image.Image {
	switch {
	case noiseLevel < 5:
		return ReduceNoise(img, LightNoiseOptions())
	case noiseLevel < 15:
		return ReduceNoise(img, StandardNoiseOptions())
	default:
		return ReduceNoise(img, AggressiveNoiseOptions())
	}
}
