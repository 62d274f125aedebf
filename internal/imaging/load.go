package imaging

import (
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"

	"github.com/ironsheep/graphsnap/internal/graph"
)

// Load reads and decodes the image at path.
//
// Supported formats are PNG, JPEG and GIF. When the path does not resolve
// to a decodable image a *graph.LoadError is returned, carrying the path
// and the underlying open or decode failure.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &graph.LoadError{Path: path, Err: err}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &graph.LoadError{Path: path, Err: err}
	}
	return img, nil
}

// Shape reports the dimensions of img as (height, width, channels).
//
// Channels is 1 for grayscale image types and 3 otherwise; alpha is not
// counted because the pipeline never uses it.
func Shape(img image.Image) graph.ImageShape {
	bounds := img.Bounds()
	channels := 3
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		channels = 1
	}
	return graph.ImageShape{
		Height:   bounds.Dy(),
		Width:    bounds.Dx(),
		Channels: channels,
	}
}
