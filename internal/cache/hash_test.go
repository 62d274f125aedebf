package cache

import (
	"image"
	"image/color"
	"strings"
	"testing"
)

// createGradientImage creates a horizontal gradient test image
func createGradientImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(x * 255 / width)
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

// createBlockImage creates an image split into four solid quadrants
func createBlockImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.RGBA{255, 255, 255, 255}
			if (x < width/2) != (y < height/2) {
				c = color.RGBA{0, 0, 0, 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestComputeHash_Deterministic(t *testing.T) {
	img := createGradientImage(320, 240)
	h := NewHashProvider()

	hash1, err := h.ComputeHash(img)
	if err != nil {
		t.Fatalf("ComputeHash failed: %v", err)
	}
	hash2, err := h.ComputeHash(img)
	if err != nil {
		t.Fatalf("ComputeHash failed: %v", err)
	}

	if hash1 != hash2 {
		t.Errorf("Hash not deterministic: %s vs %s", hash1, hash2)
	}
}

func TestComputeHash_Format(t *testing.T) {
	img := createGradientImage(100, 100)
	h := NewHashProvider()

	hash, err := h.ComputeHash(img)
	if err != nil {
		t.Fatalf("ComputeHash failed: %v", err)
	}

	parts := strings.Split(hash, "_")
	if len(parts) != 2 {
		t.Fatalf("Expected two hash components, got %d in %q", len(parts), hash)
	}
	for _, part := range parts {
		if len(part) != 16 {
			t.Errorf("Expected 16 hex digits, got %q", part)
		}
	}
}

func TestComputeHash_NilImage(t *testing.T) {
	h := NewHashProvider()
	if _, err := h.ComputeHash(nil); err == nil {
		t.Fatal("Expected error for nil image")
	}
}

func TestComputeHash_ResolutionInvariant(t *testing.T) {
	// The same content at different resolutions should fingerprint as
	// similar since hashing happens on a fixed-size rescale.
	h := NewHashProvider()

	small, err := h.ComputeHash(createBlockImage(128, 128))
	if err != nil {
		t.Fatalf("ComputeHash failed: %v", err)
	}
	large, err := h.ComputeHash(createBlockImage(512, 512))
	if err != nil {
		t.Fatalf("ComputeHash failed: %v", err)
	}

	similar, err := AreSimilar(small, large, 10)
	if err != nil {
		t.Fatalf("AreSimilar failed: %v", err)
	}
	if !similar {
		t.Errorf("Rescaled content should be similar: %s vs %s", small, large)
	}
}

func TestAreSimilar_OnePixelShift(t *testing.T) {
	// A 1-pixel translation of the same content must land within the
	// default similarity threshold.
	draw := func(offset int) *image.RGBA {
		img := image.NewRGBA(image.Rect(0, 0, 256, 256))
		for y := 0; y < 256; y++ {
			for x := 0; x < 256; x++ {
				img.Set(x, y, color.White)
			}
		}
		for _, c := range [][2]int{{64, 64}, {192, 64}, {128, 192}} {
			cx, cy := c[0]+offset, c[1]
			for y := cy - 20; y <= cy+20; y++ {
				for x := cx - 20; x <= cx+20; x++ {
					dx, dy := x-cx, y-cy
					if dx*dx+dy*dy <= 400 {
						img.Set(x, y, color.Black)
					}
				}
			}
		}
		return img
	}

	h := NewHashProvider()
	base, err := h.ComputeHash(draw(0))
	if err != nil {
		t.Fatalf("ComputeHash failed: %v", err)
	}
	shifted, err := h.ComputeHash(draw(1))
	if err != nil {
		t.Fatalf("ComputeHash failed: %v", err)
	}

	similar, err := AreSimilar(base, shifted, DefaultSimilarityThreshold)
	if err != nil {
		t.Fatalf("AreSimilar failed: %v", err)
	}
	if !similar {
		t.Errorf("1px-shifted duplicate should be similar: %s vs %s", base, shifted)
	}
}

func TestAreSimilar_Identical(t *testing.T) {
	img := createGradientImage(200, 200)
	h := NewHashProvider()

	hash, err := h.ComputeHash(img)
	if err != nil {
		t.Fatalf("ComputeHash failed: %v", err)
	}

	similar, err := AreSimilar(hash, hash, 0)
	if err != nil {
		t.Fatalf("AreSimilar failed: %v", err)
	}
	if !similar {
		t.Error("Identical hashes must be similar at any threshold")
	}
}

func TestAreSimilar_DifferentContent(t *testing.T) {
	h := NewHashProvider()

	grad, err := h.ComputeHash(createGradientImage(200, 200))
	if err != nil {
		t.Fatalf("ComputeHash failed: %v", err)
	}
	blocks, err := h.ComputeHash(createBlockImage(200, 200))
	if err != nil {
		t.Fatalf("ComputeHash failed: %v", err)
	}

	similar, err := AreSimilar(grad, blocks, 10)
	if err != nil {
		t.Fatalf("AreSimilar failed: %v", err)
	}
	if similar {
		t.Errorf("Structurally different images should not be similar: %s vs %s", grad, blocks)
	}
}

func TestAreSimilar_MalformedHash(t *testing.T) {
	if _, err := AreSimilar("nope", "alsonope", 10); err == nil {
		t.Fatal("Expected error for malformed hashes")
	}
}
