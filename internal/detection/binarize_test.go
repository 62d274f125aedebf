package detection

import (
	"image"
	"image/color"
	"testing"
)

func TestBinarizeOtsu_SeparatesInkFromBackground(t *testing.T) {
	img := createWhiteImage(100, 100)
	drawDisk(img, 50, 50, 20)

	mask := BinarizeOtsu(img)

	if !mask[50][50] {
		t.Error("Disk center should be foreground")
	}
	if mask[5][5] {
		t.Error("White background should not be foreground")
	}
}

func TestBinarizeOtsu_Bimodal(t *testing.T) {
	// Left half dark gray, right half light gray: the threshold must land
	// between the two modes.
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			v := uint8(60)
			if x >= 50 {
				v = 190
			}
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}

	mask := BinarizeOtsu(img)

	if !mask[50][10] {
		t.Error("Dark half should be foreground")
	}
	if mask[50][90] {
		t.Error("Light half should be background")
	}
}
