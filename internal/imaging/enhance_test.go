package imaging

import (
	"image"
	"testing"
)

func TestEnhance_PreservesDimensions(t *testing.T) {
	img := createCheckerImage(80, 60, 8)
	e := NewEnhancer(DefaultEnhanceOptions())

	out := e.Enhance(img)
	bounds := out.Bounds()
	if bounds.Dx() != 80 || bounds.Dy() != 60 {
		t.Errorf("Expected 80x60 output, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestEnhance_DoesNotMutateInput(t *testing.T) {
	img := createUniformImage(50, 50, 60)
	before := GrayPlane(img)

	e := NewEnhancer(DefaultEnhanceOptions())
	e.Enhance(img)
	e.AdaptiveEnhance(img)

	after := GrayPlane(img)
	for y := range before {
		for x := range before[y] {
			if before[y][x] != after[y][x] {
				t.Fatalf("Input pixel (%d,%d) changed: %f -> %f", x, y, before[y][x], after[y][x])
			}
		}
	}
}

func TestAdaptiveEnhance_BrightensLowBrightness(t *testing.T) {
	// Dark but not flat enough to trigger equalization alone.
	img := createUniformImage(50, 50, 60)
	e := NewEnhancer(DefaultEnhanceOptions())

	out := e.AdaptiveEnhance(img)
	outMean := PlaneMean(GrayPlane(out))
	inMean := PlaneMean(GrayPlane(img))

	if outMean <= inMean {
		t.Errorf("Expected brighter output, got mean %f (input %f)", outMean, inMean)
	}
}

func TestAdaptiveEnhance_GoodImageUnchanged(t *testing.T) {
	// High contrast, mid brightness: no enhancement step should fire and
	// the exact input value must come back.
	img := createCheckerImage(64, 64, 8)
	e := NewEnhancer(DefaultEnhanceOptions())

	out := e.AdaptiveEnhance(img)
	if out != image.Image(img) {
		t.Error("Expected input returned unchanged for a good image")
	}
}

func TestAdjustLinear_Saturates(t *testing.T) {
	img := createUniformImage(10, 10, 250)
	out := adjustLinear(img, 1.3, 10)

	plane := GrayPlane(out)
	if plane[5][5] != 255 {
		t.Errorf("Expected saturation at 255, got %f", plane[5][5])
	}
}

func TestNewEnhancer_ZeroFieldsFallBack(t *testing.T) {
	e := NewEnhancer(EnhanceOptions{})
	def := DefaultEnhanceOptions()
	if e.opts != def {
		t.Errorf("Expected defaults %+v, got %+v", def, e.opts)
	}
}
