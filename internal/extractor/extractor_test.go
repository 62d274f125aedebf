package extractor

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ironsheep/graphsnap/internal/config"
	"github.com/ironsheep/graphsnap/internal/graph"
)

// countingNodeFinder returns fixed nodes and counts invocations
type countingNodeFinder struct {
	calls int
	nodes []graph.Node
}

func (f *countingNodeFinder) Detect(img image.Image) []graph.Node {
	f.calls++
	return f.nodes
}

// countingEdgeFinder returns fixed edges and counts invocations
type countingEdgeFinder struct {
	calls int
	edges []graph.Edge
}

func (f *countingEdgeFinder) Detect(img image.Image, nodes []graph.Node) []graph.Edge {
	f.calls++
	return f.edges
}

// capturingTextExtractor records the image it is handed
type capturingTextExtractor struct {
	received image.Image
}

func (e *capturingTextExtractor) ExtractText(ctx context.Context, img image.Image) ([]graph.TextRegion, error) {
	e.received = img
	return nil, nil
}

func writeDiagramPNG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 200, 150))
	for y := 0; y < 150; y++ {
		for x := 0; x < 200; x++ {
			img.Set(x, y, color.White)
		}
	}
	// Two dark blobs so the image is not completely featureless.
	for y := 60; y < 90; y++ {
		for x := 40; x < 70; x++ {
			img.Set(x, y, color.Black)
		}
		for x := 130; x < 160; x++ {
			img.Set(x, y, color.Black)
		}
	}

	path := filepath.Join(t.TempDir(), "diagram.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return path
}

func testConfig(t *testing.T, caching bool) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.OCREnabled = false
	cfg.CachingEnabled = caching
	if caching {
		cfg.CacheDir = t.TempDir()
	}
	return cfg
}

func newStubbedDetector(t *testing.T, caching bool) (*Detector, *countingNodeFinder, *countingEdgeFinder) {
	t.Helper()
	det, err := New(context.Background(), testConfig(t, caching), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { det.Close() })

	nf := &countingNodeFinder{nodes: []graph.Node{
		{ID: 0, Position: graph.Point{X: 55, Y: 75}, IsLikelyNode: true},
		{ID: 1, Position: graph.Point{X: 145, Y: 75}, IsLikelyNode: true},
	}}
	ef := &countingEdgeFinder{edges: []graph.Edge{
		{ID: 0, Source: 0, Target: 1, Weight: 90},
	}}
	det.nodes = nf
	det.edges = ef
	return det, nf, ef
}

func TestDetect_PipelineResult(t *testing.T) {
	det, nf, ef := newStubbedDetector(t, false)
	path := writeDiagramPNG(t)

	result, err := det.Detect(context.Background(), path)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if nf.calls != 1 || ef.calls != 1 {
		t.Errorf("Expected one detection pass, got nodes=%d edges=%d", nf.calls, ef.calls)
	}
	if len(result.Nodes) != 2 || len(result.Edges) != 1 {
		t.Errorf("Unexpected result sizes: %d nodes, %d edges", len(result.Nodes), len(result.Edges))
	}
	if result.ImagePath != path {
		t.Errorf("Expected image path %q, got %q", path, result.ImagePath)
	}
	if result.ImageShape.Width != 200 || result.ImageShape.Height != 150 {
		t.Errorf("Unexpected shape %+v", result.ImageShape)
	}
	if result.QualityInfo.QualityLevel == "" {
		t.Error("Expected quality info to be populated")
	}
	if result.TextRegions != nil {
		t.Error("Text regions should be absent with OCR disabled")
	}
}

func writeDarkPNG(t *testing.T) string {
	t.Helper()
	// Uniform dark gray: fails the brightness, contrast and sharpness
	// criteria, so the quality score forces adaptive enhancement.
	img := image.NewRGBA(image.Rect(0, 0, 120, 120))
	for y := 0; y < 120; y++ {
		for x := 0; x < 120; x++ {
			img.Set(x, y, color.RGBA{40, 40, 40, 255})
		}
	}

	path := filepath.Join(t.TempDir(), "dark.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return path
}

func TestDetect_OCRReceivesRawImage(t *testing.T) {
	det, _, _ := newStubbedDetector(t, false)
	text := &capturingTextExtractor{}
	det.text = text

	path := writeDarkPNG(t)
	result, err := det.Detect(context.Background(), path)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if result.QualityInfo.QualityScore >= 2 {
		t.Fatalf("Test image should score below 2, got %d", result.QualityInfo.QualityScore)
	}

	if text.received == nil {
		t.Fatal("Text extractor was not invoked")
	}
	// Enhancement brightens this image considerably, so an untouched
	// pixel value proves text extraction saw the original.
	r, _, _, _ := text.received.At(10, 10).RGBA()
	if got := uint8(r >> 8); got != 40 {
		t.Errorf("Text extractor received an altered image: pixel value %d, want 40", got)
	}
}

func TestDetect_CacheShortCircuits(t *testing.T) {
	det, nf, ef := newStubbedDetector(t, true)
	path := writeDiagramPNG(t)
	ctx := context.Background()

	first, err := det.Detect(ctx, path)
	if err != nil {
		t.Fatalf("First Detect failed: %v", err)
	}
	second, err := det.Detect(ctx, path)
	if err != nil {
		t.Fatalf("Second Detect failed: %v", err)
	}

	if nf.calls != 1 || ef.calls != 1 {
		t.Errorf("Second call must not re-run detection, got nodes=%d edges=%d", nf.calls, ef.calls)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Cached result differs (-first +second):\n%s", diff)
	}
}

func TestDetect_NoCacheRunsEveryTime(t *testing.T) {
	det, nf, _ := newStubbedDetector(t, false)
	path := writeDiagramPNG(t)
	ctx := context.Background()

	if _, err := det.Detect(ctx, path); err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if _, err := det.Detect(ctx, path); err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if nf.calls != 2 {
		t.Errorf("Expected detection on every call without caching, got %d", nf.calls)
	}
}

func TestDetect_MissingFile(t *testing.T) {
	det, _, _ := newStubbedDetector(t, false)

	_, err := det.Detect(context.Background(), filepath.Join(t.TempDir(), "nope.png"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestDetect_CancelledContext(t *testing.T) {
	det, _, _ := newStubbedDetector(t, false)
	path := writeDiagramPNG(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := det.Detect(ctx, path); err == nil {
		t.Fatal("Expected error for cancelled context")
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.CacheTTLSeconds = -1

	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Fatal("Expected error for invalid configuration")
	}
}
