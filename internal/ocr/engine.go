package ocr

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/graphsnap/internal/graph"
)

// Options configures the text recognition engine.
type Options struct {
	// Languages lists the Tesseract language codes to recognize,
	// e.g. "eng". Defaults to English.
	Languages []string

	// UseGPU requests GPU acceleration. The flag is advisory: the
	// underlying engine decides whether acceleration is available and
	// silently runs on CPU otherwise.
	UseGPU bool
}

// Engine extracts localized text spans from images using Tesseract.
//
// The Tesseract client is expensive to initialize, so it is created lazily
// on first use and reused for the lifetime of the engine. An Engine is safe
// for sequential use; concurrent extraction calls are serialized.
type Engine struct {
	languages []string
	useGPU    bool

	once    sync.Once
	initErr error
	mu      sync.Mutex
	client  *gosseract.Client
}

// NewEngine creates a text recognition engine. The underlying OCR client
// is not touched until the first ExtractText call.
func NewEngine(opts Options) *Engine {
	languages := opts.Languages
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &Engine{languages: languages, useGPU: opts.UseGPU}
}

// Close releases the underlying OCR client if it was ever initialized.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	return err
}

// ensureClient performs the one-time client initialization.
func (e *Engine) ensureClient() error {
	e.once.Do(func() {
		client := gosseract.NewClient()
		if err := client.SetLanguage(e.languages...); err != nil {
			client.Close()
			e.initErr = fmt.Errorf("failed to set OCR languages: %w", err)
			return
		}
		e.client = client
	})
	return e.initErr
}

// ExtractText runs OCR on the image and returns word-level text regions
// with bounding quadrilaterals, centroids and confidence scores.
//
// The call is cancellable: when ctx is done before recognition finishes,
// ctx.Err() is returned and the in-flight recognition is abandoned. Region
// IDs follow recognition order and are unique only within one call.
func (e *Engine) ExtractText(ctx context.Context, img image.Image) ([]graph.TextRegion, error) {
	if img == nil {
		return nil, graph.ErrInvalidInput
	}
	if err := e.ensureClient(); err != nil {
		return nil, err
	}

	// Tesseract wants a file path; hand the image over as a temp PNG.
	tmpFile, err := os.CreateTemp("", "graphsnap-ocr-*.png")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if err := png.Encode(tmpFile, img); err != nil {
		tmpFile.Close()
		return nil, fmt.Errorf("failed to encode temp image: %w", err)
	}
	tmpFile.Close()

	type outcome struct {
		regions []graph.TextRegion
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		regions, err := e.recognize(tmpPath)
		done <- outcome{regions: regions, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case o := <-done:
		return o.regions, o.err
	}
}

// recognize performs the actual OCR pass on the file at path.
func (e *Engine) recognize(path string) ([]graph.TextRegion, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.client.SetImage(path); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	regions := make([]graph.TextRegion, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		regions = append(regions, RegionFromBox(
			len(regions),
			box.Word,
			float64(box.Confidence)/100.0,
			box.Box,
		))
	}
	return regions, nil
}

// RegionFromBox builds a TextRegion from an axis-aligned word box. The
// quadrilateral is the box's corners in reading order.
func RegionFromBox(id int, text string, confidence float64, box image.Rectangle) graph.TextRegion {
	return graph.TextRegion{
		ID:         id,
		Text:       text,
		Confidence: confidence,
		BoundingBox: [4]graph.Point{
			{X: box.Min.X, Y: box.Min.Y},
			{X: box.Max.X, Y: box.Min.Y},
			{X: box.Max.X, Y: box.Max.Y},
			{X: box.Min.X, Y: box.Max.Y},
		},
		Centroid: graph.Point{
			X: (box.Min.X + box.Max.X) / 2,
			Y: (box.Min.Y + box.Max.Y) / 2,
		},
		Area: float64(box.Dx() * box.Dy()),
	}
}

// FilterByConfidence keeps only regions at or above the confidence
// threshold. The input slice is not modified.
func FilterByConfidence(regions []graph.TextRegion, minConfidence float64) []graph.TextRegion {
	filtered := make([]graph.TextRegion, 0, len(regions))
	for _, region := range regions {
		if region.Confidence >= minConfidence {
			filtered = append(filtered, region)
		}
	}
	return filtered
}
