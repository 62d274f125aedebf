// Package extractor orchestrates the full extraction pipeline: image
// loading, quality analysis, conditional enhancement, node and edge
// detection, text recognition, text-to-element mapping, and result
// caching.
//
// The pipeline is linear and single-image. Concurrency safety comes from
// the stage components being either pure or internally synchronized; the
// only cross-call coordination is request coalescing, which ensures that
// concurrent extractions of perceptually identical images run the
// detection stages once.
package extractor

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ironsheep/graphsnap/internal/cache"
	"github.com/ironsheep/graphsnap/internal/config"
	"github.com/ironsheep/graphsnap/internal/detection"
	"github.com/ironsheep/graphsnap/internal/graph"
	"github.com/ironsheep/graphsnap/internal/imaging"
	"github.com/ironsheep/graphsnap/internal/logging"
	"github.com/ironsheep/graphsnap/internal/metrics"
	"github.com/ironsheep/graphsnap/internal/ocr"
	"github.com/ironsheep/graphsnap/internal/textmap"
)

// NodeFinder locates node shapes in an image.
type NodeFinder interface {
	Detect(img image.Image) []graph.Node
}

// EdgeFinder locates connections between the detected nodes.
type EdgeFinder interface {
	Detect(img image.Image, nodes []graph.Node) []graph.Edge
}

// TextExtractor recognizes localized text spans in an image.
type TextExtractor interface {
	ExtractText(ctx context.Context, img image.Image) ([]graph.TextRegion, error)
}

// Detector runs the extraction pipeline.
type Detector struct {
	cfg config.Config

	nodes NodeFinder
	edges EdgeFinder
	text  TextExtractor

	enhancer *imaging.Enhancer
	mapper   *textmap.Mapper

	store  *cache.Manager
	hasher *cache.HashProvider
	group  singleflight.Group

	metrics *metrics.Metrics
	log     *slog.Logger
}

// New assembles a detector from the configuration. The cache backend is
// probed eagerly; OCR initialization is deferred to first use.
func New(ctx context.Context, cfg config.Config, m *metrics.Metrics) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	d := &Detector{
		cfg: cfg,
		nodes: detection.NewNodeDetector(detection.NodeOptions{
			MinArea:              cfg.Nodes.MinArea,
			MaxArea:              cfg.Nodes.MaxArea,
			CircularityThreshold: cfg.Nodes.CircularityThreshold,
		}),
		edges: detection.NewEdgeDetector(detection.EdgeOptions{
			Strategy:            detection.EdgeStrategy(cfg.Edges.Strategy),
			MinVotes:            cfg.Edges.MinVotes,
			MinLineLength:       cfg.Edges.MinLineLength,
			MaxLineGap:          cfg.Edges.MaxLineGap,
			NodeMaskPadding:     cfg.Edges.NodeMaskPadding,
			FallbackMaxDistance: cfg.Edges.FallbackMaxDistance,
		}),
		enhancer: imaging.NewEnhancer(imaging.EnhanceOptions{
			KernelSize:       cfg.Enhancer.KernelSize,
			ClipLimit:        cfg.Enhancer.ClipLimit,
			TileGrid:         cfg.Enhancer.TileGrid,
			BrightnessGain:   cfg.Enhancer.BrightnessGain,
			BrightnessOffset: cfg.Enhancer.BrightnessOffset,
			DenoiseStrength:  cfg.Enhancer.DenoiseStrength,
		}),
		mapper:  textmap.NewMapper(cfg.TextProximityThreshold),
		metrics: m,
		log:     logging.New("extractor"),
	}

	if cfg.OCREnabled {
		d.text = ocr.NewEngine(ocr.Options{
			Languages: cfg.OCRLanguages,
			UseGPU:    cfg.UseGPU,
		})
	}

	if cfg.CachingEnabled {
		store, err := cache.NewManager(ctx, cache.Options{
			Dir:      cfg.CacheDir,
			RedisURL: cfg.RedisURL,
			TTL:      cfg.CacheTTL(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize cache: %w", err)
		}
		d.store = store
		d.hasher = cache.NewHashProvider()
	}

	return d, nil
}

// Close releases the cache connection and the OCR client.
func (d *Detector) Close() error {
	var firstErr error
	if closer, ok := d.text.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			firstErr = err
		}
	}
	if d.store != nil {
		if err := d.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Detect loads the image at path and runs the full pipeline on it.
//
// With caching enabled the image content is fingerprinted first; a cached
// result for the fingerprint is returned verbatim and no detection stage
// runs. Concurrent misses on the same fingerprint are coalesced into a
// single pipeline execution.
func (d *Detector) Detect(ctx context.Context, path string) (*graph.DetectionResult, error) {
	img, err := imaging.Load(path)
	if err != nil {
		return nil, err
	}

	if d.store == nil {
		return d.run(ctx, path, img)
	}

	key, err := d.hasher.ComputeHash(img)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint image: %w", err)
	}

	if result, ok := d.store.Get(ctx, key); ok {
		d.metrics.CacheHit()
		d.log.Debug("cache hit", "path", path, "key", key)
		return result, nil
	}
	d.metrics.CacheMiss()

	v, err, _ := d.group.Do(key, func() (any, error) {
		// A concurrent caller may have populated the entry between the
		// miss above and this execution.
		if result, ok := d.store.Get(ctx, key); ok {
			return result, nil
		}
		result, err := d.run(ctx, path, img)
		if err != nil {
			return nil, err
		}
		d.store.Set(ctx, key, result)
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*graph.DetectionResult), nil
}

// run executes the detection stages on an already loaded image.
func (d *Detector) run(ctx context.Context, path string, img image.Image) (*graph.DetectionResult, error) {
	start := time.Now()
	quality, err := imaging.AnalyzeQuality(img)
	if err != nil {
		return nil, fmt.Errorf("quality analysis failed: %w", err)
	}
	d.metrics.ObserveStage("quality", time.Since(start))

	working := img
	if d.cfg.Enhancer.Enabled && quality.QualityScore < 2 {
		start = time.Now()
		working = d.enhancer.AdaptiveEnhance(img)
		d.metrics.ObserveStage("enhance", time.Since(start))
		d.log.Info("enhanced low quality image",
			"path", path, "level", quality.QualityLevel, "score", quality.QualityScore)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Text recognition reads the original image: enhancement is tuned for
	// shape detection and can distort glyph edges.
	var regions []graph.TextRegion
	if d.text != nil {
		start = time.Now()
		regions, err = d.text.ExtractText(ctx, img)
		if err != nil {
			return nil, fmt.Errorf("text extraction failed: %w", err)
		}
		regions = ocr.FilterByConfidence(regions, d.cfg.MinTextConfidence)
		d.metrics.ObserveStage("ocr", time.Since(start))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	nodes := d.nodes.Detect(working)
	d.metrics.ObserveStage("nodes", time.Since(start))
	if len(regions) > 0 {
		nodes = d.mapper.MapToNodes(nodes, regions)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	edges := d.edges.Detect(working, nodes)
	d.metrics.ObserveStage("edges", time.Since(start))
	if len(regions) > 0 {
		edges = d.mapper.MapToEdges(edges, regions, nodes)
	}

	result := &graph.DetectionResult{
		Nodes:       nodes,
		Edges:       edges,
		ImagePath:   path,
		ImageShape:  imaging.Shape(img),
		QualityInfo: quality,
	}
	if d.text != nil {
		result.TextRegions = regions
	}

	d.metrics.DetectionDone()
	d.log.Info("detection complete",
		"path", path, "nodes", len(nodes), "edges", len(edges), "quality", quality.QualityLevel)
	return result, nil
}
