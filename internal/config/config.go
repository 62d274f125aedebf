// Package config defines the explicit configuration of the extraction
// pipeline.
//
// Configuration is an immutable value assembled once (defaults, then an
// optional YAML file, then environment overrides) and handed to the
// orchestrator. No package-level state and no side effects at load time:
// directory creation happens where the directory is owned (the cache
// manager), not here.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnhancerConfig holds the enhancement stage parameters.
type EnhancerConfig struct {
	// Enabled toggles the whole enhancement stage.
	Enabled bool `yaml:"enabled"`

	// KernelSize is the diameter of the edge-preserving smoothing
	// window.
	KernelSize int `yaml:"kernel_size"`

	// ClipLimit and TileGrid bound local contrast equalization.
	ClipLimit float64 `yaml:"clip_limit"`
	TileGrid  int     `yaml:"tile_grid"`

	// BrightnessGain and BrightnessOffset define the linear brightness
	// adjustment applied to dark images.
	BrightnessGain   float64 `yaml:"brightness_gain"`
	BrightnessOffset float64 `yaml:"brightness_offset"`

	// DenoiseStrength controls the strong denoise pass for very low
	// quality images.
	DenoiseStrength float64 `yaml:"denoise_strength"`
}

// NodesConfig holds the node detection parameters.
type NodesConfig struct {
	MinArea              float64 `yaml:"min_area"`
	MaxArea              float64 `yaml:"max_area"`
	CircularityThreshold float64 `yaml:"circularity_threshold"`
}

// EdgesConfig holds the edge detection parameters.
type EdgesConfig struct {
	// Strategy is one of "auto", "trace", "proximity".
	Strategy string `yaml:"strategy"`

	MinVotes      int     `yaml:"min_votes"`
	MinLineLength float64 `yaml:"min_line_length"`
	MaxLineGap    float64 `yaml:"max_line_gap"`

	// NodeMaskPadding widens each node's exclusion box when tracing, so
	// node outlines are not picked up as lines.
	NodeMaskPadding int `yaml:"node_mask_padding"`

	// FallbackMaxDistance is the proximity-fallback threshold in pixels.
	// It is a tunable default, not a contractual value: the threshold is
	// scale-dependent and wrong for rescaled images.
	FallbackMaxDistance float64 `yaml:"fallback_max_distance"`
}

// Config is the complete pipeline configuration.
type Config struct {
	OCREnabled   bool     `yaml:"ocr_enabled"`
	OCRLanguages []string `yaml:"ocr_languages"`
	UseGPU       bool     `yaml:"use_gpu"`

	CachingEnabled  bool   `yaml:"caching_enabled"`
	CacheDir        string `yaml:"cache_dir"`
	RedisURL        string `yaml:"redis_url"`
	CacheTTLSeconds int    `yaml:"cache_ttl"`

	MinTextConfidence      float64 `yaml:"min_text_confidence"`
	TextProximityThreshold float64 `yaml:"text_proximity_threshold"`

	Enhancer EnhancerConfig `yaml:"enhancer"`
	Nodes    NodesConfig    `yaml:"nodes"`
	Edges    EdgesConfig    `yaml:"edges"`
}

// Default returns the configuration defaults.
func Default() Config {
	return Config{
		OCREnabled:   true,
		OCRLanguages: []string{"eng"},

		CachingEnabled:  true,
		CacheDir:        "cache",
		CacheTTLSeconds: 3600,

		MinTextConfidence:      0.3,
		TextProximityThreshold: 50,

		Enhancer: EnhancerConfig{
			Enabled:          true,
			KernelSize:       9,
			ClipLimit:        2.0,
			TileGrid:         8,
			BrightnessGain:   1.3,
			BrightnessOffset: 10,
			DenoiseStrength:  10,
		},
		Nodes: NodesConfig{
			MinArea:              100,
			MaxArea:              10000,
			CircularityThreshold: 0.7,
		},
		Edges: EdgesConfig{
			Strategy:            "auto",
			MinVotes:            10,
			MinLineLength:       30,
			MaxLineGap:          10,
			NodeMaskPadding:     5,
			FallbackMaxDistance: 200,
		},
	}
}

// Load reads a YAML configuration file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from GRAPHSNAP_* environment variables:
// REDIS_URL, CACHE_DIR, CACHE_TTL, OCR_ENABLED, OCR_LANGUAGES,
// CACHING_ENABLED.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("GRAPHSNAP_REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv("GRAPHSNAP_CACHE_DIR"); v != "" {
		c.CacheDir = v
	}
	if v := os.Getenv("GRAPHSNAP_CACHE_TTL"); v != "" {
		if ttl, err := strconv.Atoi(v); err == nil {
			c.CacheTTLSeconds = ttl
		}
	}
	if v := os.Getenv("GRAPHSNAP_OCR_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.OCREnabled = b
		}
	}
	if v := os.Getenv("GRAPHSNAP_OCR_LANGUAGES"); v != "" {
		c.OCRLanguages = strings.Split(v, ",")
	}
	if v := os.Getenv("GRAPHSNAP_CACHING_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.CachingEnabled = b
		}
	}
}

// Validate checks the configuration for values the pipeline cannot run
// with.
func (c *Config) Validate() error {
	if c.CachingEnabled && c.CacheDir == "" {
		return fmt.Errorf("caching enabled but cache_dir is empty")
	}
	if c.CacheTTLSeconds <= 0 {
		return fmt.Errorf("cache_ttl must be positive, got %d", c.CacheTTLSeconds)
	}
	if c.MinTextConfidence < 0 || c.MinTextConfidence > 1 {
		return fmt.Errorf("min_text_confidence must be in [0,1], got %g", c.MinTextConfidence)
	}
	if c.TextProximityThreshold <= 0 {
		return fmt.Errorf("text_proximity_threshold must be positive, got %g", c.TextProximityThreshold)
	}
	if c.OCREnabled && len(c.OCRLanguages) == 0 {
		return fmt.Errorf("ocr enabled but no languages configured")
	}
	switch c.Edges.Strategy {
	case "", "auto", "trace", "proximity":
	default:
		return fmt.Errorf("unknown edge strategy %q", c.Edges.Strategy)
	}
	return nil
}

// CacheTTL returns the entry time-to-live as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
