package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across pipeline stages.
var (
	// ErrInvalidInput indicates a nil or empty input image.
	ErrInvalidInput = errors.New("invalid input image")

	// ErrUnsupportedFormat indicates an unknown export or cache format.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrCacheUnavailable indicates that a cache backend could not be
	// reached. Cache operations recover from it by falling back to the
	// next tier; it is logged, not propagated to pipeline callers.
	ErrCacheUnavailable = errors.New("cache backend unavailable")
)

// LoadError reports a path that did not resolve to a decodable image.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("could not load image from %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
