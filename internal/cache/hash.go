package cache

import (
	"fmt"
	"image"
	"math/bits"
	"strconv"
	"strings"

	"github.com/corona10/goimagehash"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/graphsnap/internal/graph"
)

// Prescale dimensions applied before hashing so minor resolution
// differences collapse to the same fingerprint.
const (
	hashScaleWidth  = 256
	hashScaleHeight = 256
)

// DefaultSimilarityThreshold is the average Hamming distance at or below
// which two fingerprints count as the same image.
const DefaultSimilarityThreshold = 10.0

// HashProvider computes perceptual fingerprints of images for use as cache
// keys.
//
// The fingerprint combines a perception hash (frequency-domain) with a
// difference hash (gradient-domain), so near-duplicate images (resampled,
// recompressed) collapse to the same composite key while unrelated images
// stay apart.
type HashProvider struct{}

// NewHashProvider creates a hash provider.
func NewHashProvider() *HashProvider {
	return &HashProvider{}
}

// ComputeHash returns the composite fingerprint of the image, formatted as
// "<phash>_<dhash>" with both components in fixed-width hex.
//
// Hashing is deterministic: identical pixel data always yields the same
// composite key.
func (h *HashProvider) ComputeHash(img image.Image) (string, error) {
	if img == nil {
		return "", graph.ErrInvalidInput
	}

	scaled := imaging.Resize(img, hashScaleWidth, hashScaleHeight, imaging.Lanczos)

	phash, err := goimagehash.PerceptionHash(scaled)
	if err != nil {
		return "", fmt.Errorf("perception hash: %w", err)
	}
	dhash, err := goimagehash.DifferenceHash(scaled)
	if err != nil {
		return "", fmt.Errorf("difference hash: %w", err)
	}

	return fmt.Sprintf("%016x_%016x", phash.GetHash(), dhash.GetHash()), nil
}

// AreSimilar reports whether two composite fingerprints are within the
// given bit-distance threshold, averaging the Hamming distances of the two
// hash components.
func AreSimilar(hash1, hash2 string, threshold float64) (bool, error) {
	p1, d1, err := splitHash(hash1)
	if err != nil {
		return false, err
	}
	p2, d2, err := splitHash(hash2)
	if err != nil {
		return false, err
	}

	phashDiff := bits.OnesCount64(p1 ^ p2)
	dhashDiff := bits.OnesCount64(d1 ^ d2)
	avgDiff := float64(phashDiff+dhashDiff) / 2
	return avgDiff <= threshold, nil
}

// splitHash parses a composite "<phash>_<dhash>" fingerprint.
func splitHash(hash string) (uint64, uint64, error) {
	parts := strings.Split(hash, "_")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed composite hash %q", hash)
	}
	p, err := strconv.ParseUint(parts[0], 16, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed composite hash %q: %w", hash, err)
	}
	d, err := strconv.ParseUint(parts[1], 16, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed composite hash %q: %w", hash, err)
	}
	return p, d, nil
}
