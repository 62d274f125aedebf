// Package cache provides the content-addressed result cache that wraps the
// extraction pipeline.
//
// Keys are perceptual fingerprints computed by HashProvider, so visually
// near-identical inputs share a cache entry. Storage is two-tiered: a fast
// remote key-value store when configured and reachable, and a local file
// store as the always-available fallback. Tier selection happens once at
// construction; individual remote failures degrade silently to the file
// tier and are logged, never raised.
package cache
