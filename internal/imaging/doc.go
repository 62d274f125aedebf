// Package imaging provides image loading and the quality-adaptive
// preprocessing stages of the extraction pipeline.
//
// # Intensity Planes
//
// Most algorithms in this package operate on [][]float64 intensity planes
// with values in the 0-255 range, produced by GrayPlane and converted back
// with PlaneImage. Convolutions use clamped (replicated) border handling.
//
// # Quality Analysis
//
// AnalyzeQuality computes brightness, contrast, blur level (Laplacian
// variance), noise level (median-filter residual) and edge density, and
// classifies the image into HIGH, MEDIUM, LOW or VERY_LOW. The analysis is
// deterministic and side-effect free.
//
// # Enhancement
//
// Enhancer applies contrast-limited adaptive histogram equalization and
// bilateral smoothing, either unconditionally (Enhance) or composed step by
// step from the image's own statistics (AdaptiveEnhance). ReduceNoise and
// its presets wrap median plus Gaussian filtering. No function in this
// package mutates its input image; every transform returns a new buffer.
package imaging
