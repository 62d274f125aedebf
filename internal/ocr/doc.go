// Package ocr provides text extraction behind a thin contract over the
// Tesseract engine.
//
// The engine is treated as a black box that accepts a raster image and a
// configured language set and returns localized text with confidence; its
// internal recognition algorithm is out of scope. Initialization is
// expensive and happens lazily, once per Engine. Extraction calls accept a
// context so the orchestration layer can bound the engine's latency.
package ocr
