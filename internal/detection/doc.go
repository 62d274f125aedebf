// Package detection implements the geometric inference stages of the
// pipeline: node segmentation and edge extraction.
//
// # Node Detection
//
// NodeDetector smooths and binarizes the image (automatic bimodal
// threshold), groups foreground pixels into contours by flood-fill, and
// turns each contour into a node candidate: centroid from image moments,
// area, circularity (4π·area/perimeter²), bounding box. Degenerate
// contours are skipped rather than emitted with sentinel positions.
//
// # Edge Detection
//
// EdgeDetector supports two strategies. Line tracing masks out node
// interiors, thins the remaining strokes to 1-pixel skeletons (Zhang-Suen)
// and extracts line segments with a Hough transform; each segment's
// endpoints are associated with their nearest nodes. The proximity
// fallback simply connects node pairs closer than a fixed threshold and is
// a coarse, scale-dependent approximation.
//
// # Coordinate System
//
// All coordinates use the standard image convention: origin at the
// top-left, X rightward, Y downward, relative to the image bounds origin.
package detection
