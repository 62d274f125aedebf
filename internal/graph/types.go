package graph

import "math"

// Point represents a 2D coordinate in pixel space.
//
// Coordinates follow the standard image convention: origin at the top-left
// corner, X increasing rightward, Y increasing downward. Because positions
// are always carried as a Point and never as a bare scalar, every consumer
// of a Node or Edge can rely on a well-formed pair of coordinates.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// DistanceTo returns the Euclidean distance to another point.
func (p Point) DistanceTo(q Point) float64 {
	dx := float64(p.X - q.X)
	dy := float64(p.Y - q.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Rect is an axis-aligned bounding box given as top-left corner plus size.
type Rect struct {
	X int `json:"x"` // Left edge
	Y int `json:"y"` // Top edge
	W int `json:"w"` // Width in pixels
	H int `json:"h"` // Height in pixels
}

// Node is a detected graph node.
//
// A Node is produced by contour analysis of the binarized image. IDs are
// assigned by contour enumeration order and are unique only within a single
// detection run.
type Node struct {
	// ID is the node identifier within one detection run.
	ID int `json:"id"`

	// Position is the contour centroid computed from image moments.
	// Candidates whose zeroth moment is zero are dropped by the detector,
	// so Position is always a valid coordinate pair.
	Position Point `json:"position"`

	// Area is the contour area in square pixels.
	Area float64 `json:"area"`

	// Circularity is 4π·area/perimeter², 1.0 for a perfect circle.
	Circularity float64 `json:"circularity"`

	// BoundingBox encloses the contour.
	BoundingBox Rect `json:"bounding_box"`

	// IsLikelyNode is true when Circularity exceeds the detector's
	// threshold. It is advisory: later stages use it to exclude obvious
	// non-node blobs from edge search, not to drop nodes outright.
	IsLikelyNode bool `json:"is_likely_node"`

	// FillColor is the hex color sampled at the centroid in the source
	// image. May be empty if sampling fails.
	FillColor string `json:"fill_color,omitempty"`

	// Label is the text attached by the text mapper, empty when no text
	// region qualified.
	Label string `json:"label"`

	// LabelConfidence is the OCR confidence of the attached text (0-1).
	LabelConfidence float64 `json:"label_confidence,omitempty"`

	// LabelID is the id of the attached text region.
	LabelID int `json:"label_id,omitempty"`

	// LabelDistance is the centroid distance to the attached text.
	LabelDistance float64 `json:"label_distance,omitempty"`
}

// Edge is a detected connection between two nodes.
type Edge struct {
	// ID is the edge identifier within one detection run.
	ID int `json:"id"`

	// Source and Target reference Node IDs from the same detection run.
	// Source is never equal to Target; self-referencing segments are
	// rejected by the detector.
	Source int `json:"source"`
	Target int `json:"target"`

	// Weight is the geometric length of the traced segment, or the
	// center-to-center distance when the proximity fallback produced
	// this edge.
	Weight float64 `json:"weight"`

	// Points holds the traced segment endpoints. Absent for edges from
	// the proximity fallback.
	Points []Point `json:"points,omitempty"`

	// Midpoint of the endpoint nodes' positions (integer-truncated
	// average), set by the text mapper. Absent when text mapping did
	// not run.
	Midpoint *Point `json:"midpoint,omitempty"`

	// Label is the text attached by the text mapper, empty when no text
	// region qualified.
	Label string `json:"label"`

	// LabelConfidence is the OCR confidence of the attached text (0-1).
	LabelConfidence float64 `json:"label_confidence,omitempty"`

	// LabelID is the id of the attached text region.
	LabelID int `json:"label_id,omitempty"`

	// LabelDistance is the midpoint distance to the attached text.
	LabelDistance float64 `json:"label_distance,omitempty"`
}

// TextRegion is a localized span of recognized text.
type TextRegion struct {
	// ID is the region identifier within one extraction run.
	ID int `json:"id"`

	// Text is the recognized content.
	Text string `json:"text"`

	// Confidence is the OCR confidence (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// BoundingBox is the region quadrilateral as four corners in reading
	// order (top-left, top-right, bottom-right, bottom-left).
	BoundingBox [4]Point `json:"bounding_box"`

	// Centroid is the mean of the four corners.
	Centroid Point `json:"centroid"`

	// Area is the polygon area of the quadrilateral in square pixels.
	Area float64 `json:"area"`
}

// QualityLevel is the discrete quality classification of an input image.
type QualityLevel string

// Quality levels ordered from best to worst.
const (
	QualityHigh    QualityLevel = "HIGH"
	QualityMedium  QualityLevel = "MEDIUM"
	QualityLow     QualityLevel = "LOW"
	QualityVeryLow QualityLevel = "VERY_LOW"
)

// QualityInfo holds the scalar quality metrics of an image and the level
// they map to.
type QualityInfo struct {
	// Brightness is the mean grayscale intensity (0-255).
	Brightness float64 `json:"brightness"`

	// Contrast is the grayscale intensity standard deviation.
	Contrast float64 `json:"contrast"`

	// BlurLevel is the variance of the Laplacian response. Lower values
	// indicate more blur.
	BlurLevel float64 `json:"blur_level"`

	// NoiseLevel is the mean absolute difference between the image and
	// its median-filtered version. Higher values indicate more noise.
	NoiseLevel float64 `json:"noise_level"`

	// EdgeDensity is the fraction of pixels classified as edges.
	EdgeDensity float64 `json:"edge_density"`

	// QualityLevel is the discrete classification derived from the
	// metrics above.
	QualityLevel QualityLevel `json:"quality_level"`

	// QualityScore is the number of passed quality criteria (0-3 scale,
	// counting brightness, contrast, blur and noise checks capped at 3).
	QualityScore int `json:"quality_score"`
}

// ImageShape records the dimensions of the analyzed image.
type ImageShape struct {
	Height   int `json:"height"`
	Width    int `json:"width"`
	Channels int `json:"channels"`
}

// DetectionResult is the complete output of one pipeline run. It is the unit
// stored in and returned from the result cache.
//
// A result is assembled once, at the end of the pipeline, and never mutated
// afterwards. Callers receive either a complete result or an error; the
// pipeline never returns a partially filled result as if it were complete.
type DetectionResult struct {
	Nodes     []Node     `json:"nodes"`
	Edges     []Edge     `json:"edges"`
	ImagePath string     `json:"image_path"`
	ImageShape ImageShape `json:"image_shape"`
	QualityInfo QualityInfo `json:"quality_info"`

	// TextRegions is present only when OCR was enabled for the run.
	TextRegions []TextRegion `json:"text_regions,omitempty"`
}
