package detection

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/graphsnap/internal/graph"
)

// NodeOptions holds the tunable parameters of node detection.
type NodeOptions struct {
	// MinArea and MaxArea bound the contour area in square pixels.
	// Contours outside the bounds are discarded.
	MinArea float64
	MaxArea float64

	// CircularityThreshold classifies a contour as a likely node when its
	// circularity (4π·area/perimeter²) exceeds it.
	CircularityThreshold float64
}

// DefaultNodeOptions returns the node detection defaults.
func DefaultNodeOptions() NodeOptions {
	return NodeOptions{
		MinArea:              100,
		MaxArea:              10000,
		CircularityThreshold: 0.7,
	}
}

// NodeDetector segments candidate node regions from an image via contour
// analysis.
type NodeDetector struct {
	opts NodeOptions
}

// NewNodeDetector creates a node detector. Zero-valued option fields fall
// back to the defaults.
func NewNodeDetector(opts NodeOptions) *NodeDetector {
	def := DefaultNodeOptions()
	if opts.MinArea <= 0 {
		opts.MinArea = def.MinArea
	}
	if opts.MaxArea <= 0 {
		opts.MaxArea = def.MaxArea
	}
	if opts.CircularityThreshold <= 0 {
		opts.CircularityThreshold = def.CircularityThreshold
	}
	return &NodeDetector{opts: opts}
}

// Detect finds node candidates in the image.
//
// The image is smoothed, binarized with an automatic bimodal threshold and
// segmented into external contours. For each contour the centroid is
// computed from image moments; contours whose zeroth moment is zero are
// degenerate and skipped, so every returned node carries a valid position.
// Contours outside the configured area bounds are discarded. IsLikelyNode
// is advisory: it marks contours round enough to be node symbols but does
// not drop the others.
//
// Node IDs follow contour enumeration order and are unique only within one
// call.
func (d *NodeDetector) Detect(img image.Image) []graph.Node {
	smoothed := blur.Gaussian(img, 1.0)
	mask := BinarizeOtsu(smoothed)
	contours := findContours(mask)

	bounds := img.Bounds()
	nodes := make([]graph.Node, 0, len(contours))
	for i, contour := range contours {
		area := float64(len(contour))
		if area <= d.opts.MinArea || area >= d.opts.MaxArea {
			continue
		}

		centroid, ok := contourCentroid(contour)
		if !ok {
			continue
		}

		perimeter := contourPerimeter(contour, mask)
		circularity := 0.0
		if perimeter > 0 {
			circularity = 4 * math.Pi * area / (perimeter * perimeter)
		}

		node := graph.Node{
			ID:           i,
			Position:     centroid,
			Area:         area,
			Circularity:  circularity,
			BoundingBox:  contourBounds(contour),
			IsLikelyNode: circularity > d.opts.CircularityThreshold,
		}
		if c, ok := colorful.MakeColor(img.At(centroid.X+bounds.Min.X, centroid.Y+bounds.Min.Y)); ok {
			node.FillColor = c.Hex()
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// findContours finds connected components of foreground pixels.
//
// Uses stack-based flood-fill with 8-connectivity, scanning in row-major
// order so component discovery order is deterministic. Each contour is the
// full pixel set of its component.
func findContours(mask [][]bool) [][]graph.Point {
	height := len(mask)
	if height == 0 {
		return nil
	}
	width := len(mask[0])

	visited := make([][]bool, height)
	for y := range visited {
		visited[y] = make([]bool, width)
	}

	var contours [][]graph.Point
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !mask[y][x] || visited[y][x] {
				continue
			}
			contour := floodFill(mask, visited, x, y)
			contours = append(contours, contour)
		}
	}
	return contours
}

// floodFill collects the connected component containing the start pixel.
// Iterative to avoid stack overflow on large regions.
func floodFill(mask, visited [][]bool, startX, startY int) []graph.Point {
	height := len(mask)
	width := len(mask[0])

	var component []graph.Point
	stack := []graph.Point{{X: startX, Y: startY}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if visited[p.Y][p.X] || !mask[p.Y][p.X] {
			continue
		}

		visited[p.Y][p.X] = true
		component = append(component, p)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, graph.Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}
	return component
}

// contourCentroid computes the centroid from the contour's image moments.
// Returns ok=false for a degenerate contour with a zero zeroth moment.
func contourCentroid(contour []graph.Point) (graph.Point, bool) {
	m00 := len(contour)
	if m00 == 0 {
		return graph.Point{}, false
	}
	var m10, m01 int
	for _, p := range contour {
		m10 += p.X
		m01 += p.Y
	}
	return graph.Point{X: m10 / m00, Y: m01 / m00}, true
}

// contourPerimeter counts contour pixels that touch the background through
// a 4-connected neighbor, approximating the boundary length.
func contourPerimeter(contour []graph.Point, mask [][]bool) float64 {
	height := len(mask)
	width := len(mask[0])

	count := 0
	for _, p := range contour {
		if p.X == 0 || p.Y == 0 || p.X == width-1 || p.Y == height-1 ||
			!mask[p.Y][p.X-1] || !mask[p.Y][p.X+1] ||
			!mask[p.Y-1][p.X] || !mask[p.Y+1][p.X] {
			count++
		}
	}
	return float64(count)
}

// contourBounds returns the axis-aligned bounding box of a contour.
func contourBounds(contour []graph.Point) graph.Rect {
	minX, minY := contour[0].X, contour[0].Y
	maxX, maxY := minX, minY
	for _, p := range contour {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return graph.Rect{X: minX, Y: minY, W: maxX - minX + 1, H: maxY - minY + 1}
}
