package detection

import (
	"image"
	"math"
	"sort"

	"github.com/ironsheep/graphsnap/internal/graph"
)

// EdgeStrategy selects how edges between nodes are inferred.
type EdgeStrategy string

const (
	// StrategyTrace extracts line segments from the skeletonized image
	// and associates their endpoints with the nearest nodes.
	StrategyTrace EdgeStrategy = "trace"

	// StrategyProximity connects every pair of nodes closer than a fixed
	// distance. A coarse, scale-dependent approximation, not a
	// structural claim.
	StrategyProximity EdgeStrategy = "proximity"

	// StrategyAuto traces lines first and falls back to proximity only
	// when tracing yields no segments.
	StrategyAuto EdgeStrategy = "auto"
)

// EdgeOptions holds the tunable parameters of edge detection.
type EdgeOptions struct {
	// Strategy selects the detection approach.
	Strategy EdgeStrategy

	// MinVotes is the minimum Hough accumulator vote count for a line
	// candidate.
	MinVotes int

	// MinLineLength is the minimum segment length in pixels.
	MinLineLength float64

	// MaxLineGap is the largest gap bridged between collinear fragments.
	MaxLineGap float64

	// NodeMaskPadding widens each node's bounding box in the exclusion
	// mask so node outlines are not traced as lines.
	NodeMaskPadding int

	// FallbackMaxDistance is the center-to-center distance below which
	// the proximity strategy connects two nodes.
	FallbackMaxDistance float64
}

// DefaultEdgeOptions returns the edge detection defaults.
func DefaultEdgeOptions() EdgeOptions {
	return EdgeOptions{
		Strategy:            StrategyAuto,
		MinVotes:            10,
		MinLineLength:       30,
		MaxLineGap:          10,
		NodeMaskPadding:     5,
		FallbackMaxDistance: 200,
	}
}

// EdgeDetector extracts line-like connective structures between detected
// nodes.
type EdgeDetector struct {
	opts EdgeOptions
}

// NewEdgeDetector creates an edge detector. Zero-valued option fields fall
// back to the defaults.
func NewEdgeDetector(opts EdgeOptions) *EdgeDetector {
	def := DefaultEdgeOptions()
	if opts.Strategy == "" {
		opts.Strategy = def.Strategy
	}
	if opts.MinVotes <= 0 {
		opts.MinVotes = def.MinVotes
	}
	if opts.MinLineLength <= 0 {
		opts.MinLineLength = def.MinLineLength
	}
	if opts.MaxLineGap <= 0 {
		opts.MaxLineGap = def.MaxLineGap
	}
	if opts.NodeMaskPadding <= 0 {
		opts.NodeMaskPadding = def.NodeMaskPadding
	}
	if opts.FallbackMaxDistance <= 0 {
		opts.FallbackMaxDistance = def.FallbackMaxDistance
	}
	return &EdgeDetector{opts: opts}
}

// Detect finds edges between the given nodes according to the configured
// strategy. With fewer than two nodes it returns an empty list without
// running any geometry.
func (d *EdgeDetector) Detect(img image.Image, nodes []graph.Node) []graph.Edge {
	if len(nodes) < 2 {
		return []graph.Edge{}
	}

	switch d.opts.Strategy {
	case StrategyProximity:
		return d.detectProximity(nodes)
	case StrategyTrace:
		return d.detectTraced(img, nodes)
	default:
		edges := d.detectTraced(img, nodes)
		if len(edges) == 0 {
			return d.detectProximity(nodes)
		}
		return edges
	}
}

// detectTraced binarizes the image, masks out node interiors, skeletonizes
// the remaining strokes and extracts line segments. Each segment becomes an
// edge between the nodes nearest its endpoints; segments whose endpoints
// resolve to the same node are rejected, and duplicate node pairs collapse
// to the first segment found.
func (d *EdgeDetector) detectTraced(img image.Image, nodes []graph.Node) []graph.Edge {
	mask := BinarizeOtsu(img)
	subtractNodeRegions(mask, nodes, d.opts.NodeMaskPadding)
	skeleton := Skeletonize(mask)

	segments := houghSegments(skeleton, d.opts.MinVotes, d.opts.MinLineLength, d.opts.MaxLineGap)

	edges := make([]graph.Edge, 0, len(segments))
	seen := make(map[[2]int]bool)
	for _, seg := range segments {
		source := nearestNode(nodes, seg.start)
		target := nearestNode(nodes, seg.end)
		if source == target {
			continue
		}

		pair := [2]int{source, target}
		if source > target {
			pair = [2]int{target, source}
		}
		if seen[pair] {
			continue
		}
		seen[pair] = true

		edges = append(edges, graph.Edge{
			ID:     len(edges),
			Source: source,
			Target: target,
			Weight: seg.start.DistanceTo(seg.end),
			Points: []graph.Point{seg.start, seg.end},
		})
	}
	return edges
}

// detectProximity connects every pair of nodes whose center distance falls
// below the configured threshold; the distance becomes the edge weight.
func (d *EdgeDetector) detectProximity(nodes []graph.Node) []graph.Edge {
	edges := make([]graph.Edge, 0)
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			distance := nodes[i].Position.DistanceTo(nodes[j].Position)
			if distance < d.opts.FallbackMaxDistance {
				edges = append(edges, graph.Edge{
					ID:     len(edges),
					Source: nodes[i].ID,
					Target: nodes[j].ID,
					Weight: distance,
				})
			}
		}
	}
	return edges
}

// subtractNodeRegions clears the padded bounding box of every likely node
// from the mask, so node interiors are not treated as line pixels.
func subtractNodeRegions(mask [][]bool, nodes []graph.Node, padding int) {
	height := len(mask)
	if height == 0 {
		return
	}
	width := len(mask[0])

	for _, node := range nodes {
		if !node.IsLikelyNode {
			continue
		}
		box := node.BoundingBox
		x0 := max(0, box.X-padding)
		y0 := max(0, box.Y-padding)
		x1 := min(width, box.X+box.W+padding)
		y1 := min(height, box.Y+box.H+padding)
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				mask[y][x] = false
			}
		}
	}
}

// nearestNode returns the ID of the node whose center is closest to p.
// All nodes participate, including those not classified as likely nodes.
func nearestNode(nodes []graph.Node, p graph.Point) int {
	best := nodes[0].ID
	bestDist := math.MaxFloat64
	for _, node := range nodes {
		dist := node.Position.DistanceTo(p)
		if dist < bestDist {
			bestDist = dist
			best = node.ID
		}
	}
	return best
}

// segment is a traced line segment between two skeleton endpoints.
type segment struct {
	start graph.Point
	end   graph.Point
}

// houghSegments extracts line segments from a skeleton mask.
//
// A standard Hough accumulator (1 px angular x 1 degree resolution) votes
// for lines through skeleton pixels; local-maximum peaks above minVotes are
// then traced back onto the skeleton: pixels within 2 px of the peak line
// are projected onto the line direction, sorted, and split into runs
// wherever the gap between consecutive pixels exceeds maxGap. Runs spanning
// at least minLength become segments.
func houghSegments(skeleton [][]bool, minVotes int, minLength, maxGap float64) []segment {
	height := len(skeleton)
	if height == 0 {
		return nil
	}
	width := len(skeleton[0])

	maxDist := int(math.Sqrt(float64(width*width + height*height)))
	numAngles := 180
	accumulator := make([][]int, maxDist*2)
	for i := range accumulator {
		accumulator[i] = make([]int, numAngles)
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !skeleton[y][x] {
				continue
			}
			for theta := 0; theta < numAngles; theta++ {
				angle := float64(theta) * math.Pi / 180.0
				rho := float64(x)*math.Cos(angle) + float64(y)*math.Sin(angle)
				rhoIdx := int(rho) + maxDist
				if rhoIdx >= 0 && rhoIdx < maxDist*2 {
					accumulator[rhoIdx][theta]++
				}
			}
		}
	}

	type peak struct {
		rho   int
		theta int
		votes int
	}
	var peaks []peak
	for rhoIdx := 0; rhoIdx < maxDist*2; rhoIdx++ {
		for theta := 0; theta < numAngles; theta++ {
			votes := accumulator[rhoIdx][theta]
			if votes < minVotes {
				continue
			}
			isMax := true
			for dr := -2; dr <= 2 && isMax; dr++ {
				for dt := -2; dt <= 2 && isMax; dt++ {
					if dr == 0 && dt == 0 {
						continue
					}
					nr := rhoIdx + dr
					nt := (theta + dt + numAngles) % numAngles
					if nr >= 0 && nr < maxDist*2 && accumulator[nr][nt] > votes {
						isMax = false
					}
				}
			}
			if isMax {
				peaks = append(peaks, peak{rho: rhoIdx - maxDist, theta: theta, votes: votes})
			}
		}
	}

	sort.Slice(peaks, func(i, j int) bool { return peaks[i].votes > peaks[j].votes })

	var segments []segment
	claimed := make([][]bool, height)
	for y := range claimed {
		claimed[y] = make([]bool, width)
	}

	for _, pk := range peaks {
		if len(segments) >= 50 {
			break
		}

		angle := float64(pk.theta) * math.Pi / 180.0
		cosA := math.Cos(angle)
		sinA := math.Sin(angle)
		rho := float64(pk.rho)

		// Collect unclaimed skeleton pixels near this line, keyed by
		// their projection along the line direction.
		type linePoint struct {
			t float64
			p graph.Point
		}
		var points []linePoint
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				if !skeleton[y][x] || claimed[y][x] {
					continue
				}
				dist := math.Abs(float64(x)*cosA + float64(y)*sinA - rho)
				if dist < 2.0 {
					t := -float64(x)*sinA + float64(y)*cosA
					points = append(points, linePoint{t: t, p: graph.Point{X: x, Y: y}})
				}
			}
		}
		if len(points) == 0 {
			continue
		}

		sort.Slice(points, func(i, j int) bool { return points[i].t < points[j].t })

		// Split into runs at gaps, keep runs long enough.
		runStart := 0
		for i := 1; i <= len(points); i++ {
			if i < len(points) && points[i].t-points[i-1].t <= maxGap {
				continue
			}
			first := points[runStart].p
			last := points[i-1].p
			if first.DistanceTo(last) >= minLength {
				segments = append(segments, segment{start: first, end: last})
				for j := runStart; j < i; j++ {
					claimed[points[j].p.Y][points[j].p.X] = true
				}
			}
			runStart = i
		}
	}
	return segments
}
