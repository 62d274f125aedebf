// Package textmap associates recognized text spans with the graph elements
// they most plausibly label.
//
// Association is nearest-centroid under a proximity bound: a text region
// attaches to a node (or edge midpoint) only when it is the closest region
// and strictly closer than the configured threshold. All functions are
// pure; inputs are never mutated and fresh slices are returned.
package textmap

import (
	"math"

	"github.com/ironsheep/graphsnap/internal/graph"
)

// DefaultProximityThreshold is the maximum pixel distance at which a text
// region is considered attached to a node or edge midpoint.
const DefaultProximityThreshold = 50.0

// Mapper attaches text regions to nodes and edges by proximity.
type Mapper struct {
	proximityThreshold float64
}

// NewMapper creates a mapper with the given proximity threshold in pixels.
// Non-positive values fall back to the default.
func NewMapper(proximityThreshold float64) *Mapper {
	if proximityThreshold <= 0 {
		proximityThreshold = DefaultProximityThreshold
	}
	return &Mapper{proximityThreshold: proximityThreshold}
}

// MapToNodes returns a copy of nodes with text labels attached.
//
// For each node the closest text region is selected and accepted only when
// its centroid distance is strictly below the proximity threshold. Nodes
// with no qualifying region keep an empty label.
func (m *Mapper) MapToNodes(nodes []graph.Node, regions []graph.TextRegion) []graph.Node {
	labeled := make([]graph.Node, len(nodes))
	for i, node := range nodes {
		labeled[i] = node
		if region, distance, ok := m.closest(node.Position, regions); ok {
			labeled[i].Label = region.Text
			labeled[i].LabelConfidence = region.Confidence
			labeled[i].LabelID = region.ID
			labeled[i].LabelDistance = distance
		}
	}
	return labeled
}

// MapToEdges returns a copy of edges with text labels attached.
//
// Each edge's midpoint is the integer-truncated average of its endpoint
// nodes' positions; the nearest-region-within-threshold rule then applies
// against that midpoint. Edges whose source or target is missing from the
// node list are passed through unchanged.
func (m *Mapper) MapToEdges(edges []graph.Edge, regions []graph.TextRegion, nodes []graph.Node) []graph.Edge {
	byID := make(map[int]graph.Node, len(nodes))
	for _, node := range nodes {
		byID[node.ID] = node
	}

	labeled := make([]graph.Edge, len(edges))
	for i, edge := range edges {
		labeled[i] = edge

		source, okS := byID[edge.Source]
		target, okT := byID[edge.Target]
		if !okS || !okT {
			continue
		}

		midpoint := graph.Point{
			X: (source.Position.X + target.Position.X) / 2,
			Y: (source.Position.Y + target.Position.Y) / 2,
		}
		labeled[i].Midpoint = &midpoint

		if region, distance, ok := m.closest(midpoint, regions); ok {
			labeled[i].Label = region.Text
			labeled[i].LabelConfidence = region.Confidence
			labeled[i].LabelID = region.ID
			labeled[i].LabelDistance = distance
		}
	}
	return labeled
}

// closest returns the text region nearest to p, provided its distance is
// strictly below the proximity threshold.
func (m *Mapper) closest(p graph.Point, regions []graph.TextRegion) (graph.TextRegion, float64, bool) {
	var best graph.TextRegion
	bestDistance := math.Inf(1)
	found := false
	for _, region := range regions {
		distance := p.DistanceTo(region.Centroid)
		if distance < bestDistance && distance < m.proximityThreshold {
			bestDistance = distance
			best = region
			found = true
		}
	}
	return best, bestDistance, found
}
