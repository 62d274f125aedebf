// Package graph defines the data model shared by all pipeline stages:
// nodes, edges, text regions, quality metrics and the assembled
// DetectionResult, together with the error taxonomy.
//
// # Well-Formed Positions
//
// Every positional value in the model is a Point, a struct of two integer
// coordinates. Stages that cannot compute a valid position for a candidate
// (for example a contour with a zero zeroth moment) drop the candidate
// instead of emitting a sentinel or a malformed value, so downstream
// consumers never need to repair shapes defensively.
//
// # Identifier Scope
//
// Node, edge and text-region IDs are assigned by enumeration order and are
// stable only within a single detection run. Edge Source/Target always
// reference node IDs from the same run's node list.
package graph
