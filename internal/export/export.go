// Package export serializes detection results to interchange formats.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ironsheep/graphsnap/internal/graph"
)

// Supported output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// Write serializes result to w in the named format. Unsupported formats
// return graph.ErrUnsupportedFormat.
func Write(w io.Writer, result *graph.DetectionResult, format string) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatDOT:
		return writeDOT(w, result)
	default:
		return fmt.Errorf("%w: %s", graph.ErrUnsupportedFormat, format)
	}
}

func writeJSON(w io.Writer, result *graph.DetectionResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// writeDOT emits an undirected Graphviz graph. Node positions are carried
// as pos attributes so layouts can reproduce the source geometry.
func writeDOT(w io.Writer, result *graph.DetectionResult) error {
	var b strings.Builder
	b.WriteString("graph extracted {\n")
	b.WriteString("  node [shape=circle];\n")
	for _, n := range result.Nodes {
		fmt.Fprintf(&b, "  n%d [label=%q, pos=\"%d,%d\"];\n",
			n.ID, nodeLabel(n), n.Position.X, n.Position.Y)
	}
	for _, e := range result.Edges {
		fmt.Fprintf(&b, "  n%d -- n%d [weight=%g", e.Source, e.Target, e.Weight)
		if e.Label != "" {
			fmt.Fprintf(&b, ", label=%q", e.Label)
		}
		b.WriteString("];\n")
	}
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func nodeLabel(n graph.Node) string {
	if n.Label != "" {
		return n.Label
	}
	return fmt.Sprintf("%d", n.ID)
}
