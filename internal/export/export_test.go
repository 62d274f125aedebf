package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ironsheep/graphsnap/internal/graph"
)

func sampleResult() *graph.DetectionResult {
	return &graph.DetectionResult{
		Nodes: []graph.Node{
			{ID: 0, Position: graph.Point{X: 100, Y: 100}, Label: "start"},
			{ID: 1, Position: graph.Point{X: 300, Y: 100}},
		},
		Edges: []graph.Edge{
			{ID: 0, Source: 0, Target: 1, Weight: 200, Label: "next"},
		},
		ImagePath:  "diagram.png",
		ImageShape: graph.ImageShape{Height: 600, Width: 800, Channels: 3},
	}
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleResult(), FormatJSON); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var decoded graph.DetectionResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if len(decoded.Nodes) != 2 || len(decoded.Edges) != 1 {
		t.Errorf("Round trip lost elements: %d nodes, %d edges", len(decoded.Nodes), len(decoded.Edges))
	}
	if decoded.Nodes[0].Label != "start" {
		t.Errorf("Expected node label preserved, got %q", decoded.Nodes[0].Label)
	}
}

func TestWrite_DOT(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleResult(), FormatDOT); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "graph ") {
		t.Errorf("Expected undirected graph header, got %q", out)
	}
	for _, want := range []string{
		`n0 [label="start"`,
		`n1 [label="1"`,
		`n0 -- n1`,
		`label="next"`,
		`pos="100,100"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "->") {
		t.Error("DOT output must be undirected")
	}
}

func TestWrite_UnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, sampleResult(), "yaml")
	if !errors.Is(err, graph.ErrUnsupportedFormat) {
		t.Fatalf("Expected ErrUnsupportedFormat, got %v", err)
	}
	if buf.Len() != 0 {
		t.Error("Nothing should be written for an unsupported format")
	}
}
