package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/graphsnap/internal/graph"
)

func TestCollectImages_MixedArgs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.JPG", "notes.txt", "c.jpeg"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}
	direct := filepath.Join(dir, "notes.txt")

	paths, err := collectImages([]string{dir, direct})
	if err != nil {
		t.Fatalf("collectImages failed: %v", err)
	}

	// The directory contributes its 3 image files (case-insensitive
	// extension match); explicit file arguments pass through as-is.
	if len(paths) != 4 {
		t.Fatalf("Expected 4 paths, got %d: %v", len(paths), paths)
	}
	for _, p := range paths[:3] {
		ext := strings.ToLower(filepath.Ext(p))
		if !imageExtensions[ext] {
			t.Errorf("Unexpected non-image from directory scan: %s", p)
		}
	}
	if paths[3] != direct {
		t.Errorf("Explicit file argument should pass through, got %s", paths[3])
	}
}

func TestCollectImages_MissingPath(t *testing.T) {
	if _, err := collectImages([]string{filepath.Join(t.TempDir(), "gone")}); err == nil {
		t.Fatal("Expected error for missing path")
	}
}

func TestWriteResult_FileNaming(t *testing.T) {
	out := t.TempDir()
	result := &graph.DetectionResult{
		Nodes: []graph.Node{{ID: 0}},
	}

	if err := writeResult(out, "json", "/images/flow chart.png", result); err != nil {
		t.Fatalf("writeResult failed: %v", err)
	}

	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 output file, got %d", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasSuffix(name, "_flow chart.json") {
		t.Errorf("Expected '<id>_flow chart.json' naming, got %s", name)
	}
}
