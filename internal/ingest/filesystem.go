package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/pkg/model"
)

// FileSystem is a Source backed by one slicer-output directory per
// part, holding one JSON file per layer. Layout:
//
//	<root>/<partID>/layer_00001.json
//
// A missing <root>/<partID> directory is treated as a missing STL
// input (fatal); a missing per-layer file within an existing part
// directory is treated as missing slicer output for that layer
// (non-fatal, part omitted from the layer).
type FileSystem struct {
	Root string
}

// NewFileSystem returns a FileSystem source rooted at dir.
func NewFileSystem(dir string) *FileSystem {
	return &FileSystem{Root: dir}
}

type polygonFile struct {
	Polygons []polygonRecord `json:"polygons"`
}

type polygonRecord struct {
	Type     string      `json:"type"` // "Outer" or "Inner"
	Vertices [][2]float64 `json:"vertices"`
}

func (f *FileSystem) partDir(spec PartSpec) string {
	return filepath.Join(f.Root, spec.ID)
}

func (f *FileSystem) layerPath(spec PartSpec, layerIndex int) string {
	return filepath.Join(f.partDir(spec), fmt.Sprintf("layer_%05d.json", layerIndex))
}

// ReadPart implements Source.
func (f *FileSystem) ReadPart(ctx context.Context, spec PartSpec, layerIndex int) ([]Polygon, bool, error) {
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	default:
	}

	if _, err := os.Stat(f.partDir(spec)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, fmt.Errorf("%w: %s", ErrMissingSTL, f.partDir(spec))
		}
		return nil, false, err
	}

	path := f.layerPath(spec, layerIndex)
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var doc polygonFile
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false, fmt.Errorf("ingest: decode %s: %w", path, err)
	}

	polys := make([]Polygon, 0, len(doc.Polygons))
	for _, rec := range doc.Polygons {
		lt := model.Outer
		if rec.Type == "Inner" {
			lt = model.Inner
		}
		verts := make([]model.Vertex, len(rec.Vertices))
		for i, xy := range rec.Vertices {
			verts[i] = model.Vertex{X: xy[0], Y: xy[1]}
		}
		polys = append(polys, Polygon{Type: lt, Vertices: verts})
	}
	return polys, true, nil
}
