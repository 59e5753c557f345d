// Package ingest converts per-part sliced polygons into a single layer's
// shared vertex list and edge-indexed region set, per spec §4.2.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/internal/geom"
	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/pkg/model"
)

// ErrMissingSTL is returned by a Source when a part's STL file (or its
// slicer working directory) cannot be found at all. It is fatal: the
// caller must abort the batch rather than emit a partial layer.
var ErrMissingSTL = errors.New("ingest: missing STL input for part")

// Polygon is one closed loop as produced by the slicer, before
// promotion into a layer's shared vertex list.
type Polygon struct {
	Type     model.LoopType
	Vertices []model.Vertex
}

// PartSpec is one part's placement and trajectory tagging, as loaded
// from the region/parts configuration table.
type PartSpec struct {
	ID            string
	Tag           string
	ContourTraj   int
	HatchTraj     int
	Magnification float64
	OffsetX       float64
	OffsetY       float64
}

// Source produces the sliced polygons for one part at one layer index.
//
// ok=false with a nil error means the slicer produced no output for
// this part at this layer (the part simply does not extend to this
// layer, or its output is missing); the layer is emitted without that
// part's contribution, per spec §4.2. A non-nil error wrapping
// ErrMissingSTL is fatal and aborts the batch.
type Source interface {
	ReadPart(ctx context.Context, spec PartSpec, layerIndex int) (polys []Polygon, ok bool, err error)
}

// scale applies a part's magnification and (x, y) offset to a vertex.
func scale(v model.Vertex, spec PartSpec) model.Vertex {
	mag := spec.Magnification
	if mag == 0 {
		mag = 1
	}
	return model.Vertex{X: v.X*mag + spec.OffsetX, Y: v.Y*mag + spec.OffsetY}
}

// BuildLayer reads every part's polygons at layerIndex, scales and
// merges them into one layer, and builds the shared vertex list and
// edge-indexed regions. Parts with no slicer output at this layer are
// silently omitted; a missing-STL error aborts the whole layer.
func BuildLayer(ctx context.Context, parts []PartSpec, src Source, layerIndex int, thickness float64) (model.Layer, error) {
	vertices := make([]model.Vertex, 0, 64)
	index := make(map[model.Vertex]int, 64)

	lookup := func(v model.Vertex) int {
		if idx, ok := index[v]; ok {
			return idx
		}
		idx := len(vertices)
		vertices = append(vertices, v)
		index[v] = idx
		return idx
	}

	var regions []model.Region
	for _, spec := range parts {
		polys, ok, err := src.ReadPart(ctx, spec, layerIndex)
		if err != nil {
			return model.Layer{}, fmt.Errorf("ingest: part %q: %w", spec.ID, err)
		}
		if !ok {
			continue
		}
		for _, poly := range polys {
			if len(poly.Vertices) == 0 {
				continue
			}
			first := -1
			prev := -1
			var edges []model.Edge
			for _, rawV := range poly.Vertices {
				idx := lookup(scale(rawV, spec))
				if first < 0 {
					first = idx
				} else {
					edges = append(edges, model.Edge{Start: prev, End: idx, Curvature: model.Linear})
				}
				prev = idx
			}
			if first >= 0 && prev >= 0 {
				edges = append(edges, model.Edge{Start: prev, End: first, Curvature: model.Linear})
			}
			regions = append(regions, model.Region{
				Type:        poly.Type,
				Tag:         spec.Tag,
				ContourTraj: spec.ContourTraj,
				HatchTraj:   spec.HatchTraj,
				Edges:       edges,
			})
		}
	}

	layer := model.Layer{
		Index:     layerIndex,
		Thickness: thickness,
		Vertices:  vertices,
		Slice:     model.Slice{Regions: regions},
	}
	layer.BBox = geom.BoundingBox(vertices)
	return layer, nil
}
