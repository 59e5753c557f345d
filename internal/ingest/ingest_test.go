package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/pkg/model"
)

type fakeSource struct {
	polys map[string][]Polygon
	miss  map[string]bool // part id -> missing STL
}

func (f *fakeSource) ReadPart(ctx context.Context, spec PartSpec, layerIndex int) ([]Polygon, bool, error) {
	if f.miss[spec.ID] {
		return nil, false, ErrMissingSTL
	}
	p, ok := f.polys[spec.ID]
	if !ok {
		return nil, false, nil
	}
	return p, true, nil
}

func square(x0, y0, x1, y1 float64) []model.Vertex {
	return []model.Vertex{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

func TestBuildLayerSingleSquare(t *testing.T) {
	src := &fakeSource{polys: map[string][]Polygon{
		"p1": {{Type: model.Outer, Vertices: square(0, 0, 10, 10)}},
	}}
	spec := PartSpec{ID: "p1", Tag: "region_A", ContourTraj: 1, HatchTraj: 2, Magnification: 1}
	layer, err := BuildLayer(context.Background(), []PartSpec{spec}, src, 1, 0.03)
	if err != nil {
		t.Fatalf("BuildLayer: %v", err)
	}
	if len(layer.Vertices) != 4 {
		t.Fatalf("expected 4 vertices, got %d", len(layer.Vertices))
	}
	if len(layer.Slice.Regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(layer.Slice.Regions))
	}
	r := layer.Slice.Regions[0]
	if len(r.Edges) != 4 {
		t.Fatalf("expected 4 edges (closed loop), got %d", len(r.Edges))
	}
	if r.Edges[3].End != r.Edges[0].Start {
		t.Fatalf("loop not closed: last edge end %d != first edge start %d", r.Edges[3].End, r.Edges[0].Start)
	}
	for _, e := range r.Edges {
		if e.Start < 0 || e.Start >= len(layer.Vertices) || e.End < 0 || e.End >= len(layer.Vertices) {
			t.Fatalf("dangling edge index: %+v", e)
		}
	}
}

func TestBuildLayerScaleAndTranslate(t *testing.T) {
	src := &fakeSource{polys: map[string][]Polygon{
		"p1": {{Type: model.Outer, Vertices: square(0, 0, 1, 1)}},
	}}
	spec := PartSpec{ID: "p1", Tag: "a", Magnification: 2, OffsetX: 5, OffsetY: 10}
	layer, err := BuildLayer(context.Background(), []PartSpec{spec}, src, 1, 0.03)
	if err != nil {
		t.Fatalf("BuildLayer: %v", err)
	}
	want := model.Vertex{X: 5, Y: 10}
	if layer.Vertices[0] != want {
		t.Fatalf("scaled origin vertex = %+v, want %+v", layer.Vertices[0], want)
	}
}

func TestBuildLayerSharedVertexReuse(t *testing.T) {
	sq := square(0, 0, 10, 10)
	src := &fakeSource{polys: map[string][]Polygon{
		"p1": {
			{Type: model.Outer, Vertices: sq},
			{Type: model.Outer, Vertices: sq},
		},
	}}
	spec := PartSpec{ID: "p1", Tag: "a", Magnification: 1}
	layer, err := BuildLayer(context.Background(), []PartSpec{spec}, src, 1, 0.03)
	if err != nil {
		t.Fatalf("BuildLayer: %v", err)
	}
	if len(layer.Vertices) != 4 {
		t.Fatalf("expected exact-match vertex reuse to leave 4 vertices, got %d", len(layer.Vertices))
	}
	if len(layer.Slice.Regions) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(layer.Slice.Regions))
	}
}

func TestBuildLayerMissingSlicerOutputOmitsPart(t *testing.T) {
	src := &fakeSource{polys: map[string][]Polygon{
		"p1": {{Type: model.Outer, Vertices: square(0, 0, 10, 10)}},
	}}
	specs := []PartSpec{
		{ID: "p1", Tag: "a", Magnification: 1},
		{ID: "p2", Tag: "a", Magnification: 1}, // no entry in src.polys -> ok=false
	}
	layer, err := BuildLayer(context.Background(), specs, src, 1, 0.03)
	if err != nil {
		t.Fatalf("BuildLayer: %v", err)
	}
	if len(layer.Slice.Regions) != 1 {
		t.Fatalf("expected missing-output part to be omitted, got %d regions", len(layer.Slice.Regions))
	}
}

func TestBuildLayerMissingSTLAborts(t *testing.T) {
	src := &fakeSource{miss: map[string]bool{"p1": true}}
	specs := []PartSpec{{ID: "p1", Tag: "a", Magnification: 1}}
	_, err := BuildLayer(context.Background(), specs, src, 1, 0.03)
	if !errors.Is(err, ErrMissingSTL) {
		t.Fatalf("expected ErrMissingSTL, got %v", err)
	}
}
