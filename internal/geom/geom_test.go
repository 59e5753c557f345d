package geom

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/pkg/model"
)

func TestVertexEqual(t *testing.T) {
	a := model.Vertex{X: 1, Y: 1}
	b := model.Vertex{X: 1 + EpsVertex/2, Y: 1}
	if !VertexEqual(a, b) {
		t.Fatalf("expected vertices within EpsVertex to be equal: %v vs %v", a, b)
	}
	c := model.Vertex{X: 1 + EpsVertex*10, Y: 1}
	if VertexEqual(a, c) {
		t.Fatalf("expected vertices beyond EpsVertex to differ: %v vs %v", a, c)
	}
}

func TestDistance(t *testing.T) {
	got := Distance(model.Vertex{X: 0, Y: 0}, model.Vertex{X: 3, Y: 4})
	if got != 5 {
		t.Fatalf("Distance(0,0,3,4) = %v, want 5", got)
	}
}

func TestBoundingBox(t *testing.T) {
	vs := []model.Vertex{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	got := BoundingBox(vs)
	want := model.BBox{MinX: 0, MaxX: 10, MinY: 0, MaxY: 10}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Fatalf("BoundingBox mismatch (-want +got):\n%s", diff)
	}
}

func TestBoundingBoxEmpty(t *testing.T) {
	got := BoundingBox(nil)
	want := model.BBox{MinX: -EmptyBBoxMargin, MaxX: EmptyBBoxMargin, MinY: -EmptyBBoxMargin, MaxY: EmptyBBoxMargin}
	if got != want {
		t.Fatalf("empty bounding box = %+v, want %+v", got, want)
	}
}

func TestIntercepts(t *testing.T) {
	ys := []float64{10, 20, 30}
	xs := []float64{1, 2, 3}
	got := Intercepts(ys, xs, 2)
	want := []float64{8, 16, 24}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Fatalf("Intercepts mismatch (-want +got):\n%s", diff)
	}
}

func TestDedupVertices(t *testing.T) {
	vs := []model.Vertex{
		{X: 0, Y: 0},
		{X: 0 + EpsVertex/2, Y: 0},
		{X: 5, Y: 5},
		{X: 0, Y: 0},
	}
	out, idx := DedupVertices(vs)
	if len(out) != 2 {
		t.Fatalf("expected 2 distinct vertices, got %d: %v", len(out), out)
	}
	if idx[0] != idx[1] || idx[0] != idx[3] {
		t.Fatalf("expected indices 0,1,3 to share a representative, got %v", idx)
	}
	if idx[2] == idx[0] {
		t.Fatalf("expected vertex 2 to be distinct, got shared index %d", idx[2])
	}
}
