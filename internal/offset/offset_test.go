package offset

import (
	"math"
	"sort"
	"testing"

	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/pkg/model"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// sortedVertices gives a polygon's corners in an order independent of
// which vertex Clipper starts its output loop at.
func sortedVertices(vs []model.Vertex) []model.Vertex {
	out := append([]model.Vertex{}, vs...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Y < out[j].Y
	})
	return out
}

func square(x0, y0, x1, y1 float64) []model.Vertex {
	return []model.Vertex{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

func TestSignedAreaCCWPositive(t *testing.T) {
	a := SignedArea(square(0, 0, 10, 10))
	if math.Abs(a-100) > 1e-6 {
		t.Fatalf("SignedArea = %v, want 100", a)
	}
}

func TestPolygonsZeroOffsetPassthrough(t *testing.T) {
	sq := square(0, 0, 10, 10)
	out := Polygons([][]model.Vertex{sq}, 0)
	if len(out) != 1 {
		t.Fatalf("expected 1 polygon for d=0, got %d", len(out))
	}
	gotArea := math.Abs(SignedArea(out[0]))
	if math.Abs(gotArea-100) > 1e-3 {
		t.Fatalf("d=0 area = %v, want ~100", gotArea)
	}
}

func TestPolygonsInwardShrinksArea(t *testing.T) {
	sq := square(0, 0, 10, 10)
	out := Polygons([][]model.Vertex{sq}, 1)
	if len(out) != 1 {
		t.Fatalf("expected 1 polygon, got %d", len(out))
	}
	gotArea := math.Abs(SignedArea(out[0]))
	// inward offset of 1mm on a 10x10 square leaves an 8x8 square, area 64.
	if math.Abs(gotArea-64) > 0.5 {
		t.Fatalf("inward-offset area = %v, want ~64", gotArea)
	}

	want := []model.Vertex{{X: 1, Y: 1}, {X: 1, Y: 9}, {X: 9, Y: 1}, {X: 9, Y: 9}}
	if diff := cmp.Diff(want, sortedVertices(out[0]), cmpopts.EquateApprox(0, 1e-3)); diff != "" {
		t.Fatalf("inward-offset corners mismatch (-want +got):\n%s", diff)
	}
}

func TestPolygonsVanishesBeyondInradius(t *testing.T) {
	// Equilateral triangle of side 2mm has inradius ~0.577mm.
	tri := []model.Vertex{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 1, Y: math.Sqrt(3)}}
	out := Polygons([][]model.Vertex{tri}, 1.2)
	if len(out) != 0 {
		t.Fatalf("expected offset to eliminate the triangle, got %d polygons", len(out))
	}
}

func TestMonotonicArea(t *testing.T) {
	sq := square(0, 0, 10, 10)
	a1 := TotalAbsArea(Polygons([][]model.Vertex{sq}, 1))
	a2 := TotalAbsArea(Polygons([][]model.Vertex{sq}, 2))
	if a2 > a1+1e-6 {
		t.Fatalf("area not monotonically non-increasing: d=1 area %v, d=2 area %v", a1, a2)
	}
}
