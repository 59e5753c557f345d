package contour

import (
	"testing"

	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/pkg/model"
)

func square(x0, y0, x1, y1 float64) []model.Vertex {
	return []model.Vertex{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

func TestGenerateSingleSquareFourMarks(t *testing.T) {
	sq := square(0, 0, 10, 10)
	bb := model.BBox{MinX: -1, MaxX: 11, MinY: -1, MaxY: 11}
	path := Generate([][]model.Vertex{sq}, bb, Params{MarkStyle: "contour", JumpStyle: "jump", Tag: "region_A"})

	marks := 0
	for _, s := range path.Segments {
		if s.IsMark {
			marks++
		}
	}
	if marks != 4 {
		t.Fatalf("expected 4 mark segments tracing the square, got %d (segments=%+v)", marks, path.Segments)
	}
	if path.Segments[0].Start != (model.Vertex{X: 0, Y: 0}) {
		t.Fatalf("expected first segment to start at (0,0), got %+v", path.Segments[0].Start)
	}
}

func TestGenerateEmptyPolys(t *testing.T) {
	path := Generate(nil, model.BBox{MinX: -10, MaxX: 10, MinY: -10, MaxY: 10}, Params{})
	if len(path.Segments) != 0 {
		t.Fatalf("expected empty path, got %d segments", len(path.Segments))
	}
}

func TestGenerateTwoPolygonsInsertsJump(t *testing.T) {
	a := square(0, 0, 2, 2)
	b := square(10, 10, 12, 12)
	bb := model.BBox{MinX: -1, MaxX: 13, MinY: -1, MaxY: 13}
	path := Generate([][]model.Vertex{a, b}, bb, Params{MarkStyle: "c", JumpStyle: "j"})

	jumps := 0
	for _, s := range path.Segments {
		if !s.IsMark {
			jumps++
		}
	}
	if jumps != 1 {
		t.Fatalf("expected exactly 1 jump between the two polygons, got %d", jumps)
	}
}

func TestGenerateOutOfBoundsDowngradesToJump(t *testing.T) {
	sq := square(0, 0, 10, 10)
	// bounding box excludes the square entirely -> every mark should downgrade.
	bb := model.BBox{MinX: 100, MaxX: 110, MinY: 100, MaxY: 110}
	path := Generate([][]model.Vertex{sq}, bb, Params{MarkStyle: "c", JumpStyle: "j"})

	for _, s := range path.Segments {
		if s.IsMark {
			t.Fatalf("expected all segments to downgrade to jump outside BB, found mark %+v", s)
		}
	}
}
