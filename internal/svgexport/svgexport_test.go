package svgexport

import (
	"strings"
	"testing"

	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/pkg/model"
)

func TestMarshalDrawsMarksOnlyAndFlipsY(t *testing.T) {
	trajs := []model.Trajectory{
		{Paths: []model.Path{{Segments: []model.Segment{
			{Start: model.Vertex{X: 0, Y: 0}, End: model.Vertex{X: 10, Y: 0}, IsMark: true},
			{Start: model.Vertex{X: 10, Y: 0}, End: model.Vertex{X: 10, Y: 10}, IsMark: false},
		}}}},
	}
	out, err := Marshal(trajs, ViewTransform{Mag: 1})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(out)
	if strings.Count(s, "<line") != 1 {
		t.Fatalf("expected exactly one line element for the single mark segment, got:\n%s", s)
	}
	if !strings.Contains(s, `y1="2000"`) {
		t.Fatalf("expected y flipped against the canvas dimension, got:\n%s", s)
	}
}

func TestViewTransformFromBBoxFitsSquare(t *testing.T) {
	vt := ViewTransformFromBBox(model.BBox{MinX: 0, MaxX: 100, MinY: 0, MaxY: 50})
	if vt.Mag != Dimension/100 {
		t.Fatalf("Mag = %v, want %v", vt.Mag, Dimension/100.0)
	}
}

func TestViewTransformFromBBoxDegenerate(t *testing.T) {
	vt := ViewTransformFromBBox(model.BBox{MinX: 5, MaxX: 5, MinY: 5, MaxY: 5})
	if vt.Mag != 1 {
		t.Fatalf("expected unit magnification for a degenerate bbox, got %v", vt.Mag)
	}
}

func TestShouldExport(t *testing.T) {
	cases := []struct {
		enabled  bool
		interval int
		layer    int
		want     bool
	}{
		{false, 5, 0, false},
		{true, 5, 0, true},
		{true, 5, 5, true},
		{true, 5, 6, false},
		{true, 0, 3, false},
	}
	for _, c := range cases {
		if got := ShouldExport(c.enabled, c.interval, c.layer); got != c.want {
			t.Fatalf("ShouldExport(%v,%d,%d) = %v, want %v", c.enabled, c.interval, c.layer, got, c.want)
		}
	}
}
