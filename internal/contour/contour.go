// Package contour produces mark segments tracing offset polygon
// boundaries, linked by jumps between polygons, per spec §4.6. Ported
// from `original_source/genScan/ScanPath.cpp`'s contour(), the literal
// source spec.md §4.6 was written from.
package contour

import (
	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/internal/geom"
	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/pkg/model"
)

// Params configures one contour call.
type Params struct {
	MarkStyle  string
	JumpStyle  string
	Tag        string
	Skywriting int
}

// Generate emits, for each offset polygon in polys (in iteration
// order), a mark segment per edge, with a single jump segment between
// consecutive polygons. Any mark segment falling outside bb inflated
// by ε_i is downgraded to a jump (the BB failsafe; should not occur
// with correct inputs). Returns an empty path when polys is empty.
func Generate(polys [][]model.Vertex, bb model.BBox, p Params) model.Path {
	path := model.Path{Tag: p.Tag, Type: model.PathContour, Skywriting: p.Skywriting}
	if len(polys) == 0 {
		return path
	}

	inflated := geom.Inflate(bb, geom.EpsIntersect)

	var segs []model.Segment
	populated := 0
	var prevEnd model.Vertex
	for _, poly := range polys {
		if len(poly) < 2 {
			continue
		}
		populated++
		if populated > 1 {
			segs = append(segs, model.Segment{Start: prevEnd, End: poly[0], Style: p.JumpStyle, IsMark: false})
		}
		n := len(poly)
		for i := 0; i < n; i++ {
			start := poly[i]
			end := poly[(i+1)%n]
			style := p.MarkStyle
			isMark := true
			if !(geom.Contains(inflated, start) && geom.Contains(inflated, end)) {
				style = p.JumpStyle
				isMark = false
			}
			segs = append(segs, model.Segment{Start: start, End: end, Style: style, IsMark: isMark})
			prevEnd = end
		}
	}

	if len(segs) == 0 {
		return path
	}
	path.Segments = segs
	return path
}
