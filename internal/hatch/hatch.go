// Package hatch generates parallel-line fills across an offset polygon
// set, per spec §4.4. The sweep axis classification, intercept
// projection, alternating sort direction, and odd-count retry/discard
// rules are ported from the baseline's hatch() / findIntersection() /
// findHatchBoundary(), the literal source spec.md §4.4 was written
// from.
package hatch

import (
	"math"
	"sort"

	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/internal/geom"
	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/pkg/model"
)

// alongY reports whether hatch lines are indexed along the y axis for
// the given angle, per spec §4.4's axis classification.
func alongY(angleDeg float64) bool {
	return int(math.Floor(angleDeg)+315)%180 > 90
}

// Bounds computes (a_min, a_max) — the per-vertex hatch-line intercept
// range — over vs for the given angle, per spec §4.4 ("findHatchBoundary").
func Bounds(vs []model.Vertex, angleDeg float64) (aMin, aMax float64) {
	if len(vs) == 0 {
		return 0, 0
	}
	rad := angleDeg * math.Pi / 180
	ys := make([]float64, len(vs))
	xs := make([]float64, len(vs))
	var slope float64
	if alongY(angleDeg) {
		slope = math.Tan(rad)
		for i, v := range vs {
			ys[i], xs[i] = v.Y, v.X
		}
	} else {
		slope = math.Cos(rad) / math.Sin(rad)
		for i, v := range vs {
			ys[i], xs[i] = v.X, v.Y
		}
	}
	// a_i = ys[i] - xs[i]*slope, computed in batches via go-highway's
	// FMA primitive — see internal/geom's Intercepts.
	a := geom.Intercepts(ys, xs, slope)
	aMin, aMax = a[0], a[0]
	for _, x := range a[1:] {
		if x < aMin {
			aMin = x
		}
		if x > aMax {
			aMax = x
		}
	}
	return aMin, aMax
}

// effectiveSpacing returns the hatch-to-hatch spacing along the sweep
// axis, and the function value (tan or cot) used by the intersection
// test, per spec §4.4.
func effectiveSpacing(angleDeg, spacing float64) (hSpace, fnValue float64, indexAlongY bool) {
	rad := angleDeg * math.Pi / 180
	indexAlongY = alongY(angleDeg)
	if indexAlongY {
		return spacing / math.Cos(rad), math.Tan(rad), true
	}
	return spacing / math.Sin(rad), math.Cos(rad) / math.Sin(rad), false
}

// hatchLineEndpoints returns the two endpoints of the long segment
// spanning bb at the given intercept, per findIntersection's hatch-line
// construction.
func hatchLineEndpoints(angleDeg, intercept, fnValue float64, indexAlongY bool, bb model.BBox) (start, end model.Vertex) {
	angle := math.Mod(angleDeg, 360)
	if angle < 0 {
		angle += 360
	}
	if indexAlongY {
		if angle > 90 && angle < 225 {
			start = model.Vertex{X: bb.MaxX}
			end = model.Vertex{X: bb.MinX}
		} else {
			start = model.Vertex{X: bb.MinX}
			end = model.Vertex{X: bb.MaxX}
		}
		start.Y = intercept + start.X*fnValue
		end.Y = intercept + end.X*fnValue
		return start, end
	}
	if angle > 180 {
		start = model.Vertex{Y: bb.MinY}
		end = model.Vertex{Y: bb.MaxY}
	} else {
		start = model.Vertex{Y: bb.MaxY}
		end = model.Vertex{Y: bb.MinY}
	}
	start.X = intercept + start.Y*fnValue
	end.X = intercept + end.Y*fnValue
	return start, end
}

// edgeIntersect tests a hatch line segment (hs, hf) against edge (es,
// ef) via the normalized-determinant method, per spec §4.4 step 2.
func edgeIntersect(hs, hf, es, ef model.Vertex) (model.Vertex, bool) {
	a := hf.Y - hs.Y
	b := hs.X - hf.X
	c := a*hs.X + b*hs.Y
	a1 := ef.Y - es.Y
	b1 := es.X - ef.X
	c1 := a1*es.X + b1*es.Y
	det := a*b1 - a1*b

	length := geom.Distance(es, ef)
	if length == 0 {
		return model.Vertex{}, false
	}
	if math.Abs(det)/length < geom.EpsDeterminant {
		return model.Vertex{}, false
	}

	x := (b1*c - b*c1) / det
	y := (a*c1 - a1*c) / det

	if !withinInflated(x, y, hs, hf) {
		return model.Vertex{}, false
	}
	if !withinInflated(x, y, es, ef) {
		return model.Vertex{}, false
	}
	return model.Vertex{X: x, Y: y}, true
}

func withinInflated(x, y float64, a, b model.Vertex) bool {
	minX, maxX := math.Min(a.X, b.X)-geom.EpsIntersect, math.Max(a.X, b.X)+geom.EpsIntersect
	minY, maxY := math.Min(a.Y, b.Y)-geom.EpsIntersect, math.Max(a.Y, b.Y)+geom.EpsIntersect
	return x >= minX && x <= maxX && y >= minY && y <= maxY
}

// edge is a floating-point segment within the offset polygon set being
// hatched.
type edge struct {
	Start, End model.Vertex
}

func polygonEdges(polys [][]model.Vertex) []edge {
	var edges []edge
	for _, poly := range polys {
		n := len(poly)
		if n < 2 {
			continue
		}
		for i := 0; i < n; i++ {
			edges = append(edges, edge{Start: poly[i], End: poly[(i+1)%n]})
		}
	}
	return edges
}

// sortIntersections implements yAsc/xAsc (ascending) and yDsc/xDsc
// (descending): sort
// primarily along the perpendicular-to-sweep axis, ties broken on the
// other axis.
func sortIntersections(vs []model.Vertex, indexAlongY, ascending bool) {
	sort.Slice(vs, func(i, j int) bool {
		if indexAlongY {
			// perpendicular axis is x
			if vs[i].X != vs[j].X {
				if ascending {
					return vs[i].X < vs[j].X
				}
				return vs[i].X > vs[j].X
			}
			if ascending {
				return vs[i].Y < vs[j].Y
			}
			return vs[i].Y > vs[j].Y
		}
		// perpendicular axis is y
		if vs[i].Y != vs[j].Y {
			if ascending {
				return vs[i].Y < vs[j].Y
			}
			return vs[i].Y > vs[j].Y
		}
		if ascending {
			return vs[i].X < vs[j].X
		}
		return vs[i].X > vs[j].X
	})
}

// dedupAdjacent coalesces adjacent vertices within EpsVertex on both
// axes (list must already be sorted).
func dedupAdjacent(vs []model.Vertex) []model.Vertex {
	if len(vs) == 0 {
		return vs
	}
	out := make([]model.Vertex, 0, len(vs))
	out = append(out, vs[0])
	for _, v := range vs[1:] {
		if geom.VertexEqual(out[len(out)-1], v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// sweepLines steps a_curr from a_min to a_max (or the reverse,
// depending on hSpace's sign) and returns, for each hatch line that
// produced at least one intersection, the sorted / deduplicated /
// odd-handled intersection list. Shared by Generate and Optimize so
// both follow the identical sweep, sort-alternation, and odd-count
// rule.
func sweepLines(edges []edge, bb model.BBox, aMin, aMax, angleDeg, spacing float64) [][]model.Vertex {
	hSpace, fnValue, indexAlongY := effectiveSpacing(angleDeg, spacing)
	if hSpace == 0 || math.IsNaN(hSpace) || math.IsInf(hSpace, 0) {
		return nil
	}

	var aStart, aEnd float64
	if hSpace > 0 {
		aStart, aEnd = aMin, aMax
	} else {
		aStart, aEnd = aMax, aMin
	}

	var lines [][]model.Vertex
	dirHatch := 0
	aCurr := aStart + hSpace
	for {
		if hSpace > 0 && aCurr >= aEnd {
			break
		}
		if hSpace < 0 && aCurr <= aEnd {
			break
		}

		hs, hf := hatchLineEndpoints(angleDeg, aCurr, fnValue, indexAlongY, bb)
		var line []model.Vertex
		for _, e := range edges {
			if v, ok := edgeIntersect(hs, hf, e.Start, e.End); ok {
				line = append(line, v)
			}
		}

		if len(line) > 0 {
			ascending := dirHatch == 0
			dirHatch = 1 - dirHatch

			sorted := append([]model.Vertex(nil), line...)
			sortIntersections(sorted, indexAlongY, ascending)
			deduped := dedupAdjacent(sorted)

			switch {
			case len(deduped)%2 == 0:
				lines = append(lines, deduped)
			case len(sorted)%2 == 0:
				lines = append(lines, sorted)
			default:
				// both odd: discard this hatch line entirely.
			}
		}

		aCurr += hSpace
	}
	return lines
}

// Params configures one hatch call.
type Params struct {
	AngleDeg   float64
	Spacing    float64
	HatchStyle string
	JumpStyle  string
	Tag        string
	Skywriting int
}

// Generate produces the alternating mark/jump segment sequence filling
// polys at the given angle and spacing, per spec §4.4. aMin/aMax are
// the precomputed hatch-intercept bounds (see Bounds). The result is
// empty when polys is empty or every hatch line was discarded.
func Generate(polys [][]model.Vertex, bb model.BBox, aMin, aMax float64, p Params) model.Path {
	path := model.Path{Tag: p.Tag, Type: model.PathHatch, Skywriting: p.Skywriting}
	if len(polys) == 0 {
		return path
	}
	edges := polygonEdges(polys)
	if len(edges) == 0 {
		return path
	}

	lines := sweepLines(edges, bb, aMin, aMax, p.AngleDeg, p.Spacing)
	var isList []model.Vertex
	for _, line := range lines {
		isList = append(isList, line...)
	}
	if len(isList) == 0 {
		return path
	}

	segs := make([]model.Segment, 0, len(isList)-1)
	mark := true
	for i := 0; i < len(isList)-1; i++ {
		style := p.JumpStyle
		if mark {
			style = p.HatchStyle
		}
		segs = append(segs, model.Segment{Start: isList[i], End: isList[i+1], Style: style, IsMark: mark})
		mark = !mark
	}
	path.Segments = segs
	return path
}
