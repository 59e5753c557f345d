// Package geom implements the planar geometry primitives shared by every
// stage of the scan-path kernel: tolerant vertex equality, distance,
// bounding boxes, and a tolerance-based vertex-list deduplication
// primitive (ingestion merges vertices by exact match and does not call
// it).
package geom

import (
	"math"
	"sort"

	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/pkg/model"
)

// Named tolerances, per spec §9. Reducing any of these silently changes
// output; never inline a bare literal where one of these applies.
const (
	// EpsQuantize is the offsetter's integer quantization unit, mm.
	EpsQuantize = 2e-5
	// EpsVertex is the vertex-equality tolerance, mm.
	EpsVertex = 2e-4
	// EpsIntersect inflates segment bounds before accepting an
	// intersection, mm.
	EpsIntersect = 2e-5
	// EpsDeterminant is the minimum edge-length-normalized cross product
	// magnitude accepted as a genuine (non-parallel) intersection.
	EpsDeterminant = 1e-3
)

// EmptyBBoxMargin is the half-width of the fallback bounding box used
// when a layer carries no vertices at all.
const EmptyBBoxMargin = 10.0

// VertexEqual reports whether a and b coincide within EpsVertex.
func VertexEqual(a, b model.Vertex) bool {
	return math.Abs(a.X-b.X) < EpsVertex && math.Abs(a.Y-b.Y) < EpsVertex
}

// Distance is the Euclidean distance between two vertices.
func Distance(a, b model.Vertex) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// BoundingBox computes the bounding box over a vertex list. An empty list
// yields the ±EmptyBBoxMargin fallback box centered at the origin.
func BoundingBox(vs []model.Vertex) model.BBox {
	if len(vs) == 0 {
		return model.BBox{MinX: -EmptyBBoxMargin, MaxX: EmptyBBoxMargin, MinY: -EmptyBBoxMargin, MaxY: EmptyBBoxMargin}
	}
	xs := make([]float64, len(vs))
	ys := make([]float64, len(vs))
	for i, v := range vs {
		xs[i] = v.X
		ys[i] = v.Y
	}
	minX, maxX := batchMinMax(xs)
	minY, maxY := batchMinMax(ys)
	return model.BBox{MinX: minX, MaxX: maxX, MinY: minY, MaxY: maxY}
}

// Inflate grows a bounding box by d in every direction (d may be
// negative to shrink it, down to a degenerate box).
func Inflate(bb model.BBox, d float64) model.BBox {
	return model.BBox{MinX: bb.MinX - d, MaxX: bb.MaxX + d, MinY: bb.MinY - d, MaxY: bb.MaxY + d}
}

// Contains reports whether v lies within bb (inclusive).
func Contains(bb model.BBox, v model.Vertex) bool {
	return v.X >= bb.MinX && v.X <= bb.MaxX && v.Y >= bb.MinY && v.Y <= bb.MaxY
}

// DedupVertices sorts a copy of vs lexicographically (y primary, x
// secondary, per spec §4.1) and coalesces adjacent entries within
// EpsVertex, returning the representative vertex for each cluster and,
// for every input index, the index of its representative in the output
// slice.
func DedupVertices(vs []model.Vertex) (out []model.Vertex, indexMap []int) {
	type tagged struct {
		v   model.Vertex
		idx int
	}
	tmp := make([]tagged, len(vs))
	for i, v := range vs {
		tmp[i] = tagged{v: v, idx: i}
	}
	sort.SliceStable(tmp, func(i, j int) bool {
		if tmp[i].v.Y != tmp[j].v.Y {
			return tmp[i].v.Y < tmp[j].v.Y
		}
		return tmp[i].v.X < tmp[j].v.X
	})
	indexMap = make([]int, len(vs))
	out = make([]model.Vertex, 0, len(vs))
	for _, t := range tmp {
		if len(out) > 0 && VertexEqual(out[len(out)-1], t.v) {
			indexMap[t.idx] = len(out) - 1
			continue
		}
		out = append(out, t.v)
		indexMap[t.idx] = len(out) - 1
	}
	return out, indexMap
}
