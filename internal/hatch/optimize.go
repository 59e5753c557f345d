package hatch

import (
	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/internal/geom"
	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/pkg/model"
)

// hRegion is one open or closed hatch sub-region built incrementally
// across the sweep: the entry/exit point of the region as it currently
// stands, plus the marks and jumps accumulated so far, per spec §4.5.
type hRegion struct {
	Start, End model.Vertex
	Segments   []model.Segment
}

// Optimize partitions hatch intersections into sub-regions and
// connects them in a travel-minimizing order, per spec §4.5. It is
// selected instead of Generate when the region profile requests hatch
// optimization.
func Optimize(polys [][]model.Vertex, bb model.BBox, aMin, aMax float64, p Params) model.Path {
	path := model.Path{Tag: p.Tag, Type: model.PathHatch, Skywriting: p.Skywriting}
	if len(polys) == 0 {
		return path
	}
	edges := polygonEdges(polys)
	if len(edges) == 0 {
		return path
	}

	lines := sweepLines(edges, bb, aMin, aMax, p.AngleDeg, p.Spacing)

	var completed []hRegion
	var open []hRegion
	prevCount := -1

	for _, line := range lines {
		count := len(line)
		switch {
		case prevCount < 0:
			open = seedRegions(line, p.HatchStyle)
		case count == prevCount:
			extendRegions(open, line, p.HatchStyle, p.JumpStyle)
		default:
			completed = append(completed, open...)
			open = seedRegions(line, p.HatchStyle)
		}
		prevCount = count
	}
	completed = append(completed, open...)

	if len(completed) == 0 {
		return path
	}

	order := nearestNeighborOrder(completed)

	var segs []model.Segment
	for i, idx := range order {
		segs = append(segs, completed[idx].Segments...)
		if i+1 < len(order) {
			next := completed[order[i+1]]
			segs = append(segs, model.Segment{
				Start: completed[idx].End,
				End:   next.Start,
				Style: p.JumpStyle,
				IsMark: false,
			})
		}
	}

	path.Segments = closeGaps(segs, p.JumpStyle)
	return path
}

func seedRegions(line []model.Vertex, hatchStyle string) []hRegion {
	var regions []hRegion
	for i := 0; i+1 < len(line); i += 2 {
		regions = append(regions, hRegion{
			Start: line[i],
			End:   line[i+1],
			Segments: []model.Segment{
				{Start: line[i], End: line[i+1], Style: hatchStyle, IsMark: true},
			},
		})
	}
	return regions
}

// extendRegions extends every currently open region by a jump from its
// last exit to the new line's matching entry, then a mark to the new
// exit, per spec §4.5 step 2. Regions are matched to intersection
// pairs positionally, in sweep order.
func extendRegions(open []hRegion, line []model.Vertex, hatchStyle, jumpStyle string) {
	for i := range open {
		if i*2+1 >= len(line) {
			return
		}
		entry := line[i*2]
		exit := line[i*2+1]
		open[i].Segments = append(open[i].Segments, model.Segment{
			Start: open[i].End, End: entry, Style: jumpStyle, IsMark: false,
		})
		open[i].Segments = append(open[i].Segments, model.Segment{
			Start: entry, End: exit, Style: hatchStyle, IsMark: true,
		})
		open[i].End = exit
	}
}

// nearestNeighborOrder returns a visiting order over regions starting
// from index 0, always stepping to the unvisited region whose Start is
// closest to the current region's End, per spec §4.5 step 4.
func nearestNeighborOrder(regions []hRegion) []int {
	n := len(regions)
	visited := make([]bool, n)
	order := make([]int, 0, n)
	curr := 0
	for len(order) < n {
		order = append(order, curr)
		visited[curr] = true
		best := -1
		bestCost := 0.0
		for i := 0; i < n; i++ {
			if visited[i] {
				continue
			}
			cost := geom.Distance(regions[curr].End, regions[i].Start)
			if best < 0 || cost < bestCost {
				best = i
				bestCost = cost
			}
		}
		if best < 0 {
			break
		}
		curr = best
	}
	return order
}

// closeGaps walks the stitched segment list and inserts a jump
// whenever consecutive segments have a gap greater than ε_v; if the
// next segment's end coincides with the current segment's end
// instead, the next segment is reversed in place, per spec §4.5 step 5.
func closeGaps(segs []model.Segment, jumpStyle string) []model.Segment {
	if len(segs) == 0 {
		return segs
	}
	out := make([]model.Segment, 0, len(segs))
	for i := 0; i < len(segs); i++ {
		out = append(out, segs[i])
		if i+1 >= len(segs) {
			break
		}
		end := segs[i].End
		nextStart := segs[i+1].Start
		if geom.VertexEqual(end, nextStart) {
			continue
		}
		if geom.VertexEqual(end, segs[i+1].End) {
			segs[i+1].Start, segs[i+1].End = segs[i+1].End, segs[i+1].Start
			continue
		}
		out = append(out, model.Segment{Start: end, End: nextStart, Style: jumpStyle, IsMark: false})
	}
	return out
}
