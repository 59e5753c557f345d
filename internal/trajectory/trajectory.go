// Package trajectory groups region work and single-stripe overlays
// into trajectories ordered by trajectory number, per spec §4.7.
// Ported from `original_source/genScan/ScanPath.h`'s `trajectory`
// struct (trajRegions/trajRegionTypes/trajRegionIsHatched) and
// `ScanPath.cpp`'s singleStripeCount()/singleStripes().
package trajectory

import (
	"sort"

	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/pkg/model"
)

// StripeTrajectories returns the distinct, ascending, non-positive
// trajectory numbers among unmarked stripes due on layerIndex, per
// spec §4.7 step 2.
func StripeTrajectories(stripes []*model.SingleStripe, layerIndex int) []int {
	seen := map[int]bool{}
	var nums []int
	for _, s := range stripes {
		if s.Marked || s.LayerIndex != layerIndex {
			continue
		}
		if !seen[s.TrajectoryNum] {
			seen[s.TrajectoryNum] = true
			nums = append(nums, s.TrajectoryNum)
		}
	}
	sort.Ints(nums)
	return nums
}

// AllMarked reports whether every stripe has already been marked — an
// optimization hint for the batch driver to stop checking future
// layers for single-stripe work, per singleStripeCount's
// allStripesMarked flag.
func AllMarked(stripes []*model.SingleStripe) bool {
	for _, s := range stripes {
		if !s.Marked {
			return false
		}
	}
	return true
}

// BuildSingleStripePath marks every unmarked stripe on (layerIndex,
// trajectoryNum) and emits its path: a mark segment per stripe, joined
// by jumps in stripe-list order, per spec §4.7 step 2 / §9's
// global-mutable-state note (marked flags are flipped here, in place,
// never through a process-wide singleton).
func BuildSingleStripePath(stripes []*model.SingleStripe, layerIndex, trajectoryNum int, jumpStyle, tag string, skywriting int) model.Path {
	path := model.Path{Tag: tag, Type: model.PathSingleStripes, Skywriting: skywriting}
	var segs []model.Segment
	marked := 0
	var priorEnd model.Vertex
	for _, s := range stripes {
		if s.Marked || s.LayerIndex != layerIndex || s.TrajectoryNum != trajectoryNum {
			continue
		}
		s.Marked = true
		if marked > 0 {
			segs = append(segs, model.Segment{Start: priorEnd, End: s.Start, Style: jumpStyle, IsMark: false})
		}
		segs = append(segs, model.Segment{Start: s.Start, End: s.End, Style: s.Style, IsMark: true})
		priorEnd = s.End
		marked++
	}
	path.Segments = segs
	return path
}

func trajectoryMode(num int, modeTable map[int]model.ProcessingMode) model.ProcessingMode {
	if m, ok := modeTable[num]; ok {
		return m
	}
	return model.Sequential
}

// PlanStripes runs step 2 alone: the single-stripe trajectories due on
// layerIndex. It marks the matching stripes in place via
// BuildSingleStripePath, so — per spec §9's note that the marked flags
// are the only state spanning layers — calls for different layerIndex
// values over the same stripes slice must happen one layer at a time,
// in increasing layer order; they are not safe to run concurrently with
// each other.
func PlanStripes(stripes []*model.SingleStripe, layerIndex int, stripeJumpStyle, stripeTag string, stripeSkywriting int, modeTable map[int]model.ProcessingMode) []model.Trajectory {
	nums := StripeTrajectories(stripes, layerIndex)
	out := make([]model.Trajectory, 0, len(nums))
	for _, num := range nums {
		t := model.Trajectory{Number: num, Mode: trajectoryMode(num, modeTable)}
		t.Paths = append(t.Paths, BuildSingleStripePath(stripes, layerIndex, num, stripeJumpStyle, stripeTag, stripeSkywriting))
		out = append(out, t)
	}
	return out
}

// PlanRegions runs step 3 alone: the (region, op, tag) work items of
// layer, grouped by trajectory number. It touches only layer, which is
// independent per layer index, so concurrent calls for different layers
// are safe.
func PlanRegions(layer model.Layer, modeTable map[int]model.ProcessingMode) []model.Trajectory {
	table := map[int]*model.Trajectory{}
	get := func(num int) *model.Trajectory {
		t, ok := table[num]
		if !ok {
			t = &model.Trajectory{Number: num, Mode: trajectoryMode(num, modeTable)}
			table[num] = t
		}
		return t
	}

	for i, r := range layer.Slice.Regions {
		ct := get(r.ContourTraj)
		ct.Work = append(ct.Work, model.WorkItem{RegionIndex: i, Op: model.OpContour, Tag: r.Tag})
		ht := get(r.HatchTraj)
		ht.Work = append(ht.Work, model.WorkItem{RegionIndex: i, Op: model.OpHatch, Tag: r.Tag})
	}

	nums := make([]int, 0, len(table))
	for n := range table {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	out := make([]model.Trajectory, 0, len(nums))
	for _, n := range nums {
		out = append(out, *table[n])
	}
	return out
}

// Merge combines a layer's stripe and region trajectories into the
// single ascending-trajectory-number table step 5 emits, coalescing
// entries that share a trajectory number (a stripe and a region can
// both land on the same trajectory).
func Merge(stripeTrajs, regionTrajs []model.Trajectory) []model.Trajectory {
	table := map[int]*model.Trajectory{}
	var order []int
	add := func(t model.Trajectory) {
		if existing, ok := table[t.Number]; ok {
			existing.Paths = append(existing.Paths, t.Paths...)
			existing.Work = append(existing.Work, t.Work...)
			return
		}
		cp := t
		table[t.Number] = &cp
		order = append(order, t.Number)
	}
	for _, t := range stripeTrajs {
		add(t)
	}
	for _, t := range regionTrajs {
		add(t)
	}
	sort.Ints(order)

	out := make([]model.Trajectory, 0, len(order))
	for _, n := range order {
		out = append(out, *table[n])
	}
	return out
}

// Plan builds the trajectory table for one layer: single-stripe
// trajectories first (step 2), then (region, op, tag) work items
// walked in layer order (step 3), with the processing-mode table
// applied (step 4), emitted in ascending trajectory-number order
// (step 5). Plan itself carries PlanStripes' same layer-ordering
// requirement; callers that process layers concurrently should call
// PlanStripes sequentially ahead of time and combine PlanRegions'
// result with Merge instead of calling Plan per layer.
func Plan(layer model.Layer, layerIndex int, stripes []*model.SingleStripe, stripeJumpStyle, stripeTag string, stripeSkywriting int, modeTable map[int]model.ProcessingMode) []model.Trajectory {
	stripeTrajs := PlanStripes(stripes, layerIndex, stripeJumpStyle, stripeTag, stripeSkywriting, modeTable)
	regionTrajs := PlanRegions(layer, modeTable)
	return Merge(stripeTrajs, regionTrajs)
}
