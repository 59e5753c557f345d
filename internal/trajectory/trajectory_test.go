package trajectory

import (
	"testing"

	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/pkg/model"
)

func TestStripeTrajectoriesSkipsMarkedAndOtherLayers(t *testing.T) {
	stripes := []*model.SingleStripe{
		{TrajectoryNum: -2, LayerIndex: 1, Marked: false},
		{TrajectoryNum: -1, LayerIndex: 1, Marked: false},
		{TrajectoryNum: -1, LayerIndex: 1, Marked: false}, // duplicate traj num
		{TrajectoryNum: -3, LayerIndex: 2, Marked: false}, // other layer
		{TrajectoryNum: -4, LayerIndex: 1, Marked: true},  // already marked
	}
	got := StripeTrajectories(stripes, 1)
	want := []int{-2, -1}
	if len(got) != len(want) {
		t.Fatalf("StripeTrajectories = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("StripeTrajectories = %v, want %v", got, want)
		}
	}
}

func TestBuildSingleStripePathMarksAndJumps(t *testing.T) {
	s1 := &model.SingleStripe{TrajectoryNum: -1, LayerIndex: 1, Style: "s1", Start: model.Vertex{X: 0, Y: 0}, End: model.Vertex{X: 1, Y: 0}}
	s2 := &model.SingleStripe{TrajectoryNum: -1, LayerIndex: 1, Style: "s2", Start: model.Vertex{X: 5, Y: 0}, End: model.Vertex{X: 6, Y: 0}}
	stripes := []*model.SingleStripe{s1, s2}

	path := BuildSingleStripePath(stripes, 1, -1, "jump", "cal", 0)
	if len(path.Segments) != 3 {
		t.Fatalf("expected 2 marks + 1 jump = 3 segments, got %d", len(path.Segments))
	}
	if !s1.Marked || !s2.Marked {
		t.Fatalf("expected both stripes marked after emission")
	}
	if path.Segments[1].IsMark {
		t.Fatalf("expected middle segment to be the jump between stripes")
	}
}

func TestPlanOrdersSingleStripesBeforePositiveTrajectories(t *testing.T) {
	layer := model.Layer{
		Slice: model.Slice{Regions: []model.Region{
			{Tag: "a", ContourTraj: 1, HatchTraj: 2},
		}},
	}
	stripes := []*model.SingleStripe{
		{TrajectoryNum: -1, LayerIndex: 1, Style: "s", Start: model.Vertex{X: 0, Y: 0}, End: model.Vertex{X: 1, Y: 1}},
	}
	trajs := Plan(layer, 1, stripes, "jump", "cal", 0, nil)
	if len(trajs) != 3 {
		t.Fatalf("expected 3 trajectories (-1, 1, 2), got %d", len(trajs))
	}
	if trajs[0].Number != -1 || trajs[1].Number != 1 || trajs[2].Number != 2 {
		t.Fatalf("expected ascending trajectory numbers -1,1,2, got %v", []int{trajs[0].Number, trajs[1].Number, trajs[2].Number})
	}
	if len(trajs[1].Work) != 1 || trajs[1].Work[0].Op != model.OpContour {
		t.Fatalf("expected trajectory 1 to carry the contour work item, got %+v", trajs[1].Work)
	}
	if len(trajs[2].Work) != 1 || trajs[2].Work[0].Op != model.OpHatch {
		t.Fatalf("expected trajectory 2 to carry the hatch work item, got %+v", trajs[2].Work)
	}
}

func TestPlanStripesAndPlanRegionsMatchPlan(t *testing.T) {
	layer := model.Layer{
		Slice: model.Slice{Regions: []model.Region{
			{Tag: "a", ContourTraj: 1, HatchTraj: 2},
		}},
	}
	stripesA := []*model.SingleStripe{
		{TrajectoryNum: -1, LayerIndex: 1, Style: "s", Start: model.Vertex{X: 0, Y: 0}, End: model.Vertex{X: 1, Y: 1}},
	}
	want := Plan(layer, 1, stripesA, "jump", "cal", 0, nil)

	stripesB := []*model.SingleStripe{
		{TrajectoryNum: -1, LayerIndex: 1, Style: "s", Start: model.Vertex{X: 0, Y: 0}, End: model.Vertex{X: 1, Y: 1}},
	}
	stripeTrajs := PlanStripes(stripesB, 1, "jump", "cal", 0, nil)
	regionTrajs := PlanRegions(layer, nil)
	got := Merge(stripeTrajs, regionTrajs)

	if len(got) != len(want) {
		t.Fatalf("Merge(PlanStripes, PlanRegions) = %d trajectories, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Number != want[i].Number {
			t.Fatalf("trajectory %d: got number %d, want %d", i, got[i].Number, want[i].Number)
		}
	}
	if !stripesB[0].Marked {
		t.Fatalf("expected PlanStripes to mark the stripe in place")
	}
}

func TestMergeCoalescesSharedTrajectoryNumber(t *testing.T) {
	stripeTrajs := []model.Trajectory{
		{Number: 1, Paths: []model.Path{{Tag: "stripe"}}},
	}
	regionTrajs := []model.Trajectory{
		{Number: 1, Work: []model.WorkItem{{Op: model.OpContour}}},
		{Number: 2, Work: []model.WorkItem{{Op: model.OpHatch}}},
	}
	got := Merge(stripeTrajs, regionTrajs)
	if len(got) != 2 {
		t.Fatalf("expected 2 merged trajectories, got %d", len(got))
	}
	if got[0].Number != 1 || len(got[0].Paths) != 1 || len(got[0].Work) != 1 {
		t.Fatalf("expected trajectory 1 to carry both the stripe path and the region work, got %+v", got[0])
	}
	if got[1].Number != 2 {
		t.Fatalf("expected trajectory 2 to follow, got %+v", got[1])
	}
}
