// Package layerpipeline implements the per-layer control flow: walk
// each trajectory's work items, coalesce batches that share an
// (operation, tag) pair, and dispatch each batch to the offsetter plus
// the contourer or hatcher. Grounded on
// `original_source/genScan/ScanPath.cpp`'s main per-trajectory loop.
package layerpipeline

import (
	"math"

	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/internal/contour"
	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/internal/hatch"
	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/internal/offset"
	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/pkg/model"
)

// RegionLoop reconstructs a region's ordered vertex loop from a
// layer's shared vertex list, undoing the edge-index indirection
// ingestion introduced.
func RegionLoop(layer model.Layer, r model.Region) []model.Vertex {
	if len(r.Edges) == 0 {
		return nil
	}
	out := make([]model.Vertex, len(r.Edges))
	for i, e := range r.Edges {
		out[i] = layer.Vertices[e.Start]
	}
	return out
}

func gatherLoops(layer model.Layer, items []model.WorkItem) [][]model.Vertex {
	loops := make([][]model.Vertex, 0, len(items))
	for _, it := range items {
		loops = append(loops, RegionLoop(layer, layer.Slice.Regions[it.RegionIndex]))
	}
	return loops
}

func gatherVertices(layer model.Layer, items []model.WorkItem) []model.Vertex {
	var vs []model.Vertex
	for _, it := range items {
		vs = append(vs, RegionLoop(layer, layer.Slice.Regions[it.RegionIndex])...)
	}
	return vs
}

// EffectiveHatchAngle computes the layer-i hatch angle per spec §4.8
// step 3: ((layer1Angle + (layerIndex-1)*rotation) mod 360 + 360) mod 360.
func EffectiveHatchAngle(layer1Angle, rotation float64, layerIndex int) float64 {
	a := layer1Angle + float64(layerIndex-1)*rotation
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// Run executes spec §4.8 over an already-planned trajectory table
// (see internal/trajectory.Plan), filling in each trajectory's Paths
// from its Work items. Single-stripe trajectories arrive with Paths
// already populated by the planner and no Work items, so they pass
// through unchanged.
func Run(layer model.Layer, layerIndex int, trajs []model.Trajectory, profiles map[string]model.RegionProfile) []model.Trajectory {
	out := make([]model.Trajectory, len(trajs))
	for ti, traj := range trajs {
		work := traj.Work
		for i := range work {
			if work[i].Done {
				continue
			}
			op, tag := work[i].Op, work[i].Tag
			work[i].Done = true
			group := []model.WorkItem{work[i]}
			for j := i + 1; j < len(work); j++ {
				if work[j].Done || work[j].Op != op || work[j].Tag != tag {
					continue
				}
				work[j].Done = true
				group = append(group, work[j])
			}

			profile, ok := profiles[tag]
			if !ok {
				// Spec §3 invariant 5: a missing region profile is
				// fatal at layer-ingestion time, validated upstream
				// (config.Validate / Tables assembly). Reaching here
				// with an unknown tag means that check was bypassed;
				// skip rather than panic, since this pipeline stage
				// has no error return.
				continue
			}

			switch op {
			case model.OpContour:
				traj.Paths = append(traj.Paths, buildContourPaths(layer, group, profile)...)
			case model.OpHatch:
				if p, ok := buildHatchPath(layer, layerIndex, group, profile); ok {
					traj.Paths = append(traj.Paths, p)
				}
			}
		}
		traj.Work = work
		out[ti] = traj
	}
	return out
}

// buildContourPaths implements spec §4.8 step 2: one contourer call
// per contour index 0..n-1 at offset k*resCntr+offCntr, each non-empty
// result kept as a distinct path.
func buildContourPaths(layer model.Layer, group []model.WorkItem, profile model.RegionProfile) []model.Path {
	if !profile.HasContours() {
		return nil
	}
	loops := gatherLoops(layer, group)
	params := contour.Params{
		MarkStyle:  profile.ContourStyle,
		JumpStyle:  profile.JumpStyle,
		Tag:        profile.Tag,
		Skywriting: profile.ContourSkywriting,
	}

	var paths []model.Path
	for k := 0; k < profile.NumContours; k++ {
		d := float64(k)*profile.ContourSpacing + profile.ContourOffset
		offsetPolys := offset.Polygons(loops, d)
		path := contour.Generate(offsetPolys, layer.BBox, params)
		if len(path.Segments) > 0 {
			paths = append(paths, path)
		}
	}
	return paths
}

// buildHatchPath implements spec §4.8 step 3: hatch-angle rotation,
// combined offset computation, and optimizer-vs-basic-hatcher
// dispatch. Returns ok=false when the profile requests no hatching or
// the group carries no vertices (the "skip" branch of the
// whole-layer-vs-region-subset open question, resolved in
// SPEC_FULL.md to use only this group's vertices).
func buildHatchPath(layer model.Layer, layerIndex int, group []model.WorkItem, profile model.RegionProfile) (model.Path, bool) {
	if !profile.HasHatch() {
		return model.Path{}, false
	}
	vertices := gatherVertices(layer, group)
	if len(vertices) == 0 {
		return model.Path{}, false
	}

	angle := EffectiveHatchAngle(profile.Layer1HatchAngle, profile.HatchLayerRotation, layerIndex)
	aMin, aMax := hatch.Bounds(vertices, angle)

	hOffset := profile.HatchOffset
	if profile.HasContours() {
		n := profile.NumContours - 1
		if n < 0 {
			n = 0
		}
		hOffset = profile.HatchOffset + profile.ContourOffset + float64(n)*profile.ContourSpacing
	}

	loops := gatherLoops(layer, group)
	offsetPolys := offset.Polygons(loops, hOffset)

	params := hatch.Params{
		AngleDeg:   angle,
		Spacing:    profile.HatchSpacing,
		HatchStyle: profile.HatchStyle,
		JumpStyle:  profile.JumpStyle,
		Tag:        profile.Tag,
		Skywriting: profile.HatchSkywriting,
	}

	var path model.Path
	if profile.HatchOptimize {
		path = hatch.Optimize(offsetPolys, layer.BBox, aMin, aMax, params)
	} else {
		path = hatch.Generate(offsetPolys, layer.BBox, aMin, aMax, params)
	}
	if len(path.Segments) == 0 {
		return model.Path{}, false
	}
	return path, true
}
