// Package offset implements mitred polygon offsetting at integer
// precision, delegating to go.clipper exactly as the original baseline
// delegates to Clipper (see ScanPath.h's clipper.hpp include), per
// spec §4.3.
package offset

import (
	clipper "github.com/ctessum/go.clipper"

	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/internal/geom"
	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/pkg/model"
)

// quantum converts a millimetre coordinate to Clipper's integer space.
func quantum(v float64) clipper.CInt {
	if v >= 0 {
		return clipper.CInt(v/geom.EpsQuantize + 0.5)
	}
	return clipper.CInt(v/geom.EpsQuantize - 0.5)
}

func dequantum(v clipper.CInt) float64 {
	return float64(v) * geom.EpsQuantize
}

func toClipperPath(vs []model.Vertex) clipper.Path {
	path := make(clipper.Path, len(vs))
	for i, v := range vs {
		path[i] = &clipper.IntPoint{X: quantum(v.X), Y: quantum(v.Y)}
	}
	return path
}

func fromClipperPath(p clipper.Path) []model.Vertex {
	out := make([]model.Vertex, len(p))
	for i, ip := range p {
		out[i] = model.Vertex{X: dequantum(ip.X), Y: dequantum(ip.Y)}
	}
	return out
}

// Polygons offsets every polygon in loops by d millimetres, positive d
// meaning inward (shrinking outer loops, enlarging holes), per spec
// §4.3. go.clipper works in the quantized integer space and its own
// sign convention is the opposite (positive delta expands), so d is
// scaled by 1/EpsQuantize and negated before being handed to Execute.
//
// Returns zero, one, or many polygons; an input polygon vanishes
// silently when d exceeds its inradius, per spec §4.3 and §8 property 5.
func Polygons(loops [][]model.Vertex, d float64) [][]model.Vertex {
	if len(loops) == 0 {
		return nil
	}

	co := clipper.NewClipperOffset()
	co.MiterLimit = 2.0
	for _, loop := range loops {
		if len(loop) < 3 {
			continue
		}
		co.AddPath(toClipperPath(loop), clipper.JtMiter, clipper.EtClosedPolygon)
	}

	solution := co.Execute(-d / geom.EpsQuantize)
	out := make([][]model.Vertex, 0, len(solution))
	for _, p := range solution {
		if len(p) == 0 {
			continue
		}
		out = append(out, fromClipperPath(p))
	}
	return out
}

// SignedArea is the shoelace-formula signed area of a closed polygon;
// positive for counter-clockwise winding. Used to verify the
// non-increasing-area contract for d > 0 (spec §8 property 5).
func SignedArea(vs []model.Vertex) float64 {
	if len(vs) < 3 {
		return 0
	}
	var sum float64
	n := len(vs)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += vs[i].X*vs[j].Y - vs[j].X*vs[i].Y
	}
	return sum / 2
}

// TotalAbsArea sums the absolute area over a polygon set, used as the
// "total enclosed area" figure in the offset monotonicity contract.
func TotalAbsArea(loops [][]model.Vertex) float64 {
	var total float64
	for _, loop := range loops {
		a := SignedArea(loop)
		if a < 0 {
			a = -a
		}
		total += a
	}
	return total
}
