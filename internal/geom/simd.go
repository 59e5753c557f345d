package geom

import (
	"github.com/ajroetker/go-highway/hwy"
)

// batchMinMax computes the minimum and maximum of data using go-highway's
// portable SIMD primitives, the same min/max-reduction shape used for
// bounding boxes in akhenakh-geo's s2 package. BoundingBox calls this once
// per axis instead of looping scalar-wise over potentially large
// per-layer vertex lists.
func batchMinMax(data []float64) (minVal, maxVal float64) {
	if len(data) == 0 {
		return 0, 0
	}
	initial := data[0]
	vMin := hwy.Set(initial)
	vMax := hwy.Set(initial)

	hwy.ProcessWithTail[float64](len(data),
		func(offset int) {
			v := hwy.Load(data[offset:])
			vMin = hwy.Min(vMin, v)
			vMax = hwy.Max(vMax, v)
		},
		func(offset, count int) {
			mask := hwy.TailMask[float64](count)
			v := hwy.MaskLoad(mask, data[offset:])
			vMinSafe := hwy.IfThenElse(mask, v, vMin)
			vMaxSafe := hwy.IfThenElse(mask, v, vMax)
			vMin = hwy.Min(vMin, vMinSafe)
			vMax = hwy.Max(vMax, vMaxSafe)
		},
	)
	return hwy.ReduceMin(vMin), hwy.ReduceMax(vMax)
}

// Intercepts computes a_i = ys[i] - xs[i]*slope for every entry using
// go-highway's FMA primitive. Callers needing the along-x hatch
// projection (a_i = x_i - y_i*cot(theta)) pass xs/ys swapped.
func Intercepts(ys, xs []float64, slope float64) []float64 {
	return batchIntercepts(ys, xs, slope)
}

// batchIntercepts computes a_i = y_i - x_i*slope for every vertex using
// go-highway's FMA primitive, mirroring the batch dot-product pattern in
// akhenakh-geo/s2/dot_hwy.go. Used by the hatcher to project every vertex
// of an offset polygon set onto the hatch-line intercept axis in one
// pass instead of a per-vertex scalar loop.
func batchIntercepts(ys, xs []float64, slope float64) []float64 {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	vSlope := hwy.Set(-slope)
	hwy.ProcessWithTail[float64](n,
		func(offset int) {
			vx := hwy.Load(xs[offset:])
			vy := hwy.Load(ys[offset:])
			sum := hwy.FMA(vSlope, vx, vy)
			hwy.Store(sum, out[offset:])
		},
		func(offset, count int) {
			mask := hwy.TailMask[float64](count)
			vx := hwy.MaskLoad(mask, xs[offset:])
			vy := hwy.MaskLoad(mask, ys[offset:])
			sum := hwy.FMA(vSlope, vx, vy)
			hwy.MaskStore(mask, sum, out[offset:])
		},
	)
	return out
}
