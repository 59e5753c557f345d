// Package model holds the data structures shared across the scan-path
// kernel: the geometry types that survive from ingestion through
// offsetting and hatching, and the scan-side types (segments, paths,
// trajectories) that the layer pipeline produces.
package model

// Vertex is a planar point in millimetres. It has no z coordinate; a
// layer's height follows from its index and thickness.
type Vertex struct {
	X, Y float64
}

// LoopType distinguishes an outer boundary from a hole.
type LoopType int

const (
	Outer LoopType = iota
	Inner
)

func (t LoopType) String() string {
	if t == Inner {
		return "Inner"
	}
	return "Outer"
}

// Curvature is reserved for future use; the core only ever emits Linear.
type Curvature int

const (
	Linear Curvature = iota
)

// Edge is an ordered pair of indices into a layer's shared vertex list.
type Edge struct {
	Start, End int
	Curvature  Curvature
}

// Loop is an ordered, closed sequence of vertices produced directly from
// a part's sliced polygon, before promotion into a layer's shared vertex
// list.
type Loop struct {
	Type        LoopType
	Tag         string
	ContourTraj int
	HatchTraj   int
	Vertices    []Vertex
}

// Region is a Loop promoted into a layer's shared vertex list: same
// classification and trajectory keys, plus edges indexing the layer's
// vertex list instead of carrying vertices directly.
type Region struct {
	Type        LoopType
	Tag         string
	ContourTraj int
	HatchTraj   int
	Edges       []Edge
}

// Slice is the unordered set of regions belonging to one z-plane.
type Slice struct {
	Regions []Region
}

// BBox is an axis-aligned bounding box in millimetres.
type BBox struct {
	MinX, MaxX, MinY, MaxY float64
}

// Layer is one sliced cross-section: thickness, the shared vertex list
// all region edges index into, the slice, and the derived bounding box.
type Layer struct {
	Index     int
	Thickness float64
	Vertices  []Vertex
	Slice     Slice
	BBox      BBox
}

// VelocityProfile is velocity plus the delay bundle applied around a
// segment.
type VelocityProfile struct {
	ID          string
	IntID       int // assigned in load order; used when integerisation is requested
	Velocity    float64
	LaserOnMS   float64
	LaserOffMS  float64
	JumpMS      float64
	MarkMS      float64
	PolygonMS   float64
}

// Wobble parameters for a traveler, optional.
type Wobble struct {
	On        bool
	FreqHz    float64
	Shape     string
	TransAmp  float64
	LongAmp   float64
}

// Traveler is one laser head's configuration while traversing a segment:
// power, spot size, and an optional wobble waveform.
type Traveler struct {
	ID       string
	SyncMS   float64
	PowerW   float64
	SpotSize float64
	Wobble   *Wobble // nil when not wobbling
}

// SegmentStyle references a velocity profile and up to two travelers
// (lead, optional trailing).
type SegmentStyle struct {
	ID              string
	IntID           int // deterministic, derived from insertion order
	VelocityProfile string
	LaserMode       string // opaque passthrough, may be empty
	Lead            Traveler
	Trail           *Traveler // nil when single-traveler
}

// RegionProfile is the per-region-tag process recipe.
type RegionProfile struct {
	Tag string

	JumpVelocityProfile string
	JumpStyle           string // SegmentStyle id applied to jump segments between hatches/contours

	ContourStyle      string // SegmentStyle id; empty means "no contours"
	NumContours        int
	ContourOffset       float64 // offCntr: offset from part boundary, mm
	ContourSpacing      float64 // resCntr: inter-contour spacing, mm
	ContourSkywriting   int

	HatchStyle         string // SegmentStyle id; empty means "no hatch"
	HatchOffset        float64 // offHatch: offset from innermost contour, mm
	HatchSpacing       float64 // resHatch: hatch line spacing, mm
	HatchSkywriting    int
	HatchOptimize      bool
	Layer1HatchAngle   float64 // degrees
	HatchLayerRotation float64 // degrees per layer
}

// HasContours reports whether this profile requests any contour passes.
func (p RegionProfile) HasContours() bool {
	return p.ContourStyle != "" && p.NumContours > 0
}

// HasHatch reports whether this profile requests hatching.
func (p RegionProfile) HasHatch() bool {
	return p.HatchStyle != "" && p.HatchSpacing > 0
}

// Segment is one laser movement: start/end vertex, the segment style
// applied while traveling, and whether the laser is on (mark) or off
// (jump).
type Segment struct {
	Start, End Vertex
	Style      string // SegmentStyle id
	IsMark     bool
}

// PathType classifies a Path for grouping/serialization purposes.
type PathType int

const (
	PathContour PathType = iota
	PathHatch
	PathSingleStripes
)

func (t PathType) String() string {
	switch t {
	case PathContour:
		return "contour"
	case PathHatch:
		return "hatch"
	case PathSingleStripes:
		return "single_stripes"
	default:
		return "unknown"
	}
}

// Path is an ordered sequence of segments sharing a region tag, a type,
// and a skywriting-mode code.
type Path struct {
	Segments   []Segment
	Tag        string
	Type       PathType
	Skywriting int
}

// ProcessingMode governs whether a trajectory's paths are built
// sequentially or may be built concurrently.
type ProcessingMode int

const (
	Sequential ProcessingMode = iota
	Concurrent
)

func (m ProcessingMode) String() string {
	if m == Concurrent {
		return "concurrent"
	}
	return "sequential"
}

// WorkOp tags a trajectory work item as contouring or hatching a region.
// Modeled as a small tagged variant rather than dispatched virtually,
// per spec §9.
type WorkOp int

const (
	OpContour WorkOp = iota
	OpHatch
)

// WorkItem is one (region, operation, tag) pair awaiting path
// construction within a trajectory.
type WorkItem struct {
	RegionIndex int
	Op          WorkOp
	Tag         string
	Done        bool
}

// Trajectory is an ordering bucket for paths.
type Trajectory struct {
	Number int
	Mode   ProcessingMode
	Paths  []Path
	Work   []WorkItem
}

// SingleStripe is a standalone calibration mark outside any part.
type SingleStripe struct {
	TrajectoryNum int // <= 0
	Tag           string
	Style         string
	Start, End    Vertex
	LayerIndex    int
	Marked        bool
}
