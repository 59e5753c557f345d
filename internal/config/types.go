package config

// CurrentSchemaVersion is the tabular configuration schema version this
// core accepts. A mismatch in a loaded Config is a fatal configuration
// error, per spec §6/§7.
const CurrentSchemaVersion = 1

// Config is the in-memory object the tabular configuration reader (an
// external collaborator, out of scope per spec §1) is specified to
// produce. The core treats it as read-only once loaded, per spec §5's
// shared-resource policy.
type Config struct {
	SchemaVersion int `json:"schema_version"`

	General          General           `json:"general"`
	VelocityProfiles []VelocityProfile `json:"velocity_profiles"`
	SegmentStyles    []SegmentStyle    `json:"segment_styles"`
	RegionProfiles   []RegionProfile   `json:"region_profiles"`
	Parts            []Part            `json:"parts"`
	TrajectoryModes  []TrajectoryMode  `json:"trajectory_processing"`
	SingleStripes    []SingleStripe    `json:"single_stripes"`
}

// General mirrors spec §6's "general" tab section.
type General struct {
	ProjectFolder    string `json:"project_folder"`
	SliceThicknessMM float64 `json:"slice_thickness_mm"`
	DosingFactor     float64 `json:"dosing_factor"`
	IDIntegerize     bool    `json:"id_integerize"`
	Zip              bool    `json:"zip"`
	SVGEnabled       bool    `json:"svg_enabled"`
	SVGInterval      int     `json:"svg_interval"`
	ScanLayerStart   int     `json:"scan_layer_start"`
	ScanLayerEnd     int     `json:"scan_layer_end"`
	// BatchSize is the bounded number of layers processed per batch
	// driver invocation, per spec §4.9. Zero means "use the default".
	BatchSize int `json:"batch_size"`
	// Concurrency bounds how many layers within one batch run their
	// ingest/plan/pipeline work in parallel worker goroutines. <=1 keeps
	// the plain sequential loop.
	Concurrency int `json:"concurrency,omitempty"`
	// SingleStripeJumpStyle/SingleStripeTag apply to every single-stripe
	// trajectory's inter-stripe jump segments and path tag, per spec §3's
	// SingleStripe type (which carries no jump style of its own — only
	// the mark style). Empty means the batch driver's built-in default.
	SingleStripeJumpStyle string `json:"single_stripe_jump_style,omitempty"`
	SingleStripeTag       string `json:"single_stripe_tag,omitempty"`
}

// VelocityProfile is velocity plus the delay bundle, per spec §3.
type VelocityProfile struct {
	ID              string  `json:"id"`
	Velocity        float64 `json:"velocity"`
	LaserOnDelayUS  float64 `json:"laser_on_delay_us"`
	LaserOffDelayUS float64 `json:"laser_off_delay_us"`
	JumpDelayUS     float64 `json:"jump_delay_us"`
	MarkDelayUS     float64 `json:"mark_delay_us"`
	PolygonDelayUS  float64 `json:"polygon_delay_us"`
}

// Wobble is the optional wobble waveform carried by a Traveler.
type Wobble struct {
	On       bool    `json:"on"`
	FreqHz   float64 `json:"freq_hz"`
	Shape    string  `json:"shape"`
	TransAmp float64 `json:"trans_amp"`
	LongAmp  float64 `json:"long_amp"`
}

// Traveler is one laser head's configuration while traversing a segment.
type Traveler struct {
	ID          string  `json:"id"`
	SyncDelayUS float64 `json:"sync_delay_us"`
	PowerW      float64 `json:"power_w"`
	SpotSize    float64 `json:"spot_size"`
	Wobble      *Wobble `json:"wobble,omitempty"`
}

// SegmentStyle references a velocity profile and up to two travelers.
type SegmentStyle struct {
	ID              string    `json:"id"`
	VelocityProfile string    `json:"velocity_profile"`
	LaserMode       string    `json:"laser_mode,omitempty"`
	Lead            Traveler  `json:"lead"`
	Trail           *Traveler `json:"trail,omitempty"`
}

// RegionProfile is the per-region-tag process recipe, per spec §3.
type RegionProfile struct {
	Tag string `json:"tag"`

	JumpVelocityProfile string `json:"jump_velocity_profile"`
	JumpStyle           string `json:"jump_style"`

	ContourStyle      string  `json:"contour_style,omitempty"`
	NumContours       int     `json:"num_contours"`
	ContourOffsetMM   float64 `json:"contour_offset_mm"`
	ContourSpacingMM  float64 `json:"contour_spacing_mm"`
	ContourSkywriting int     `json:"contour_skywriting"`

	HatchStyle         string  `json:"hatch_style,omitempty"`
	HatchOffsetMM      float64 `json:"hatch_offset_mm"`
	HatchSpacingMM     float64 `json:"hatch_spacing_mm"`
	HatchSkywriting    int     `json:"hatch_skywriting"`
	HatchOptimize      bool    `json:"hatch_optimize"`
	Layer1HatchAngle   float64 `json:"layer1_hatch_angle_deg"`
	HatchLayerRotation float64 `json:"hatch_layer_rotation_deg"`
}

// Part is one part's STL source, placement, and trajectory tagging,
// per spec §6's "parts" tab section.
type Part struct {
	ID            string  `json:"id"`
	STLPath       string  `json:"stl_path"`
	Tag           string  `json:"tag"`
	ContourTraj   int     `json:"contour_traj"`
	HatchTraj     int     `json:"hatch_traj"`
	Magnification float64 `json:"magnification"`
	OffsetXMM     float64 `json:"offset_x_mm"`
	OffsetYMM     float64 `json:"offset_y_mm"`
	ZOffsetLayers int     `json:"z_offset_layers"`
	LayerCount    int     `json:"layer_count"`
}

// TrajectoryMode binds a trajectory number to its processing mode, per
// spec §4.7 step 4's "path-processing mode table".
type TrajectoryMode struct {
	Number int    `json:"number"`
	Mode   string `json:"mode"` // "sequential" or "concurrent"
}

// SingleStripe is one calibration-mark tab row, per spec §3/§6.
type SingleStripe struct {
	TrajectoryNum int     `json:"trajectory_num"` // <= 0
	Tag           string  `json:"tag"`
	Style         string  `json:"style"`
	StartXMM      float64 `json:"start_x_mm"`
	StartYMM      float64 `json:"start_y_mm"`
	EndXMM        float64 `json:"end_x_mm"`
	EndYMM        float64 `json:"end_y_mm"`
	LayerIndex    int     `json:"layer_index"`
}
