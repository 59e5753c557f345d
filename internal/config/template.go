package config

// DefaultTemplateConfig returns a runnable minimal configuration: one
// velocity profile, two segment styles (mark and jump), one region
// profile, no parts,
// no single stripes. Used by tests and by a first-run scaffold to
// produce a config.json the user can extend.
func DefaultTemplateConfig() Config {
	cfg := Defaults()
	cfg.VelocityProfiles = []VelocityProfile{
		{ID: "default_velocity", Velocity: 1000, LaserOnDelayUS: 10, LaserOffDelayUS: 10, JumpDelayUS: 200, MarkDelayUS: 100, PolygonDelayUS: 50},
	}
	cfg.SegmentStyles = []SegmentStyle{
		{ID: "default_mark", VelocityProfile: "default_velocity", Lead: Traveler{ID: "lead", PowerW: 200, SpotSize: 0.1}},
		{ID: "default_jump", VelocityProfile: "default_velocity", Lead: Traveler{ID: "lead", PowerW: 0, SpotSize: 0.1}},
	}
	cfg.RegionProfiles = []RegionProfile{
		{
			Tag:                 "default",
			JumpVelocityProfile: "default_velocity",
			JumpStyle:           "default_jump",
			ContourStyle:        "default_mark",
			NumContours:         1,
			ContourSpacingMM:    0.08,
			HatchStyle:          "default_mark",
			HatchOffsetMM:       0.04,
			HatchSpacingMM:      0.1,
		},
	}
	return cfg
}
