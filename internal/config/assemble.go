package config

import (
	"errors"
	"fmt"

	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/internal/ingest"
	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/pkg/model"
)

// ErrInvalid is the sentinel every Validate failure wraps, so
// internal/diag can classify the whole "Configuration" error kind
// (spec §7) with a single errors.Is check instead of string matching.
var ErrInvalid = errors.New("config: invalid")

// Validate checks the configuration-level invariants spec §3 invariant
// 5 and §7's "Configuration" error kind call for: schema version match,
// and every cross-reference (region profile -> segment style ->
// velocity profile, single stripe -> segment style) resolving to an
// entry that exists. These are checked once at load time rather than
// per layer, since the tables are read-only for the run.
func Validate(cfg Config) error {
	if cfg.SchemaVersion != CurrentSchemaVersion {
		return fmt.Errorf("%w: schema_version %d, want %d", ErrInvalid, cfg.SchemaVersion, CurrentSchemaVersion)
	}
	if cfg.General.SliceThicknessMM <= 0 {
		return fmt.Errorf("%w: slice_thickness_mm must be > 0, got %v", ErrInvalid, cfg.General.SliceThicknessMM)
	}

	velocity := map[string]bool{}
	for _, v := range cfg.VelocityProfiles {
		velocity[v.ID] = true
	}

	styles := map[string]bool{}
	for _, s := range cfg.SegmentStyles {
		if s.VelocityProfile != "" && !velocity[s.VelocityProfile] {
			return fmt.Errorf("%w: segment style %q references unknown velocity profile %q", ErrInvalid, s.ID, s.VelocityProfile)
		}
		styles[s.ID] = true
	}

	checkStyle := func(owner, field, style string) error {
		if style == "" {
			return nil
		}
		if !styles[style] {
			return fmt.Errorf("%w: %s references unknown segment style %q in %s", ErrInvalid, owner, style, field)
		}
		return nil
	}

	tags := map[string]bool{}
	for _, rp := range cfg.RegionProfiles {
		if err := checkStyle(fmt.Sprintf("region profile %q", rp.Tag), "jump_style", rp.JumpStyle); err != nil {
			return err
		}
		if err := checkStyle(fmt.Sprintf("region profile %q", rp.Tag), "contour_style", rp.ContourStyle); err != nil {
			return err
		}
		if err := checkStyle(fmt.Sprintf("region profile %q", rp.Tag), "hatch_style", rp.HatchStyle); err != nil {
			return err
		}
		tags[rp.Tag] = true
	}

	for _, p := range cfg.Parts {
		if !tags[p.Tag] {
			return fmt.Errorf("%w: part %q references unknown region tag %q", ErrInvalid, p.ID, p.Tag)
		}
	}

	for i, s := range cfg.SingleStripes {
		if err := checkStyle(fmt.Sprintf("single stripe #%d", i), "style", s.Style); err != nil {
			return err
		}
		if s.TrajectoryNum > 0 {
			return fmt.Errorf("%w: single stripe #%d has trajectory_num %d, must be <= 0", ErrInvalid, i, s.TrajectoryNum)
		}
	}

	return nil
}

// Tables is the read-only, in-memory set of lookup tables the layer
// pipeline and batch driver operate against for the whole run, per
// spec §3/§5. Built once by Assemble and shared freely across layers.
type Tables struct {
	General          General
	VelocityProfiles map[string]model.VelocityProfile
	SegmentStyles    map[string]model.SegmentStyle
	RegionProfiles   map[string]model.RegionProfile
	Parts            []ingest.PartSpec
	TrajectoryModes  map[int]model.ProcessingMode
	SingleStripes    []*model.SingleStripe
}

// Assemble validates cfg and converts it into Tables, translating the
// tabular wire shapes into the core's model types. Single stripes are
// allocated as pointers since their Marked flag is the one piece of
// state that mutates across layers within a run (spec §3 Lifecycles,
// §9's "global mutable state" note).
func Assemble(cfg Config) (Tables, error) {
	if err := Validate(cfg); err != nil {
		return Tables{}, err
	}

	t := Tables{
		General:          cfg.General,
		VelocityProfiles: make(map[string]model.VelocityProfile, len(cfg.VelocityProfiles)),
		SegmentStyles:    make(map[string]model.SegmentStyle, len(cfg.SegmentStyles)),
		RegionProfiles:   make(map[string]model.RegionProfile, len(cfg.RegionProfiles)),
		TrajectoryModes:  make(map[int]model.ProcessingMode, len(cfg.TrajectoryModes)),
	}

	for i, v := range cfg.VelocityProfiles {
		t.VelocityProfiles[v.ID] = model.VelocityProfile{
			ID:         v.ID,
			IntID:      i + 1,
			Velocity:   v.Velocity,
			LaserOnMS:  v.LaserOnDelayUS,
			LaserOffMS: v.LaserOffDelayUS,
			JumpMS:     v.JumpDelayUS,
			MarkMS:     v.MarkDelayUS,
			PolygonMS:  v.PolygonDelayUS,
		}
	}

	for i, s := range cfg.SegmentStyles {
		ms := model.SegmentStyle{
			ID:              s.ID,
			IntID:           i + 1,
			VelocityProfile: s.VelocityProfile,
			LaserMode:       s.LaserMode,
			Lead:            toModelTraveler(s.Lead),
		}
		if s.Trail != nil {
			trail := toModelTraveler(*s.Trail)
			ms.Trail = &trail
		}
		t.SegmentStyles[s.ID] = ms
	}

	for _, rp := range cfg.RegionProfiles {
		t.RegionProfiles[rp.Tag] = model.RegionProfile{
			Tag:                 rp.Tag,
			JumpVelocityProfile: rp.JumpVelocityProfile,
			JumpStyle:           rp.JumpStyle,
			ContourStyle:        rp.ContourStyle,
			NumContours:         rp.NumContours,
			ContourOffset:       rp.ContourOffsetMM,
			ContourSpacing:      rp.ContourSpacingMM,
			ContourSkywriting:   rp.ContourSkywriting,
			HatchStyle:          rp.HatchStyle,
			HatchOffset:         rp.HatchOffsetMM,
			HatchSpacing:        rp.HatchSpacingMM,
			HatchSkywriting:     rp.HatchSkywriting,
			HatchOptimize:       rp.HatchOptimize,
			Layer1HatchAngle:    rp.Layer1HatchAngle,
			HatchLayerRotation:  rp.HatchLayerRotation,
		}
	}

	for _, p := range cfg.Parts {
		t.Parts = append(t.Parts, ingest.PartSpec{
			ID:            p.ID,
			Tag:           p.Tag,
			ContourTraj:   p.ContourTraj,
			HatchTraj:     p.HatchTraj,
			Magnification: p.Magnification,
			OffsetX:       p.OffsetXMM,
			OffsetY:       p.OffsetYMM,
		})
	}

	for _, tm := range cfg.TrajectoryModes {
		mode := model.Sequential
		if tm.Mode == "concurrent" {
			mode = model.Concurrent
		}
		t.TrajectoryModes[tm.Number] = mode
	}

	for _, s := range cfg.SingleStripes {
		t.SingleStripes = append(t.SingleStripes, &model.SingleStripe{
			TrajectoryNum: s.TrajectoryNum,
			Tag:           s.Tag,
			Style:         s.Style,
			Start:         model.Vertex{X: s.StartXMM, Y: s.StartYMM},
			End:           model.Vertex{X: s.EndXMM, Y: s.EndYMM},
			LayerIndex:    s.LayerIndex,
		})
	}

	return t, nil
}

func toModelTraveler(t Traveler) model.Traveler {
	mt := model.Traveler{ID: t.ID, SyncMS: t.SyncDelayUS, PowerW: t.PowerW, SpotSize: t.SpotSize}
	if t.Wobble != nil {
		mt.Wobble = &model.Wobble{
			On:       t.Wobble.On,
			FreqHz:   t.Wobble.FreqHz,
			Shape:    t.Wobble.Shape,
			TransAmp: t.Wobble.TransAmp,
			LongAmp:  t.Wobble.LongAmp,
		}
	}
	return mt
}

// TotalLayerCount computes the run's total layer count, per spec §4.9:
// one more than the maximum, over all parts, of (layer_count +
// z_offset_layers), also bounded below by the maximum single-stripe
// layer index.
func TotalLayerCount(cfg Config) int {
	max := 0
	for _, p := range cfg.Parts {
		if v := p.LayerCount + p.ZOffsetLayers; v > max {
			max = v
		}
	}
	total := max + 1
	for _, s := range cfg.SingleStripes {
		if s.LayerIndex+1 > total {
			total = s.LayerIndex + 1
		}
	}
	return total
}
