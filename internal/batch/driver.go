package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/internal/config"
	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/internal/diag"
	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/internal/ingest"
	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/internal/layerpipeline"
	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/internal/svgexport"
	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/internal/trajectory"
	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/pkg/artifact"
	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/pkg/model"
	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/pkg/xmlio"
)

// DefaultBatchSize is used when neither the configuration nor the
// driver overrides it, per spec §4.9.
const DefaultBatchSize = 25

// DefaultSingleStripeJumpStyle/DefaultSingleStripeTag are applied to
// single-stripe trajectories when config.General leaves the
// corresponding fields empty.
const (
	DefaultSingleStripeJumpStyle = "default_jump"
	DefaultSingleStripeTag       = "calibration"
)

// DefaultStatusName is the status-file name used when a Driver leaves
// StatusName unset. The baseline checkpoints layer construction and
// scan generation as two independent stages (gl_sts.cfg / gs_sts.cfg);
// this driver fuses both into one per-layer pass (spec §2's control
// flow already describes layer and scan artifacts as one pipeline), so
// one Driver normally needs only one status file. StatusName stays a
// field rather than a constant so a caller running the two stages
// separately can still checkpoint each under its own name.
const DefaultStatusName = "status.txt"

// DefaultLayerHeaderName is the layer header artifact name used when a
// Driver leaves LayerHeaderName unset.
const DefaultLayerHeaderName = "layer_header.xml"

// Driver runs the resumable batch loop of spec §4.9 over one run's
// worth of layers, producing a layer XML artifact and a scan XML
// artifact per layer.
type Driver struct {
	Tables     config.Tables
	Source     ingest.Source
	Writer     *artifact.Writer
	Logger     *diag.Logger
	Terminal   *diag.Terminal
	FinalLayer int

	// StartLayer seeds a fresh status record's LastLayer at StartLayer-1
	// (so the first batch begins at StartLayer) when > 1. It has no
	// effect once a status record already exists on disk, since a
	// resumed run always continues from its own LastLayer regardless of
	// where the original run began.
	StartLayer int

	// BatchSize overrides config.Tables.General.BatchSize when positive.
	BatchSize int

	// StatusName overrides DefaultStatusName when non-empty.
	StatusName string

	// LayerHeaderName overrides DefaultLayerHeaderName when non-empty.
	LayerHeaderName string

	// ViewTransform is the vConfig.txt-style SVG viewport transform
	// carried from layer generation (SPEC_FULL.md supplemented feature
	// #2). A zero value falls back to each layer's own bounding box.
	ViewTransform svgexport.ViewTransform

	// Concurrency overrides config.Tables.General.Concurrency when > 1.
	// <=1 runs the plain sequential loop.
	Concurrency int
}

func (d *Driver) concurrency() int {
	if d.Concurrency > 1 {
		return d.Concurrency
	}
	if d.Tables.General.Concurrency > 1 {
		return d.Tables.General.Concurrency
	}
	return 1
}

func (d *Driver) statusName() string {
	if d.StatusName != "" {
		return d.StatusName
	}
	return DefaultStatusName
}

func (d *Driver) layerHeaderName() string {
	if d.LayerHeaderName != "" {
		return d.LayerHeaderName
	}
	return DefaultLayerHeaderName
}

func (d *Driver) batchSize() int {
	if d.BatchSize > 0 {
		return d.BatchSize
	}
	if d.Tables.General.BatchSize > 0 {
		return d.Tables.General.BatchSize
	}
	return DefaultBatchSize
}

func (d *Driver) stripeJumpStyle() string {
	if d.Tables.General.SingleStripeJumpStyle != "" {
		return d.Tables.General.SingleStripeJumpStyle
	}
	return DefaultSingleStripeJumpStyle
}

func (d *Driver) stripeTag() string {
	if d.Tables.General.SingleStripeTag != "" {
		return d.Tables.General.SingleStripeTag
	}
	return DefaultSingleStripeTag
}

// Run processes layers [last_layer+1, min(last_layer+batchSize,
// finalLayer)], persisting the updated status record on return (even
// on error, so a later invocation resumes from the right place — the
// status write only advances LastLayer for layers that fully
// succeeded). Per spec §3 invariant 7, each layer's artifacts depend
// only on that layer's inputs and the region-profile table, so batch
// boundaries never change the emitted bytes.
func (d *Driver) Run(ctx context.Context) (Status, error) {
	statusPath := d.Writer.Path(d.statusName())
	st, err := ReadStatus(statusPath)
	if err != nil {
		return st, fmt.Errorf("batch: read status: %w", err)
	}
	if st.Finished {
		return st, nil
	}
	if !st.Started && d.StartLayer > 1 {
		st.LastLayer = d.StartLayer - 1
	}
	st.Started = true
	st.OutputFolder = d.Writer.Path("")

	start := st.LastLayer + 1
	end := start + d.batchSize() - 1
	if end > d.FinalLayer {
		end = d.FinalLayer
	}
	if start > end {
		st.Finished = st.LastLayer >= d.FinalLayer
		if werr := WriteStatus(d.Writer, d.statusName(), st); werr != nil {
			return st, fmt.Errorf("batch: write status: %w", werr)
		}
		return st, nil
	}

	rangeLabel := fmt.Sprintf("%d..%d", start, end)
	runStart := time.Now()
	if d.Terminal != nil {
		d.Terminal.RunStart(st.OutputFolder)
		d.Terminal.LayerStart(rangeLabel, end-start+1)
	}

	if d.concurrency() > 1 {
		lastGood, err := d.runBatchConcurrent(ctx, start, end)
		st.LastLayer = lastGood
		if err != nil {
			if werr := WriteStatus(d.Writer, d.statusName(), st); werr != nil {
				err = fmt.Errorf("%w (and status write failed: %v)", err, werr)
			}
			d.finishTerminal(false, runStart)
			return st, err
		}
	} else {
		for layerIndex := start; layerIndex <= end; layerIndex++ {
			if err := ctx.Err(); err != nil {
				if werr := WriteStatus(d.Writer, d.statusName(), st); werr != nil {
					err = fmt.Errorf("%w (and status write failed: %v)", err, werr)
				}
				d.finishTerminal(false, runStart)
				return st, err
			}
			if err := d.runLayer(ctx, layerIndex); err != nil {
				if werr := WriteStatus(d.Writer, d.statusName(), st); werr != nil {
					err = fmt.Errorf("%w (and status write failed: %v)", err, werr)
				}
				d.finishTerminal(false, runStart)
				return st, fmt.Errorf("batch: layer %d: %w", layerIndex, err)
			}
			st.LastLayer = layerIndex
			if d.Terminal != nil {
				d.Terminal.LayerProgress(layerIndex-start+1, end-start+1, 0)
			}
		}
	}

	if err := d.writeLayerHeader(st.LastLayer); err != nil {
		if werr := WriteStatus(d.Writer, d.statusName(), st); werr != nil {
			err = fmt.Errorf("%w (and status write failed: %v)", err, werr)
		}
		d.finishTerminal(false, runStart)
		return st, err
	}

	st.Finished = end == d.FinalLayer
	if err := WriteStatus(d.Writer, d.statusName(), st); err != nil {
		return st, fmt.Errorf("batch: write status: %w", err)
	}
	d.finishTerminal(true, runStart)
	return st, nil
}

// writeLayerHeader (re)emits the layer header artifact covering every
// layer written so far, 1..lastLayer: total layer count plus one
// (z height, filename) entry per layer. It runs at the end of every
// successful batch, the same as the status record, so an aggregate
// index is always available even when a run is interrupted partway
// through the final batch.
func (d *Driver) writeLayerHeader(lastLayer int) error {
	if lastLayer <= 0 {
		return nil
	}
	thickness := d.Tables.General.SliceThicknessMM
	infos := make([]xmlio.LayerInfo, lastLayer)
	for i := 1; i <= lastLayer; i++ {
		infos[i-1] = xmlio.LayerInfo{ZHeight: float64(i) * thickness, LayerFilename: layerFileName(i)}
	}
	data, err := xmlio.MarshalLayerHeader(lastLayer, infos)
	if err != nil {
		return fmt.Errorf("marshal layer header artifact: %w", err)
	}
	if err := d.Writer.WriteBytes(d.layerHeaderName(), data); err != nil {
		return fmt.Errorf("write layer header artifact: %w", err)
	}
	return nil
}

// runBatchConcurrent distributes [start,end] over a bounded worker pool:
// a job channel feeds N goroutines, each reporting (layer, err) on a
// result channel; the first error cancels the shared context while the
// rest drain. Each layer's region/contour/hatch artifacts depend only
// on that layer's own inputs, so workers may finish in any order; what
// returns is the last layer of the longest unbroken run of successes
// starting at start (start-1 when start itself failed), since that — not merely "every job finished" — is
// what the resumable status record is allowed to treat as done.
//
// Single-stripe trajectories are the one exception to per-layer
// independence: marking a stripe mutates it in place, and a stripe's
// layer assignment is data, not position, so two different worker
// goroutines could otherwise mark the same stripe twice or race on it.
// runBatchConcurrent claims every layer's due stripes sequentially,
// in increasing layer order, before any worker starts, and hands each
// worker its own layer's already-claimed trajectories instead of
// letting trajectory.Plan touch the shared stripe slice itself.
func (d *Driver) runBatchConcurrent(ctx context.Context, start, end int) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	total := end - start + 1
	n := d.concurrency()
	if n > total {
		n = total
	}

	stripeTrajs := make(map[int][]model.Trajectory, total)
	for layerIndex := start; layerIndex <= end; layerIndex++ {
		if trajectory.AllMarked(d.Tables.SingleStripes) {
			break
		}
		stripeTrajs[layerIndex] = trajectory.PlanStripes(d.Tables.SingleStripes, layerIndex, d.stripeJumpStyle(), d.stripeTag(), 0, d.Tables.TrajectoryModes)
	}

	jobs := make(chan int, total)
	for layerIndex := start; layerIndex <= end; layerIndex++ {
		jobs <- layerIndex
	}
	close(jobs)

	type outcome struct {
		layer int
		err   error
	}
	results := make(chan outcome, total)

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			for layerIndex := range jobs {
				if err := ctx.Err(); err != nil {
					results <- outcome{layer: layerIndex, err: err}
					continue
				}
				results <- outcome{layer: layerIndex, err: d.runLayerWithStripes(ctx, layerIndex, stripeTrajs[layerIndex])}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	errs := make(map[int]error, total)
	cancelled := false
	done := 0
	for r := range results {
		errs[r.layer] = r.err
		done++
		if d.Terminal != nil {
			d.Terminal.LayerProgress(done, total, 0)
		}
		if r.err != nil && !cancelled {
			cancelled = true
			cancel()
		}
	}

	lastGood := start - 1
	for layerIndex := start; layerIndex <= end; layerIndex++ {
		if err := errs[layerIndex]; err != nil {
			return lastGood, fmt.Errorf("batch: layer %d: %w", layerIndex, err)
		}
		lastGood = layerIndex
	}
	return lastGood, nil
}

func (d *Driver) finishTerminal(ok bool, runStart time.Time) {
	if d.Terminal == nil {
		return
	}
	d.Terminal.LayerFinish(ok, time.Since(runStart))
	d.Terminal.RunFinish(ok, time.Since(runStart))
}

// runLayer executes spec §2's per-layer control flow end to end:
// ingest, plan trajectories, run the layer pipeline, emit both
// artifacts. It calls trajectory.Plan directly, which is only safe when
// nothing else is touching d.Tables.SingleStripes concurrently — the
// sequential path in Run is the only caller. Once every stripe has been
// claimed, AllMarked lets it skip scanning the stripe slice on every
// remaining layer.
func (d *Driver) runLayer(ctx context.Context, layerIndex int) error {
	return d.processLayer(ctx, layerIndex, func(layer model.Layer) []model.Trajectory {
		if trajectory.AllMarked(d.Tables.SingleStripes) {
			return trajectory.PlanRegions(layer, d.Tables.TrajectoryModes)
		}
		return trajectory.Plan(layer, layerIndex, d.Tables.SingleStripes, d.stripeJumpStyle(), d.stripeTag(), 0, d.Tables.TrajectoryModes)
	})
}

// runLayerWithStripes is runLayer's concurrency-safe counterpart: it
// takes a layer's single-stripe trajectories already claimed by
// runBatchConcurrent's sequential pre-pass and only plans the
// genuinely layer-independent region work itself, never touching the
// shared stripe slice.
func (d *Driver) runLayerWithStripes(ctx context.Context, layerIndex int, stripeTrajs []model.Trajectory) error {
	return d.processLayer(ctx, layerIndex, func(layer model.Layer) []model.Trajectory {
		regionTrajs := trajectory.PlanRegions(layer, d.Tables.TrajectoryModes)
		return trajectory.Merge(stripeTrajs, regionTrajs)
	})
}

// processLayer holds the per-layer control flow shared by runLayer and
// runLayerWithStripes: ingest, plan trajectories via planTrajectories,
// run the layer pipeline, emit both artifacts.
func (d *Driver) processLayer(ctx context.Context, layerIndex int, planTrajectories func(model.Layer) []model.Trajectory) error {
	var timer *diag.Timer
	if d.Logger != nil {
		timer = d.Logger.StartLayer("batch", "processing layer", layerIndex)
	}

	layer, err := ingest.BuildLayer(ctx, d.Tables.Parts, d.Source, layerIndex, d.Tables.General.SliceThicknessMM)
	if err != nil {
		if d.Logger != nil {
			d.Logger.ErrorLayer("batch", string(diag.Classify(err)), err.Error(), nil, layerIndex)
		}
		return err
	}

	layerXML, err := xmlio.MarshalLayer(layer)
	if err != nil {
		return fmt.Errorf("marshal layer artifact: %w", err)
	}
	if err := d.Writer.WriteBytes(layerFileName(layerIndex), layerXML); err != nil {
		return fmt.Errorf("write layer artifact: %w", err)
	}

	trajs := planTrajectories(layer)
	trajs = layerpipeline.Run(layer, layerIndex, trajs, d.Tables.RegionProfiles)

	header := xmlio.ScanHeader{
		SchemaVersion:    config.CurrentSchemaVersion,
		LayerNum:         layerIndex,
		LayerThicknessMM: layer.Thickness,
		AbsoluteHeightMM: float64(layerIndex) * layer.Thickness,
		DosingFactor:     d.Tables.General.DosingFactor,
		BuildDescription: d.Tables.General.ProjectFolder,
	}
	scanXML, err := xmlio.MarshalScan(header, d.Tables.VelocityProfiles, d.Tables.SegmentStyles, trajs, d.Tables.General.IDIntegerize)
	if err != nil {
		return fmt.Errorf("marshal scan artifact: %w", err)
	}
	if err := d.Writer.WriteBytes(scanFileName(layerIndex), scanXML); err != nil {
		return fmt.Errorf("write scan artifact: %w", err)
	}

	if svgexport.ShouldExport(d.Tables.General.SVGEnabled, d.Tables.General.SVGInterval, layerIndex) {
		vt := d.ViewTransform
		if vt.Mag == 0 {
			vt = svgexport.ViewTransformFromBBox(layer.BBox)
		}
		svgBytes, err := svgexport.Marshal(trajs, vt)
		if err != nil {
			return fmt.Errorf("marshal svg artifact: %w", err)
		}
		if err := d.Writer.WriteBytes(svgFileName(layerIndex), svgBytes); err != nil {
			return fmt.Errorf("write svg artifact: %w", err)
		}
	}

	if timer != nil {
		timer.Finish("layer complete", int64(len(trajs)))
	}
	return nil
}

func layerFileName(layerIndex int) string {
	return fmt.Sprintf("layers/layer_%05d.xml", layerIndex)
}

func scanFileName(layerIndex int) string {
	return fmt.Sprintf("scans/scan_%05d.xml", layerIndex)
}

func svgFileName(layerIndex int) string {
	return fmt.Sprintf("SVGdir/scan_%05d.svg", layerIndex)
}
