package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/internal/batch"
	cfgpkg "github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/internal/config"
	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/internal/diag"
	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/internal/ingest"
	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/pkg/artifact"
)

func main() {
	os.Exit(run())
}

// run drives one batch invocation end to end: load and validate the
// tabular configuration, assemble its lookup tables, and process the
// next bounded range of layers. A config path is the sole positional
// argument; everything else is either in the config file or overridden
// by GENSCAN_-prefixed environment variables, per spec §5/§6.
func run() int {
	start := time.Now()
	runID := genRunID()

	var (
		flagConfig  string
		flagSlicer  string
		flagInitDir string
		flagStatus  bool
		flagLevel   string
	)
	flag.StringVar(&flagConfig, "config", "", "tabular configuration path (JSON); defaults to the first positional argument")
	flag.StringVar(&flagSlicer, "slicer-dir", "", "slicer output root, one subdirectory per part")
	flag.StringVar(&flagInitDir, "init-config", "", "write a runnable default config.json to the given directory and exit")
	flag.BoolVar(&flagStatus, "status", true, "terminal progress reporting on stderr")
	flag.StringVar(&flagLevel, "log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	logger := diag.NewLogger(runID, flagLevel)

	if strings.TrimSpace(flagInitDir) != "" {
		return initConfig(strings.TrimSpace(flagInitDir))
	}

	if flagConfig == "" {
		if args := flag.Args(); len(args) > 0 {
			flagConfig = args[0]
		}
	}
	if flagConfig == "" {
		if _, err := os.Stat("config.json"); err == nil {
			flagConfig = "config.json"
		}
	}
	if flagConfig == "" {
		fmt.Fprintln(os.Stderr, "genscan: no configuration file given (positional arg, --config, or ./config.json)")
		return 2
	}

	cfg, err := cfgpkg.LoadJSON(flagConfig, nil)
	if err != nil {
		return fail(logger, start, "load config", err)
	}

	overlay := cfgpkg.EnvOverlay(os.Environ())
	cfg = overlay.Apply(cfg)

	if err := cfgpkg.Validate(cfg); err != nil {
		return fail(logger, start, "validate config", err)
	}

	tables, err := cfgpkg.Assemble(cfg)
	if err != nil {
		return fail(logger, start, "assemble config", err)
	}

	outputFolder := cfg.General.ProjectFolder
	if outputFolder == "" {
		outputFolder = "."
	}
	writer, err := artifact.New(outputFolder)
	if err != nil {
		return fail(logger, start, "open output folder", err)
	}

	slicerDir := flagSlicer
	if slicerDir == "" {
		slicerDir = filepath.Join(outputFolder, "slicer")
	}
	source := ingest.NewFileSystem(slicerDir)

	finalLayer := cfgpkg.TotalLayerCount(cfg) - 1
	if cfg.General.ScanLayerEnd > 0 && cfg.General.ScanLayerEnd < finalLayer {
		finalLayer = cfg.General.ScanLayerEnd
	}

	term := diag.NewTerminal(os.Stderr, flagStatus)
	diag.SetTerminal(term)
	defer diag.SetTerminal(nil)

	driver := &batch.Driver{
		Tables:     tables,
		Source:     source,
		Writer:     writer,
		Logger:     logger,
		Terminal:   term,
		FinalLayer: finalLayer,
		StartLayer: cfg.General.ScanLayerStart,
	}

	st, err := driver.Run(context.Background())
	if err != nil {
		writeErrorReport(writer, runID, err)
		return fail(logger, start, "batch run", err)
	}

	logger.InfoFinish("batch", "run complete", start, int64(st.LastLayer))
	diag.IncOp("batch", "finish", "success")
	diag.ObserveDuration("batch", "finish", time.Since(start).Milliseconds())
	return 0
}

func fail(logger *diag.Logger, start time.Time, stage string, err error) int {
	code := diag.Classify(err)
	fmt.Fprintf(os.Stderr, "genscan: %s: %v\n", stage, err)
	if logger != nil {
		logger.Error("batch", string(code), stage+": "+err.Error(), &start)
	}
	diag.IncError("batch", string(code))
	return exitCodeFor(code)
}

// exitCodeFor maps an error classification to a process exit code, per
// spec §7: configuration and geometry errors are distinguishable from
// each other and from a generic failure.
func exitCodeFor(code diag.Code) int {
	switch code {
	case diag.CodeConfig:
		return 2
	case diag.CodeGeometry:
		return 3
	case diag.CodeIO:
		return 4
	case diag.CodeCancel:
		return 130
	default:
		return 1
	}
}

// writeErrorReport emits a plain-text failure record beside the run's
// artifacts, so a fatal error surfaces even when nobody is watching
// stderr, per spec §6's "error report" note.
func writeErrorReport(w *artifact.Writer, runID string, err error) {
	body := fmt.Sprintf("run=%s\ntime=%s\nerror=%v\n", runID, diag.NowUTC(), err)
	_ = w.WriteBytes("error_report.txt", []byte(body))
}

func initConfig(dir string) int {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "genscan: create %s: %v\n", dir, err)
		return 2
	}
	cfg := cfgpkg.DefaultTemplateConfig()
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "genscan: marshal default config: %v\n", err)
		return 2
	}
	path := filepath.Join(dir, "config.json")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "genscan: %s already exists or cannot be created: %v\n", path, err)
		return 2
	}
	defer f.Close()
	if _, err := f.Write(b); err != nil {
		fmt.Fprintf(os.Stderr, "genscan: write %s: %v\n", path, err)
		return 2
	}
	return 0
}

func genRunID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "run"
	}
	return hex.EncodeToString(b[:])
}
