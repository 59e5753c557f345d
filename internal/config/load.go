package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
)

// Defaults returns a Config shell with safe scalar defaults; every
// table (region profiles, segment styles, parts, ...) is left empty
// for the tabular reader (or LoadJSON, in this repo's interchange
// format) to populate.
func Defaults() Config {
	return Config{
		SchemaVersion: CurrentSchemaVersion,
		General: General{
			SliceThicknessMM: 0.03,
			BatchSize:        25,
		},
	}
}

// LoadJSON decodes a Config from path, or from raw directly when raw is
// non-empty. Unknown fields are rejected rather than silently dropped.
func LoadJSON(path string, raw []byte) (Config, error) {
	var cfg Config
	var r io.Reader
	switch {
	case len(raw) > 0:
		r = bytes.NewReader(raw)
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return cfg, err
		}
		defer f.Close()
		r = f
	default:
		return cfg, errors.New("config: no source provided")
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Overlay carries the handful of knobs a batch invocation may override
// without editing the tabular configuration file, per spec §5's
// "output folder, layer range, concurrency" note in SPEC_FULL.md's
// ambient stack section. Zero-value fields mean "not overridden";
// ScanLayerEnd/Start use -1 as their unset sentinel since 0 is a valid
// layer index.
type Overlay struct {
	OutputFolder   string
	ScanLayerStart int
	ScanLayerEnd   int
	Concurrency    int
	BatchSize      int
}

// EnvOverlay builds an Overlay from a process environment (as returned
// by os.Environ), reading a small, fixed set of GENSCAN_-prefixed keys.
// Unrecognized keys, including anything outside this set, are ignored.
func EnvOverlay(environ []string) Overlay {
	over := Overlay{ScanLayerStart: -1, ScanLayerEnd: -1}
	for _, kv := range environ {
		if !strings.HasPrefix(kv, "GENSCAN_") {
			continue
		}
		eq := strings.IndexByte(kv, '=')
		if eq <= len("GENSCAN_") {
			continue
		}
		key, val := kv[:eq], strings.TrimSpace(kv[eq+1:])
		switch strings.TrimPrefix(key, "GENSCAN_") {
		case "OUTPUT_FOLDER":
			over.OutputFolder = val
		case "SCAN_LAYER_START":
			if v, err := atoi(val); err == nil {
				over.ScanLayerStart = v
			}
		case "SCAN_LAYER_END":
			if v, err := atoi(val); err == nil {
				over.ScanLayerEnd = v
			}
		case "CONCURRENCY":
			if v, err := atoi(val); err == nil {
				over.Concurrency = v
			}
		case "BATCH_SIZE":
			if v, err := atoi(val); err == nil {
				over.BatchSize = v
			}
		}
	}
	return over
}

// Apply returns cfg with o's non-zero/non-sentinel fields applied.
func (o Overlay) Apply(cfg Config) Config {
	out := cfg
	if o.OutputFolder != "" {
		out.General.ProjectFolder = o.OutputFolder
	}
	if o.ScanLayerStart >= 0 {
		out.General.ScanLayerStart = o.ScanLayerStart
	}
	if o.ScanLayerEnd >= 0 {
		out.General.ScanLayerEnd = o.ScanLayerEnd
	}
	if o.BatchSize > 0 {
		out.General.BatchSize = o.BatchSize
	}
	if o.Concurrency > 0 {
		out.General.Concurrency = o.Concurrency
	}
	return out
}

func atoi(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty")
	}
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	if s == "" {
		return 0, errors.New("empty")
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, errors.New("not a number")
		}
		n = n*10 + int(r-'0')
	}
	if neg {
		n = -n
	}
	return n, nil
}
