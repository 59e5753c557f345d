// Package batch implements the resumable batch driver: a fixed number
// of layers per invocation, an on-disk status record checkpointing
// progress, and a choice of a plain sequential per-layer loop or a
// bounded worker pool that still only credits a contiguous run of
// completed layers.
//
// Grounded on `original_source/genScan/main_genScan.cpp`'s `gs_sts.cfg`
// status file and `numLayersPerCall`/`finished` bookkeeping, and on a
// job/result-channel worker pool seen elsewhere in the reference
// corpus for the optional concurrent layer driver.
package batch

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/pkg/artifact"
)

// Status is the per-stage status record spec §6 defines: four
// newline-terminated lines (started, last_layer, finished,
// output_folder). A missing status file is not an error — readers
// initialize the zero-value record, per spec §5's shared-resource
// policy.
type Status struct {
	Started      bool
	LastLayer    int
	Finished     bool
	OutputFolder string
}

// ParseStatus decodes a Status from its four-line text form.
func ParseStatus(data []byte) (Status, error) {
	text := strings.TrimRight(string(data), "\n")
	lines := strings.Split(text, "\n")
	if len(lines) < 4 {
		return Status{}, fmt.Errorf("batch: status record: expected 4 lines, got %d", len(lines))
	}
	lastLayer, err := strconv.Atoi(strings.TrimSpace(lines[1]))
	if err != nil {
		return Status{}, fmt.Errorf("batch: status record: last_layer: %w", err)
	}
	return Status{
		Started:      lines[0] == "1",
		LastLayer:    lastLayer,
		Finished:     lines[2] == "1",
		OutputFolder: lines[3],
	}, nil
}

// Encode renders a Status to its four-line text form.
func (s Status) Encode() []byte {
	boolDigit := func(v bool) string {
		if v {
			return "1"
		}
		return "0"
	}
	return []byte(fmt.Sprintf("%s\n%d\n%s\n%s\n", boolDigit(s.Started), s.LastLayer, boolDigit(s.Finished), s.OutputFolder))
}

// ReadStatus reads and parses the status file at path. A missing file
// yields the zero-value Status and a nil error.
func ReadStatus(path string) (Status, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Status{}, nil
		}
		return Status{}, err
	}
	return ParseStatus(data)
}

// WriteStatus atomically replaces name under w's root with st's
// encoded form, per spec §5's "written atomically by renaming".
func WriteStatus(w *artifact.Writer, name string, st Status) error {
	return w.WriteBytes(name, st.Encode())
}
