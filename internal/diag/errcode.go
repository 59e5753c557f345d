package diag

import (
	"context"
	"errors"
	"net"
	"os"
	"time"

	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/internal/config"
	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/internal/ingest"
)

// Code is the minimal error classification used for log/metric
// aggregation, per spec §7's error kinds plus Cancel/Unknown. It is
// decoupled from process exit codes.
type Code string

const (
	CodeUnknown  Code = "unknown"
	CodeConfig   Code = "config"
	CodeGeometry Code = "geometry"
	CodeIO       Code = "io"
	CodeCancel   Code = "cancel"
)

// Classify maps an error onto a Code using sentinel errors and stdlib
// error types only, never string matching, per spec §7's error-kind
// taxonomy:
//   - Configuration: config.ErrInvalid
//   - Input geometry: ingest.ErrMissingSTL
//   - I/O: *os.PathError / net.Error
//
// Algorithmic (non-fatal) cases never reach here: offsetting that
// eliminates every polygon and odd-intersection-count hatch lines are
// handled locally by producing a smaller output, per spec §7's
// propagation policy, so there is no error value to classify for them.
func Classify(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCancel
	}
	if errors.Is(err, config.ErrInvalid) {
		return CodeConfig
	}
	if errors.Is(err, ingest.ErrMissingSTL) {
		return CodeGeometry
	}
	var perr *os.PathError
	if errors.As(err, &perr) {
		return CodeIO
	}
	var nerr net.Error
	if errors.As(err, &nerr) {
		return CodeIO
	}
	return CodeUnknown
}

// NowUTC returns the current time as an RFC3339 UTC string, used for
// the structured log event's ts field.
func NowUTC() string { return time.Now().UTC().Format(time.RFC3339) }
