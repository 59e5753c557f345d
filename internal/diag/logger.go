package diag

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// Level is a log severity.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Logger is a minimal structured logger: one JSON object per line,
// written through a size-rotated sink (or stderr with no sink).
type Logger struct {
	runID string
	level Level
	sink  *RotatingFile
	mu    sync.Mutex
}

// NewLogger builds a Logger at the given level, writing to "logs"
// with 10 MiB rotation.
func NewLogger(runID, level string) *Logger {
	lvl := parseLevel(strings.TrimSpace(level))
	sink := NewRotatingFile("logs", 10*1024*1024)
	return &Logger{runID: runID, level: lvl, sink: sink}
}

func parseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return Debug
	case "warn":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

// Event is the standard log line shape. Comp names a component
// (ingest, offset, hatch, contour, trajectory, layerpipeline, batch);
// Stage is start|finish|error.
type Event struct {
	Level   string            `json:"level"`
	TS      string            `json:"ts"`
	RunID   string            `json:"run_id"`
	Comp    string            `json:"comp"`
	Stage   string            `json:"stage"`
	Code    string            `json:"code,omitempty"`
	DurMS   int64             `json:"dur_ms,omitempty"`
	Count   int64             `json:"count,omitempty"`
	Layer   string            `json:"layer,omitempty"`
	Trajectory string         `json:"trajectory,omitempty"`
	Msg     string            `json:"msg"`
	KV      map[string]string `json:"kv,omitempty"`
}

func (l *Logger) log(lv Level, ev Event) {
	if lv < l.level {
		return
	}
	ev.Level = lv.String()
	ev.TS = NowUTC()
	ev.RunID = l.runID
	b, _ := json.Marshal(ev)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sink == nil {
		_, _ = os.Stderr.Write(append(b, '\n'))
		return
	}
	if err := l.sink.WriteLine(b); err != nil {
		fmt.Fprintf(os.Stderr, "logger sink error: %v\n", err)
		_, _ = os.Stderr.Write(append(b, '\n'))
	}
}

// Start logs a start event and returns a Timer for the matching Finish.
func (l *Logger) Start(comp, msg string) *Timer {
	l.log(Info, Event{Comp: comp, Stage: "start", Msg: msg})
	return &Timer{l: l, comp: comp, t0: time.Now()}
}

// StartLayer logs a start event tagged with the layer index being
// processed.
func (l *Logger) StartLayer(comp, msg string, layer int) *Timer {
	layerID := itoa(layer)
	l.log(Info, Event{Comp: comp, Stage: "start", Layer: layerID, Msg: msg})
	return &Timer{l: l, comp: comp, layer: layerID, t0: time.Now()}
}

// StartTrajectory logs a start event tagged with both the layer index
// and the trajectory number being built.
func (l *Logger) StartTrajectory(comp, msg string, layer, trajectory int) *Timer {
	layerID, trajID := itoa(layer), itoa(trajectory)
	l.log(Info, Event{Comp: comp, Stage: "start", Layer: layerID, Trajectory: trajID, Msg: msg})
	return &Timer{l: l, comp: comp, layer: layerID, trajectory: trajID, t0: time.Now()}
}

// Error logs an error event; it is never sampled.
func (l *Logger) Error(comp, code, msg string, durSince *time.Time) {
	var dur int64
	if durSince != nil {
		dur = time.Since(*durSince).Milliseconds()
	}
	l.log(Error, Event{Comp: comp, Stage: "error", Code: code, DurMS: dur, Msg: msg})
}

// ErrorLayer logs an error event tagged with the layer index.
func (l *Logger) ErrorLayer(comp, code, msg string, durSince *time.Time, layer int) {
	var dur int64
	if durSince != nil {
		dur = time.Since(*durSince).Milliseconds()
	}
	l.log(Error, Event{Comp: comp, Stage: "error", Code: code, DurMS: dur, Msg: msg, Layer: itoa(layer)})
}

// ErrorWithKV logs an error event with extra key/value context (e.g.
// a part ID or region tag).
func (l *Logger) ErrorWithKV(comp, code, msg string, durSince *time.Time, layer int, kv map[string]string) {
	var dur int64
	if durSince != nil {
		dur = time.Since(*durSince).Milliseconds()
	}
	l.log(Error, Event{Comp: comp, Stage: "error", Code: code, DurMS: dur, Msg: msg, Layer: itoa(layer), KV: kv})
}

// InfoFinish logs a finish event given an already-known start time.
func (l *Logger) InfoFinish(comp, msg string, start time.Time, count int64) {
	l.log(Info, Event{Comp: comp, Stage: "finish", DurMS: time.Since(start).Milliseconds(), Count: count, Msg: msg})
}

// Timer tracks one start->finish span.
type Timer struct {
	l          *Logger
	comp       string
	layer      string
	trajectory string
	t0         time.Time
}

// Finish logs the matching finish event, with an optional count (e.g.
// segments emitted).
func (t *Timer) Finish(msg string, count int64) {
	if t == nil || t.l == nil {
		return
	}
	t.l.log(Info, Event{Comp: t.comp, Stage: "finish", DurMS: time.Since(t.t0).Milliseconds(), Count: count, Layer: t.layer, Trajectory: t.trajectory, Msg: msg})
}

// DebugStart logs a debug-level start event (visible only at
// level=debug).
func (l *Logger) DebugStart(comp, msg string, layer int, kv map[string]string) {
	l.log(Debug, Event{Comp: comp, Stage: "start", Layer: itoa(layer), Msg: msg, KV: kv})
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
