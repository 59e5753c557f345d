package diag

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/internal/config"
	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/internal/ingest"
)

func TestRotatingFile(t *testing.T) {
	dir := t.TempDir()
	w := NewRotatingFile(dir, 30)
	if err := w.WriteLine([]byte("first line that is very long")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.WriteLine([]byte("second")); err != nil {
		t.Fatalf("second write: %v", err)
	}
	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(files) < 2 {
		t.Fatalf("expected rotated file, got %d entries", len(files))
	}
}

func TestRotatingFileRotateFiles(t *testing.T) {
	dir := t.TempDir()
	w := NewRotatingFile(dir, 10)
	for i := 0; i < 5; i++ {
		if err := w.WriteLine([]byte("xxxxxxxxxxxxxxxxxx")); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	hasCurrent, hasRotated := false, false
	for _, e := range ents {
		if strings.HasSuffix(e.Name(), "genscan-current.txt") {
			hasCurrent = true
		}
		if strings.HasPrefix(e.Name(), "genscan-") && strings.HasSuffix(e.Name(), ".txt") && !strings.Contains(e.Name(), "current") {
			hasRotated = true
		}
	}
	if !hasCurrent || !hasRotated {
		t.Fatalf("expect both current and rotated files, got current=%v rotated=%v", hasCurrent, hasRotated)
	}
}

func TestRotatingFileEnsureAndRotate(t *testing.T) {
	dir := t.TempDir()
	w := NewRotatingFile(dir, 1024)
	if err := w.ensureOpen(); err != nil {
		t.Fatalf("ensureOpen: %v", err)
	}
	if w.f == nil {
		t.Fatalf("file should be opened")
	}
	if err := w.rotate(); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(ents) < 2 {
		t.Fatalf("expect >=2 files, got %d", len(ents))
	}
}

func TestMetricsNoop(t *testing.T) {
	IncOp("comp", "stage", "success")
	IncError("comp", "code")
	ObserveDuration("comp", "stage", 1)
}

func TestClassify(t *testing.T) {
	if CodeConfig != Classify(fmt.Errorf("%w: bad", config.ErrInvalid)) {
		t.Fatalf("config classification wrong")
	}
	if CodeGeometry != Classify(fmt.Errorf("%w: part x", ingest.ErrMissingSTL)) {
		t.Fatalf("geometry classification wrong")
	}
	if CodeCancel != Classify(context.Canceled) {
		t.Fatalf("cancel classification wrong")
	}
	err := &fs.PathError{Op: "open", Path: "/", Err: errors.New("x")}
	if CodeIO != Classify(err) {
		t.Fatalf("io classification wrong")
	}
	nerr := &net.DNSError{Err: "x"}
	if CodeIO != Classify(nerr) {
		t.Fatalf("net error should classify as io")
	}
	if CodeUnknown != Classify(errors.New("other")) {
		t.Fatalf("unknown classification wrong")
	}
}

func TestLogger(t *testing.T) {
	l := NewLogger("run", "debug")
	l.sink = nil // avoid touching the filesystem
	timer := l.Start("comp", "msg")
	timer.Finish("ok", 1)
	timer = l.StartLayer("comp", "msg", 3)
	timer.Finish("ok", 1)
	timer = l.StartTrajectory("comp", "msg", 3, -1)
	timer.Finish("ok", 1)
	l.Error("comp", "code", "msg", nil)
	l.ErrorLayer("comp", "code", "msg", nil, 3)
	l.ErrorWithKV("comp", "code", "msg", nil, 3, map[string]string{"tag": "core"})
	l.InfoFinish("comp", "msg", time.Now(), 1)
	l.DebugStart("comp", "msg", 3, nil)
}

func TestNowUTC(t *testing.T) {
	if NowUTC() == "" {
		t.Fatalf("expected non-empty timestamp")
	}
}

func TestTerminalNonTTYFlow(t *testing.T) {
	var sb strings.Builder
	term := NewTerminal(&sb, true)
	if term.isTTY {
		t.Fatalf("expect non-tty")
	}
	term.RunStart("/out")
	term.LayerStart("layer 1..25", 12)
	term.LayerProgress(6, 12, 0) // non-TTY: no progress line
	term.LayerFinish(true, 5100*time.Millisecond)
	term.RunFinish(true, 41300*time.Millisecond)

	out := sb.String()
	if strings.Contains(out, "\r") {
		t.Fatalf("non-tty output should not contain carriage returns: %q", out)
	}
	if !strings.Contains(out, "[run] output=/out") {
		t.Fatalf("missing run line: %q", out)
	}
	if !strings.Contains(out, "[layer] layer 1..25 | planned trajectories=12") {
		t.Fatalf("missing layer line: %q", out)
	}
	if !strings.Contains(out, "[done] layer 1..25 | trajectories 12 | elapsed 5.1s") {
		t.Fatalf("missing done line: %q", out)
	}
	if !strings.Contains(out, "[ok] batch complete | layer ranges 1 | elapsed 41.3s") {
		t.Fatalf("missing ok line: %q", out)
	}
}

func TestTerminalTTYProgressThrottleAndClear(t *testing.T) {
	var sb strings.Builder
	term := NewTerminal(&sb, true)
	term.isTTY = true
	term.RunStart("/out")
	term.LayerStart("layer 1..3", 3)

	term.LayerProgress(1, 3, 0)
	first := sb.String()
	if !strings.Contains(first, "\r[") {
		t.Fatalf("first progress should be inline with CR: %q", first)
	}
	term.LayerProgress(2, 3, 1)
	second := sb.String()
	if second != first {
		t.Fatalf("second progress should be throttled; got changed output")
	}
	time.Sleep(120 * time.Millisecond)
	term.LayerProgress(2, 3, 1)
	third := sb.String()
	if len(third) <= len(second) {
		t.Fatalf("third progress should append output")
	}
	term.LayerFinish(false, 2200*time.Millisecond)
	final := sb.String()
	if !strings.Contains(final, "[fail]") {
		t.Fatalf("finish should include fail line: %q", final)
	}
	idx := strings.LastIndex(final, "[fail]")
	seg := final[:idx]
	if !strings.Contains(seg, "\r") {
		t.Fatalf("should contain carriage return before fail line")
	}
	cr := strings.LastIndex(seg, "\r")
	if cr >= 0 {
		trail := seg[cr+1:]
		if !strings.Contains(trail, " ") {
			t.Fatalf("clear tail should write spaces after CR: %q", trail)
		}
	}
}

type flakyWriter struct{ fail bool }

func (w *flakyWriter) Write(p []byte) (int, error) {
	if w.fail {
		w.fail = false
		return 0, fmt.Errorf("boom")
	}
	return len(p), nil
}

func TestTerminalDisableOnWriteError(t *testing.T) {
	fw := &flakyWriter{fail: true}
	term := NewTerminal(fw, true)
	term.isTTY = false
	term.RunStart("/out")
	if term.enabled {
		t.Fatalf("terminal should be disabled after write error")
	}
	term.LayerStart("x", 0)
	term.LayerProgress(0, 0, 0)
	term.LayerFinish(true, 0)
	term.RunFinish(true, 0)
}

func TestHelpers(t *testing.T) {
	if safe("a\nb\rc") != "a b c" {
		t.Fatalf("safe replace failed")
	}
	if formatDur(0) != "0ms" {
		t.Fatalf("formatDur 0ms failed")
	}
	if formatDur(1500*time.Millisecond) != "1.5s" {
		t.Fatalf("formatDur 1.5s failed: %s", formatDur(1500*time.Millisecond))
	}
	SetTerminal(nil)
	if GetTerminal() != nil {
		t.Fatalf("expected nil terminal")
	}
	t1 := NewTerminal(os.Stderr, false)
	SetTerminal(t1)
	if GetTerminal() == nil {
		t.Fatalf("expected non-nil terminal")
	}
}

func TestNewTerminalWithFile(t *testing.T) {
	term := NewTerminal(os.Stderr, true)
	if term == nil {
		t.Fatalf("nil term")
	}
}

func TestLoggerWithSink(t *testing.T) {
	l := NewLogger("run", "info")
	timer := l.Start("comp", "msg")
	timer.Finish("ok", 1)
	l.Error("comp", "code", "msg", nil)
	if _, err := os.Stat("logs/genscan-current.txt"); err != nil {
		t.Fatalf("log file not found: %v", err)
	}
}

func TestLoggerLevelsAndFilter(t *testing.T) {
	if Warn.String() != "warn" {
		t.Fatalf("warn string")
	}
	var unknown Level = 12345
	if unknown.String() != "info" {
		t.Fatalf("default string")
	}
	_ = NewLogger("c", "warn")
	l := NewLogger("c", "info")
	l.DebugStart("comp", "msg", 1, nil)
	start := time.Now().Add(-10 * time.Millisecond)
	l.Error("comp", "code", "msg", &start)
	l.ErrorLayer("comp", "code", "msg", &start, 1)
	var tnil *Timer
	tnil.Finish("x", 0)
	(&Timer{}).Finish("x", 0)
}

func TestRotatingFileDefaultsAndRotateNoOpen(t *testing.T) {
	dir := t.TempDir()
	w := NewRotatingFile(dir, 0)
	if err := w.WriteLine([]byte("a")); err != nil {
		t.Fatalf("write: %v", err)
	}
	w.f = nil
	if err := w.rotate(); err != nil {
		t.Fatalf("rotate: %v", err)
	}
}

func TestTerminalInlineWriteError(t *testing.T) {
	fw := &flakyWriter{fail: true}
	term := NewTerminal(fw, true)
	term.isTTY = true
	term.LayerStart("f", 2)
	term.LayerProgress(1, 2, 0)
	if term.enabled {
		t.Fatalf("terminal should be disabled after inline error")
	}
}

func TestNewTerminalCIEnv(t *testing.T) {
	t.Setenv("CI", "true")
	var sb strings.Builder
	term := NewTerminal(&sb, true)
	if term.isTTY {
		t.Fatalf("CI env should force non-tty")
	}
}

func TestTerminalNilReceiverNoop(t *testing.T) {
	var tn *Terminal
	tn.RunStart("x")
	tn.LayerStart("a", 1)
	tn.LayerProgress(0, 0, 0)
	tn.LayerFinish(true, 0)
	tn.RunFinish(true, 0)
}
