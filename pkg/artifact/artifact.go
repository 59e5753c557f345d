// Package artifact writes layer, scan, and status files to disk with
// the same atomic-replace discipline the upstream writer uses: stage
// the full content in a temp file beside the destination, fsync, then
// rename over it. A crash mid-write never leaves a half-written layer
// or scan file for a later batch invocation to pick up.
package artifact

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// Writer writes artifacts under a fixed output root.
type Writer struct {
	root    string
	permF   os.FileMode
	permD   os.FileMode
	bufSize int
}

// New creates a Writer rooted at dir, creating it if absent.
func New(dir string) (*Writer, error) {
	if dir == "" {
		return nil, os.ErrInvalid
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Writer{root: dir, permF: 0o644, permD: 0o755, bufSize: 64 * 1024}, nil
}

// Path returns the absolute path a relative artifact name would be
// written to, without writing anything.
func (w *Writer) Path(name string) string {
	return filepath.Join(w.root, name)
}

// Write atomically replaces name under the writer's root with the
// content read from r.
func (w *Writer) Write(name string, r io.Reader) error {
	dest := filepath.Join(w.root, name)
	if err := os.MkdirAll(filepath.Dir(dest), w.permD); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	_ = os.Chmod(tmpPath, w.permF)

	bw := bufio.NewWriterSize(tmp, w.bufSize)
	if _, err := io.Copy(bw, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// WriteBytes is a convenience wrapper around Write for in-memory content.
func (w *Writer) WriteBytes(name string, data []byte) error {
	return w.Write(name, bytes.NewReader(data))
}
