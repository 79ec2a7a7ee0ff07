package adapters

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"loadshield/domain"
)

// NDJSONWriter implements steps.RowWriter. When atomic is set it writes to
// a temp file in the same directory as the destination and renames into
// place on Close, so a terminated run leaves no partial output file
// (spec.md §5, §6 output.atomic_replace). Key order is fixed
// (id, customer_id, accepted) with no inter-token whitespace (spec.md §4.8).
type NDJSONWriter struct {
	finalPath string
	tempPath  string
	atomic    bool
	file      *os.File
	buf       *bufio.Writer
}

// NewNDJSONWriter opens the destination (or a sibling temp file when atomic
// replace is enabled).
func NewNDJSONWriter(path string, atomic bool) (*NDJSONWriter, error) {
	w := &NDJSONWriter{finalPath: path, atomic: atomic}
	target := path
	if atomic {
		w.tempPath = path + ".tmp"
		target = w.tempPath
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, fmt.Errorf("adapters: create output dir: %w", err)
	}
	f, err := os.Create(target)
	if err != nil {
		return nil, fmt.Errorf("adapters: create output file: %w", err)
	}
	w.file = f
	w.buf = bufio.NewWriter(f)
	return w, nil
}

// WriteRow marshals row with fixed key order and a trailing newline
// (spec.md §6: byte-exact, fixed key order, trailing newline required).
func (w *NDJSONWriter) WriteRow(row domain.OutputRow) error {
	encoded, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("adapters: encode output row: %w", err)
	}
	if _, err := w.buf.Write(encoded); err != nil {
		return fmt.Errorf("adapters: write output row: %w", err)
	}
	if err := w.buf.WriteByte('\n'); err != nil {
		return fmt.Errorf("adapters: write output newline: %w", err)
	}
	return nil
}

// Close flushes and, for atomic mode, renames the temp file into place.
// Callers must call Close only on a successful run; on abort the temp file
// is left behind (or simply not renamed), never the final path.
func (w *NDJSONWriter) Close() error {
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return fmt.Errorf("adapters: flush output: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("adapters: close output: %w", err)
	}
	if w.atomic {
		if err := os.Rename(w.tempPath, w.finalPath); err != nil {
			return fmt.Errorf("adapters: rename output into place: %w", err)
		}
	}
	return nil
}

// Abort closes the underlying file without renaming, leaving any partial
// output in the temp path (spec.md §5).
func (w *NDJSONWriter) Abort() {
	_ = w.buf.Flush()
	_ = w.file.Close()
}
