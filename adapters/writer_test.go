package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"loadshield/domain"
)

func TestNDJSONWriterFixedKeyOrderAndNewline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.ndjson")
	w, err := NewNDJSONWriter(path, false)
	if err != nil {
		t.Fatalf("NewNDJSONWriter: %v", err)
	}
	if err := w.WriteRow(domain.OutputRow{ID: "1", CustomerID: "2", Accepted: true}); err != nil {
		t.Fatalf("WriteRow: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := `{"id":"1","customer_id":"2","accepted":true}` + "\n"
	if string(data) != want {
		t.Fatalf("output = %q, want %q", data, want)
	}
}

func TestNDJSONWriterAtomicRenameOnClose(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.ndjson")
	w, err := NewNDJSONWriter(path, true)
	if err != nil {
		t.Fatalf("NewNDJSONWriter: %v", err)
	}
	tempPath := path + ".tmp"
	if _, err := os.Stat(tempPath); err != nil {
		t.Fatalf("expected temp file to exist before Close: %v", err)
	}
	if err := w.WriteRow(domain.OutputRow{ID: "1", CustomerID: "2", Accepted: false}); err != nil {
		t.Fatalf("WriteRow: %v", err)
	}
	if _, err := os.Stat(path); err == nil {
		t.Fatal("final path must not exist before Close in atomic mode")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected final path to exist after Close: %v", err)
	}
	if _, err := os.Stat(tempPath); !os.IsNotExist(err) {
		t.Fatalf("expected temp path to be gone after rename, stat err = %v", err)
	}
}

func TestNDJSONWriterAbortLeavesNoFinalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.ndjson")
	w, err := NewNDJSONWriter(path, true)
	if err != nil {
		t.Fatalf("NewNDJSONWriter: %v", err)
	}
	_ = w.WriteRow(domain.OutputRow{ID: "1", CustomerID: "2", Accepted: true})
	w.Abort()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no final file after Abort, stat err = %v", err)
	}
}
