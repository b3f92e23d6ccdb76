package wal

import (
	"os"
	"path/filepath"
	"testing"

	dto "github.com/prometheus/client_model/go"

	"github.com/hybriddb/hybriddb/internal/telemetry/metric"
)

func TestPutDeleteAndRecover(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.wal")

	w, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := w.Put("users:1", []byte(`{"name":"ada"}`)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := w.Put("users:2", []byte(`{"name":"grace"}`)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := w.Delete("users:1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	entries, err := Recover(path)
	if err != nil {
		t.Fatalf("Recover() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Recover() returned %d entries, want 3", len(entries))
	}
	if entries[0].Key != "users:1" || entries[0].Tombstone {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[2].Key != "users:1" || !entries[2].Tombstone {
		t.Errorf("entries[2] = %+v, want tombstone for users:1", entries[2])
	}
}

func TestClearTruncatesToHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.wal")
	w, _ := Open(path)
	w.Put("a", []byte("1"))
	w.Put("b", []byte("2"))

	if err := w.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	w.Close()

	entries, err := Recover(path)
	if err != nil {
		t.Fatalf("Recover() error = %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("Recover() after Clear() = %d entries, want 0", len(entries))
	}
}

func TestRecoverToleratesTruncatedFinalEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.wal")
	w, _ := Open(path)
	w.Put("a", []byte("complete"))
	w.Close()

	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	info, _ := f.Stat()
	// Append a truncated header (just 3 bytes of an 8-byte length prefix).
	if _, err := f.WriteAt([]byte{1, 2, 3}, info.Size()); err != nil {
		t.Fatalf("WriteAt() error = %v", err)
	}
	f.Close()

	entries, err := Recover(path)
	if err != nil {
		t.Fatalf("Recover() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Key != "a" {
		t.Fatalf("Recover() = %+v, want one complete entry", entries)
	}
}

func TestPutReportsSyncDurationToRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.wal")
	w, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer w.Close()

	reg := metric.NewRegistry(nil)
	w.SetMetrics(reg)

	if err := w.Put("a", []byte("1")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := w.Put("b", []byte("2")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	var m dto.Metric
	if err := reg.WALSyncDuration.Write(&m); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got := m.GetHistogram().GetSampleCount(); got != 2 {
		t.Errorf("sample count = %d, want 2", got)
	}
}

func TestRecoverMissingFileReturnsEmpty(t *testing.T) {
	entries, err := Recover(filepath.Join(t.TempDir(), "missing.wal"))
	if err != nil {
		t.Fatalf("Recover() error = %v", err)
	}
	if entries != nil {
		t.Fatalf("Recover() = %v, want nil", entries)
	}
}
