package lsm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/hybriddb/hybriddb/internal/dberr"
	"github.com/hybriddb/hybriddb/internal/telemetry/metric"
)

func TestPutGetAndDeleteBeforeFlush(t *testing.T) {
	e, err := Open(t.TempDir(), 100)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer e.Close()

	if err := e.Put("users", 1, Record{"name": "ada"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	rec, found, err := e.Get("users", 1)
	if err != nil || !found || rec["name"] != "ada" {
		t.Fatalf("Get() = %v, %v, %v", rec, found, err)
	}

	if err := e.Delete("users", 1); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	_, found, err = e.Get("users", 1)
	if err != nil || found {
		t.Fatalf("Get() after Delete() found = %v, err = %v, want false,nil", found, err)
	}
}

func TestFlushOnCapacityPersistsARun(t *testing.T) {
	e, err := Open(t.TempDir(), 2)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer e.Close()

	e.Put("users", 1, Record{"name": "ada"})
	e.Put("users", 2, Record{"name": "grace"})

	stats := e.Statistics()
	if stats.RunCount != 1 {
		t.Fatalf("RunCount = %d, want 1 after reaching capacity", stats.RunCount)
	}
	if stats.MemtableSize != 0 {
		t.Fatalf("MemtableSize = %d, want 0 after flush", stats.MemtableSize)
	}

	rec, found, err := e.Get("users", 1)
	if err != nil || !found || rec["name"] != "ada" {
		t.Fatalf("Get(1) after flush = %v, %v, %v", rec, found, err)
	}
}

func TestNewerRunWinsOverOlder(t *testing.T) {
	e, err := Open(t.TempDir(), 1)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer e.Close()

	e.Put("users", 1, Record{"name": "v1"}) // flushes to run 1
	e.Put("users", 1, Record{"name": "v2"}) // flushes to run 2, newest-first lookup should win

	rec, found, err := e.Get("users", 1)
	if err != nil || !found || rec["name"] != "v2" {
		t.Fatalf("Get(1) = %v, %v, %v, want name=v2", rec, found, err)
	}
}

func TestScanFoldsRunsAndMemtableWithPrefix(t *testing.T) {
	e, err := Open(t.TempDir(), 10)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer e.Close()

	e.Put("users", 1, Record{"name": "ada"})
	e.Put("accounts", 1, Record{"balance": 5})
	e.Put("users", 2, Record{"name": "grace"})
	e.Delete("users", 1)

	records, err := e.Scan("users")
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(records) != 1 || records[0]["name"] != "grace" {
		t.Fatalf("Scan(users) = %v, want only grace", records)
	}
}

func TestRecoveryReplaysWALIntoMemtable(t *testing.T) {
	dir := t.TempDir()

	e, err := Open(dir, 100)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	e.Put("users", 1, Record{"name": "ada"})
	// Simulate a crash: close the WAL file handle without flushing the
	// MemTable to a run (Close() would flush; we bypass it deliberately).
	e.w.Close()

	reopened, err := Open(dir, 100)
	if err != nil {
		t.Fatalf("reopen Open() error = %v", err)
	}
	defer reopened.Close()

	rec, found, err := reopened.Get("users", 1)
	if err != nil || !found || rec["name"] != "ada" {
		t.Fatalf("Get(1) after recovery = %v, %v, %v", rec, found, err)
	}
}

func TestFirstFlushedRunIsNamedSequenceZero(t *testing.T) {
	dir := t.TempDir()
	e, err := Open(dir, 1)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer e.Close()

	e.Put("users", 1, Record{"name": "ada"})

	if _, err := os.Stat(filepath.Join(dir, "000000.sst")); err != nil {
		t.Fatalf("expected first run at 000000.sst: %v", err)
	}
}

func TestFlushReportsMetrics(t *testing.T) {
	e, err := Open(t.TempDir(), 2)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer e.Close()

	reg := metric.NewRegistry(nil)
	e.SetMetrics(reg)

	e.Put("users", 1, Record{"name": "ada"})
	e.Put("users", 2, Record{"name": "grace"})

	if got := testutil.ToFloat64(reg.WALFlushesTotal); got != 1 {
		t.Errorf("WALFlushesTotal = %v, want 1", got)
	}
	if got := testutil.ToFloat64(reg.SSTableCount); got != 1 {
		t.Errorf("SSTableCount = %v, want 1", got)
	}
	if got := testutil.ToFloat64(reg.MemtableBytes); got != 0 {
		t.Errorf("MemtableBytes = %v, want 0 right after flush", got)
	}
}

func TestCreateIndexUnsupported(t *testing.T) {
	e, err := Open(t.TempDir(), 10)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer e.Close()

	if err := e.CreateIndex("users", "name", 4); !dberr.Is(err, dberr.ErrUnsupported.Code) {
		t.Fatalf("CreateIndex() error = %v, want ErrUnsupported", err)
	}
}
