package db

import (
	"testing"

	"github.com/hybriddb/hybriddb/internal/dbconfig"
	"github.com/hybriddb/hybriddb/internal/storage/columnar"
	"github.com/hybriddb/hybriddb/internal/storage/rowengine"
	"github.com/hybriddb/hybriddb/internal/telemetry/metric"
)

func testConfig(t *testing.T, engine string) *dbconfig.Config {
	t.Helper()
	cfg := dbconfig.Default()
	cfg.DataDir = t.TempDir()
	cfg.Row.Engine = engine
	return cfg
}

func TestOpenAppendEngineWiresAllTiers(t *testing.T) {
	database, err := Open(testConfig(t, "append"), metric.NewRegistry(nil))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer database.Close()

	if _, err := database.Row().Insert("users", rowengine.Record{"id": int64(1), "name": "ada"}); err != nil {
		t.Fatalf("Row().Insert() error = %v", err)
	}

	if _, err := database.Columnar().CreateTable("events", columnar.Schema{"status": columnar.TypeInt64}); err != nil {
		t.Fatalf("Columnar().CreateTable() error = %v", err)
	}

	if _, err := database.Vector().CreateIndex("embeddings", 2); err != nil {
		t.Fatalf("Vector().CreateIndex() error = %v", err)
	}
}

func TestOpenLSMEngine(t *testing.T) {
	database, err := Open(testConfig(t, "lsm"), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer database.Close()

	if _, err := database.Row().Insert("users", rowengine.Record{"id": "u1", "name": "grace"}); err != nil {
		t.Fatalf("Row().Insert() error = %v", err)
	}
	rec, err := database.Row().Read("users", "u1")
	if err != nil || rec["name"] != "grace" {
		t.Fatalf("Row().Read() = %v, %v", rec, err)
	}
}

func TestOpenUnsupportedRowEngine(t *testing.T) {
	if _, err := Open(testConfig(t, "mystery"), nil); err == nil {
		t.Fatal("Open() with an unsupported row engine should error")
	}
}

func TestStatisticsReportsTierCounts(t *testing.T) {
	database, err := Open(testConfig(t, "append"), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer database.Close()

	if _, err := database.Columnar().CreateTable("events", nil); err != nil {
		t.Fatalf("CreateTable() error = %v", err)
	}
	if _, err := database.Vector().CreateIndex("embeddings", 3); err != nil {
		t.Fatalf("CreateIndex() error = %v", err)
	}

	stats, err := database.Statistics()
	if err != nil {
		t.Fatalf("Statistics() error = %v", err)
	}
	if stats["columnar_tables"] != 1 {
		t.Errorf("columnar_tables = %v, want 1", stats["columnar_tables"])
	}
	if stats["vector_indexes"] != 1 {
		t.Errorf("vector_indexes = %v, want 1", stats["vector_indexes"])
	}
}
