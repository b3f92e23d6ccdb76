package columnar

import (
	"path/filepath"
	"testing"
)

func TestInsertManyAndSelect(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	table, err := store.CreateTable("metrics", Schema{
		"host":    TypeString,
		"latency": TypeFloat64,
	})
	if err != nil {
		t.Fatalf("CreateTable() error = %v", err)
	}

	err = table.InsertMany([]Row{
		{"host": "a", "latency": 1.5},
		{"host": "b", "latency": 2.5},
		{"host": "a", "latency": 3.0},
	})
	if err != nil {
		t.Fatalf("InsertMany() error = %v", err)
	}

	rows := table.Select(func(r Row) bool { return r["host"] == "a" })
	if len(rows) != 2 {
		t.Fatalf("Select() returned %d rows, want 2", len(rows))
	}
}

func TestAggregateFunctions(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	table, err := store.CreateTable("readings", Schema{"value": TypeFloat64})
	if err != nil {
		t.Fatalf("CreateTable() error = %v", err)
	}
	if err := table.InsertMany([]Row{
		{"value": 10.0}, {"value": 20.0}, {"value": 30.0},
	}); err != nil {
		t.Fatalf("InsertMany() error = %v", err)
	}

	cases := []struct {
		fn   string
		want float64
	}{
		{"sum", 60.0},
		{"avg", 20.0},
		{"min", 10.0},
		{"max", 30.0},
		{"count", 3.0},
	}
	for _, tc := range cases {
		got, err := table.Aggregate("value", tc.fn)
		if err != nil {
			t.Fatalf("Aggregate(%q) error = %v", tc.fn, err)
		}
		if got != tc.want {
			t.Fatalf("Aggregate(%q) = %v, want %v", tc.fn, got, tc.want)
		}
	}
}

func TestAggregateUnknownColumn(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	table, err := store.CreateTable("t", Schema{"value": TypeInt64})
	if err != nil {
		t.Fatalf("CreateTable() error = %v", err)
	}
	if _, err := table.Aggregate("missing", "sum"); err == nil {
		t.Fatal("Aggregate() on unknown column should error")
	}
}

func TestReopenReloadsTablesAndData(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	table, err := store.CreateTable("events", Schema{"kind": TypeString, "count": TypeInt64})
	if err != nil {
		t.Fatalf("CreateTable() error = %v", err)
	}
	if err := table.InsertMany([]Row{{"kind": "click", "count": int64(5)}}); err != nil {
		t.Fatalf("InsertMany() error = %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() (reopen) error = %v", err)
	}
	reloaded, err := reopened.Table("events")
	if err != nil {
		t.Fatalf("Table() error = %v", err)
	}
	if reloaded.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", reloaded.Count())
	}
	sum, err := reloaded.Aggregate("count", "sum")
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if sum != 5 {
		t.Fatalf("Aggregate(sum) = %v, want 5", sum)
	}
	_ = filepath.Join(dir, "events.schema.json")
}

func TestCreateTableDuplicateNameErrors(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := store.CreateTable("dup", Schema{"x": TypeInt64}); err != nil {
		t.Fatalf("CreateTable() error = %v", err)
	}
	if _, err := store.CreateTable("dup", Schema{"x": TypeInt64}); err == nil {
		t.Fatal("CreateTable() on duplicate name should error")
	}
}
