package adapters

import (
	"sync"

	"github.com/hybriddb/hybriddb/internal/dberr"
	"github.com/hybriddb/hybriddb/internal/storage/rowengine"
)

// Schema maps a column name to a declared type name: "int"/"integer",
// "string"/"str", "float", "bool"/"boolean". Unknown type names pass
// validation unchecked.
type Schema map[string]string

// Table is a schema-checked tabular façade over a RowEngine, assigning
// auto-increment integer ids the way the row-tier engine it replaces
// does: the next id is always one past the highest id ever seen,
// whether assigned automatically or supplied by the caller.
type Table struct {
	mu     sync.Mutex
	name   string
	schema Schema
	engine rowengine.RowEngine
	nextID int64
}

// NewTable creates a tabular façade over engine for container name,
// with the given column schema, and ensures an id index exists.
func NewTable(name string, schema Schema, engine rowengine.RowEngine) (*Table, error) {
	t := &Table{name: name, schema: schema, engine: engine}
	if err := engine.CreateIndex(name, "id", 2); err != nil && !dberr.Is(err, dberr.ErrUnsupported.Code) {
		return nil, err
	}
	return t, nil
}

// Insert validates record against the schema, assigns an id if absent,
// and stores it.
func (t *Table) Insert(record rowengine.Record) (any, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.validate(record); err != nil {
		return nil, err
	}

	if id, ok := record["id"]; ok {
		if n, ok := toInt64ID(id); ok && n > t.nextID {
			t.nextID = n
		}
	} else {
		t.nextID++
		record["id"] = t.nextID
	}

	if _, err := t.engine.Insert(t.name, record); err != nil {
		return nil, err
	}
	return record["id"], nil
}

func toInt64ID(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func (t *Table) validate(record rowengine.Record) error {
	for column, value := range record {
		if column == "id" {
			continue
		}
		expected, declared := t.schema[column]
		if !declared {
			return dberr.ErrUnknownColumn.WithDetails(column)
		}
		if !checkType(value, expected) {
			return dberr.ErrColumnTypeMismatch.WithDetails(column)
		}
	}
	return nil
}

func checkType(value any, expected string) bool {
	switch expected {
	case "int", "integer":
		switch v := value.(type) {
		case int, int64:
			return true
		case float64:
			// A column untouched by an $set still round-trips through
			// Scan's JSON decode as float64; treat a whole number as the
			// int it started out as rather than rejecting the update.
			return v == float64(int64(v))
		default:
			return false
		}
	case "str", "string":
		_, ok := value.(string)
		return ok
	case "float":
		switch value.(type) {
		case float32, float64:
			return true
		default:
			return false
		}
	case "bool", "boolean":
		_, ok := value.(bool)
		return ok
	default:
		return true
	}
}

// Select returns every row matching where, or every row when where is
// nil.
func (t *Table) Select(where Where) ([]rowengine.Record, error) {
	rows, err := t.engine.Scan(t.name)
	if err != nil {
		return nil, err
	}
	if where == nil {
		return rows, nil
	}

	var out []rowengine.Record
	for _, row := range rows {
		if matches(row, where) {
			out = append(out, row)
		}
	}
	return out, nil
}

// Update applies updates (a shallow field merge) to every row matching
// where, re-validating the merged record before writing it back.
func (t *Table) Update(where Where, updates rowengine.Record) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows, err := t.engine.Scan(t.name)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, row := range rows {
		if !matches(row, where) {
			continue
		}
		for field, value := range updates {
			row[field] = value
		}
		if err := t.validate(row); err != nil {
			return count, err
		}
		if _, err := t.engine.Update(t.name, row["id"], row); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// Delete removes every row matching where.
func (t *Table) Delete(where Where) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows, err := t.engine.Scan(t.name)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, row := range rows {
		if !matches(row, where) {
			continue
		}
		if err := t.engine.Delete(t.name, row["id"]); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// CreateIndex creates a secondary index on column, which must be part
// of the schema or the id column.
func (t *Table) CreateIndex(column string) error {
	if _, declared := t.schema[column]; !declared && column != "id" {
		return dberr.ErrUnknownColumn.WithDetails(column)
	}
	return t.engine.CreateIndex(t.name, column, 2)
}

// Count returns the number of rows currently in the table.
func (t *Table) Count() (int, error) {
	rows, err := t.engine.Scan(t.name)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// Describe reports the table's name, schema and current row count.
type Description struct {
	Name        string
	Schema      Schema
	RecordCount int
}

func (t *Table) Describe() (Description, error) {
	count, err := t.Count()
	if err != nil {
		return Description{}, err
	}
	return Description{Name: t.name, Schema: t.schema, RecordCount: count}, nil
}
