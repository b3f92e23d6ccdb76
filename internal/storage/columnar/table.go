package columnar

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/hybriddb/hybriddb/internal/dberr"
)

// Schema maps a column name to its type.
type Schema map[string]ColumnType

// Row is a single record as passed to InsertMany, keyed by column name.
type Row map[string]any

// Table is a batch-appendable, columnar store for a fixed schema: every
// column is a dense typed array, so Aggregate never decodes a row.
type Table struct {
	dir     string
	name    string
	schema  Schema
	order   []string
	columns map[string]*column
	rows    int
}

func newTable(dir, name string, schema Schema) *Table {
	order := make([]string, 0, len(schema))
	columns := make(map[string]*column, len(schema))
	for field, typ := range schema {
		order = append(order, field)
		columns[field] = newColumn(typ)
	}
	sort.Strings(order)
	return &Table{dir: dir, name: name, schema: schema, order: order, columns: columns}
}

// InsertMany appends every row in rows to the table, row by row, one
// value per column, and persists the table once at the end.
func (t *Table) InsertMany(rows []Row) error {
	for _, row := range rows {
		for _, field := range t.order {
			t.columns[field].append(row[field])
		}
		t.rows++
	}
	return t.save()
}

// Select returns every row where predicate(row) is true, materializing
// only the rows selected, reusing the row-shaped Row type for the
// caller's convenience.
func (t *Table) Select(predicate func(Row) bool) []Row {
	var out []Row
	for i := 0; i < t.rows; i++ {
		row := t.rowAt(i)
		if predicate == nil || predicate(row) {
			out = append(out, row)
		}
	}
	return out
}

func (t *Table) rowAt(i int) Row {
	row := make(Row, len(t.order))
	for _, field := range t.order {
		row[field] = t.columns[field].at(i)
	}
	return row
}

// Aggregate supports the vectorized reductions sum, avg, min, max and
// count over a single numeric column, operating directly on the
// column's packed array without building intermediate Row values.
func (t *Table) Aggregate(field, fn string) (float64, error) {
	col, ok := t.columns[field]
	if !ok {
		return 0, dberr.ErrUnknownColumn.WithDetails(field)
	}
	if fn == "count" {
		return float64(col.len()), nil
	}
	if col.typ == TypeString {
		return 0, dberr.ErrColumnTypeMismatch.WithDetails(field + " is not numeric")
	}

	n := col.len()
	if n == 0 {
		return 0, nil
	}

	value := func(i int) float64 {
		if col.typ == TypeInt64 {
			return float64(col.ints[i])
		}
		return col.floats[i]
	}

	switch fn {
	case "sum", "avg", "mean":
		var sum float64
		for i := 0; i < n; i++ {
			sum += value(i)
		}
		if fn == "sum" {
			return sum, nil
		}
		return sum / float64(n), nil
	case "min":
		min := value(0)
		for i := 1; i < n; i++ {
			if v := value(i); v < min {
				min = v
			}
		}
		return min, nil
	case "max":
		max := value(0)
		for i := 1; i < n; i++ {
			if v := value(i); v > max {
				max = v
			}
		}
		return max, nil
	default:
		return 0, dberr.ErrUnsupported.WithDetails("aggregate function " + fn)
	}
}

// Count returns the number of rows inserted so far.
func (t *Table) Count() int { return t.rows }

type tableManifest struct {
	Schema Schema `json:"schema"`
	Rows   int    `json:"rows"`
}

func (t *Table) manifestPath() string {
	return filepath.Join(t.dir, t.name+".schema.json")
}

func (t *Table) columnPath(field string) string {
	return filepath.Join(t.dir, t.name+"."+field+".col")
}

func (t *Table) save() error {
	manifest := tableManifest{Schema: t.schema, Rows: t.rows}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return dberr.ErrIO.WithCause(err)
	}
	if err := os.WriteFile(t.manifestPath(), data, 0o644); err != nil {
		return dberr.ErrIO.WithCause(err)
	}
	for field, col := range t.columns {
		if err := col.save(t.columnPath(field)); err != nil {
			return err
		}
	}
	return nil
}

func loadTable(dir, name string) (*Table, error) {
	manifestPath := filepath.Join(dir, name+".schema.json")
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, dberr.ErrIO.WithCause(err)
	}
	var manifest tableManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, dberr.ErrIO.WithCause(err)
	}

	t := newTable(dir, name, manifest.Schema)
	t.rows = manifest.Rows
	for field := range manifest.Schema {
		col, err := loadColumn(t.columnPath(field))
		if err != nil {
			return nil, err
		}
		t.columns[field] = col
	}
	return t, nil
}
