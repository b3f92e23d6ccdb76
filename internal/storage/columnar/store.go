package columnar

import (
	"os"
	"path/filepath"

	"github.com/hybriddb/hybriddb/internal/dberr"
	"github.com/hybriddb/hybriddb/pkg/cmap"
)

// Store manages the set of columnar tables persisted under a single
// directory, each with its own schema manifest and per-column blobs.
// Tables are independent once loaded, so a sharded map avoids
// contending on one lock across unrelated tables.
type Store struct {
	dir    string
	tables *cmap.Map[string, *Table]
}

// Open opens (or creates) a columnar store rooted at dir, loading every
// table manifest already present.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, dberr.ErrIO.WithCause(err)
	}
	s := &Store{dir: dir, tables: cmap.New[string, *Table]()}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, dberr.ErrIO.WithCause(err)
	}
	const suffix = ".schema.json"
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || len(name) <= len(suffix) || name[len(name)-len(suffix):] != suffix {
			continue
		}
		tableName := name[:len(name)-len(suffix)]
		table, err := loadTable(dir, tableName)
		if err != nil {
			return nil, err
		}
		s.tables.Set(tableName, table)
	}
	return s, nil
}

// CreateTable defines a new table with the given schema, persisting an
// empty manifest immediately so it survives a reopen even with zero
// rows.
func (s *Store) CreateTable(name string, schema Schema) (*Table, error) {
	table := newTable(s.dir, name, schema)
	if !s.tables.SetIfAbsent(name, table) {
		return nil, dberr.ErrSchemaViolation.WithDetails("table " + name + " already exists")
	}
	if err := table.save(); err != nil {
		s.tables.Delete(name)
		return nil, err
	}
	return table, nil
}

// Table returns the named table, or ErrContainerNotFound.
func (s *Store) Table(name string) (*Table, error) {
	table, ok := s.tables.Get(name)
	if !ok {
		return nil, dberr.ErrContainerNotFound.WithDetails(name)
	}
	return table, nil
}

// Tables returns the names of every table in the store.
func (s *Store) Tables() []string {
	return s.tables.Keys()
}

func (s *Store) Dir() string { return filepath.Clean(s.dir) }
