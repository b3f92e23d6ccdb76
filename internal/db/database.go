package db

import (
	"path/filepath"

	"github.com/hybriddb/hybriddb/internal/dbconfig"
	"github.com/hybriddb/hybriddb/internal/dberr"
	"github.com/hybriddb/hybriddb/internal/storage/appendengine"
	"github.com/hybriddb/hybriddb/internal/storage/columnar"
	"github.com/hybriddb/hybriddb/internal/storage/lsm"
	"github.com/hybriddb/hybriddb/internal/storage/rowengine"
	"github.com/hybriddb/hybriddb/internal/storage/vector"
	"github.com/hybriddb/hybriddb/internal/telemetry/metric"
)

// Database is the single handle a caller opens: one row-tier engine,
// reached through the shared RowEngine interface regardless of which
// concrete engine backs it, plus the columnar and vector stores.
type Database struct {
	cfg      *dbconfig.Config
	row      rowengine.RowEngine
	columnar *columnar.Store
	vector   *vector.Store
	metrics  *metric.Registry
}

// Open opens a Database rooted at cfg.DataDir, choosing the row engine
// named by cfg.Row.Engine and opening the columnar and vector stores
// under their configured subdirectories. A non-nil reg receives every
// metric the opened tiers report; pass nil to run without metrics.
func Open(cfg *dbconfig.Config, reg *metric.Registry) (*Database, error) {
	d := &Database{cfg: cfg, metrics: reg}

	switch cfg.Row.Engine {
	case "lsm":
		engine, err := lsm.Open(filepath.Join(cfg.DataDir, "rows"), cfg.Row.LSM.MemtableCapacity)
		if err != nil {
			return nil, err
		}
		if reg != nil {
			engine.SetMetrics(reg)
		}
		d.row = rowengine.FromLSM(engine)
	case "append":
		engine, err := appendengine.Open(filepath.Join(cfg.DataDir, "rows.hdb"), appendengine.Options{
			CacheCapacity: cfg.Row.AppendTable.CacheCapacity,
			BTreeOrder:    cfg.Row.AppendTable.BTreeOrder,
		})
		if err != nil {
			return nil, err
		}
		if reg != nil {
			engine.SetMetrics(reg)
		}
		d.row = rowengine.FromAppendEngine(engine)
	default:
		return nil, dberr.ErrUnsupported.WithDetails("row engine " + cfg.Row.Engine)
	}

	columnarStore, err := columnar.Open(filepath.Join(cfg.DataDir, cfg.Columnar.Dir))
	if err != nil {
		d.Close()
		return nil, err
	}
	d.columnar = columnarStore

	vectorStore, err := vector.Open(filepath.Join(cfg.DataDir, cfg.Vector.Dir))
	if err != nil {
		d.Close()
		return nil, err
	}
	if reg != nil {
		vectorStore.SetMetrics(reg)
	}
	d.vector = vectorStore

	return d, nil
}

// Config returns the configuration the Database was opened with.
func (d *Database) Config() *dbconfig.Config { return d.cfg }

// Row returns the row-tier engine, shared across the tabular and
// document façades.
func (d *Database) Row() rowengine.RowEngine { return d.row }

// Columnar returns the analytics tier store.
func (d *Database) Columnar() *columnar.Store { return d.columnar }

// Vector returns the embeddings tier store.
func (d *Database) Vector() *vector.Store { return d.vector }

// Close closes the row engine; the columnar and vector stores persist
// each write immediately and hold no open file handles between calls.
func (d *Database) Close() error {
	if d.row == nil {
		return nil
	}
	return d.row.Close()
}

// Statistics reports the row engine's statistics in the map shape
// RowEngine.Stats returns, plus the number of columnar tables and
// vector indexes currently open.
func (d *Database) Statistics() (map[string]any, error) {
	stats, err := d.row.Stats()
	if err != nil {
		return nil, err
	}
	stats["columnar_tables"] = len(d.columnar.Tables())
	stats["vector_indexes"] = len(d.vector.Indexes())
	return stats, nil
}
