package rowengine

import (
	"github.com/hybriddb/hybriddb/internal/dberr"
	"github.com/hybriddb/hybriddb/internal/storage/appendengine"
	"github.com/hybriddb/hybriddb/internal/storage/lsm"
)

type appendEngineAdapter struct {
	e *appendengine.Engine
}

// FromAppendEngine adapts an *appendengine.Engine to the RowEngine
// interface.
func FromAppendEngine(e *appendengine.Engine) RowEngine {
	return &appendEngineAdapter{e: e}
}

func (a *appendEngineAdapter) Insert(container string, record Record) (any, error) {
	offset, err := a.e.Insert(container, record)
	return offset, err
}

func (a *appendEngineAdapter) Read(container string, id any) (Record, error) {
	return a.e.Read(container, id)
}

// Update resolves id (a raw offset or a logical id reachable through
// the id index) to the record's current offset, appends the new
// version, and splices the new offset into the container's offset
// list in place of the old one so Scan sees the update.
func (a *appendEngineAdapter) Update(container string, id any, record Record) (any, error) {
	oldOffset, err := a.e.ResolveOffset(container, id)
	if err != nil {
		return nil, err
	}

	newOffset, err := a.e.Update(container, oldOffset, record)
	if err != nil {
		return nil, err
	}

	offsets := a.e.Offsets(container)
	for i, o := range offsets {
		if o == oldOffset {
			offsets[i] = newOffset
			break
		}
	}
	a.e.SetOffsets(container, offsets)

	return newOffset, nil
}

// Delete resolves id the same way Update does, then removes its
// offset from the container's offset list: the engine's own Delete
// only logs the operation and invalidates the cache, per the
// documented limitation that it does not reclaim space.
func (a *appendEngineAdapter) Delete(container string, id any) error {
	offset, err := a.e.ResolveOffset(container, id)
	if err != nil {
		return err
	}
	if err := a.e.Delete(container, offset); err != nil {
		return err
	}

	offsets := a.e.Offsets(container)
	pruned := offsets[:0]
	for _, o := range offsets {
		if o != offset {
			pruned = append(pruned, o)
		}
	}
	a.e.SetOffsets(container, pruned)
	return nil
}

func (a *appendEngineAdapter) Scan(container string) ([]Record, error) {
	return a.e.Scan(container)
}

func (a *appendEngineAdapter) CreateIndex(container, field string, order int) error {
	return a.e.CreateIndex(container, field, order)
}

func (a *appendEngineAdapter) Commit() error {
	return a.e.Commit()
}

func (a *appendEngineAdapter) Rollback() {
	a.e.Rollback()
}

func (a *appendEngineAdapter) Close() error {
	return a.e.Close()
}

func (a *appendEngineAdapter) Stats() (map[string]any, error) {
	s, err := a.e.Statistics()
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"file_size":            s.FileSize,
		"containers":           s.Containers,
		"indexes":              s.Indexes,
		"pending_transactions": s.PendingTransactions,
		"cache_hit_ratio":      s.Cache.HitRatio,
	}, nil
}

type lsmAdapter struct {
	e *lsm.Engine
}

// FromLSM adapts an *lsm.Engine to the RowEngine interface. Insert
// requires record to carry an "id" or "_id" field, since the LSM
// engine composes its key from a caller-supplied logical id rather
// than assigning an offset.
func FromLSM(e *lsm.Engine) RowEngine {
	return &lsmAdapter{e: e}
}

func recordID(record Record) (any, bool) {
	if id, ok := record["id"]; ok {
		return id, true
	}
	if id, ok := record["_id"]; ok {
		return id, true
	}
	return nil, false
}

func (a *lsmAdapter) Insert(container string, record Record) (any, error) {
	id, ok := recordID(record)
	if !ok {
		return nil, dberr.ErrSchemaViolation.WithDetails("lsm engine requires an id or _id field")
	}
	if err := a.e.Put(container, id, record); err != nil {
		return nil, err
	}
	return id, nil
}

func (a *lsmAdapter) Read(container string, id any) (Record, error) {
	rec, found, err := a.e.Get(container, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, dberr.ErrRecordNotFound
	}
	return rec, nil
}

func (a *lsmAdapter) Update(container string, id any, record Record) (any, error) {
	if err := a.e.Put(container, id, record); err != nil {
		return nil, err
	}
	return id, nil
}

func (a *lsmAdapter) Delete(container string, id any) error {
	return a.e.Delete(container, id)
}

func (a *lsmAdapter) Scan(container string) ([]Record, error) {
	return a.e.Scan(container)
}

func (a *lsmAdapter) CreateIndex(container, field string, order int) error {
	return a.e.CreateIndex(container, field, order)
}

func (a *lsmAdapter) Commit() error {
	return a.e.Commit()
}

func (a *lsmAdapter) Rollback() {
	a.e.Rollback()
}

func (a *lsmAdapter) Close() error {
	return a.e.Close()
}

func (a *lsmAdapter) Stats() (map[string]any, error) {
	s := a.e.Statistics()
	return map[string]any{
		"memtable_size": s.MemtableSize,
		"run_count":     s.RunCount,
	}, nil
}
