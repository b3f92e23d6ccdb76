package appendengine

import (
	"encoding/json"
	"sync"

	"github.com/hybriddb/hybriddb/internal/dberr"
	"github.com/hybriddb/hybriddb/internal/storage/block"
	"github.com/hybriddb/hybriddb/internal/storage/btree"
	"github.com/hybriddb/hybriddb/internal/storage/cache"
	"github.com/hybriddb/hybriddb/internal/telemetry/metric"
)

// Record is a self-describing row: a map of field name to scalar or
// nested value, JSON-encoded into a DATA block.
type Record = map[string]any

// txEntry is one pending transaction-log entry, flushed to a TLOG block
// on Commit.
type txEntry struct {
	Op        string `json:"op"`
	Container string `json:"container"`
	Data      any    `json:"data"`
}

// Engine implements the row-tier storage contract directly on top of an
// append-only database file, a per-container secondary index set and a
// fixed-capacity record cache.
type Engine struct {
	mu sync.Mutex

	fm      *block.FileManager
	meta    *meta
	cache   *cache.Cache[int64, Record]
	metrics *metric.Registry

	// indexes[container][field] is a B-tree mapping field values to
	// the offset of the record that last held that value.
	indexes map[string]map[string]*btree.Index

	pending []txEntry
}

// Options configures a newly opened Engine.
type Options struct {
	CacheCapacity int
	BTreeOrder    int
}

const defaultBTreeOrder = 4

// Open opens (creating if necessary) the database file at path and
// rebuilds every declared secondary index by replaying container
// offsets.
func Open(path string, opts Options) (*Engine, error) {
	fm, err := block.Open(path)
	if err != nil {
		return nil, err
	}

	capacity := opts.CacheCapacity
	if capacity <= 0 {
		capacity = 5000
	}
	c, err := cache.New[int64, Record](capacity)
	if err != nil {
		fm.Close()
		return nil, err
	}

	e := &Engine{
		fm:      fm,
		cache:   c,
		indexes: make(map[string]map[string]*btree.Index),
	}

	order := opts.BTreeOrder
	if order <= 0 {
		order = defaultBTreeOrder
	}

	if err := e.loadMeta(); err != nil {
		fm.Close()
		return nil, err
	}
	if err := e.rebuildIndexes(order); err != nil {
		fm.Close()
		return nil, err
	}

	return e, nil
}

// SetMetrics attaches reg so the record cache reports hit/miss counts
// and every block append reports its type and size into the shared
// registry.
func (e *Engine) SetMetrics(reg *metric.Registry) {
	e.mu.Lock()
	e.metrics = reg
	e.mu.Unlock()
	e.cache.SetMetrics(reg)
}

// appendBlock wraps fm.AppendBlock so every call site reports the
// block's type and size, instead of only the ones an author remembers
// to instrument by hand.
func (e *Engine) appendBlock(t block.Type, payload []byte) (int64, error) {
	offset, err := e.fm.AppendBlock(t, payload)
	if err != nil {
		return 0, err
	}
	if e.metrics != nil {
		e.metrics.BlockAppendsTotal.WithLabelValues(string(t)).Inc()
		e.metrics.BlockBytesTotal.WithLabelValues(string(t)).Add(float64(len(payload)))
	}
	return offset, nil
}

func (e *Engine) loadMeta() error {
	payload, err := e.fm.ReadMeta()
	if dberr.Is(err, dberr.ErrRecordNotFound.Code) {
		e.meta = newMeta()
		return nil
	}
	if err != nil {
		return err
	}

	m := newMeta()
	if err := json.Unmarshal(payload, m); err != nil {
		// A corrupt META block starts empty rather than failing open;
		// existing DATA blocks are still reachable via direct offset.
		e.meta = newMeta()
		return nil
	}
	e.meta = m
	return nil
}

func (e *Engine) rebuildIndexes(order int) error {
	for container, fields := range e.meta.Indexes {
		for field, info := range fields {
			o := info.Order
			if o <= 0 {
				o = order
			}
			if err := e.createIndexLocked(container, field, o); err != nil {
				return err
			}
		}
	}
	return nil
}

// container returns the metadata for name, creating a table-kind entry
// if one does not already exist.
func (e *Engine) container(name, kind string) *containerMeta {
	c, ok := e.meta.Containers[name]
	if !ok {
		c = &containerMeta{Kind: kind}
		e.meta.Containers[name] = c
	}
	return c
}

// Insert serializes record as a DATA block, appends it, records the new
// offset against the container, updates every registered secondary
// index, caches the record as decoded from its JSON payload and logs a
// pending INSERT transaction entry.
func (e *Engine) Insert(container string, record Record) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	payload, err := json.Marshal(record)
	if err != nil {
		return 0, dberr.ErrIO.WithCause(err)
	}

	offset, err := e.appendBlock(block.TypeData, payload)
	if err != nil {
		return 0, err
	}

	c := e.container(container, "table")
	c.Offsets = append(c.Offsets, offset)

	e.updateIndexes(container, record, offset)
	var cached Record
	if err := json.Unmarshal(payload, &cached); err == nil {
		e.cache.Put(offset, cached)
	}
	e.log("INSERT", container, record)

	return offset, nil
}

func (e *Engine) updateIndexes(container string, record Record, offset int64) {
	for field, idx := range e.indexes[container] {
		value, ok := record[field]
		if !ok || value == nil {
			continue
		}
		idx.Insert(value, offset)
	}
}

// Read resolves id to an offset — through the container's "id"/"_id"
// index first, and otherwise, if id is an int64, by taking it as a raw
// offset — and decodes the record there, consulting the cache first.
func (e *Engine) Read(container string, id any) (Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	offset, err := e.resolveOffset(container, id)
	if err != nil {
		return nil, err
	}
	return e.readAt(offset)
}

func (e *Engine) readAt(offset int64) (Record, error) {
	if rec, ok := e.cache.Get(offset); ok {
		return rec, nil
	}

	t, payload, err := e.fm.ReadBlock(offset)
	if err != nil {
		return nil, err
	}
	if t != block.TypeData {
		return nil, dberr.ErrUnknownBlockType.WithDetails(string(t))
	}

	var record Record
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, dberr.ErrIO.WithCause(err)
	}

	e.cache.Put(offset, record)
	return record, nil
}

// ResolveOffset exposes the id-to-offset lookup Read uses internally,
// for adapters that need the current offset of a logical id before
// calling Update or Delete (which both take a raw offset).
func (e *Engine) ResolveOffset(container string, id any) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resolveOffset(container, id)
}

// resolveOffset accepts either a logical id looked up through the
// container's id index or a raw file offset; an int64 that no id index
// holds is taken as an offset.
func (e *Engine) resolveOffset(container string, id any) (int64, error) {
	for _, field := range []string{"id", "_id"} {
		if idx, ok := e.indexes[container][field]; ok {
			if offset, found := idx.Search(id); found {
				return offset, nil
			}
		}
	}

	if offset, ok := id.(int64); ok {
		return offset, nil
	}
	return 0, dberr.ErrRecordNotFound
}

// Update always appends a new DATA block and invalidates the cache
// entry for the offset the caller supplies as the prior version; the
// caller is responsible for splicing the returned offset into the
// container's offset list. Stale index entries for the old offset are
// a documented limitation.
func (e *Engine) Update(container string, oldOffset int64, record Record) (int64, error) {
	e.mu.Lock()
	payload, err := json.Marshal(record)
	if err != nil {
		e.mu.Unlock()
		return 0, dberr.ErrIO.WithCause(err)
	}

	newOffset, err := e.appendBlock(block.TypeData, payload)
	if err != nil {
		e.mu.Unlock()
		return 0, err
	}

	e.updateIndexes(container, record, newOffset)
	e.cache.Invalidate(oldOffset)
	var cached Record
	if err := json.Unmarshal(payload, &cached); err == nil {
		e.cache.Put(newOffset, cached)
	}
	e.log("UPDATE", container, record)
	e.mu.Unlock()

	return newOffset, nil
}

// Delete invalidates the cache entry at offset and logs a pending
// DELETE entry. The underlying DATA block is left in place; the caller
// removes offset from the container's offset list.
func (e *Engine) Delete(container string, offset int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cache.Invalidate(offset)
	e.log("DELETE", container, offset)
	return nil
}

// Scan decodes every offset recorded for container, skipping any block
// that fails to decode so a single corrupt record does not poison the
// whole scan.
func (e *Engine) Scan(container string) ([]Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.meta.Containers[container]
	if !ok {
		return nil, dberr.ErrContainerNotFound
	}

	records := make([]Record, 0, len(c.Offsets))
	for _, offset := range c.Offsets {
		rec, err := e.readAt(offset)
		if err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Offsets returns a copy of container's insertion-ordered offset list,
// for adapters that need to splice or prune it directly.
func (e *Engine) Offsets(container string) []int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.meta.Containers[container]
	if !ok {
		return nil
	}
	out := make([]int64, len(c.Offsets))
	copy(out, c.Offsets)
	return out
}

// SetOffsets replaces container's offset list wholesale, used by
// adapters splicing in an updated offset or pruning a deleted one.
func (e *Engine) SetOffsets(container string, offsets []int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.container(container, "table")
	c.Offsets = append([]int64{}, offsets...)
}

// CreateIndex registers a secondary B-tree index on field for container,
// populated by scanning existing offsets.
func (e *Engine) CreateIndex(container, field string, order int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if order <= 0 {
		order = defaultBTreeOrder
	}
	if _, ok := e.indexes[container][field]; ok {
		return nil
	}
	return e.createIndexLocked(container, field, order)
}

func (e *Engine) createIndexLocked(container, field string, order int) error {
	if _, ok := e.indexes[container]; !ok {
		e.indexes[container] = make(map[string]*btree.Index)
	}
	idx := btree.New(order)
	e.indexes[container][field] = idx

	if _, ok := e.meta.Indexes[container]; !ok {
		e.meta.Indexes[container] = make(map[string]*indexMeta)
	}
	e.meta.Indexes[container][field] = &indexMeta{Order: order}

	c, ok := e.meta.Containers[container]
	if !ok {
		return nil
	}
	for _, offset := range c.Offsets {
		rec, err := e.readAt(offset)
		if err != nil {
			continue
		}
		if value, ok := rec[field]; ok && value != nil {
			idx.Insert(value, offset)
		}
	}
	return nil
}

func (e *Engine) log(op, container string, data any) {
	e.pending = append(e.pending, txEntry{Op: op, Container: container, Data: data})
}

// Commit serializes the accumulated transaction-log entries as one TLOG
// block and appends it.
func (e *Engine) Commit() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.pending) == 0 {
		return nil
	}
	payload, err := json.Marshal(e.pending)
	if err != nil {
		return dberr.ErrIO.WithCause(err)
	}
	if _, err := e.appendBlock(block.TypeTLog, payload); err != nil {
		return err
	}
	e.pending = nil
	return nil
}

// Rollback discards the pending transaction log. DATA blocks already
// written during the "transaction" are not reverted.
func (e *Engine) Rollback() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = nil
}

// Close rewrites the META block in place and closes the file.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	payload, err := json.Marshal(e.meta)
	if err != nil {
		return dberr.ErrIO.WithCause(err)
	}
	if err := e.fm.WriteMeta(payload); err != nil {
		return err
	}
	return e.fm.Close()
}

// Statistics reports file size, container/index counts, pending
// transaction count and cache effectiveness.
type Statistics struct {
	FileSize            int64
	Containers          int
	Indexes             int
	PendingTransactions int
	Cache               cache.Stats
}

// Statistics returns a point-in-time snapshot of engine health.
func (e *Engine) Statistics() (Statistics, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	size, err := e.fm.Size()
	if err != nil {
		return Statistics{}, err
	}

	indexCount := 0
	for _, fields := range e.indexes {
		indexCount += len(fields)
	}

	return Statistics{
		FileSize:            size,
		Containers:          len(e.meta.Containers),
		Indexes:             indexCount,
		PendingTransactions: len(e.pending),
		Cache:               e.cache.Stats(),
	}, nil
}
