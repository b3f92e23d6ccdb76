package lsm

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/hybriddb/hybriddb/internal/dberr"
	"github.com/hybriddb/hybriddb/internal/storage/memtable"
	"github.com/hybriddb/hybriddb/internal/storage/sstable"
	"github.com/hybriddb/hybriddb/internal/storage/wal"
	"github.com/hybriddb/hybriddb/internal/telemetry/metric"
)

// Record is a self-describing row, JSON-encoded into the WAL/MemTable/
// run value slot.
type Record = map[string]any

const runExt = ".sst"

// Engine implements the row-tier storage contract as a log-structured
// merge engine: one WAL-backed MemTable and a newest-first list of
// immutable on-disk runs.
type Engine struct {
	mu sync.Mutex

	dir string
	w   *wal.WAL
	mem *memtable.MemTable

	// runs is ordered newest-first for point lookups; Scan folds it
	// in reverse (oldest-first) so later writers win.
	runs    []*sstable.Run
	nextSeq int

	metrics *metric.Registry
}

// SetMetrics attaches reg so WAL fsyncs, MemTable flushes and the
// current run count report into the shared registry. A nil registry
// disables reporting.
func (e *Engine) SetMetrics(reg *metric.Registry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.metrics = reg
	e.w.SetMetrics(reg)
	if reg != nil {
		reg.MemtableBytes.Set(float64(e.mem.Bytes()))
		reg.SSTableCount.Set(float64(len(e.runs)))
	}
}

// Open opens (creating if necessary) the LSM engine rooted at dir,
// replaying the WAL into a fresh MemTable and listing existing runs
// newest-first.
func Open(dir string, memtableCapacity int) (*Engine, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, dberr.ErrIO.WithCause(err)
	}

	walPath := filepath.Join(dir, "wal.log")
	w, err := wal.Open(walPath)
	if err != nil {
		return nil, err
	}

	mem := memtable.New(w, memtableCapacity)
	recovered, err := wal.Recover(walPath)
	if err != nil {
		w.Close()
		return nil, err
	}
	for _, e := range recovered {
		mem.LoadRecovered(e.Key, e.Value, e.Tombstone)
	}

	runs, nextSeq, err := listRuns(dir)
	if err != nil {
		w.Close()
		return nil, err
	}

	return &Engine{dir: dir, w: w, mem: mem, runs: runs, nextSeq: nextSeq}, nil
}

func listRuns(dir string) ([]*sstable.Run, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, dberr.ErrIO.WithCause(err)
	}

	var seqs []int
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), runExt) {
			continue
		}
		seq, err := strconv.Atoi(strings.TrimSuffix(e.Name(), runExt))
		if err != nil {
			continue
		}
		seqs = append(seqs, seq)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(seqs)))

	runs := make([]*sstable.Run, 0, len(seqs))
	for _, seq := range seqs {
		run, err := sstable.Open(filepath.Join(dir, runFilename(seq)))
		if err != nil {
			return nil, 1, err
		}
		runs = append(runs, run)
	}

	nextSeq := 0
	if len(seqs) > 0 {
		nextSeq = seqs[0] + 1
	}
	return runs, nextSeq, nil
}

func runFilename(seq int) string {
	return fmt.Sprintf("%06d%s", seq, runExt)
}

func key(container string, id any) string {
	return fmt.Sprintf("%s:%v", container, id)
}

// Put writes record under (container, id), logging to the WAL before
// the MemTable reflects it, flushing if the MemTable is now full.
func (e *Engine) Put(container string, id any, record Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	payload, err := json.Marshal(record)
	if err != nil {
		return dberr.ErrIO.WithCause(err)
	}
	if err := e.mem.Put(key(container, id), payload); err != nil {
		return err
	}
	e.reportMemtableBytesLocked()
	if e.mem.Full() {
		return e.flushLocked()
	}
	return nil
}

func (e *Engine) reportMemtableBytesLocked() {
	if e.metrics != nil {
		e.metrics.MemtableBytes.Set(float64(e.mem.Bytes()))
	}
}

// Get checks the MemTable first, then runs newest-to-oldest, returning
// found=false for a tombstone or a genuinely absent key.
func (e *Engine) Get(container string, id any) (Record, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	k := key(container, id)

	if value, tombstone, found := e.mem.Get(k); found {
		if tombstone {
			return nil, false, nil
		}
		return decode(value)
	}

	for _, run := range e.runs {
		value, tombstone, found, err := run.Lookup(k)
		if err != nil {
			return nil, false, err
		}
		if !found {
			continue
		}
		if tombstone {
			return nil, false, nil
		}
		return decode(value)
	}

	return nil, false, nil
}

func decode(payload []byte) (Record, bool, error) {
	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, false, dberr.ErrIO.WithCause(err)
	}
	return rec, true, nil
}

// Delete writes a tombstone for (container, id).
func (e *Engine) Delete(container string, id any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.mem.Delete(key(container, id)); err != nil {
		return err
	}
	e.reportMemtableBytesLocked()
	if e.mem.Full() {
		return e.flushLocked()
	}
	return nil
}

// Scan folds every run oldest-to-newest, then the MemTable, applying
// last-writer-wins, and returns the live (non-tombstone) records whose
// key starts with "container:".
func (e *Engine) Scan(container string) ([]Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	prefix := container + ":"
	merged := make(map[string][]byte)
	tombstoned := make(map[string]bool)

	for i := len(e.runs) - 1; i >= 0; i-- {
		all, err := e.runs[i].All()
		if err != nil {
			return nil, err
		}
		for _, entry := range all {
			if !strings.HasPrefix(entry.Key, prefix) {
				continue
			}
			if entry.Tombstone {
				tombstoned[entry.Key] = true
				delete(merged, entry.Key)
				continue
			}
			tombstoned[entry.Key] = false
			merged[entry.Key] = entry.Value
		}
	}

	// The MemTable is newest and overrides everything folded so far.
	for _, entry := range e.mem.Entries() {
		if !strings.HasPrefix(entry.Key, prefix) {
			continue
		}
		if entry.Tombstone {
			tombstoned[entry.Key] = true
			delete(merged, entry.Key)
			continue
		}
		tombstoned[entry.Key] = false
		merged[entry.Key] = entry.Value
	}

	out := make([]Record, 0, len(merged))
	for k, v := range merged {
		if tombstoned[k] {
			continue
		}
		rec, _, err := decode(v)
		if err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (e *Engine) flushLocked() error {
	entries, err := e.mem.Flush()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	converted := make([]sstable.Entry, len(entries))
	for i, en := range entries {
		converted[i] = sstable.Entry{Key: en.Key, Value: en.Value, Tombstone: en.Tombstone}
	}

	path := filepath.Join(e.dir, runFilename(e.nextSeq))
	e.nextSeq++

	run, err := sstable.WriteRun(path, converted)
	if err != nil {
		return err
	}
	e.runs = append([]*sstable.Run{run}, e.runs...)

	if e.metrics != nil {
		e.metrics.WALFlushesTotal.Inc()
		e.metrics.SSTableCount.Set(float64(len(e.runs)))
	}
	e.reportMemtableBytesLocked()

	return nil
}

// CreateIndex is unsupported by the LSM engine: secondary indexes over
// an LSM tree are out of scope.
func (e *Engine) CreateIndex(container, field string, order int) error {
	return dberr.ErrUnsupported.WithDetails("secondary indexes are not supported on the LSM engine")
}

// Commit is a no-op: every Put is already durable once the WAL fsync
// returns.
func (e *Engine) Commit() error {
	return nil
}

// Rollback is a no-op for the same reason Commit is: there is nothing
// buffered to discard.
func (e *Engine) Rollback() {}

// Close flushes any remaining MemTable entries, then closes the WAL
// and every open run.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mem.Len() > 0 {
		if err := e.flushLocked(); err != nil {
			return err
		}
	}
	if err := e.w.Close(); err != nil {
		return err
	}
	for _, run := range e.runs {
		if err := run.Close(); err != nil {
			return err
		}
	}
	return nil
}

// Statistics reports MemTable size and run count.
type Statistics struct {
	MemtableSize int
	RunCount     int
}

// Statistics returns a point-in-time snapshot of engine health.
func (e *Engine) Statistics() Statistics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Statistics{MemtableSize: e.mem.Len(), RunCount: len(e.runs)}
}
