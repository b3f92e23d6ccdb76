package memtable

import (
	"sort"

	"github.com/hybriddb/hybriddb/internal/storage/wal"
)

type record struct {
	value     []byte
	tombstone bool
}

// MemTable is a WAL-backed write buffer bounded by capacity.
type MemTable struct {
	w        *wal.WAL
	capacity int
	entries  map[string]record
}

// New creates a MemTable backed by w whose Full reports true once it
// holds capacity entries.
func New(w *wal.WAL, capacity int) *MemTable {
	if capacity <= 0 {
		capacity = 1000
	}
	return &MemTable{w: w, capacity: capacity, entries: make(map[string]record)}
}

// Put logs value to the WAL, then inserts it.
func (m *MemTable) Put(key string, value []byte) error {
	if err := m.w.Put(key, value); err != nil {
		return err
	}
	m.entries[key] = record{value: value}
	return nil
}

// Delete is Put with a tombstone sentinel.
func (m *MemTable) Delete(key string) error {
	if err := m.w.Delete(key); err != nil {
		return err
	}
	m.entries[key] = record{tombstone: true}
	return nil
}

// Get returns the value for key, whether it is a tombstone, and
// whether key is present at all.
func (m *MemTable) Get(key string) (value []byte, tombstone bool, found bool) {
	r, ok := m.entries[key]
	if !ok {
		return nil, false, false
	}
	return r.value, r.tombstone, true
}

// Len reports the current entry count.
func (m *MemTable) Len() int {
	return len(m.entries)
}

// Bytes returns an approximate in-memory size: the sum of every key's
// and value's byte length.
func (m *MemTable) Bytes() int {
	n := 0
	for k, r := range m.entries {
		n += len(k) + len(r.value)
	}
	return n
}

// Full reports whether the table has reached its capacity bound.
func (m *MemTable) Full() bool {
	return len(m.entries) >= m.capacity
}

// LoadRecovered installs an entry recovered from a WAL scan without
// re-logging it, used to rebuild the table on open.
func (m *MemTable) LoadRecovered(key string, value []byte, tombstone bool) {
	m.entries[key] = record{value: value, tombstone: tombstone}
}

// SortedEntry is one entry as returned by Flush, in ascending key
// order.
type SortedEntry struct {
	Key       string
	Value     []byte
	Tombstone bool
}

// Entries returns every entry in ascending key order without clearing
// the table, for callers that need to fold the MemTable into a scan.
func (m *MemTable) Entries() []SortedEntry {
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]SortedEntry, 0, len(keys))
	for _, k := range keys {
		r := m.entries[k]
		out = append(out, SortedEntry{Key: k, Value: r.value, Tombstone: r.tombstone})
	}
	return out
}

// Flush drains the table in sorted key order and clears both the
// in-memory map and the backing WAL.
func (m *MemTable) Flush() ([]SortedEntry, error) {
	out := m.Entries()
	if err := m.w.Clear(); err != nil {
		return nil, err
	}
	m.entries = make(map[string]record)
	return out, nil
}
