package sstable

import (
	"encoding/binary"
	"os"
	"sort"

	"github.com/hybriddb/hybriddb/internal/dberr"
)

// tombstoneLen mirrors the WAL's sentinel: a vallen of this value marks
// a deleted key, with no value bytes following.
const tombstoneLen uint32 = 0xFFFFFFFF

// Entry is one (key, value) pair to write into a run, in the order
// MemTable.Flush produced it (already sorted ascending by key).
type Entry struct {
	Key       string
	Value     []byte
	Tombstone bool
}

type indexEntry struct {
	key    string
	offset int64
}

// Run is an immutable, sorted on-disk (key, value) file with a dense
// in-memory index covering every key.
type Run struct {
	path  string
	f     *os.File
	index []indexEntry
}

// WriteRun writes entries (already sorted ascending by key) to path and
// returns a Run ready for lookups.
func WriteRun(path string, entries []Entry) (*Run, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, dberr.ErrIO.WithCause(err)
	}

	run := &Run{path: path, f: f}
	var offset int64
	for _, e := range entries {
		frame := encodeEntry(e)
		if _, err := f.WriteAt(frame, offset); err != nil {
			f.Close()
			return nil, dberr.ErrIO.WithCause(err)
		}
		run.index = append(run.index, indexEntry{key: e.Key, offset: offset})
		offset += int64(len(frame))
	}

	if err := f.Sync(); err != nil {
		f.Close()
		return nil, dberr.ErrIO.WithCause(err)
	}
	return run, nil
}

func encodeEntry(e Entry) []byte {
	vallen := tombstoneLen
	value := []byte(nil)
	if !e.Tombstone {
		vallen = uint32(len(e.Value))
		value = e.Value
	}

	key := []byte(e.Key)
	out := make([]byte, 4+len(key)+4+len(value))
	binary.LittleEndian.PutUint32(out[0:4], uint32(len(key)))
	copy(out[4:4+len(key)], key)
	binary.LittleEndian.PutUint32(out[4+len(key):8+len(key)], vallen)
	copy(out[8+len(key):], value)
	return out
}

// Open opens an existing run file, building its in-memory index by a
// single sequential scan.
func Open(path string) (*Run, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, dberr.ErrIO.WithCause(err)
	}

	run := &Run{path: path, f: f}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, dberr.ErrIO.WithCause(err)
	}

	var offset int64
	size := info.Size()
	for offset < size {
		lenBuf := make([]byte, 4)
		if _, err := f.ReadAt(lenBuf, offset); err != nil {
			f.Close()
			return nil, dberr.ErrTruncatedRecord.WithCause(err)
		}
		keylen := binary.LittleEndian.Uint32(lenBuf)

		key := make([]byte, keylen)
		if _, err := f.ReadAt(key, offset+4); err != nil {
			f.Close()
			return nil, dberr.ErrTruncatedRecord.WithCause(err)
		}

		vallenBuf := make([]byte, 4)
		if _, err := f.ReadAt(vallenBuf, offset+4+int64(keylen)); err != nil {
			f.Close()
			return nil, dberr.ErrTruncatedRecord.WithCause(err)
		}
		vallen := binary.LittleEndian.Uint32(vallenBuf)

		run.index = append(run.index, indexEntry{key: string(key), offset: offset})

		entryLen := int64(8) + int64(keylen)
		if vallen != tombstoneLen {
			entryLen += int64(vallen)
		}
		offset += entryLen
	}

	return run, nil
}

// Lookup binary-searches the in-memory index for key and, if present,
// reads its value (or tombstone state) from disk.
func (r *Run) Lookup(key string) (value []byte, tombstone bool, found bool, err error) {
	i := sort.Search(len(r.index), func(i int) bool { return r.index[i].key >= key })
	if i >= len(r.index) || r.index[i].key != key {
		return nil, false, false, nil
	}

	off := r.index[i].offset
	lenBuf := make([]byte, 4)
	if _, e := r.f.ReadAt(lenBuf, off); e != nil {
		return nil, false, false, dberr.ErrIO.WithCause(e)
	}
	keylen := binary.LittleEndian.Uint32(lenBuf)

	vallenBuf := make([]byte, 4)
	if _, e := r.f.ReadAt(vallenBuf, off+4+int64(keylen)); e != nil {
		return nil, false, false, dberr.ErrIO.WithCause(e)
	}
	vallen := binary.LittleEndian.Uint32(vallenBuf)

	if vallen == tombstoneLen {
		return nil, true, true, nil
	}

	value = make([]byte, vallen)
	if vallen > 0 {
		if _, e := r.f.ReadAt(value, off+8+int64(keylen)); e != nil {
			return nil, false, false, dberr.ErrIO.WithCause(e)
		}
	}
	return value, false, true, nil
}

// All returns every entry in the run, ascending by key, for range
// scans and compaction-free folds.
func (r *Run) All() ([]Entry, error) {
	out := make([]Entry, 0, len(r.index))
	for _, ie := range r.index {
		value, tombstone, _, err := r.Lookup(ie.key)
		if err != nil {
			return nil, err
		}
		out = append(out, Entry{Key: ie.key, Value: value, Tombstone: tombstone})
	}
	return out, nil
}

// Path returns the run's backing file path.
func (r *Run) Path() string {
	return r.path
}

// Close closes the underlying file.
func (r *Run) Close() error {
	return r.f.Close()
}
