package wal

import (
	"encoding/binary"
	"io"
	"os"
	"time"

	"github.com/hybriddb/hybriddb/internal/dberr"
	"github.com/hybriddb/hybriddb/internal/telemetry/metric"
)

const magic = "HDBWAL01"

// tombstoneLen is the sentinel vallen marking a deleted key; no value
// bytes follow it on disk.
const tombstoneLen uint32 = 0xFFFFFFFF

// Entry is one (key, value) pair recovered from the log, in write
// order. Tombstone is true if the entry represents a deletion.
type Entry struct {
	Key       string
	Value     []byte
	Tombstone bool
}

// WAL is a single append-only durability log.
type WAL struct {
	path    string
	f       *os.File
	metrics *metric.Registry
}

// SetMetrics attaches reg so every fsync reports its duration into the
// shared registry. A nil registry disables reporting.
func (w *WAL) SetMetrics(reg *metric.Registry) {
	w.metrics = reg
}

// Open opens (creating if necessary) the log file at path, writing the
// magic header on first creation.
func Open(path string) (*WAL, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, dberr.ErrIO.WithCause(err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, dberr.ErrIO.WithCause(err)
	}
	if info.Size() == 0 {
		if _, err := f.Write([]byte(magic)); err != nil {
			f.Close()
			return nil, dberr.ErrIO.WithCause(err)
		}
		if err := f.Sync(); err != nil {
			f.Close()
			return nil, dberr.ErrIO.WithCause(err)
		}
	}

	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		f.Close()
		return nil, dberr.ErrIO.WithCause(err)
	}

	return &WAL{path: path, f: f}, nil
}

func encodeEntry(key string, value []byte, tombstone bool) []byte {
	vallen := tombstoneLen
	valBytes := []byte(nil)
	if !tombstone {
		vallen = uint32(len(value))
		valBytes = value
	}

	out := make([]byte, 8+len(key)+len(valBytes))
	binary.LittleEndian.PutUint32(out[0:4], uint32(len(key)))
	binary.LittleEndian.PutUint32(out[4:8], vallen)
	copy(out[8:8+len(key)], key)
	copy(out[8+len(key):], valBytes)
	return out
}

// Put appends a (key, value) entry and fsyncs before returning.
func (w *WAL) Put(key string, value []byte) error {
	return w.append(encodeEntry(key, value, false))
}

// Delete appends a tombstone entry for key and fsyncs before returning.
func (w *WAL) Delete(key string) error {
	return w.append(encodeEntry(key, nil, true))
}

func (w *WAL) append(frame []byte) error {
	if _, err := w.f.Write(frame); err != nil {
		return dberr.ErrIO.WithCause(err)
	}

	start := time.Now()
	err := w.f.Sync()
	if w.metrics != nil {
		w.metrics.WALSyncDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return dberr.ErrIO.WithCause(err)
	}
	return nil
}

// Clear truncates the log back to just the magic header, for use after
// a MemTable flush.
func (w *WAL) Clear() error {
	if err := w.f.Truncate(int64(len(magic))); err != nil {
		return dberr.ErrIO.WithCause(err)
	}
	if _, err := w.f.Seek(0, io.SeekEnd); err != nil {
		return dberr.ErrIO.WithCause(err)
	}
	return nil
}

// Close closes the underlying file.
func (w *WAL) Close() error {
	return w.f.Close()
}

// Recover reads every entry from path in write order. A truncated
// final entry (partial header or short value) is discarded rather than
// treated as an error, so a crash mid-write does not block recovery.
func Recover(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.ErrIO.WithCause(err)
	}
	defer f.Close()

	header := make([]byte, len(magic))
	n, err := io.ReadFull(f, header)
	if err != nil || n < len(magic) || string(header) != magic {
		return nil, nil
	}

	var out []Entry
	for {
		lenBuf := make([]byte, 8)
		if _, err := io.ReadFull(f, lenBuf); err != nil {
			break
		}
		keylen := binary.LittleEndian.Uint32(lenBuf[0:4])
		vallen := binary.LittleEndian.Uint32(lenBuf[4:8])

		key := make([]byte, keylen)
		if _, err := io.ReadFull(f, key); err != nil {
			break
		}

		if vallen == tombstoneLen {
			out = append(out, Entry{Key: string(key), Tombstone: true})
			continue
		}

		value := make([]byte, vallen)
		if _, err := io.ReadFull(f, value); err != nil {
			break
		}
		out = append(out, Entry{Key: string(key), Value: value})
	}

	return out, nil
}
