// Package memtable implements the LSM engine's in-memory, sorted,
// WAL-backed write buffer: every Put logs to the WAL before mutating
// memory, Delete is represented as a tombstone entry, and Flush drains
// the table in sorted key order for the caller to write out as a run.
package memtable
