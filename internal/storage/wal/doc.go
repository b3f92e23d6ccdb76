// Package wal provides the write-ahead log backing the LSM engine's
// MemTable: a single append-only file of (key, value) entries, each
// fsynced before Put returns, recoverable by a forward scan that
// tolerates a truncated final entry.
//
// Entry wire format:
//
//	[keylen:4 LE][vallen:4 LE][key][value]
//
// A tombstone (deleted key) is written with vallen set to the sentinel
// 0xFFFFFFFF and no trailing value bytes.
//
// Unlike a segmented, rotating WAL, this is a single file per engine:
// the LSM engine's single-threaded concurrency model (see
// internal/storage/lsm) has no need for background rotation or an
// async sync loop — every Put is synchronous and durable before it
// returns.
package wal
