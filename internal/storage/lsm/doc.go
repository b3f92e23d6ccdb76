// Package lsm implements the row-tier storage contract as a classic
// log-structured merge engine: a WAL-backed MemTable absorbs writes,
// flushing to an immutable sorted run once it reaches capacity. Reads
// check the MemTable first, then runs newest-to-oldest.
//
// Flush is not atomic with WAL truncation: a crash after a run is
// written but before the WAL is cleared replays already-flushed
// entries back into the MemTable on recovery, which is harmless since
// re-inserting them is idempotent. A crash after truncation but before
// the new run file is durable on disk loses those writes — a
// documented limitation, not a bug to route around.
package lsm
