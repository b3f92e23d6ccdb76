// Package sstable implements an immutable, sorted on-disk run produced
// by a MemTable flush: a flat sequence of length-prefixed (key, value)
// entries with a dense in-memory index built by a single sequential
// scan on open. The dense index is a pragmatic choice for a first
// implementation; a sparse every-Nth-key index with block structure is
// the obvious next step once runs grow large.
package sstable
