// Package cmap provides a generic sharded concurrent map, used by the
// higher layers of hybriddb to register named containers, columnar
// tables and vector stores without a single global lock.
//
//   - Sharding: configurable shard count for parallelism
//   - Fine-grained locking: per-shard RWMutex for minimal contention
//   - Optimistic locking: version-based compare-and-swap updates
//   - Iteration: safe iteration while holding read locks
//
// Usage:
//
//	m := cmap.New[string, *Table]()
//	m.Set("users", table)
//	val, ok := m.Get("users")
//
// Thread Safety:
//
// All operations are thread-safe. Read operations (Get, Has) use RLock,
// write operations (Set, Delete) use Lock.
package cmap
