// Package btree implements an in-memory classical B-tree mapping
// ordered keys to integer file offsets, used as the secondary-index
// structure for the append engine.
//
// Deletion is intentionally simplified: a key is removed where found
// without rebalancing siblings, which can leave a node under the
// minimum fill factor. A full implementation would borrow from or
// merge with siblings; this index does not, matching the limitation
// documented for the engine it serves.
package btree
