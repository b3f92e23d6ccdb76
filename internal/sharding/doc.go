// Package sharding implements a weighted virtual-node consistent-hash
// ring for key placement across physical nodes, plus a thin Cluster
// that scatters reads/writes across nodes reachable through the
// rowengine.RowEngine interface.
//
// Adding or removing a node remaps only the keys that fall in the
// changed region of the ring: with V virtual nodes per physical node,
// a ring of N nodes moves roughly 1/N of keys on a single add/remove,
// not a full rehash.
package sharding
