// Package columnar implements the analytics tier: per-column typed
// arrays persisted as flat binary blobs, batch insert and vectorized
// aggregation (sum/avg/min/max/count) without per-row decoding.
package columnar
