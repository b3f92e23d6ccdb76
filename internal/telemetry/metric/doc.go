// Package metric provides Prometheus metrics for the storage engines.
//
// This package implements metrics collection and exposition:
//
//   - registry.go: Prometheus registry, counters and gauges
//   - handler.go: HTTP handler for the /metrics endpoint
//
// Metrics cover block I/O, cache effectiveness, WAL durability and
// the shard ring, exposed at /metrics in Prometheus text format.
package metric
