// Package cache provides the append engine's fixed-capacity key->record
// cache, backed by github.com/hashicorp/golang-lru/v2 with hit/miss
// counters layered on top (the upstream package doesn't track them).
package cache
