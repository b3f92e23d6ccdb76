package adapters

import "github.com/hybriddb/hybriddb/internal/storage/rowengine"

// Where is a query document: either an exact-match value per field, or
// a nested operator map ($gt, $lt, $gte, $lte, $ne) for a comparison.
type Where map[string]any

// matches reports whether record satisfies every condition in where.
// Field names starting with "$" are reserved for future logic
// operators and are skipped, matching the query matcher this is
// grounded on.
func matches(record rowengine.Record, where Where) bool {
	for field, want := range where {
		if len(field) > 0 && field[0] == '$' {
			continue
		}
		got, ok := record[field]
		if !ok {
			return false
		}
		if ops, ok := want.(map[string]any); ok {
			if !matchesOps(got, ops) {
				return false
			}
			continue
		}
		if !equal(got, want) {
			return false
		}
	}
	return true
}

func matchesOps(got any, ops map[string]any) bool {
	for op, want := range ops {
		switch op {
		case "$gt":
			if !less(want, got) {
				return false
			}
		case "$lt":
			if !less(got, want) {
				return false
			}
		case "$gte":
			if less(got, want) {
				return false
			}
		case "$lte":
			if less(want, got) {
				return false
			}
		case "$ne":
			if equal(got, want) {
				return false
			}
		}
	}
	return true
}

func equal(a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}
	return a == b
}

// less reports whether a < b, comparing numerically when both sides
// coerce to float64 and falling back to string comparison otherwise.
func less(a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af < bf
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return as < bs
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
