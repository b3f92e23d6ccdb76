package btree

// compare orders two keys, reporting false if they cannot be compared
// (e.g. a string against a number).
func compare(a, b any) (int, bool) {
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		if !ok {
			return 0, false
		}
		switch {
		case as < bs:
			return -1, true
		case as > bs:
			return 1, true
		default:
			return 0, true
		}
	}

	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if !aok || !bok {
		return 0, false
	}
	switch {
	case af < bf:
		return -1, true
	case af > bf:
		return 1, true
	default:
		return 0, true
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// less, greater and equal treat incomparable pairs as neither less than
// nor greater than one another. Callers that need to detect
// incomparability explicitly should use compare.
func less(a, b any) bool {
	c, ok := compare(a, b)
	return ok && c < 0
}

func greater(a, b any) bool {
	c, ok := compare(a, b)
	return ok && c > 0
}

func equal(a, b any) bool {
	c, ok := compare(a, b)
	return ok && c == 0
}
