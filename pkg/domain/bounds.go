package domain

// Clamp forces n into [min, max].
func Clamp(n, min, max int) int {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

// Offset returns Clamp(cursor+delta, 0, max) without overflowing, so callers may pass
// math.MaxInt or math.MinInt to mean "as far as possible".
// cursor must already be within [0, max].
func Offset(cursor, delta, max int) int {
	if delta > max-cursor {
		return max
	}
	if delta < -cursor {
		return 0
	}
	return cursor + delta
}
