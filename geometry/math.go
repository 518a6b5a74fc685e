package geometry

import "math"

// Abs returns the absolute value of an integer.
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampOpen restricts v to [lo+1, hi-1], keeping a value one unit clear of
// both ends. A span too short for that collapses to its midpoint.
func ClampOpen(v, lo, hi float64) float64 {
	if lo+1 > hi-1 {
		return (lo + hi) / 2
	}
	return Clamp(v, lo+1, hi-1)
}

// NearlyEqual compares two coordinates within tol.
func NearlyEqual(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}
