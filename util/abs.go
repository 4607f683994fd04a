// Package util provides small generic numeric helpers shared by the
// synthesis packages.
package util

import "math"

// Signed is a constraint for signed integer and float types.
type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

// Float is a constraint for floating-point types.
type Float interface {
	~float32 | ~float64
}

// Abs returns the absolute value of x.
func Abs[T Signed](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

// Clamp limits x to [lo, hi].
func Clamp[T Signed](x, lo, hi T) T {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Peak returns the largest absolute sample value.
func Peak[T Float](samples []T) T {
	var peak T
	for _, s := range samples {
		if v := Abs(s); v > peak {
			peak = v
		}
	}
	return peak
}

// Finite reports whether every sample is neither NaN nor infinite.
func Finite[T Float](samples []T) bool {
	for _, s := range samples {
		f := float64(s)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
