// Package dice holds the randomness primitives shared by the simulation.
//
// Nothing in the simulation reads ambient random state: every stochastic
// function takes a Source argument, and the world derives one stream per
// week from (seed, week) so a resumed save replays identically.
package dice

import "math/rand"

// Source is satisfied by *rand.Rand.
type Source interface {
	Intn(n int) int
	Float64() float64
}

// Option is one row of a weighted table.
type Option[T any] struct {
	Value  T
	Weight int
}

// Pick draws a uniform integer in [0,total) and walks the table in order,
// subtracting each weight until the remainder goes negative. Non-positive
// weights are skipped. The table order is part of the contract: reordering
// a table changes results under a fixed seed.
func Pick[T any](src Source, opts []Option[T]) (T, bool) {
	var zero T
	total := 0
	for _, o := range opts {
		if o.Weight > 0 {
			total += o.Weight
		}
	}
	if total <= 0 {
		return zero, false
	}
	r := src.Intn(total)
	last := zero
	for _, o := range opts {
		if o.Weight <= 0 {
			continue
		}
		last = o.Value
		r -= o.Weight
		if r < 0 {
			return o.Value, true
		}
	}
	return last, true
}

// Chance reports whether a uniform draw lands under p.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	return src.Float64() < p
}

// Between returns a uniform float in [lo,hi).
func Between(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// IntRange returns a uniform int in [lo,hi] (inclusive).
func IntRange(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.Intn(hi-lo+1)
}

// ForWeek returns the stream used for everything that happens during the
// given absolute week. salt separates independent consumers.
func ForWeek(seed int64, week uint64, salt int) *rand.Rand {
	return rand.New(rand.NewSource(int64(Hash2(seed, int(week), salt))))
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func Hash2(seed int64, x, z int) uint64 {
	ux := uint64(uint32(int32(x)))
	uz := uint64(uint32(int32(z)))
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uz * 0xbf58476d1ce4e5b9)
	return mix64(v)
}
