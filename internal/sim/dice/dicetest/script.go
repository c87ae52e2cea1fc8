// Package dicetest provides scripted randomness for tests.
package dicetest

// Script replays fixed draws. Once a queue is exhausted it repeats its last
// value (or returns 0 when it was empty).
type Script struct {
	Ints   []int
	Floats []float64

	ni, nf int
}

func (s *Script) Intn(n int) int {
	if len(s.Ints) == 0 {
		return 0
	}
	i := s.ni
	if i >= len(s.Ints) {
		i = len(s.Ints) - 1
	} else {
		s.ni++
	}
	v := s.Ints[i]
	if v >= n {
		v = n - 1
	}
	if v < 0 {
		v = 0
	}
	return v
}

func (s *Script) Float64() float64 {
	if len(s.Floats) == 0 {
		return 0
	}
	i := s.nf
	if i >= len(s.Floats) {
		i = len(s.Floats) - 1
	} else {
		s.nf++
	}
	return s.Floats[i]
}

// Constant returns the same float for every Float64 draw and the same int
// (clamped to n-1) for every Intn draw.
type Constant struct {
	Int   int
	Float float64
}

func (c Constant) Intn(n int) int {
	if c.Int >= n {
		return n - 1
	}
	return c.Int
}

func (c Constant) Float64() float64 { return c.Float }
