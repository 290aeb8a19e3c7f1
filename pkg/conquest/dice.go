package conquest

import (
	"sort"

	"golang.org/x/exp/rand"
)

// Roller produces six-sided die rolls.
type Roller interface {
	Roll(n int) []int
}

// RandRoller rolls uniformly from a random source.
type RandRoller struct {
	Rand *rand.Rand
}

func (r RandRoller) Roll(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = r.Rand.Intn(6) + 1
	}
	return out
}

// FixedRoller replays a scripted sequence of rolls, cycling when exhausted.
// Useful for deterministic tests and replays.
type FixedRoller struct {
	Values []int
	next   int
}

func (f *FixedRoller) Roll(n int) []int {
	out := make([]int, n)
	for i := range out {
		if len(f.Values) == 0 {
			out[i] = 1
			continue
		}
		out[i] = f.Values[f.next%len(f.Values)]
		f.next++
	}
	return out
}

// sortDesc sorts dice highest first.
func sortDesc(dice []int) {
	sort.Sort(sort.Reverse(sort.IntSlice(dice)))
}
