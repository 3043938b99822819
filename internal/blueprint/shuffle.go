package blueprint

import (
	"math/rand/v2"

	"github.com/mtapang/tosforge/internal/model"
)

// Shuffle returns a randomly reordered copy of the assignment. It is
// order-only: the multiset of slots is unchanged and no slot is mutated, so
// aggregating before or after shuffling produces the same summary. The input
// slice is left untouched.
func Shuffle(slots []model.AssignedSlot) []model.AssignedSlot {
	out := make([]model.AssignedSlot, len(slots))
	copy(out, slots)
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// ShuffleSeeded is Shuffle with a deterministic permutation derived from the
// given seed.
func ShuffleSeeded(slots []model.AssignedSlot, seed uint64) []model.AssignedSlot {
	rng := rand.New(rand.NewPCG(seed, seed))
	out := make([]model.AssignedSlot, len(slots))
	copy(out, slots)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
