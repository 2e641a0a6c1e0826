// Package deck deals the cards of a codenames board: it samples words from a
// pool and partitions card indices into the assassin set and one set per team.
package deck

import (
	"errors"
	"math/rand/v2"
)

var (
	ErrInsufficientRange = errors.New("deck: sample size is larger than range")
	ErrInsufficientWords = errors.New("deck: word pool is smaller than the requested card count")
	ErrNegativeCount     = errors.New("deck: counts must not be negative")
)

// Allocation is a disjoint partition of card indices.
type Allocation struct {
	Assassins []int
	Teams     [][]int
}

// Allocate draws assassins + sum(perTeam) distinct indices from [0, total)
// and slices them, in order, into the assassin set followed by each team.
func Allocate(rng *rand.Rand, total int, perTeam []int, assassins int) (Allocation, error) {
	if total < 0 || assassins < 0 {
		return Allocation{}, ErrNegativeCount
	}

	if assassins > total {
		return Allocation{}, ErrInsufficientRange
	}

	// size never exceeds total, so the sum cannot overflow.
	size := assassins
	for _, n := range perTeam {
		if n < 0 {
			return Allocation{}, ErrNegativeCount
		}
		if n > total-size {
			return Allocation{}, ErrInsufficientRange
		}
		size += n
	}

	sample := Sample(rng, total, size)

	alloc := Allocation{
		Assassins: sample[:assassins:assassins],
		Teams:     make([][]int, len(perTeam)),
	}

	start := assassins
	for i, n := range perTeam {
		alloc.Teams[i] = sample[start : start+n : start+n]
		start += n
	}

	return alloc, nil
}

// Sample returns k distinct integers from [0, n) in random order.
// It panics if k > n, like the rand package does for invalid bounds.
func Sample(rng *rand.Rand, n, k int) []int {
	if k > n || k < 0 {
		panic("deck: invalid sample size")
	}

	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}

	// partial Fisher-Yates: only the first k slots are settled
	for i := 0; i < k; i++ {
		j := i + rng.IntN(n-i)
		perm[i], perm[j] = perm[j], perm[i]
	}

	return perm[:k:k]
}

// SampleWords draws n distinct entries of words without replacement.
func SampleWords(rng *rand.Rand, words []string, n int) ([]string, error) {
	if n < 0 {
		return nil, ErrNegativeCount
	}
	if len(words) < n {
		return nil, ErrInsufficientWords
	}

	out := make([]string, n)
	for i, idx := range Sample(rng, len(words), n) {
		out[i] = words[idx]
	}

	return out, nil
}
