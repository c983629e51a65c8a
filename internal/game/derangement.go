package game

import "math/rand"

// maxDerangementAttempts bounds the shuffle-and-check loop before falling
// back to a rotation.
const maxDerangementAttempts = 1000

// Derangement returns a fixed-point-free permutation of ids: for every index
// i, the returned value at i differs from ids[i]. Inputs of length 0 or 1
// have no derangement and yield an empty slice.
//
// The permutation is found by rejection sampling: Fisher-Yates shuffle a
// copy and accept the first result with no fixed points. Roughly 1/e of
// shuffles qualify, so the attempt bound is never reached in practice; if it
// is, a rotate-by-one fallback is returned, which is fixed-point-free for
// any length >= 2.
func Derangement(rng *rand.Rand, ids []string) []string {
	n := len(ids)
	if n <= 1 {
		return []string{}
	}

	result := make([]string, n)
	copy(result, ids)

	for attempt := 0; attempt < maxDerangementAttempts; attempt++ {
		for i := n - 1; i > 0; i-- {
			j := rng.Intn(i + 1)
			result[i], result[j] = result[j], result[i]
		}

		valid := true
		for i := 0; i < n; i++ {
			if result[i] == ids[i] {
				valid = false
				break
			}
		}
		if valid {
			return result
		}
	}

	// Rotation fallback: shift every element one position, wrapping.
	rotated := make([]string, 0, n)
	rotated = append(rotated, ids[1:]...)
	rotated = append(rotated, ids[0])
	return rotated
}
