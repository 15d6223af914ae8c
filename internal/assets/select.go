package assets

import (
	"errors"
	"fmt"
)

// ErrInsufficientAssets reports a pool too small for the requested frame
// budget. It aborts the run before anything is read or written.
var ErrInsufficientAssets = errors.New("insufficient assets")

// ErrNoRand is returned when sampling is requested without a random source.
var ErrNoRand = errors.New("sampling needs a random source")

// Rand is the pseudo-random source the engine draws from. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// Policy picks between random sampling and deterministic cycling.
type Policy struct {
	Sample bool
}

// Select returns n items from pool according to the policy.
func Select[T any](p Policy, rng Rand, pool []T, n int) ([]T, error) {
	if p.Sample {
		return Sample(rng, pool, n)
	}
	return Cycle(pool, n)
}

// Sample draws n distinct items uniformly without replacement using a
// partial Fisher-Yates shuffle. The pool itself is not modified.
func Sample[T any](rng Rand, pool []T, n int) ([]T, error) {
	if n < 0 {
		n = 0
	}
	if len(pool) < n {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrInsufficientAssets, n, len(pool))
	}
	if rng == nil {
		return nil, ErrNoRand
	}
	idx := make([]int, len(pool))
	for i := range idx {
		idx[i] = i
	}
	out := make([]T, n)
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		out[i] = pool[idx[i]]
	}
	return out, nil
}

// Cycle returns n items where item i is pool[i mod len(pool)].
func Cycle[T any](pool []T, n int) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: need %d, pool is empty", ErrInsufficientAssets, n)
	}
	out := make([]T, n)
	for i := range out {
		out[i] = pool[i%len(pool)]
	}
	return out, nil
}
