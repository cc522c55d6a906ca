package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Sample returns k elements drawn uniformly without replacement from pool,
// using a partial Fisher-Yates driven by crypto/rand. The pool itself is
// left untouched. When k meets or exceeds the pool size, a shuffled copy of
// the whole pool is returned.
func Sample[T any](pool []T, k int) ([]T, error) {
	n := len(pool)
	if n == 0 || k <= 0 {
		return []T{}, nil
	}
	if k > n {
		k = n
	}

	shuffled := make([]T, n)
	copy(shuffled, pool)

	for i := 0; i < k; i++ {
		jBig, err := rand.Int(rand.Reader, big.NewInt(int64(n-i)))
		if err != nil {
			return nil, fmt.Errorf("failed to generate random number: %w", err)
		}
		j := i + int(jBig.Int64())
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	return shuffled[:k], nil
}
