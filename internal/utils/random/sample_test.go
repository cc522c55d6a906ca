package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleWithoutReplacement(t *testing.T) {
	pool := []int{1, 2, 3, 4, 5, 6, 7, 8}

	got, err := Sample(pool, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	seen := make(map[int]bool)
	for _, v := range got {
		assert.Contains(t, pool, v)
		assert.False(t, seen[v])
		seen[v] = true
	}

	// Pool order must be preserved.
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, pool)
}

func TestSampleEdgeCases(t *testing.T) {
	got, err := Sample([]int{1, 2}, 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = Sample([]int{1, 2}, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = Sample[int](nil, 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}
