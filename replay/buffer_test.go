package replay

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_ExtendTrimsToCapacity(t *testing.T) {
	b := New(3)
	b.Extend([]Example{{Value: 1}, {Value: 2}})
	b.Extend([]Example{{Value: 3}, {Value: 4}})

	assert.Equal(t, 3, b.Len())
	assert.Equal(t, float32(2), b.items[0].Value, "oldest entries should be trimmed first")
}

func TestBuffer_SampleReportsFalseWhenTooFew(t *testing.T) {
	b := New(10)
	b.Extend([]Example{{Value: 1}})

	_, ok := b.Sample(2, rand.New(rand.NewSource(1)))
	assert.False(t, ok)
}

func TestBuffer_SampleWithoutReplacement(t *testing.T) {
	b := New(10)
	b.Extend([]Example{{Value: 1}, {Value: 2}, {Value: 3}})

	out, ok := b.Sample(3, rand.New(rand.NewSource(1)))
	require.True(t, ok)
	assert.Len(t, out, 3)

	seen := map[float32]bool{}
	for _, ex := range out {
		seen[ex.Value] = true
	}
	assert.Len(t, seen, 3, "all three samples should be distinct since batch size == population")
}
