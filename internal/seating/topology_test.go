package seating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformBlocks(t *testing.T) {
	topo, errs := NewBlockTopology(6, 3, nil)
	require.Empty(t, errs)

	assert.Equal(t, 2, topo.Count())
	assert.Equal(t, 0, topo.BlockOf(0))
	assert.Equal(t, 0, topo.BlockOf(2))
	assert.Equal(t, 1, topo.BlockOf(3))
	assert.Equal(t, 1, topo.BlockOf(5))
}

func TestUniformBlocksLastShorter(t *testing.T) {
	topo, errs := NewBlockTopology(7, 3, nil)
	require.Empty(t, errs)

	assert.Equal(t, 3, topo.Count())
	assert.Equal(t, []int{3, 3, 1}, topo.Widths())
	assert.Equal(t, 2, topo.BlockOf(6))
	assert.Equal(t, 0, topo.OffsetInBlock(6))
}

func TestVariableBlockStructure(t *testing.T) {
	topo, errs := NewBlockTopology(8, 0, []int{3, 2, 3})
	require.Empty(t, errs)

	assert.Equal(t, 3, topo.Count())
	assert.Equal(t, 0, topo.BlockOf(0))
	assert.Equal(t, 0, topo.BlockOf(2))
	assert.Equal(t, 1, topo.BlockOf(3))
	assert.Equal(t, 1, topo.BlockOf(4))
	assert.Equal(t, 2, topo.BlockOf(5))
	assert.Equal(t, 2, topo.BlockOf(7))
}

func TestBlockStructureSumMismatch(t *testing.T) {
	topo, errs := NewBlockTopology(8, 2, []int{3, 3})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "sums to 6")
	// Falls back to the uniform layout so generation can still proceed.
	assert.Equal(t, 4, topo.Count())
}

func TestBlockStructureNonPositiveWidth(t *testing.T) {
	_, errs := NewBlockTopology(4, 2, []int{2, 0, 2})
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0], "must be positive")
}

func TestSameBlock(t *testing.T) {
	topo, errs := NewBlockTopology(6, 3, nil)
	require.Empty(t, errs)

	assert.True(t, topo.SameBlock(0, 1))
	assert.True(t, topo.SameBlock(0, 2))
	assert.False(t, topo.SameBlock(0, 3))
	assert.True(t, topo.SameBlock(3, 5))
	assert.False(t, topo.SameBlock(-1, -1))
}

func TestOffsetInBlock(t *testing.T) {
	topo, errs := NewBlockTopology(6, 3, nil)
	require.Empty(t, errs)

	assert.Equal(t, 0, topo.OffsetInBlock(0))
	assert.Equal(t, 1, topo.OffsetInBlock(1))
	assert.Equal(t, 2, topo.OffsetInBlock(2))
	assert.Equal(t, 0, topo.OffsetInBlock(3))
	assert.Equal(t, 1, topo.OffsetInBlock(4))
	assert.Equal(t, -1, topo.OffsetInBlock(6))
}

func TestEveryColumnMapsToExactlyOneBlock(t *testing.T) {
	topo, errs := NewBlockTopology(11, 0, []int{4, 3, 4})
	require.Empty(t, errs)

	prev := 0
	for c := 0; c < 11; c++ {
		b := topo.BlockOf(c)
		require.GreaterOrEqual(t, b, 0)
		require.LessOrEqual(t, b, prev+1, "block indices must be contiguous")
		if b > prev {
			prev = b
		}
	}
	assert.Equal(t, topo.Count()-1, prev)
}
