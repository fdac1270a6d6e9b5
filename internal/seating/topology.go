package seating

import "fmt"

// BlockTopology maps columns onto contiguous partitions ("blocks") of the
// room.  Blocks come either from a uniform width, repeated until the
// columns run out (the last block may be narrower), or from an explicit
// list of per-block widths that must sum to the column count.
type BlockTopology struct {
	cols    int
	widths  []int
	blockOf []int // column -> block index
	offset  []int // column -> zero-based offset within its block
}

// NewBlockTopology resolves the topology for cols columns.  When
// structure is non-empty it wins over blockWidth.  Structural problems
// are returned as a list of error strings so the caller can surface all
// of them before generation starts; the returned topology is always
// usable (degraded to a single block on bad input).
func NewBlockTopology(cols, blockWidth int, structure []int) (*BlockTopology, []string) {
	var errs []string
	t := &BlockTopology{cols: cols}
	if cols <= 0 {
		return t, errs
	}

	widths := structure
	if len(widths) > 0 {
		sum := 0
		for i, w := range widths {
			if w <= 0 {
				errs = append(errs, fmt.Sprintf("block_structure[%d] must be positive, got %d", i, w))
			}
			sum += w
		}
		if sum != cols {
			errs = append(errs, fmt.Sprintf("block_structure sums to %d, want %d columns", sum, cols))
		}
		if len(errs) > 0 {
			widths = nil // fall through to uniform layout below
		}
	}
	if len(widths) == 0 {
		if blockWidth <= 0 {
			blockWidth = cols
		}
		for remaining := cols; remaining > 0; remaining -= blockWidth {
			w := blockWidth
			if remaining < w {
				w = remaining
			}
			widths = append(widths, w)
		}
	}

	t.widths = widths
	t.blockOf = make([]int, cols)
	t.offset = make([]int, cols)
	col := 0
	for b, w := range widths {
		for i := 0; i < w && col < cols; i++ {
			t.blockOf[col] = b
			t.offset[col] = i
			col++
		}
	}
	return t, errs
}

// Count returns the number of blocks.
func (t *BlockTopology) Count() int { return len(t.widths) }

// Widths returns the per-block widths in order.
func (t *BlockTopology) Widths() []int { return t.widths }

// BlockOf returns the block index of a column, or -1 out of range.
func (t *BlockTopology) BlockOf(col int) int {
	if col < 0 || col >= t.cols {
		return -1
	}
	return t.blockOf[col]
}

// SameBlock reports whether two columns belong to the same block.
func (t *BlockTopology) SameBlock(c1, c2 int) bool {
	b1, b2 := t.BlockOf(c1), t.BlockOf(c2)
	return b1 >= 0 && b1 == b2
}

// OffsetInBlock returns a column's zero-based position inside its block,
// or -1 out of range.
func (t *BlockTopology) OffsetInBlock(col int) int {
	if col < 0 || col >= t.cols {
		return -1
	}
	return t.offset[col]
}
