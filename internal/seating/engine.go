package seating

import (
	"math/rand"
	"strconv"
)

// Engine runs one placement computation.  It holds no state across
// Generate calls; concurrent engines over independent configs are safe.
type Engine struct {
	cfg      Config
	topo     *BlockTopology
	initErrs []string
}

// Grid is the finished arrangement: exactly one Seat per cell, plus the
// topology and any initialization errors collected before placement.
// Seats are not mutated after Generate returns.
type Grid struct {
	Rows       int
	Cols       int
	Seats      [][]Seat
	Topology   *BlockTopology
	InitErrors []string

	cfg Config
}

// New prepares an engine for the given configuration.  Configuration
// problems are collected, not raised; Generate still returns a (possibly
// degenerate) grid so diagnostics are always available to the caller.
func New(cfg Config) *Engine {
	errs := cfg.normalize()
	topo, topoErrs := NewBlockTopology(cfg.Cols, cfg.BlockWidth, cfg.BlockStructure)
	errs = append(errs, topoErrs...)
	return &Engine{cfg: cfg, topo: topo, initErrs: errs}
}

// Topology exposes the resolved block topology.
func (e *Engine) Topology() *BlockTopology { return e.topo }

// InitErrors returns configuration errors detected before placement.
func (e *Engine) InitErrors() []string { return e.initErrs }

// Generate produces the seat grid.  Deterministic for a fixed Config:
// the only randomness is the optional seeded column shuffle.
func (e *Engine) Generate() *Grid {
	g := &Grid{
		Rows:       e.cfg.Rows,
		Cols:       e.cfg.Cols,
		Topology:   e.topo,
		InitErrors: append([]string(nil), e.initErrs...),
		cfg:        e.cfg,
	}
	if e.cfg.Rows <= 0 || e.cfg.Cols <= 0 || e.cfg.NumBatches <= 0 {
		return g
	}

	broken := e.cfg.brokenSet()
	g.Seats = make([][]Seat, e.cfg.Rows)
	for r := range g.Seats {
		g.Seats[r] = make([]Seat, e.cfg.Cols)
		for c := range g.Seats[r] {
			seat := &g.Seats[r][c]
			seat.Row = r
			seat.Col = c
			seat.Block = e.topo.BlockOf(c)
			seat.Status = StatusEmpty
			seat.Color = ColorEmpty
			if broken[[2]int{r, c}] {
				seat.Status = StatusBroken
				seat.Color = ColorBroken
			}
		}
	}

	if e.cfg.BatchByColumn {
		e.fillColumnMajor(g)
	} else {
		e.fillRowMajor(g)
	}
	return g
}

// columnBatches returns the batch owning each column.  The default
// mapping is (col mod N)+1; RandomizeColumns permutes it with a seeded
// shuffle so repeated runs with the same seed agree.
func (e *Engine) columnBatches() []int {
	n := e.cfg.NumBatches
	batches := make([]int, e.cfg.Cols)
	for c := range batches {
		batches[c] = (c % n) + 1
	}
	if e.cfg.RandomizeColumns && n > 1 {
		rng := rand.New(rand.NewSource(e.cfg.Seed))
		rng.Shuffle(len(batches), func(i, j int) {
			batches[i], batches[j] = batches[j], batches[i]
		})
	}
	return batches
}

// batchSizes returns the seat capacity each batch's columns receive:
// columns are dealt round-robin, so earlier batches may own one extra.
func (e *Engine) batchSizes() []int {
	n := e.cfg.NumBatches
	base := e.cfg.Cols / n
	rem := e.cfg.Cols % n
	sizes := make([]int, n)
	for i := range sizes {
		sizes[i] = base * e.cfg.Rows
		if i < rem {
			sizes[i] += e.cfg.Rows
		}
	}
	return sizes
}

// isGapColumn reports whether a column is deliberately left empty.  With
// a single batch every second column inside each block is a gap so no
// two same-batch students sit side by side; AllowAdjacentSameBatch
// suppresses this.
func (e *Engine) isGapColumn(col int) bool {
	if e.cfg.NumBatches != 1 || e.cfg.AllowAdjacentSameBatch {
		return false
	}
	return e.topo.OffsetInBlock(col)%2 == 1
}

// fillColumnMajor assigns each column to a batch and fills it top to
// bottom from that batch's roll pool.  Broken seats are skipped and
// quota exhaustion leaves the remainder of the batch's seats reserved
// but unallocated.
func (e *Engine) fillColumnMajor(g *Grid) {
	alloc := newRollAllocator(&e.cfg, e.batchSizes())
	batches := e.columnBatches()

	for col := 0; col < g.Cols; col++ {
		if e.isGapColumn(col) {
			continue
		}
		b := batches[col]
		for row := 0; row < g.Rows; row++ {
			seat := &g.Seats[row][col]
			if seat.Status == StatusBroken {
				continue
			}
			seat.Batch = b
			seat.PaperSet = e.resolvePaperSet(g, row, col, b)
			if entry, ok := alloc.next(b); ok {
				seat.Status = StatusAllocated
				seat.RollNumber = entry.Roll
				seat.StudentName = entry.Name
				seat.Color = batchColor(e.cfg.BatchColors, b)
			} else {
				seat.Status = StatusUnallocated
				seat.Color = ColorUnallocated
			}
		}
	}
}

// fillRowMajor is the legacy strategy: batch (r+c) mod N + 1, rolls
// assigned as plain integers in scan order.  The batch of every cell is
// fixed by the formula before any paper set is resolved, so neighbour
// lookups only ever touch rows and columns that are already populated.
func (e *Engine) fillRowMajor(g *Grid) {
	n := e.cfg.NumBatches
	used := make(map[int]int)
	roll := 1
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			seat := &g.Seats[row][col]
			if seat.Status == StatusBroken {
				continue
			}
			b := ((row + col) % n) + 1
			seat.Batch = b
			seat.PaperSet = e.resolvePaperSet(g, row, col, b)
			if limit, ok := e.cfg.BatchStudentCounts[b]; ok && used[b] >= limit {
				seat.Status = StatusUnallocated
				seat.Color = ColorUnallocated
				continue
			}
			seat.Status = StatusAllocated
			seat.RollNumber = strconv.Itoa(roll)
			seat.Color = batchColor(e.cfg.BatchColors, b)
			roll++
			used[b]++
		}
	}
}

// resolvePaperSet picks a seat's paper set with three tiers, first
// applicable wins.  It only inspects seats already placed, which both
// fill orders guarantee for the cells it visits.
//
//  1. Nearest seat strictly above in the column, skipping broken seats:
//     same batch means the opposite set.
//  2. Nearest batch-bearing seat to the left in the row, skipping broken
//     seats and gap columns; crossing block boundaries is intentional so
//     single-batch plans alternate across blocks too.
//  3. Checkerboard on (row + offset-within-block).
func (e *Engine) resolvePaperSet(g *Grid, row, col, batch int) PaperSet {
	for r := row - 1; r >= 0; r-- {
		s := &g.Seats[r][col]
		if s.Status == StatusBroken {
			continue
		}
		if s.HasBatch() && s.Batch == batch {
			return s.PaperSet.Opposite()
		}
		break
	}
	for c := col - 1; c >= 0; c-- {
		s := &g.Seats[row][c]
		if s.Status == StatusBroken || s.Status == StatusEmpty {
			continue
		}
		if s.HasBatch() && s.Batch == batch {
			return s.PaperSet.Opposite()
		}
		break
	}
	if (row+e.topo.OffsetInBlock(col))%2 == 0 {
		return PaperSetA
	}
	return PaperSetB
}
