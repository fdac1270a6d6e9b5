package seating

import "fmt"

// Validate sweeps the finished grid and returns whether every constraint
// holds together with an ordered list of human-readable violations.  It
// never panics; initialization errors recorded before placement are
// merged in first and force an invalid result, since a malformed
// topology invalidates all downstream guarantees.  Broken seats are
// skipped on both sides of every comparison.
func (g *Grid) Validate() (bool, []string) {
	violations := append([]string(nil), g.InitErrors...)

	// Same-batch adjacency is opt-in: the column-major strategy already
	// rules it out through column ownership and gap columns.
	if g.cfg.EnforceNoAdjacentBatches {
		for r := 0; r < g.Rows; r++ {
			for c := 0; c < g.Cols; c++ {
				seat := g.seatAt(r, c)
				if seat == nil || !seat.HasBatch() {
					continue
				}
				if right := g.seatAt(r, c+1); right != nil && right.HasBatch() && right.Batch == seat.Batch {
					violations = append(violations, fmt.Sprintf("same batch adjacent horizontally at row %d, cols %d-%d", r, c, c+1))
				}
				if down := g.seatAt(r+1, c); down != nil && down.HasBatch() && down.Batch == seat.Batch {
					violations = append(violations, fmt.Sprintf("same batch adjacent vertically at col %d, rows %d-%d", c, r, r+1))
				}
			}
		}
	}

	// Paper sets must alternate between adjacent seats: horizontally
	// inside each block, vertically within every column.
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			seat := g.seatAt(r, c)
			if seat == nil || !seat.HasBatch() {
				continue
			}
			if right := g.seatAt(r, c+1); right != nil && right.HasBatch() &&
				g.Topology.SameBlock(c, c+1) && right.PaperSet == seat.PaperSet {
				violations = append(violations, fmt.Sprintf("same paper set in block %d horizontally at row %d, cols %d-%d",
					g.Topology.BlockOf(c), r, c, c+1))
			}
			if down := g.seatAt(r+1, c); down != nil && down.HasBatch() && down.PaperSet == seat.PaperSet {
				violations = append(violations, fmt.Sprintf("same paper set vertically at col %d, rows %d-%d", c, r, r+1))
			}
		}
	}

	// Roll numbers must be unique across the grid and their count must
	// match the number of allocated seats.
	seen := make(map[string]bool)
	allocated := 0
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			seat := &g.Seats[r][c]
			if seat.Status != StatusAllocated {
				continue
			}
			allocated++
			if seen[seat.RollNumber] {
				violations = append(violations, fmt.Sprintf("duplicate roll number %s at row %d, col %d", seat.RollNumber, r, c))
			}
			seen[seat.RollNumber] = true
		}
	}
	if len(seen) != allocated {
		violations = append(violations, fmt.Sprintf("roll number count mismatch: %d unique for %d allocated seats", len(seen), allocated))
	}

	// Block count from geometry must agree with the topology in use.
	if want := expectedBlocks(g.Cols, g.cfg.BlockWidth, g.cfg.BlockStructure); want != g.Topology.Count() {
		violations = append(violations, fmt.Sprintf("block count mismatch: topology has %d, geometry expects %d", g.Topology.Count(), want))
	}

	return len(violations) == 0, violations
}

// seatAt returns the non-broken seat at (r, c), or nil when the
// coordinates are out of range or the seat is broken.
func (g *Grid) seatAt(r, c int) *Seat {
	if r < 0 || r >= g.Rows || c < 0 || c >= g.Cols {
		return nil
	}
	s := &g.Seats[r][c]
	if s.Status == StatusBroken {
		return nil
	}
	return s
}

// expectedBlocks computes the block count implied by the geometry alone.
func expectedBlocks(cols, blockWidth int, structure []int) int {
	if len(structure) > 0 {
		sum := 0
		for _, w := range structure {
			sum += w
		}
		if sum == cols {
			return len(structure)
		}
	}
	if blockWidth <= 0 || cols <= 0 {
		return 0
	}
	return (cols + blockWidth - 1) / blockWidth
}

// Constraint is one entry of the constraint status report: whether the
// rule participated in this plan and whether the finished grid satisfies
// it.
type Constraint struct {
	Name      string `json:"name"`
	Applied   bool   `json:"applied"`
	Satisfied bool   `json:"satisfied"`
}

// ConstraintsStatus summarizes each placement rule for display next to
// the plan.  Unlike Validate it reports per-rule outcomes instead of a
// flat violation list.
func (g *Grid) ConstraintsStatus() []Constraint {
	_, violations := g.Validate()
	hasPrefix := func(sub string) bool {
		for _, v := range violations {
			if len(v) >= len(sub) && v[:len(sub)] == sub {
				return true
			}
		}
		return false
	}

	brokenOK := true
	brokenCount := 0
	for _, rc := range g.cfg.BrokenSeats {
		r, c := rc[0], rc[1]
		if r < 0 || r >= g.Rows || c < 0 || c >= g.Cols {
			brokenOK = false
			continue
		}
		brokenCount++
		s := &g.Seats[r][c]
		if s.Status != StatusBroken || s.RollNumber != "" {
			brokenOK = false
		}
	}

	quotaOK := true
	if len(g.cfg.BatchStudentCounts) > 0 {
		perBatch := make(map[int]int)
		for r := range g.Seats {
			for c := range g.Seats[r] {
				if g.Seats[r][c].Status == StatusAllocated {
					perBatch[g.Seats[r][c].Batch]++
				}
			}
		}
		for b, limit := range g.cfg.BatchStudentCounts {
			if perBatch[b] > limit {
				quotaOK = false
			}
		}
	}

	return []Constraint{
		{Name: "Batch Separation", Applied: g.cfg.EnforceNoAdjacentBatches, Satisfied: !hasPrefix("same batch adjacent")},
		{Name: "Paper Set Alternation", Applied: true, Satisfied: !hasPrefix("same paper set")},
		{Name: "Broken Seats Handling", Applied: brokenCount > 0 || len(g.cfg.BrokenSeats) > 0, Satisfied: brokenOK},
		{Name: "Roll Number Uniqueness", Applied: true, Satisfied: !hasPrefix("duplicate roll number") && !hasPrefix("roll number count")},
		{Name: "Batch Quota Limits", Applied: len(g.cfg.BatchStudentCounts) > 0, Satisfied: quotaOK},
	}
}
