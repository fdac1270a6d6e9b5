// Package seating implements the exam seat placement engine: block
// topology resolution, roll-number generation, batch-by-column placement,
// three-tier paper set assignment, constraint validation and a
// transport-friendly output format.  The engine is a pure computation:
// one Config in, one Grid out, no I/O and no state shared between calls.
package seating

// PaperSet is one of the two interchangeable exam paper variants handed
// out to discourage copying between neighbouring students.
type PaperSet string

const (
	PaperSetA PaperSet = "A"
	PaperSetB PaperSet = "B"
)

// Opposite returns the other paper set.
func (p PaperSet) Opposite() PaperSet {
	if p == PaperSetA {
		return PaperSetB
	}
	return PaperSetA
}

// SeatStatus is the allocation state of a single seat.  Using an explicit
// status instead of nullable field combinations keeps illegal states
// (e.g. a broken seat with a roll number) unrepresentable in practice.
type SeatStatus int

const (
	// StatusEmpty marks a seat that received no batch at all, e.g. a
	// deliberate gap column in single-batch plans.
	StatusEmpty SeatStatus = iota
	// StatusBroken marks a physically unusable seat.
	StatusBroken
	// StatusUnallocated marks a seat reserved for a batch whose quota or
	// roll-number supply ran out before the seat was reached.
	StatusUnallocated
	// StatusAllocated marks a seat occupied by a student.
	StatusAllocated
)

// Seat is one grid cell.  Row, Col and Block are fixed at creation.
// Batch is 1-based and zero for empty or broken seats.  PaperSet is empty
// for seats that carry no batch.
type Seat struct {
	Row         int
	Col         int
	Block       int
	Status      SeatStatus
	Batch       int
	PaperSet    PaperSet
	RollNumber  string
	StudentName string
	Color       string
}

// HasBatch reports whether the seat is reserved for or occupied by a batch.
func (s *Seat) HasBatch() bool {
	return s.Status == StatusAllocated || s.Status == StatusUnallocated
}

// RollEntry is a single identifier drawn from a batch's roll pool,
// optionally carrying the student's display name.  Pre-supplied rosters
// and synthesized sequences are both normalized to this shape.
type RollEntry struct {
	Roll string `json:"roll"`
	Name string `json:"name,omitempty"`
}

// Display colors.  Batches beyond the palette fall back to neutral gray.
const (
	ColorBroken      = "#FF0000"
	ColorUnallocated = "#F3F4F6"
	ColorEmpty       = "#FFFFFF"
	colorFallback    = "#E5E7EB"
)

// defaultBatchColors is the built-in palette applied when the caller does
// not supply a color for a batch.
var defaultBatchColors = map[int]string{
	1: "#DBEAFE", // light blue
	2: "#DCFCE7", // light green
	3: "#FEE2E2", // light red
	4: "#FEF3C7", // light yellow
	5: "#E9D5FF", // light purple
}

// batchColor resolves the display color for a batch index.
func batchColor(colors map[int]string, batch int) string {
	if c, ok := colors[batch]; ok && c != "" {
		return c
	}
	if c, ok := defaultBatchColors[batch]; ok {
		return c
	}
	return colorFallback
}
