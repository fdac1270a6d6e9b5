package seating

import (
	"fmt"
	"strconv"
)

// Metadata describes the grid geometry for consumers of the plan.
type Metadata struct {
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
	NumBatches  int    `json:"num_batches"`
	Blocks      int    `json:"blocks"`
	BlockWidth  int    `json:"block_width"`
	BlockWidths []int  `json:"block_widths,omitempty"`
	Strategy    string `json:"strategy"`
}

// SeatView is the transport form of one seat.  Pointer fields are null
// for seats that carry no batch, mirroring what the front end and the
// exporters expect.
type SeatView struct {
	Position      string  `json:"position"`
	Row           int     `json:"row"`
	Col           int     `json:"col"`
	Batch         *int    `json:"batch"`
	BatchLabel    string  `json:"batch_label,omitempty"`
	PaperSet      *string `json:"paper_set"`
	Block         *int    `json:"block"`
	RollNumber    *string `json:"roll_number"`
	StudentName   string  `json:"student_name,omitempty"`
	IsBroken      bool    `json:"is_broken"`
	IsUnallocated bool    `json:"is_unallocated"`
	Display       string  `json:"display"`
	CSSClass      string  `json:"css_class"`
	Color         string  `json:"color"`
}

// Summary aggregates the plan for dashboards and exports.
type Summary struct {
	BatchDistribution    map[int]int    `json:"batch_distribution"`
	PaperSetDistribution map[string]int `json:"paper_set_distribution"`
	TotalStudents        int            `json:"total_students"`
	BrokenSeatsCount     int            `json:"broken_seats_count"`
	UnallocatedPerBatch  map[int]int    `json:"unallocated_per_batch"`
}

// Validation carries the validator's verdict alongside the plan.
type Validation struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// Output is the complete transport structure consumed by the front end
// and the export pipeline.
type Output struct {
	Metadata   Metadata     `json:"metadata"`
	Seating    [][]SeatView `json:"seating"`
	Summary    Summary      `json:"summary"`
	Validation Validation   `json:"validation"`
	Status     []Constraint `json:"constraints_status,omitempty"`
}

// Format converts the grid into its transport form, running the
// validator so the output is self-contained.
func (g *Grid) Format() *Output {
	ok, violations := g.Validate()
	out := &Output{
		Metadata: Metadata{
			Rows:       g.Rows,
			Cols:       g.Cols,
			NumBatches: g.cfg.NumBatches,
			Blocks:     g.Topology.Count(),
			BlockWidth: g.cfg.BlockWidth,
			Strategy:   strategyName(g.cfg.BatchByColumn),
		},
		Seating:    make([][]SeatView, 0, g.Rows),
		Summary:    g.summary(),
		Validation: Validation{IsValid: ok, Errors: violations},
		Status:     g.ConstraintsStatus(),
	}
	if len(g.cfg.BlockStructure) > 0 {
		out.Metadata.BlockWidths = g.Topology.Widths()
	}
	for r := 0; r < g.Rows; r++ {
		row := make([]SeatView, 0, g.Cols)
		for c := 0; c < g.Cols; c++ {
			row = append(row, g.seatView(&g.Seats[r][c]))
		}
		out.Seating = append(out.Seating, row)
	}
	return out
}

func strategyName(byColumn bool) string {
	if byColumn {
		return "column_major"
	}
	return "row_major"
}

// seatView builds the transport record for one seat.
func (g *Grid) seatView(s *Seat) SeatView {
	v := SeatView{
		Position: columnLabel(s.Col) + strconv.Itoa(s.Row+1),
		Row:      s.Row,
		Col:      s.Col,
		Color:    s.Color,
	}
	switch s.Status {
	case StatusBroken:
		v.IsBroken = true
		v.Display = "BROKEN"
		v.CSSClass = "seat-broken"
	case StatusEmpty:
		v.Display = ""
		v.CSSClass = "seat-gap"
	case StatusUnallocated:
		batch, block, set := s.Batch, s.Block, string(s.PaperSet)
		v.Batch, v.Block, v.PaperSet = &batch, &block, &set
		v.BatchLabel = g.cfg.BatchLabels[s.Batch]
		v.IsUnallocated = true
		v.Display = "UNALLOCATED"
		v.CSSClass = "seat-unallocated"
	case StatusAllocated:
		batch, block, set, roll := s.Batch, s.Block, string(s.PaperSet), s.RollNumber
		v.Batch, v.Block, v.PaperSet, v.RollNumber = &batch, &block, &set, &roll
		v.BatchLabel = g.cfg.BatchLabels[s.Batch]
		v.StudentName = s.StudentName
		v.Display = s.RollNumber + string(s.PaperSet)
		v.CSSClass = fmt.Sprintf("batch-%d set-%s", s.Batch, s.PaperSet)
	}
	return v
}

// summary tallies allocation and paper-set distribution and estimates
// how many students per batch could not be seated.  The expectation per
// batch comes from the explicit student count when given, otherwise
// from an even split of the available (non-broken) seats.
func (g *Grid) summary() Summary {
	sum := Summary{
		BatchDistribution:    make(map[int]int),
		PaperSetDistribution: map[string]int{"A": 0, "B": 0},
		UnallocatedPerBatch:  make(map[int]int),
	}
	broken := 0
	for r := range g.Seats {
		for c := range g.Seats[r] {
			s := &g.Seats[r][c]
			switch s.Status {
			case StatusBroken:
				broken++
			case StatusAllocated:
				sum.BatchDistribution[s.Batch]++
				sum.PaperSetDistribution[string(s.PaperSet)]++
				sum.TotalStudents++
			}
		}
	}
	sum.BrokenSeatsCount = broken

	available := g.Rows*g.Cols - broken
	n := g.cfg.NumBatches
	for b := 1; b <= n; b++ {
		expected, ok := g.cfg.BatchStudentCounts[b]
		if !ok && n > 0 {
			expected = available / n
			if b-1 < available%n {
				expected++
			}
		}
		unallocated := expected - sum.BatchDistribution[b]
		if unallocated < 0 {
			unallocated = 0
		}
		sum.UnallocatedPerBatch[b] = unallocated
	}
	return sum
}

// columnLabel converts a zero-based column index to spreadsheet-style
// letters (A..Z, AA, AB, ...).
func columnLabel(i int) string {
	if i < 0 {
		return ""
	}
	var buf []byte
	for {
		buf = append([]byte{byte('A' + i%26)}, buf...)
		i = i/26 - 1
		if i < 0 {
			return string(buf)
		}
	}
}
