package seating

import "fmt"

// Serial modes control how numeric serials advance across batches.
const (
	// SerialModePerBatch gives every batch its own counter; each batch's
	// roll list is generated up front.
	SerialModePerBatch = "per_batch"
	// SerialModeGlobal advances one shared counter as seats are filled,
	// so serial order follows grid-fill order rather than batch order.
	SerialModeGlobal = "global"
)

// Defaults applied by normalize when the caller leaves fields unset.
const (
	DefaultBlockWidth  = 2
	DefaultStartSerial = 1001
)

// Config is the full input record for one generation run.  Zero values
// are filled with sensible defaults by the engine; structural problems
// (bad dimensions, inconsistent block structure) are collected as
// initialization errors instead of being raised, so the caller can
// report every problem at once.
type Config struct {
	Rows       int
	Cols       int
	NumBatches int

	// BlockWidth partitions columns into uniform blocks; the last block
	// may be narrower.  BlockStructure, when non-empty, supplies explicit
	// per-block widths instead and must sum to Cols.
	BlockWidth     int
	BlockStructure []int

	// BatchByColumn selects the column-major strategy (default).  When
	// false the legacy row-major strategy is used.
	BatchByColumn bool

	// EnforceNoAdjacentBatches opts in to the validator's same-batch
	// adjacency sweep.  AllowAdjacentSameBatch suppresses the single-batch
	// gap columns.
	EnforceNoAdjacentBatches bool
	AllowAdjacentSameBatch   bool

	// RandomizeColumns shuffles the column-to-batch assignment using
	// Seed, deterministically, so shuffled plans stay reproducible.
	RandomizeColumns bool
	Seed             int64

	// BrokenSeats lists physically unusable seats as 0-indexed {row, col}.
	BrokenSeats [][2]int

	// BatchStudentCounts caps how many students each batch seats.  Absent
	// entries mean "fill every seat the batch's columns receive".
	BatchStudentCounts map[int]int

	// BatchRollNumbers supplies real per-batch rosters.  When present for
	// a batch it takes precedence over any template.
	BatchRollNumbers map[int][]RollEntry

	BatchColors map[int]string
	BatchLabels map[int]string

	// Roll formatting.  RollTemplate may contain {prefix}, {year} and
	// {serial} markers.  StartRolls supplies one example roll per batch
	// from which the template, start serial and pad width are inferred.
	RollTemplate  string
	BatchPrefixes map[int]string
	Year          int
	StartSerial   int
	StartSerials  map[int]int
	StartRolls    map[int]string
	SerialWidth   int
	SerialMode    string
}

// normalize fills defaults in place and returns configuration errors.
// It never mutates caller-owned maps.
func (c *Config) normalize() []string {
	var errs []string
	if c.Rows <= 0 {
		errs = append(errs, fmt.Sprintf("rows must be positive, got %d", c.Rows))
	}
	if c.Cols <= 0 {
		errs = append(errs, fmt.Sprintf("cols must be positive, got %d", c.Cols))
	}
	if c.NumBatches <= 0 {
		errs = append(errs, fmt.Sprintf("num_batches must be positive, got %d", c.NumBatches))
	}
	if c.BlockWidth <= 0 {
		c.BlockWidth = DefaultBlockWidth
	}
	if c.StartSerial <= 0 {
		c.StartSerial = DefaultStartSerial
	}
	switch c.SerialMode {
	case "":
		c.SerialMode = SerialModePerBatch
	case SerialModePerBatch, SerialModeGlobal:
	default:
		errs = append(errs, fmt.Sprintf("unknown serial_mode %q", c.SerialMode))
	}
	if c.SerialWidth < 0 {
		c.SerialWidth = 0
	}
	for _, rc := range c.BrokenSeats {
		if rc[0] < 0 || rc[1] < 0 || (c.Rows > 0 && rc[0] >= c.Rows) || (c.Cols > 0 && rc[1] >= c.Cols) {
			errs = append(errs, fmt.Sprintf("broken seat (%d,%d) outside the %dx%d grid", rc[0], rc[1], c.Rows, c.Cols))
		}
	}
	return errs
}

// brokenSet builds an O(1) lookup of broken seat coordinates.
func (c *Config) brokenSet() map[[2]int]bool {
	m := make(map[[2]int]bool, len(c.BrokenSeats))
	for _, rc := range c.BrokenSeats {
		m[rc] = true
	}
	return m
}
