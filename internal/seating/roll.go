package seating

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// trailingDigits captures the serial portion at the end of an example
// roll number, e.g. "1135" in "BTCS24O1135".
var trailingDigits = regexp.MustCompile(`(\d+)$`)

// serialMarker is the substitution point templates must contain.
const serialMarker = "{serial}"

// inferTemplate derives a roll template from an example identifier.  The
// trailing run of digits becomes the starting serial (its length the pad
// width) and everything before it the literal prefix.
func inferTemplate(example string) (tmpl string, serial, width int, ok bool) {
	s := strings.TrimSpace(example)
	m := trailingDigits.FindString(s)
	if m == "" {
		return "", 0, 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return "", 0, 0, false
	}
	return s[:len(s)-len(m)] + serialMarker, n, len(m), true
}

// renderRoll substitutes the prefix, year and serial markers in a
// template.  Serial is zero-padded to width when width is positive.
func renderRoll(tmpl, prefix, year string, serial, width int) string {
	s := strconv.Itoa(serial)
	if width > 0 && len(s) < width {
		s = strings.Repeat("0", width-len(s)) + s
	}
	return strings.NewReplacer("{prefix}", prefix, "{year}", year, serialMarker, s).Replace(tmpl)
}

// rollAllocator hands out at most one roll entry per seat a batch
// occupies.  Each Generate call owns its own allocator, so there is no
// process-wide counter state.  Once a batch's quota or supply is
// exhausted next reports false and the seat stays unallocated.
type rollAllocator struct {
	mode      string
	width     int
	year      string
	templates map[int]string // batch -> template text; "" means plain numeric
	prefixes  map[int]string
	starts    map[int]int         // batch -> first serial (per-batch mode)
	queues    map[int][]RollEntry // pre-generated rolls or real rosters
	roster    map[int]bool        // batches fed from a caller-supplied roster
	limits    map[int]int
	allocated map[int]int
	cursor    int // shared serial counter (plain numeric and global mode)
}

// newRollAllocator resolves per-batch templates and builds the roll
// queues.  batchSizes holds the seat capacity each batch's columns
// receive and bounds how many rolls are synthesized up front.
func newRollAllocator(cfg *Config, batchSizes []int) *rollAllocator {
	a := &rollAllocator{
		mode:      cfg.SerialMode,
		width:     cfg.SerialWidth,
		templates: make(map[int]string),
		prefixes:  cfg.BatchPrefixes,
		starts:    make(map[int]int),
		queues:    make(map[int][]RollEntry),
		roster:    make(map[int]bool),
		limits:    make(map[int]int),
		allocated: make(map[int]int),
		cursor:    cfg.StartSerial,
	}
	if cfg.Year != 0 {
		a.year = strconv.Itoa(cfg.Year)
	}

	// A generic template applies to every batch unless that batch carries
	// its own example roll.  Prefix/year pairs yield the conventional
	// {prefix}{year}O{serial} shape when no template is given directly.
	generic := cfg.RollTemplate
	if generic == "" && len(cfg.BatchPrefixes) > 0 && cfg.Year != 0 {
		generic = "{prefix}{year}O" + serialMarker
	}

	for b := 1; b <= len(batchSizes); b++ {
		a.templates[b] = generic
		a.starts[b] = cfg.StartSerial
		if s, ok := cfg.StartSerials[b]; ok {
			a.starts[b] = s
		}
	}
	for b, example := range cfg.StartRolls {
		tmpl, serial, width, ok := inferTemplate(example)
		if !ok || b < 1 || b > len(batchSizes) {
			continue
		}
		a.templates[b] = tmpl
		if _, explicit := cfg.StartSerials[b]; !explicit {
			a.starts[b] = serial
		}
		if cfg.SerialWidth <= 0 && width > a.width {
			a.width = width
		}
	}

	for i, size := range batchSizes {
		b := i + 1
		a.limits[b] = size
		if n, ok := cfg.BatchStudentCounts[b]; ok {
			a.limits[b] = n
		}

		if entries := cfg.BatchRollNumbers[b]; len(entries) > 0 {
			a.queues[b] = append([]RollEntry(nil), entries...)
			a.roster[b] = true
			continue
		}
		tmpl := a.templates[b]
		if tmpl == "" {
			// Plain numeric: consecutive integers off the shared cursor.
			rolls := make([]RollEntry, size)
			for j := 0; j < size; j++ {
				rolls[j] = RollEntry{Roll: strconv.Itoa(a.cursor + j)}
			}
			a.queues[b] = rolls
			a.cursor += size
			continue
		}
		if a.mode == SerialModePerBatch {
			rolls := make([]RollEntry, size)
			for j := 0; j < size; j++ {
				rolls[j] = RollEntry{Roll: renderRoll(tmpl, a.prefixes[b], a.year, a.starts[b]+j, a.width)}
			}
			a.queues[b] = rolls
		}
		// Global mode renders on demand in next, off the shared cursor.
	}
	return a
}

// next returns the batch's next roll entry, or false when the batch's
// quota or supply is exhausted.
func (a *rollAllocator) next(batch int) (RollEntry, bool) {
	if a.allocated[batch] >= a.limits[batch] {
		return RollEntry{}, false
	}
	if a.mode == SerialModeGlobal && a.templates[batch] != "" && !a.roster[batch] {
		e := RollEntry{Roll: renderRoll(a.templates[batch], a.prefixes[batch], a.year, a.cursor, a.width)}
		a.cursor++
		a.allocated[batch]++
		return e, true
	}
	q := a.queues[batch]
	if len(q) == 0 {
		return RollEntry{}, false
	}
	e := q[0]
	a.queues[batch] = q[1:]
	a.allocated[batch]++
	return e, true
}

// allocatedFor reports how many rolls a batch has consumed so far.
func (a *rollAllocator) allocatedFor(batch int) int { return a.allocated[batch] }

// String implements fmt.Stringer for debug logging.
func (a *rollAllocator) String() string {
	return fmt.Sprintf("rollAllocator(mode=%s width=%d cursor=%d)", a.mode, a.width, a.cursor)
}
