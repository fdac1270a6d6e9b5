package seating

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferTemplate(t *testing.T) {
	tmpl, serial, width, ok := inferTemplate("BTCS24O1135")
	require.True(t, ok)
	assert.Equal(t, "BTCS24O{serial}", tmpl)
	assert.Equal(t, 1135, serial)
	assert.Equal(t, 4, width)
}

func TestInferTemplateNoDigits(t *testing.T) {
	_, _, _, ok := inferTemplate("NODIGITS")
	assert.False(t, ok)
}

func TestRenderRollPadding(t *testing.T) {
	assert.Equal(t, "BTCS24O0042", renderRoll("BTCS24O{serial}", "", "", 42, 4))
	assert.Equal(t, "BTCS24O42", renderRoll("BTCS24O{serial}", "", "", 42, 0))
	assert.Equal(t, "BTCS24O1042", renderRoll("{prefix}{year}O{serial}", "BTCS", "24", 1042, 4))
}

func TestAllocatorPlainNumeric(t *testing.T) {
	cfg := Config{Rows: 2, Cols: 2, NumBatches: 2}
	require.Empty(t, cfg.normalize())

	a := newRollAllocator(&cfg, []int{2, 2})
	e1, ok := a.next(1)
	require.True(t, ok)
	e2, ok := a.next(1)
	require.True(t, ok)
	e3, ok := a.next(2)
	require.True(t, ok)

	// Batch 1 draws 1001, 1002; batch 2 continues at 1003.
	assert.Equal(t, strconv.Itoa(DefaultStartSerial), e1.Roll)
	assert.Equal(t, strconv.Itoa(DefaultStartSerial+1), e2.Roll)
	assert.Equal(t, strconv.Itoa(DefaultStartSerial+2), e3.Roll)
}

func TestAllocatorPerBatchTemplate(t *testing.T) {
	cfg := Config{
		Rows: 2, Cols: 2, NumBatches: 2,
		RollTemplate:  "{prefix}{year}O{serial}",
		BatchPrefixes: map[int]string{1: "BTCS", 2: "BTCD"},
		Year:          24,
		SerialWidth:   4,
	}
	require.Empty(t, cfg.normalize())

	a := newRollAllocator(&cfg, []int{2, 2})
	e1, ok := a.next(1)
	require.True(t, ok)
	e2, ok := a.next(2)
	require.True(t, ok)

	assert.Equal(t, "BTCS24O1001", e1.Roll)
	assert.Equal(t, "BTCD24O1001", e2.Roll, "per-batch mode restarts the serial for every batch")
}

func TestAllocatorGlobalSerialMode(t *testing.T) {
	cfg := Config{
		Rows: 2, Cols: 2, NumBatches: 2,
		RollTemplate:  "{prefix}{serial}",
		BatchPrefixes: map[int]string{1: "X", 2: "Y"},
		SerialMode:    SerialModeGlobal,
		StartSerial:   10,
	}
	require.Empty(t, cfg.normalize())

	a := newRollAllocator(&cfg, []int{2, 2})
	e1, _ := a.next(1)
	e2, _ := a.next(2)
	e3, _ := a.next(1)

	// One shared counter: serial order reflects call (grid-fill) order.
	assert.Equal(t, "X10", e1.Roll)
	assert.Equal(t, "Y11", e2.Roll)
	assert.Equal(t, "X12", e3.Roll)
}

func TestAllocatorStartRollInference(t *testing.T) {
	cfg := Config{
		Rows: 3, Cols: 1, NumBatches: 1,
		StartRolls: map[int]string{1: "BTCS24O1135"},
	}
	require.Empty(t, cfg.normalize())

	a := newRollAllocator(&cfg, []int{3})
	var rolls []string
	for i := 0; i < 3; i++ {
		e, ok := a.next(1)
		require.True(t, ok)
		rolls = append(rolls, e.Roll)
	}
	assert.Equal(t, []string{"BTCS24O1135", "BTCS24O1136", "BTCS24O1137"}, rolls)
}

func TestAllocatorRosterMode(t *testing.T) {
	cfg := Config{
		Rows: 2, Cols: 1, NumBatches: 1,
		BatchRollNumbers: map[int][]RollEntry{
			1: {{Roll: "E001", Name: "Asha"}, {Roll: "E002", Name: "Bilal"}},
		},
	}
	require.Empty(t, cfg.normalize())

	a := newRollAllocator(&cfg, []int{2})
	e1, ok := a.next(1)
	require.True(t, ok)
	assert.Equal(t, "E001", e1.Roll)
	assert.Equal(t, "Asha", e1.Name)

	e2, ok := a.next(1)
	require.True(t, ok)
	assert.Equal(t, "E002", e2.Roll)

	_, ok = a.next(1)
	assert.False(t, ok, "roster exhaustion must signal no identifier, not fail")
}

func TestAllocatorRespectsQuota(t *testing.T) {
	cfg := Config{
		Rows: 5, Cols: 1, NumBatches: 1,
		BatchStudentCounts: map[int]int{1: 2},
	}
	require.Empty(t, cfg.normalize())

	a := newRollAllocator(&cfg, []int{5})
	_, ok := a.next(1)
	require.True(t, ok)
	_, ok = a.next(1)
	require.True(t, ok)
	_, ok = a.next(1)
	assert.False(t, ok, "quota of 2 must stop the third draw")
	assert.Equal(t, 2, a.allocatedFor(1))
}
